package ops

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
)

func TestLogLevelHandlers(t *testing.T) {
	t.Parallel()

	var lv slog.LevelVar
	get := LogLevelGetHandler(&lv)
	set := LogLevelSetHandler(&lv)

	if got := do(t, get, http.MethodGet, "/").Body.String(); got != "info\n" {
		t.Fatalf("initial = %q", got)
	}
	if rr := do(t, set, http.MethodPost, "/?level=WARN"); rr.Code != http.StatusOK || rr.Body.String() != "warn\n" {
		t.Fatalf("set code = %d body = %q", rr.Code, rr.Body.String())
	}
	if lv.Level() != slog.LevelWarn {
		t.Fatalf("level = %v", lv.Level())
	}
	if rr := do(t, set, http.MethodPost, "/?level=loud"); rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid level code = %d", rr.Code)
	}
	if rr := do(t, set, http.MethodPost, "/"); rr.Code != http.StatusBadRequest {
		t.Fatalf("missing level code = %d", rr.Code)
	}
	if rr := do(t, set, http.MethodGet, "/?level=debug"); rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET set code = %d", rr.Code)
	}

	lv.Set(slog.LevelInfo + 2)
	var resp LogLevelResponse
	if err := json.Unmarshal(do(t, get, http.MethodGet, "/?format=json").Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Level != "INFO+2" || resp.LevelValue != 2 {
		t.Fatalf("resp = %+v", resp)
	}
}
