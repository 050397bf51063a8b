package ops

import (
	"log/slog"
	"net/http"
	"strings"
)

// LogLevelResponse is the body of the log level handlers.
type LogLevelResponse struct {
	OK         bool   `json:"ok"`
	Level      string `json:"level"`
	LevelValue int    `json:"level_value"`
}

func (l LogLevelResponse) failed() string { return "" }

func (l LogLevelResponse) text() string { return l.Level + "\n" }

func levelResponse(v *slog.LevelVar) LogLevelResponse {
	lv := v.Level()
	return LogLevelResponse{OK: true, Level: levelToEnum(lv), LevelValue: int(lv)}
}

// LogLevelGetHandler reports the current level of v.
//
// Only GET and HEAD are allowed. Levels render as debug|info|warn|error; a level between
// the named ones renders as its numeric value.
func LogLevelGetHandler(v *slog.LevelVar, opts ...Option) http.Handler {
	if v == nil {
		panic("ops: nil slog.LevelVar")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodGet, http.MethodHead) {
			return
		}
		writeResponse(w, r, f, http.StatusOK, levelResponse(v))
	})
}

// LogLevelSetHandler sets v from ?level=debug|info|warn|error.
//
// Only POST is allowed.
func LogLevelSetHandler(v *slog.LevelVar, opts ...Option) http.Handler {
	if v == nil {
		panic("ops: nil slog.LevelVar")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodPost) {
			return
		}
		raw := query(r, "level")
		if raw == "" {
			writeResponse(w, r, f, http.StatusBadRequest, fail("missing level"))
			return
		}
		lv, ok := enumToLevel(strings.ToLower(raw))
		if !ok {
			writeResponse(w, r, f, http.StatusBadRequest, fail("invalid level"))
			return
		}
		v.Set(lv)
		writeResponse(w, r, f, http.StatusOK, levelResponse(v))
	})
}

func levelToEnum(l slog.Level) string {
	switch l {
	case slog.LevelDebug:
		return "debug"
	case slog.LevelInfo:
		return "info"
	case slog.LevelWarn:
		return "warn"
	case slog.LevelError:
		return "error"
	default:
		return l.String()
	}
}

func enumToLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
