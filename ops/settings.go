package ops

import (
	"errors"
	"net/http"

	"github.com/evan-idocoding/fxkit/rt/settings"
)

// SettingView is the JSON view of one setting.
type SettingView struct {
	Key          string `json:"key"`
	Type         string `json:"type"`
	Value        string `json:"value"`
	DefaultValue string `json:"default_value"`
	Source       string `json:"source"`
	Min          string `json:"min,omitempty"`
	Max          string `json:"max,omitempty"`
}

func settingView(it settings.Item) SettingView {
	return SettingView{
		Key:          it.Key,
		Type:         string(it.Type),
		Value:        it.Value,
		DefaultValue: it.DefaultValue,
		Source:       it.Source.String(),
		Min:          it.Min,
		Max:          it.Max,
	}
}

// SettingsResponse is the body of every settings handler.
type SettingsResponse struct {
	OK       bool          `json:"ok"`
	Settings []SettingView `json:"settings"`
}

func (s SettingsResponse) failed() string { return "" }

func (s SettingsResponse) text() string {
	var t textLines
	for _, it := range s.Settings {
		t.row("setting", it.Key, it.Type, it.Value, it.DefaultValue, it.Source)
	}
	return t.String()
}

// SettingsSnapshotHandler lists every setting, sorted by key.
//
// Only GET and HEAD are allowed. A key guard hides keys it rejects.
//
// Text output, one line per setting:
//
//	setting\t<key>\t<type>\t<value>\t<default>\t<source>
func SettingsSnapshotHandler(s *settings.Settings, opts ...Option) http.Handler {
	if s == nil {
		panic("ops: nil settings")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodGet, http.MethodHead) {
			return
		}
		resp := SettingsResponse{OK: true, Settings: []SettingView{}}
		for _, it := range s.Snapshot().Items {
			if cfg.allowed(it.Key) {
				resp.Settings = append(resp.Settings, settingView(it))
			}
		}
		writeResponse(w, r, f, http.StatusOK, resp)
	})
}

// SettingsSetHandler sets ?key= to ?value= and responds with the updated setting.
//
// Only POST is allowed. An unknown key is a 404, an unparsable or out-of-range value a 400.
func SettingsSetHandler(s *settings.Settings, opts ...Option) http.Handler {
	if s == nil {
		panic("ops: nil settings")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodPost) {
			return
		}
		key, ok := requireKey(w, r, f, cfg)
		if !ok {
			return
		}
		if _, present := r.URL.Query()["value"]; !present {
			writeResponse(w, r, f, http.StatusBadRequest, fail("missing value"))
			return
		}
		if err := s.SetFromString(key, r.URL.Query().Get("value")); err != nil {
			writeSettingsError(w, r, f, err)
			return
		}
		writeSetting(w, r, f, s, key)
	})
}

// SettingsResetHandler restores ?key= to its default.
//
// Only POST is allowed. An unknown key is a 404.
func SettingsResetHandler(s *settings.Settings, opts ...Option) http.Handler {
	if s == nil {
		panic("ops: nil settings")
	}
	cfg := applyOptions(opts)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f := formatFromRequest(r, cfg.format)
		if !requireMethod(w, r, f, http.MethodPost) {
			return
		}
		key, ok := requireKey(w, r, f, cfg)
		if !ok {
			return
		}
		if err := s.ResetToDefault(key); err != nil {
			writeSettingsError(w, r, f, err)
			return
		}
		writeSetting(w, r, f, s, key)
	})
}

func requireKey(w http.ResponseWriter, r *http.Request, f Format, cfg config) (string, bool) {
	key := query(r, "key")
	if key == "" {
		writeResponse(w, r, f, http.StatusBadRequest, fail("missing key"))
		return "", false
	}
	if !cfg.allowed(key) {
		writeResponse(w, r, f, http.StatusForbidden, fail("key not allowed"))
		return "", false
	}
	return key, true
}

func writeSetting(w http.ResponseWriter, r *http.Request, f Format, s *settings.Settings, key string) {
	it, ok := s.Lookup(key)
	if !ok {
		writeResponse(w, r, f, http.StatusNotFound, fail("key not found"))
		return
	}
	writeResponse(w, r, f, http.StatusOK, SettingsResponse{OK: true, Settings: []SettingView{settingView(it)}})
}

func writeSettingsError(w http.ResponseWriter, r *http.Request, f Format, err error) {
	switch {
	case errors.Is(err, settings.ErrNotFound):
		writeResponse(w, r, f, http.StatusNotFound, fail(err.Error()))
	case errors.Is(err, settings.ErrInvalidValue):
		writeResponse(w, r, f, http.StatusBadRequest, fail(err.Error()))
	default:
		writeResponse(w, r, f, http.StatusInternalServerError, fail(err.Error()))
	}
}
