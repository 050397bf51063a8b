package ops

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Format is a response format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

type config struct {
	format Format
	guard  func(string) bool
}

// Option configures ops handlers.
type Option func(*config)

// WithDefaultFormat sets the default response format. Default is FormatText.
func WithDefaultFormat(f Format) Option {
	return func(c *config) { c.format = f }
}

// WithOwnerGuard restricts effect handlers to owners for which fn returns true.
// Guards combine with AND.
func WithOwnerGuard(fn func(owner string) bool) Option {
	return withGuard(fn)
}

// WithKeyGuard restricts settings handlers to keys for which fn returns true.
// Guards combine with AND.
func WithKeyGuard(fn func(key string) bool) Option {
	return withGuard(fn)
}

// WithAllowPrefixes allows only owners/keys with one of prefixes.
// With no non-empty prefix it denies everything.
func WithAllowPrefixes(prefixes ...string) Option {
	var ps []string
	for _, p := range prefixes {
		if p != "" {
			ps = append(ps, p)
		}
	}
	return withGuard(func(s string) bool {
		for _, p := range ps {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	})
}

func withGuard(fn func(string) bool) Option {
	return func(c *config) {
		if fn == nil {
			return
		}
		prev := c.guard
		if prev == nil {
			c.guard = fn
			return
		}
		c.guard = func(s string) bool { return prev(s) && fn(s) }
	}
}

func applyOptions(opts []Option) config {
	c := config{format: FormatText}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.format != FormatText && c.format != FormatJSON {
		c.format = FormatText
	}
	return c
}

func (c config) allowed(s string) bool {
	return c.guard == nil || c.guard(s)
}

func formatFromRequest(r *http.Request, def Format) Format {
	if r == nil || r.URL == nil {
		return def
	}
	switch r.URL.Query().Get("format") {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return def
	}
}

// response is implemented by every handler's response body.
type response interface {
	failed() string // error message, "" on success
	text() string
}

// errorResponse is the body of every early failure.
type errorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func (e errorResponse) failed() string { return e.Error }
func (e errorResponse) text() string   { return "" }

func fail(msg string) errorResponse { return errorResponse{Error: msg} }

func writeResponse(w http.ResponseWriter, r *http.Request, f Format, code int, resp response) {
	w.Header().Set("Cache-Control", "no-store")
	if f == FormatJSON {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(code)
	if r.Method == http.MethodHead {
		return
	}
	if f == FormatJSON {
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	if msg := resp.failed(); msg != "" {
		_, _ = w.Write([]byte(escapeTextField(msg) + "\n"))
		return
	}
	_, _ = w.Write([]byte(resp.text()))
}

// requireMethod writes a 405 and returns false unless r.Method is one of methods.
func requireMethod(w http.ResponseWriter, r *http.Request, f Format, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeResponse(w, r, f, http.StatusMethodNotAllowed, fail("method not allowed"))
	return false
}

// query returns the trimmed value of a query parameter.
func query(r *http.Request, name string) string {
	if r == nil || r.URL == nil {
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get(name))
}

// textLines renders "<section>\t<f1>\t<f2>...\n" rows.
type textLines struct{ b strings.Builder }

func (t *textLines) row(section string, fields ...string) {
	t.b.WriteString(section)
	for _, f := range fields {
		t.b.WriteByte('\t')
		t.b.WriteString(escapeTextField(f))
	}
	t.b.WriteByte('\n')
}

func (t *textLines) String() string { return t.b.String() }

// escapeTextField escapes control characters so text output stays one record per line.
func escapeTextField(s string) string {
	need := false
	for i := 0; i < len(s); i++ {
		if c := s[i]; c == '\\' || c < 0x20 {
			need = true
			break
		}
	}
	if !need {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		default:
			if c < 0x20 {
				const hex = "0123456789abcdef"
				b.WriteString(`\u00`)
				b.WriteByte(hex[c>>4])
				b.WriteByte(hex[c&0x0f])
			} else {
				b.WriteByte(c)
			}
		}
	}
	return b.String()
}
