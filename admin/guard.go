package admin

import (
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// Guard enforces request admission for a capability.
//
// Implementations must be fast and must not block; they must not do I/O.
type Guard interface {
	// Middleware returns a net/http middleware that enforces this guard.
	//
	// Denied requests must respond with HTTP 403.
	Middleware() func(http.Handler) http.Handler
}

type checkGuard struct{ allow func(*http.Request) bool }

func (g checkGuard) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if next == nil {
			panic("admin: guard: nil next handler")
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if g.allow == nil || !g.allow(r) {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DenyAll returns a guard that denies all requests with HTTP 403.
func DenyAll() Guard { return checkGuard{} }

// AllowAll returns a guard that allows all requests.
func AllowAll() Guard {
	return checkGuard{allow: func(*http.Request) bool { return true }}
}

// DefaultTokenHeader is the default header used by token-based guards when not overridden.
const DefaultTokenHeader = "X-Access-Token"

type TokenOption func(*tokenConfig)

type tokenConfig struct {
	header string
}

// WithTokenHeader overrides the token header name for token-based guards.
//
// Empty/blank names are ignored (default is DefaultTokenHeader).
func WithTokenHeader(name string) TokenOption {
	return func(c *tokenConfig) {
		if c == nil {
			return
		}
		if name = strings.TrimSpace(name); name != "" {
			c.header = name
		}
	}
}

// Tokens returns a guard that admits requests carrying one of tokens in the token header.
//
// Blank tokens are ignored; if none remain every request is denied.
func Tokens(tokens []string, opts ...TokenOption) Guard {
	cfg := tokenConfig{header: DefaultTokenHeader}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return checkGuard{allow: tokenCheck(cfg.header, tokens)}
}

func tokenCheck(header string, tokens []string) func(*http.Request) bool {
	var set [][]byte
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			set = append(set, []byte(t))
		}
	}
	return func(r *http.Request) bool {
		got := []byte(strings.TrimSpace(r.Header.Get(header)))
		if len(got) == 0 {
			return false
		}
		ok := false
		for _, want := range set {
			// Compare against every token so timing does not reveal which one matched.
			if subtle.ConstantTimeCompare(got, want) == 1 {
				ok = true
			}
		}
		return ok
	}
}

// IPAllowList returns a guard backed by a static IP allowlist matched against the
// request's RemoteAddr. Entries may be CIDRs or single IPs; invalid entries are ignored,
// and a list with no valid entry denies all.
func IPAllowList(cidrsOrIPs ...string) Guard {
	return checkGuard{allow: ipCheck(cidrsOrIPs)}
}

func ipCheck(cidrsOrIPs []string) func(*http.Request) bool {
	var prefixes []netip.Prefix
	for _, raw := range cidrsOrIPs {
		raw = strings.TrimSpace(raw)
		if p, err := netip.ParsePrefix(raw); err == nil {
			prefixes = append(prefixes, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(raw); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
		}
	}
	return func(r *http.Request) bool {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		a, err := netip.ParseAddr(host)
		if err != nil {
			return false
		}
		a = a.Unmap()
		for _, p := range prefixes {
			if p.Contains(a) {
				return true
			}
		}
		return false
	}
}

// TokensOrIPAllowList admits a request when its token is allowed OR its IP is allowlisted.
func TokensOrIPAllowList(tokens []string, cidrsOrIPs []string, opts ...TokenOption) Guard {
	cfg := tokenConfig{header: DefaultTokenHeader}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	tok, ip := tokenCheck(cfg.header, tokens), ipCheck(cidrsOrIPs)
	return checkGuard{allow: func(r *http.Request) bool { return tok(r) || ip(r) }}
}

// Check returns a guard backed by a custom fast predicate.
//
// fn must be fast and must not block; it must not do I/O.
// fn == nil is an assembly error and will panic.
func Check(fn func(r *http.Request) bool) Guard {
	if fn == nil {
		panic("admin: Check: nil func")
	}
	return checkGuard{allow: fn}
}
