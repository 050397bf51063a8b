package fxkit

import (
	"net/http"

	"github.com/evan-idocoding/fxkit/admin"
)

// Guard enforces request admission for admin endpoints.
type Guard = admin.Guard

// TokenOption configures token-based guards (e.g. header name).
type TokenOption = admin.TokenOption

// DefaultTokenHeader is the default header name for token-based guards.
const DefaultTokenHeader = admin.DefaultTokenHeader

// AllowAll returns a guard that allows all requests.
func AllowAll() Guard { return admin.AllowAll() }

// DenyAll returns a guard that denies all requests with HTTP 403.
func DenyAll() Guard { return admin.DenyAll() }

// WithTokenHeader overrides the token header name for token-based guards.
func WithTokenHeader(name string) TokenOption { return admin.WithTokenHeader(name) }

// Tokens returns a guard that validates requests using a static token list.
func Tokens(tokens []string, opts ...TokenOption) Guard {
	return admin.Tokens(tokens, opts...)
}

// IPAllowList returns a guard backed by a static IP allowlist (CIDRs or single IPs).
func IPAllowList(cidrsOrIPs ...string) Guard {
	return admin.IPAllowList(cidrsOrIPs...)
}

// TokensOrIPAllowList returns a guard that allows when token is allowed OR IP is allowlisted.
func TokensOrIPAllowList(tokens []string, cidrsOrIPs []string, opts ...TokenOption) Guard {
	return admin.TokensOrIPAllowList(tokens, cidrsOrIPs, opts...)
}

// Check returns a guard backed by a custom fast predicate (must not block, no I/O).
func Check(fn func(r *http.Request) bool) Guard {
	return admin.Check(fn)
}
