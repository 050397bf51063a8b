package admin

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// New assembles and returns the admin subtree handler.
//
// Assembly errors are fail-fast and will panic.
func New(opts ...Option) http.Handler {
	b := newBuilder()
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	return b.build()
}

// Option configures admin assembly.
type Option func(*Builder)

// WithLogger sets the logger used to report recovered handler panics.
// Default is slog.Default(). Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if b != nil && l != nil {
			b.log = l
		}
	}
}

// Builder collects capabilities and builds the final admin handler.
type Builder struct {
	log   *slog.Logger
	paths map[string]http.Handler
}

func newBuilder() *Builder {
	return &Builder{
		log:   slog.Default(),
		paths: make(map[string]http.Handler),
	}
}

func (b *Builder) build() http.Handler {
	mux := http.NewServeMux()
	for path, h := range b.paths {
		mux.Handle(path, h)
	}
	return recoverer(b.log, mux)
}

// recoverer turns a handler panic into a 500 and a log record.
func recoverer(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			log.Error("admin handler panic",
				slog.String("path", r.URL.Path),
				slog.String("panic", fmt.Sprint(p)),
				slog.String("stack", string(debug.Stack())),
			)
			w.WriteHeader(http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
