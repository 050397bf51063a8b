package safego

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Go starts fn in a new goroutine, applying the configured panic/error handling.
func Go(ctx context.Context, fn func(context.Context), opts ...Option) {
	GoErr(ctx, func(ctx context.Context) error {
		fn(ctx)
		return nil
	}, opts...)
}

// GoErr starts fn in a new goroutine, applying the configured panic/error handling.
//
// The error returned by fn is reported, not returned.
func GoErr(ctx context.Context, fn func(context.Context) error, opts ...Option) {
	go RunErr(ctx, fn, opts...)
}

// Run executes fn synchronously, applying the configured panic/error handling.
func Run(ctx context.Context, fn func(context.Context), opts ...Option) {
	RunErr(ctx, func(ctx context.Context) error {
		fn(ctx)
		return nil
	}, opts...)
}

// RunErr executes fn synchronously, applying the configured panic/error handling.
//
// The error returned by fn is reported (subject to context-cancel filtering), not returned.
// If ctx is nil, it is treated as context.Background().
func RunErr(ctx context.Context, fn func(context.Context) error, opts ...Option) {
	if ctx == nil {
		ctx = context.Background()
	}

	c := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	defer runFinalizers(ctx, c)

	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if c.panicPolicy == RecoverOnly {
			return
		}
		reportPanic(ctx, c, PanicInfo{
			Name:  c.name,
			Attrs: cloneAttrs(c.attrs),
			Value: p,
			Stack: debug.Stack(),
		})
		if c.panicPolicy == RepanicAfterReport {
			panic(p)
		}
	}()

	err := fn(ctx)
	if err == nil {
		return
	}
	if !c.reportContextCancel && isContextCancel(err) {
		return
	}
	reportError(ctx, c, ErrorInfo{
		Name:  c.name,
		Attrs: cloneAttrs(c.attrs),
		Err:   err,
	})
}

func runFinalizers(ctx context.Context, c config) {
	for i := len(c.finally) - 1; i >= 0; i-- {
		fn := c.finally[i]
		func() {
			defer func() {
				p := recover()
				if p == nil {
					return
				}
				reportPanic(ctx, c, PanicInfo{
					Name:  c.name,
					Attrs: cloneAttrs(c.attrs),
					Value: fmt.Sprintf("safego: finalizer panicked: %v", p),
					Stack: debug.Stack(),
				})
			}()
			fn()
		}()
	}
}

func cloneAttrs(attrs []slog.Attr) []slog.Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]slog.Attr, len(attrs))
	copy(out, attrs)
	return out
}

func isContextCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
