package safego

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
)

func loggerOf(c config) *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}

func logPanic(ctx context.Context, l *slog.Logger, info PanicInfo) {
	args := make([]any, 0, len(info.Attrs)+3)
	if info.Name != "" {
		args = append(args, slog.String("name", info.Name))
	}
	for _, a := range info.Attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("panic", info.Value), slog.String("stack", string(info.Stack)))
	l.ErrorContext(ctx, "safego: panic", args...)
}

func logError(ctx context.Context, l *slog.Logger, info ErrorInfo) {
	args := make([]any, 0, len(info.Attrs)+2)
	if info.Name != "" {
		args = append(args, slog.String("name", info.Name))
	}
	for _, a := range info.Attrs {
		args = append(args, a)
	}
	args = append(args, slog.Any("err", info.Err))
	l.WarnContext(ctx, "safego: error", args...)
}

func reportPanic(ctx context.Context, c config, info PanicInfo) {
	if c.onPanic == nil {
		logPanic(ctx, loggerOf(c), info)
		return
	}
	defer func() {
		if p := recover(); p != nil {
			logPanic(ctx, loggerOf(c), PanicInfo{
				Name:  info.Name,
				Attrs: info.Attrs,
				Value: fmt.Sprintf("safego: panic handler panicked: %v", p),
				Stack: debug.Stack(),
			})
		}
	}()
	c.onPanic(ctx, info)
}

func reportError(ctx context.Context, c config, info ErrorInfo) {
	if c.onError == nil {
		logError(ctx, loggerOf(c), info)
		return
	}
	defer func() {
		if p := recover(); p != nil {
			logPanic(ctx, loggerOf(c), PanicInfo{
				Name:  info.Name,
				Attrs: info.Attrs,
				Value: fmt.Sprintf("safego: error handler panicked: %v", p),
				Stack: debug.Stack(),
			})
		}
	}()
	c.onError(ctx, info)
}
