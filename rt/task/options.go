package task

import (
	"log/slog"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

// DefaultStopGrace is the default time Stop waits for a task to terminate.
const DefaultStopGrace = 500 * time.Millisecond

type config struct {
	gate       effect.Gate
	dispatcher effect.Dispatcher
	logger     *slog.Logger
	attrs      []slog.Attr

	stopGrace time.Duration

	onStart func(Status)
	onStop  func(Status)
}

// Option configures a task.
type Option func(*config)

func defaultConfig() config {
	return config{
		gate:       effect.StaticGate(true),
		dispatcher: effect.Inline,
		stopGrace:  DefaultStopGrace,
	}
}

// WithGate sets the capability gate. Default is effect.StaticGate(true).
func WithGate(g effect.Gate) Option {
	return func(c *config) {
		if g != nil {
			c.gate = g
		}
	}
}

// WithDispatcher sets the dispatcher used for direct property reads and writes
// (baseline capture, bypass, baseline restoration). Default is effect.Inline.
func WithDispatcher(d effect.Dispatcher) Option {
	return func(c *config) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithLogger sets the logger. Nil means slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithAttrs appends attributes to every log record of the task (e.g. the owner id).
func WithAttrs(attrs ...slog.Attr) Option {
	return func(c *config) { c.attrs = append(c.attrs, attrs...) }
}

// WithStopGrace sets how long Stop waits for termination. Values <= 0 are ignored.
func WithStopGrace(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.stopGrace = d
		}
	}
}

// WithOnStart sets a hook called once when the task enters StateRunning.
func WithOnStart(fn func(Status)) Option {
	return func(c *config) { c.onStart = fn }
}

// WithOnStop sets a hook called once when a started task reaches StateTerminated.
func WithOnStop(fn func(Status)) Option {
	return func(c *config) { c.onStop = fn }
}
