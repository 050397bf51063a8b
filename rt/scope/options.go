package scope

import (
	"log/slog"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/rt/task"
)

// DefaultStopAllGrace bounds StopAll when no timeout is given.
const DefaultStopAllGrace = time.Second

type config struct {
	logger     *slog.Logger
	gate       effect.Gate
	dispatcher effect.Dispatcher

	stopGrace    func() time.Duration
	stopAllGrace func() time.Duration

	taskOpts []task.Option
}

// Option configures a Coordinator or a Registry.
type Option func(*config)

func newConfig(opts []Option) config {
	c := config{
		logger:       slog.Default(),
		gate:         effect.StaticGate(true),
		dispatcher:   effect.Inline,
		stopGrace:    func() time.Duration { return task.DefaultStopGrace },
		stopAllGrace: func() time.Duration { return DefaultStopAllGrace },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	return c
}

// WithLogger sets the logger. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithGate sets the capability gate shared by every task.
func WithGate(g effect.Gate) Option {
	return func(c *config) {
		if g != nil {
			c.gate = g
		}
	}
}

// WithDispatcher sets the UI-affine dispatcher shared by every task.
func WithDispatcher(d effect.Dispatcher) Option {
	return func(c *config) {
		if d != nil {
			c.dispatcher = d
		}
	}
}

// WithStopGrace sets the per-task stop grace. fn is read on every Start, so it may be
// backed by a runtime setting.
func WithStopGrace(fn func() time.Duration) Option {
	return func(c *config) {
		if fn != nil {
			c.stopGrace = fn
		}
	}
}

// WithStopAllGrace sets the timeout StopAll uses when called with timeout <= 0, and the
// timeout used by DisposeScope / DisposeAll. fn is read on every call.
func WithStopAllGrace(fn func() time.Duration) Option {
	return func(c *config) {
		if fn != nil {
			c.stopAllGrace = fn
		}
	}
}

// WithTaskOptions appends options applied to every task (e.g. diagnostic hooks).
func WithTaskOptions(opts ...task.Option) Option {
	return func(c *config) { c.taskOpts = append(c.taskOpts, opts...) }
}

// StartOption configures a single Registry.Start call.
type StartOption func(*startConfig)

type startConfig struct {
	cont task.ContinueFunc
}

// WithContinue sets a predicate checked at every cancellation point of the effect,
// e.g. "is the target still visible".
func WithContinue(fn func() bool) StartOption {
	return func(c *startConfig) { c.cont = fn }
}
