package render

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

type job struct {
	ctx  context.Context
	fn   func()
	err  error
	done chan struct{}
}

// Loop runs submitted functions one at a time on a dedicated goroutine.
type Loop struct {
	log  *slog.Logger
	jobs chan *job

	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*loopConfig)

type loopConfig struct {
	logger *slog.Logger
	queue  int
}

// WithLoopLogger sets the logger for panics in submitted functions.
func WithLoopLogger(l *slog.Logger) LoopOption {
	return func(c *loopConfig) { c.logger = l }
}

// WithQueueSize sets the submission buffer (default 64).
func WithQueueSize(n int) LoopOption {
	return func(c *loopConfig) {
		if n >= 0 {
			c.queue = n
		}
	}
}

// NewLoop starts a loop. Call Close to stop it.
func NewLoop(opts ...LoopOption) *Loop {
	c := loopConfig{queue: 64}
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	l := &Loop{
		log:  c.logger,
		jobs: make(chan *job, c.queue),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Do runs fn on the loop goroutine and waits for it.
//
// If ctx is done before fn starts, fn is skipped and ctx.Err() is returned. A panic in fn
// is recovered, logged and returned as an error. Do must not be called from the loop
// goroutine itself.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	j := &job{ctx: ctx, fn: fn, done: make(chan struct{})}
	select {
	case l.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-l.quit:
		return ErrLoopClosed
	}
	select {
	case <-j.done:
		return j.err
	case <-l.done:
		select {
		case <-j.done:
			return j.err
		default:
			return ErrLoopClosed
		}
	}
}

// Close stops the loop after the running function returns. Pending submissions fail with
// ErrLoopClosed. Close is idempotent and waits for the loop goroutine to exit.
func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.quit) })
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for {
		select {
		case j := <-l.jobs:
			l.exec(j)
		case <-l.quit:
			for {
				select {
				case j := <-l.jobs:
					j.err = ErrLoopClosed
					close(j.done)
				default:
					return
				}
			}
		}
	}
}

func (l *Loop) exec(j *job) {
	defer close(j.done)
	if err := j.ctx.Err(); err != nil {
		j.err = err
		return
	}
	defer func() {
		if p := recover(); p != nil {
			j.err = fmt.Errorf("render: loop function panicked: %v", p)
			l.log.Error("render loop function panicked", slog.Any("panic", p), slog.String("stack", string(debug.Stack())))
		}
	}()
	if j.fn != nil {
		j.fn()
	}
}
