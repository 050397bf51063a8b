package render

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

// DefaultFrameInterval is the frame step of an Animator (about 60 fps).
const DefaultFrameInterval = 16 * time.Millisecond

// Animator is an effect.Renderer that steps ramps in frames on a Loop.
type Animator struct {
	loop    *Loop
	surface *Surface
	frame   time.Duration
	log     *slog.Logger

	mu     sync.Mutex
	aborts map[string]*abortEntry
}

// abortEntry is shared by the in-flight ramps of one target.
type abortEntry struct {
	ch   chan struct{}
	refs int
}

// AnimatorOption configures an Animator.
type AnimatorOption func(*Animator)

// WithFrameInterval sets the frame step. Values <= 0 are ignored.
func WithFrameInterval(d time.Duration) AnimatorOption {
	return func(a *Animator) {
		if d > 0 {
			a.frame = d
		}
	}
}

// WithAnimatorLogger sets the logger.
func WithAnimatorLogger(l *slog.Logger) AnimatorOption {
	return func(a *Animator) {
		if l != nil {
			a.log = l
		}
	}
}

// NewAnimator returns an Animator writing to s through loop.
func NewAnimator(loop *Loop, s *Surface, opts ...AnimatorOption) *Animator {
	if loop == nil || s == nil {
		panic("render: nil loop or surface")
	}
	a := &Animator{
		loop:    loop,
		surface: s,
		frame:   DefaultFrameInterval,
		log:     slog.Default(),
		aborts:  make(map[string]*abortEntry),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}
	return a
}

// Animate ramps p on target from -> to over d, one Loop write per frame. The first frame
// writes from; the last writes exactly to.
func (a *Animator) Animate(ctx context.Context, target effect.Target, p effect.Property, from, to float64, d time.Duration, e effect.Easing) error {
	if ctx == nil {
		ctx = context.Background()
	}
	key := target.TargetKey()
	abort := a.acquire(key)
	defer a.release(key, abort)

	start := time.Now()
	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()
	for {
		frac := 1.0
		if d > 0 {
			frac = min(float64(time.Since(start))/float64(d), 1)
		}
		v := e.Lerp(from, to, frac)
		if err := a.loop.Do(ctx, func() { a.surface.Set(key, p, v) }); err != nil {
			return err
		}
		if frac >= 1 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-abort:
			return effect.ErrAborted
		case <-ticker.C:
		}
	}
}

func (a *Animator) acquire(key string) chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.aborts[key]
	if !ok {
		e = &abortEntry{ch: make(chan struct{})}
		a.aborts[key] = e
	}
	e.refs++
	return e.ch
}

// release drops the entry of key once its last ramp returns. An entry replaced by Abort
// is left alone.
func (a *Animator) release(key string, ch chan struct{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, ok := a.aborts[key]
	if !ok || e.ch != ch {
		return
	}
	if e.refs--; e.refs == 0 {
		delete(a.aborts, key)
	}
}

// pending returns the number of targets with an abort entry.
func (a *Animator) pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.aborts)
}

// Abort ends every in-flight ramp on target with effect.ErrAborted.
func (a *Animator) Abort(target effect.Target) {
	key := target.TargetKey()
	a.mu.Lock()
	e, ok := a.aborts[key]
	if ok {
		delete(a.aborts, key)
	}
	a.mu.Unlock()
	if ok {
		close(e.ch)
		a.log.Debug("render aborted", slog.String("target", key))
	}
}

func (a *Animator) Value(target effect.Target, p effect.Property) float64 {
	return a.surface.Value(target.TargetKey(), p)
}

func (a *Animator) SetValue(target effect.Target, p effect.Property, v float64) {
	a.surface.Set(target.TargetKey(), p, v)
}
