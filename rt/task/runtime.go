package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/rt/safego"
	"golang.org/x/sync/errgroup"
)

// body runs the effect loop. It returns nil when the effect finished or was cancelled
// (the run records why), and a non-nil error only for a render failure.
type body func(r *run, cfg effect.Config) error

type taskRuntime struct {
	name string
	kind effect.Kind
	body body

	renderer effect.Renderer
	cfg      config
	log      *slog.Logger

	state atomic.Int32

	mu        sync.Mutex
	cancel    context.CancelFunc
	target    effect.Target
	baseline  []effect.PropertyValue
	requested EndReason // set by Stop/Dispose
	// restored is set once Dispose has written the baseline back.
	restored  bool
	end       EndReason
	startedAt time.Time
	endedAt   time.Time
	cycles    int
	lastError string

	done     chan struct{}
	doneOnce sync.Once
}

func newTaskRuntime(name string, kind effect.Kind, b body, r effect.Renderer, opts []Option) *taskRuntime {
	if r == nil {
		panic("task: nil renderer")
	}
	c := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}
	l := c.logger
	if l == nil {
		l = slog.Default()
	}
	attrs := make([]any, 0, 2+len(c.attrs))
	attrs = append(attrs, slog.String("effect", name), slog.String("kind", kind.String()))
	for _, a := range c.attrs {
		attrs = append(attrs, a)
	}
	return &taskRuntime{
		name:     name,
		kind:     kind,
		body:     b,
		renderer: r,
		cfg:      c,
		log:      l.With(attrs...),
		done:     make(chan struct{}),
	}
}

func (t *taskRuntime) Name() string          { return t.name }
func (t *taskRuntime) Kind() effect.Kind     { return t.kind }
func (t *taskRuntime) State() State          { return State(t.state.Load()) }
func (t *taskRuntime) IsRunning() bool       { return t.State() == StateRunning }
func (t *taskRuntime) Done() <-chan struct{} { return t.done }
func (t *taskRuntime) String() string        { return t.kind.String() + ":" + t.name }

func (t *taskRuntime) addCycle() {
	t.mu.Lock()
	t.cycles++
	t.mu.Unlock()
}

func (t *taskRuntime) setBaseline(b []effect.PropertyValue) {
	t.mu.Lock()
	t.baseline = b
	t.mu.Unlock()
}

func (t *taskRuntime) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLocked()
}

func (t *taskRuntime) statusLocked() Status {
	st := Status{
		Name:      t.name,
		Kind:      t.kind,
		State:     State(t.state.Load()),
		StartedAt: t.startedAt,
		EndedAt:   t.endedAt,
		End:       t.end,
		Cycles:    t.cycles,
		LastError: t.lastError,
	}
	if t.target != nil {
		st.Target = t.target.TargetKey()
	}
	return st
}

func (t *taskRuntime) Start(ctx context.Context, target effect.Target, cfg effect.Config, cont ContinueFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if effect.IsNilTarget(target) {
		return ErrNilTarget
	}
	cfg = plain(cfg)
	if err := effect.Validate(cfg); err != nil {
		return err
	}
	if cfg.Kind() != t.kind {
		return fmt.Errorf("%w: %s task given a %s config", effect.ErrInvalidConfig, t.kind, cfg.Kind())
	}

	t.mu.Lock()
	if State(t.state.Load()) != StateIdle {
		t.mu.Unlock()
		return nil
	}
	runCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.target = target
	t.startedAt = time.Now()
	t.state.Store(int32(StateRunning))
	st := t.statusLocked()
	t.mu.Unlock()

	t.log.Debug("effect started", slog.String("target", st.Target))
	t.callHook(t.cfg.onStart, st)

	reason, err := t.run(runCtx, target, cfg, cont)
	t.finish(reason, err)
	return nil
}

func (t *taskRuntime) run(ctx context.Context, target effect.Target, cfg effect.Config, cont ContinueFunc) (reason EndReason, err error) {
	defer func() {
		if p := recover(); p != nil {
			reason, err = EndFailed, fmt.Errorf("%w: panic: %v", ErrRenderFailed, p)
			t.log.Error("effect panicked", slog.Any("panic", p), slog.String("stack", string(debug.Stack())))
		}
	}()

	props := cfg.Properties()
	baseline := make([]effect.PropertyValue, 0, len(props))
	if err := t.dispatch(ctx, func() {
		for _, p := range props {
			baseline = append(baseline, effect.PropertyValue{Property: p, Value: t.renderer.Value(target, p)})
		}
	}); err != nil {
		return t.interrupted(ctx, err)
	}
	t.setBaseline(baseline)

	if ctx.Err() != nil {
		return EndCanceled, nil
	}

	adapted, ok := t.adapt(cfg)
	if !ok {
		end := cfg.EndState(baseline)
		if err := t.dispatch(ctx, func() {
			for _, pv := range end {
				t.renderer.SetValue(target, pv.Property, pv.Value)
			}
		}); err != nil {
			return t.interrupted(ctx, err)
		}
		return EndBypassed, nil
	}

	r := &run{ctx: ctx, t: t, target: target, cont: cont, baseline: baseline}
	if err := t.body(r, adapted); err != nil {
		return EndFailed, err
	}
	switch {
	case r.halted != EndNone:
		return r.halted, nil
	case ctx.Err() != nil:
		return EndCanceled, nil
	default:
		return EndCompleted, nil
	}
}

// interrupted classifies a dispatch failure: cancellation is not a failure.
func (t *taskRuntime) interrupted(ctx context.Context, err error) (EndReason, error) {
	if ctx.Err() != nil {
		return EndCanceled, nil
	}
	return EndFailed, fmt.Errorf("%w: dispatch: %v", ErrRenderFailed, err)
}

// adapt consults the gate. Any gate misbehavior bypasses the effect.
func (t *taskRuntime) adapt(cfg effect.Config) (adapted effect.Config, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			t.log.Warn("effect gate panicked; bypassing", slog.Any("panic", p))
			adapted, ok = nil, false
		}
	}()
	g := t.cfg.gate
	if !g.SupportsFullFidelity() {
		return nil, false
	}
	adapted, ok = g.Adapt(cfg)
	if !ok {
		return nil, false
	}
	if adapted == nil {
		return cfg, true
	}
	if adapted.Kind() != cfg.Kind() || adapted.Validate() != nil {
		t.log.Warn("effect gate returned an unusable config; bypassing")
		return nil, false
	}
	return adapted, true
}

// finish moves a task whose loop has returned to Terminated.
func (t *taskRuntime) finish(reason EndReason, err error) {
	t.mu.Lock()
	if State(t.state.Load()) == StateTerminated {
		// Dispose won the race before the baseline was captured; the loop may have
		// written since, so put the baseline back now.
		late := t.end == EndDisposed && !t.restored && len(t.baseline) > 0
		target, baseline := t.target, t.baseline
		if late {
			t.restored = true
		}
		t.mu.Unlock()
		if late {
			t.restore(target, baseline)
		}
		return
	}
	if t.requested != EndNone && reason != EndFailed {
		reason = t.requested
	}
	if err != nil {
		t.lastError = err.Error()
	}
	t.state.Store(int32(StateStopping))
	target, baseline := t.target, t.baseline
	t.mu.Unlock()

	if err != nil {
		t.log.Warn("effect render failed", slog.String("target", target.TargetKey()), slog.Any("err", err))
	}
	if reason.restoresBaseline() {
		t.restore(target, baseline)
	}
	t.terminate(reason)
}

func (t *taskRuntime) Stop(ctx context.Context) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	t.mu.Lock()
	switch State(t.state.Load()) {
	case StateIdle:
		// Claim the transition under the lock so a concurrent Start stays a no-op.
		t.state.Store(int32(StateTerminated))
		t.mu.Unlock()
		t.terminate(EndStopped)
		return true
	case StateTerminated:
		t.mu.Unlock()
	case StateRunning:
		t.state.Store(int32(StateStopping))
		if t.requested == EndNone {
			t.requested = EndStopped
		}
		cancel, target := t.cancel, t.target
		t.mu.Unlock()
		cancel()
		if t.wait(ctx) {
			return true
		}
		// The render ignored cancellation: force it off the target.
		t.abort(target)
		return false
	default:
		t.mu.Unlock()
	}
	return t.wait(ctx)
}

func (t *taskRuntime) wait(ctx context.Context) bool {
	select {
	case <-t.done:
		return true
	default:
	}
	timer := time.NewTimer(t.cfg.stopGrace)
	defer timer.Stop()
	select {
	case <-t.done:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

func (t *taskRuntime) Dispose() {
	safego.Run(context.Background(), func(context.Context) {
		t.mu.Lock()
		switch State(t.state.Load()) {
		case StateTerminated:
			t.mu.Unlock()
			return
		case StateIdle:
			t.state.Store(int32(StateTerminated))
			t.mu.Unlock()
			t.terminate(EndDisposed)
			return
		}
		t.state.Store(int32(StateStopping))
		t.requested = EndDisposed
		// Cancel before reading the baseline: once canceled the loop writes no frame.
		t.cancel()
		target, baseline := t.target, t.baseline
		t.restored = len(baseline) > 0
		t.mu.Unlock()

		t.abort(target)
		t.restore(target, baseline)
		t.terminate(EndDisposed)
	}, safego.WithName("task.dispose:"+t.name), safego.WithLogger(t.log))
}

// terminate is the single transition into StateTerminated.
func (t *taskRuntime) terminate(reason EndReason) {
	t.doneOnce.Do(func() {
		t.mu.Lock()
		t.state.Store(int32(StateTerminated))
		t.end = reason
		t.endedAt = time.Now()
		cancel := t.cancel
		started := !t.startedAt.IsZero()
		st := t.statusLocked()
		t.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		close(t.done)
		if started {
			t.log.Debug("effect terminated", slog.String("target", st.Target), slog.String("end", reason.String()))
			t.callHook(t.cfg.onStop, st)
		}
	})
}

// restore writes the baseline back, bounded by the stop grace period.
func (t *taskRuntime) restore(target effect.Target, baseline []effect.PropertyValue) {
	if target == nil || len(baseline) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.stopGrace)
	defer cancel()
	err := t.dispatch(ctx, func() {
		for _, pv := range baseline {
			t.renderer.SetValue(target, pv.Property, pv.Value)
		}
	})
	if err != nil {
		t.log.Warn("effect baseline restore failed", slog.String("target", target.TargetKey()), slog.Any("err", err))
	}
}

func (t *taskRuntime) abort(target effect.Target) {
	if target == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			t.log.Warn("renderer abort panicked", slog.Any("panic", p))
		}
	}()
	t.renderer.Abort(target)
}

// dispatch runs fn through the dispatcher. A panic in fn is returned as an error.
func (t *taskRuntime) dispatch(ctx context.Context, fn func()) (err error) {
	var fnErr error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("dispatcher panicked: %v", p)
		}
	}()
	err = t.cfg.dispatcher.Do(ctx, func() {
		defer func() {
			if p := recover(); p != nil {
				fnErr = fmt.Errorf("panic: %v", p)
			}
		}()
		fn()
	})
	if err == nil {
		err = fnErr
	}
	return err
}

func (t *taskRuntime) callAnimate(ctx context.Context, target effect.Target, s step) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return t.renderer.Animate(ctx, target, s.prop, s.from, s.to, s.d, s.easing)
}

func (t *taskRuntime) callHook(h func(Status), st Status) {
	if h == nil {
		return
	}
	defer func() {
		if p := recover(); p != nil {
			t.log.Error("task: hook panicked", slog.Any("panic", p), slog.String("stack", string(debug.Stack())))
		}
	}()
	h(st)
}

// step is one property ramp.
type step struct {
	prop     effect.Property
	from, to float64
	d        time.Duration
	easing   effect.Easing
}

// run carries the per-start state of an effect loop.
type run struct {
	ctx      context.Context
	t        *taskRuntime
	target   effect.Target
	cont     ContinueFunc
	baseline []effect.PropertyValue

	halted EndReason
}

// alive is the cancellation point: ctx first, then the caller's predicate.
func (r *run) alive() bool {
	if r.ctx.Err() != nil {
		return false
	}
	if r.cont != nil && !r.callContinue() {
		r.halted = EndHalted
		return false
	}
	return true
}

func (r *run) callContinue() (ok bool) {
	defer func() {
		if p := recover(); p != nil {
			r.t.log.Warn("effect continue check panicked", slog.Any("panic", p))
			ok = false
		}
	}()
	return r.cont()
}

// wait pauses for d (if positive) and then checks for cancellation.
func (r *run) wait(d time.Duration) bool {
	if d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-r.ctx.Done():
			return false
		case <-timer.C:
		}
	}
	return r.alive()
}

// animate runs one ramp. ok is false when the loop must end.
func (r *run) animate(s step) (ok bool, err error) {
	if !r.alive() {
		return false, nil
	}
	return r.settle(r.t.callAnimate(r.ctx, r.target, s))
}

// animatePair runs two ramps concurrently; a failure of one cancels the other.
func (r *run) animatePair(a, b step) (ok bool, err error) {
	if !r.alive() {
		return false, nil
	}
	g, gctx := errgroup.WithContext(r.ctx)
	for _, s := range []step{a, b} {
		g.Go(func() error { return r.t.callAnimate(gctx, r.target, s) })
	}
	return r.settle(g.Wait())
}

func (r *run) settle(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case r.ctx.Err() != nil:
		return false, nil
	case errors.Is(err, effect.ErrAborted):
		// Someone else aborted the target (this task cancels before it aborts): the
		// ramp is cut short and the loop goes on.
		r.t.log.Debug("effect ramp aborted externally")
		return true, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
}

func (r *run) baselineOf(p effect.Property) float64 {
	for _, pv := range r.baseline {
		if pv.Property == p {
			return pv.Value
		}
	}
	return p.DefaultValue()
}

// plain dereferences pointer configs so effect loops and gate policies see values.
func plain(cfg effect.Config) effect.Config {
	switch c := cfg.(type) {
	case *effect.PulseConfig:
		if c != nil {
			return *c
		}
		return nil
	case *effect.FadeConfig:
		if c != nil {
			return *c
		}
		return nil
	case *effect.TranslateConfig:
		if c != nil {
			return *c
		}
		return nil
	}
	return cfg
}
