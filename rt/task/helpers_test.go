package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

type node string

func (n node) TargetKey() string { return string(n) }

type animateCall struct {
	prop     effect.Property
	from, to float64
	d        time.Duration
}

// fakeRenderer writes `from` when a ramp starts and `to` when it completes. Writes are
// dropped once the ramp's ctx is done, like a UI loop dropping stale frames.
type fakeRenderer struct {
	mu     sync.Mutex
	values map[string]map[effect.Property]float64
	calls  []animateCall
	aborts map[string]chan struct{}
	writes atomic.Int64
	// abortCalls counts Abort calls from anyone.
	abortCalls atomic.Int32

	fail    error
	panicOn bool

	// hang makes Animate ignore ctx and Abort until release is closed.
	hang    bool
	release chan struct{}
	entered chan struct{}
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		values:  map[string]map[effect.Property]float64{},
		aborts:  map[string]chan struct{}{},
		release: make(chan struct{}),
		entered: make(chan struct{}, 1024),
	}
}

func (r *fakeRenderer) Animate(ctx context.Context, target effect.Target, p effect.Property, from, to float64, d time.Duration, _ effect.Easing) error {
	key := target.TargetKey()
	r.mu.Lock()
	r.calls = append(r.calls, animateCall{prop: p, from: from, to: to, d: d})
	abort, ok := r.aborts[key]
	if !ok {
		abort = make(chan struct{})
		r.aborts[key] = abort
	}
	r.mu.Unlock()

	select {
	case r.entered <- struct{}{}:
	default:
	}
	if r.panicOn {
		panic("renderer exploded")
	}
	if r.fail != nil {
		return r.fail
	}
	r.write(ctx, key, p, from)

	if r.hang {
		<-r.release
		r.write(ctx, key, p, to)
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-abort:
		return effect.ErrAborted
	case <-timer.C:
	}
	r.write(ctx, key, p, to)
	return nil
}

func (r *fakeRenderer) write(ctx context.Context, key string, p effect.Property, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	r.setLocked(key, p, v)
}

func (r *fakeRenderer) setLocked(key string, p effect.Property, v float64) {
	m := r.values[key]
	if m == nil {
		m = map[effect.Property]float64{}
		r.values[key] = m
	}
	m[p] = v
	r.writes.Add(1)
}

func (r *fakeRenderer) Abort(target effect.Target) {
	r.abortCalls.Add(1)
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.aborts[target.TargetKey()]; ok {
		close(ch)
		delete(r.aborts, target.TargetKey())
	}
}

func (r *fakeRenderer) Value(target effect.Target, p effect.Property) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.values[target.TargetKey()][p]; ok {
		return v
	}
	return p.DefaultValue()
}

func (r *fakeRenderer) SetValue(target effect.Target, p effect.Property, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(target.TargetKey(), p, v)
}

func (r *fakeRenderer) animateCalls() []animateCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]animateCall(nil), r.calls...)
}

func waitEntered(t *testing.T, r *fakeRenderer) {
	t.Helper()
	select {
	case <-r.entered:
	case <-time.After(2 * time.Second):
		t.Fatalf("renderer was never called")
	}
}

func waitDone(t *testing.T, tk Task) {
	t.Helper()
	select {
	case <-tk.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("task %q did not terminate (state=%s)", tk.Name(), tk.State())
	}
}

// startAsync runs Start in a goroutine and returns its result channel.
func startAsync(ctx context.Context, tk Task, target effect.Target, cfg effect.Config, cont ContinueFunc) <-chan error {
	ch := make(chan error, 1)
	go func() { ch <- tk.Start(ctx, target, cfg, cont) }()
	return ch
}

var errRenderBoom = errors.New("gpu lost")

func foreverPulse() effect.PulseConfig {
	return effect.PulseConfig{
		From:             1,
		To:               1.2,
		ExpandDuration:   20 * time.Millisecond,
		ContractDuration: 20 * time.Millisecond,
		PulseCount:       effect.Forever,
		PulsePause:       5 * time.Millisecond,
	}
}
