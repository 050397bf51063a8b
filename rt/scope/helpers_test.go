package scope

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

type node string

func (n node) TargetKey() string { return string(n) }

type ptrNode struct{ key string }

func (n *ptrNode) TargetKey() string { return n.key }

type write struct {
	target string
	prop   effect.Property
	value  float64
}

// frameRenderer interpolates in 1ms frames and logs every write. Frames are dropped once
// the ramp's ctx is done. With hang set, Animate ignores ctx and Abort until release closes.
type frameRenderer struct {
	mu     sync.Mutex
	values map[string]map[effect.Property]float64
	log    []write
	aborts map[string]chan struct{}

	hang    bool
	release chan struct{}
	entered chan string
}

func newFrameRenderer() *frameRenderer {
	return &frameRenderer{
		values:  map[string]map[effect.Property]float64{},
		aborts:  map[string]chan struct{}{},
		release: make(chan struct{}),
		entered: make(chan string, 1024),
	}
}

func (r *frameRenderer) Animate(ctx context.Context, target effect.Target, p effect.Property, from, to float64, d time.Duration, e effect.Easing) error {
	key := target.TargetKey()
	r.mu.Lock()
	abort, ok := r.aborts[key]
	if !ok {
		abort = make(chan struct{})
		r.aborts[key] = abort
	}
	r.mu.Unlock()
	select {
	case r.entered <- key:
	default:
	}

	if r.hang {
		<-r.release
		return nil
	}
	start := time.Now()
	tick := time.NewTicker(time.Millisecond)
	defer tick.Stop()
	for {
		frac := 1.0
		if d > 0 {
			frac = min(float64(time.Since(start))/float64(d), 1)
		}
		r.frame(ctx, key, p, e.Lerp(from, to, frac))
		if frac >= 1 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-abort:
			return effect.ErrAborted
		case <-tick.C:
		}
	}
}

func (r *frameRenderer) frame(ctx context.Context, key string, p effect.Property, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	r.setLocked(key, p, v)
}

func (r *frameRenderer) setLocked(key string, p effect.Property, v float64) {
	m := r.values[key]
	if m == nil {
		m = map[effect.Property]float64{}
		r.values[key] = m
	}
	m[p] = v
	r.log = append(r.log, write{target: key, prop: p, value: v})
}

func (r *frameRenderer) Abort(target effect.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.aborts[target.TargetKey()]; ok {
		close(ch)
		delete(r.aborts, target.TargetKey())
	}
}

func (r *frameRenderer) Value(target effect.Target, p effect.Property) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.values[target.TargetKey()][p]; ok {
		return v
	}
	return p.DefaultValue()
}

func (r *frameRenderer) SetValue(target effect.Target, p effect.Property, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setLocked(target.TargetKey(), p, v)
}

func (r *frameRenderer) writes() []write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]write(nil), r.log...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func slowFade(from, to float64) effect.FadeConfig {
	return effect.FadeConfig{From: from, To: to, Duration: 200 * time.Millisecond}
}
