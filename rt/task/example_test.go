package task_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/rt/task"
)

type label string

func (l label) TargetKey() string { return string(l) }

// instantRenderer completes every ramp immediately.
type instantRenderer struct {
	mu     sync.Mutex
	values map[effect.Property]float64
}

func (r *instantRenderer) Animate(ctx context.Context, _ effect.Target, p effect.Property, _, to float64, _ time.Duration, _ effect.Easing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.SetValue(nil, p, to)
	return nil
}

func (r *instantRenderer) Abort(effect.Target) {}

func (r *instantRenderer) Value(_ effect.Target, p effect.Property) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.values[p]; ok {
		return v
	}
	return p.DefaultValue()
}

func (r *instantRenderer) SetValue(_ effect.Target, p effect.Property, v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.values == nil {
		r.values = map[effect.Property]float64{}
	}
	r.values[p] = v
}

func ExampleNewFade() {
	r := &instantRenderer{}
	t := task.NewFade("welcome", r, task.WithOnStop(func(st task.Status) {
		fmt.Println("stopped:", st.End)
	}))

	_ = t.Start(context.Background(), label("banner"), effect.FadeOut(), nil)
	fmt.Println("opacity:", r.Value(nil, effect.PropertyOpacity))

	// Output:
	// stopped: completed
	// opacity: 0
}

func ExampleTask_Stop() {
	r := &instantRenderer{}
	t := task.NewPulse("cta", r)

	// Stop before Start terminates the task; the later Start is a no-op.
	fmt.Println(t.Stop(context.Background()), t.State())
	_ = t.Start(context.Background(), label("buy"), effect.PulseCallToAction(), nil)
	fmt.Println(t.State(), t.Status().End)

	// Output:
	// true terminated
	// terminated stopped
}
