package task

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
)

func TestStart_RejectsNilTargetAndInvalidConfig(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewFade("fade", r)

	if err := tk.Start(context.Background(), nil, effect.FadeIn(), nil); !errors.Is(err, ErrNilTarget) {
		t.Fatalf("Start(nil target) err=%v, want ErrNilTarget", err)
	}
	var nilNode *struct{ node }
	if err := tk.Start(context.Background(), nilNode, effect.FadeIn(), nil); !errors.Is(err, ErrNilTarget) {
		t.Fatalf("Start(typed nil target) err=%v, want ErrNilTarget", err)
	}
	if err := tk.Start(context.Background(), node("a"), nil, nil); !errors.Is(err, effect.ErrInvalidConfig) {
		t.Fatalf("Start(nil cfg) err=%v, want ErrInvalidConfig", err)
	}
	bad := effect.FadeConfig{From: 0, To: math.NaN(), Duration: time.Millisecond}
	if err := tk.Start(context.Background(), node("a"), bad, nil); !errors.Is(err, effect.ErrInvalidConfig) {
		t.Fatalf("Start(NaN) err=%v, want ErrInvalidConfig", err)
	}
	if err := tk.Start(context.Background(), node("a"), effect.PulseSubtle(), nil); !errors.Is(err, effect.ErrInvalidConfig) {
		t.Fatalf("Start(kind mismatch) err=%v, want ErrInvalidConfig", err)
	}
	if got := tk.State(); got != StateIdle {
		t.Fatalf("State=%s after rejected starts, want idle", got)
	}
	if n := len(r.animateCalls()); n != 0 {
		t.Fatalf("Animate calls=%d, want 0", n)
	}
}

func TestFade_CompletesAndKeepsEndState(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewFade("fade", r)
	cfg := effect.FadeConfig{From: 0, To: 1, Duration: 10 * time.Millisecond}

	if err := tk.Start(context.Background(), node("a"), &cfg, nil); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	waitDone(t, tk)

	if got := r.Value(node("a"), effect.PropertyOpacity); got != 1 {
		t.Fatalf("opacity=%v, want 1", got)
	}
	st := tk.Status()
	if st.State != StateTerminated || st.End != EndCompleted {
		t.Fatalf("status=%+v, want terminated/completed", st)
	}
	if st.Target != "a" || st.StartedAt.IsZero() || st.EndedAt.IsZero() {
		t.Fatalf("status=%+v, want target and timestamps", st)
	}
}

func TestStart_SecondCallIsNoOp(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewPulse("p", r)
	done := startAsync(context.Background(), tk, node("a"), foreverPulse(), nil)
	waitEntered(t, r)

	if err := tk.Start(context.Background(), node("b"), foreverPulse(), nil); err != nil {
		t.Fatalf("second Start err=%v, want nil", err)
	}
	if !tk.Stop(context.Background()) {
		t.Fatalf("Stop=false, want true")
	}
	if err := <-done; err != nil {
		t.Fatalf("first Start err=%v", err)
	}
	if err := tk.Start(context.Background(), node("a"), foreverPulse(), nil); err != nil {
		t.Fatalf("Start after terminate err=%v, want nil", err)
	}
	if tk.State() != StateTerminated {
		t.Fatalf("State=%s, want terminated", tk.State())
	}
}

func TestStop_BeforeStart(t *testing.T) {
	t.Parallel()

	var started atomic.Int32
	r := newFakeRenderer()
	tk := NewPulse("p", r, WithOnStart(func(Status) { started.Add(1) }))

	if !tk.Stop(context.Background()) {
		t.Fatalf("Stop on idle task=false, want true")
	}
	if err := tk.Start(context.Background(), node("a"), foreverPulse(), nil); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if started.Load() != 0 || len(r.animateCalls()) != 0 {
		t.Fatalf("stopped task ran: started=%d calls=%d", started.Load(), len(r.animateCalls()))
	}
	if st := tk.Status(); st.End != EndStopped {
		t.Fatalf("End=%s, want stopped", st.End)
	}
}

func TestStop_RestoresBaselineAndIsIdempotent(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.SetValue(node("btn"), effect.PropertyScale, 0.9)
	tk := NewPulse("cta", r)
	done := startAsync(context.Background(), tk, node("btn"), foreverPulse(), nil)
	waitEntered(t, r)

	if !tk.IsRunning() {
		t.Fatalf("IsRunning=false while pulsing")
	}
	if !tk.Stop(context.Background()) {
		t.Fatalf("Stop=false, want true")
	}
	if err := <-done; err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if got := r.Value(node("btn"), effect.PropertyScale); got != 0.9 {
		t.Fatalf("scale=%v after stop, want baseline 0.9", got)
	}

	writes := r.writes.Load()
	for i := 0; i < 5; i++ {
		if !tk.Stop(context.Background()) {
			t.Fatalf("repeated Stop=false, want true")
		}
	}
	time.Sleep(60 * time.Millisecond)
	if got := r.writes.Load(); got != writes {
		t.Fatalf("writes after stop: %d -> %d", writes, got)
	}
	if st := tk.Status(); st.State != StateTerminated || st.End != EndStopped {
		t.Fatalf("status=%+v, want terminated/stopped", st)
	}
}

func TestStop_CooperativeRenderIsNotAborted(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewPulse("cta", r)
	done := startAsync(context.Background(), tk, node("btn"), foreverPulse(), nil)
	waitEntered(t, r)

	if !tk.Stop(context.Background()) {
		t.Fatalf("Stop=false, want true")
	}
	<-done
	if n := r.abortCalls.Load(); n != 0 {
		t.Fatalf("Abort calls=%d for a render that honors ctx, want 0", n)
	}
}

func TestExternalAbort_CutsRampAndEffectGoesOn(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewPulse("cta", r)
	done := startAsync(context.Background(), tk, node("btn"), foreverPulse(), nil)
	waitEntered(t, r)

	r.Abort(node("btn"))
	time.Sleep(60 * time.Millisecond)
	if !tk.IsRunning() {
		t.Fatalf("state=%s after an abort the task did not request, want running", tk.State())
	}
	if n := len(r.animateCalls()); n < 2 {
		t.Fatalf("Animate calls=%d, want the pulse to carry on", n)
	}
	tk.Stop(context.Background())
	<-done
	if st := tk.Status(); st.End != EndStopped {
		t.Fatalf("End=%s, want stopped", st.End)
	}
}

// gatedDispatcher blocks its first call until open is closed, then runs fn whatever the
// state of ctx.
type gatedDispatcher struct {
	first   sync.Once
	entered chan struct{}
	open    chan struct{}
}

func (d *gatedDispatcher) Do(_ context.Context, fn func()) error {
	d.first.Do(func() {
		close(d.entered)
		<-d.open
	})
	fn()
	return nil
}

func TestDispose_DuringBaselineCapture_LeavesBaseline(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.SetValue(node("a"), effect.PropertyOpacity, 0.3)
	d := &gatedDispatcher{entered: make(chan struct{}), open: make(chan struct{})}
	// A bypassed fade writes its end state through the dispatcher without Animate.
	tk := NewFade("f", r, WithDispatcher(d), WithGate(effect.StaticGate(false)))
	done := startAsync(context.Background(), tk, node("a"), effect.FadeConfig{From: 0, To: 1, Duration: time.Second}, nil)
	<-d.entered

	tk.Dispose()
	if tk.State() != StateTerminated {
		t.Fatalf("State=%s after Dispose, want terminated", tk.State())
	}
	close(d.open)
	if err := <-done; err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if got := r.Value(node("a"), effect.PropertyOpacity); got != 0.3 {
		t.Fatalf("opacity=%v, want baseline 0.3", got)
	}
	if st := tk.Status(); st.End != EndDisposed {
		t.Fatalf("End=%s, want disposed", st.End)
	}
}

func TestBypass_AppliesEndStateWithoutAnimating(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		cfg  effect.Config
		prop effect.Property
		want float64
	}{
		{"fade", effect.FadeConfig{From: 0, To: 0.4, Duration: time.Second}, effect.PropertyOpacity, 0.4},
		{"pulse", effect.PulseConfig{From: 1, To: 2, ExpandDuration: time.Second, PulseCount: 2}, effect.PropertyScale, 2},
		{"pulse-forever", effect.PulseConfig{From: 1, To: 1.3, ExpandDuration: time.Second, PulseCount: effect.Forever}, effect.PropertyScale, 1.3},
		{"translate", effect.TranslateConfig{ToX: 30, ToY: 7, Duration: time.Second}, effect.PropertyTranslationX, 30},
		{"translate-revert", effect.Nudge(12), effect.PropertyTranslationX, 12},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := newFakeRenderer()
			r.SetValue(node("a"), effect.PropertyTranslationX, 3)
			r.SetValue(node("a"), effect.PropertyScale, 1.5)
			tk, err := ForConfig(tc.name, tc.cfg, r, WithGate(effect.StaticGate(false)))
			if err != nil {
				t.Fatalf("ForConfig err=%v", err)
			}
			if err := tk.Start(context.Background(), node("a"), tc.cfg, nil); err != nil {
				t.Fatalf("Start err=%v", err)
			}
			if got := r.Value(node("a"), tc.prop); got != tc.want {
				t.Fatalf("%s=%v, want %v", tc.prop, got, tc.want)
			}
			if n := len(r.animateCalls()); n != 0 {
				t.Fatalf("Animate calls=%d, want 0", n)
			}
			if st := tk.Status(); st.End != EndBypassed || st.State != StateTerminated {
				t.Fatalf("status=%+v, want terminated/bypassed", st)
			}
		})
	}
}

func TestGate_AdaptedConfigIsUsed(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	gate := effect.CachedGate(func() bool { return true }, effect.ScaleDurations(func() float64 { return 0.5 }))
	tk := NewFade("f", r, WithGate(gate))
	if err := tk.Start(context.Background(), node("a"), effect.FadeConfig{To: 1, Duration: 20 * time.Millisecond}, nil); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	calls := r.animateCalls()
	if len(calls) != 1 || calls[0].d != 10*time.Millisecond {
		t.Fatalf("calls=%+v, want one 10ms ramp", calls)
	}
}

func TestContinueFunc_HaltsAndRestoresBaseline(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	var checks atomic.Int32
	cont := func() bool { return checks.Add(1) < 4 }

	tk := NewPulse("p", r)
	if err := tk.Start(context.Background(), node("a"), foreverPulse(), cont); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	st := tk.Status()
	if st.End != EndHalted {
		t.Fatalf("End=%s, want halted", st.End)
	}
	if got := r.Value(node("a"), effect.PropertyScale); got != 1 {
		t.Fatalf("scale=%v, want baseline 1", got)
	}
	if n := len(r.animateCalls()); n != 2 {
		t.Fatalf("Animate calls=%d, want 2 (checks before each step)", n)
	}
}

func TestRendererFailure_TerminatesWithoutError(t *testing.T) {
	t.Parallel()

	for _, mode := range []string{"error", "panic"} {
		t.Run(mode, func(t *testing.T) {
			t.Parallel()

			r := newFakeRenderer()
			if mode == "error" {
				r.fail = errRenderBoom
			} else {
				r.panicOn = true
			}
			r.SetValue(node("a"), effect.PropertyOpacity, 0.25)

			tk := NewFade("f", r)
			if err := tk.Start(context.Background(), node("a"), effect.FadeIn(), nil); err != nil {
				t.Fatalf("Start err=%v, want nil", err)
			}
			st := tk.Status()
			if st.End != EndFailed || st.State != StateTerminated {
				t.Fatalf("status=%+v, want terminated/failed", st)
			}
			if st.LastError == "" {
				t.Fatalf("LastError is empty")
			}
			if mode == "error" && !strings.Contains(st.LastError, "gpu lost") {
				t.Fatalf("LastError=%q, want renderer error", st.LastError)
			}
			if got := r.Value(node("a"), effect.PropertyOpacity); got != 0.25 {
				t.Fatalf("opacity=%v, want baseline 0.25", got)
			}
		})
	}
}

func TestStop_HangingRenderer_TimesOutThenDispose(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.hang = true
	r.SetValue(node("a"), effect.PropertyOpacity, 0.5)
	tk := NewFade("f", r, WithStopGrace(30*time.Millisecond))
	done := startAsync(context.Background(), tk, node("a"), effect.FadeIn(), nil)
	waitEntered(t, r)

	start := time.Now()
	if tk.Stop(context.Background()) {
		t.Fatalf("Stop=true with a hanging renderer, want false")
	}
	if d := time.Since(start); d > time.Second {
		t.Fatalf("Stop took %v, want bounded by grace", d)
	}
	if tk.State() != StateStopping {
		t.Fatalf("State=%s, want stopping", tk.State())
	}

	tk.Dispose()
	waitDone(t, tk)
	if got := r.Value(node("a"), effect.PropertyOpacity); got != 0.5 {
		t.Fatalf("opacity=%v after dispose, want baseline 0.5", got)
	}
	if st := tk.Status(); st.End != EndDisposed {
		t.Fatalf("End=%s, want disposed", st.End)
	}

	writes := r.writes.Load()
	close(r.release)
	if err := <-done; err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if got := r.writes.Load(); got != writes {
		t.Fatalf("writes after dispose: %d -> %d", writes, got)
	}
}

func TestParentCancel_EndsCanceled(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	ctx, cancel := context.WithCancel(context.Background())
	tk := NewPulse("p", r)
	done := startAsync(ctx, tk, node("a"), foreverPulse(), nil)
	waitEntered(t, r)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Start did not return after ctx cancel")
	}
	if st := tk.Status(); st.End != EndCanceled {
		t.Fatalf("End=%s, want canceled", st.End)
	}
}

func TestHooks_FireExactlyOnce(t *testing.T) {
	t.Parallel()

	var starts, stops atomic.Int32
	r := newFakeRenderer()
	tk := NewPulse("p", r,
		WithOnStart(func(Status) { starts.Add(1) }),
		WithOnStop(func(st Status) {
			stops.Add(1)
			panic("hook panics are contained")
		}),
	)
	done := startAsync(context.Background(), tk, node("a"), foreverPulse(), nil)
	waitEntered(t, r)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); _ = tk.Stop(context.Background()) }()
		go func() { defer wg.Done(); tk.Dispose() }()
	}
	wg.Wait()
	<-done
	waitDone(t, tk)

	if starts.Load() != 1 || stops.Load() != 1 {
		t.Fatalf("starts=%d stops=%d, want 1/1", starts.Load(), stops.Load())
	}
}

func TestPulse_RunsConfiguredSubCycles(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewPulse("p", r)
	cfg := effect.PulseConfig{
		From: 1, To: 1.1,
		ExpandDuration: time.Millisecond, ContractDuration: time.Millisecond,
		PulseCount: 3, PulsePause: time.Millisecond,
	}
	if err := tk.Start(context.Background(), node("a"), cfg, nil); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	st := tk.Status()
	if st.End != EndCompleted || st.Cycles != 3 {
		t.Fatalf("status=%+v, want completed with 3 cycles", st)
	}
	calls := r.animateCalls()
	if len(calls) != 6 {
		t.Fatalf("Animate calls=%d, want 6", len(calls))
	}
	for i, c := range calls {
		wantTo := 1.1
		if i%2 == 1 {
			wantTo = 1
		}
		if c.to != wantTo {
			t.Fatalf("call %d to=%v, want %v", i, c.to, wantTo)
		}
	}
	if got := r.Value(node("a"), effect.PropertyScale); got != 1 {
		t.Fatalf("scale=%v, want rest value 1", got)
	}
}

func TestTranslate_RevertReturnsToBaseline(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.SetValue(node("a"), effect.PropertyTranslationX, 4)
	r.SetValue(node("a"), effect.PropertyTranslationY, -2)
	tk := NewTranslate("nudge", r)
	cfg := effect.TranslateConfig{
		FromX: 4, FromY: -2, ToX: 20, ToY: 10,
		Duration: 5 * time.Millisecond,
		Revert:   true, RevertDelay: time.Millisecond, RevertDuration: 5 * time.Millisecond,
	}
	if err := tk.Start(context.Background(), node("a"), cfg, nil); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if st := tk.Status(); st.End != EndCompleted {
		t.Fatalf("End=%s, want completed", st.End)
	}
	if x, y := r.Value(node("a"), effect.PropertyTranslationX), r.Value(node("a"), effect.PropertyTranslationY); x != 4 || y != -2 {
		t.Fatalf("position=(%v,%v), want (4,-2)", x, y)
	}
	if n := len(r.animateCalls()); n != 4 {
		t.Fatalf("Animate calls=%d, want 4 (two axes, two legs)", n)
	}
}

func TestTranslate_AxisFailureCancelsSibling(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	r.fail = errRenderBoom
	tk := NewTranslate("t", r)
	if err := tk.Start(context.Background(), node("a"), effect.SlideIn(40), nil); err != nil {
		t.Fatalf("Start err=%v", err)
	}
	if st := tk.Status(); st.End != EndFailed || !strings.Contains(st.LastError, "gpu lost") {
		t.Fatalf("status=%+v, want failed with renderer error", st)
	}
}

func TestDispose_IdleRepeatedAndConcurrent(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	tk := NewFade("f", r)
	for i := 0; i < 3; i++ {
		tk.Dispose()
	}
	waitDone(t, tk)
	if st := tk.Status(); st.End != EndDisposed {
		t.Fatalf("End=%s, want disposed", st.End)
	}
	if err := tk.Start(context.Background(), node("a"), effect.FadeIn(), nil); err != nil {
		t.Fatalf("Start after Dispose err=%v", err)
	}
	if n := len(r.animateCalls()); n != 0 {
		t.Fatalf("Animate calls=%d after Dispose, want 0", n)
	}
}

func TestForConfig_Kinds(t *testing.T) {
	t.Parallel()

	r := newFakeRenderer()
	for _, cfg := range []effect.Config{effect.PulseSubtle(), effect.FadeOut(), effect.Nudge(3)} {
		tk, err := ForConfig("x", cfg, r)
		if err != nil {
			t.Fatalf("ForConfig(%s) err=%v", cfg.Kind(), err)
		}
		if tk.Kind() != cfg.Kind() {
			t.Fatalf("Kind=%s, want %s", tk.Kind(), cfg.Kind())
		}
	}
	if _, err := ForConfig("x", nil, r); !errors.Is(err, effect.ErrInvalidConfig) {
		t.Fatalf("ForConfig(nil) err=%v, want ErrInvalidConfig", err)
	}
}
