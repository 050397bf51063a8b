package settings

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDuration_SetFromStringAndBounds(t *testing.T) {
	t.Parallel()

	s := New()
	v, err := s.Duration("fx.stop_all.grace", time.Second,
		WithMin(10*time.Millisecond), WithMax(10*time.Second))
	if err != nil {
		t.Fatalf("Duration err=%v", err)
	}
	if err := s.SetFromString("fx.stop_all.grace", "250ms"); err != nil {
		t.Fatalf("SetFromString err=%v", err)
	}
	if got := v.Get(); got != 250*time.Millisecond {
		t.Fatalf("Get=%v, want 250ms", got)
	}
	if err := s.SetFromString("fx.stop_all.grace", "1ms"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("below min err=%v, want ErrInvalidValue", err)
	}
	if err := v.Set(time.Minute); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("above max err=%v, want ErrInvalidValue", err)
	}
	if got := v.Get(); got != 250*time.Millisecond {
		t.Fatalf("Get after rejected writes=%v, want 250ms", got)
	}

	it, ok := s.Lookup("fx.stop_all.grace")
	if !ok || it.Source != SourceRuntimeSet || it.Value != "250ms" || it.DefaultValue != "1s" {
		t.Fatalf("Lookup=%+v ok=%v", it, ok)
	}
	if it.UpdatedAt.IsZero() {
		t.Fatalf("UpdatedAt is zero after a write")
	}

	if err := s.ResetToDefault("fx.stop_all.grace"); err != nil {
		t.Fatalf("ResetToDefault err=%v", err)
	}
	if got := v.Get(); got != time.Second {
		t.Fatalf("Get after reset=%v, want 1s", got)
	}
}

func TestRegister_Errors(t *testing.T) {
	t.Parallel()

	s := New()
	if _, err := s.Bool("a b", true); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("invalid key err=%v, want ErrInvalidKey", err)
	}
	if _, err := s.Bool("fx.full_fidelity", true); err != nil {
		t.Fatalf("Bool err=%v", err)
	}
	if _, err := s.Bool("fx.full_fidelity", false); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("duplicate err=%v, want ErrAlreadyRegistered", err)
	}
	if _, err := s.Float64("fx.duration_scale", 5, WithMin(0.0), WithMax(4.0)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("default out of range err=%v, want ErrInvalidConfig", err)
	}
	if _, err := s.Float64("fx.x", 1, WithMin(3.0), WithMax(2.0)); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("min>max err=%v, want ErrInvalidConfig", err)
	}
	if err := s.SetFromString("missing", "1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing key err=%v, want ErrNotFound", err)
	}
}

func TestBool_ParseForms(t *testing.T) {
	t.Parallel()

	s := New()
	v, _ := s.Bool("fx.full_fidelity", true)
	for raw, want := range map[string]bool{"off": false, "YES": true, "0": false, " on ": true} {
		if err := s.SetFromString("fx.full_fidelity", raw); err != nil {
			t.Fatalf("SetFromString(%q) err=%v", raw, err)
		}
		if got := v.Get(); got != want {
			t.Fatalf("SetFromString(%q) -> %v, want %v", raw, got, want)
		}
	}
	if err := s.SetFromString("fx.full_fidelity", "maybe"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("err=%v, want ErrInvalidValue", err)
	}
}

func TestOnChange_CalledAndPanicsSwallowed(t *testing.T) {
	t.Parallel()

	s := New()
	var got atomic.Value
	v, err := s.Float64("fx.duration_scale", 1,
		WithOnChange(func(float64) { panic("callback boom") }),
		WithOnChange(func(f float64) { got.Store(f) }),
	)
	if err != nil {
		t.Fatalf("Float64 err=%v", err)
	}
	if err := v.Set(0.5); err != nil {
		t.Fatalf("Set err=%v", err)
	}
	if g, _ := got.Load().(float64); g != 0.5 {
		t.Fatalf("onChange saw %v, want 0.5", g)
	}
}

func TestSnapshot_SortedAndConcurrentReads(t *testing.T) {
	t.Parallel()

	s := New()
	d, _ := s.Duration("z.grace", time.Second)
	_, _ = s.Bool("a.flag", false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if i%2 == 0 {
					_ = d.Set(time.Duration(j) * time.Millisecond)
				} else {
					_ = d.Get()
				}
			}
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	if len(snap.Items) != 2 || snap.Items[0].Key != "a.flag" || snap.Items[1].Key != "z.grace" {
		t.Fatalf("Snapshot=%+v, want sorted [a.flag z.grace]", snap.Items)
	}
	if _, ok := snap.Get("z.grace"); !ok {
		t.Fatalf("Snapshot.Get(z.grace) ok=false")
	}
}

func TestEnum_NormalizesAndRejects(t *testing.T) {
	t.Parallel()

	s := New()
	v, err := s.Enum("fx.mode", "Full", []string{"full", "reduced"})
	if err != nil {
		t.Fatalf("Enum err=%v", err)
	}
	if got := v.Get(); got != "full" {
		t.Fatalf("default=%q, want full", got)
	}
	if err := s.SetFromString("fx.mode", " REDUCED "); err != nil {
		t.Fatalf("SetFromString err=%v", err)
	}
	if got := v.Get(); got != "reduced" {
		t.Fatalf("Get=%q, want reduced", got)
	}
	if err := s.SetFromString("fx.mode", "off"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("unknown value err=%v, want ErrInvalidValue", err)
	}
	if it, _ := s.Lookup("fx.mode"); it.Type != TypeEnum || it.Source != SourceRuntimeSet {
		t.Fatalf("item=%+v", it)
	}
	if _, err := s.Enum("fx.bad", "x", []string{"a"}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("default outside set err=%v, want ErrInvalidConfig", err)
	}
	if _, err := s.Enum("fx.empty", "", nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("empty set err=%v, want ErrInvalidConfig", err)
	}
}
