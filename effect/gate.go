package effect

import (
	"sync"
	"time"
)

// Gate decides whether effects animate at full fidelity.
//
// SupportsFullFidelity false means every effect is bypassed. Otherwise Adapt may return
// an adjusted config, or ok=false to bypass this one.
type Gate interface {
	SupportsFullFidelity() bool
	Adapt(cfg Config) (adapted Config, ok bool)
}

// Policy adapts a config for a capable device, or returns ok=false to bypass it.
type Policy func(cfg Config) (Config, bool)

// PassThrough returns cfg unchanged.
func PassThrough(cfg Config) (Config, bool) { return cfg, true }

// BypassAll bypasses every config.
func BypassAll(Config) (Config, bool) { return nil, false }

// ScaleDurations returns a policy multiplying every duration by factor().
//
// factor is evaluated per call, so it may read a runtime-tunable value. A factor <= 0
// bypasses the config (animations disabled).
func ScaleDurations(factor func() float64) Policy {
	return func(cfg Config) (Config, bool) {
		f := 1.0
		if factor != nil {
			f = factor()
		}
		if f <= 0 {
			return nil, false
		}
		if f == 1 {
			return cfg, true
		}
		scale := func(d time.Duration) time.Duration { return time.Duration(float64(d) * f) }
		switch c := cfg.(type) {
		case PulseConfig:
			c.ExpandDuration = scale(c.ExpandDuration)
			c.ContractDuration = scale(c.ContractDuration)
			c.PulsePause = scale(c.PulsePause)
			c.CycleInterval = scale(c.CycleInterval)
			c.InitialDelay = scale(c.InitialDelay)
			return c, true
		case FadeConfig:
			c.Duration = scale(c.Duration)
			c.InitialDelay = scale(c.InitialDelay)
			return c, true
		case TranslateConfig:
			c.Duration = scale(c.Duration)
			c.InitialDelay = scale(c.InitialDelay)
			c.RevertDelay = scale(c.RevertDelay)
			c.RevertDuration = scale(c.RevertDuration)
			return c, true
		default:
			return cfg, true
		}
	}
}

type staticGate bool

func (g staticGate) SupportsFullFidelity() bool { return bool(g) }

func (g staticGate) Adapt(cfg Config) (Config, bool) { return cfg, bool(g) }

// StaticGate returns a Gate with a fixed answer and a pass-through policy.
func StaticGate(full bool) Gate { return staticGate(full) }

type cachedGate struct {
	full   func() bool
	policy Policy
}

// CachedGate returns a Gate that calls probe at most once and caches the answer.
//
// policy applies when the probe reports full fidelity; nil means PassThrough.
// A panicking probe is treated as "no full fidelity".
func CachedGate(probe func() bool, policy Policy) Gate {
	if policy == nil {
		policy = PassThrough
	}
	return &cachedGate{
		full: sync.OnceValue(func() (ok bool) {
			if probe == nil {
				return true
			}
			defer func() {
				if recover() != nil {
					ok = false
				}
			}()
			return probe()
		}),
		policy: policy,
	}
}

func (g *cachedGate) SupportsFullFidelity() bool { return g.full() }

func (g *cachedGate) Adapt(cfg Config) (Config, bool) {
	if !g.full() {
		return nil, false
	}
	return g.policy(cfg)
}
