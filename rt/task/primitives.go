package task

import (
	"github.com/evan-idocoding/fxkit/effect"
)

// pulseBody: after InitialDelay, PulseCount expand/contract sub-cycles separated by
// PulsePause; with AutoRepeat the cycle repeats after CycleInterval.
func pulseBody(r *run, c effect.Config) error {
	cfg := c.(effect.PulseConfig)
	p := cfg.Prop()
	expand := step{prop: p, from: cfg.From, to: cfg.To, d: cfg.ExpandDuration, easing: cfg.ExpandEasing}
	contract := step{prop: p, from: cfg.To, to: cfg.From, d: cfg.ContractDuration, easing: cfg.ContractEasing}

	if !r.wait(cfg.InitialDelay) {
		return nil
	}
	for {
		for i := 0; cfg.PulseCount == effect.Forever || i < cfg.PulseCount; i++ {
			if i > 0 && !r.wait(cfg.PulsePause) {
				return nil
			}
			if ok, err := r.animate(expand); !ok {
				return err
			}
			if ok, err := r.animate(contract); !ok {
				return err
			}
			r.t.addCycle()
		}
		if !cfg.AutoRepeat || !r.wait(cfg.CycleInterval) {
			return nil
		}
	}
}

// fadeBody: after InitialDelay, one opacity ramp From->To.
func fadeBody(r *run, c effect.Config) error {
	cfg := c.(effect.FadeConfig)
	if !r.wait(cfg.InitialDelay) {
		return nil
	}
	_, err := r.animate(step{
		prop:   effect.PropertyOpacity,
		from:   cfg.From,
		to:     cfg.To,
		d:      cfg.Duration,
		easing: cfg.Easing,
	})
	return err
}

// translateBody: after InitialDelay, both axes ramp concurrently; with Revert, after
// RevertDelay both return to the baseline.
func translateBody(r *run, c effect.Config) error {
	cfg := c.(effect.TranslateConfig)
	if !r.wait(cfg.InitialDelay) {
		return nil
	}
	ok, err := r.animatePair(
		step{prop: effect.PropertyTranslationX, from: cfg.FromX, to: cfg.ToX, d: cfg.Duration, easing: cfg.Easing},
		step{prop: effect.PropertyTranslationY, from: cfg.FromY, to: cfg.ToY, d: cfg.Duration, easing: cfg.Easing},
	)
	if !ok || !cfg.Revert {
		return err
	}
	if !r.wait(cfg.RevertDelay) {
		return nil
	}
	_, err = r.animatePair(
		step{
			prop: effect.PropertyTranslationX, from: cfg.ToX, to: r.baselineOf(effect.PropertyTranslationX),
			d: cfg.RevertDuration, easing: cfg.RevertEasing,
		},
		step{
			prop: effect.PropertyTranslationY, from: cfg.ToY, to: r.baselineOf(effect.PropertyTranslationY),
			d: cfg.RevertDuration, easing: cfg.RevertEasing,
		},
	)
	return err
}
