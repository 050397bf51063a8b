package effect

import "time"

// PulseSubtle is a gentle, endless breathing pulse for idle affordances.
func PulseSubtle() PulseConfig {
	return PulseConfig{
		From:             1.0,
		To:               1.03,
		ExpandDuration:   900 * time.Millisecond,
		ContractDuration: 900 * time.Millisecond,
		ExpandEasing:     SinInOut,
		ContractEasing:   SinInOut,
		PulseCount:       1,
		AutoRepeat:       true,
		CycleInterval:    1200 * time.Millisecond,
	}
}

// PulseCallToAction draws attention to a primary action: two quick beats, then a rest.
func PulseCallToAction() PulseConfig {
	return PulseConfig{
		From:             1.0,
		To:               1.08,
		ExpandDuration:   250 * time.Millisecond,
		ContractDuration: 350 * time.Millisecond,
		ExpandEasing:     CubicOut,
		ContractEasing:   CubicIn,
		PulseCount:       2,
		PulsePause:       120 * time.Millisecond,
		AutoRepeat:       true,
		CycleInterval:    2 * time.Second,
		InitialDelay:     500 * time.Millisecond,
	}
}

// PulseIntense is a strong one-shot burst for alerts.
func PulseIntense() PulseConfig {
	return PulseConfig{
		From:             1.0,
		To:               1.15,
		ExpandDuration:   150 * time.Millisecond,
		ContractDuration: 200 * time.Millisecond,
		ExpandEasing:     CubicOut,
		ContractEasing:   SpringOut,
		PulseCount:       3,
		PulsePause:       60 * time.Millisecond,
	}
}

// FadeIn ramps opacity from transparent to opaque.
func FadeIn() FadeConfig {
	return FadeConfig{From: 0, To: 1, Duration: 300 * time.Millisecond, Easing: CubicOut}
}

// FadeOut ramps opacity from opaque to transparent.
func FadeOut() FadeConfig {
	return FadeConfig{From: 1, To: 0, Duration: 250 * time.Millisecond, Easing: CubicIn}
}

// SlideIn moves a target in from dy below its resting position.
func SlideIn(dy float64) TranslateConfig {
	return TranslateConfig{
		FromY:    dy,
		Duration: 350 * time.Millisecond,
		Easing:   CubicOut,
	}
}

// Nudge shifts a target sideways by dx and springs it back.
func Nudge(dx float64) TranslateConfig {
	return TranslateConfig{
		ToX:            dx,
		Duration:       120 * time.Millisecond,
		Easing:         SinOut,
		Revert:         true,
		RevertDuration: 300 * time.Millisecond,
		RevertEasing:   SpringOut,
	}
}
