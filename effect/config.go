package effect

import (
	"fmt"
	"math"
	"time"
)

// Forever is the PulseCount sentinel for an unbounded number of sub-cycles.
const Forever = -1

// Config describes one effect instance.
//
// Implementations are immutable values: PulseConfig, FadeConfig and TranslateConfig.
type Config interface {
	Kind() Kind
	// Validate reports whether the config can be run. Errors wrap ErrInvalidConfig.
	Validate() error
	// Properties lists the properties written by the effect, in write order.
	Properties() []Property
	// EndState is the state applied when the effect is bypassed.
	// baseline holds the pre-start values of Properties, in the same order.
	EndState(baseline []PropertyValue) []PropertyValue
}

// PulseConfig describes a repeating expand/contract effect.
//
// One cycle is PulseCount sub-cycles (expand From->To, contract To->From) separated by
// PulsePause. With AutoRepeat, cycles repeat after CycleInterval until cancelled.
type PulseConfig struct {
	// Property is the pulsed property. Zero means PropertyScale.
	Property Property

	From float64 // rest value
	To   float64 // peak value

	ExpandDuration   time.Duration
	ContractDuration time.Duration
	ExpandEasing     Easing
	ContractEasing   Easing

	// PulseCount is the number of sub-cycles per cycle, or Forever.
	PulseCount int
	PulsePause time.Duration

	AutoRepeat    bool
	CycleInterval time.Duration

	InitialDelay time.Duration
}

func (c PulseConfig) Kind() Kind { return KindPulse }

// Prop returns the pulsed property, defaulting to PropertyScale.
func (c PulseConfig) Prop() Property {
	if c.Property == 0 {
		return PropertyScale
	}
	return c.Property
}

func (c PulseConfig) Properties() []Property { return []Property{c.Prop()} }

// EndState of a pulse is its peak value To.
func (c PulseConfig) EndState([]PropertyValue) []PropertyValue {
	return []PropertyValue{{Property: c.Prop(), Value: c.To}}
}

func (c PulseConfig) Validate() error {
	if err := validProperty("property", c.Prop()); err != nil {
		return err
	}
	if err := finite("from", c.From); err != nil {
		return err
	}
	if err := finite("to", c.To); err != nil {
		return err
	}
	if c.PulseCount < 0 && c.PulseCount != Forever {
		return fmt.Errorf("%w: pulse count %d (must be >= 0 or Forever)", ErrInvalidConfig, c.PulseCount)
	}
	if err := nonNegative(map[string]time.Duration{
		"expand duration":   c.ExpandDuration,
		"contract duration": c.ContractDuration,
		"pulse pause":       c.PulsePause,
		"cycle interval":    c.CycleInterval,
		"initial delay":     c.InitialDelay,
	}); err != nil {
		return err
	}
	if c.PulseCount == Forever && c.ExpandDuration+c.ContractDuration+c.PulsePause == 0 {
		return fmt.Errorf("%w: endless pulse with zero cycle length", ErrInvalidConfig)
	}
	if c.AutoRepeat && c.ExpandDuration+c.ContractDuration+c.PulsePause+c.CycleInterval == 0 {
		return fmt.Errorf("%w: auto-repeat pulse with zero cycle length", ErrInvalidConfig)
	}
	return validEasings(c.ExpandEasing, c.ContractEasing)
}

// FadeConfig describes a one-shot opacity ramp.
type FadeConfig struct {
	From, To     float64
	Duration     time.Duration
	Easing       Easing
	InitialDelay time.Duration
}

func (c FadeConfig) Kind() Kind { return KindFade }

func (c FadeConfig) Properties() []Property { return []Property{PropertyOpacity} }

func (c FadeConfig) EndState([]PropertyValue) []PropertyValue {
	return []PropertyValue{{Property: PropertyOpacity, Value: c.To}}
}

func (c FadeConfig) Validate() error {
	if err := finite("from", c.From); err != nil {
		return err
	}
	if err := finite("to", c.To); err != nil {
		return err
	}
	if err := nonNegative(map[string]time.Duration{
		"duration":      c.Duration,
		"initial delay": c.InitialDelay,
	}); err != nil {
		return err
	}
	return validEasings(c.Easing)
}

// TranslateConfig describes a one-shot position ramp.
//
// If Revert is set, the target returns to its baseline position after RevertDelay,
// over RevertDuration.
type TranslateConfig struct {
	FromX, FromY float64
	ToX, ToY     float64
	Duration     time.Duration
	Easing       Easing
	InitialDelay time.Duration

	Revert         bool
	RevertDelay    time.Duration
	RevertDuration time.Duration
	RevertEasing   Easing
}

func (c TranslateConfig) Kind() Kind { return KindTranslate }

func (c TranslateConfig) Properties() []Property {
	return []Property{PropertyTranslationX, PropertyTranslationY}
}

// EndState is (ToX, ToY), with or without Revert.
func (c TranslateConfig) EndState([]PropertyValue) []PropertyValue {
	return []PropertyValue{
		{Property: PropertyTranslationX, Value: c.ToX},
		{Property: PropertyTranslationY, Value: c.ToY},
	}
}

func (c TranslateConfig) Validate() error {
	for name, v := range map[string]float64{"from x": c.FromX, "from y": c.FromY, "to x": c.ToX, "to y": c.ToY} {
		if err := finite(name, v); err != nil {
			return err
		}
	}
	if err := nonNegative(map[string]time.Duration{
		"duration":        c.Duration,
		"initial delay":   c.InitialDelay,
		"revert delay":    c.RevertDelay,
		"revert duration": c.RevertDuration,
	}); err != nil {
		return err
	}
	return validEasings(c.Easing, c.RevertEasing)
}

// Validate validates cfg, treating a nil config as invalid.
func Validate(cfg Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	return cfg.Validate()
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
	}
	return nil
}

func nonNegative(ds map[string]time.Duration) error {
	for name, d := range ds {
		if d < 0 {
			return fmt.Errorf("%w: %s %s is negative", ErrInvalidConfig, name, d)
		}
	}
	return nil
}

func validProperty(name string, p Property) error {
	if p < PropertyScale || p > PropertyTranslationY {
		return fmt.Errorf("%w: %s %v", ErrInvalidConfig, name, p)
	}
	return nil
}

func validEasings(es ...Easing) error {
	for _, e := range es {
		if !e.valid() {
			return fmt.Errorf("%w: easing %v", ErrInvalidConfig, e)
		}
	}
	return nil
}
