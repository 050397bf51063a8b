package effect

import (
	"fmt"
	"math"
	"strings"
)

// Easing selects an easing curve.
//
// The zero value is Linear.
type Easing int

const (
	Linear Easing = iota
	SinIn
	SinOut
	SinInOut
	CubicIn
	CubicOut
	CubicInOut
	SpringOut
)

var easingNames = [...]string{
	Linear:     "linear",
	SinIn:      "sin-in",
	SinOut:     "sin-out",
	SinInOut:   "sin-in-out",
	CubicIn:    "cubic-in",
	CubicOut:   "cubic-out",
	CubicInOut: "cubic-in-out",
	SpringOut:  "spring-out",
}

func (e Easing) String() string {
	if e >= 0 && int(e) < len(easingNames) {
		return easingNames[e]
	}
	return fmt.Sprintf("Easing(%d)", int(e))
}

func (e Easing) valid() bool {
	return e >= 0 && int(e) < len(easingNames)
}

// ParseEasing parses an easing name as returned by Easing.String (case-insensitive).
func ParseEasing(s string) (Easing, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range easingNames {
		if n == s {
			return Easing(i), nil
		}
	}
	return Linear, fmt.Errorf("%w: unknown easing %q", ErrInvalidConfig, s)
}

// Ease maps linear progress t in [0, 1] to eased progress.
//
// t is clamped to [0, 1]. Ease(0) == 0 and Ease(1) == 1 for every curve; SpringOut
// overshoots in between.
func (e Easing) Ease(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	switch e {
	case SinIn:
		return 1 - math.Cos(t*math.Pi/2)
	case SinOut:
		return math.Sin(t * math.Pi / 2)
	case SinInOut:
		return -(math.Cos(math.Pi*t) - 1) / 2
	case CubicIn:
		return t * t * t
	case CubicOut:
		u := 1 - t
		return 1 - u*u*u
	case CubicInOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		u := -2*t + 2
		return 1 - u*u*u/2
	case SpringOut:
		// Damped oscillation settling on 1.
		return 1 - math.Exp(-6*t)*math.Cos(3*math.Pi*t)
	default:
		return t
	}
}

// Lerp interpolates between from and to at eased progress of t.
func (e Easing) Lerp(from, to, t float64) float64 {
	return from + (to-from)*e.Ease(t)
}
