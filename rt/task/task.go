package task

import (
	"fmt"

	"github.com/evan-idocoding/fxkit/effect"
)

// NewPulse returns an idle pulse task.
//
// It panics if r is nil.
func NewPulse(name string, r effect.Renderer, opts ...Option) Task {
	return newTaskRuntime(name, effect.KindPulse, pulseBody, r, opts)
}

// NewFade returns an idle fade task.
//
// It panics if r is nil.
func NewFade(name string, r effect.Renderer, opts ...Option) Task {
	return newTaskRuntime(name, effect.KindFade, fadeBody, r, opts)
}

// NewTranslate returns an idle translate task.
//
// It panics if r is nil.
func NewTranslate(name string, r effect.Renderer, opts ...Option) Task {
	return newTaskRuntime(name, effect.KindTranslate, translateBody, r, opts)
}

// ForConfig returns a fresh idle task of cfg's kind.
func ForConfig(name string, cfg effect.Config, r effect.Renderer, opts ...Option) (Task, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", effect.ErrInvalidConfig)
	}
	switch cfg.Kind() {
	case effect.KindPulse:
		return NewPulse(name, r, opts...), nil
	case effect.KindFade:
		return NewFade(name, r, opts...), nil
	case effect.KindTranslate:
		return NewTranslate(name, r, opts...), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", effect.ErrInvalidConfig, cfg.Kind())
	}
}
