package settings

import (
	"cmp"
	"fmt"
	"sync/atomic"
	"time"
)

type varConfig[T any] struct {
	min, max       *T
	onChange       []func(T)
	validateBounds func(T) error
}

// Option configures a variable at registration time.
type Option[T any] func(*varConfig[T])

// WithMin sets an inclusive minimum.
func WithMin[T cmp.Ordered](min T) Option[T] {
	return func(c *varConfig[T]) {
		c.min = &min
		c.validateBounds = boundsCheck(c)
	}
}

// WithMax sets an inclusive maximum.
func WithMax[T cmp.Ordered](max T) Option[T] {
	return func(c *varConfig[T]) {
		c.max = &max
		c.validateBounds = boundsCheck(c)
	}
}

func boundsCheck[T cmp.Ordered](c *varConfig[T]) func(T) error {
	return func(v T) error {
		if c.min != nil && v < *c.min {
			return fmt.Errorf("%v < min %v", v, *c.min)
		}
		if c.max != nil && v > *c.max {
			return fmt.Errorf("%v > max %v", v, *c.max)
		}
		return nil
	}
}

// WithOnChange appends a callback run after every successful write.
//
// Callbacks must be fast and must not call write APIs on the same Settings.
func WithOnChange[T any](fn func(newValue T)) Option[T] {
	return func(c *varConfig[T]) {
		if fn != nil {
			c.onChange = append(c.onChange, fn)
		}
	}
}

// Var is a runtime-tunable value of type T.
type Var[T comparable] struct {
	s   *Settings
	key string
	typ Type
	def T

	cur       atomic.Pointer[T]
	updatedAt atomic.Int64

	cfg    varConfig[T]
	format func(T) string
	parse  func(string) (T, error)
}

// DurationVar is a runtime-tunable time.Duration.
type DurationVar = Var[time.Duration]

// BoolVar is a runtime-tunable bool.
type BoolVar = Var[bool]

// Float64Var is a runtime-tunable float64.
type Float64Var = Var[float64]

// EnumVar is a runtime-tunable string restricted to a fixed set of values.
type EnumVar = Var[string]

// Key returns the registered key.
func (v *Var[T]) Key() string { return v.key }

// Get returns the current value. It never blocks.
func (v *Var[T]) Get() T {
	if v == nil {
		var zero T
		return zero
	}
	return *v.cur.Load()
}

// Default returns the registered default value.
func (v *Var[T]) Default() T { return v.def }

// Set validates and applies x, then runs onChange callbacks.
func (v *Var[T]) Set(x T) error {
	if err := v.validate(x); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidValue, v.key, err)
	}
	v.s.writeMu.Lock()
	defer v.s.writeMu.Unlock()
	v.store(x)
	return nil
}

// ResetToDefault restores the default value.
func (v *Var[T]) ResetToDefault() {
	v.s.writeMu.Lock()
	defer v.s.writeMu.Unlock()
	v.store(v.def)
}

func (v *Var[T]) validate(x T) error {
	if v.cfg.validateBounds != nil {
		return v.cfg.validateBounds(x)
	}
	return nil
}

// store requires s.writeMu.
func (v *Var[T]) store(x T) {
	v.cur.Store(&x)
	v.updatedAt.Store(time.Now().UnixNano())
	for _, fn := range v.cfg.onChange {
		func() {
			defer func() { _ = recover() }()
			fn(x)
		}()
	}
}

func (v *Var[T]) name() string { return v.key }

func (v *Var[T]) setFromString(raw string) error {
	x, err := v.parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidValue, v.key, err)
	}
	if err := v.validate(x); err != nil {
		return fmt.Errorf("%w: %q: %v", ErrInvalidValue, v.key, err)
	}
	v.store(x)
	return nil
}

func (v *Var[T]) resetToDefault() { v.store(v.def) }

func (v *Var[T]) snapshot() Item {
	cur := v.Get()
	it := Item{
		Key:          v.key,
		Type:         v.typ,
		Value:        v.format(cur),
		DefaultValue: v.format(v.def),
		Source:       SourceDefault,
	}
	if cur != v.def {
		it.Source = SourceRuntimeSet
	}
	if v.cfg.min != nil {
		it.Min = v.format(*v.cfg.min)
	}
	if v.cfg.max != nil {
		it.Max = v.format(*v.cfg.max)
	}
	if ns := v.updatedAt.Load(); ns != 0 {
		it.UpdatedAt = time.Unix(0, ns)
	}
	return it
}
