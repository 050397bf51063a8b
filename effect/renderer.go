package effect

import (
	"context"
	"reflect"
	"time"
)

// Target is an opaque handle to an animatable UI element.
//
// TargetKey identifies the element for logging and per-target aborts; it must be stable
// for the element's lifetime.
type Target interface {
	TargetKey() string
}

// IsNilTarget reports whether t is nil, including a typed nil pointer, map, slice, func
// or channel stored in the interface.
func IsNilTarget(t Target) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Renderer performs the actual interpolation of target properties.
//
// Animate blocks until the ramp completes, ctx is done, or Abort is called for target.
// It returns nil on completion, ctx.Err() on cancellation and ErrAborted on abort.
// Any other error is a renderer failure.
//
// Value and SetValue read and write a property synchronously without animating. Callers
// invoke them through a Dispatcher so that they run on the UI-affine context.
type Renderer interface {
	Animate(ctx context.Context, target Target, p Property, from, to float64, d time.Duration, e Easing) error
	Abort(target Target)
	Value(target Target, p Property) float64
	SetValue(target Target, p Property, v float64)
}

// Dispatcher runs functions on the single UI-affine execution context.
//
// Do runs fn there and waits for it to return. It returns ctx.Err() if ctx is done before
// fn has started; fn is then never run.
type Dispatcher interface {
	Do(ctx context.Context, fn func()) error
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(ctx context.Context, fn func()) error

func (f DispatcherFunc) Do(ctx context.Context, fn func()) error { return f(ctx, fn) }

// Inline is a Dispatcher that runs fn on the calling goroutine.
var Inline Dispatcher = DispatcherFunc(func(ctx context.Context, fn func()) error {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	fn()
	return nil
})
