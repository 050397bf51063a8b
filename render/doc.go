// Package render is a reference rendering stack for effects.
//
// Loop is the single UI-affine execution context: every property write runs on its one
// goroutine, in submission order. It implements effect.Dispatcher.
//
// Surface is an in-memory property store standing in for a widget tree. Observers see
// every write (a terminal or GUI sink redraws from them).
//
// Animator implements effect.Renderer on top of a Loop and a Surface. It steps a ramp in
// frames, submitting each frame to the Loop under the ramp's context, so a frame submitted
// after cancellation is dropped instead of written.
//
//	loop := render.NewLoop()
//	defer loop.Close()
//	surf := render.NewSurface()
//	anim := render.NewAnimator(loop, surf)
//	coord := scope.NewCoordinator(anim, scope.WithDispatcher(loop))
package render
