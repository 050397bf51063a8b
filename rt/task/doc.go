// Package task provides cancellable effect tasks: one running effect instance over one target.
//
// # Design highlights
//
//   - Task: Start / Stop / Dispose / IsRunning, with a one-way state machine
//     Idle -> Running -> Stopping -> Terminated.
//   - Primitives: Pulse (repeating expand/contract), Fade (opacity ramp), Translate
//     (position ramp, optionally self-reverting).
//   - Collaborators are injected: effect.Renderer interpolates, effect.Dispatcher runs
//     direct property writes on the UI-affine context, effect.Gate decides bypass.
//   - Failures never escape: renderer errors and collaborator panics are logged (slog)
//     and end the task.
//
// # Lifecycle
//
// A task instance runs at most once. Start blocks until the effect finishes, is stopped,
// or is disposed:
//
//	t := task.NewPulse("cta", renderer, task.WithDispatcher(loop))
//	go t.Start(ctx, button, effect.PulseCallToAction(), nil)
//	...
//	t.Stop(ctx) // true once the baseline is restored and no more writes will happen
//
// Start rejects a nil target or an invalid config synchronously (ErrNilTarget,
// effect.ErrInvalidConfig). Calling Start on a task that already started or terminated
// is a no-op and returns nil.
//
// Stop is idempotent and safe before Start. It cancels the effect and waits up to the
// stop grace period (WithStopGrace, default 500ms) for the task to terminate. Only when
// the grace runs out is the in-flight render aborted with Renderer.Abort, which ends every
// ramp on the target. It reports whether the task terminated in time.
//
// An abort the task did not request cuts the current ramp short; the effect continues
// with its next step.
//
// Dispose is the synchronous, forced variant: it cancels, aborts the render, restores the
// baseline via the Dispatcher and terminates immediately. It never panics and may be called any number
// of times, concurrently with Start or Stop. Whichever of Stop/Dispose/completion reaches
// Terminated first wins; the others become no-ops.
//
// # Baseline
//
// Before the first write a task records the current value of every property it animates.
// When the task ends for any reason other than natural completion or bypass, the baseline
// is written back before the task reports Terminated.
//
// # Cancellation points
//
// The effect loop checks ctx and the caller's ContinueFunc before every render step and
// after every pause. Either source stops the loop at the next check, never mid-step.
//
// # Hooks
//
// WithOnStart and WithOnStop hooks fire exactly once per transition. They are diagnostic
// only: they run synchronously, must be fast, and panics in them are contained.
package task
