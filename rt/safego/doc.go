// Package safego runs functions with panic recovery and error reporting.
//
// Effect tasks run in background goroutines and call into collaborators (renderers,
// dispatchers, hooks) that may fail or panic. safego makes such failures observable
// without letting them escape: errors and panics are reported to a *slog.Logger
// (slog.Default() unless WithLogger is given) or to explicit handlers, never returned.
//
// # Synchronous vs asynchronous
//
// Go/GoErr start a new goroutine. Run/RunErr execute synchronously. In all cases, errors
// returned from the function are reported; they are not returned to the caller.
//
// Nil context: if ctx is nil, safego treats it as context.Background().
//
//	safego.GoErr(ctx, work,
//		safego.WithName("dispose-abandoned"),
//		safego.WithAttrs(slog.String("owner", owner)),
//		safego.WithFinally(wg.Done),
//	)
//
// # Error reporting
//
// By default, context.Canceled and context.DeadlineExceeded are NOT reported because
// cancellation is the normal way an effect ends. Use WithReportContextCancel(true) to
// report them.
//
// # Panic policy
//
// RecoverAndReport (default) recovers and reports. RecoverOnly recovers silently.
// RepanicAfterReport reports and panics again.
//
// # Finalizers
//
// WithFinally functions always run (on success, error, panic and repanic), in LIFO order.
// A panicking finalizer is contained and reported.
package safego
