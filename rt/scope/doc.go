// Package scope tracks running effects per UI owner.
//
// A Registry maps effect names to the current task of one owner (a page, a view). Starting
// under an existing name stops the previous holder first, under the registry lock, so a
// target never has two writers. StopAll stops everything within a bounded time, abandoning
// (and disposing in the background) tasks that do not stop in time.
//
// A Coordinator maps owner ids to registries. Registries are created lazily by
// GetOrCreateScope and torn down by DisposeScope / DisposeAll. A torn-down registry is
// closed: Start on a stale handle returns ErrClosed.
//
// Names are trimmed and must match [A-Za-z0-9._-].
//
//	c := scope.NewCoordinator(renderer, scope.WithDispatcher(loop))
//	reg, _ := c.GetOrCreateScope(scope.OwnerID(page))
//	_, _ = reg.Start(ctx, "cta", button, effect.PulseCallToAction())
//	...
//	c.DisposeScope(scope.OwnerID(page)) // page closed
//
// Nothing here returns runtime failures: renderer problems and timeouts are logged via
// slog and reported only as "did it finish in time" booleans.
package scope
