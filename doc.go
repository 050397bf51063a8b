// Package fxkit assembles the effect runtime: runtime settings, a scope coordinator, a
// renderer and an optional operator-facing admin surface.
//
// The main entry point is NewDefaultKit. Code that cannot receive a *Kit by injection may
// use Default.
//
// # Quick start
//
//	kit := fxkit.NewDefaultKit(fxkit.KitSpec{})
//	defer kit.Shutdown(context.Background())
//
//	reg, _ := kit.Scope(page)
//	_, _ = reg.Start(ctx, "banner", kit.Surface.Node("banner"), effect.PulseCallToAction())
//
//	// The page is going away: every effect it owns stops and its targets return to rest.
//	kit.DisposeScope(page)
//
// # Settings
//
// NewDefaultKit registers these keys on KitSpec.Settings:
//
//	fx.stop_all.grace   duration  bound for StopAll / DisposeScope / DisposeAll (default 1s)
//	fx.stop.grace       duration  bound for a single Stop (default 500ms)
//	fx.full_fidelity    bool      false bypasses every effect to its end state
//	fx.duration_scale   float64   multiplies every effect duration; 0 bypasses
//	log.level           enum      debug|info|warn|error, drives the default logger
//
// Every key is read on use, so changes apply to the next effect or stop.
//
// # Admin
//
// With KitSpec.Admin set, the kit assembles an admin subtree (see package admin):
// effect and settings snapshots behind ReadGuard, and effect stop, scope dispose and
// settings writes behind WriteGuard with explicit allowlists. Writes are off unless
// WriteGuard is set.
//
//	kit := fxkit.NewDefaultKit(fxkit.KitSpec{
//		Admin: &fxkit.AdminSpec{
//			Addr:       "127.0.0.1:7070",
//			ReadGuard:  fxkit.IPAllowList("127.0.0.1"),
//			WriteGuard: fxkit.Tokens([]string{token}),
//			SettingsAccess: admin.AccessSpec{AllowPrefixes: []string{"fx.", "log."}},
//		},
//	})
//	_ = kit.Run(ctx) // serves admin until ctx ends or SIGINT/SIGTERM
//
// # Subpackages
//
//   - effect: effect configs, presets, easing, gate policies and the Renderer contract
//   - rt/task: the cancellable effect task and its pulse/fade/translate bodies
//   - rt/scope: per-owner registries and the process-wide coordinator
//   - rt/settings: runtime-tunable values
//   - rt/safego: goroutines with panic recovery
//   - render: UI loop, in-memory surface and a frame-stepping Renderer
//   - ops, admin: HTTP diagnostics and control
package fxkit
