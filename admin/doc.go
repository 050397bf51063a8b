// Package admin assembles a guarded admin subtree (an http.Handler) from ops handlers.
//
// Nothing is mounted unless explicitly enabled via an Enable option, and every enabled
// capability must carry a non-nil Guard. Assembly errors are fail-fast and panic.
//
// Default paths:
//
//	/healthz              GET   always 200 "ok"
//	/effects              GET   ops.ScopesSnapshotHandler
//	/effects/stop         POST  ops.EffectStopHandler      (?owner=&name=)
//	/effects/dispose      POST  ops.ScopeDisposeHandler    (?owner=)
//	/effects/dispose-all  POST  ops.DisposeAllHandler
//	/settings             GET   ops.SettingsSnapshotHandler
//	/settings/set         POST  ops.SettingsSetHandler     (?key=&value=)
//	/settings/reset       POST  ops.SettingsResetHandler   (?key=)
//	/log/level            GET   ops.LogLevelGetHandler
//	/log/level/set        POST  ops.LogLevelSetHandler     (?level=)
//
// Write capabilities take an Access allowlist; an empty allowlist denies every write.
//
// Example:
//
//	h := admin.New(
//		admin.EnableEffects(admin.EffectsSpec{Guard: admin.AllowAll(), Coordinator: c}),
//		admin.EnableEffectStop(admin.EffectStopSpec{
//			Guard:       admin.Tokens([]string{token}),
//			Coordinator: c,
//			Access:      admin.AccessSpec{AllowPrefixes: []string{"page."}},
//		}),
//	)
//	mux.Handle("/-/", http.StripPrefix("/-", h))
package admin
