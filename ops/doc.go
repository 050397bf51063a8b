// Package ops provides net/http handlers for inspecting and controlling effects at runtime.
//
// ops does not choose routing paths, does no authn/authz, and does not start servers.
// Mount the handlers into your own mux, behind your own middleware.
//
// # Formats
//
// Every handler renders text by default; WithDefaultFormat changes the default and
// ?format=text|json overrides it per request. Text output is line-based, tab-separated
// and greppable. JSON output is structured.
//
// # Handlers
//
//   - effects: ScopesSnapshotHandler, ScopeDisposeHandler, EffectStopHandler, DisposeAllHandler
//     (rt/scope integration)
//   - settings: SettingsSnapshotHandler, SettingsSetHandler, SettingsResetHandler
//     (rt/settings integration)
//   - logging: LogLevelGetHandler, LogLevelSetHandler (slog.LevelVar)
//
// Write handlers accept POST only; owner and key allowlists (WithOwnerGuard, WithKeyGuard)
// restrict what they may touch.
package ops
