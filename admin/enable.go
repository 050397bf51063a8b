package admin

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/evan-idocoding/fxkit/ops"
	"github.com/evan-idocoding/fxkit/rt/scope"
	"github.com/evan-idocoding/fxkit/rt/settings"
)

// AccessSpec is an allowlist of owners (effect capabilities) or keys (settings).
//
// AllowFunc is exclusive with the lists. For reads a zero AccessSpec means no filter;
// for writes it denies everything.
type AccessSpec struct {
	AllowPrefixes []string
	AllowExact    []string
	AllowFunc     func(string) bool
}

// --- health ---

type HealthzSpec struct {
	Guard Guard
	Path  string // default "/healthz"
}

func EnableHealthz(spec HealthzSpec) Option {
	return func(b *Builder) {
		mount(b, "healthz", resolvePath(spec.Path, "/healthz"), spec.Guard,
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Cache-Control", "no-store")
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				_, _ = w.Write([]byte("ok\n"))
			}))
	}
}

// --- effects ---

type EffectsSpec struct {
	Guard       Guard
	Path        string // default "/effects"
	Coordinator *scope.Coordinator
	Access      AccessSpec
}

func EnableEffects(spec EffectsSpec) Option {
	return func(b *Builder) {
		requireCoordinator(spec.Coordinator, "effects")
		mount(b, "effects", resolvePath(spec.Path, "/effects"), spec.Guard,
			ops.ScopesSnapshotHandler(spec.Coordinator, readOptions(spec.Access, "effects", ops.WithOwnerGuard)...))
	}
}

type EffectStopSpec struct {
	Guard       Guard
	Path        string // default "/effects/stop"
	Coordinator *scope.Coordinator
	Access      AccessSpec
}

func EnableEffectStop(spec EffectStopSpec) Option {
	return func(b *Builder) {
		requireCoordinator(spec.Coordinator, "effects.stop")
		mount(b, "effects.stop", resolvePath(spec.Path, "/effects/stop"), spec.Guard,
			ops.EffectStopHandler(spec.Coordinator, writeOptions(spec.Access, "effects.stop", ops.WithOwnerGuard)...))
	}
}

type ScopeDisposeSpec struct {
	Guard       Guard
	Path        string // default "/effects/dispose"
	Coordinator *scope.Coordinator
	Access      AccessSpec
}

func EnableScopeDispose(spec ScopeDisposeSpec) Option {
	return func(b *Builder) {
		requireCoordinator(spec.Coordinator, "effects.dispose")
		mount(b, "effects.dispose", resolvePath(spec.Path, "/effects/dispose"), spec.Guard,
			ops.ScopeDisposeHandler(spec.Coordinator, writeOptions(spec.Access, "effects.dispose", ops.WithOwnerGuard)...))
	}
}

// DisposeAllSpec enables the global teardown endpoint. It has no allowlist.
type DisposeAllSpec struct {
	Guard       Guard
	Path        string // default "/effects/dispose-all"
	Coordinator *scope.Coordinator
}

func EnableDisposeAll(spec DisposeAllSpec) Option {
	return func(b *Builder) {
		requireCoordinator(spec.Coordinator, "effects.dispose_all")
		mount(b, "effects.dispose_all", resolvePath(spec.Path, "/effects/dispose-all"), spec.Guard,
			ops.DisposeAllHandler(spec.Coordinator))
	}
}

// --- settings ---

type SettingsSnapshotSpec struct {
	Guard    Guard
	Path     string // default "/settings"
	Settings *settings.Settings
	Access   AccessSpec
}

func EnableSettingsSnapshot(spec SettingsSnapshotSpec) Option {
	return func(b *Builder) {
		requireSettings(spec.Settings, "settings")
		mount(b, "settings", resolvePath(spec.Path, "/settings"), spec.Guard,
			ops.SettingsSnapshotHandler(spec.Settings, readOptions(spec.Access, "settings", ops.WithKeyGuard)...))
	}
}

type SettingsSetSpec struct {
	Guard    Guard
	Path     string // default "/settings/set"
	Settings *settings.Settings
	Access   AccessSpec
}

func EnableSettingsSet(spec SettingsSetSpec) Option {
	return func(b *Builder) {
		requireSettings(spec.Settings, "settings.set")
		mount(b, "settings.set", resolvePath(spec.Path, "/settings/set"), spec.Guard,
			ops.SettingsSetHandler(spec.Settings, writeOptions(spec.Access, "settings.set", ops.WithKeyGuard)...))
	}
}

type SettingsResetSpec struct {
	Guard    Guard
	Path     string // default "/settings/reset"
	Settings *settings.Settings
	Access   AccessSpec
}

func EnableSettingsReset(spec SettingsResetSpec) Option {
	return func(b *Builder) {
		requireSettings(spec.Settings, "settings.reset")
		mount(b, "settings.reset", resolvePath(spec.Path, "/settings/reset"), spec.Guard,
			ops.SettingsResetHandler(spec.Settings, writeOptions(spec.Access, "settings.reset", ops.WithKeyGuard)...))
	}
}

// --- log level ---

type LogLevelGetSpec struct {
	Guard Guard
	Path  string // default "/log/level"
	Var   *slog.LevelVar
}

func EnableLogLevelGet(spec LogLevelGetSpec) Option {
	return func(b *Builder) {
		if spec.Var == nil {
			panic("admin: log.level: nil slog.LevelVar")
		}
		mount(b, "log.level", resolvePath(spec.Path, "/log/level"), spec.Guard, ops.LogLevelGetHandler(spec.Var))
	}
}

type LogLevelSetSpec struct {
	Guard Guard
	Path  string // default "/log/level/set"
	Var   *slog.LevelVar
}

func EnableLogLevelSet(spec LogLevelSetSpec) Option {
	return func(b *Builder) {
		if spec.Var == nil {
			panic("admin: log.level.set: nil slog.LevelVar")
		}
		mount(b, "log.level.set", resolvePath(spec.Path, "/log/level/set"), spec.Guard, ops.LogLevelSetHandler(spec.Var))
	}
}

// --- helpers ---

func requireCoordinator(c *scope.Coordinator, capName string) {
	if c == nil {
		panic("admin: " + capName + ": nil scope.Coordinator")
	}
}

func requireSettings(s *settings.Settings, capName string) {
	if s == nil {
		panic("admin: " + capName + ": nil settings.Settings")
	}
}

type guardOption func(func(string) bool) ops.Option

func readOptions(a AccessSpec, capName string, with guardOption) []ops.Option {
	fn := accessFuncOrPanic(a, capName)
	if fn == nil {
		return nil
	}
	return []ops.Option{with(fn)}
}

func writeOptions(a AccessSpec, capName string, with guardOption) []ops.Option {
	fn := accessFuncOrPanic(a, capName)
	if fn == nil {
		// Empty access denies all writes.
		fn = func(string) bool { return false }
	}
	return []ops.Option{with(fn)}
}

func accessFuncOrPanic(a AccessSpec, capName string) func(string) bool {
	if a.AllowFunc != nil {
		if len(a.AllowPrefixes) != 0 || len(a.AllowExact) != 0 {
			panic("admin: " + capName + ": AllowFunc conflicts with AllowPrefixes/AllowExact")
		}
		return a.AllowFunc
	}
	prefixes, prefixesSpecified := trimNonEmpty(a.AllowPrefixes)
	exact, exactSpecified := trimNonEmpty(a.AllowExact)

	// A list was given but nothing in it is usable.
	if (prefixesSpecified && len(prefixes) == 0) || (exactSpecified && len(exact) == 0) {
		return func(string) bool { return false }
	}
	if len(prefixes) == 0 && len(exact) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(exact))
	for _, s := range exact {
		set[s] = struct{}{}
	}
	return func(s string) bool {
		if s == "" {
			return false
		}
		if _, ok := set[s]; ok {
			return true
		}
		for _, p := range prefixes {
			if strings.HasPrefix(s, p) {
				return true
			}
		}
		return false
	}
}

func trimNonEmpty(in []string) (out []string, specified bool) {
	if len(in) == 0 {
		return nil, false
	}
	out = make([]string, 0, len(in))
	for _, raw := range in {
		if s := strings.TrimSpace(raw); s != "" {
			out = append(out, s)
		}
	}
	return out, true
}
