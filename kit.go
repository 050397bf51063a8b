package fxkit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/evan-idocoding/fxkit/admin"
	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/render"
	"github.com/evan-idocoding/fxkit/rt/scope"
	"github.com/evan-idocoding/fxkit/rt/settings"
	"github.com/evan-idocoding/fxkit/rt/settings/settingslog"
	"github.com/evan-idocoding/fxkit/rt/task"
)

var (
	// ErrAlreadyStarted indicates Start/Run was called more than once.
	ErrAlreadyStarted = errors.New("fxkit: kit already started")
	// ErrNoOwner indicates Current was called on a kit without an owner provider.
	ErrNoOwner = errors.New("fxkit: no owner provider")
)

// Setting keys registered by NewDefaultKit.
const (
	KeyStopAllGrace  = "fx.stop_all.grace"
	KeyStopGrace     = "fx.stop.grace"
	KeyFullFidelity  = "fx.full_fidelity"
	KeyDurationScale = "fx.duration_scale"
	KeyLogLevel      = "log.level"
)

// KitSpec configures NewDefaultKit. The zero value is a usable in-memory kit.
type KitSpec struct {
	// Renderer draws effects. Nil means a render.Animator over a fresh render.Surface,
	// driven by a render.Loop the kit owns.
	Renderer effect.Renderer

	// Dispatcher runs baseline reads and restores on the UI goroutine. Nil means the
	// kit's Loop when Renderer is nil, effect.Inline otherwise.
	Dispatcher effect.Dispatcher

	// Probe reports whether the device can animate at full fidelity. It is called at
	// most once. Nil means capable.
	Probe func() bool

	// Owner returns the UI owner currently in front; Current resolves it. Optional.
	Owner scope.OwnerFunc

	// Logger defaults to a text handler on LogOutput whose level follows the log.level setting.
	Logger *slog.Logger
	// LogOutput is where the default logger writes. Nil means os.Stderr.
	LogOutput io.Writer

	// Settings receives the kit's keys. Nil means a fresh settings.Settings.
	Settings *settings.Settings

	// Admin enables the admin subtree. Nil disables it.
	Admin *AdminSpec

	// Signals controls which OS signals Run and ShutdownOnSignal listen to.
	Signals SignalSpec

	// ShutdownTimeout bounds Shutdown's internal work. <= 0 means 5s.
	ShutdownTimeout time.Duration
}

// AdminSpec configures the kit's admin subtree.
type AdminSpec struct {
	// Addr serves the subtree on a standalone server when non-empty. Otherwise only
	// Kit.AdminHandler is assembled and mounting it is up to the caller.
	Addr string

	// ReadGuard is required. It protects every read endpoint.
	ReadGuard Guard

	// WriteGuard enables write endpoints when non-nil.
	WriteGuard Guard

	// OwnerAccess allowlists owners for effect stop/dispose; empty denies all.
	OwnerAccess admin.AccessSpec
	// SettingsAccess allowlists keys for settings set/reset; empty denies all.
	SettingsAccess admin.AccessSpec
	// EnableDisposeAll mounts the global teardown endpoint (WriteGuard required).
	EnableDisposeAll bool
}

// SignalSpec selects shutdown signals.
type SignalSpec struct {
	// Disable disables signal handling.
	Disable bool
	// Signals nil/empty means SIGINT+SIGTERM on Unix, os.Interrupt elsewhere.
	Signals []os.Signal
}

// Kit is an assembled effect runtime: settings, coordinator, renderer and admin surface.
type Kit struct {
	Settings    *settings.Settings
	LogLevel    *slog.LevelVar
	Logger      *slog.Logger
	Coordinator *scope.Coordinator
	Renderer    effect.Renderer
	// Surface is the in-memory property store; nil when KitSpec.Renderer was given.
	Surface *render.Surface

	AdminHandler http.Handler
	AdminServer  *http.Server

	// --- internals ---

	owner           scope.OwnerFunc
	loop            *render.Loop
	signals         SignalSpec
	shutdownTimeout time.Duration

	mu       sync.Mutex
	started  bool
	listener net.Listener

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
	shutdownErr  error
}

// NewDefaultKit assembles a Kit.
//
// Assembly errors (duplicate setting keys, a nil admin ReadGuard, write options without
// a WriteGuard) are fail-fast and panic.
func NewDefaultKit(spec KitSpec) *Kit {
	k := &Kit{
		Settings:        spec.Settings,
		owner:           spec.Owner,
		signals:         spec.Signals,
		shutdownTimeout: resolveDuration(spec.ShutdownTimeout, 5*time.Second),
		shutdownCh:      make(chan struct{}),
	}
	if k.Settings == nil {
		k.Settings = settings.New()
	}
	s := k.Settings

	_, lv, err := settingslog.LevelVar(s, KeyLogLevel, slog.LevelInfo)
	mustRegister(err)
	k.LogLevel = lv
	k.Logger = spec.Logger
	if k.Logger == nil {
		out := spec.LogOutput
		if out == nil {
			out = os.Stderr
		}
		k.Logger = slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: lv}))
	}

	stopAll, err := s.Duration(KeyStopAllGrace, scope.DefaultStopAllGrace,
		settings.WithMin(10*time.Millisecond), settings.WithMax(30*time.Second))
	mustRegister(err)
	stop, err := s.Duration(KeyStopGrace, task.DefaultStopGrace,
		settings.WithMin(time.Millisecond), settings.WithMax(30*time.Second))
	mustRegister(err)
	full, err := s.Bool(KeyFullFidelity, true)
	mustRegister(err)
	scale, err := s.Float64(KeyDurationScale, 1, settings.WithMin(0.0), settings.WithMax(10.0))
	mustRegister(err)

	dispatcher := spec.Dispatcher
	k.Renderer = spec.Renderer
	if k.Renderer == nil {
		k.loop = render.NewLoop(render.WithLoopLogger(k.Logger))
		k.Surface = render.NewSurface()
		k.Renderer = render.NewAnimator(k.loop, k.Surface, render.WithAnimatorLogger(k.Logger))
		if dispatcher == nil {
			dispatcher = k.loop
		}
	}

	k.Coordinator = scope.NewCoordinator(k.Renderer,
		scope.WithLogger(k.Logger),
		scope.WithDispatcher(dispatcher),
		scope.WithGate(settingsGate{
			device: effect.CachedGate(spec.Probe, effect.ScaleDurations(scale.Get)),
			full:   full,
		}),
		scope.WithStopGrace(stop.Get),
		scope.WithStopAllGrace(stopAll.Get),
	)

	if spec.Admin != nil {
		k.AdminHandler = assembleAdmin(k, *spec.Admin)
		if addr := strings.TrimSpace(spec.Admin.Addr); addr != "" {
			k.AdminServer = newHTTPServerWithDefaults(addr, k.AdminHandler)
		}
	}
	return k
}

func mustRegister(err error) {
	if err != nil {
		panic(fmt.Sprintf("fxkit: register setting: %v", err))
	}
}

func assembleAdmin(k *Kit, spec AdminSpec) http.Handler {
	if spec.ReadGuard == nil {
		panic("fxkit: AdminSpec: nil ReadGuard")
	}
	read := spec.ReadGuard
	opts := []admin.Option{
		admin.WithLogger(k.Logger),
		admin.EnableHealthz(admin.HealthzSpec{Guard: read}),
		admin.EnableEffects(admin.EffectsSpec{Guard: read, Coordinator: k.Coordinator}),
		admin.EnableSettingsSnapshot(admin.SettingsSnapshotSpec{Guard: read, Settings: k.Settings}),
		admin.EnableLogLevelGet(admin.LogLevelGetSpec{Guard: read, Var: k.LogLevel}),
	}
	if spec.WriteGuard == nil {
		if spec.EnableDisposeAll {
			panic("fxkit: AdminSpec: EnableDisposeAll requires WriteGuard")
		}
		return admin.New(opts...)
	}
	write := spec.WriteGuard
	opts = append(opts,
		admin.EnableEffectStop(admin.EffectStopSpec{Guard: write, Coordinator: k.Coordinator, Access: spec.OwnerAccess}),
		admin.EnableScopeDispose(admin.ScopeDisposeSpec{Guard: write, Coordinator: k.Coordinator, Access: spec.OwnerAccess}),
		// log.level is a setting, so set/reset also drive the logger.
		admin.EnableSettingsSet(admin.SettingsSetSpec{Guard: write, Settings: k.Settings, Access: spec.SettingsAccess}),
		admin.EnableSettingsReset(admin.SettingsResetSpec{Guard: write, Settings: k.Settings, Access: spec.SettingsAccess}),
	)
	if spec.EnableDisposeAll {
		opts = append(opts, admin.EnableDisposeAll(admin.DisposeAllSpec{Guard: write, Coordinator: k.Coordinator}))
	}
	return admin.New(opts...)
}

// settingsGate bypasses everything while fx.full_fidelity is false, and otherwise defers
// to the device gate.
type settingsGate struct {
	device effect.Gate
	full   *settings.BoolVar
}

func (g settingsGate) SupportsFullFidelity() bool {
	return g.full.Get() && g.device.SupportsFullFidelity()
}

func (g settingsGate) Adapt(cfg effect.Config) (effect.Config, bool) {
	if !g.full.Get() {
		return nil, false
	}
	return g.device.Adapt(cfg)
}

// Scope returns the registry of owner, creating it on first use. owner is mapped to an id
// with scope.OwnerID.
func (k *Kit) Scope(owner any) (*scope.Registry, error) {
	return k.Coordinator.GetOrCreateScope(scope.OwnerID(owner))
}

// Current returns the registry of the owner reported by KitSpec.Owner.
func (k *Kit) Current() (*scope.Registry, error) {
	if k.owner == nil {
		return nil, ErrNoOwner
	}
	return k.Scope(k.owner())
}

// DisposeScope disposes the registry of owner. It reports whether one existed.
func (k *Kit) DisposeScope(owner any) bool {
	return k.Coordinator.DisposeScope(scope.OwnerID(owner))
}

// Start starts the standalone admin server, if configured. It is NOT idempotent.
func (k *Kit) Start(ctx context.Context) error {
	k.mu.Lock()
	if k.started {
		k.mu.Unlock()
		return ErrAlreadyStarted
	}
	k.started = true
	k.mu.Unlock()

	if k.AdminServer == nil {
		return nil
	}
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", k.AdminServer.Addr)
	if err != nil {
		return fmt.Errorf("fxkit: admin listen %q: %w", k.AdminServer.Addr, err)
	}
	k.mu.Lock()
	k.listener = ln
	k.mu.Unlock()

	go func() {
		if err := k.AdminServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			k.Logger.Error("admin server exited", slog.Any("err", err))
		}
	}()
	return nil
}

// AdminAddr returns the bound admin address, or "" before Start.
func (k *Kit) AdminAddr() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.listener == nil {
		return ""
	}
	return k.listener.Addr().String()
}

// Shutdown disposes every scope, then stops the admin server and the render loop.
//
// It is idempotent; a second call waits again using the new ctx.
func (k *Kit) Shutdown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	k.shutdownOnce.Do(func() { go k.doShutdown() })
	select {
	case <-k.shutdownCh:
		return k.shutdownErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (k *Kit) doShutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), k.shutdownTimeout)
	defer cancel()

	var errs []error
	if err := k.Coordinator.DisposeAll(ctx); err != nil {
		errs = append(errs, fmt.Errorf("dispose all: %w", err))
	}

	k.mu.Lock()
	ln := k.listener
	k.mu.Unlock()
	if k.AdminServer != nil && ln != nil {
		if err := k.AdminServer.Shutdown(ctx); err != nil {
			_ = k.AdminServer.Close()
			errs = append(errs, fmt.Errorf("admin server shutdown: %w", err))
		}
		_ = ln.Close()
	}

	// Restores dispatched by DisposeAll have run; the loop may go now.
	if k.loop != nil {
		k.loop.Close()
	}

	k.shutdownErr = errors.Join(errs...)
	close(k.shutdownCh)
}

// Run starts the kit, waits for ctx to end or a shutdown signal, then shuts down.
func (k *Kit) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := k.Start(ctx); err != nil {
		return err
	}
	sigCh, stopSignals := k.signalWatcher()
	defer stopSignals()

	select {
	case <-ctx.Done():
	case <-sigCh:
	case <-k.shutdownCh:
	}
	return k.Shutdown(context.Background())
}

// ShutdownOnSignal shuts the kit down when a shutdown signal arrives. The returned func
// stops listening.
func (k *Kit) ShutdownOnSignal() (stop func()) {
	sigCh, stopSignals := k.signalWatcher()
	if sigCh == nil {
		return stopSignals
	}
	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			k.Logger.Info("shutdown signal received", slog.String("signal", sig.String()))
			_ = k.Shutdown(context.Background())
		case <-done:
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			stopSignals()
			close(done)
		})
	}
}

func (k *Kit) signalWatcher() (<-chan os.Signal, func()) {
	if k.signals.Disable {
		return nil, func() {}
	}
	sigs := k.signals.Signals
	if len(sigs) == 0 {
		sigs = defaultSignals()
	}
	if len(sigs) == 0 {
		return nil, func() {}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)
	return ch, func() { signal.Stop(ch) }
}

var defaultKit = sync.OnceValue(func() *Kit { return NewDefaultKit(KitSpec{}) })

// Default returns a process-wide kit assembled from a zero KitSpec on first use.
//
// Prefer passing an explicit *Kit; Default exists for code that cannot be reached by
// injection.
func Default() *Kit { return defaultKit() }

func resolveDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

// Conservative timeouts for the admin server the kit builds.
const (
	defaultReadHeaderTimeout = 5 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

func newHTTPServerWithDefaults(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}
}
