package scope

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/rt/safego"
	"github.com/evan-idocoding/fxkit/rt/task"
	"golang.org/x/sync/errgroup"
)

// Registry holds the running effects of one owner, keyed by name.
//
// All methods are safe for concurrent use.
type Registry struct {
	owner    string
	renderer effect.Renderer
	cfg      config
	log      *slog.Logger

	// ctx outlives every Start call; it is canceled when the registry is closed.
	ctx    context.Context
	cancel context.CancelFunc

	// mu guards the map only; it is never held while a task stops.
	mu      sync.Mutex
	closed  bool
	entries map[string]*slot
}

// slot is one registration. ready is closed once every earlier holder of the name has
// stopped, so the slot's task may start writing.
type slot struct {
	task  task.Task
	ready chan struct{}
}

// NewRegistry returns an empty registry for owner.
//
// It panics if r is nil.
func NewRegistry(owner string, r effect.Renderer, opts ...Option) *Registry {
	if r == nil {
		panic("scope: nil renderer")
	}
	return newRegistry(owner, r, newConfig(opts))
}

func newRegistry(owner string, r effect.Renderer, c config) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	return &Registry{
		owner:    owner,
		renderer: r,
		cfg:      c,
		log:      c.logger.With(slog.String("owner", owner)),
		ctx:      ctx,
		cancel:   cancel,
		entries:  make(map[string]*slot),
	}
}

// Owner returns the owner id the registry was created for.
func (r *Registry) Owner() string { return r.owner }

// Start supersedes any effect registered under name and starts a fresh one.
//
// The new task replaces the previous holder in the registry at once. Start then stops the
// previous holder (bounded by the stop grace; disposed if it does not stop in time) and
// waits for any handoff still in flight on the same name, so the new effect's first write
// happens after the old effect's last one. The new effect then runs in its own goroutine
// until it completes, is stopped, or the registry is closed. The registry lock is not held
// during the handoff; StopAll and Stop stay bounded by their own timeouts.
//
// ctx bounds only the wait for the previous holder. Start returns an error for an invalid
// name, a nil target, an invalid config, or a closed registry; no task is created then and
// the previous holder keeps running.
func (r *Registry) Start(ctx context.Context, name string, target effect.Target, cfg effect.Config, opts ...StartOption) (task.Task, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	n, err := normalizeName(name)
	if err != nil {
		return nil, err
	}
	if effect.IsNilTarget(target) {
		return nil, task.ErrNilTarget
	}
	if err := effect.Validate(cfg); err != nil {
		return nil, err
	}
	var sc startConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&sc)
		}
	}
	t, err := task.ForConfig(n, cfg, r.renderer, r.taskOptions()...)
	if err != nil {
		return nil, err
	}

	s := &slot{task: t, ready: make(chan struct{})}
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	prev := r.entries[n]
	r.entries[n] = s
	r.mu.Unlock()

	if prev != nil {
		r.handoff(ctx, n, prev)
	}
	close(s.ready)

	// A StopAll or Stop that ran during the handoff already terminated t; Start is then
	// a no-op.
	safego.Go(r.ctx, func(ctx context.Context) {
		defer r.remove(n, t)
		if err := t.Start(ctx, target, cfg, sc.cont); err != nil {
			r.log.Warn("effect rejected", slog.String("effect", n), slog.Any("err", err))
		}
	}, safego.WithName("scope.effect:"+n), safego.WithLogger(r.log), safego.WithFinally(func() {
		// No-op unless Start was rejected or panicked.
		t.Dispose()
	}))
	return t, nil
}

// handoff stops the superseded holder of name and waits until its own predecessors are
// gone.
func (r *Registry) handoff(ctx context.Context, name string, prev *slot) {
	if !prev.task.Stop(ctx) {
		r.log.Warn("superseded effect did not stop in time; disposing", slog.String("effect", name))
		prev.task.Dispose()
	}
	<-prev.ready
}

func (r *Registry) taskOptions() []task.Option {
	opts := []task.Option{
		task.WithLogger(r.cfg.logger),
		task.WithAttrs(slog.String("owner", r.owner)),
		task.WithGate(r.cfg.gate),
		task.WithDispatcher(r.cfg.dispatcher),
		task.WithStopGrace(r.cfg.stopGrace()),
	}
	return append(opts, r.cfg.taskOpts...)
}

// remove deletes name if it still maps to t.
func (r *Registry) remove(name string, t task.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.entries[name]; ok && cur.task == t {
		delete(r.entries, name)
	}
}

// Stop removes the effect registered under name, stops it and disposes it.
// It reports whether an effect was registered.
func (r *Registry) Stop(ctx context.Context, name string) bool {
	n, err := normalizeName(name)
	if err != nil {
		return false
	}
	r.mu.Lock()
	s, ok := r.entries[n]
	if ok {
		delete(r.entries, n)
	}
	r.mu.Unlock()
	if !ok {
		return false
	}
	t := s.task
	if ctx == nil {
		ctx = context.Background()
	}
	if !t.Stop(ctx) {
		r.log.Warn("effect did not stop in time; disposing", slog.String("effect", n))
	}
	t.Dispose()
	return true
}

// StopAll stops every registered effect concurrently and waits up to timeout
// (timeout <= 0 uses the configured stop-all grace).
//
// Effects still pending at the deadline are abandoned: each gets a background Dispose and
// a warning is logged. StopAll never blocks beyond the timeout; it reports whether every
// effect terminated in time.
func (r *Registry) StopAll(timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = r.cfg.stopAllGrace()
	}
	r.mu.Lock()
	tasks := make([]task.Task, 0, len(r.entries))
	for _, s := range r.entries {
		tasks = append(tasks, s.task)
	}
	clear(r.entries)
	r.mu.Unlock()

	return stopTasks(r.log, tasks, timeout)
}

func stopTasks(log *slog.Logger, tasks []task.Task, timeout time.Duration) bool {
	if len(tasks) == 0 {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	safego.Go(ctx, func(ctx context.Context) {
		defer close(done)
		var g errgroup.Group
		for _, t := range tasks {
			g.Go(func() error {
				t.Stop(ctx)
				return nil
			})
		}
		_ = g.Wait()
	}, safego.WithName("scope.stop_all"), safego.WithLogger(log))

	select {
	case <-done:
	case <-ctx.Done():
	}

	abandoned := 0
	for _, t := range tasks {
		if t.State() == task.StateTerminated {
			continue
		}
		abandoned++
		log.Warn("effect abandoned by stop-all; disposing in background",
			slog.String("effect", t.Name()), slog.Duration("timeout", timeout))
		safego.Go(context.Background(), func(context.Context) { t.Dispose() },
			safego.WithName("scope.dispose:"+t.Name()), safego.WithLogger(log))
	}
	return abandoned == 0
}

// Close stops every effect (bounded like StopAll) and rejects later Starts with ErrClosed.
// It reports whether every effect terminated in time. Close is idempotent.
func (r *Registry) Close(timeout time.Duration) bool {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	ok := r.StopAll(timeout)
	r.cancel()
	return ok
}

// Closed reports whether Close has been called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// IsRunning reports whether name has a live effect: registered and neither stopping nor
// terminated. A just-started effect whose goroutine has not run yet counts as live.
func (r *Registry) IsRunning(name string) bool {
	t, ok := r.Lookup(name)
	if !ok {
		return false
	}
	switch t.State() {
	case task.StateIdle, task.StateRunning:
		return true
	default:
		return false
	}
}

// Lookup returns the task registered under name.
func (r *Registry) Lookup(name string) (task.Task, bool) {
	n, err := normalizeName(name)
	if err != nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.entries[n]
	if !ok {
		return nil, false
	}
	return s.task, true
}

// ActiveNames returns the registered names, sorted.
func (r *Registry) ActiveNames() []string {
	r.mu.Lock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	r.mu.Unlock()
	sort.Strings(names)
	return names
}

// Len returns the number of registered effects.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Snapshot returns the status of every registered effect, sorted by name.
func (r *Registry) Snapshot() []task.Status {
	r.mu.Lock()
	tasks := make([]task.Task, 0, len(r.entries))
	for _, s := range r.entries {
		tasks = append(tasks, s.task)
	}
	r.mu.Unlock()

	out := make([]task.Status, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
