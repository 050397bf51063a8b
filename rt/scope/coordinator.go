package scope

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/evan-idocoding/fxkit/effect"
	"github.com/evan-idocoding/fxkit/rt/task"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Coordinator owns the registries of every live owner in the process.
//
// A process typically has one Coordinator, created at startup and passed to the UI layer.
// All methods are safe for concurrent use.
type Coordinator struct {
	renderer effect.Renderer
	cfg      config
	log      *slog.Logger

	mu     sync.Mutex
	scopes map[string]*Registry

	// disposeAll admits one DisposeAll at a time; later callers wait their turn.
	disposeAll *semaphore.Weighted
}

// NewCoordinator returns an empty coordinator. opts apply to every registry it creates.
//
// It panics if r is nil.
func NewCoordinator(r effect.Renderer, opts ...Option) *Coordinator {
	if r == nil {
		panic("scope: nil renderer")
	}
	c := newConfig(opts)
	return &Coordinator{
		renderer:   r,
		cfg:        c,
		log:        c.logger,
		scopes:     make(map[string]*Registry),
		disposeAll: semaphore.NewWeighted(1),
	}
}

// GetOrCreateScope returns the registry for ownerID, creating it on first use.
//
// Concurrent calls for the same owner return the same registry.
func (c *Coordinator) GetOrCreateScope(ownerID string) (*Registry, error) {
	if ownerID == "" {
		return nil, ErrInvalidOwner
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.scopes[ownerID]; ok {
		return r, nil
	}
	r := newRegistry(ownerID, c.renderer, c.cfg)
	c.scopes[ownerID] = r
	c.log.Debug("effect scope created", slog.String("owner", ownerID))
	return r, nil
}

// Lookup returns the registry for ownerID without creating one.
func (c *Coordinator) Lookup(ownerID string) (*Registry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.scopes[ownerID]
	return r, ok
}

// DisposeScope removes the registry of ownerID and closes it, stopping its effects within
// the stop-all grace. It reports whether a registry existed.
//
// A later GetOrCreateScope for the same owner returns a fresh, empty registry.
func (c *Coordinator) DisposeScope(ownerID string) bool {
	c.mu.Lock()
	r, ok := c.scopes[ownerID]
	if ok {
		delete(c.scopes, ownerID)
	}
	c.mu.Unlock()
	if !ok {
		return false
	}
	if !r.Close(c.cfg.stopAllGrace()) {
		c.log.Warn("effect scope disposed with abandoned effects", slog.String("owner", ownerID))
	}
	c.log.Debug("effect scope disposed", slog.String("owner", ownerID))
	return true
}

// DisposeAll closes every registry concurrently, each bounded by the stop-all grace.
//
// Only one DisposeAll runs at a time; a concurrent caller waits for the gate and then
// disposes whatever was created in the meantime. It returns ctx.Err() if ctx ends while
// waiting for the gate, nil otherwise.
func (c *Coordinator) DisposeAll(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := c.disposeAll.Acquire(ctx, 1); err != nil {
		return err
	}
	defer c.disposeAll.Release(1)

	c.mu.Lock()
	scopes := make([]*Registry, 0, len(c.scopes))
	for _, r := range c.scopes {
		scopes = append(scopes, r)
	}
	clear(c.scopes)
	c.mu.Unlock()

	if len(scopes) == 0 {
		return nil
	}
	grace := c.cfg.stopAllGrace()
	start := time.Now()
	var g errgroup.Group
	for _, r := range scopes {
		g.Go(func() error {
			if !r.Close(grace) {
				c.log.Warn("effect scope disposed with abandoned effects", slog.String("owner", r.Owner()))
			}
			return nil
		})
	}
	_ = g.Wait()
	c.log.Info("all effect scopes disposed", slog.Int("scopes", len(scopes)), slog.Duration("took", time.Since(start)))
	return nil
}

// Owners returns the owner ids with a live registry, sorted.
func (c *Coordinator) Owners() []string {
	c.mu.Lock()
	out := make([]string, 0, len(c.scopes))
	for id := range c.scopes {
		out = append(out, id)
	}
	c.mu.Unlock()
	sort.Strings(out)
	return out
}

// ScopeSnapshot is the diagnostic view of one registry.
type ScopeSnapshot struct {
	Owner   string
	Effects []task.Status
}

// Snapshot is the diagnostic view of a coordinator.
type Snapshot struct {
	Scopes []ScopeSnapshot
}

// Effects returns the total number of effects across scopes.
func (s Snapshot) Effects() int {
	n := 0
	for _, sc := range s.Scopes {
		n += len(sc.Effects)
	}
	return n
}

// Snapshot returns the state of every registry, sorted by owner.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	regs := make([]*Registry, 0, len(c.scopes))
	for _, r := range c.scopes {
		regs = append(regs, r)
	}
	c.mu.Unlock()

	out := Snapshot{Scopes: make([]ScopeSnapshot, 0, len(regs))}
	for _, r := range regs {
		out.Scopes = append(out.Scopes, ScopeSnapshot{Owner: r.Owner(), Effects: r.Snapshot()})
	}
	sort.Slice(out.Scopes, func(i, j int) bool { return out.Scopes[i].Owner < out.Scopes[j].Owner })
	return out
}
