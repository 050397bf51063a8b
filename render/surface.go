package render

import (
	"sort"
	"sync"

	"github.com/evan-idocoding/fxkit/effect"
)

// Change is one property write.
type Change struct {
	Target   string
	Property effect.Property
	Value    float64
}

// Node is a Surface element. It implements effect.Target.
type Node struct {
	key string
}

func (n *Node) TargetKey() string { return n.key }

// Surface stores property values per node. Unset properties read as their default.
type Surface struct {
	mu     sync.RWMutex
	nodes  map[string]*Node
	values map[string]map[effect.Property]float64

	obsMu     sync.RWMutex
	observers map[int]func(Change)
	nextObs   int
}

// NewSurface returns an empty surface.
func NewSurface() *Surface {
	return &Surface{
		nodes:     make(map[string]*Node),
		values:    make(map[string]map[effect.Property]float64),
		observers: make(map[int]func(Change)),
	}
}

// Node returns the node for key, creating it on first use.
func (s *Surface) Node(key string) *Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.nodes[key]
	if !ok {
		n = &Node{key: key}
		s.nodes[key] = n
	}
	return n
}

// Keys returns the keys of all nodes, sorted.
func (s *Surface) Keys() []string {
	s.mu.RLock()
	out := make([]string, 0, len(s.nodes))
	for k := range s.nodes {
		out = append(out, k)
	}
	s.mu.RUnlock()
	sort.Strings(out)
	return out
}

// Value returns the current value of p on key.
func (s *Surface) Value(key string, p effect.Property) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if v, ok := s.values[key][p]; ok {
		return v
	}
	return p.DefaultValue()
}

// Set writes p on key and notifies observers synchronously, on the caller's goroutine.
func (s *Surface) Set(key string, p effect.Property, v float64) {
	s.mu.Lock()
	m := s.values[key]
	if m == nil {
		m = make(map[effect.Property]float64)
		s.values[key] = m
	}
	m[p] = v
	s.mu.Unlock()

	s.obsMu.RLock()
	obs := make([]func(Change), 0, len(s.observers))
	for _, fn := range s.observers {
		obs = append(obs, fn)
	}
	s.obsMu.RUnlock()
	c := Change{Target: key, Property: p, Value: v}
	for _, fn := range obs {
		fn(c)
	}
}

// Observe registers fn for every later write. The returned func unregisters it.
func (s *Surface) Observe(fn func(Change)) (cancel func()) {
	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.obsMu.Unlock()
	return func() {
		s.obsMu.Lock()
		delete(s.observers, id)
		s.obsMu.Unlock()
	}
}
