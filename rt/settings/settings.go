package settings

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

type entry interface {
	name() string
	snapshot() Item
	setFromString(raw string) error
	resetToDefault()
}

// Settings holds a set of runtime-tunable variables.
//
// It is safe for concurrent use. The zero value is ready to use.
type Settings struct {
	mu   sync.RWMutex
	vars map[string]entry

	// writeMu serializes writes and onChange callbacks.
	writeMu sync.Mutex
}

// New creates an empty Settings.
func New() *Settings {
	return &Settings{vars: make(map[string]entry)}
}

// Duration registers a time.Duration variable.
func (s *Settings) Duration(key string, def time.Duration, opts ...Option[time.Duration]) (*DurationVar, error) {
	return register(s, key, TypeDuration, def, opts,
		func(d time.Duration) string { return d.String() },
		time.ParseDuration,
	)
}

// Bool registers a bool variable.
func (s *Settings) Bool(key string, def bool, opts ...Option[bool]) (*BoolVar, error) {
	return register(s, key, TypeBool, def, opts, strconv.FormatBool, parseBool)
}

// Float64 registers a float64 variable.
func (s *Settings) Float64(key string, def float64, opts ...Option[float64]) (*Float64Var, error) {
	return register(s, key, TypeFloat64, def, opts,
		func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) },
		func(raw string) (float64, error) { return strconv.ParseFloat(strings.TrimSpace(raw), 64) },
	)
}

// Enum registers a string variable restricted to allowed.
//
// Values are trimmed and lowercased before matching, so allowed values should be lowercase.
func (s *Settings) Enum(key, def string, allowed []string, opts ...Option[string]) (*EnumVar, error) {
	if len(allowed) == 0 {
		return nil, fmt.Errorf("%w: %q: empty allowed set", ErrInvalidConfig, key)
	}
	set := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		set[a] = struct{}{}
	}
	member := func(c *varConfig[string]) {
		c.validateBounds = func(v string) error {
			if _, ok := set[v]; !ok {
				return fmt.Errorf("%q not one of %s", v, strings.Join(allowed, "|"))
			}
			return nil
		}
	}
	normalize := func(raw string) string { return strings.ToLower(strings.TrimSpace(raw)) }
	return register(s, key, TypeEnum, normalize(def), append([]Option[string]{member}, opts...),
		func(v string) string { return v },
		func(raw string) (string, error) { return normalize(raw), nil },
	)
}

func register[T comparable](s *Settings, key string, typ Type, def T, opts []Option[T], format func(T) string, parse func(string) (T, error)) (*Var[T], error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil Settings", ErrInvalidConfig)
	}
	if err := validateKey(key); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	v := &Var[T]{s: s, key: key, typ: typ, def: def, format: format, parse: parse}
	for _, opt := range opts {
		if opt != nil {
			opt(&v.cfg)
		}
	}
	if v.cfg.min != nil && v.cfg.max != nil {
		if err := v.validate(*v.cfg.min); err != nil {
			return nil, fmt.Errorf("%w: %q min > max", ErrInvalidConfig, key)
		}
	}
	if err := v.validate(def); err != nil {
		return nil, fmt.Errorf("%w: %q default: %v", ErrInvalidConfig, key, err)
	}
	v.cur.Store(&def)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vars == nil {
		s.vars = make(map[string]entry)
	}
	if _, ok := s.vars[key]; ok {
		return nil, fmt.Errorf("%w: %q", ErrAlreadyRegistered, key)
	}
	s.vars[key] = v
	return v, nil
}

func (s *Settings) lookup(key string) (entry, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	e, ok := s.vars[key]
	s.mu.RUnlock()
	return e, ok
}

// SetFromString parses raw according to the variable type and applies it.
func (s *Settings) SetFromString(key, raw string) error {
	e, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return e.setFromString(raw)
}

// ResetToDefault restores a variable's registered default.
func (s *Settings) ResetToDefault(key string) error {
	e, ok := s.lookup(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	e.resetToDefault()
	return nil
}

// Lookup returns a point-in-time view of one variable.
func (s *Settings) Lookup(key string) (Item, bool) {
	e, ok := s.lookup(key)
	if !ok {
		return Item{}, false
	}
	return e.snapshot(), true
}

// Snapshot returns all variables sorted by key.
func (s *Settings) Snapshot() Snapshot {
	if s == nil {
		return Snapshot{}
	}
	s.mu.RLock()
	es := make([]entry, 0, len(s.vars))
	for _, e := range s.vars {
		es = append(es, e)
	}
	s.mu.RUnlock()

	sort.Slice(es, func(i, j int) bool { return es[i].name() < es[j].name() })
	out := make([]Item, 0, len(es))
	for _, e := range es {
		out = append(out, e.snapshot())
	}
	return Snapshot{Items: out}
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("empty")
	}
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '.' || c == '_' || c == '-':
		default:
			return fmt.Errorf("invalid char %q (allowed: [A-Za-z0-9._-])", c)
		}
	}
	return nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "t", "1", "yes", "y", "on":
		return true, nil
	case "false", "f", "0", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool %q", raw)
	}
}
