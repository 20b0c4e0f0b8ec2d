package counters

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownKey is returned when a key was never added or already released.
var ErrUnknownKey = errors.New("unknown counter key")

// RawValue is the raw reading of a counter. For time-based counters First is
// the accumulated (inverse) time and Second the timestamp base, both in the
// counter's native unit.
type RawValue struct {
	First  int64
	Second int64
}

// Query is an OS live-query handle counters are added to.
type Query interface {
	// AddCounter registers path and returns an opaque counter handle.
	AddCounter(path string) (uintptr, error)
	// RemoveCounter releases a handle returned by AddCounter.
	RemoveCounter(handle uintptr) error
	// Collect samples every registered counter.
	Collect() error
	// Raw returns the value of handle from the last Collect.
	Raw(handle uintptr) (RawValue, error)
	// Close releases the query and all its counters.
	Close() error
}

// Key identifies a counter added to a Set. It stays valid until released.
type Key struct {
	ID     string
	Path   string
	handle uintptr
}

// Set keeps the counters an engine polls repeatedly. Counters are added by
// English name; the Set resolves each one at construction time and retains
// the resulting handle until Release or Close.
type Set struct {
	mu       sync.Mutex
	resolver *Resolver
	query    Query
	keys     map[string]*Key
}

// NewSet creates a Set adding counters to query.
func NewSet(resolver *Resolver, query Query) *Set {
	return &Set{
		resolver: resolver,
		query:    query,
		keys:     make(map[string]*Key),
	}
}

// Add resolves object/instance/counter and registers it under id.
// Adding an id twice replaces the earlier counter.
func (s *Set) Add(id, object, instance, counter string) (*Key, error) {
	path, err := s.resolver.CounterPath(object, instance, counter)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.query == nil {
		return nil, fmt.Errorf("adding %s: no query", id)
	}
	handle, err := s.query.AddCounter(path)
	if err != nil {
		return nil, fmt.Errorf("adding counter %q: %w", path, err)
	}
	if old, ok := s.keys[id]; ok {
		_ = s.query.RemoveCounter(old.handle)
	}
	key := &Key{ID: id, Path: path, handle: handle}
	s.keys[id] = key
	return key, nil
}

// Collect samples all counters.
func (s *Set) Collect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.query == nil {
		return fmt.Errorf("collecting: no query")
	}
	return s.query.Collect()
}

// Raw returns the last collected value for id.
func (s *Set) Raw(id string) (RawValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return RawValue{}, fmt.Errorf("%s: %w", id, ErrUnknownKey)
	}
	return s.query.Raw(k.handle)
}

// Release removes the counter registered under id.
func (s *Set) Release(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k, ok := s.keys[id]
	if !ok {
		return fmt.Errorf("%s: %w", id, ErrUnknownKey)
	}
	delete(s.keys, id)
	return s.query.RemoveCounter(k.handle)
}

// Close releases every counter and the query itself.
func (s *Set) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]*Key)
	if s.query == nil {
		return nil
	}
	err := s.query.Close()
	s.query = nil
	return err
}
