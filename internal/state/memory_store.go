// internal/state/memory_store.go
package state

import (
	"maps"
	"sync"

	"github.com/rewind-labs/rewind/internal/util"
	rewind "github.com/rewind-labs/rewind/pkg/rewind/v1/state"
)

// MemoryStore implements the host container Store interface using a standard
// Go map protected by a sync.RWMutex. It is the default container the
// time-travel middleware wraps. All read operations return a deep copy of the
// data, guaranteeing immutability from the caller's perspective; listeners
// run synchronously, in registration order, outside the lock.
type MemoryStore struct {
	data map[string]interface{}
	mu   sync.RWMutex

	listeners  []subscription
	nextListID int
}

type subscription struct {
	id int
	fn rewind.Listener
}

// NewMemoryStore creates and initializes a new, empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]interface{}),
	}
}

// Get retrieves a deep copy of the value associated with the given key.
// Returning a copy prevents accidental modification of shared state through
// references to maps or slices. Behavior values (functions) are shared by
// reference so their identity is stable across reads.
func (s *MemoryStore) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, exists := s.data[key]
	if !exists {
		return nil, false
	}
	return util.DeepCopy(val), true
}

// GetAll returns a deep copy of the entire current state map.
func (s *MemoryStore) GetAll() map[string]interface{} {
	s.mu.RLock()
	// Shallow-copy the internal map to minimize lock time; deep copy outside.
	flat := maps.Clone(s.data)
	s.mu.RUnlock()

	return util.CopySnapshot(flat)
}

// Set stores the value associated with the given key, potentially
// overwriting. This is the container's native, untracked setter; after
// initialization all caller-visible changes arrive through Replace instead.
func (s *MemoryStore) Set(key string, value interface{}) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()

	s.notify()
	return nil
}

// Load merges the provided map into the current state, overwriting existing
// keys. Used to seed values during initialization.
func (s *MemoryStore) Load(data map[string]interface{}) error {
	s.mu.Lock()
	for key, value := range data {
		s.data[key] = value
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Replace swaps the entire state for the provided map. Keys absent from data
// are dropped, so the store never observes a mix of stale and fresh fields.
func (s *MemoryStore) Replace(data map[string]interface{}) error {
	s.mu.Lock()
	s.data = maps.Clone(data)
	if s.data == nil {
		s.data = make(map[string]interface{})
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// Subscribe registers a listener invoked after every accepted change. The
// returned function cancels the subscription; cancelling twice is harmless.
func (s *MemoryStore) Subscribe(fn rewind.Listener) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextListID
	s.nextListID++
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// notify delivers the current state to every listener, in registration
// order, without holding the lock during callbacks.
func (s *MemoryStore) notify() {
	s.mu.RLock()
	if len(s.listeners) == 0 {
		s.mu.RUnlock()
		return
	}
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	flat := maps.Clone(s.data)
	s.mu.RUnlock()

	snapshot := util.CopySnapshot(flat)
	for _, sub := range subs {
		sub.fn(snapshot)
	}
}

// Close releases the listener list. The map itself needs no teardown.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = nil
	return nil
}

// Compile-time check that MemoryStore implements the public store interface.
var _ rewind.Store = (*MemoryStore)(nil)
