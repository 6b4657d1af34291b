package state

import (
	"errors"
)

// ErrKeyNotFound indicates that a requested key does not exist in the state store.
var ErrKeyNotFound = errors.New("key not found in state store")

// Listener receives the store's full state after every accepted change.
// Listeners run synchronously, in registration order, on the caller's stack.
type Listener func(state map[string]interface{})

// StateReader defines the read-only interface for accessing a store's state.
// Behavior handlers and external observers receive an implementation of this
// interface.
//
// IMPORTANT: Implementations return deep copies of complex types like maps and
// slices so callers can never mutate the store's state through a reference.
// Callers should still treat the result as read-only.
type StateReader interface {
	// Get retrieves the value associated with the given key.
	// It returns the value (interface{}) and true if the key exists,
	// otherwise it returns nil and false.
	Get(key string) (interface{}, bool)

	// GetAll returns the entire current state map.
	// Callers should be mindful of the potential size of the state.
	GetAll() map[string]interface{}
}

// Store defines the interface for the host state container the time-travel
// middleware wraps. Implementations must be thread-safe.
//
// Set and Load are the container's native, untracked write primitives; after
// initialization every caller-visible change arrives through Replace, the
// full-replacement publish path used by the history bridge.
type Store interface {
	StateReader // Embed the read-only interface

	// Set stores the value associated with the given key, potentially
	// overwriting an existing value. Returns an error if the operation fails.
	Set(key string, value interface{}) error

	// Load merges the provided map into the current state, overwriting
	// existing keys. Used to seed values during initialization.
	Load(data map[string]interface{}) error

	// Replace swaps the entire state for the provided map. Keys absent from
	// data are dropped from the store. Listeners observe the new state.
	Replace(data map[string]interface{}) error

	// Subscribe registers a listener invoked after every accepted change.
	// The returned function cancels the subscription.
	Subscribe(fn Listener) (cancel func())

	// Close releases any resources held by the store.
	Close() error
}
