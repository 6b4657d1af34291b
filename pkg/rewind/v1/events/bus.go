package events

import "time"

// EventType represents the type of a rewind store event.
type EventType string

// Standard rewind Event Types
const (
	StoreInitialized  EventType = "StoreInitialized"  // Initializer returned, engine wired
	UpdateCommitted   EventType = "UpdateCommitted"   // Engine accepted a dispatched updater
	UpdateRejected    EventType = "UpdateRejected"    // Dispatcher or engine refused an updater
	HistoryArchived   EventType = "HistoryArchived"   // Pending changes sealed into one entry
	UndoApplied       EventType = "UndoApplied"       // Navigation moved toward older entries
	RedoApplied       EventType = "RedoApplied"       // Navigation moved toward newer entries
	HistoryReset      EventType = "HistoryReset"      // Navigation returned to the initial entry
	SnapshotPublished EventType = "SnapshotPublished" // Bridge republished a snapshot to the store
	StoreClosed       EventType = "StoreClosed"       // Store released its resources
)

// Event represents a significant occurrence within a rewind store.
type Event struct {
	// Type categorizes the event.
	Type EventType `json:"type"`
	// Timestamp marks when the event occurred.
	Timestamp time.Time `json:"timestamp"`
	// StoreName identifies the store instance, if it was named at creation.
	StoreName string `json:"store_name,omitempty"`
	// Position is the history position after the event, where applicable.
	Position int `json:"position,omitempty"`
	// Payload contains event-specific data. Snapshot contents MUST NOT be
	// included wholesale; payloads carry shape information (key counts,
	// updater kinds, error strings), never user state.
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// Bus defines the interface for publishing store lifecycle events.
// Implementations could include logging, metrics aggregation, etc.
type Bus interface {
	// Emit publishes an event to the bus.
	// Implementations should be non-blocking or handle blocking carefully so
	// the synchronous dispatch path is never stalled by an observer.
	Emit(event Event)
}
