// Package history defines the public contract for the history engine: the
// component that stores an ordered sequence of data snapshots and exposes
// navigation over them. The time-travel store owns exactly one engine and is
// the only writer to it; everything here is also usable standalone.
package history

// Snapshot is one tracked data state. Engines operating in immutable mode
// never mutate a snapshot in place; every commit produces a fresh map.
type Snapshot = map[string]interface{}

// SubscribeFunc receives the engine's current snapshot after every archived
// change, including navigation. Callbacks run synchronously in commit order.
type SubscribeFunc func(snapshot Snapshot)

// Config enumerates the engine construction parameters.
type Config struct {
	// MaxHistory is the maximum number of past steps retained, current entry
	// excluded, so up to MaxHistory+1 snapshots are held. Once exceeded, the
	// oldest entry is dropped and positions are renumbered. Non-positive
	// values select DefaultMaxHistory.
	MaxHistory int

	// AutoArchive selects the archive discipline: true means every commit
	// becomes its own navigable history entry; false means commits accumulate
	// as pending changes until Controls().Archive() seals them.
	AutoArchive bool

	// InitialPosition is the history index to resume at when restoring a
	// persisted session. Only meaningful together with InitialPatches.
	InitialPosition int

	// InitialPatches holds previously serialized change records used to
	// rebuild history around the initial snapshot.
	InitialPatches []ChangeSet

	// Immutable forces copy-on-write commits: updaters receive a deep copy of
	// the current snapshot and the previous snapshot is never modified. The
	// time-travel store always forces this on; it is configurable only for
	// standalone engine use.
	Immutable bool
}

// DefaultMaxHistory is the retained-entry cap applied when Config.MaxHistory
// is not positive.
const DefaultMaxHistory = 100

// Engine is the single update protocol the store's dispatcher targets. All
// methods are synchronous; Commit either fully applies the updater and
// notifies subscribers, or returns an error leaving the current snapshot
// untouched.
type Engine interface {
	// Commit applies one updater to the current snapshot. The updater's kind
	// resolves the draft-mutating versus snapshot-producing ambiguity; see
	// Updater.
	Commit(u Updater) error

	// Current returns the engine's current snapshot.
	Current() Snapshot

	// Subscribe registers a callback invoked once per committed (or archived)
	// change with the new snapshot. The returned function cancels the
	// subscription.
	Subscribe(fn SubscribeFunc) (cancel func())

	// Controls returns the engine's navigation surface.
	Controls() Controls
}

// Controls is the navigation and archive surface exposed unmodified through
// the store's Controls accessor.
type Controls interface {
	// Back moves count steps toward the oldest entry.
	Back(count int) error
	// Forward moves count steps toward the newest entry.
	Forward(count int) error
	// Go jumps to the absolute history position.
	Go(position int) error
	// Reset returns to the initial entry and discards pending changes.
	Reset() error

	// Position reports the current history index.
	Position() int
	// Len reports the number of retained history entries.
	Len() int
	// CanBack reports whether Back(1) would succeed. In manual-archive mode
	// pending uncommitted changes count as a step to go back over.
	CanBack() bool
	// CanForward reports whether Forward(1) would succeed.
	CanForward() bool
	// History returns the full ordered list of retained snapshots, oldest
	// first, current included.
	History() []Snapshot

	// Archive seals accumulated pending changes into one navigable entry.
	// Only meaningful in manual-archive configurations; a no-op when nothing
	// is pending.
	Archive() error
	// CanArchive reports whether anything is pending.
	CanArchive() bool

	// Patches returns the serialized change records for each history entry
	// after the first, oldest first, suitable for persisting and replaying
	// through Config.InitialPatches.
	Patches() []ChangeSet
}
