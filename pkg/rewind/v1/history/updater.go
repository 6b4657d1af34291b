package history

// MutateFunc is a draft-mutating procedure. It receives a mutable working
// copy of the current snapshot and edits it in place. Returning a non-nil
// error aborts the commit; the draft is discarded.
type MutateFunc func(draft Snapshot) error

// ProduceFunc is a snapshot-producing function. It receives the current
// snapshot (read-only) and returns the complete next snapshot.
type ProduceFunc func(current Snapshot) (Snapshot, error)

// UpdaterKind discriminates the three update shapes the engine accepts.
type UpdaterKind int

const (
	// UpdaterNone is the zero Updater; commits reject it.
	UpdaterNone UpdaterKind = iota
	// UpdaterMutate tags a draft-mutating procedure.
	UpdaterMutate
	// UpdaterProduce tags a snapshot-producing function.
	UpdaterProduce
	// UpdaterValue tags a plain value, applied as a full replacement by the
	// engine. Merge semantics for plain values are resolved by the store's
	// dispatcher before the engine is reached.
	UpdaterValue
)

// Updater is the tagged update request submitted to Commit. Callers build it
// through the Mutate, Produce, and Value constructors, preserving the three
// call shapes without runtime shape inspection at every site.
type Updater struct {
	kind    UpdaterKind
	mutate  MutateFunc
	produce ProduceFunc
	value   Snapshot
}

// Mutate builds an updater from a draft-mutating procedure.
func Mutate(fn MutateFunc) Updater {
	if fn == nil {
		return Updater{}
	}
	return Updater{kind: UpdaterMutate, mutate: fn}
}

// Produce builds an updater from a snapshot-producing function.
func Produce(fn ProduceFunc) Updater {
	if fn == nil {
		return Updater{}
	}
	return Updater{kind: UpdaterProduce, produce: fn}
}

// Value builds an updater from a plain value.
func Value(v Snapshot) Updater {
	if v == nil {
		return Updater{}
	}
	return Updater{kind: UpdaterValue, value: v}
}

// Kind returns the updater's discriminant.
func (u Updater) Kind() UpdaterKind { return u.kind }

// IsZero reports whether the updater carries no request at all.
func (u Updater) IsZero() bool { return u.kind == UpdaterNone }

// Mutator returns the draft-mutating procedure for UpdaterMutate updaters.
func (u Updater) Mutator() MutateFunc { return u.mutate }

// Producer returns the snapshot-producing function for UpdaterProduce updaters.
func (u Updater) Producer() ProduceFunc { return u.produce }

// Plain returns the carried value for UpdaterValue updaters.
func (u Updater) Plain() Snapshot { return u.value }
