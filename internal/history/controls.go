package history

import (
	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
)

// engineControls exposes the navigation surface over the engine. It is the
// same object under a second method set, so controls obtained before and
// after commits are interchangeable.
type engineControls Engine

func (c *engineControls) engine() *Engine { return (*Engine)(c) }

// Back moves count steps toward the oldest entry. Pending uncommitted
// changes are sealed into their own entry first, so stepping back over them
// is redoable. The move is all-or-nothing: if count exceeds the available
// steps nothing moves and ErrNothingToUndo is returned.
func (c *engineControls) Back(count int) error {
	if count < 1 {
		return nil
	}
	e := c.engine()

	e.mu.Lock()
	if e.pending != nil {
		e.archiveLocked(e.pending)
	}
	if e.position-count < 0 {
		e.mu.Unlock()
		return rwerrors.ErrNothingToUndo
	}
	e.position -= count
	snapshot := e.entries[e.position]
	e.mu.Unlock()

	e.notify(snapshot)
	return nil
}

// Forward moves count steps toward the newest entry. All-or-nothing like
// Back; returns ErrNothingToRedo when count exceeds the redoable entries.
func (c *engineControls) Forward(count int) error {
	if count < 1 {
		return nil
	}
	e := c.engine()

	e.mu.Lock()
	if e.pending != nil {
		// Sealing pending lands on the newest entry; nothing is forward of it.
		e.archiveLocked(e.pending)
		e.mu.Unlock()
		return rwerrors.ErrNothingToRedo
	}
	if e.position+count > len(e.entries)-1 {
		e.mu.Unlock()
		return rwerrors.ErrNothingToRedo
	}
	e.position += count
	snapshot := e.entries[e.position]
	e.mu.Unlock()

	e.notify(snapshot)
	return nil
}

// Go jumps to the absolute history position.
func (c *engineControls) Go(position int) error {
	e := c.engine()

	e.mu.Lock()
	if e.pending != nil {
		e.archiveLocked(e.pending)
	}
	if position < 0 || position > len(e.entries)-1 {
		e.mu.Unlock()
		return rwerrors.ErrPositionOutOfRange
	}
	e.position = position
	snapshot := e.entries[e.position]
	e.mu.Unlock()

	e.notify(snapshot)
	return nil
}

// Reset discards pending changes and all history, returning to the oldest
// retained entry.
func (c *engineControls) Reset() error {
	e := c.engine()

	e.mu.Lock()
	e.pending = nil
	e.entries = e.entries[:1]
	e.changes = nil
	e.position = 0
	snapshot := e.entries[0]
	e.mu.Unlock()

	e.notify(snapshot)
	return nil
}

// Position reports the current history index.
func (c *engineControls) Position() int {
	e := c.engine()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Len reports the number of retained history entries.
func (c *engineControls) Len() int {
	e := c.engine()
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.entries)
}

// CanBack reports whether Back(1) would succeed. Pending changes count: they
// seal into an entry the step can go back over.
func (c *engineControls) CanBack() bool {
	e := c.engine()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position > 0 || e.pending != nil
}

// CanForward reports whether Forward(1) would succeed.
func (c *engineControls) CanForward() bool {
	e := c.engine()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending == nil && e.position < len(e.entries)-1
}

// History returns the retained snapshots, oldest first. In immutable mode
// each snapshot is a deep copy.
func (c *engineControls) History() []hist.Snapshot {
	e := c.engine()
	e.mu.Lock()
	entries := make([]hist.Snapshot, len(e.entries))
	copy(entries, e.entries)
	e.mu.Unlock()

	out := make([]hist.Snapshot, len(entries))
	for i, s := range entries {
		out[i] = e.exported(s)
	}
	return out
}

// Archive seals accumulated pending changes into one navigable entry and
// notifies subscribers of the newly archived snapshot. A no-op when nothing
// is pending.
func (c *engineControls) Archive() error {
	e := c.engine()
	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return nil
	}
	e.archiveLocked(e.pending)
	snapshot := e.entries[e.position]
	e.mu.Unlock()

	e.notify(snapshot)
	return nil
}

// CanArchive reports whether anything is pending.
func (c *engineControls) CanArchive() bool {
	e := c.engine()
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending != nil
}

// Patches returns deep copies of the change records, oldest first.
func (c *engineControls) Patches() []hist.ChangeSet {
	e := c.engine()
	e.mu.Lock()
	changes := make([]hist.ChangeSet, len(e.changes))
	copy(changes, e.changes)
	e.mu.Unlock()

	out := make([]hist.ChangeSet, len(changes))
	for i, cs := range changes {
		out[i] = cloneChangeSet(cs)
	}
	return out
}

var _ hist.Controls = (*engineControls)(nil)
