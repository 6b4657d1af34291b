// Package history implements the snapshot history engine behind the
// time-travel store: an ordered sequence of data snapshots with per-entry
// forward/inverse change records, navigation, and optional manual archiving.
//
// The engine is single-writer by contract (the store's dispatcher), but all
// entry points take the engine lock so standalone use stays safe. Commits are
// transactional: an updater error leaves the current snapshot untouched.
package history

import (
	"errors"
	"sync"

	"github.com/rewind-labs/rewind/internal/util"
	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
	rwlog "github.com/rewind-labs/rewind/pkg/rewind/v1/log"
)

// Engine is the reference implementation of the public hist.Engine contract.
type Engine struct {
	mu  sync.Mutex
	cfg hist.Config
	log rwlog.Logger

	// entries holds the archived snapshots, oldest first. entries[position]
	// is the current archived entry. changes[i] transforms entries[i] into
	// entries[i+1]; len(changes) == len(entries)-1 always.
	entries  []hist.Snapshot
	changes  []hist.ChangeSet
	position int

	// pending is the accumulated uncommitted snapshot in manual-archive
	// mode; nil when nothing is pending.
	pending hist.Snapshot

	subs      []subEntry
	nextSubID int
}

type subEntry struct {
	id int
	fn hist.SubscribeFunc
}

// New constructs an engine seeded with a copy of initial. InitialPatches are
// replayed to rebuild persisted history; InitialPosition selects the entry to
// resume at, clamped to the rebuilt range.
func New(initial hist.Snapshot, cfg hist.Config, log rwlog.Logger) *Engine {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = hist.DefaultMaxHistory
	}
	if log == nil {
		panic("history engine requires a non-nil logger")
	}

	e := &Engine{
		cfg:     cfg,
		log:     log.With("component", "HistoryEngine"),
		entries: []hist.Snapshot{util.CopySnapshot(initial)},
	}

	for _, cs := range cfg.InitialPatches {
		next := util.CopySnapshot(e.entries[len(e.entries)-1])
		cs.ApplyTo(next)
		e.entries = append(e.entries, next)
		e.changes = append(e.changes, cloneChangeSet(cs))
	}

	e.position = cfg.InitialPosition
	if e.position < 0 {
		e.position = 0
	}
	if max := len(e.entries) - 1; e.position > max {
		e.position = max
	}
	e.enforceCapLocked()

	e.log.Debugf("engine initialized with %d entr(ies) at position %d", len(e.entries), e.position)
	return e
}

// Commit applies one updater to the current snapshot. In auto-archive mode
// the result becomes its own history entry; in manual mode it accumulates as
// the pending snapshot until Archive seals it. Subscribers are notified once
// per accepted commit with the new snapshot.
func (e *Engine) Commit(u hist.Updater) error {
	e.mu.Lock()

	if u.IsZero() {
		e.mu.Unlock()
		return rwerrors.NewNullUpdaterError()
	}

	next, err := e.applyLocked(u)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	if e.cfg.AutoArchive {
		e.archiveLocked(next)
	} else {
		e.pending = next
	}

	e.mu.Unlock()
	e.notify(next)
	return nil
}

// applyLocked runs the updater against a working copy of the current
// snapshot and returns the next snapshot. The current snapshot is never
// touched, which is both the transactional guarantee and what keeps the
// inverse patches in the change records sound.
func (e *Engine) applyLocked(u hist.Updater) (hist.Snapshot, error) {
	base := e.currentLocked()

	switch u.Kind() {
	case hist.UpdaterMutate:
		draft := util.CopySnapshot(base)
		if err := u.Mutator()(draft); err != nil {
			e.log.Errorf("draft mutation failed, commit rolled back: %v", err)
			return nil, rwerrors.NewUpdaterExecutionError(err)
		}
		return draft, nil

	case hist.UpdaterProduce:
		next, err := u.Producer()(util.CopySnapshot(base))
		if err != nil {
			e.log.Errorf("snapshot producer failed, commit rolled back: %v", err)
			return nil, rwerrors.NewUpdaterExecutionError(err)
		}
		if next == nil {
			return nil, rwerrors.NewUpdaterExecutionError(errors.New("producer returned nil snapshot"))
		}
		return next, nil

	case hist.UpdaterValue:
		// Full replacement; merge semantics were resolved upstream.
		return util.CopySnapshot(u.Plain()), nil

	default:
		return nil, rwerrors.NewNullUpdaterError()
	}
}

// archiveLocked seals next as a new history entry after the current
// position, discarding any redoable entries and enforcing the retention cap.
func (e *Engine) archiveLocked(next hist.Snapshot) {
	// A new entry invalidates everything forward of the current position.
	e.entries = append(e.entries[:e.position+1], next)
	e.changes = append(e.changes[:e.position], diffSnapshots(e.entries[e.position], next))
	e.position++
	e.pending = nil
	e.enforceCapLocked()
}

// enforceCapLocked drops oldest entries until the retained count fits
// MaxHistory past steps plus the current entry, renumbering the position.
func (e *Engine) enforceCapLocked() {
	limit := e.cfg.MaxHistory + 1
	if len(e.entries) <= limit {
		return
	}
	excess := len(e.entries) - limit
	e.entries = e.entries[excess:]
	e.changes = e.changes[excess:]
	e.position -= excess
	if e.position < 0 {
		e.position = 0
	}
	e.log.Debugf("dropped %d oldest history entr(ies)", excess)
}

// currentLocked returns the working snapshot: pending if set, otherwise the
// archived entry at the current position.
func (e *Engine) currentLocked() hist.Snapshot {
	if e.pending != nil {
		return e.pending
	}
	return e.entries[e.position]
}

// Current returns the engine's current snapshot. In immutable mode the
// caller receives a deep copy; otherwise a shared reference the caller must
// treat as read-only.
func (e *Engine) Current() hist.Snapshot {
	e.mu.Lock()
	cur := e.currentLocked()
	e.mu.Unlock()
	return e.exported(cur)
}

// Subscribe registers a callback invoked once per accepted change with the
// new snapshot, in commit order. The returned function cancels the
// subscription.
func (e *Engine) Subscribe(fn hist.SubscribeFunc) (cancel func()) {
	if fn == nil {
		return func() {}
	}

	e.mu.Lock()
	id := e.nextSubID
	e.nextSubID++
	e.subs = append(e.subs, subEntry{id: id, fn: fn})
	e.mu.Unlock()

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		for i, sub := range e.subs {
			if sub.id == id {
				e.subs = append(e.subs[:i], e.subs[i+1:]...)
				return
			}
		}
	}
}

// Controls returns the engine's navigation surface.
func (e *Engine) Controls() hist.Controls {
	return (*engineControls)(e)
}

// notify delivers snapshot to subscribers in registration order, outside the
// lock so a callback may call back into the engine.
func (e *Engine) notify(snapshot hist.Snapshot) {
	e.mu.Lock()
	if len(e.subs) == 0 {
		e.mu.Unlock()
		return
	}
	subs := make([]subEntry, len(e.subs))
	copy(subs, e.subs)
	e.mu.Unlock()

	out := e.exported(snapshot)
	for _, sub := range subs {
		sub.fn(out)
	}
}

// exported applies the immutability policy to snapshots leaving the engine.
func (e *Engine) exported(snapshot hist.Snapshot) hist.Snapshot {
	if e.cfg.Immutable {
		return util.CopySnapshot(snapshot)
	}
	return snapshot
}

func cloneChangeSet(cs hist.ChangeSet) hist.ChangeSet {
	out := hist.ChangeSet{
		Forward: make([]hist.Patch, len(cs.Forward)),
		Inverse: make([]hist.Patch, len(cs.Inverse)),
	}
	for i, p := range cs.Forward {
		out.Forward[i] = hist.Patch{Op: p.Op, Key: p.Key, Value: util.DeepCopy(p.Value)}
	}
	for i, p := range cs.Inverse {
		out.Inverse[i] = hist.Patch{Op: p.Op, Key: p.Key, Value: util.DeepCopy(p.Value)}
	}
	return out
}

// Compile-time check that Engine implements the public engine contract.
var _ hist.Engine = (*Engine)(nil)
