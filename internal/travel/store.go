package travel

import (
	"context"
	"sync"
	"time"

	intevents "github.com/rewind-labs/rewind/internal/events"
	inthistory "github.com/rewind-labs/rewind/internal/history"
	intmetrics "github.com/rewind-labs/rewind/internal/metrics"
	intstate "github.com/rewind-labs/rewind/internal/state"
	inttracing "github.com/rewind-labs/rewind/internal/tracing"
	"github.com/rewind-labs/rewind/internal/util"

	v1 "github.com/rewind-labs/rewind/pkg/rewind/v1"
	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/events"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
	rwlog "github.com/rewind-labs/rewind/pkg/rewind/v1/log"
	rwmetrics "github.com/rewind-labs/rewind/pkg/rewind/v1/metrics"
	rwstate "github.com/rewind-labs/rewind/pkg/rewind/v1/state"
	rwtracing "github.com/rewind-labs/rewind/pkg/rewind/v1/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// phase is the store's lifecycle state. It is monotonic: once the store is
// active it never returns to an earlier phase.
type phase int

const (
	phaseUninitialized phase = iota
	phaseInitializing
	phaseActive
	phaseClosed
)

// Store is the per-store instance owned by the history bridge: it holds the
// single engine reference, the behavior set captured at initialization, and
// the explicit phase that makes construction order auditable.
type Store struct {
	mu    sync.Mutex
	phase phase
	name  string

	host     rwstate.Store
	engine   hist.Engine
	behavior map[string]interface{}

	cancelEngineSub func()

	// engine construction parameters, frozen once initialization starts
	maxHistory      int
	autoArchive     bool
	initialPosition int
	initialPatches  []hist.ChangeSet

	log             rwlog.Logger
	bus             events.Bus
	metricsProvider rwmetrics.RegistryProvider
	tracerProvider  rwtracing.TracerProvider
	counters        *intmetrics.StoreMetrics

	// last observed engine coordinates, used by the bridge to classify
	// republished snapshots as commits or navigation for observability
	lastPosition int
	lastLen      int
}

// NewStore builds a time-travel store: it applies the options, runs the
// initializer once in the initializing phase, partitions the result, wires
// the history engine and its subscription, and only then marks the store
// active. Construction failures leave no partially observable store.
func NewStore(log rwlog.Logger, initializer v1.Initializer, opts ...v1.StoreOption) (*Store, error) {
	if log == nil {
		return nil, rwerrors.NewConfigError("logger cannot be nil", nil)
	}
	if initializer == nil {
		return nil, rwerrors.NewInvalidInitialStateError("initializer cannot be nil")
	}

	s := &Store{
		phase:       phaseUninitialized,
		name:        "default",
		log:         log,
		autoArchive: true,
		maxHistory:  hist.DefaultMaxHistory,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	// Fill in defaults for anything the options left unset.
	if s.host == nil {
		s.host = intstate.NewMemoryStore()
	}
	if s.bus == nil {
		s.bus = intevents.NewNoOpEventBus()
	}
	if s.metricsProvider == nil {
		s.metricsProvider = intmetrics.NewPrometheusRegistryProvider()
	}
	if s.tracerProvider == nil {
		noop, err := inttracing.NewNoOpProvider()
		if err != nil {
			return nil, rwerrors.NewConfigError("failed to create default tracer provider", err)
		}
		s.tracerProvider = noop
	}
	s.log = log.With("component", "TravelStore", "store", s.name)
	s.counters = intmetrics.NewStoreMetrics(s.metricsProvider.Registry(), s.name)

	if err := s.initialize(initializer); err != nil {
		return nil, err
	}
	return s, nil
}

// initialize runs the initializer invoker and the history bridge wiring.
func (s *Store) initialize(initializer v1.Initializer) error {
	s.mu.Lock()
	s.phase = phaseInitializing
	s.mu.Unlock()

	combined := initializer(s.Dispatch, s.host, s)
	if combined == nil {
		return rwerrors.NewInvalidInitialStateError("initializer returned nil combined state")
	}

	data, behavior := Partition(combined)
	s.behavior = behavior

	// Seed the returned members into the host over anything init-phase
	// dispatches already wrote.
	if err := s.host.Load(combined); err != nil {
		return rwerrors.NewConfigError("failed to seed host store", err)
	}

	// The engine's first snapshot is the data actually observable in the
	// store at activation: init-phase seeds plus the returned data subset.
	// Undoing everything lands exactly here.
	initial := make(map[string]interface{}, len(data))
	for key, value := range s.host.GetAll() {
		if _, isBehavior := behavior[key]; isBehavior || isCallable(value) {
			continue
		}
		initial[key] = value
	}

	engine := inthistory.New(initial, hist.Config{
		MaxHistory:      s.maxHistory,
		AutoArchive:     s.autoArchive,
		InitialPosition: s.initialPosition,
		InitialPatches:  s.initialPatches,
		// The store layer owns immutability; callers cannot override this.
		Immutable: true,
	}, s.log)

	s.engine = engine
	s.cancelEngineSub = engine.Subscribe(s.republish)

	controls := engine.Controls()
	s.lastPosition = controls.Position()
	s.lastLen = controls.Len()

	// When history was restored from persisted patches the engine's current
	// snapshot can differ from the seeded data; publish once so the host
	// matches the engine before anyone observes the store.
	if len(s.initialPatches) > 0 {
		s.publishSnapshot(engine.Current())
	}

	s.mu.Lock()
	s.phase = phaseActive
	s.mu.Unlock()

	s.emit(events.StoreInitialized, controls.Position(), map[string]interface{}{
		"data_keys":     len(initial),
		"behavior_keys": len(behavior),
	})
	s.log.Debugf("store active: %d data key(s), %d behavior key(s)", len(initial), len(behavior))
	return nil
}

// Dispatch is the single entry point user code calls to mutate state. It
// normalizes the three updater shapes into the engine's commit protocol, or
// bypasses the engine entirely while the store is initializing.
func (s *Store) Dispatch(u hist.Updater, replace bool) error {
	s.mu.Lock()
	ph := s.phase
	s.mu.Unlock()

	switch ph {
	case phaseClosed:
		return rwerrors.NewStoreClosedError()
	case phaseUninitialized:
		return rwerrors.NewConfigError("dispatch before store construction", nil)
	}

	if u.IsZero() {
		s.rejected("nil updater")
		return rwerrors.NewNullUpdaterError()
	}

	if ph == phaseInitializing {
		// Seeding path: the engine does not exist yet and no history entry
		// may be created. Forward to the host's native update primitives.
		return s.applyUntracked(u, replace)
	}

	tracer := s.tracerProvider.GetTracer("rewind/travel")
	_, span := tracer.Start(context.Background(), "store.dispatch",
		trace.WithAttributes(
			attribute.String("rewind.store", s.name),
			attribute.Int("rewind.updater_kind", int(u.Kind())),
			attribute.Bool("rewind.replace", replace),
		))
	defer span.End()

	err := s.engine.Commit(routeUpdater(u, replace))
	if err != nil {
		inttracing.RecordError(span, err)
		s.rejected(err.Error())
		return err
	}

	s.counters.CommitsTotal.Inc()
	s.emit(events.UpdateCommitted, s.engine.Controls().Position(), map[string]interface{}{
		"updater_kind": int(u.Kind()),
		"replace":      replace,
	})
	return nil
}

// routeUpdater applies the dispatcher's routing rules for an active store:
// callable updaters pass through unchanged, plain values become a full
// replacement when replace is set and a shallow-merge mutate procedure
// otherwise. Merged values are deep-copied so an archived entry never
// aliases caller-owned data; the replacement route gets the same guarantee
// from the engine's own copy of plain values.
func routeUpdater(u hist.Updater, replace bool) hist.Updater {
	if u.Kind() != hist.UpdaterValue {
		return u
	}
	if replace {
		return u
	}
	partial := u.Plain()
	return hist.Mutate(func(draft hist.Snapshot) error {
		for key, value := range partial {
			draft[key] = util.DeepCopy(value)
		}
		return nil
	})
}

// applyUntracked forwards an updater to the host container's native setters
// during initialization. Updater errors propagate; nothing is recorded in
// history.
func (s *Store) applyUntracked(u hist.Updater, replace bool) error {
	switch u.Kind() {
	case hist.UpdaterMutate:
		draft := s.host.GetAll()
		if err := u.Mutator()(draft); err != nil {
			return rwerrors.NewUpdaterExecutionError(err)
		}
		return s.host.Replace(draft)

	case hist.UpdaterProduce:
		next, err := u.Producer()(s.host.GetAll())
		if err != nil {
			return rwerrors.NewUpdaterExecutionError(err)
		}
		if next == nil {
			return rwerrors.NewUpdaterExecutionError(errNilProducerResult)
		}
		return s.host.Replace(next)

	default: // UpdaterValue
		if replace {
			return s.host.Replace(u.Plain())
		}
		return s.host.Load(u.Plain())
	}
}

// republish is the history bridge's engine subscription: on every engine
// snapshot it pushes the full replacement state to the host and classifies
// the change for observability by comparing engine coordinates.
func (s *Store) republish(snapshot hist.Snapshot) {
	s.publishSnapshot(snapshot)

	controls := s.engine.Controls()
	position, length := controls.Position(), controls.Len()

	s.mu.Lock()
	lastPosition, lastLen := s.lastPosition, s.lastLen
	s.lastPosition, s.lastLen = position, length
	s.mu.Unlock()

	switch {
	case length != lastLen:
		// Entry count changed: a commit, archive, or reset. The dispatcher
		// emits the commit event itself, so growth in manual mode can only
		// mean pending changes were sealed.
		if length == 1 && position == 0 && lastLen > 1 {
			s.emit(events.HistoryReset, position, nil)
		} else if length > lastLen && !s.autoArchive {
			s.emit(events.HistoryArchived, position, map[string]interface{}{"entries": length})
		}
	case position < lastPosition:
		s.counters.UndosTotal.Inc()
		s.counters.NavigationTotal.Inc()
		s.emit(events.UndoApplied, position, map[string]interface{}{"steps": lastPosition - position})
	case position > lastPosition:
		s.counters.RedosTotal.Inc()
		s.counters.NavigationTotal.Inc()
		s.emit(events.RedoApplied, position, map[string]interface{}{"steps": position - lastPosition})
	}
}

// publishSnapshot builds the snapshot-union-behavior state and replaces the
// host's contents with it. Full replacement is what guarantees the store
// never observes a mix of stale and fresh data fields, and that behavior
// references survive every undo and redo.
func (s *Store) publishSnapshot(snapshot hist.Snapshot) {
	full := make(map[string]interface{}, len(snapshot)+len(s.behavior))
	for key, value := range snapshot {
		full[key] = value
	}
	for key, value := range s.behavior {
		full[key] = value
	}

	if err := s.host.Replace(full); err != nil {
		// The host is the source of truth for subscribers; a failed publish
		// is a store-level fault worth surfacing loudly in logs.
		s.log.Errorf("failed to republish snapshot to host store: %v", err)
		return
	}
	s.counters.PublishesTotal.Inc()
	s.emit(events.SnapshotPublished, 0, map[string]interface{}{"data_keys": len(snapshot)})
}

// Get delegates to the host container's read surface.
func (s *Store) Get(key string) (interface{}, bool) {
	return s.host.Get(key)
}

// GetAll delegates to the host container's read surface.
func (s *Store) GetAll() map[string]interface{} {
	return s.host.GetAll()
}

// Subscribe registers a listener on the host container.
func (s *Store) Subscribe(fn rwstate.Listener) (cancel func()) {
	return s.host.Subscribe(fn)
}

// Controls returns the engine's navigation surface unchanged. Pure
// delegation; the bridge performs no logic of its own here.
func (s *Store) Controls() hist.Controls {
	return s.engine.Controls()
}

// Close cancels the engine subscription and releases the host store. The
// store is unusable afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.phase == phaseClosed {
		s.mu.Unlock()
		return nil
	}
	s.phase = phaseClosed
	cancel := s.cancelEngineSub
	s.cancelEngineSub = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.emit(events.StoreClosed, 0, nil)
	return s.host.Close()
}

func (s *Store) rejected(reason string) {
	s.counters.RejectedTotal.Inc()
	s.emit(events.UpdateRejected, 0, map[string]interface{}{"reason": reason})
}

func (s *Store) emit(eventType events.EventType, position int, payload map[string]interface{}) {
	s.bus.Emit(events.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		StoreName: s.name,
		Position:  position,
		Payload:   payload,
	})
}
