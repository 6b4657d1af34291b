package v1

import (
	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/events"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/history"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/metrics"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/state"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/tracing"
)

// UpdateFunc is the single mutation entry point handed to initializers and
// captured by behavior closures. It accepts the tagged updater shapes built
// by history.Mutate, history.Produce, and history.Value; replace selects
// full-replacement semantics for plain values and is ignored for callable
// updaters.
type UpdateFunc func(u history.Updater, replace bool) error

// Initializer is the user-supplied setup function. It runs exactly once,
// synchronously, while the store is in its initializing phase: update calls
// made inside it bypass history tracking, read exposes the seeded state, and
// store is the handle the returned behavior closures may capture (usable once
// construction completes). The returned map is the combined state: callable
// values become the store's fixed behavior set, everything else becomes the
// tracked data snapshot. Returning nil aborts construction with
// InvalidInitialStateError.
type Initializer func(update UpdateFunc, read state.StateReader, store StoreV1) map[string]interface{}

// StoreV1 defines the public interface for a time-travel store: the host
// state container's read surface extended with the history dispatch and
// navigation methods.
type StoreV1 interface {
	state.StateReader

	// Dispatch routes one updater through the history engine (or, during
	// initialization, the container's untracked setter). It is synchronous;
	// on return either the commit is fully applied and subscribers have run,
	// or an error is returned and observable state is unchanged.
	Dispatch(u history.Updater, replace bool) error

	// Subscribe registers a listener invoked with the full store state after
	// every accepted change, including navigation.
	Subscribe(fn state.Listener) (cancel func())

	// Controls returns the history engine's navigation surface unmodified.
	Controls() history.Controls

	// Close releases the store's resources. The store is unusable afterwards.
	Close() error

	// Setter methods for configuring store components programmatically.
	// They may only be called before initialization runs.
	SetMaxHistory(max int) error
	SetAutoArchive(auto bool) error
	SetInitialPosition(position int) error
	SetInitialPatches(patches []history.ChangeSet) error
	SetHostStore(store state.Store) error
	SetEventBus(bus events.Bus) error
	SetMetricsRegistryProvider(provider metrics.RegistryProvider) error
	SetTracerProvider(provider tracing.TracerProvider) error
	SetName(name string) error
}

// StoreOption is a function type used to configure a store at creation.
type StoreOption func(StoreV1) error

// WithMaxHistory caps the number of navigable past steps, current entry
// excluded. Oldest entries are dropped first once the cap is exceeded.
func WithMaxHistory(max int) StoreOption {
	return func(s StoreV1) error {
		if max <= 0 {
			return rwerrors.NewConfigError("max history must be positive", nil)
		}
		return s.SetMaxHistory(max)
	}
}

// WithAutoArchive selects the archive discipline; see history.Config.
func WithAutoArchive(auto bool) StoreOption {
	return func(s StoreV1) error {
		return s.SetAutoArchive(auto)
	}
}

// WithInitialPosition resumes the engine at the given history index when
// restoring a persisted session.
func WithInitialPosition(position int) StoreOption {
	return func(s StoreV1) error {
		if position < 0 {
			return rwerrors.NewConfigError("initial position cannot be negative", nil)
		}
		return s.SetInitialPosition(position)
	}
}

// WithInitialPatches restores previously serialized history change records.
func WithInitialPatches(patches []history.ChangeSet) StoreOption {
	return func(s StoreV1) error {
		return s.SetInitialPatches(patches)
	}
}

// WithHostStore is a store option to provide a custom host state container.
func WithHostStore(store state.Store) StoreOption {
	return func(s StoreV1) error {
		if store == nil {
			return rwerrors.NewConfigError("host store cannot be nil", nil)
		}
		return s.SetHostStore(store)
	}
}

// WithEventBus is a store option to provide a custom event bus.
func WithEventBus(bus events.Bus) StoreOption {
	return func(s StoreV1) error {
		if bus == nil {
			return rwerrors.NewConfigError("event bus cannot be nil", nil)
		}
		return s.SetEventBus(bus)
	}
}

// WithMetricsRegistryProvider is a store option to provide a custom metrics
// provider.
func WithMetricsRegistryProvider(provider metrics.RegistryProvider) StoreOption {
	return func(s StoreV1) error {
		if provider == nil {
			return rwerrors.NewConfigError("metrics registry provider cannot be nil", nil)
		}
		return s.SetMetricsRegistryProvider(provider)
	}
}

// WithTracerProvider is a store option to provide a custom tracer provider.
func WithTracerProvider(provider tracing.TracerProvider) StoreOption {
	return func(s StoreV1) error {
		if provider == nil {
			return rwerrors.NewConfigError("tracer provider cannot be nil", nil)
		}
		return s.SetTracerProvider(provider)
	}
}

// WithName labels the store instance in logs, events, and metrics.
func WithName(name string) StoreOption {
	return func(s StoreV1) error {
		return s.SetName(name)
	}
}
