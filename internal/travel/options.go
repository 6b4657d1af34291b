package travel

import (
	"errors"

	v1 "github.com/rewind-labs/rewind/pkg/rewind/v1"
	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"
	rwmetrics "github.com/rewind-labs/rewind/pkg/rewind/v1/metrics"
	rwstate "github.com/rewind-labs/rewind/pkg/rewind/v1/state"
	rwtracing "github.com/rewind-labs/rewind/pkg/rewind/v1/tracing"

	"github.com/rewind-labs/rewind/pkg/rewind/v1/events"
)

var errNilProducerResult = errors.New("producer returned nil snapshot")

// configurable guards the setter methods: store components may only be
// swapped before the initializer runs.
func (s *Store) configurable() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != phaseUninitialized {
		return rwerrors.NewConfigError("store cannot be reconfigured after construction", nil)
	}
	return nil
}

// SetMaxHistory caps the number of retained history entries.
func (s *Store) SetMaxHistory(max int) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.maxHistory = max
	return nil
}

// SetAutoArchive selects the archive discipline.
func (s *Store) SetAutoArchive(auto bool) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.autoArchive = auto
	return nil
}

// SetInitialPosition resumes the engine at the given history index.
func (s *Store) SetInitialPosition(position int) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.initialPosition = position
	return nil
}

// SetInitialPatches restores previously serialized change records.
func (s *Store) SetInitialPatches(patches []hist.ChangeSet) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.initialPatches = patches
	return nil
}

// SetHostStore swaps the host state container.
func (s *Store) SetHostStore(store rwstate.Store) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.host = store
	return nil
}

// SetEventBus swaps the event bus.
func (s *Store) SetEventBus(bus events.Bus) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.bus = bus
	return nil
}

// SetMetricsRegistryProvider swaps the metrics provider.
func (s *Store) SetMetricsRegistryProvider(provider rwmetrics.RegistryProvider) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.metricsProvider = provider
	return nil
}

// SetTracerProvider swaps the tracer provider.
func (s *Store) SetTracerProvider(provider rwtracing.TracerProvider) error {
	if err := s.configurable(); err != nil {
		return err
	}
	s.tracerProvider = provider
	return nil
}

// SetName labels the store in logs, events, and metrics.
func (s *Store) SetName(name string) error {
	if err := s.configurable(); err != nil {
		return err
	}
	if name == "" {
		return rwerrors.NewConfigError("store name cannot be empty", nil)
	}
	s.name = name
	return nil
}

// Compile-time check that Store implements the public store interface.
var _ v1.StoreV1 = (*Store)(nil)
