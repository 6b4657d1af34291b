package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rewind-labs/rewind/pkg/rewind/v1/events"
	rwlog "github.com/rewind-labs/rewind/pkg/rewind/v1/log"
)

// MetricsEventListener subscribes to a rewind event bus and maintains a
// Prometheus counter per event type. It complements the store's own counters
// with an event-level view (one series per lifecycle event), without the
// dispatch path ever touching Prometheus directly.
type MetricsEventListener struct {
	bus         *ChannelEventBus
	log         rwlog.Logger
	eventsTotal *prometheus.CounterVec
}

// NewMetricsEventListener creates a new listener. It requires a
// ChannelEventBus to subscribe to and the counter vector it maintains,
// labeled by event type.
func NewMetricsEventListener(bus *ChannelEventBus, eventsTotal *prometheus.CounterVec, log rwlog.Logger) *MetricsEventListener {
	if bus == nil || eventsTotal == nil || log == nil {
		// A nil logger would cause a panic, so we check all dependencies.
		panic("MetricsEventListener requires a non-nil ChannelEventBus, CounterVec, and Logger")
	}
	return &MetricsEventListener{
		bus:         bus,
		log:         log.With("component", "MetricsEventListener"),
		eventsTotal: eventsTotal,
	}
}

// NewEventsTotalCounter builds and registers the counter vector the listener
// maintains.
func NewEventsTotalCounter(registry *prometheus.Registry) *prometheus.CounterVec {
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rewind_events_total",
		Help: "Number of store lifecycle events observed, by type.",
	}, []string{"type"})
	registry.MustRegister(vec)
	return vec
}

// Start begins listening for events on the bus in a new goroutine.
// The provided context is used to signal shutdown.
func (l *MetricsEventListener) Start(ctx context.Context) {
	l.log.Debugf("Starting metrics event listener...")
	// The listening loop runs until the bus channel is closed or the context is done.
	for {
		select {
		case event, ok := <-l.bus.GetChannel():
			if !ok {
				// Channel was closed, the listener should shut down.
				l.log.Debugf("Event bus channel closed, stopping listener.")
				return
			}
			l.handleEvent(event)
		case <-ctx.Done():
			// The parent context was cancelled, signaling a shutdown.
			l.log.Debugf("Context cancelled, stopping metrics event listener.")
			return
		}
	}
}

// handleEvent processes a single event, incrementing its type's counter.
func (l *MetricsEventListener) handleEvent(event events.Event) {
	l.eventsTotal.WithLabelValues(string(event.Type)).Inc()
}
