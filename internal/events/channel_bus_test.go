package events_test

import (
	"os"
	"testing"
	"time"

	intevents "github.com/rewind-labs/rewind/internal/events"
	"github.com/rewind-labs/rewind/internal/logger"

	"github.com/rewind-labs/rewind/pkg/rewind/v1/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelEventBus_EmitAndReceive(t *testing.T) {
	log := logger.NewLogger("debug", "text", os.Stderr)
	bus := intevents.NewChannelEventBus(4, log)
	defer bus.Close()

	bus.Emit(events.Event{Type: events.UpdateCommitted, StoreName: "test", Timestamp: time.Now()})

	select {
	case got := <-bus.GetChannel():
		assert.Equal(t, events.UpdateCommitted, got.Type)
		assert.Equal(t, "test", got.StoreName)
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestChannelEventBus_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	log := logger.NewLogger("error", "text", os.Stderr)
	bus := intevents.NewChannelEventBus(1, log)
	defer bus.Close()

	done := make(chan struct{})
	go func() {
		bus.Emit(events.Event{Type: events.UpdateCommitted})
		bus.Emit(events.Event{Type: events.UndoApplied}) // buffer full, dropped
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Emit must never block")
	}

	got := <-bus.GetChannel()
	require.Equal(t, events.UpdateCommitted, got.Type)

	select {
	case unexpected := <-bus.GetChannel():
		t.Fatalf("expected the second event to be dropped, got %v", unexpected.Type)
	default:
	}
}

func TestNoOpEventBus(t *testing.T) {
	bus := intevents.NewNoOpEventBus()
	assert.NotPanics(t, func() {
		bus.Emit(events.Event{Type: events.StoreClosed})
	})
}
