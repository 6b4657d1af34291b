package history_test

import (
	"errors"
	"os"
	"testing"

	inthistory "github.com/rewind-labs/rewind/internal/history"
	"github.com/rewind-labs/rewind/internal/logger"

	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestEngine(t *testing.T, initial hist.Snapshot, cfg hist.Config) *inthistory.Engine {
	t.Helper()
	log := logger.NewLogger("debug", "text", os.Stderr)
	return inthistory.New(initial, cfg, log)
}

func TestEngine_CommitMutate(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})

	err := e.Commit(hist.Mutate(func(draft hist.Snapshot) error {
		draft["count"] = draft["count"].(int) + 1
		return nil
	}))
	require.NoError(t, err)

	assert.Equal(t, 1, e.Current()["count"])
	assert.Equal(t, 1, e.Controls().Position())
	assert.Equal(t, 2, e.Controls().Len())
}

func TestEngine_CommitProduce(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})

	err := e.Commit(hist.Produce(func(current hist.Snapshot) (hist.Snapshot, error) {
		return hist.Snapshot{"count": current["count"].(int) + 10}, nil
	}))
	require.NoError(t, err)

	assert.Equal(t, 10, e.Current()["count"])
}

func TestEngine_CommitValueIsFullReplacement(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"keep": "me", "count": 0}, hist.Config{AutoArchive: true})

	err := e.Commit(hist.Value(hist.Snapshot{"count": 5}))
	require.NoError(t, err)

	cur := e.Current()
	assert.Equal(t, 5, cur["count"])
	_, exists := cur["keep"]
	assert.False(t, exists, "value commits replace the whole snapshot")
}

func TestEngine_CommitZeroUpdaterRejected(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{}, hist.Config{AutoArchive: true})

	err := e.Commit(hist.Updater{})
	require.Error(t, err)
	assert.True(t, rwerrors.IsNullUpdater(err))
	assert.Equal(t, 1, e.Controls().Len())
}

func TestEngine_CommitErrorRollsBack(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})
	boom := errors.New("boom")

	err := e.Commit(hist.Mutate(func(draft hist.Snapshot) error {
		draft["count"] = 99
		return boom
	}))
	require.Error(t, err)

	var execErr *rwerrors.UpdaterExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.ErrorIs(t, err, boom, "the causal error must survive unwrapping")

	assert.Equal(t, 0, e.Current()["count"], "failed commits leave the snapshot untouched")
	assert.Equal(t, 1, e.Controls().Len())
}

func TestEngine_ProducerReturningNilRejected(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})

	err := e.Commit(hist.Produce(func(current hist.Snapshot) (hist.Snapshot, error) {
		return nil, nil
	}))
	require.Error(t, err)

	var execErr *rwerrors.UpdaterExecutionError
	assert.ErrorAs(t, err, &execErr)
	assert.Equal(t, 0, e.Current()["count"])
}

func TestEngine_ImmutableModeCopiesSnapshots(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"tags": []interface{}{"a"}}, hist.Config{AutoArchive: true, Immutable: true})

	cur := e.Current()
	cur["tags"] = append(cur["tags"].([]interface{}), "mutated")

	assert.Len(t, e.Current()["tags"], 1, "mutating an exported snapshot must not leak into the engine")
}

func TestEngine_BackForwardRoundTrip(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})
	controls := e.Controls()

	for i := 1; i <= 3; i++ {
		n := i
		require.NoError(t, e.Commit(hist.Mutate(func(draft hist.Snapshot) error {
			draft["count"] = n
			return nil
		})))
	}
	require.Equal(t, 3, controls.Position())

	require.NoError(t, controls.Back(2))
	assert.Equal(t, 1, e.Current()["count"])

	require.NoError(t, controls.Forward(2))
	assert.Equal(t, 3, e.Current()["count"])
}

func TestEngine_BackIsAllOrNothing(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})
	controls := e.Controls()

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 1})))

	err := controls.Back(5)
	assert.ErrorIs(t, err, rwerrors.ErrNothingToUndo)
	assert.Equal(t, 1, controls.Position(), "a failed Back must not move at all")
}

func TestEngine_ForwardPastNewestFails(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{}, hist.Config{AutoArchive: true})
	controls := e.Controls()

	assert.ErrorIs(t, controls.Forward(1), rwerrors.ErrNothingToRedo)
	assert.False(t, controls.CanForward())
}

func TestEngine_GoOutOfRange(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{}, hist.Config{AutoArchive: true})
	controls := e.Controls()

	assert.ErrorIs(t, controls.Go(3), rwerrors.ErrPositionOutOfRange)
	assert.ErrorIs(t, controls.Go(-1), rwerrors.ErrPositionOutOfRange)
	assert.NoError(t, controls.Go(0))
}

func TestEngine_CommitAfterBackDiscardsRedo(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})
	controls := e.Controls()

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 1})))
	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 2})))
	require.NoError(t, controls.Back(1))
	require.True(t, controls.CanForward())

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 99})))

	assert.False(t, controls.CanForward(), "a new commit invalidates redoable entries")
	assert.Equal(t, 3, controls.Len())
	assert.Equal(t, 99, e.Current()["count"])
}

func TestEngine_MaxHistoryDropsOldest(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true, MaxHistory: 3})
	controls := e.Controls()

	for i := 1; i <= 5; i++ {
		n := i
		require.NoError(t, e.Commit(hist.Mutate(func(draft hist.Snapshot) error {
			draft["count"] = n
			return nil
		})))
	}

	// Cap of 3 past steps plus the current entry.
	assert.Equal(t, 4, controls.Len())
	assert.Equal(t, 3, controls.Position())

	history := controls.History()
	assert.Equal(t, 2, history[0]["count"], "oldest entries are dropped first")
	assert.Equal(t, 5, history[3]["count"])

	// Undoing to the oldest retained entry still works; further does not.
	require.NoError(t, controls.Back(3))
	assert.Equal(t, 2, e.Current()["count"])
	assert.ErrorIs(t, controls.Back(1), rwerrors.ErrNothingToUndo)
}

func TestEngine_ManualArchiveAccumulates(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: false})
	controls := e.Controls()

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 1})))
	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 2})))

	// Both commits are visible but nothing is archived yet.
	assert.Equal(t, 2, e.Current()["count"])
	assert.Equal(t, 1, controls.Len())
	assert.True(t, controls.CanArchive())

	require.NoError(t, controls.Archive())
	assert.Equal(t, 2, controls.Len())
	assert.False(t, controls.CanArchive())

	// One Back undoes the whole accumulated batch.
	require.NoError(t, controls.Back(1))
	assert.Equal(t, 0, e.Current()["count"])
}

func TestEngine_BackSealsPendingFirst(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: false})
	controls := e.Controls()

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 7})))
	require.True(t, controls.CanBack())

	require.NoError(t, controls.Back(1))
	assert.Equal(t, 0, e.Current()["count"])

	// The sealed pending entry is now redoable.
	require.NoError(t, controls.Forward(1))
	assert.Equal(t, 7, e.Current()["count"])
}

func TestEngine_ArchiveWithoutPendingIsNoOp(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{}, hist.Config{AutoArchive: false})
	controls := e.Controls()

	require.NoError(t, controls.Archive())
	assert.Equal(t, 1, controls.Len())
}

func TestEngine_ArchiveNotifiesSubscribers(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: false})
	controls := e.Controls()

	var seen []hist.Snapshot
	e.Subscribe(func(snapshot hist.Snapshot) { seen = append(seen, snapshot) })

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 3})))
	require.NoError(t, controls.Archive())

	require.NotEmpty(t, seen, "sealing pending changes is a committed change")
	assert.Equal(t, 3, seen[len(seen)-1]["count"])

	before := len(seen)
	require.NoError(t, controls.Archive())
	assert.Len(t, seen, before, "a no-op archive notifies nobody")
}

func TestEngine_ResetDiscardsEverything(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})
	controls := e.Controls()

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 1})))
	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 2})))

	require.NoError(t, controls.Reset())

	assert.Equal(t, 0, controls.Position())
	assert.Equal(t, 1, controls.Len())
	assert.Equal(t, 0, e.Current()["count"])
	assert.False(t, controls.CanBack())
	assert.False(t, controls.CanForward())
}

func TestEngine_SubscribersRunInOrder(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})

	var order []string
	e.Subscribe(func(snapshot hist.Snapshot) { order = append(order, "first") })
	cancel := e.Subscribe(func(snapshot hist.Snapshot) { order = append(order, "second") })

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 1})))
	assert.Equal(t, []string{"first", "second"}, order)

	cancel()
	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 2})))
	assert.Equal(t, []string{"first", "second", "first"}, order)
}

func TestEngine_SubscriberSeesNavigation(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{AutoArchive: true})

	var last hist.Snapshot
	e.Subscribe(func(snapshot hist.Snapshot) { last = snapshot })

	require.NoError(t, e.Commit(hist.Value(hist.Snapshot{"count": 1})))
	require.NoError(t, e.Controls().Back(1))

	assert.Equal(t, 0, last["count"])
}

func TestEngine_PatchesRoundTrip(t *testing.T) {
	initial := hist.Snapshot{"count": 0, "label": "start"}
	e := setupTestEngine(t, initial, hist.Config{AutoArchive: true})

	require.NoError(t, e.Commit(hist.Mutate(func(draft hist.Snapshot) error {
		draft["count"] = 1
		delete(draft, "label")
		return nil
	})))
	require.NoError(t, e.Commit(hist.Mutate(func(draft hist.Snapshot) error {
		draft["count"] = 2
		draft["extra"] = true
		return nil
	})))

	patches := e.Controls().Patches()
	require.Len(t, patches, 2)

	// Rebuild a second engine from the initial snapshot plus the recorded
	// change sets, resuming at the newest position.
	restored := setupTestEngine(t, initial, hist.Config{
		AutoArchive:     true,
		InitialPatches:  patches,
		InitialPosition: 2,
	})

	assert.Equal(t, 3, restored.Controls().Len())
	assert.Equal(t, hist.Snapshot{"count": 2, "extra": true}, restored.Current())

	require.NoError(t, restored.Controls().Back(2))
	assert.Equal(t, hist.Snapshot{"count": 0, "label": "start"}, restored.Current())
}

func TestEngine_InitialPositionClamped(t *testing.T) {
	e := setupTestEngine(t, hist.Snapshot{"count": 0}, hist.Config{
		AutoArchive:     true,
		InitialPosition: 42,
	})
	assert.Equal(t, 0, e.Controls().Position())
}
