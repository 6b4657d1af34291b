package errors_test

import (
	stderrors "errors"
	"testing"

	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"

	"github.com/stretchr/testify/assert"
)

func TestUpdaterExecutionErrorUnwraps(t *testing.T) {
	cause := stderrors.New("boom")
	err := rwerrors.NewUpdaterExecutionError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "boom")

	var execErr *rwerrors.UpdaterExecutionError
	assert.ErrorAs(t, error(err), &execErr)
}

func TestConfigErrorMessages(t *testing.T) {
	plain := rwerrors.NewConfigError("bad option", nil)
	assert.Equal(t, "configuration error: bad option", plain.Error())

	cause := stderrors.New("root cause")
	wrapped := rwerrors.NewConfigError("bad option", cause)
	assert.Contains(t, wrapped.Error(), "root cause")
	assert.ErrorIs(t, wrapped, cause)
}

func TestTaxonomyHelpers(t *testing.T) {
	assert.True(t, rwerrors.IsNullUpdater(rwerrors.NewNullUpdaterError()))
	assert.False(t, rwerrors.IsNullUpdater(stderrors.New("other")))

	assert.True(t, rwerrors.IsInvalidInitialState(rwerrors.NewInvalidInitialStateError("nil state")))
	assert.False(t, rwerrors.IsInvalidInitialState(rwerrors.NewNullUpdaterError()))
}

func TestNavigationSentinelsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, rwerrors.ErrNothingToUndo, rwerrors.ErrNothingToRedo)
	assert.NotErrorIs(t, rwerrors.ErrNothingToUndo, rwerrors.ErrPositionOutOfRange)
}
