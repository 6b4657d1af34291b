package history_test

import (
	"testing"

	hist "github.com/rewind-labs/rewind/pkg/rewind/v1/history"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdaterConstructors(t *testing.T) {
	m := hist.Mutate(func(draft hist.Snapshot) error { return nil })
	assert.Equal(t, hist.UpdaterMutate, m.Kind())
	assert.False(t, m.IsZero())
	assert.NotNil(t, m.Mutator())

	p := hist.Produce(func(current hist.Snapshot) (hist.Snapshot, error) { return current, nil })
	assert.Equal(t, hist.UpdaterProduce, p.Kind())
	assert.NotNil(t, p.Producer())

	v := hist.Value(hist.Snapshot{"a": 1})
	assert.Equal(t, hist.UpdaterValue, v.Kind())
	assert.Equal(t, hist.Snapshot{"a": 1}, v.Plain())
}

func TestUpdaterNilArgumentsYieldZero(t *testing.T) {
	assert.True(t, hist.Mutate(nil).IsZero())
	assert.True(t, hist.Produce(nil).IsZero())
	assert.True(t, hist.Value(nil).IsZero())
	assert.True(t, hist.Updater{}.IsZero())
	assert.Equal(t, hist.UpdaterNone, hist.Updater{}.Kind())
}

func TestChangeSetApplyAndRevert(t *testing.T) {
	cs := hist.ChangeSet{
		Forward: []hist.Patch{
			{Op: hist.PatchSet, Key: "a", Value: 2},
			{Op: hist.PatchDelete, Key: "b"},
		},
		Inverse: []hist.Patch{
			{Op: hist.PatchSet, Key: "a", Value: 1},
			{Op: hist.PatchSet, Key: "b", Value: "x"},
		},
	}

	s := hist.Snapshot{"a": 1, "b": "x"}
	cs.ApplyTo(s)
	require.Equal(t, hist.Snapshot{"a": 2}, s)

	cs.RevertFrom(s)
	require.Equal(t, hist.Snapshot{"a": 1, "b": "x"}, s)
}
