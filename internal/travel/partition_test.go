package travel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPartition(t *testing.T) {
	fn := func() {}
	combined := map[string]interface{}{
		"count":  0,
		"name":   "x",
		"none":   nil,
		"nested": map[string]interface{}{"a": 1},
		"doIt":   fn,
		"other":  func(int) int { return 0 },
	}

	data, behavior := Partition(combined)

	assert.Equal(t, map[string]interface{}{
		"count":  0,
		"name":   "x",
		"none":   nil,
		"nested": map[string]interface{}{"a": 1},
	}, data)

	assert.Len(t, behavior, 2)
	assert.Contains(t, behavior, "doIt")
	assert.Contains(t, behavior, "other")

	// Coverage is total and disjoint.
	assert.Equal(t, len(combined), len(data)+len(behavior))
	for key := range data {
		assert.NotContains(t, behavior, key)
	}
}

func TestPartitionEmpty(t *testing.T) {
	data, behavior := Partition(map[string]interface{}{})
	assert.Empty(t, data)
	assert.Empty(t, behavior)
	assert.NotNil(t, data)
	assert.NotNil(t, behavior)
}

func TestIsCallable(t *testing.T) {
	assert.True(t, isCallable(func() {}))
	assert.True(t, isCallable(func(s string) error { return nil }))
	assert.False(t, isCallable(nil))
	assert.False(t, isCallable("string"))
	assert.False(t, isCallable(42))
	assert.False(t, isCallable(map[string]interface{}{}))
	assert.False(t, isCallable([]interface{}{}))
}
