package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rewind-labs/rewind/internal/config"

	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSessionYAML = `
schemaVersion: "1.0.0"
name: counter
history:
  max_history: 10
  auto_archive: true
initial_state:
  count: 0
updates:
  - set:
      count: 1
  - replace:
      count: 5
navigation:
  - back: 1
  - forward: 1
  - go: 0
  - reset: true
`

func TestLoadSession_Valid(t *testing.T) {
	session, err := config.LoadSession([]byte(validSessionYAML), "test.yaml")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, "counter", session.Name)
	assert.Equal(t, "test.yaml", session.FilePath)
	require.NotNil(t, session.History)
	assert.Equal(t, 10, session.History.MaxHistory)
	require.NotNil(t, session.History.AutoArchive)
	assert.True(t, *session.History.AutoArchive)
	assert.Equal(t, map[string]interface{}{"count": 0}, session.InitialState)
	require.Len(t, session.Updates, 2)
	assert.Equal(t, map[string]interface{}{"count": 1}, session.Updates[0].Set)
	assert.Equal(t, map[string]interface{}{"count": 5}, session.Updates[1].Replace)
	require.Len(t, session.Navigation, 4)
	require.NotNil(t, session.Navigation[0].Back)
	assert.Equal(t, 1, *session.Navigation[0].Back)
	assert.True(t, session.Navigation[3].Reset)
}

func TestLoadSession_EmptyContent(t *testing.T) {
	_, err := config.LoadSession(nil, "empty.yaml")
	require.Error(t, err)
	var cfgErr *rwerrors.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestLoadSession_MissingSchemaVersion(t *testing.T) {
	yaml := `
name: counter
initial_state:
  count: 0
`
	_, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schemaVersion")
}

func TestLoadSession_UnsupportedSchemaVersion(t *testing.T) {
	yaml := `
schemaVersion: "2.0.0"
name: counter
`
	_, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.Error(t, err)
	var validationErr *rwerrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "not compatible")
}

func TestLoadSession_UnknownFieldRejected(t *testing.T) {
	yaml := `
schemaVersion: "1.0.0"
name: counter
bogus_field: true
`
	_, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.Error(t, err)
}

func TestLoadSession_UpdateStepNeedsExactlyOneAction(t *testing.T) {
	yaml := `
schemaVersion: "1.0.0"
updates:
  - set:
      a: 1
    replace:
      b: 2
`
	_, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.Error(t, err)
}

func TestLoadSession_NavigationStepNeedsExactlyOneAction(t *testing.T) {
	yaml := `
schemaVersion: "1.0.0"
navigation:
  - back: 1
    forward: 1
`
	_, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.Error(t, err)
}

func TestLoadSession_InitialPositionBeyondPatches(t *testing.T) {
	yaml := `
schemaVersion: "1.0.0"
history:
  initial_position: 3
  initial_patches:
    - forward:
        - op: set
          key: count
          value: 1
      inverse:
        - op: set
          key: count
          value: 0
`
	_, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.Error(t, err)
	var validationErr *rwerrors.ValidationError
	assert.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "initialPosition")
}

func TestLoadSession_InitialPatchesParsed(t *testing.T) {
	yaml := `
schemaVersion: "1.0.0"
history:
  initial_position: 1
  initial_patches:
    - forward:
        - op: set
          key: count
          value: 1
      inverse:
        - op: set
          key: count
          value: 0
    - forward:
        - op: delete
          key: label
      inverse:
        - op: set
          key: label
          value: x
`
	session, err := config.LoadSession([]byte(yaml), "test.yaml")
	require.NoError(t, err)
	require.NotNil(t, session.History)
	require.Len(t, session.History.InitialPatches, 2)
	assert.Equal(t, "count", session.History.InitialPatches[0].Forward[0].Key)
	assert.Equal(t, "delete", string(session.History.InitialPatches[1].Forward[0].Op))
}

func TestLoadSessionFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validSessionYAML), 0o600))

	session, err := config.LoadSessionFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "counter", session.Name)
	assert.NotEmpty(t, session.FilePath)
}

func TestLoadSessionFromFile_Missing(t *testing.T) {
	_, err := config.LoadSessionFromFile("/nonexistent/session.yaml")
	require.Error(t, err)
}
