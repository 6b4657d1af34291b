package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	rwerrors "github.com/rewind-labs/rewind/pkg/rewind/v1/errors"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// SupportedSchemaVersionConstraint defines the SemVer constraint that loaded
// session documents must satisfy. For a v1 library, only v1 sessions are
// accepted.
const SupportedSchemaVersionConstraint = "v1"

// LoadSession reads the specified YAML bytes, validates against the embedded
// JSON schema, unmarshals into a Session struct with strict decoding, checks
// schema version compatibility, and performs logical validation.
func LoadSession(sessionYAML []byte, filePathHint string) (*Session, error) {
	if len(sessionYAML) == 0 {
		return nil, rwerrors.NewConfigError("session content cannot be empty", nil)
	}

	// Step 1: Validate against the JSON Schema for basic structure and types.
	if err := ValidateWithSchema(sessionYAML); err != nil {
		return nil, rwerrors.NewConfigError(fmt.Sprintf("session '%s' failed schema validation", filePathHint), err)
	}

	// Step 2: Unmarshal using strict decoding to catch unknown fields.
	var session Session
	if err := yamlUnmarshalStrict(sessionYAML, &session); err != nil {
		return nil, rwerrors.NewConfigError(fmt.Sprintf("failed to parse session YAML '%s'", filePathHint), err)
	}
	session.FilePath = filePathHint

	// Step 3: Check schema version compatibility.
	if session.SchemaVersion == "" {
		return nil, rwerrors.NewValidationError(fmt.Sprintf("session '%s' is missing required 'schemaVersion' field", filePathHint), nil)
	}
	sessionSemVer := session.SchemaVersion
	if !strings.HasPrefix(sessionSemVer, "v") {
		sessionSemVer = "v" + sessionSemVer
	}
	if !semver.IsValid(sessionSemVer) {
		return nil, rwerrors.NewValidationError(fmt.Sprintf("session '%s' has invalid 'schemaVersion' format: '%s'", filePathHint, session.SchemaVersion), nil)
	}
	if semver.Major(sessionSemVer) != SupportedSchemaVersionConstraint {
		return nil, rwerrors.NewValidationError(
			fmt.Sprintf("session '%s' schemaVersion '%s' is not compatible with library requirement '%s'",
				filePathHint, session.SchemaVersion, SupportedSchemaVersionConstraint),
			nil,
		)
	}

	// Step 4: Perform detailed logical validation on the Go struct.
	validationErrs := ValidateSessionStructure(&session)
	if len(validationErrs) > 0 {
		var errorMessages []string
		for _, vErr := range validationErrs {
			errorMessages = append(errorMessages, vErr.Error())
		}
		combinedMessage := fmt.Sprintf("session '%s' has %d validation error(s):\n- %s",
			filePathHint, len(errorMessages), strings.Join(errorMessages, "\n- "))
		return nil, rwerrors.NewValidationError(combinedMessage, validationErrs[0])
	}

	return &session, nil
}

// LoadSessionFromFile is a convenience function to read a session from disk.
func LoadSessionFromFile(filePath string) (*Session, error) {
	if filePath == "" {
		return nil, rwerrors.NewConfigError("session file path cannot be empty", nil)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return nil, rwerrors.NewConfigError(fmt.Sprintf("failed to get absolute path for '%s'", filePath), err)
	}
	yamlFile, err := os.ReadFile(absPath)
	if err != nil {
		return nil, rwerrors.NewConfigError(fmt.Sprintf("failed to read session file '%s'", absPath), err)
	}
	return LoadSession(yamlFile, absPath)
}

// yamlUnmarshalStrict provides stricter YAML unmarshalling by disallowing
// unknown fields, so typos in session documents surface early.
func yamlUnmarshalStrict(in []byte, out interface{}) error {
	decoder := yaml.NewDecoder(strings.NewReader(string(in)))
	decoder.KnownFields(true)
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("YAML parsing error: %w", err)
	}
	return nil
}
