package errors

import (
	"errors"
	"fmt"
)

// --- Rewind Core Error Types ---

// Navigation sentinels returned by the history controls when there is no
// entry to move to in the requested direction.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrPositionOutOfRange is returned by absolute jumps to an index outside
	// the retained history.
	ErrPositionOutOfRange = errors.New("history position out of range")
)

// ConfigError represents an error encountered while loading, parsing, or
// validating a session document or store options.
type ConfigError struct {
	Message string
	Cause   error
}

func NewConfigError(message string, cause error) *ConfigError {
	return &ConfigError{Message: message, Cause: cause}
}
func (e *ConfigError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}
func (e *ConfigError) Unwrap() error { return e.Cause }

// ValidationError indicates that some input (e.g., session document
// structure, schema version, navigation script) failed validation checks.
type ValidationError struct {
	Message string
	Cause   error
}

func NewValidationError(message string, cause error) *ValidationError {
	return &ValidationError{Message: message, Cause: cause}
}
func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("validation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}
func (e *ValidationError) Unwrap() error { return e.Cause }

// InvalidInitialStateError indicates that the user-supplied initializer did
// not produce a usable combined state (nil, or not a plain key/value object).
// It is fatal to store construction and is surfaced synchronously from the
// factory before any history engine is built.
type InvalidInitialStateError struct {
	Reason string
}

func NewInvalidInitialStateError(reason string) *InvalidInitialStateError {
	return &InvalidInitialStateError{Reason: reason}
}
func (e *InvalidInitialStateError) Error() string {
	return fmt.Sprintf("invalid initial state: %s", e.Reason)
}

// NullUpdaterError indicates that the update dispatcher received an empty
// updater. The store's state is unchanged; the error is returned to the
// calling action before the history engine is reached.
type NullUpdaterError struct{}

func NewNullUpdaterError() *NullUpdaterError { return &NullUpdaterError{} }

func (e *NullUpdaterError) Error() string {
	return "updater must not be nil"
}

// UpdaterExecutionError wraps an error returned by a draft-mutating or
// snapshot-producing updater during a commit. The commit is rolled back and
// the store remains at its last successfully committed snapshot. Unwrap
// exposes the updater's own error so callers can match on it with errors.Is
// and errors.As.
type UpdaterExecutionError struct {
	Cause error
}

func NewUpdaterExecutionError(cause error) *UpdaterExecutionError {
	return &UpdaterExecutionError{Cause: cause}
}
func (e *UpdaterExecutionError) Error() string {
	return fmt.Sprintf("updater execution failed: %v", e.Cause)
}
func (e *UpdaterExecutionError) Unwrap() error { return e.Cause }

// StoreClosedError indicates an operation was attempted on a store after
// Close was called.
type StoreClosedError struct{}

func NewStoreClosedError() *StoreClosedError { return &StoreClosedError{} }

func (e *StoreClosedError) Error() string {
	return "store is closed"
}

// IsNullUpdater checks if an error is a NullUpdaterError using errors.As.
func IsNullUpdater(err error) bool {
	var nuErr *NullUpdaterError
	return errors.As(err, &nuErr)
}

// IsInvalidInitialState checks if an error is an InvalidInitialStateError
// using errors.As.
func IsInvalidInitialState(err error) bool {
	var iisErr *InvalidInitialStateError
	return errors.As(err, &iisErr)
}
