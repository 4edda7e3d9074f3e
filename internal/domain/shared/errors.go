package shared

import (
	"errors"
	"fmt"
)

// ErrSweepInProgress is returned when a sync sweep is requested while another
// sweep holds the serialization guard.
var ErrSweepInProgress = errors.New("sync sweep already in progress")

// ValidationError indicates that input data violated a domain rule.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NotFoundError indicates that a record does not exist in its collection.
type NotFoundError struct {
	Entity string
	Key    string
}

// NewNotFoundError creates a NotFoundError for the given entity and key.
func NewNotFoundError(entity, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StoreUnavailableError indicates the local store could not be opened at all
// (file inaccessible, corruption, migration failure). Fatal to every store
// operation until resolved; callers degrade to online-only mode.
type StoreUnavailableError struct {
	Err error
}

// NewStoreUnavailable wraps err as a StoreUnavailableError.
func NewStoreUnavailable(err error) *StoreUnavailableError {
	return &StoreUnavailableError{Err: err}
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("local store unavailable: %v", e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// TransactionError indicates a single store transaction failed. The store
// never retries; retry policy belongs to the caller.
type TransactionError struct {
	Op  string
	Err error
}

// NewTransactionError wraps err as a TransactionError for the named operation.
func NewTransactionError(op string, err error) *TransactionError {
	return &TransactionError{Op: op, Err: err}
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("store transaction failed (%s): %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}

// SyncDeliveryError indicates a session submission did not receive a positive
// acknowledgment. The session stays unsynced and is retried on the next sweep;
// this error never propagates past the sync orchestrator.
type SyncDeliveryError struct {
	SessionID  string
	StatusCode int
	Err        error
}

// NewSyncDeliveryError creates a SyncDeliveryError for the given session.
// statusCode is zero for transport-level failures.
func NewSyncDeliveryError(sessionID string, statusCode int, err error) *SyncDeliveryError {
	return &SyncDeliveryError{SessionID: sessionID, StatusCode: statusCode, Err: err}
}

func (e *SyncDeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("sync delivery failed for session %s: status %d", e.SessionID, e.StatusCode)
	}
	return fmt.Sprintf("sync delivery failed for session %s: %v", e.SessionID, e.Err)
}

func (e *SyncDeliveryError) Unwrap() error {
	return e.Err
}
