// Package errors provides centralized error definitions and error handling
// utilities for the sync engine. It defines domain-specific error types,
// sentinel errors, constructors with context wrapping, and classification
// helpers.
//
// Two categories of errors are provided:
//
// Domain-specific errors represent errors from specific subsystems:
//   - StateError: errors from the task state machine
//   - AdapterError: errors from the peer adapter strategy chain
//   - SyncError: errors from conflict detection/resolution orchestration
//
// Sentinel errors represent specific conditions callers branch on:
//
//	if errors.Is(err, errors.ErrNoOpTransition) { ... }
//
// Errors can also be classified by severity and behavior:
//   - Retryable: transient errors that may succeed on retry
//   - UserFacing: errors safe to display to users
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience so callers can
// import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityDebug is for errors that are useful for debugging but not critical.
	SeverityDebug Severity = iota
	// SeverityInfo is for informational errors that don't indicate a problem.
	SeverityInfo
	// SeverityWarning is for errors that might indicate a problem but aren't critical.
	SeverityWarning
	// SeverityError is for errors that indicate a real problem.
	SeverityError
	// SeverityCritical is for errors that require immediate attention.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// State-machine sentinel errors
var (
	// ErrInvalidState indicates a transition targeted a state outside the closed set.
	ErrInvalidState = New("invalid task state")
	// ErrNoOpTransition indicates a transition to the task's current state.
	ErrNoOpTransition = New("transition is a no-op")
	// ErrBlockerReasonRequired indicates a block transition without a blocker reason.
	ErrBlockerReasonRequired = New("blocker reason is required")
)

// Task store sentinel errors
var (
	// ErrTaskNotFound indicates that a task could not be found.
	ErrTaskNotFound = New("task not found")
	// ErrTaskExists indicates that a task with the same ID already exists.
	ErrTaskExists = New("task already exists")
)

// Peer adapter sentinel errors
var (
	// ErrStrategyUnavailable indicates a single adapter strategy cannot run
	// in the current environment. Swallowed by the fallback chain.
	ErrStrategyUnavailable = New("strategy unavailable")
	// ErrAdapterExhausted indicates every adapter strategy failed.
	ErrAdapterExhausted = New("all adapter strategies failed")
	// ErrMalformedPayload indicates a handoff payload failed to parse.
	ErrMalformedPayload = New("malformed handoff payload")
)

// Conflict sentinel errors
var (
	// ErrConflictNotFound indicates that a conflict could not be found.
	ErrConflictNotFound = New("conflict not found")
	// ErrUnknownStrategy indicates an unrecognized resolution strategy.
	ErrUnknownStrategy = New("unknown resolution strategy")
	// ErrUnknownConflictType indicates an unrecognized conflict type.
	ErrUnknownConflictType = New("unknown conflict type")
)

// General sentinel errors
var (
	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = New("operation timed out")
	// ErrInvalidInput indicates that input validation failed.
	ErrInvalidInput = New("invalid input")
)

// baseError provides common functionality for all error types.
type baseError struct {
	message    string
	cause      error
	severity   Severity
	retryable  bool
	userFacing bool
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsRetryable returns whether the error is retryable.
func (e *baseError) IsRetryable() bool {
	return e.retryable
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// StateError represents errors from the task state machine.
//
// Example:
//
//	err := errors.NewStateError("transition rejected", errors.ErrNoOpTransition).
//		WithTaskID("task-1").WithStates("todo", "todo")
type StateError struct {
	baseError
	TaskID    string
	FromState string
	ToState   string
}

// NewStateError creates a new StateError.
func NewStateError(message string, cause error) *StateError {
	return &StateError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithTaskID adds a task ID to the error context.
func (e *StateError) WithTaskID(id string) *StateError {
	e.TaskID = id
	return e
}

// WithStates adds the attempted from/to states to the error context.
func (e *StateError) WithStates(from, to string) *StateError {
	e.FromState = from
	e.ToState = to
	return e
}

// Error returns the formatted error message.
func (e *StateError) Error() string {
	var parts []string
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskID))
	}
	if e.ToState != "" {
		parts = append(parts, fmt.Sprintf("transition=%s->%s", e.FromState, e.ToState))
	}

	prefix := "state error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("state error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *StateError) Is(target error) bool {
	if _, ok := target.(*StateError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// AdapterError represents errors from the peer adapter strategy chain.
//
// Example:
//
//	err := errors.NewAdapterError("write failed", errors.ErrAdapterExhausted).
//		WithStrategy("file")
type AdapterError struct {
	baseError
	Strategy string
}

// NewAdapterError creates a new AdapterError. Adapter errors are retryable
// by default since peer availability is transient.
func NewAdapterError(message string, cause error) *AdapterError {
	return &AdapterError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityWarning,
			retryable:  true,
			userFacing: true,
		},
	}
}

// WithStrategy adds the failing strategy name to the error context.
func (e *AdapterError) WithStrategy(name string) *AdapterError {
	e.Strategy = name
	return e
}

// WithSeverity sets the error severity.
func (e *AdapterError) WithSeverity(s Severity) *AdapterError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *AdapterError) Error() string {
	prefix := "adapter error"
	if e.Strategy != "" {
		prefix = fmt.Sprintf("adapter error [strategy=%s]", e.Strategy)
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *AdapterError) Is(target error) bool {
	if _, ok := target.(*AdapterError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// SyncError represents errors from conflict detection/resolution orchestration.
type SyncError struct {
	baseError
	TaskID     string
	ConflictID string
}

// NewSyncError creates a new SyncError.
func NewSyncError(message string, cause error) *SyncError {
	return &SyncError{
		baseError: baseError{
			message:    message,
			cause:      cause,
			severity:   SeverityError,
			retryable:  false,
			userFacing: true,
		},
	}
}

// WithTaskID adds a task ID to the error context.
func (e *SyncError) WithTaskID(id string) *SyncError {
	e.TaskID = id
	return e
}

// WithConflictID adds a conflict ID to the error context.
func (e *SyncError) WithConflictID(id string) *SyncError {
	e.ConflictID = id
	return e
}

// Error returns the formatted error message.
func (e *SyncError) Error() string {
	var parts []string
	if e.TaskID != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.TaskID))
	}
	if e.ConflictID != "" {
		parts = append(parts, fmt.Sprintf("conflict=%s", e.ConflictID))
	}

	prefix := "sync error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("sync error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SyncError) Is(target error) bool {
	if _, ok := target.(*SyncError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// classifier is implemented by errors that carry classification metadata.
type classifier interface {
	Severity() Severity
	IsRetryable() bool
	IsUserFacing() bool
}

// IsRetryable returns true if the error (or any error it wraps) is transient
// and the operation may succeed on retry.
func IsRetryable(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsRetryable()
	}
	return errors.Is(err, ErrStrategyUnavailable) || errors.Is(err, ErrTimeout)
}

// IsUserFacing returns true if the error message is safe to display to users.
func IsUserFacing(err error) bool {
	var c classifier
	if errors.As(err, &c) {
		return c.IsUserFacing()
	}
	return false
}

// SeverityOf returns the severity of the error, defaulting to SeverityError
// for unclassified errors.
func SeverityOf(err error) Severity {
	var c classifier
	if errors.As(err, &c) {
		return c.Severity()
	}
	return SeverityError
}
