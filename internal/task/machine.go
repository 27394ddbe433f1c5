package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

// TransitionRequest describes one requested status change. Using a closed
// struct keeps the state machine contract checked at compile time instead
// of smuggling options through loosely-typed maps.
type TransitionRequest struct {
	// To is the target status. Must be a member of the closed status set.
	To Status

	// ChangedBy identifies the actor: a user id, "system", or a
	// sync-source tag such as "sync:claude-code".
	ChangedBy string

	// Reason is free text recorded in the audit trail.
	Reason string

	// Metadata carries optional structured context (blocker reason,
	// resolution notes). May be nil.
	Metadata map[string]string
}

// Transition validates and applies a status change, returning a new Task
// value with Status updated and a TransitionRecord appended. The input
// task is never mutated, so callers can safely retry with a fresh copy
// on persistence failure.
//
// Backward moves (e.g. done -> in-progress) are legal to support
// correction; they still append an audit record. A no-op transition is
// rejected with ErrNoOpTransition so the audit trail stays meaningful.
func Transition(t Task, req TransitionRequest) (Task, error) {
	if !req.To.Valid() {
		return Task{}, errors.NewStateError("unknown target status", errors.ErrInvalidState).
			WithTaskID(t.ID).
			WithStates(t.Status.String(), req.To.String())
	}
	if req.To == t.Status {
		return Task{}, errors.NewStateError("task is already in the requested status", errors.ErrNoOpTransition).
			WithTaskID(t.ID).
			WithStates(t.Status.String(), req.To.String())
	}

	now := time.Now().UTC()
	from := t.Status

	next := t.Clone()
	next.Status = req.To
	next.UpdatedAt = now
	next.StateHistory = append(next.StateHistory, TransitionRecord{
		ID:        uuid.NewString(),
		FromState: &from,
		ToState:   req.To,
		ChangedBy: req.ChangedBy,
		ChangedAt: now,
		Reason:    req.Reason,
		Metadata:  req.Metadata,
	})

	return next, nil
}

// Focus transitions a task into the focused state.
func Focus(t Task, changedBy string) (Task, error) {
	return Transition(t, TransitionRequest{
		To:        StatusFocused,
		ChangedBy: changedBy,
		Reason:    "task focused",
	})
}

// Block transitions a task into the blocked state. A blocker reason is
// required; an expected resolution date may be supplied.
func Block(t Task, changedBy, blockerReason string, expectedResolution *time.Time) (Task, error) {
	if blockerReason == "" {
		return Task{}, errors.NewStateError("cannot block without a reason", errors.ErrBlockerReasonRequired).
			WithTaskID(t.ID).
			WithStates(t.Status.String(), StatusBlocked.String())
	}

	md := map[string]string{MetaBlockerReason: blockerReason}
	if expectedResolution != nil {
		md[MetaExpectedResolution] = expectedResolution.UTC().Format(time.RFC3339)
	}

	return Transition(t, TransitionRequest{
		To:        StatusBlocked,
		ChangedBy: changedBy,
		Reason:    "task blocked: " + blockerReason,
		Metadata:  md,
	})
}

// Complete transitions a task into the done state. Optional notes are
// recorded in the transition metadata.
func Complete(t Task, changedBy, notes string) (Task, error) {
	req := TransitionRequest{
		To:        StatusDone,
		ChangedBy: changedBy,
		Reason:    "task completed",
	}
	if notes != "" {
		req.Metadata = map[string]string{MetaResolutionNotes: notes}
	}
	return Transition(t, req)
}
