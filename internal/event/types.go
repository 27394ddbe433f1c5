// Package event defines a small synchronous pub-sub bus used to decouple
// the sync and hook engines from whatever wants to observe them (CLI
// output, tests, future UIs). Handlers run inline on the publisher's
// goroutine; anything slow belongs on the subscriber's side.
package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "task.transition").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// TaskTransitionEvent is emitted whenever a task changes status, whether
// driven by a hook event or by sync resolution application.
type TaskTransitionEvent struct {
	baseEvent
	TaskID  string // Task that transitioned
	From    string // Previous status
	To      string // New status
	Trigger string // What caused the transition (hook tag, sync tag, user)
}

// NewTaskTransitionEvent creates a TaskTransitionEvent.
func NewTaskTransitionEvent(taskID, from, to, trigger string) TaskTransitionEvent {
	return TaskTransitionEvent{
		baseEvent: newBaseEvent("task.transition"),
		TaskID:    taskID,
		From:      from,
		To:        to,
		Trigger:   trigger,
	}
}

// ConflictDetectedEvent is emitted once per detection pass that found
// disagreements between the local store and the peer.
type ConflictDetectedEvent struct {
	baseEvent
	Count int // Number of conflicts found in the pass
}

// NewConflictDetectedEvent creates a ConflictDetectedEvent.
func NewConflictDetectedEvent(count int) ConflictDetectedEvent {
	return ConflictDetectedEvent{
		baseEvent: newBaseEvent("conflict.detected"),
		Count:     count,
	}
}

// ConflictResolvedEvent is emitted for each conflict a sync pass
// resolved (or flagged for manual review).
type ConflictResolvedEvent struct {
	baseEvent
	ConflictID string // Resolved conflict
	TaskID     string // Task the conflict concerned
	Strategy   string // Resolution strategy tag
	Manual     bool   // True when flagged for manual review instead of applied
}

// NewConflictResolvedEvent creates a ConflictResolvedEvent.
func NewConflictResolvedEvent(conflictID, taskID, strategy string, manual bool) ConflictResolvedEvent {
	return ConflictResolvedEvent{
		baseEvent:  newBaseEvent("conflict.resolved"),
		ConflictID: conflictID,
		TaskID:     taskID,
		Strategy:   strategy,
		Manual:     manual,
	}
}

// SyncCompletedEvent is emitted at the end of a sync pass.
type SyncCompletedEvent struct {
	baseEvent
	Conflicts    int  // Conflicts detected
	AutoResolved int  // Conflicts auto-resolved
	ManualReview int  // Conflicts flagged for a human
	Executed     bool // False for dry runs
}

// NewSyncCompletedEvent creates a SyncCompletedEvent.
func NewSyncCompletedEvent(conflicts, autoResolved, manualReview int, executed bool) SyncCompletedEvent {
	return SyncCompletedEvent{
		baseEvent:    newBaseEvent("sync.completed"),
		Conflicts:    conflicts,
		AutoResolved: autoResolved,
		ManualReview: manualReview,
		Executed:     executed,
	}
}

// HookReceivedEvent is emitted when the hook engine accepts an external
// tool-use notification, before any transitions are proposed.
type HookReceivedEvent struct {
	baseEvent
	HookType string // PostToolUse, Stop, ...
	Tool     string // Tool name if present
	File     string // File path if present
}

// NewHookReceivedEvent creates a HookReceivedEvent.
func NewHookReceivedEvent(hookType, tool, file string) HookReceivedEvent {
	return HookReceivedEvent{
		baseEvent: newBaseEvent("hook.received"),
		HookType:  hookType,
		Tool:      tool,
		File:      file,
	}
}
