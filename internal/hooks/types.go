// Package hooks consumes tool-use notifications from the peer
// environment and drives automatic task transitions through the state
// machine. The engine is deliberately conservative: it promotes tasks
// toward active work states but never infers completion.
package hooks

import (
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// EventType identifies the kind of hook notification.
type EventType string

const (
	// PostToolUse fires after the peer environment runs a tool.
	PostToolUse EventType = "PostToolUse"

	// Stop fires when the peer session ends.
	Stop EventType = "Stop"
)

// Event is one hook notification. Events are ephemeral: they are not
// persisted beyond the engine's bounded in-memory transition history.
type Event struct {
	Type      EventType         `json:"type"`
	Tool      string            `json:"tool,omitempty"`
	File      string            `json:"file,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Context   map[string]string `json:"context,omitempty"`
}

// TaskTransition records one engine-applied transition for
// recent-activity reporting. The durable audit trail lives on each
// task's state history; this list is bounded and time-pruned.
type TaskTransition struct {
	TaskID    string      `json:"task_id"`
	From      task.Status `json:"from"`
	To        task.Status `json:"to"`
	Trigger   string      `json:"trigger"`
	Timestamp time.Time   `json:"timestamp"`
}
