// Package peer exchanges todo lists with the Claude Code todo system.
// The peer exposes only a content string, a coarse status, and a coarse
// priority; everything richer round-trips through the content codec. No
// single integration method is guaranteed available, so the adapter walks
// an ordered chain of degrading strategies.
package peer

import (
	"time"
)

// Status is the peer system's coarse task status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Valid returns true if the status is one the peer understands.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority is the peer system's coarse priority. The peer has no
// "critical" level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid returns true if the priority is one the peer understands.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Todo is the peer system's view of a task. When linked to a local task
// the ID is shared; all structured metadata beyond status and priority is
// embedded in Content by the codec.
type Todo struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Status   Status   `json:"status"`
	Priority Priority `json:"priority"`
}

// Handoff actions.
const (
	ActionWrite = "write"
	ActionRead  = "read"
)

// HandoffPayload is the file- and process-based exchange format:
// a JSON object written to a well-known location or piped through the
// peer's stdin/stdout.
type HandoffPayload struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Action    string    `json:"action"`
	Todos     []Todo    `json:"todos"`
}

// NewHandoff builds a payload stamped with the current time and this
// system's source tag.
func NewHandoff(action string, todos []Todo) HandoffPayload {
	return HandoffPayload{
		Timestamp: time.Now().UTC(),
		Source:    "critical-claude",
		Action:    action,
		Todos:     todos,
	}
}

// ValidTodos reports whether the payload carries a usable todo list:
// at least one entry, each with an id and a valid status.
func (p HandoffPayload) ValidTodos() bool {
	if len(p.Todos) == 0 {
		return false
	}
	for _, todo := range p.Todos {
		if todo.ID == "" || !todo.Status.Valid() {
			return false
		}
	}
	return true
}
