// Package task defines the task data model and the status state machine.
// Transitions are pure: they validate a request, return a new Task value
// with an appended transition record, and never mutate their input. The
// caller is responsible for persisting the result.
package task

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle state of a task. The set is closed:
// transitions to any other value are rejected.
type Status string

const (
	// StatusTodo indicates the task has not been started.
	StatusTodo Status = "todo"

	// StatusInProgress indicates the task is being worked on.
	StatusInProgress Status = "in-progress"

	// StatusFocused indicates the task is being actively worked on right now.
	StatusFocused Status = "focused"

	// StatusBlocked indicates the task cannot proceed until a blocker is
	// cleared. Blocked is a side branch: it is not ordered against the
	// progress states and a blocked task returns to in-progress or focused.
	StatusBlocked Status = "blocked"

	// StatusDone indicates the task is complete.
	StatusDone Status = "done"

	// StatusDimmed indicates the task is deprioritized but not blocked.
	StatusDimmed Status = "dimmed"

	// StatusArchivedDone is the terminal archival variant of done.
	StatusArchivedDone Status = "archived_done"

	// StatusArchivedBlocked is the terminal archival variant of blocked.
	StatusArchivedBlocked Status = "archived_blocked"

	// StatusArchivedDimmed is the terminal archival variant of dimmed.
	StatusArchivedDimmed Status = "archived_dimmed"
)

// AllStatuses returns the closed set of valid statuses.
func AllStatuses() []Status {
	return []Status{
		StatusTodo,
		StatusInProgress,
		StatusFocused,
		StatusBlocked,
		StatusDone,
		StatusDimmed,
		StatusArchivedDone,
		StatusArchivedBlocked,
		StatusArchivedDimmed,
	}
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid returns true if the status is a member of the closed set.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusFocused, StatusBlocked,
		StatusDone, StatusDimmed,
		StatusArchivedDone, StatusArchivedBlocked, StatusArchivedDimmed:
		return true
	}
	return false
}

// IsArchived returns true for terminal archival statuses. Archived tasks
// are excluded from hook-driven transitions and sync relevance.
func (s Status) IsArchived() bool {
	return s == StatusArchivedDone || s == StatusArchivedBlocked || s == StatusArchivedDimmed
}

// ProgressRank maps a status onto the total progress ordering used for
// conflict tie-breaking and advancement checks:
//
//	todo/dimmed < in-progress < focused < done/archived_done
//
// Blocked is not part of the ordering; it ranks alongside in-progress
// because that is how the peer system perceives it.
func ProgressRank(s Status) int {
	switch s {
	case StatusTodo, StatusDimmed, StatusArchivedDimmed:
		return 1
	case StatusInProgress, StatusBlocked, StatusArchivedBlocked:
		return 2
	case StatusFocused:
		return 3
	case StatusDone, StatusArchivedDone:
		return 4
	default:
		return 0
	}
}

// Priority represents task priority on a four-level scale.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Valid returns true if the priority is a known level.
func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank returns the numeric severity of the priority: critical=4, high=3,
// medium=2, low=1. Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// DependencyKind describes how one task depends on another.
type DependencyKind string

const (
	// DependencyBlocks means the referenced task cannot start until this one completes.
	DependencyBlocks DependencyKind = "blocks"
	// DependencyRequires means this task cannot start until the referenced one completes.
	DependencyRequires DependencyKind = "requires"
	// DependencyRelates is an informational link with no ordering constraint.
	DependencyRelates DependencyKind = "relates"
)

// Dependency is an ordered reference from one task to another.
type Dependency struct {
	TaskID string         `json:"task_id"`
	Kind   DependencyKind `json:"kind"`
}

// TransitionRecord is an immutable audit entry describing one status change.
// FromState is nil only for the creation record.
type TransitionRecord struct {
	ID        string            `json:"id"`
	FromState *Status           `json:"from_state"`
	ToState   Status            `json:"to_state"`
	ChangedBy string            `json:"changed_by"`
	ChangedAt time.Time         `json:"changed_at"`
	Reason    string            `json:"reason,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Metadata keys used by the convenience transition wrappers.
const (
	// MetaBlockerReason records why a task was blocked.
	MetaBlockerReason = "blocker_reason"
	// MetaExpectedResolution records when a blocker is expected to clear (RFC 3339).
	MetaExpectedResolution = "expected_resolution"
	// MetaResolutionNotes records free-form notes on completion or unblocking.
	MetaResolutionNotes = "resolution_notes"
)

// Task is the local representation of a unit of work.
//
// Invariant: StateHistory is append-only and its last entry's ToState
// always equals Status.
type Task struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Description  string             `json:"description,omitempty"`
	Status       Status             `json:"status"`
	Priority     Priority           `json:"priority"`
	Labels       []string           `json:"labels,omitempty"`
	Assignee     string             `json:"assignee,omitempty"`
	StoryPoints  int                `json:"story_points,omitempty"`
	Dependencies []Dependency       `json:"dependencies,omitempty"`
	StateHistory []TransitionRecord `json:"state_history"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// New creates a task in the todo state with a creation transition record
// (FromState nil) stamped by the given actor.
func New(title, description string, priority Priority, createdBy string) Task {
	now := time.Now().UTC()
	if !priority.Valid() {
		priority = PriorityMedium
	}
	return Task{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Status:      StatusTodo,
		Priority:    priority,
		StateHistory: []TransitionRecord{{
			ID:        uuid.NewString(),
			FromState: nil,
			ToState:   StatusTodo,
			ChangedBy: createdBy,
			ChangedAt: now,
			Reason:    "task created",
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the task. Slices and maps are copied so
// mutations of the clone never leak into the original.
func (t Task) Clone() Task {
	cp := t

	if t.Labels != nil {
		cp.Labels = make([]string, len(t.Labels))
		copy(cp.Labels, t.Labels)
	}
	if t.Dependencies != nil {
		cp.Dependencies = make([]Dependency, len(t.Dependencies))
		copy(cp.Dependencies, t.Dependencies)
	}
	if t.StateHistory != nil {
		cp.StateHistory = make([]TransitionRecord, len(t.StateHistory))
		copy(cp.StateHistory, t.StateHistory)
		for i, rec := range t.StateHistory {
			if rec.Metadata != nil {
				md := make(map[string]string, len(rec.Metadata))
				for k, v := range rec.Metadata {
					md[k] = v
				}
				cp.StateHistory[i].Metadata = md
			}
			if rec.FromState != nil {
				from := *rec.FromState
				cp.StateHistory[i].FromState = &from
			}
		}
	}
	return cp
}

// LastTransition returns the most recent transition record, or nil if the
// history is empty (which only happens for hand-built values).
func (t Task) LastTransition() *TransitionRecord {
	if len(t.StateHistory) == 0 {
		return nil
	}
	return &t.StateHistory[len(t.StateHistory)-1]
}
