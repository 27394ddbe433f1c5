// Package conflict detects and resolves disagreements between the local
// task store and the peer todo list. Detection and resolution are pure:
// the detector compares two point-in-time snapshots, the resolver turns a
// conflict into a resolution decision, and the orchestrating caller is
// responsible for applying winning data through the state machine and the
// peer adapter.
package conflict

import (
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// Type classifies a detected disagreement.
type Type string

const (
	// TypeStatusMismatch means the two sides disagree on task status
	// after mapping through the status downgrade table.
	TypeStatusMismatch Type = "status_mismatch"

	// TypePriorityMismatch means the two sides disagree on priority
	// after downgrading to the peer's scale.
	TypePriorityMismatch Type = "priority_mismatch"

	// TypeMissingInSource means a peer todo has no local counterpart.
	TypeMissingInSource Type = "missing_in_source"

	// TypeMissingInTarget means a local task has no peer counterpart.
	TypeMissingInTarget Type = "missing_in_target"
)

// Valid returns true for known conflict types.
func (t Type) Valid() bool {
	switch t {
	case TypeStatusMismatch, TypePriorityMismatch, TypeMissingInSource, TypeMissingInTarget:
		return true
	}
	return false
}

// Strategy names a resolution rule. The wire values are the tags the
// original sync tooling records, so resolution logs stay comparable
// across versions.
type Strategy string

const (
	// StrategyLastWriteWins keeps the most recently written side.
	StrategyLastWriteWins Strategy = "last_write_wins"

	// StrategyPriorityWins keeps the numerically higher severity.
	StrategyPriorityWins Strategy = "priority_wins"

	// StrategyManualMerge flags the conflict for human review; nothing
	// is applied automatically.
	StrategyManualMerge Strategy = "manual_merge"

	// StrategyClaudeCodeWins adopts the peer's data locally.
	StrategyClaudeCodeWins Strategy = "claude_code_wins"

	// StrategyCriticalClaudeWins pushes the local data to the peer.
	StrategyCriticalClaudeWins Strategy = "critical_claude_wins"
)

// Valid returns true for known strategies.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyLastWriteWins, StrategyPriorityWins, StrategyManualMerge,
		StrategyClaudeCodeWins, StrategyCriticalClaudeWins:
		return true
	}
	return false
}

// Snapshot freezes the disputed fields from one side at detection time.
type Snapshot struct {
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Content  string `json:"content,omitempty"`
}

// Conflict is one detected disagreement. A single task may yield several
// conflicts in one detection pass (one per mismatching field).
type Conflict struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	TaskID      string      `json:"task_id"`
	Description string      `json:"description"`
	Local       Snapshot    `json:"local"`
	Peer        Snapshot    `json:"peer"`
	DetectedAt  time.Time   `json:"detected_at"`
	Resolved    bool        `json:"resolved"`
	Resolution  *Resolution `json:"resolution,omitempty"`
}

// ResolvedData is the winning payload of a resolution. Exactly the fields
// relevant to the conflict type are set; everything else stays nil.
type ResolvedData struct {
	// Status is the local status to apply when the peer side won a
	// status mismatch, or the surviving local status when local won.
	Status *task.Status `json:"status,omitempty"`

	// Priority is the surviving priority for a priority mismatch.
	Priority *task.Priority `json:"priority,omitempty"`

	// Task is a fully-decoded local task to create for missing_in_source.
	Task *task.Task `json:"task,omitempty"`

	// Todo is the encoded peer todo to push for missing_in_target.
	Todo *peer.Todo `json:"todo,omitempty"`
}

// Sides of a conflict.
const (
	SideLocal = "local"
	SidePeer  = "peer"
)

// Resolution describes the decision taken for a conflict. It carries the
// winning data but applies nothing itself.
type Resolution struct {
	Strategy  Strategy     `json:"strategy"`
	AppliedAt time.Time    `json:"applied_at"`
	Data      ResolvedData `json:"resolved_data"`

	// Winner names the side whose data survives: SideLocal or SidePeer.
	// Empty for manual_merge outcomes.
	Winner string `json:"winner,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// ManualReview reports whether the resolution is a needs-attention
// outcome rather than an applied decision.
func (r Resolution) ManualReview() bool {
	return r.Strategy == StrategyManualMerge
}
