package conflict

import (
	"fmt"
	"slices"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/codec"
	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// Policy configures how the resolver treats each conflict type.
type Policy struct {
	// DefaultStrategy applies to conflict types listed in neither
	// AutoResolveTypes nor ManualReviewRequired.
	DefaultStrategy Strategy

	// AutoResolveTypes are resolved by their type-specific rule.
	AutoResolveTypes []Type

	// ManualReviewRequired types always produce a manual_merge
	// resolution carrying the full conflict payload; nothing is applied.
	ManualReviewRequired []Type
}

// DefaultPolicy auto-resolves every known conflict type and falls back
// to last-write-wins for extensions.
func DefaultPolicy() Policy {
	return Policy{
		DefaultStrategy: StrategyLastWriteWins,
		AutoResolveTypes: []Type{
			TypeStatusMismatch,
			TypePriorityMismatch,
			TypeMissingInSource,
			TypeMissingInTarget,
		},
	}
}

// Resolver turns conflicts into resolution decisions according to its
// policy. Resolving never writes to the task store or the peer; it only
// returns the winning data for the orchestrating caller to apply.
type Resolver struct {
	policy Policy
	log    *logging.Logger
}

// NewResolver creates a resolver with the given policy.
func NewResolver(policy Policy, log *logging.Logger) *Resolver {
	if !policy.DefaultStrategy.Valid() {
		policy.DefaultStrategy = StrategyLastWriteWins
	}
	return &Resolver{policy: policy, log: log.WithComponent("resolver")}
}

// Resolve produces a resolution for the conflict. The local task and
// peer todo are the full values the conflict was detected against; either
// may be nil for missing_in_* conflicts.
func (r *Resolver) Resolve(c Conflict, local *task.Task, remote *peer.Todo) (Resolution, error) {
	if slices.Contains(r.policy.ManualReviewRequired, c.Type) {
		return r.manualMerge(c, "type requires manual review"), nil
	}

	if slices.Contains(r.policy.AutoResolveTypes, c.Type) {
		switch c.Type {
		case TypeStatusMismatch:
			return r.resolveStatusMismatch(c, local, remote)
		case TypePriorityMismatch:
			return r.resolvePriorityMismatch(c, local, remote)
		case TypeMissingInSource:
			return r.resolveMissingInSource(c, remote)
		case TypeMissingInTarget:
			return r.resolveMissingInTarget(c, local)
		default:
			return Resolution{}, errors.NewSyncError(
				fmt.Sprintf("no auto-resolver for type %q", c.Type), errors.ErrUnknownConflictType).
				WithConflictID(c.ID)
		}
	}

	return r.applyDefault(c, local, remote)
}

// resolveStatusMismatch keeps whichever side is more advanced on the
// progress ordering. Ties keep the local side: progress is assumed
// monotonic, so the system showing more progress has fresher information.
func (r *Resolver) resolveStatusMismatch(c Conflict, local *task.Task, remote *peer.Todo) (Resolution, error) {
	if local == nil || remote == nil {
		return Resolution{}, errors.NewSyncError("status mismatch requires both sides", errors.ErrInvalidInput).
			WithConflictID(c.ID)
	}

	peerAsLocal := codec.StatusFromPeer(remote.Status)

	if task.ProgressRank(peerAsLocal) > task.ProgressRank(local.Status) {
		status := peerAsLocal
		return Resolution{
			Strategy:  StrategyClaudeCodeWins,
			AppliedAt: time.Now().UTC(),
			Winner:    SidePeer,
			Data:      ResolvedData{Status: &status},
			Notes: fmt.Sprintf("peer status %s outranks local %s on the progress ordering",
				remote.Status, local.Status),
		}, nil
	}

	status := local.Status
	return Resolution{
		Strategy:  StrategyCriticalClaudeWins,
		AppliedAt: time.Now().UTC(),
		Winner:    SideLocal,
		Data:      ResolvedData{Status: &status},
		Notes: fmt.Sprintf("local status %s is at least as advanced as peer %s",
			local.Status, remote.Status),
	}, nil
}

// resolvePriorityMismatch keeps the numerically higher severity on the
// critical=4/high=3/medium=2/low=1 scale. Ties keep the local side.
func (r *Resolver) resolvePriorityMismatch(c Conflict, local *task.Task, remote *peer.Todo) (Resolution, error) {
	if local == nil || remote == nil {
		return Resolution{}, errors.NewSyncError("priority mismatch requires both sides", errors.ErrInvalidInput).
			WithConflictID(c.ID)
	}

	peerAsLocal := codec.PriorityFromPeer(remote.Priority)

	if peerAsLocal.Rank() > local.Priority.Rank() {
		priority := peerAsLocal
		return Resolution{
			Strategy:  StrategyPriorityWins,
			AppliedAt: time.Now().UTC(),
			Winner:    SidePeer,
			Data:      ResolvedData{Priority: &priority},
			Notes:     fmt.Sprintf("peer priority %s outranks local %s", remote.Priority, local.Priority),
		}, nil
	}

	priority := local.Priority
	return Resolution{
		Strategy:  StrategyPriorityWins,
		AppliedAt: time.Now().UTC(),
		Winner:    SideLocal,
		Data:      ResolvedData{Priority: &priority},
		Notes:     fmt.Sprintf("local priority %s is at least as severe as peer %s", local.Priority, remote.Priority),
	}, nil
}

// resolveMissingInSource adopts the peer todo: the local side must create
// a task from the codec-decoded peer data.
func (r *Resolver) resolveMissingInSource(c Conflict, remote *peer.Todo) (Resolution, error) {
	if remote == nil {
		return Resolution{}, errors.NewSyncError("missing_in_source requires the peer todo", errors.ErrInvalidInput).
			WithConflictID(c.ID)
	}

	if codec.Decode(remote.Content).AmbiguousSplit {
		r.log.WithTask(c.TaskID).Warn("content has multiple title separators, splitting on the first",
			"content", remote.Content)
	}

	adopted := codec.ToTask(*remote, "sync:claude-code")
	return Resolution{
		Strategy:  StrategyClaudeCodeWins,
		AppliedAt: time.Now().UTC(),
		Winner:    SidePeer,
		Data:      ResolvedData{Task: &adopted},
		Notes:     "peer todo adopted as a new local task",
	}, nil
}

// resolveMissingInTarget pushes the local task: the peer must be given a
// new todo derived from the codec-encoded local data.
func (r *Resolver) resolveMissingInTarget(c Conflict, local *task.Task) (Resolution, error) {
	if local == nil {
		return Resolution{}, errors.NewSyncError("missing_in_target requires the local task", errors.ErrInvalidInput).
			WithConflictID(c.ID)
	}

	todo := codec.ToTodo(*local)
	return Resolution{
		Strategy:  StrategyCriticalClaudeWins,
		AppliedAt: time.Now().UTC(),
		Winner:    SideLocal,
		Data:      ResolvedData{Todo: &todo},
		Notes:     "local task encoded as a new peer todo",
	}, nil
}

// applyDefault applies the policy's default strategy generically.
func (r *Resolver) applyDefault(c Conflict, local *task.Task, remote *peer.Todo) (Resolution, error) {
	switch r.policy.DefaultStrategy {
	case StrategyManualMerge:
		return r.manualMerge(c, "default strategy is manual merge"), nil

	case StrategyClaudeCodeWins:
		if c.Type == TypeMissingInSource {
			return r.resolveMissingInSource(c, remote)
		}
		if remote == nil {
			return r.manualMerge(c, "peer side unavailable for claude_code_wins"), nil
		}
		status := codec.StatusFromPeer(remote.Status)
		priority := codec.PriorityFromPeer(remote.Priority)
		return Resolution{
			Strategy:  StrategyClaudeCodeWins,
			AppliedAt: time.Now().UTC(),
			Winner:    SidePeer,
			Data:      ResolvedData{Status: &status, Priority: &priority},
			Notes:     "default strategy adopted the peer side",
		}, nil

	case StrategyCriticalClaudeWins:
		if c.Type == TypeMissingInTarget {
			return r.resolveMissingInTarget(c, local)
		}
		if local == nil {
			return r.manualMerge(c, "local side unavailable for critical_claude_wins"), nil
		}
		todo := codec.ToTodo(*local)
		return Resolution{
			Strategy:  StrategyCriticalClaudeWins,
			AppliedAt: time.Now().UTC(),
			Winner:    SideLocal,
			Data:      ResolvedData{Todo: &todo},
			Notes:     "default strategy kept the local side",
		}, nil

	case StrategyPriorityWins:
		if local != nil && remote != nil {
			return r.resolvePriorityMismatch(c, local, remote)
		}
		return r.manualMerge(c, "priority_wins needs both sides"), nil

	case StrategyLastWriteWins:
		// The peer carries no timestamps, so only the local side has a
		// defensible write time. Local wins unless it does not exist.
		if local == nil {
			if remote == nil {
				return r.manualMerge(c, "no data on either side"), nil
			}
			return r.resolveMissingInSource(c, remote)
		}
		todo := codec.ToTodo(*local)
		return Resolution{
			Strategy:  StrategyLastWriteWins,
			AppliedAt: time.Now().UTC(),
			Winner:    SideLocal,
			Data:      ResolvedData{Todo: &todo},
			Notes:     "peer data carries no write time; local side treated as latest",
		}, nil

	default:
		return Resolution{}, errors.NewSyncError(
			fmt.Sprintf("unknown default strategy %q", r.policy.DefaultStrategy), errors.ErrUnknownStrategy).
			WithConflictID(c.ID)
	}
}

// manualMerge builds a needs-attention resolution carrying the conflict
// payload. Nothing is applied for these; they surface in the report's
// manual-review list.
func (r *Resolver) manualMerge(c Conflict, why string) Resolution {
	r.log.Info("conflict flagged for manual review", "conflict_id", c.ID, "type", string(c.Type))
	return Resolution{
		Strategy:  StrategyManualMerge,
		AppliedAt: time.Now().UTC(),
		Notes:     why,
	}
}
