package conflict

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/codyrobertson/critical-claude-sub003/internal/codec"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// Detector computes the set of disagreements between the local task
// collection and the peer todo collection. Detection is a pure function
// of its two inputs: the same snapshots always yield the same conflict
// set, modulo ids and timestamps.
type Detector struct {
	log *logging.Logger
}

// NewDetector creates a detector.
func NewDetector(log *logging.Logger) *Detector {
	return &Detector{log: log.WithComponent("detector")}
}

// Detect cross-references both collections by id and emits one conflict
// per disagreement. Field comparisons go through the codec's downgrade
// tables so that states indistinguishable to the peer (focused vs
// in-progress, blocked vs in-progress) never register as conflicts.
func (d *Detector) Detect(tasks []task.Task, todos []peer.Todo) []Conflict {
	now := time.Now().UTC()

	todosByID := make(map[string]peer.Todo, len(todos))
	for _, todo := range todos {
		todosByID[todo.ID] = todo
	}
	tasksByID := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		tasksByID[t.ID] = t
	}

	var conflicts []Conflict

	for _, t := range tasks {
		// Archived tasks are local bookkeeping: they are never pushed,
		// so their absence on the peer is not a disagreement.
		if t.Status.IsArchived() {
			continue
		}

		todo, linked := todosByID[t.ID]
		if !linked {
			conflicts = append(conflicts, Conflict{
				ID:          uuid.NewString(),
				Type:        TypeMissingInTarget,
				TaskID:      t.ID,
				Description: fmt.Sprintf("task %q has no peer todo", t.Title),
				Local:       localSnapshot(t),
				DetectedAt:  now,
			})
			continue
		}

		if codec.StatusToPeer(t.Status) != todo.Status {
			conflicts = append(conflicts, Conflict{
				ID:     uuid.NewString(),
				Type:   TypeStatusMismatch,
				TaskID: t.ID,
				Description: fmt.Sprintf("task %q is %s locally but %s on the peer",
					t.Title, t.Status, todo.Status),
				Local:      localSnapshot(t),
				Peer:       peerSnapshot(todo),
				DetectedAt: now,
			})
		}

		if codec.PriorityToPeer(t.Priority) != todo.Priority {
			conflicts = append(conflicts, Conflict{
				ID:     uuid.NewString(),
				Type:   TypePriorityMismatch,
				TaskID: t.ID,
				Description: fmt.Sprintf("task %q is %s priority locally but %s on the peer",
					t.Title, t.Priority, todo.Priority),
				Local:      localSnapshot(t),
				Peer:       peerSnapshot(todo),
				DetectedAt: now,
			})
		}
	}

	for _, todo := range todos {
		if _, linked := tasksByID[todo.ID]; linked {
			continue
		}
		conflicts = append(conflicts, Conflict{
			ID:          uuid.NewString(),
			Type:        TypeMissingInSource,
			TaskID:      todo.ID,
			Description: fmt.Sprintf("peer todo %q has no local task", todo.Content),
			Peer:        peerSnapshot(todo),
			DetectedAt:  now,
		})
	}

	d.log.Debug("detection pass complete",
		"tasks", len(tasks), "todos", len(todos), "conflicts", len(conflicts))

	return conflicts
}

func localSnapshot(t task.Task) Snapshot {
	return Snapshot{
		Status:   string(t.Status),
		Priority: string(t.Priority),
		Content:  t.Title,
	}
}

func peerSnapshot(todo peer.Todo) Snapshot {
	return Snapshot{
		Status:   string(todo.Status),
		Priority: string(todo.Priority),
		Content:  todo.Content,
	}
}
