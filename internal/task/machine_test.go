package task

import (
	"testing"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

func TestNewTaskHasCreationRecord(t *testing.T) {
	task := New("Fix login bug", "Users cannot log in", PriorityHigh, "alice")

	if task.Status != StatusTodo {
		t.Errorf("expected status todo, got %s", task.Status)
	}
	if len(task.StateHistory) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(task.StateHistory))
	}

	rec := task.StateHistory[0]
	if rec.FromState != nil {
		t.Errorf("creation record FromState should be nil, got %v", *rec.FromState)
	}
	if rec.ToState != StatusTodo {
		t.Errorf("creation record ToState should be todo, got %s", rec.ToState)
	}
	if rec.ChangedBy != "alice" {
		t.Errorf("expected changedBy alice, got %s", rec.ChangedBy)
	}
}

func TestTransitionAppendsHistory(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")

	next, err := Transition(task, TransitionRequest{
		To:        StatusInProgress,
		ChangedBy: "alice",
		Reason:    "starting work",
	})
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	if next.Status != StatusInProgress {
		t.Errorf("expected in-progress, got %s", next.Status)
	}
	if len(next.StateHistory) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(next.StateHistory))
	}

	last := next.LastTransition()
	if last.ToState != next.Status {
		t.Errorf("history invariant broken: last ToState %s != status %s", last.ToState, next.Status)
	}
	if last.FromState == nil || *last.FromState != StatusTodo {
		t.Errorf("expected FromState todo, got %v", last.FromState)
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")

	if _, err := Transition(task, TransitionRequest{To: StatusInProgress, ChangedBy: "alice"}); err != nil {
		t.Fatalf("Transition failed: %v", err)
	}

	if task.Status != StatusTodo {
		t.Errorf("input task mutated: status is %s", task.Status)
	}
	if len(task.StateHistory) != 1 {
		t.Errorf("input task history mutated: %d entries", len(task.StateHistory))
	}
}

func TestNoOpTransitionRejected(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")

	_, err := Transition(task, TransitionRequest{To: StatusTodo, ChangedBy: "alice"})
	if !errors.Is(err, errors.ErrNoOpTransition) {
		t.Errorf("expected ErrNoOpTransition, got %v", err)
	}
}

func TestInvalidStateRejected(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")

	_, err := Transition(task, TransitionRequest{To: Status("bogus"), ChangedBy: "alice"})
	if !errors.Is(err, errors.ErrInvalidState) {
		t.Errorf("expected ErrInvalidState, got %v", err)
	}
}

func TestBackwardTransitionAllowed(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")

	done, err := Complete(task, "alice", "")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	reopened, err := Transition(done, TransitionRequest{
		To:        StatusInProgress,
		ChangedBy: "alice",
		Reason:    "regression found",
	})
	if err != nil {
		t.Fatalf("backward transition should be legal: %v", err)
	}
	if reopened.Status != StatusInProgress {
		t.Errorf("expected in-progress, got %s", reopened.Status)
	}
	if len(reopened.StateHistory) != 3 {
		t.Errorf("expected 3 history entries, got %d", len(reopened.StateHistory))
	}
}

func TestBlockRequiresReason(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")

	if _, err := Block(task, "alice", "", nil); !errors.Is(err, errors.ErrBlockerReasonRequired) {
		t.Errorf("expected ErrBlockerReasonRequired, got %v", err)
	}

	expected := time.Now().Add(48 * time.Hour)
	blocked, err := Block(task, "alice", "waiting on API keys", &expected)
	if err != nil {
		t.Fatalf("Block failed: %v", err)
	}

	last := blocked.LastTransition()
	if last.Metadata[MetaBlockerReason] != "waiting on API keys" {
		t.Errorf("blocker reason not recorded: %v", last.Metadata)
	}
	if last.Metadata[MetaExpectedResolution] == "" {
		t.Error("expected resolution date not recorded")
	}
}

func TestHistoryInvariantAcrossOperations(t *testing.T) {
	current := New("Fix login bug", "", PriorityMedium, "alice")

	steps := []func(Task) (Task, error){
		func(tk Task) (Task, error) {
			return Transition(tk, TransitionRequest{To: StatusInProgress, ChangedBy: "alice"})
		},
		func(tk Task) (Task, error) { return Focus(tk, "alice") },
		func(tk Task) (Task, error) { return Block(tk, "alice", "dependency missing", nil) },
		func(tk Task) (Task, error) {
			return Transition(tk, TransitionRequest{To: StatusFocused, ChangedBy: "alice"})
		},
		func(tk Task) (Task, error) { return Complete(tk, "alice", "shipped") },
	}

	for i, step := range steps {
		next, err := step(current)
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
		if last := next.LastTransition(); last == nil || last.ToState != next.Status {
			t.Fatalf("step %d: history invariant broken", i)
		}
		if len(next.StateHistory) != len(current.StateHistory)+1 {
			t.Fatalf("step %d: history not appended exactly once", i)
		}
		current = next
	}
}

func TestProgressRankOrdering(t *testing.T) {
	if !(ProgressRank(StatusTodo) < ProgressRank(StatusInProgress) &&
		ProgressRank(StatusInProgress) < ProgressRank(StatusFocused) &&
		ProgressRank(StatusFocused) < ProgressRank(StatusDone)) {
		t.Error("progress ordering violated")
	}
	if ProgressRank(StatusDimmed) != ProgressRank(StatusTodo) {
		t.Error("dimmed should rank with todo")
	}
	if ProgressRank(StatusArchivedDone) != ProgressRank(StatusDone) {
		t.Error("archived_done should rank with done")
	}
	if ProgressRank(StatusBlocked) != ProgressRank(StatusInProgress) {
		t.Error("blocked should rank alongside in-progress")
	}
}

func TestPriorityRank(t *testing.T) {
	order := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("expected %s to outrank %s", order[i], order[i-1])
		}
	}
	if Priority("bogus").Rank() != 0 {
		t.Error("unknown priority should rank 0")
	}
}

func TestStatusValidation(t *testing.T) {
	for _, s := range AllStatuses() {
		if !s.Valid() {
			t.Errorf("status %s should be valid", s)
		}
	}
	if Status("in_progress").Valid() {
		t.Error("peer-style in_progress is not a local status")
	}
}

func TestCloneIsDeep(t *testing.T) {
	task := New("Fix login bug", "", PriorityMedium, "alice")
	task.Labels = []string{"auth"}

	cp := task.Clone()
	cp.Labels[0] = "ui"
	cp.StateHistory[0].Reason = "tampered"

	if task.Labels[0] != "auth" {
		t.Error("clone shares labels slice with original")
	}
	if task.StateHistory[0].Reason == "tampered" {
		t.Error("clone shares history with original")
	}
}
