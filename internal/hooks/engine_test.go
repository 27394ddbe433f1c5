package hooks

import (
	"context"
	"testing"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/event"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
	"github.com/codyrobertson/critical-claude-sub003/internal/store"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

func newEngine(t *testing.T, tasks ...task.Task) (*Engine, *store.MemStore) {
	t.Helper()
	ms := store.NewMemStoreWith(tasks...)
	return NewEngine(ms, nil, logging.NopLogger()), ms
}

func setStatus(t *testing.T, tk task.Task, status task.Status) task.Task {
	t.Helper()
	moved, err := task.Transition(tk, task.TransitionRequest{To: status, ChangedBy: "test"})
	if err != nil {
		t.Fatalf("setup transition failed: %v", err)
	}
	return moved
}

func TestWriteOnRelevantTodoStartsWork(t *testing.T) {
	tk := task.New("Fix auth/login.ts bug", "", task.PriorityHigh, "alice")
	engine, ms := newEngine(t, tk)

	applied, err := engine.ProcessEvent(context.Background(), Event{
		Type:      PostToolUse,
		Tool:      "Write",
		File:      "auth/login.ts",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	if len(applied) != 1 {
		t.Fatalf("expected 1 transition, got %d", len(applied))
	}
	if applied[0].From != task.StatusTodo || applied[0].To != task.StatusInProgress {
		t.Errorf("expected todo->in-progress, got %s->%s", applied[0].From, applied[0].To)
	}

	stored, _ := ms.GetTask(tk.ID)
	if stored.Status != task.StatusInProgress {
		t.Errorf("transition not persisted: %s", stored.Status)
	}
	if last := stored.LastTransition(); last.ChangedBy != "system" {
		t.Errorf("expected system actor, got %s", last.ChangedBy)
	}
}

func TestEditOnInProgressEscalatesToFocused(t *testing.T) {
	tk := setStatus(t, task.New("Fix auth/login.ts bug", "", task.PriorityHigh, "alice"), task.StatusInProgress)
	engine, ms := newEngine(t, tk)

	applied, err := engine.ProcessEvent(context.Background(), Event{
		Type:      PostToolUse,
		Tool:      "Edit",
		File:      "auth/login.ts",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	if len(applied) != 1 || applied[0].To != task.StatusFocused {
		t.Fatalf("expected in-progress->focused, got %+v", applied)
	}

	stored, _ := ms.GetTask(tk.ID)
	if stored.Status != task.StatusFocused {
		t.Errorf("transition not persisted: %s", stored.Status)
	}
}

func TestStopDemotesFocusedButIgnoresDone(t *testing.T) {
	focused := setStatus(t, task.New("Deep work", "", task.PriorityMedium, "alice"), task.StatusFocused)
	done := setStatus(t, task.New("Shipped", "", task.PriorityMedium, "alice"), task.StatusDone)
	engine, ms := newEngine(t, focused, done)

	applied, err := engine.ProcessEvent(context.Background(), Event{Type: Stop, Timestamp: time.Now()})
	if err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	if len(applied) != 1 {
		t.Fatalf("expected exactly 1 transition, got %d", len(applied))
	}
	if applied[0].TaskID != focused.ID || applied[0].To != task.StatusInProgress {
		t.Errorf("expected focused->in-progress, got %+v", applied[0])
	}

	storedDone, _ := ms.GetTask(done.ID)
	if storedDone.Status != task.StatusDone {
		t.Errorf("done task must not move, got %s", storedDone.Status)
	}
}

func TestIrrelevantTaskUntouched(t *testing.T) {
	// Title shares no keywords with Bash and no file reference.
	tk := task.New("Design color palette", "", task.PriorityLow, "alice")
	engine, ms := newEngine(t, tk)

	applied, err := engine.ProcessEvent(context.Background(), Event{
		Type:      PostToolUse,
		Tool:      "Bash",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("expected no transitions, got %+v", applied)
	}

	stored, _ := ms.GetTask(tk.ID)
	if stored.Status != task.StatusTodo {
		t.Errorf("task should be untouched, got %s", stored.Status)
	}
}

func TestToolKeywordRelevance(t *testing.T) {
	// "build" keyword relates the task to Bash; todo + Bash proposes
	// nothing (Bash is not a content tool) so status must not change.
	todoBuild := task.New("Build the release pipeline", "", task.PriorityMedium, "alice")
	engine, ms := newEngine(t, todoBuild)

	applied, err := engine.ProcessEvent(context.Background(), Event{
		Type:      PostToolUse,
		Tool:      "Bash",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("Bash on todo must not start work, got %+v", applied)
	}

	stored, _ := ms.GetTask(todoBuild.ID)
	if stored.Status != task.StatusTodo {
		t.Errorf("unexpected transition to %s", stored.Status)
	}
}

func TestArchivedTasksNeverRelevant(t *testing.T) {
	tk := setStatus(t, task.New("Old write task", "", task.PriorityMedium, "alice"), task.StatusArchivedDone)
	engine, _ := newEngine(t, tk)

	applied, err := engine.ProcessEvent(context.Background(), Event{
		Type:      PostToolUse,
		Tool:      "Write",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("archived tasks must be skipped, got %+v", applied)
	}
}

func TestFileSuffixMatching(t *testing.T) {
	cases := []struct {
		text string
		file string
		want bool
	}{
		{"fix auth/login.ts bug", "src/auth/login.ts", true},
		{"fix login.ts bug", "deep/path/login.ts", true},
		{"fix signup flow", "auth/login.ts", false},
		{"mentions auth somewhere", "auth/login.ts", false},
	}
	for _, tc := range cases {
		if got := matchesFile(tc.text, tc.file); got != tc.want {
			t.Errorf("matchesFile(%q, %q): expected %v, got %v", tc.text, tc.file, tc.want, got)
		}
	}
}

func TestHistoryBounds(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	ms := store.NewMemStore()
	engine := NewEngine(ms, nil, logging.NopLogger(),
		WithHistoryLimit(3),
		WithHistoryMaxAge(10*time.Minute),
		withClock(clock),
	)

	for i := 0; i < 5; i++ {
		engine.record(TaskTransition{TaskID: "t", Timestamp: now})
	}
	if got := len(engine.History()); got != 3 {
		t.Errorf("expected history capped at 3, got %d", got)
	}

	// Age out everything.
	now = now.Add(time.Hour)
	if got := len(engine.History()); got != 0 {
		t.Errorf("expected history aged out, got %d", got)
	}
}

func TestBusReceivesTransitionEvents(t *testing.T) {
	tk := task.New("Fix auth/login.ts bug", "", task.PriorityHigh, "alice")
	ms := store.NewMemStoreWith(tk)
	bus := event.NewBus()

	var transitions []event.TaskTransitionEvent
	bus.Subscribe("task.transition", func(e event.Event) {
		transitions = append(transitions, e.(event.TaskTransitionEvent))
	})

	engine := NewEngine(ms, bus, logging.NopLogger())
	if _, err := engine.ProcessEvent(context.Background(), Event{
		Type: PostToolUse, Tool: "Write", File: "auth/login.ts", Timestamp: time.Now(),
	}); err != nil {
		t.Fatalf("ProcessEvent failed: %v", err)
	}

	if len(transitions) != 1 {
		t.Fatalf("expected 1 bus event, got %d", len(transitions))
	}
	if transitions[0].Trigger != "hook:PostToolUse:Write" {
		t.Errorf("trigger tag wrong: %s", transitions[0].Trigger)
	}
}
