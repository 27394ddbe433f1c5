package hooks

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/event"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
	"github.com/codyrobertson/critical-claude-sub003/internal/store"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// Defaults for the bounded transition history.
const (
	DefaultHistoryLimit  = 100
	DefaultHistoryMaxAge = time.Hour
)

// Engine reacts to hook events by proposing and applying state-machine
// transitions for relevant tasks.
type Engine struct {
	store store.Store
	bus   *event.Bus
	log   *logging.Logger

	mu            sync.Mutex
	history       []TaskTransition
	historyLimit  int
	historyMaxAge time.Duration

	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistoryLimit caps how many recent transitions are retained.
func WithHistoryLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historyLimit = n
		}
	}
}

// WithHistoryMaxAge caps how long recent transitions are retained.
func WithHistoryMaxAge(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.historyMaxAge = d
		}
	}
}

// withClock pins the engine's clock for tests.
func withClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a hook engine over the given store. The bus may be
// nil when nothing observes transitions.
func NewEngine(s store.Store, bus *event.Bus, log *logging.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:         s,
		bus:           bus,
		log:           log.WithComponent("hooks"),
		historyLimit:  DefaultHistoryLimit,
		historyMaxAge: DefaultHistoryMaxAge,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ProcessEvent filters the task set down to tasks relevant to the event,
// proposes a transition for each, and applies accepted proposals through
// the state machine. Applied transitions are returned and recorded in
// the bounded history.
func (e *Engine) ProcessEvent(ctx context.Context, ev Event) ([]TaskTransition, error) {
	if e.bus != nil {
		e.bus.Publish(event.NewHookReceivedEvent(string(ev.Type), ev.Tool, ev.File))
	}

	tasks, err := e.store.ListTasks()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var applied []TaskTransition
	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if !e.relevant(t, ev) {
			continue
		}

		to, ok := proposeTransition(t.Status, ev)
		if !ok {
			continue
		}

		trigger := fmt.Sprintf("hook:%s", ev.Type)
		if ev.Tool != "" {
			trigger = fmt.Sprintf("hook:%s:%s", ev.Type, ev.Tool)
		}

		next, err := task.Transition(t, task.TransitionRequest{
			To:        to,
			ChangedBy: "system",
			Reason:    trigger,
		})
		if err != nil {
			e.log.WithTask(t.ID).Warn("proposed transition rejected", "to", string(to), "error", err)
			continue
		}
		if err := e.store.SaveTask(next); err != nil {
			e.log.WithTask(t.ID).Error("failed to persist transition", "error", err)
			continue
		}

		tr := TaskTransition{
			TaskID:    t.ID,
			From:      t.Status,
			To:        to,
			Trigger:   trigger,
			Timestamp: e.now(),
		}
		applied = append(applied, tr)
		e.record(tr)

		if e.bus != nil {
			e.bus.Publish(event.NewTaskTransitionEvent(t.ID, string(t.Status), string(to), trigger))
		}
		e.log.WithTask(t.ID).Info("auto transition applied",
			"from", string(t.Status), "to", string(to), "trigger", trigger)
	}

	return applied, nil
}

// relevant decides whether a task should be considered for the event.
// Archived tasks are never relevant; focused and in-progress tasks
// always are; anything else must reference the event's file or relate to
// the tool through the keyword table.
func (e *Engine) relevant(t task.Task, ev Event) bool {
	if t.Status.IsArchived() {
		return false
	}
	if t.Status == task.StatusFocused || t.Status == task.StatusInProgress {
		return true
	}

	text := strings.ToLower(t.Title + " " + t.Description)

	if ev.File != "" && matchesFile(text, ev.File) {
		return true
	}
	if ev.Tool != "" && matchesTool(text, ev.Tool) {
		return true
	}
	return false
}

// matchesFile reports whether the task text references the event's file
// by base name or parentDir/base suffix.
func matchesFile(text, file string) bool {
	base := strings.ToLower(filepath.Base(file))
	if base == "" || base == "." {
		return false
	}
	if strings.Contains(text, base) {
		return true
	}

	parent := filepath.Base(filepath.Dir(file))
	if parent != "" && parent != "." {
		return strings.Contains(text, strings.ToLower(parent+"/"+base))
	}
	return false
}

// matchesTool reports whether the task text contains any keyword
// associated with the tool.
func matchesTool(text, tool string) bool {
	for _, kw := range toolKeywords[tool] {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// proposeTransition maps (current status, event) to a target status.
// The engine never proposes completion: finishing work is a human call.
func proposeTransition(current task.Status, ev Event) (task.Status, bool) {
	switch ev.Type {
	case PostToolUse:
		if current == task.StatusTodo && contentTools[ev.Tool] {
			return task.StatusInProgress, true
		}
		if current == task.StatusInProgress && activeTools[ev.Tool] {
			return task.StatusFocused, true
		}
	case Stop:
		// Session end demotes focus: nothing is being actively watched.
		if current == task.StatusFocused {
			return task.StatusInProgress, true
		}
	}
	return "", false
}

// record appends to the bounded history, pruning by age and size.
func (e *Engine) record(tr TaskTransition) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = append(e.history, tr)
	e.prune()
}

// prune drops entries past the age window or beyond the size cap.
// Caller must hold e.mu.
func (e *Engine) prune() {
	cutoff := e.now().Add(-e.historyMaxAge)
	first := 0
	for first < len(e.history) && e.history[first].Timestamp.Before(cutoff) {
		first++
	}
	e.history = e.history[first:]

	if overflow := len(e.history) - e.historyLimit; overflow > 0 {
		e.history = e.history[overflow:]
	}
}

// History returns a copy of the recent applied transitions, oldest
// first, after pruning expired entries.
func (e *Engine) History() []TaskTransition {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.prune()
	out := make([]TaskTransition, len(e.history))
	copy(out, e.history)
	return out
}
