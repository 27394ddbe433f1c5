// Package sync orchestrates a full synchronization pass between the
// local task store and the peer todo list: pull, detect, resolve, apply,
// push. The engine composes the adapter, detector, resolver and registry
// but owns no policy of its own beyond the sync direction.
package sync

import (
	"context"
	"fmt"

	"github.com/codyrobertson/critical-claude-sub003/internal/codec"
	"github.com/codyrobertson/critical-claude-sub003/internal/conflict"
	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
	"github.com/codyrobertson/critical-claude-sub003/internal/event"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/store"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// Direction selects which sides a sync pass may change.
type Direction string

const (
	// DirectionBoth pulls peer changes in and pushes local state out.
	DirectionBoth Direction = "both"

	// DirectionPush only writes local state to the peer.
	DirectionPush Direction = "push"

	// DirectionPull only applies peer state locally.
	DirectionPull Direction = "pull"
)

// Valid returns true for known directions.
func (d Direction) Valid() bool {
	switch d {
	case DirectionBoth, DirectionPush, DirectionPull:
		return true
	}
	return false
}

// Options control a single sync pass.
type Options struct {
	// Execute applies resolutions. False is a dry run: conflicts are
	// detected and resolutions computed, but nothing changes on either
	// side and the registry records the conflicts as unresolved.
	Execute bool

	// Direction limits which side may be modified. Defaults to both.
	Direction Direction
}

// Report summarizes a sync pass.
type Report struct {
	// Conflicts holds every disagreement the detection pass found.
	Conflicts []conflict.Conflict

	// AutoResolved counts conflicts with a computed non-manual
	// resolution. In a dry run these are computed but not applied.
	AutoResolved int

	// ManualReview holds conflicts flagged for a human. They stay
	// unresolved in the registry.
	ManualReview []conflict.Conflict

	// AppliedLocal counts local store changes (transitions, priority
	// updates, adopted tasks).
	AppliedLocal int

	// PushedTodos is the number of todos handed to the peer adapter.
	PushedTodos int

	// PushOK is false when every adapter write strategy failed.
	PushOK bool

	// Executed mirrors Options.Execute.
	Executed bool

	// Errors collects per-conflict application failures. A pass with
	// errors still returns the report; the caller decides severity.
	Errors []error
}

// Engine runs sync passes.
type Engine struct {
	store    store.Store
	adapter  *peer.Adapter
	detector *conflict.Detector
	resolver *conflict.Resolver
	registry *conflict.Registry
	bus      *event.Bus
	log      *logging.Logger
}

// NewEngine assembles a sync engine. The bus may be nil.
func NewEngine(
	s store.Store,
	adapter *peer.Adapter,
	resolver *conflict.Resolver,
	registry *conflict.Registry,
	bus *event.Bus,
	log *logging.Logger,
) *Engine {
	return &Engine{
		store:    s,
		adapter:  adapter,
		detector: conflict.NewDetector(log),
		resolver: resolver,
		registry: registry,
		bus:      bus,
		log:      log.WithComponent("sync"),
	}
}

// Run executes one sync pass. Manual-review conflicts are not errors:
// the pass succeeds with them listed in the report. Run returns an error
// only when the pass could not proceed at all (store failure, or peer
// read exhaustion on a direction that needs the peer's state).
func (e *Engine) Run(ctx context.Context, opts Options) (Report, error) {
	if opts.Direction == "" {
		opts.Direction = DirectionBoth
	}
	if !opts.Direction.Valid() {
		return Report{}, errors.NewSyncError(
			fmt.Sprintf("unknown sync direction %q", opts.Direction), errors.ErrInvalidInput)
	}

	report := Report{Executed: opts.Execute, PushOK: true}

	tasks, err := e.store.ListTasks()
	if err != nil {
		return report, fmt.Errorf("list tasks: %w", err)
	}

	todos, err := e.adapter.Read(ctx)
	if err != nil {
		if opts.Direction != DirectionPush {
			return report, fmt.Errorf("read peer todos: %w", err)
		}
		// A push-only pass can proceed blind: every local task simply
		// counts as missing on the peer side.
		e.log.Warn("peer read failed, pushing without peer state", "error", err)
		todos = nil
	}

	// The registry returns the canonical entry for a re-detected standing
	// disagreement, so the report and resolution loop work on stable ids.
	for _, c := range e.detector.Detect(tasks, todos) {
		report.Conflicts = append(report.Conflicts, e.registry.Add(c))
	}
	if len(report.Conflicts) > 0 && e.bus != nil {
		e.bus.Publish(event.NewConflictDetectedEvent(len(report.Conflicts)))
	}

	taskByID := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		taskByID[t.ID] = t
	}
	todoByID := make(map[string]peer.Todo, len(todos))
	for _, td := range todos {
		todoByID[td.ID] = td
	}

	for _, c := range report.Conflicts {
		var local *task.Task
		if t, ok := taskByID[c.TaskID]; ok {
			local = &t
		}
		var remote *peer.Todo
		if td, ok := todoByID[c.TaskID]; ok {
			remote = &td
		}

		res, err := e.resolver.Resolve(c, local, remote)
		if err != nil {
			e.log.Warn("resolution failed", "conflict", c.ID, "type", string(c.Type), "error", err)
			report.Errors = append(report.Errors, err)
			continue
		}

		if res.ManualReview() {
			report.ManualReview = append(report.ManualReview, c)
			if e.bus != nil {
				e.bus.Publish(event.NewConflictResolvedEvent(c.ID, c.TaskID, string(res.Strategy), true))
			}
			continue
		}

		report.AutoResolved++
		if !opts.Execute {
			continue
		}

		reconciled, err := e.apply(c, res, opts.Direction, &report)
		if err != nil {
			e.log.Warn("failed to apply resolution", "conflict", c.ID, "error", err)
			report.Errors = append(report.Errors, err)
			continue
		}
		if !reconciled {
			// The direction blocked the winning side from being applied;
			// the conflict stays open for a pass that can act on it.
			continue
		}
		if err := e.registry.MarkResolved(c.ID, res); err != nil {
			report.Errors = append(report.Errors, err)
		}
		if e.bus != nil {
			e.bus.Publish(event.NewConflictResolvedEvent(c.ID, c.TaskID, string(res.Strategy), false))
		}
	}

	if opts.Execute && opts.Direction != DirectionPull {
		pushed, ok := e.push(ctx)
		report.PushedTodos = pushed
		report.PushOK = ok
	}

	if e.bus != nil {
		e.bus.Publish(event.NewSyncCompletedEvent(
			len(report.Conflicts), report.AutoResolved, len(report.ManualReview), opts.Execute))
	}
	e.log.Info("sync pass finished",
		"conflicts", len(report.Conflicts),
		"auto_resolved", report.AutoResolved,
		"manual_review", len(report.ManualReview),
		"applied_local", report.AppliedLocal,
		"pushed", report.PushedTodos,
		"executed", opts.Execute,
	)
	return report, nil
}

// apply writes the winning side of a resolution to the local store,
// honoring the direction. Peer-side changes are not written here: the
// trailing push covers them by encoding current local state. The bool
// reports whether the conflict is actually reconciled by this pass —
// false when the direction blocks the winning side, in which case the
// caller must leave the conflict open.
func (e *Engine) apply(c conflict.Conflict, res conflict.Resolution, dir Direction, report *Report) (bool, error) {
	pullAllowed := dir != DirectionPush
	pushAllowed := dir != DirectionPull

	if res.Data.Status != nil && res.Winner == conflict.SidePeer {
		if !pullAllowed {
			return false, nil
		}
		current, err := e.store.GetTask(c.TaskID)
		if err != nil {
			return false, err
		}
		next, err := task.Transition(current, task.TransitionRequest{
			To:        *res.Data.Status,
			ChangedBy: "sync:claude-code",
			Reason:    string(res.Strategy),
		})
		if err != nil {
			return false, err
		}
		if err := e.store.SaveTask(next); err != nil {
			return false, err
		}
		report.AppliedLocal++
		return true, nil
	}

	if res.Data.Priority != nil && res.Winner == conflict.SidePeer {
		if !pullAllowed {
			return false, nil
		}
		if _, err := e.store.UpdateTask(c.TaskID, store.TaskUpdate{Priority: res.Data.Priority}); err != nil {
			return false, err
		}
		report.AppliedLocal++
		return true, nil
	}

	if res.Data.Task != nil {
		if !pullAllowed {
			return false, nil
		}
		if err := e.store.SaveTask(*res.Data.Task); err != nil {
			return false, err
		}
		report.AppliedLocal++
		return true, nil
	}

	// Local wins and missing_in_target both reconcile through the push
	// phase; nothing to change locally.
	return pushAllowed, nil
}

// push encodes the current non-archived local tasks and hands them to
// the adapter. Returns the count pushed and whether any strategy took
// the write.
func (e *Engine) push(ctx context.Context) (int, bool) {
	tasks, err := e.store.ListTasks()
	if err != nil {
		e.log.Error("failed to list tasks for push", "error", err)
		return 0, false
	}

	var todos []peer.Todo
	for _, t := range tasks {
		if t.Status.IsArchived() {
			continue
		}
		todos = append(todos, codec.ToTodo(t))
	}
	if len(todos) == 0 {
		return 0, true
	}

	ok := e.adapter.Write(ctx, todos)
	if !ok {
		e.log.Error("push exhausted all write strategies", "todos", len(todos))
	}
	return len(todos), ok
}
