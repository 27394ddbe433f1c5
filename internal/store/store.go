// Package store provides task persistence behind a narrow contract. The
// hierarchy CRUD layer above tasks lives elsewhere; the sync and hook
// engines only need per-task get/list/save/update/delete.
package store

import (
	"sort"

	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// Store is the task persistence contract consumed by the sync and hook
// engines. Implementations must serialize writes to a given task id;
// the engines assume a single interactive session per project.
type Store interface {
	// GetTask returns the task with the given id, or ErrTaskNotFound.
	GetTask(id string) (task.Task, error)

	// ListTasks returns all tasks sorted by priority rank (descending)
	// and then creation time.
	ListTasks() ([]task.Task, error)

	// SaveTask persists the task, creating or replacing it.
	SaveTask(t task.Task) error

	// UpdateTask applies a partial field update to an existing task and
	// returns the updated value. Returns ErrTaskNotFound for unknown ids.
	// Status is deliberately absent from TaskUpdate: status changes go
	// through the state machine and are persisted with SaveTask.
	UpdateTask(id string, update TaskUpdate) (task.Task, error)

	// DeleteTask removes the task. Returns ErrTaskNotFound for unknown ids.
	DeleteTask(id string) error
}

// TaskUpdate is a partial task update. Nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *task.Priority
	Labels      []string
	Assignee    *string
	StoryPoints *int
}

// apply copies the non-nil fields onto the task.
func (u TaskUpdate) apply(t *task.Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Priority != nil {
		t.Priority = *u.Priority
	}
	if u.Labels != nil {
		t.Labels = append([]string(nil), u.Labels...)
	}
	if u.Assignee != nil {
		t.Assignee = *u.Assignee
	}
	if u.StoryPoints != nil {
		t.StoryPoints = *u.StoryPoints
	}
}

// sortTasks orders tasks by priority rank descending, then creation time
// ascending. This matches the display order of the task viewer.
func sortTasks(tasks []task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Priority.Rank(), tasks[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}
