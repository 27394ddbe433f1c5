package store

import (
	"sync"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// nowUTC is indirected so tests can pin timestamps.
var nowUTC = func() time.Time { return time.Now().UTC() }

// MemStore is an in-memory Store used in tests and dry-run paths.
type MemStore struct {
	mu    sync.RWMutex
	tasks map[string]task.Task
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{tasks: make(map[string]task.Task)}
}

// NewMemStoreWith creates an in-memory store seeded with the given tasks.
func NewMemStoreWith(tasks ...task.Task) *MemStore {
	ms := NewMemStore()
	for _, t := range tasks {
		ms.tasks[t.ID] = t.Clone()
	}
	return ms
}

// GetTask returns the task with the given id.
func (ms *MemStore) GetTask(id string) (task.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	t, ok := ms.tasks[id]
	if !ok {
		return task.Task{}, errors.ErrTaskNotFound
	}
	return t.Clone(), nil
}

// ListTasks returns all tasks sorted by priority rank then creation time.
func (ms *MemStore) ListTasks() ([]task.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	tasks := make([]task.Task, 0, len(ms.tasks))
	for _, t := range ms.tasks {
		tasks = append(tasks, t.Clone())
	}
	sortTasks(tasks)
	return tasks, nil
}

// SaveTask persists the task, creating or replacing it.
func (ms *MemStore) SaveTask(t task.Task) error {
	if t.ID == "" {
		return errors.NewSyncError("cannot save task without id", errors.ErrInvalidInput)
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.tasks[t.ID] = t.Clone()
	return nil
}

// UpdateTask applies a partial update and returns the stored result.
func (ms *MemStore) UpdateTask(id string, update TaskUpdate) (task.Task, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	t, ok := ms.tasks[id]
	if !ok {
		return task.Task{}, errors.ErrTaskNotFound
	}

	update.apply(&t)
	t.UpdatedAt = nowUTC()
	ms.tasks[id] = t
	return t.Clone(), nil
}

// DeleteTask removes the task.
func (ms *MemStore) DeleteTask(id string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, ok := ms.tasks[id]; !ok {
		return errors.ErrTaskNotFound
	}
	delete(ms.tasks, id)
	return nil
}
