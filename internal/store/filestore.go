package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
	"github.com/codyrobertson/critical-claude-sub003/internal/task"
)

// FileStore persists one JSON file per task under {root}/tasks/{id}.json.
// Writes are atomic: data goes to a temporary file first, then is renamed
// into place. Safe for concurrent use within a single process.
type FileStore struct {
	tasksDir string
	mu       sync.RWMutex
}

// NewFileStore creates a FileStore rooted at the given directory
// (typically ~/.critical-claude). The tasks directory is created if it
// doesn't exist.
func NewFileStore(root string) (*FileStore, error) {
	tasksDir := filepath.Join(root, "tasks")
	if err := os.MkdirAll(tasksDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create tasks directory: %w", err)
	}
	return &FileStore{tasksDir: tasksDir}, nil
}

// DefaultRoot returns the default storage root, ~/.critical-claude.
func DefaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".critical-claude"
	}
	return filepath.Join(home, ".critical-claude")
}

// GetTask returns the task with the given id.
func (fs *FileStore) GetTask(id string) (task.Task, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.readTask(id)
}

// ListTasks returns all tasks sorted by priority rank then creation time.
// Files that fail to parse are skipped rather than failing the whole
// listing; a corrupt task file should not hide every other task.
func (fs *FileStore) ListTasks() ([]task.Task, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	entries, err := os.ReadDir(fs.tasksDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks directory: %w", err)
	}

	tasks := make([]task.Task, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		t, err := fs.readTask(id)
		if err != nil {
			continue
		}
		tasks = append(tasks, t)
	}

	sortTasks(tasks)
	return tasks, nil
}

// SaveTask persists the task, creating or replacing it.
func (fs *FileStore) SaveTask(t task.Task) error {
	if t.ID == "" {
		return errors.NewSyncError("cannot save task without id", errors.ErrInvalidInput)
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.writeTask(t)
}

// UpdateTask applies a partial update and returns the stored result.
func (fs *FileStore) UpdateTask(id string, update TaskUpdate) (task.Task, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	t, err := fs.readTask(id)
	if err != nil {
		return task.Task{}, err
	}

	update.apply(&t)
	t.UpdatedAt = nowUTC()

	if err := fs.writeTask(t); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// DeleteTask removes the task file.
func (fs *FileStore) DeleteTask(id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := os.Remove(fs.taskPath(id)); err != nil {
		if os.IsNotExist(err) {
			return errors.ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task file: %w", err)
	}
	return nil
}

func (fs *FileStore) taskPath(id string) string {
	return filepath.Join(fs.tasksDir, id+".json")
}

func (fs *FileStore) readTask(id string) (task.Task, error) {
	data, err := os.ReadFile(fs.taskPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return task.Task{}, errors.ErrTaskNotFound
		}
		return task.Task{}, fmt.Errorf("failed to read task file: %w", err)
	}

	var t task.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return task.Task{}, fmt.Errorf("failed to parse task %s: %w", id, err)
	}
	return t, nil
}

func (fs *FileStore) writeTask(t task.Task) error {
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	target := fs.taskPath(t.ID)
	tmp := target + ".tmp"

	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
