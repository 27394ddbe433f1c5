package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

// HandoffFileName is the well-known handoff file name.
const HandoffFileName = "critical-claude-handoff.json"

// DefaultWritePaths returns the shared temp-directory location plus the
// user-scoped fallback the peer is expected to poll.
func DefaultWritePaths() []string {
	paths := []string{filepath.Join(os.TempDir(), HandoffFileName)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".critical-claude", HandoffFileName))
	}
	return paths
}

// DefaultReadPaths returns the write locations plus the peer-native todo
// file, scanned in order on read.
func DefaultReadPaths() []string {
	paths := DefaultWritePaths()
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".claude", "todos.json"))
	}
	return paths
}

// FileStrategy exchanges todos through JSON handoff files at well-known
// locations. Writes mirror the payload to every write path; reads scan
// the candidate list and return the first file containing a valid todo
// list.
type FileStrategy struct {
	writePaths []string
	readPaths  []string
}

// NewFileStrategy creates a file strategy over the given candidate paths.
// Empty slices fall back to the defaults.
func NewFileStrategy(writePaths, readPaths []string) *FileStrategy {
	if len(writePaths) == 0 {
		writePaths = DefaultWritePaths()
	}
	if len(readPaths) == 0 {
		readPaths = DefaultReadPaths()
	}
	return &FileStrategy{writePaths: writePaths, readPaths: readPaths}
}

// Name identifies the strategy.
func (s *FileStrategy) Name() string { return "file" }

// Write mirrors the payload to every write path. The write succeeds if
// at least one location accepted it; per-path I/O errors are collected
// and only surfaced when every path failed.
func (s *FileStrategy) Write(ctx context.Context, todos []Todo) error {
	data, err := json.MarshalIndent(NewHandoff(ActionWrite, todos), "", "  ")
	if err != nil {
		return errors.NewAdapterError("marshal handoff payload", err).WithStrategy(s.Name())
	}

	var lastErr error
	wrote := 0
	for _, path := range s.writePaths {
		if err := ctx.Err(); err != nil {
			return errors.NewAdapterError("write canceled", err).WithStrategy(s.Name())
		}
		if err := writeFileAtomic(path, data); err != nil {
			lastErr = err
			continue
		}
		wrote++
	}

	if wrote == 0 {
		return errors.NewAdapterError("no handoff location writable", lastErr).WithStrategy(s.Name())
	}
	return nil
}

// Read scans the candidate files in order and returns the todos from the
// first one containing a valid list. Unreadable or malformed files are
// skipped.
func (s *FileStrategy) Read(ctx context.Context) ([]Todo, error) {
	for _, path := range s.readPaths {
		if err := ctx.Err(); err != nil {
			return nil, errors.NewAdapterError("read canceled", err).WithStrategy(s.Name())
		}

		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if todos, ok := parseTodoFile(data); ok {
			return todos, nil
		}
	}

	return nil, errors.NewAdapterError("no candidate file held a valid todo list", errors.ErrStrategyUnavailable).
		WithStrategy(s.Name())
}

// Probe checks that at least one write path's directory is writable and
// reports whether any read candidate currently exists. Nothing is
// modified.
func (s *FileStrategy) Probe(ctx context.Context) error {
	for _, path := range s.writePaths {
		dir := filepath.Dir(path)
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return nil
		}
	}
	return errors.NewAdapterError("no handoff directory available", errors.ErrStrategyUnavailable).
		WithStrategy(s.Name())
}

// parseTodoFile accepts either a full handoff payload or a bare todo
// array (the peer-native file format).
func parseTodoFile(data []byte) ([]Todo, bool) {
	var payload HandoffPayload
	if err := json.Unmarshal(data, &payload); err == nil && payload.ValidTodos() {
		return payload.Todos, true
	}

	var todos []Todo
	if err := json.Unmarshal(data, &todos); err == nil {
		bare := HandoffPayload{Todos: todos}
		if bare.ValidTodos() {
			return todos, true
		}
	}
	return nil, false
}

// writeFileAtomic writes data via a temp file and rename so a polling
// reader never observes a partial payload.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create handoff directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
