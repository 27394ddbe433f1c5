package conflict

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

const registryFileName = "conflicts.json"

// Registry records detected conflicts across sync passes. Conflicts are
// mutated in place as they are resolved and pruned only by an explicit
// Cleanup call after a retention window, never garbage collected
// mid-session.
type Registry struct {
	mu        sync.RWMutex
	conflicts map[string]*Conflict
	order     []string // insertion order for stable listing
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{conflicts: make(map[string]*Conflict)}
}

// Add records a conflict and returns the stored entry. A standing
// disagreement re-detected on a later pass does not accumulate: an
// unresolved entry with the same type and task keeps its identity and
// has its snapshots and detection time refreshed instead.
func (r *Registry) Add(c Conflict) Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.order {
		existing := r.conflicts[id]
		if !existing.Resolved && existing.Type == c.Type && existing.TaskID == c.TaskID {
			existing.Description = c.Description
			existing.Local = c.Local
			existing.Peer = c.Peer
			existing.DetectedAt = c.DetectedAt
			return *existing
		}
	}

	if _, exists := r.conflicts[c.ID]; !exists {
		r.order = append(r.order, c.ID)
	}
	cp := c
	r.conflicts[c.ID] = &cp
	return c
}

// Get returns the conflict with the given id.
func (r *Registry) Get(id string) (Conflict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.conflicts[id]
	if !ok {
		return Conflict{}, errors.ErrConflictNotFound
	}
	return *c, nil
}

// List returns all recorded conflicts in insertion order.
func (r *Registry) List() []Conflict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Conflict, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.conflicts[id])
	}
	return out
}

// Unresolved returns the conflicts still awaiting a resolution.
func (r *Registry) Unresolved() []Conflict {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Conflict
	for _, id := range r.order {
		if c := r.conflicts[id]; !c.Resolved {
			out = append(out, *c)
		}
	}
	return out
}

// MarkResolved records the resolution on the conflict.
func (r *Registry) MarkResolved(id string, res Resolution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.conflicts[id]
	if !ok {
		return errors.ErrConflictNotFound
	}
	c.Resolved = true
	c.Resolution = &res
	return nil
}

// Cleanup prunes resolved conflicts detected before the retention window
// and returns how many were removed. Unresolved conflicts are kept
// regardless of age so they stay visible until someone deals with them.
func (r *Registry) Cleanup(retention time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-retention)
	removed := 0
	kept := r.order[:0]

	for _, id := range r.order {
		c := r.conflicts[id]
		if c.Resolved && c.DetectedAt.Before(cutoff) {
			delete(r.conflicts, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed
}

// Save writes the registry to {dir}/conflicts.json atomically so the
// cleanup command can operate across sessions.
func (r *Registry) Save(dir string) error {
	r.mu.RLock()
	list := make([]Conflict, 0, len(r.order))
	for _, id := range r.order {
		list = append(list, *r.conflicts[id])
	}
	r.mu.RUnlock()

	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conflict registry: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	target := filepath.Join(dir, registryFileName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// LoadRegistry restores a registry from {dir}/conflicts.json. A missing
// file yields an empty registry.
func LoadRegistry(dir string) (*Registry, error) {
	data, err := os.ReadFile(filepath.Join(dir, registryFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return NewRegistry(), nil
		}
		return nil, fmt.Errorf("read registry file: %w", err)
	}

	var list []Conflict
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal conflict registry: %w", err)
	}

	r := NewRegistry()
	for _, c := range list {
		r.Add(c)
	}
	return r, nil
}
