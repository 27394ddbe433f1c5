package conflict

import (
	"testing"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

func sampleConflict(id string, detectedAt time.Time) Conflict {
	return Conflict{
		ID:          id,
		Type:        TypeStatusMismatch,
		TaskID:      "task-" + id,
		Description: "disagreement",
		DetectedAt:  detectedAt,
	}
}

func TestRegistryAddGetList(t *testing.T) {
	r := NewRegistry()
	now := time.Now().UTC()

	r.Add(sampleConflict("a", now))
	r.Add(sampleConflict("b", now))

	if _, err := r.Get("a"); err != nil {
		t.Errorf("Get failed: %v", err)
	}
	if _, err := r.Get("missing"); !errors.Is(err, errors.ErrConflictNotFound) {
		t.Errorf("expected ErrConflictNotFound, got %v", err)
	}

	list := r.List()
	if len(list) != 2 || list[0].ID != "a" || list[1].ID != "b" {
		t.Errorf("expected insertion order [a b], got %+v", list)
	}
}

func TestRegistryMarkResolved(t *testing.T) {
	r := NewRegistry()
	r.Add(sampleConflict("a", time.Now().UTC()))

	res := Resolution{Strategy: StrategyCriticalClaudeWins, AppliedAt: time.Now().UTC()}
	if err := r.MarkResolved("a", res); err != nil {
		t.Fatalf("MarkResolved failed: %v", err)
	}

	c, _ := r.Get("a")
	if !c.Resolved || c.Resolution == nil || c.Resolution.Strategy != StrategyCriticalClaudeWins {
		t.Errorf("resolution not recorded: %+v", c)
	}

	if len(r.Unresolved()) != 0 {
		t.Error("resolved conflict still listed as unresolved")
	}

	if err := r.MarkResolved("missing", res); !errors.Is(err, errors.ErrConflictNotFound) {
		t.Errorf("expected ErrConflictNotFound, got %v", err)
	}
}

func TestRegistryCleanupRetention(t *testing.T) {
	r := NewRegistry()
	old := time.Now().UTC().Add(-48 * time.Hour)
	fresh := time.Now().UTC()

	r.Add(sampleConflict("old-resolved", old))
	r.Add(sampleConflict("old-unresolved", old))
	r.Add(sampleConflict("fresh-resolved", fresh))

	res := Resolution{Strategy: StrategyManualMerge}
	_ = r.MarkResolved("old-resolved", res)
	_ = r.MarkResolved("fresh-resolved", res)

	removed := r.Cleanup(24 * time.Hour)
	if removed != 1 {
		t.Errorf("expected 1 pruned, got %d", removed)
	}

	// Unresolved conflicts survive regardless of age.
	if _, err := r.Get("old-unresolved"); err != nil {
		t.Error("unresolved conflict must survive cleanup")
	}
	if _, err := r.Get("fresh-resolved"); err != nil {
		t.Error("fresh resolved conflict must survive cleanup")
	}
	if _, err := r.Get("old-resolved"); !errors.Is(err, errors.ErrConflictNotFound) {
		t.Error("old resolved conflict should be pruned")
	}
}

func TestRegistrySaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()

	r := NewRegistry()
	r.Add(sampleConflict("a", time.Now().UTC()))
	r.Add(sampleConflict("b", time.Now().UTC()))
	_ = r.MarkResolved("a", Resolution{Strategy: StrategyPriorityWins})

	if err := r.Save(dir); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}

	list := loaded.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 conflicts, got %d", len(list))
	}
	a, _ := loaded.Get("a")
	if !a.Resolved || a.Resolution.Strategy != StrategyPriorityWins {
		t.Errorf("resolution lost in round trip: %+v", a)
	}
}

func TestLoadRegistryMissingFile(t *testing.T) {
	loaded, err := LoadRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("LoadRegistry failed: %v", err)
	}
	if len(loaded.List()) != 0 {
		t.Error("expected empty registry for missing file")
	}
}

func TestRegistryAddDedupesStandingDisagreement(t *testing.T) {
	r := NewRegistry()
	first := time.Now().UTC().Add(-time.Hour)
	second := time.Now().UTC()

	c1 := Conflict{ID: "pass-1", Type: TypeStatusMismatch, TaskID: "task-x", DetectedAt: first}
	c2 := Conflict{ID: "pass-2", Type: TypeStatusMismatch, TaskID: "task-x", DetectedAt: second}

	stored1 := r.Add(c1)
	stored2 := r.Add(c2)

	if stored2.ID != stored1.ID {
		t.Errorf("re-detected disagreement should keep its identity, got %s and %s", stored1.ID, stored2.ID)
	}
	if got := len(r.Unresolved()); got != 1 {
		t.Fatalf("expected 1 unresolved entry after re-detection, got %d", got)
	}
	if got, _ := r.Get(stored1.ID); !got.DetectedAt.Equal(second) {
		t.Errorf("detection time not refreshed: %v", got.DetectedAt)
	}

	// A different field mismatch on the same task is a separate conflict.
	r.Add(Conflict{ID: "pass-3", Type: TypePriorityMismatch, TaskID: "task-x", DetectedAt: second})
	if got := len(r.Unresolved()); got != 2 {
		t.Errorf("distinct conflict types must not collapse, got %d", got)
	}
}

func TestRegistryAddAfterResolutionStartsFresh(t *testing.T) {
	r := NewRegistry()
	now := time.Now().UTC()

	stored := r.Add(Conflict{ID: "first", Type: TypeStatusMismatch, TaskID: "task-x", DetectedAt: now})
	if err := r.MarkResolved(stored.ID, Resolution{Strategy: StrategyClaudeCodeWins}); err != nil {
		t.Fatalf("MarkResolved failed: %v", err)
	}

	// The disagreement recurring after a resolution is a new conflict,
	// not an update of the closed one.
	again := r.Add(Conflict{ID: "second", Type: TypeStatusMismatch, TaskID: "task-x", DetectedAt: now})
	if again.ID != "second" {
		t.Errorf("resolved entry must not absorb a new detection, got id %s", again.ID)
	}
	if got := len(r.List()); got != 2 {
		t.Errorf("expected 2 entries, got %d", got)
	}
	if got := len(r.Unresolved()); got != 1 {
		t.Errorf("expected 1 unresolved entry, got %d", got)
	}
}
