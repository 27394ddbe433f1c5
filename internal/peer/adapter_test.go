package peer

import (
	"context"
	"testing"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
)

// stubStrategy is a scriptable strategy for chain tests.
type stubStrategy struct {
	name     string
	writeErr error
	readErr  error
	todos    []Todo
	probeErr error

	writeCalls int
	readCalls  int
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) Write(ctx context.Context, todos []Todo) error {
	s.writeCalls++
	return s.writeErr
}

func (s *stubStrategy) Read(ctx context.Context) ([]Todo, error) {
	s.readCalls++
	return s.todos, s.readErr
}

func (s *stubStrategy) Probe(ctx context.Context) error { return s.probeErr }

func sampleTodos() []Todo {
	return []Todo{{ID: "t1", Content: "Fix bug", Status: StatusPending, Priority: PriorityMedium}}
}

func TestWriteFallsThroughToNextStrategy(t *testing.T) {
	failing := &stubStrategy{name: "direct", writeErr: errors.ErrStrategyUnavailable}
	working := &stubStrategy{name: "file"}
	unreached := &stubStrategy{name: "process"}

	a := NewAdapter(logging.NopLogger(), failing, working, unreached)

	if ok := a.Write(context.Background(), sampleTodos()); !ok {
		t.Fatal("expected write to succeed through the second strategy")
	}
	if failing.writeCalls != 1 || working.writeCalls != 1 {
		t.Errorf("unexpected call counts: direct=%d file=%d", failing.writeCalls, working.writeCalls)
	}
	if unreached.writeCalls != 0 {
		t.Error("later strategies must not run after a success")
	}
}

func TestWriteExhaustedReturnsFalseWithoutError(t *testing.T) {
	a := NewAdapter(logging.NopLogger(),
		&stubStrategy{name: "direct", writeErr: errors.ErrStrategyUnavailable},
		&stubStrategy{name: "file", writeErr: errors.New("disk full")},
	)

	if ok := a.Write(context.Background(), sampleTodos()); ok {
		t.Error("expected false when every strategy fails")
	}
}

func TestReadSkipsEmptyResults(t *testing.T) {
	a := NewAdapter(logging.NopLogger(),
		&stubStrategy{name: "direct", readErr: errors.ErrStrategyUnavailable},
		&stubStrategy{name: "file"}, // succeeds but empty
		&stubStrategy{name: "process", todos: sampleTodos()},
	)

	todos, err := a.Read(context.Background())
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(todos) != 1 || todos[0].ID != "t1" {
		t.Errorf("unexpected todos: %+v", todos)
	}
}

func TestReadExhaustedSurfacesError(t *testing.T) {
	a := NewAdapter(logging.NopLogger(),
		&stubStrategy{name: "direct", readErr: errors.ErrStrategyUnavailable},
		&stubStrategy{name: "file", readErr: errors.New("boom")},
	)

	_, err := a.Read(context.Background())
	if !errors.Is(err, errors.ErrAdapterExhausted) {
		t.Errorf("expected ErrAdapterExhausted, got %v", err)
	}
}

func TestTestIntegrationReportsAllStrategies(t *testing.T) {
	a := NewAdapter(logging.NopLogger(),
		&stubStrategy{name: "direct", probeErr: errors.ErrStrategyUnavailable},
		&stubStrategy{name: "file"},
		&stubStrategy{name: "process", probeErr: errors.New("not on PATH")},
	)

	report := a.TestIntegration(context.Background())
	if len(report) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(report))
	}
	if report[0].Available || !report[1].Available || report[2].Available {
		t.Errorf("unexpected availability: %+v", report)
	}
	if report[0].Name != "direct" || report[1].Name != "file" || report[2].Name != "process" {
		t.Errorf("report order must follow chain order: %+v", report)
	}
}
