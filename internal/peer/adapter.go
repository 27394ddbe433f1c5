package peer

import (
	"context"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
	"github.com/codyrobertson/critical-claude-sub003/internal/logging"
)

// Strategy is one integration method for exchanging todos with the peer.
// Strategies report failure through errors; the adapter treats a thrown
// error and an empty result identically and falls through to the next
// strategy in the chain.
type Strategy interface {
	// Name identifies the strategy in logs and diagnostics.
	Name() string

	// Write delivers todos to the peer.
	Write(ctx context.Context, todos []Todo) error

	// Read fetches the peer's current todo list.
	Read(ctx context.Context) ([]Todo, error)

	// Probe checks availability without side effects on peer state.
	Probe(ctx context.Context) error
}

// Adapter walks an ordered chain of strategies: direct tool call, file
// handoff, subprocess. Each strategy is a degrading fallback of the
// previous; strategies are tried sequentially, never concurrently, to
// avoid duplicate side effects such as double-writing a handoff file.
type Adapter struct {
	strategies []Strategy
	log        *logging.Logger
}

// NewAdapter creates an adapter over the given strategy chain. Order
// matters: strategies are tried first to last.
func NewAdapter(log *logging.Logger, strategies ...Strategy) *Adapter {
	return &Adapter{
		strategies: strategies,
		log:        log.WithComponent("adapter"),
	}
}

// Write delivers todos through the first strategy that succeeds and
// reports whether any did. Per-strategy failures are logged and
// swallowed; exhaustion is reported as false, not an error, because the
// caller's only recourse is to try again later.
func (a *Adapter) Write(ctx context.Context, todos []Todo) bool {
	for _, s := range a.strategies {
		if err := s.Write(ctx, todos); err != nil {
			a.log.WithStrategy(s.Name()).Warn("write failed, trying next strategy", "error", err)
			continue
		}
		a.log.WithStrategy(s.Name()).Debug("write succeeded", "todos", len(todos))
		return true
	}

	a.log.Warn("todo write exhausted all strategies", "todos", len(todos))
	return false
}

// Read fetches the peer's todo list through the first strategy that
// returns a non-empty result. If every strategy fails or comes back
// empty, ErrAdapterExhausted is surfaced.
func (a *Adapter) Read(ctx context.Context) ([]Todo, error) {
	for _, s := range a.strategies {
		todos, err := s.Read(ctx)
		if err != nil {
			a.log.WithStrategy(s.Name()).Warn("read failed, trying next strategy", "error", err)
			continue
		}
		if len(todos) == 0 {
			a.log.WithStrategy(s.Name()).Debug("read returned no todos")
			continue
		}
		a.log.WithStrategy(s.Name()).Debug("read succeeded", "todos", len(todos))
		return todos, nil
	}

	return nil, errors.NewAdapterError("todo read exhausted all strategies", errors.ErrAdapterExhausted)
}

// StrategyStatus is one entry in a TestIntegration report.
type StrategyStatus struct {
	Name      string
	Available bool
	Err       error
}

// TestIntegration probes every strategy non-destructively and reports
// which are available. Operators use this to configure expectations; the
// hot path never calls it.
func (a *Adapter) TestIntegration(ctx context.Context) []StrategyStatus {
	report := make([]StrategyStatus, 0, len(a.strategies))
	for _, s := range a.strategies {
		err := s.Probe(ctx)
		report = append(report, StrategyStatus{
			Name:      s.Name(),
			Available: err == nil,
			Err:       err,
		})
	}
	return report
}
