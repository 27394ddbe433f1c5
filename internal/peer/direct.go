package peer

import (
	"context"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

// ToolFunc is a synchronous call into a peer-provided tool interface.
// It receives a handoff payload and returns the peer's response, or an
// error if the tool is unavailable or misbehaves.
type ToolFunc func(ctx context.Context, req HandoffPayload) (*HandoffPayload, error)

// DefaultDirectTimeout bounds a single direct tool call.
const DefaultDirectTimeout = 5 * time.Second

// DirectStrategy calls straight into the peer's tool interface. It is
// the preferred integration when the peer environment exposes one.
type DirectStrategy struct {
	tool    ToolFunc
	timeout time.Duration
}

// NewDirectStrategy creates a direct strategy around the given tool
// function. A nil tool means the strategy is never available, which is
// the common case outside a hook-driven session.
func NewDirectStrategy(tool ToolFunc, timeout time.Duration) *DirectStrategy {
	if timeout <= 0 {
		timeout = DefaultDirectTimeout
	}
	return &DirectStrategy{tool: tool, timeout: timeout}
}

// Name identifies the strategy.
func (s *DirectStrategy) Name() string { return "direct" }

// Write delivers todos through the tool interface.
func (s *DirectStrategy) Write(ctx context.Context, todos []Todo) error {
	if s.tool == nil {
		return errors.NewAdapterError("no tool interface configured", errors.ErrStrategyUnavailable).
			WithStrategy(s.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.tool(ctx, NewHandoff(ActionWrite, todos)); err != nil {
		return errors.NewAdapterError("tool call failed", err).WithStrategy(s.Name())
	}
	return nil
}

// Read fetches the peer todo list through the tool interface.
func (s *DirectStrategy) Read(ctx context.Context) ([]Todo, error) {
	if s.tool == nil {
		return nil, errors.NewAdapterError("no tool interface configured", errors.ErrStrategyUnavailable).
			WithStrategy(s.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.tool(ctx, NewHandoff(ActionRead, nil))
	if err != nil {
		return nil, errors.NewAdapterError("tool call failed", err).WithStrategy(s.Name())
	}
	if resp == nil || !resp.ValidTodos() {
		return nil, errors.NewAdapterError("tool returned no usable todos", errors.ErrMalformedPayload).
			WithStrategy(s.Name())
	}
	return resp.Todos, nil
}

// Probe reports whether a tool interface is configured. It performs a
// read-action call so peer state is never modified.
func (s *DirectStrategy) Probe(ctx context.Context) error {
	if s.tool == nil {
		return errors.NewAdapterError("no tool interface configured", errors.ErrStrategyUnavailable).
			WithStrategy(s.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.tool(ctx, NewHandoff(ActionRead, nil)); err != nil {
		return errors.NewAdapterError("tool probe failed", err).WithStrategy(s.Name())
	}
	return nil
}
