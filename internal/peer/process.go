package peer

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/errors"
)

// DefaultProcessTimeout is the hard wall-clock limit for one subprocess
// exchange. A stuck peer process is killed, never leaked.
const DefaultProcessTimeout = 12 * time.Second

// ProcessStrategy spawns the peer as a subprocess, writes the request
// payload to its stdin, and parses the response from its stdout. This is
// the last resort in the chain.
type ProcessStrategy struct {
	command []string
	timeout time.Duration
}

// NewProcessStrategy creates a process strategy for the given command
// line (argv form). An empty command means the strategy is unavailable.
func NewProcessStrategy(command []string, timeout time.Duration) *ProcessStrategy {
	if timeout <= 0 {
		timeout = DefaultProcessTimeout
	}
	return &ProcessStrategy{command: command, timeout: timeout}
}

// Name identifies the strategy.
func (s *ProcessStrategy) Name() string { return "process" }

// Write delivers todos by piping a write-action payload through the peer
// process.
func (s *ProcessStrategy) Write(ctx context.Context, todos []Todo) error {
	_, err := s.exchange(ctx, NewHandoff(ActionWrite, todos))
	return err
}

// Read fetches todos by piping a read-action payload through the peer
// process and parsing its stdout.
func (s *ProcessStrategy) Read(ctx context.Context) ([]Todo, error) {
	out, err := s.exchange(ctx, NewHandoff(ActionRead, nil))
	if err != nil {
		return nil, err
	}

	todos, ok := parseTodoFile(out)
	if !ok {
		return nil, errors.NewAdapterError("peer process returned no usable todos", errors.ErrMalformedPayload).
			WithStrategy(s.Name())
	}
	return todos, nil
}

// Probe checks that the configured command exists on PATH without
// spawning it.
func (s *ProcessStrategy) Probe(ctx context.Context) error {
	if len(s.command) == 0 {
		return errors.NewAdapterError("no peer command configured", errors.ErrStrategyUnavailable).
			WithStrategy(s.Name())
	}
	if _, err := exec.LookPath(s.command[0]); err != nil {
		return errors.NewAdapterError("peer command not found", err).WithStrategy(s.Name())
	}
	return nil
}

// exchange runs one request/response cycle against the peer process with
// the hard timeout applied. On expiry the process is force-killed by the
// context; WaitDelay guards against a child that holds stdout open.
func (s *ProcessStrategy) exchange(ctx context.Context, payload HandoffPayload) ([]byte, error) {
	if len(s.command) == 0 {
		return nil, errors.NewAdapterError("no peer command configured", errors.ErrStrategyUnavailable).
			WithStrategy(s.Name())
	}

	input, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.NewAdapterError("marshal request payload", err).WithStrategy(s.Name())
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command[0], s.command[1:]...)
	cmd.Stdin = bytes.NewReader(input)
	cmd.WaitDelay = 2 * time.Second

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.NewAdapterError("peer process timed out and was killed", errors.ErrTimeout).
				WithStrategy(s.Name())
		}
		return nil, errors.NewAdapterError("peer process failed", err).WithStrategy(s.Name())
	}

	return stdout.Bytes(), nil
}
