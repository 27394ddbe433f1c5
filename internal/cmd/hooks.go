package cmd

import (
	"fmt"
	"time"

	"github.com/codyrobertson/critical-claude-sub003/internal/hooks"
	"github.com/codyrobertson/critical-claude-sub003/internal/store"
	"github.com/spf13/cobra"
)

var hooksCmd = &cobra.Command{
	Use:   "hooks",
	Short: "Work with automatic task transitions driven by tool events",
}

var hooksTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Simulate a tool event and show which transitions it would cause",
	Long: `Test runs the hook engine against a copy of the task store, so no task
is actually modified. Use it to check which tasks a given tool event
would touch before wiring the hook up for real.`,
	RunE: runHooksTest,
}

var hooksProcessCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a tool event and apply the resulting transitions",
	RunE:  runHooksProcess,
}

var (
	hookEventType string
	hookTool      string
	hookFile      string
)

func init() {
	rootCmd.AddCommand(hooksCmd)
	hooksCmd.AddCommand(hooksTestCmd)
	hooksCmd.AddCommand(hooksProcessCmd)

	for _, c := range []*cobra.Command{hooksTestCmd, hooksProcessCmd} {
		c.Flags().StringVar(&hookEventType, "type", "PostToolUse", "Hook event type: PostToolUse or Stop")
		c.Flags().StringVar(&hookTool, "tool", "", "Tool name (Write, Edit, MultiEdit, Bash)")
		c.Flags().StringVar(&hookFile, "file", "", "File path the tool touched")
	}
}

func runHooksTest(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	// Run against an in-memory copy so the real store stays untouched.
	tasks, err := rt.store.ListTasks()
	if err != nil {
		return fmt.Errorf("failed to list tasks: %w", err)
	}
	scratch := store.NewMemStoreWith(tasks...)

	engine := hooks.NewEngine(scratch, nil, rt.log,
		hooks.WithHistoryLimit(rt.cfg.Hooks.HistoryLimit),
		hooks.WithHistoryMaxAge(rt.cfg.Hooks.HistoryMaxAge()),
	)

	applied, err := engine.ProcessEvent(cmd.Context(), hookEvent())
	if err != nil {
		return err
	}
	printTransitions(applied, "would apply")
	return nil
}

func runHooksProcess(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	engine := hooks.NewEngine(rt.store, rt.bus, rt.log,
		hooks.WithHistoryLimit(rt.cfg.Hooks.HistoryLimit),
		hooks.WithHistoryMaxAge(rt.cfg.Hooks.HistoryMaxAge()),
	)

	applied, err := engine.ProcessEvent(cmd.Context(), hookEvent())
	if err != nil {
		return err
	}
	printTransitions(applied, "applied")
	return nil
}

func hookEvent() hooks.Event {
	return hooks.Event{
		Type:      hooks.EventType(hookEventType),
		Tool:      hookTool,
		File:      hookFile,
		Timestamp: time.Now(),
	}
}

func printTransitions(applied []hooks.TaskTransition, verb string) {
	if len(applied) == 0 {
		fmt.Println("no transitions")
		return
	}
	for _, tr := range applied {
		fmt.Printf("%s: task %s %s -> %s (%s)\n", verb, tr.TaskID, tr.From, tr.To, tr.Trigger)
	}
}
