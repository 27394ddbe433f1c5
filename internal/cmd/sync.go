package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/codyrobertson/critical-claude-sub003/internal/conflict"
	"github.com/codyrobertson/critical-claude-sub003/internal/peer"
	"github.com/codyrobertson/critical-claude-sub003/internal/sync"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize tasks with the Claude Code todo list",
	Long: `Sync pulls the peer's todos, detects conflicts against the local task
store, resolves them according to the configured policy, and pushes the
resulting state back to the peer.

Without --execute this is a dry run: conflicts and their computed
resolutions are reported but nothing changes on either side.`,
	RunE: runSync,
}

var (
	syncExecute   bool
	syncDirection string
	syncWatch     bool
)

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncExecute, "execute", false, "Apply resolutions instead of reporting them")
	syncCmd.Flags().StringVar(&syncDirection, "direction", "", "Sync direction: both, push, or pull (default from config)")
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "Keep running and re-sync when peer todo files change")
}

func runSync(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	direction := syncDirection
	if direction == "" {
		direction = rt.cfg.Sync.Direction
	}
	opts := sync.Options{
		Execute:   syncExecute,
		Direction: sync.Direction(direction),
	}

	engine := sync.NewEngine(
		rt.store,
		rt.adapter,
		conflict.NewResolver(buildPolicy(rt.cfg), rt.log),
		rt.registry,
		rt.bus,
		rt.log,
	)

	runOnce := func(ctx context.Context) error {
		report, err := engine.Run(ctx, opts)
		if err != nil {
			return err
		}
		printReport(report)
		return nil
	}

	if !syncWatch {
		return runOnce(cmd.Context())
	}

	return watchAndSync(cmd.Context(), rt, runOnce)
}

// watchAndSync runs one pass immediately, then re-runs on every
// debounced change to the peer's handoff files until interrupted.
func watchAndSync(ctx context.Context, rt *runtime, runOnce func(context.Context) error) error {
	if err := runOnce(ctx); err != nil {
		fmt.Printf("initial sync failed: %v\n", err)
	}

	watchFiles := rt.cfg.Adapter.HandoffReadPaths
	if len(watchFiles) == 0 {
		watchFiles = peer.DefaultReadPaths()
	}

	changes := make(chan string, 1)
	watcher, err := peer.NewWatcher(watchFiles, func(path string) {
		select {
		case changes <- path:
		default: // a pass is already pending
		}
	}, rt.log)
	if err != nil {
		return fmt.Errorf("failed to watch handoff files: %w", err)
	}
	watcher.Start()
	defer watcher.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	fmt.Println("watching for peer changes, Ctrl-C to stop")
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-sigCh:
			fmt.Println("stopping watch")
			return nil
		case path := <-changes:
			fmt.Printf("change detected: %s\n", path)
			if err := runOnce(ctx); err != nil {
				fmt.Printf("sync failed: %v\n", err)
			}
		}
	}
}

func printReport(report sync.Report) {
	mode := "dry run"
	if report.Executed {
		mode = "executed"
	}
	fmt.Printf("sync complete (%s): %d conflicts, %d auto-resolved, %d need review\n",
		mode, len(report.Conflicts), report.AutoResolved, len(report.ManualReview))

	if report.Executed {
		fmt.Printf("  applied locally: %d, pushed to peer: %d", report.AppliedLocal, report.PushedTodos)
		if !report.PushOK {
			fmt.Print(" (push failed, all strategies exhausted)")
		}
		fmt.Println()
	}

	if len(report.ManualReview) > 0 {
		fmt.Println("needs attention:")
		for _, c := range report.ManualReview {
			fmt.Printf("  [%s] %s (%s)\n", c.Type, c.Description, c.ID)
		}
	}
	for _, err := range report.Errors {
		fmt.Printf("  error: %v\n", err)
	}
}
