package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove resolved conflicts older than the retention window",
	Long: `Cleanup prunes resolved conflicts from the registry once they have aged
past the retention window (sync.conflict_retention_days). Unresolved
conflicts are never removed regardless of age.`,
	RunE: runCleanup,
}

var cleanupRetentionDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupRetentionDays, "retention-days", 0, "Override the configured retention window")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	retention := rt.cfg.Sync.ConflictRetention()
	if cleanupRetentionDays > 0 {
		retention = time.Duration(cleanupRetentionDays) * 24 * time.Hour
	}

	removed := rt.registry.Cleanup(retention)
	fmt.Printf("removed %d resolved conflicts older than %s\n", removed, retention)
	return nil
}
