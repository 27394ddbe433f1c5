package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var diagnosticCmd = &cobra.Command{
	Use:   "diagnostic",
	Short: "Probe each peer integration strategy and report availability",
	RunE:  runDiagnostic,
}

func init() {
	rootCmd.AddCommand(diagnosticCmd)
}

func runDiagnostic(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Printf("data directory: %s\n", rt.dataDir)

	tasks, err := rt.store.ListTasks()
	if err != nil {
		fmt.Printf("task store: ERROR (%v)\n", err)
	} else {
		fmt.Printf("task store: ok, %d tasks\n", len(tasks))
	}

	fmt.Println("peer strategies:")
	for _, status := range rt.adapter.TestIntegration(cmd.Context()) {
		if status.Available {
			fmt.Printf("  %-8s available\n", status.Name)
		} else {
			fmt.Printf("  %-8s unavailable (%v)\n", status.Name, status.Err)
		}
	}

	unresolved := rt.registry.Unresolved()
	fmt.Printf("conflicts: %d total, %d unresolved\n", len(rt.registry.List()), len(unresolved))
	return nil
}
