package cmd

import (
	"fmt"
	"strings"

	"github.com/codyrobertson/critical-claude-sub003/internal/task"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage local tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, highest priority first",
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskFocusCmd = &cobra.Command{
	Use:   "focus <id>",
	Short: "Mark a task as the one being actively worked on",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskFocus,
}

var taskBlockCmd = &cobra.Command{
	Use:   "block <id>",
	Short: "Mark a task as blocked (requires --reason)",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskBlock,
}

var taskDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDone,
}

var (
	taskAddPriority    string
	taskAddDescription string
	taskBlockReason    string
	taskDoneNotes      string
	taskListAll        bool
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskFocusCmd, taskBlockCmd, taskDoneCmd)

	taskAddCmd.Flags().StringVarP(&taskAddPriority, "priority", "p", "medium", "Priority: critical, high, medium, low")
	taskAddCmd.Flags().StringVarP(&taskAddDescription, "description", "d", "", "Task description")
	taskBlockCmd.Flags().StringVar(&taskBlockReason, "reason", "", "Why the task is blocked (required)")
	taskDoneCmd.Flags().StringVar(&taskDoneNotes, "notes", "", "Resolution notes")
	taskListCmd.Flags().BoolVarP(&taskListAll, "all", "a", false, "Include archived tasks")
}

func runTaskList(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	tasks, err := rt.store.ListTasks()
	if err != nil {
		return err
	}

	shown := 0
	for _, t := range tasks {
		if !taskListAll && t.Status.IsArchived() {
			continue
		}
		fmt.Printf("%-36s  %-16s  %-8s  %s\n", t.ID, t.Status, t.Priority, t.Title)
		shown++
	}
	if shown == 0 {
		fmt.Println("no tasks")
	}
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	priority := task.Priority(taskAddPriority)
	if !priority.Valid() {
		return fmt.Errorf("unknown priority %q (critical, high, medium, low)", taskAddPriority)
	}

	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	t := task.New(strings.Join(args, " "), taskAddDescription, priority, "user")
	if err := rt.store.SaveTask(t); err != nil {
		return err
	}
	fmt.Printf("created %s\n", t.ID)
	return nil
}

func runTaskFocus(cmd *cobra.Command, args []string) error {
	return applyTransition(args[0], func(t task.Task) (task.Task, error) {
		return task.Focus(t, "user")
	})
}

func runTaskBlock(cmd *cobra.Command, args []string) error {
	return applyTransition(args[0], func(t task.Task) (task.Task, error) {
		return task.Block(t, "user", taskBlockReason, nil)
	})
}

func runTaskDone(cmd *cobra.Command, args []string) error {
	return applyTransition(args[0], func(t task.Task) (task.Task, error) {
		return task.Complete(t, "user", taskDoneNotes)
	})
}

// applyTransition loads a task, runs the state change, and persists the
// result.
func applyTransition(id string, change func(task.Task) (task.Task, error)) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.close()

	current, err := rt.store.GetTask(id)
	if err != nil {
		return err
	}
	next, err := change(current)
	if err != nil {
		return err
	}
	if err := rt.store.SaveTask(next); err != nil {
		return err
	}

	fmt.Printf("%s: %s -> %s\n", next.ID, current.Status, next.Status)
	return nil
}
