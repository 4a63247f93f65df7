package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agentrouter/internal/state"
	"agentrouter/pkg/models"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show tasks and their routing outcomes",
	Long: `Display recent tasks, their chosen strategies, token usage, and any
workflows interrupted by a process exit.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "Maximum number of recent tasks to show")
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	tasks, err := a.db.ListTasks(nil)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks yet. Run 'agentrouter run <task>' to start.")
		return nil
	}

	counts := make(map[models.TaskStatus]int)
	for _, t := range tasks {
		counts[t.Status]++
	}
	fmt.Printf("%d tasks: %d pending, %d in progress, %d done, %d failed\n\n",
		len(tasks),
		counts[models.TaskStatusPending],
		counts[models.TaskStatusInProgress],
		counts[models.TaskStatusDone],
		counts[models.TaskStatusFailed])

	shown := tasks
	if len(shown) > statusLimit {
		shown = shown[:statusLimit]
	}
	for _, t := range shown {
		printTaskLine(a, t)
	}

	rm := state.NewRecoveryManager(a.db)
	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		return fmt.Errorf("check for interrupted tasks: %w", err)
	}
	if len(interrupted) > 0 {
		color.Yellow("\n%d interrupted workflows. Run 'agentrouter recover' to inspect them.", len(interrupted))
	}
	return nil
}

func printTaskLine(a *app, t models.Task) {
	fmt.Printf("  %s %s", taskStatusSymbol(t.Status), color.New(color.Bold).Sprint(truncate(t.Title, 50)))
	if t.Strategy != "" {
		fmt.Printf("  [%s]", strategyColor(t.Strategy)(string(t.Strategy)))
	}
	if len(t.AssignedTo) > 0 {
		fmt.Printf("  agents: %s", strings.Join(t.AssignedTo, ", "))
	}
	if input, output, err := a.db.TaskTokenUsage(t.ID); err == nil && input+output > 0 {
		fmt.Printf("  tokens: %d", input+output)
	}
	if t.Error != "" {
		fmt.Printf("\n      %s", color.RedString(truncate(t.Error, 80)))
	}
	fmt.Println()
}

func taskStatusSymbol(status models.TaskStatus) string {
	switch status {
	case models.TaskStatusDone:
		return color.GreenString("✓")
	case models.TaskStatusFailed:
		return color.RedString("✗")
	case models.TaskStatusInProgress:
		return color.CyanString("▶")
	case models.TaskStatusWaitingInput:
		return color.YellowString("⏸")
	default:
		return "·"
	}
}
