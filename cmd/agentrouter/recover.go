package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agentrouter/internal/state"
)

var (
	recoverResumeID string
	recoverCleanID  string
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Inspect and resolve interrupted workflows",
	Long: `List tasks whose workflows were interrupted by a process exit.

An interrupted task can be resumed (re-queued for execution) or cleaned
(marked failed so it stops showing up).

Examples:
  agentrouter recover                  # list interrupted tasks
  agentrouter recover --resume <id>    # re-queue a task
  agentrouter recover --clean <id>     # mark a task failed`,
	RunE: runRecover,
}

func init() {
	recoverCmd.Flags().StringVar(&recoverResumeID, "resume", "", "Re-queue the given task for execution")
	recoverCmd.Flags().StringVar(&recoverCleanID, "clean", "", "Mark the given task as failed")
}

func runRecover(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	rm := state.NewRecoveryManager(a.db)

	if recoverResumeID != "" {
		if err := rm.Resume(recoverResumeID); err != nil {
			return err
		}
		fmt.Printf("%s task %s re-queued; run 'agentrouter run' workflows pick it up as pending\n",
			color.GreenString("✓"), recoverResumeID)
		return nil
	}
	if recoverCleanID != "" {
		if err := rm.Clean(recoverCleanID); err != nil {
			return err
		}
		fmt.Printf("%s task %s marked failed\n", color.GreenString("✓"), recoverCleanID)
		return nil
	}

	interrupted, err := rm.CheckForInterrupted()
	if err != nil {
		return fmt.Errorf("check for interrupted tasks: %w", err)
	}
	if len(interrupted) == 0 {
		fmt.Println("No interrupted workflows.")
		return nil
	}

	fmt.Printf("%d interrupted workflows:\n\n", len(interrupted))
	for _, t := range interrupted {
		fmt.Printf("  %s %s\n", color.YellowString("⚠"), color.New(color.Bold).Sprint(t.Title))
		fmt.Printf("      id: %s\n", t.TaskID)
		fmt.Printf("      last state: %s after %d checkpoints\n", t.LastState, t.CheckpointCount)
		if !t.LastCheckpoint.IsZero() {
			fmt.Printf("      last checkpoint: %s\n", t.LastCheckpoint.Format(time.RFC3339))
		}
	}
	fmt.Println("\nUse --resume <id> to re-queue or --clean <id> to mark failed.")
	return nil
}
