package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agentrouter",
	Short: "AI-agent task router and workflow engine",
	Long: `Agentrouter routes units of work to one or more AI agents using a
configurable strategy, then executes that strategy as a supervised,
checkpointed workflow with retries, timeouts, and partial-failure tolerance.

Core capabilities:
- Classifies task descriptions into complexity and risk scores
- Parses user directives (force/prevent consensus, agent assignment, urgency)
- Picks a routing strategy (solo, sequential, parallel, consensus) with a
  calibrated confidence score and a full decision trail
- Executes the chosen strategy against the registered agent pool, emitting
  checkpoints a later process can inspect or resume from`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
