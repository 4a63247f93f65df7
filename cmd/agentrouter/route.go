package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agentrouter/pkg/models"
)

var (
	routeDirective string
	routeTaskType  string
	routeTitle     string
)

var routeCmd = &cobra.Command{
	Use:   "route <description...>",
	Short: "Decide a routing strategy without executing it",
	Long: `Classify a task description, parse the optional directive, and print
the routing decision with its full reason trail.

Examples:
  agentrouter route "fix the login redirect bug"
  agentrouter route --directive "get consensus on this" "migrate the users table"
  agentrouter route --type review "audit the payment flow"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRoute,
}

func init() {
	routeCmd.Flags().StringVarP(&routeDirective, "directive", "d", "", "Free-text routing directive (force/prevent consensus, assignment)")
	routeCmd.Flags().StringVarP(&routeTaskType, "type", "t", string(models.TaskTypeImplementation), "Task type (implementation, review, planning, ...)")
	routeCmd.Flags().StringVar(&routeTitle, "title", "", "Short task title (defaults to the description)")
}

func runRoute(cmd *cobra.Command, args []string) error {
	taskType := models.TaskType(routeTaskType)
	if !taskType.Valid() {
		return fmt.Errorf("unknown task type %q", routeTaskType)
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	description := strings.Join(args, " ")
	title := routeTitle
	if title == "" {
		title = truncate(description, 60)
	}

	res := a.route(title, description, routeDirective, taskType)
	printDecision(res)
	return nil
}

func printDecision(res *routeResult) {
	bold := color.New(color.Bold)

	bold.Printf("Strategy: ")
	fmt.Printf("%s  ", strategyColor(res.decision.Strategy)(strings.ToUpper(string(res.decision.Strategy))))
	fmt.Printf("(confidence %.2f)\n", res.decision.Confidence)
	if res.hardRule {
		fmt.Printf("  decided by hard rule, picker skipped\n")
	}

	fmt.Printf("\nClassification: complexity %d/10, risk %d/10 (confidence %.2f)\n",
		res.classification.Complexity, res.classification.Risk, res.classification.Confidence)
	if len(res.classification.CriticalKeywords) > 0 {
		fmt.Printf("  critical keywords: %s\n", strings.Join(res.classification.CriticalKeywords, ", "))
	}

	if len(res.task.AssignedTo) > 0 {
		fmt.Printf("Assigned agents: %s\n", strings.Join(res.task.AssignedTo, ", "))
	}

	bold.Println("\nDecision trail:")
	for _, reason := range res.decision.Reasons {
		fmt.Printf("  %s %s\n", color.CyanString("•"), reason)
	}

	if len(res.directive.ParsingNotes) > 0 {
		bold.Println("\nDirective notes:")
		for _, note := range res.directive.ParsingNotes {
			fmt.Printf("  %s %s\n", color.YellowString("•"), note)
		}
	}
}

func strategyColor(strategy models.RoutingStrategy) func(format string, a ...interface{}) string {
	switch strategy {
	case models.StrategyConsensus:
		return color.MagentaString
	case models.StrategyParallel:
		return color.BlueString
	case models.StrategySequential:
		return color.CyanString
	default:
		return color.GreenString
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
