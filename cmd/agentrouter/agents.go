package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agentrouter/pkg/models"
)

var (
	agentAddName    string
	agentAddAliases []string
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manage the registered agent pool",
	RunE:  runAgentsList,
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered agents",
	RunE:  runAgentsList,
}

var agentsAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Register an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsAdd,
}

var agentsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Unregister an agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsRemove,
}

var agentsStatusCmd = &cobra.Command{
	Use:   "set-status <id> <online|busy|offline>",
	Short: "Change an agent's availability",
	Args:  cobra.ExactArgs(2),
	RunE:  runAgentsSetStatus,
}

func init() {
	agentsAddCmd.Flags().StringVar(&agentAddName, "name", "", "Display name (defaults to the id)")
	agentsAddCmd.Flags().StringSliceVar(&agentAddAliases, "alias", nil, "Additional short names (repeatable)")

	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsAddCmd)
	agentsCmd.AddCommand(agentsRemoveCmd)
	agentsCmd.AddCommand(agentsStatusCmd)
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	agents := a.registry.GetAllAgents()
	if len(agents) == 0 {
		fmt.Println("No agents registered. Use 'agentrouter agents add <id>' or seed them in config.")
		return nil
	}

	fmt.Printf("%d agents (%d online)\n\n", len(agents), a.registry.OnlineCount())
	for _, agent := range agents {
		fmt.Printf("  %s %s", statusDot(agent.Status), color.New(color.Bold).Sprint(agent.ID))
		if agent.DisplayName != agent.ID {
			fmt.Printf(" (%s)", agent.DisplayName)
		}
		if len(agent.Aliases) > 0 {
			fmt.Printf("  aliases: %s", strings.Join(agent.Aliases, ", "))
		}
		if agent.TokensUsed > 0 {
			fmt.Printf("  tokens: %d", agent.TokensUsed)
		}
		fmt.Println()
	}
	return nil
}

func runAgentsAdd(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id := args[0]
	name := agentAddName
	if name == "" {
		name = id
	}
	agent := &models.Agent{
		ID:           id,
		DisplayName:  name,
		Aliases:      agentAddAliases,
		Status:       models.AgentStatusOnline,
		RegisteredAt: time.Now().UTC(),
	}
	if err := a.registry.Register(agent); err != nil {
		return err
	}
	fmt.Printf("%s registered agent %s\n", color.GreenString("✓"), id)
	return nil
}

func runAgentsRemove(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.registry.Unregister(args[0]); err != nil {
		return err
	}
	fmt.Printf("%s removed agent %s\n", color.GreenString("✓"), args[0])
	return nil
}

func runAgentsSetStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	status := models.AgentStatus(args[1])
	if err := a.registry.SetStatus(args[0], status); err != nil {
		return err
	}
	fmt.Printf("%s agent %s is now %s\n", color.GreenString("✓"), args[0], status)
	return nil
}

func statusDot(status models.AgentStatus) string {
	switch status {
	case models.AgentStatusOnline:
		return color.GreenString("●")
	case models.AgentStatusBusy:
		return color.YellowString("●")
	default:
		return color.RedString("●")
	}
}
