package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"agentrouter/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or initialize configuration",
	RunE:  runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file to the user config directory",
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)

	bold.Println("Config paths:")
	fmt.Printf("  user:    %s\n", config.GetUserConfigPath())
	if path := config.GetProjectConfigPath(); path != "" {
		fmt.Printf("  project: %s\n", path)
	} else {
		fmt.Printf("  project: (none)\n")
	}

	bold.Println("\nAnthropic:")
	key, _ := config.GetAPIKey(cfg)
	fmt.Printf("  api key: %s\n", config.MaskAPIKey(key))
	fmt.Printf("  model:   %s\n", cfg.Anthropic.Model)
	if cfg.Anthropic.UseBedrock {
		fmt.Printf("  bedrock: enabled (region %s)\n", cfg.Anthropic.AWSRegion)
	}

	bold.Println("\nRouting:")
	fmt.Printf("  high risk threshold:      %d\n", cfg.Routing.HighRiskThreshold)
	fmt.Printf("  high complexity threshold: %d\n", cfg.Routing.HighComplexityThreshold)
	fmt.Printf("  directive minimum:        %.2f\n", cfg.Routing.DirectiveConfidenceMinimum)

	bold.Println("\nWorkflow:")
	fmt.Printf("  agent timeout:  %s\n", cfg.Workflow.AgentTimeout)
	fmt.Printf("  max retries:    %d\n", cfg.Workflow.MaxRetries)
	fmt.Printf("  max agents:     %d\n", cfg.Workflow.MaxAgents)
	fmt.Printf("  max iterations: %d\n", cfg.Workflow.MaxIterations)

	if len(cfg.Agents) > 0 {
		bold.Println("\nSeed agents:")
		for _, seed := range cfg.Agents {
			fmt.Printf("  %s\n", seed.ID)
		}
	}
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.GetUserConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("%s wrote default config to %s\n", color.GreenString("✓"), path)
	return nil
}
