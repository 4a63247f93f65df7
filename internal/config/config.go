// Package config handles configuration loading for the router.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"agentrouter/internal/routing"
	"agentrouter/internal/workflow"
	"agentrouter/pkg/models"
)

// Config holds all configuration for the router.
type Config struct {
	Anthropic   AnthropicConfig             `mapstructure:"anthropic"`
	Routing     routing.PickerConfig        `mapstructure:"routing"`
	Workflow    workflow.Config             `mapstructure:"workflow"`
	Calibration routing.CalibrationSettings `mapstructure:"calibration"`
	Patterns    PatternsConfig              `mapstructure:"patterns"`
	Storage     StorageConfig               `mapstructure:"storage"`
	Agents      []AgentSeed                 `mapstructure:"agents"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseBedrock routes requests through AWS Bedrock instead of the
	// direct API.
	UseBedrock bool   `mapstructure:"use_bedrock"`
	AWSRegion  string `mapstructure:"aws_region"`
	AWSProfile string `mapstructure:"aws_profile"`
}

// PatternsConfig points at an optional YAML file of directive phrase tables
// merged over the built-in ones.
type PatternsConfig struct {
	Path string `mapstructure:"path"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Path overrides the database location. Empty means the global
	// XDG data path.
	Path string `mapstructure:"path"`
	// PurgeAfter drops completed tasks older than this on startup.
	// Zero disables purging.
	PurgeAfter time.Duration `mapstructure:"purge_after"`
}

// AgentSeed declares an agent to register at startup.
type AgentSeed struct {
	ID          string   `mapstructure:"id"`
	DisplayName string   `mapstructure:"display_name"`
	Aliases     []string `mapstructure:"aliases"`
}

// Agent converts the seed into a registerable agent record.
func (s AgentSeed) Agent() *models.Agent {
	name := s.DisplayName
	if name == "" {
		name = s.ID
	}
	return &models.Agent{
		ID:          s.ID,
		DisplayName: name,
		Aliases:     s.Aliases,
		Status:      models.AgentStatusOnline,
	}
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.agentrouter.yaml in current directory or parent)
// 3. User config (~/.config/agentrouter/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)
	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("workflow.agent_timeout", cfg.Workflow.AgentTimeout.String())
	v.Set("workflow.max_retries", cfg.Workflow.MaxRetries)
	v.Set("workflow.retry_backoff", cfg.Workflow.RetryBackoff.String())
	v.Set("workflow.max_iterations", cfg.Workflow.MaxIterations)
	v.Set("workflow.max_agents", cfg.Workflow.MaxAgents)
	v.Set("workflow.min_successful_agents", cfg.Workflow.MinSuccessfulAgents)
	v.Set("patterns.path", cfg.Patterns.Path)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.purge_after", cfg.Storage.PurgeAfter.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

// setDefaults configures default values for settings viper should treat as
// present even when no config file exists.
func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-20250514")

	v.SetDefault("workflow.agent_timeout", "2m")
	v.SetDefault("workflow.max_retries", 2)
	v.SetDefault("workflow.retry_backoff", "500ms")
	v.SetDefault("workflow.max_iterations", 3)
	v.SetDefault("workflow.max_agents", 3)
	v.SetDefault("workflow.min_successful_agents", 0)

	v.SetDefault("calibration.target_success_rate", 0.75)
	v.SetDefault("calibration.slope", 0.5)

	v.SetDefault("storage.purge_after", "0s")
}

// getUserConfigDir returns the XDG config directory for the router.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "agentrouter")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "agentrouter")
	}
	return filepath.Join(home, ".config", "agentrouter")
}

// findProjectConfig searches for .agentrouter.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".agentrouter.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// expandEnv expands ${VAR} references in a string.
func expandEnv(s string) string {
	return os.ExpandEnv(s)
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Anthropic: AnthropicConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Routing:     *routing.DefaultPickerConfig(),
		Workflow:    workflow.DefaultConfig(),
		Calibration: routing.DefaultCalibrationSettings(),
	}
}
