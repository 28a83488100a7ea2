// Package config handles configuration loading with layering:
// defaults -> global config -> workspace config -> env vars -> CLI flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// AgentConfig describes one model endpoint: the major agent or a named
// sub-agent. Sub-agents inherit unset fields from the major agent.
type AgentConfig struct {
	Model        string `yaml:"model_name"`
	BaseURL      string `yaml:"base_url"`
	APIKey       string `yaml:"api_key"`
	SystemPrompt string `yaml:"system_prompt"`
}

// Config holds all runtime configuration.
type Config struct {
	Agent          AgentConfig            `yaml:"agent"`
	SubAgents      map[string]AgentConfig `yaml:"sub_agents"`
	Workspace      string                 `yaml:"workspace"`
	Output         string                 `yaml:"output"`
	EmbeddingModel string                 `yaml:"embedding_model"`
	Verbose        bool                   `yaml:"verbose"`
}

// Flags carries CLI flag overrides. Empty strings mean "not set".
type Flags struct {
	ConfigPath string
	Workspace  string
	Output     string
	Model      string
	Verbose    bool
}

// defaults returns a Config populated with hardcoded default values.
func defaults() Config {
	return Config{
		Agent: AgentConfig{
			Model:   "moonshotai/kimi-k2",
			BaseURL: "https://openrouter.ai/api/v1",
		},
		Workspace:      ".",
		EmbeddingModel: "openai/text-embedding-3-small",
	}
}

// Load reads config from all layers and returns the merged result.
func Load(flags Flags) (*Config, error) {
	cfg := defaults()

	// Layer 2: Global config
	if home, err := os.UserHomeDir(); err == nil {
		globalPath := filepath.Join(home, ".captain", "config.yaml")
		if err := mergeFromFile(&cfg, globalPath); err != nil {
			return nil, fmt.Errorf("global config %s: %w", globalPath, err)
		}
	}

	// Layer 3: Workspace config, or the explicit --config file.
	if flags.ConfigPath != "" {
		if _, err := os.Stat(flags.ConfigPath); err != nil {
			return nil, fmt.Errorf("config %s: %w", flags.ConfigPath, err)
		}
		if err := mergeFromFile(&cfg, flags.ConfigPath); err != nil {
			return nil, fmt.Errorf("config %s: %w", flags.ConfigPath, err)
		}
	} else {
		workspacePath := filepath.Join(".captain", "config.yaml")
		if err := mergeFromFile(&cfg, workspacePath); err != nil {
			return nil, fmt.Errorf("workspace config %s: %w", workspacePath, err)
		}
	}

	// Layer 4: Environment variables
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		cfg.Agent.APIKey = key
	}
	if key := os.Getenv("CAPTAIN_API_KEY"); key != "" {
		cfg.Agent.APIKey = key
	}

	// Layer 5: CLI flags
	if flags.Model != "" {
		cfg.Agent.Model = flags.Model
	}
	if flags.Workspace != "" {
		cfg.Workspace = flags.Workspace
	}
	if flags.Output != "" {
		cfg.Output = flags.Output
	}
	if flags.Verbose {
		cfg.Verbose = true
	}

	if err := finish(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// finish validates the merged config and fills derived values: absolute
// workspace, default output path, and sub-agent field inheritance.
func finish(cfg *Config) error {
	if cfg.Agent.APIKey == "" {
		return errors.New("API key not set. Set CAPTAIN_API_KEY / OPENROUTER_API_KEY or api_key in ~/.captain/config.yaml")
	}
	if cfg.Agent.Model == "" {
		return errors.New("agent model_name not set")
	}

	ws, err := filepath.Abs(cfg.Workspace)
	if err != nil {
		return fmt.Errorf("resolving workspace %s: %w", cfg.Workspace, err)
	}
	info, err := os.Stat(ws)
	if err != nil {
		return fmt.Errorf("workspace %s: %w", ws, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace %s is not a directory", ws)
	}
	cfg.Workspace = ws

	if cfg.Output == "" {
		cfg.Output = filepath.Join(ws, ".captain", "transcript.md")
	} else if !filepath.IsAbs(cfg.Output) {
		cfg.Output = filepath.Join(ws, cfg.Output)
	}

	for name, sub := range cfg.SubAgents {
		if sub.Model == "" {
			sub.Model = cfg.Agent.Model
		}
		if sub.BaseURL == "" {
			sub.BaseURL = cfg.Agent.BaseURL
		}
		if sub.APIKey == "" {
			sub.APIKey = cfg.Agent.APIKey
		}
		cfg.SubAgents[name] = sub
	}

	return nil
}

// LogPath returns the log file location inside the workspace.
func (c *Config) LogPath() string {
	return filepath.Join(c.Workspace, ".captain", "logs", "captain.log")
}

// HistoryPath returns the shell history file location.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Workspace, ".captain", "history")
}

// PromptsDir returns the prompt template directory.
func (c *Config) PromptsDir() string {
	return filepath.Join(c.Workspace, ".captain", "prompts")
}

// StorePath returns the vector store database location.
func (c *Config) StorePath() string {
	return filepath.Join(c.Workspace, ".captain", "store.db")
}

// mergeFromFile reads a YAML config file and merges non-zero values into cfg.
// If the file does not exist, it is silently skipped.
func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}

	mergeAgent(&cfg.Agent, fileCfg.Agent)
	if fileCfg.Workspace != "" {
		cfg.Workspace = fileCfg.Workspace
	}
	if fileCfg.Output != "" {
		cfg.Output = fileCfg.Output
	}
	if fileCfg.EmbeddingModel != "" {
		cfg.EmbeddingModel = fileCfg.EmbeddingModel
	}
	if fileCfg.Verbose {
		cfg.Verbose = true
	}
	for name, sub := range fileCfg.SubAgents {
		if cfg.SubAgents == nil {
			cfg.SubAgents = make(map[string]AgentConfig)
		}
		merged := cfg.SubAgents[name]
		mergeAgent(&merged, sub)
		cfg.SubAgents[name] = merged
	}

	return nil
}

func mergeAgent(dst *AgentConfig, src AgentConfig) {
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.BaseURL != "" {
		dst.BaseURL = src.BaseURL
	}
	if src.APIKey != "" {
		dst.APIKey = src.APIKey
	}
	if src.SystemPrompt != "" {
		dst.SystemPrompt = src.SystemPrompt
	}
}
