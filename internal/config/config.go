package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"txagent/internal/store"
)

const (
	DefaultBaseURL       = "http://127.0.0.1:1234/v1/"
	DefaultModel         = "qwen/qwen3-1.7b"
	DefaultTemperature   = 0.1
	DefaultMaxIterations = 8
	DefaultDriver        = "sqlite"
	DefaultDSN           = "dummy.db"
	DefaultTimeout       = 2 * time.Minute
)

// Config represents the complete txagent configuration
type Config struct {
	Model ModelConfig `yaml:"model"`
	Agent AgentConfig `yaml:"agent"`
	Store StoreConfig `yaml:"store"`
	MCP   MCPConfig   `yaml:"mcp"`
}

// ModelConfig points at an OpenAI-compatible chat completion endpoint
type ModelConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Name        string        `yaml:"name"`
	Temperature float32       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// AgentConfig tunes the conversation loop
type AgentConfig struct {
	MaxIterations    int    `yaml:"max_iterations"`
	ParallelTools    bool   `yaml:"parallel_tools"`
	SystemPromptFile string `yaml:"system_prompt_file"`
}

// StoreConfig selects the transaction database
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// MCPConfig contains MCP-specific settings
type MCPConfig struct {
	Servers []MCPServerConfig `yaml:"servers"`
}

// MCPServerConfig defines a single MCP server whose tools are added to the registry
type MCPServerConfig struct {
	Name     string            `yaml:"name"`     // Unique server identifier
	Command  string            `yaml:"command"`  // Executable to run over stdio
	Args     []string          `yaml:"args"`     // Command arguments
	Env      map[string]string `yaml:"env"`      // Environment variables with ${VAR} support
	Disabled bool              `yaml:"disabled"` // Skip this server if true
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			BaseURL:     DefaultBaseURL,
			Name:        DefaultModel,
			Temperature: DefaultTemperature,
			Timeout:     DefaultTimeout,
		},
		Agent: AgentConfig{MaxIterations: DefaultMaxIterations},
		Store: StoreConfig{Driver: DefaultDriver, DSN: DefaultDSN},
	}
}

// Load reads and parses the YAML config file on top of the defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads config with fallback to default locations
// Checks: ./txagent.yaml, ./configs/txagent.yaml, ~/.config/txagent/txagent.yaml, /etc/txagent/txagent.yaml
func LoadWithDefaults() (*Config, error) {
	locations := []string{
		"./txagent.yaml",
		"./configs/txagent.yaml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "txagent", "txagent.yaml"))
	}

	locations = append(locations, "/etc/txagent/txagent.yaml")

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}

	// No config found - defaults (not an error)
	return Default(), nil
}

// LoadDotEnv loads variables from .env files into the process environment.
// Variables already set are not overridden; missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks config correctness
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("model.name cannot be empty")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("model.temperature must be within [0, 2], got %v", c.Model.Temperature)
	}
	if c.Model.MaxTokens < 0 {
		return fmt.Errorf("model.max_tokens cannot be negative")
	}
	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got %d", c.Agent.MaxIterations)
	}
	if _, err := store.ParseDialect(c.Store.Driver); err != nil {
		return fmt.Errorf("store.driver: %w", err)
	}
	if c.Store.DSN == "" {
		return fmt.Errorf("store.dsn cannot be empty")
	}

	// Check for duplicate server names
	names := make(map[string]bool)
	for i, server := range c.MCP.Servers {
		if server.Name == "" {
			return fmt.Errorf("server #%d: name cannot be empty", i+1)
		}

		if names[server.Name] {
			return fmt.Errorf("duplicate server name: %s", server.Name)
		}
		names[server.Name] = true

		if err := server.Validate(); err != nil {
			return fmt.Errorf("server %s: %w", server.Name, err)
		}
	}

	return nil
}

// Validate checks a single server config
func (s *MCPServerConfig) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	// Server names prefix tool names, which must match ^[a-zA-Z0-9_-]+$
	for _, ch := range s.Name {
		if !((ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '_' || ch == '-') {
			return fmt.Errorf("server name '%s' contains invalid character '%c' (only alphanumeric, underscore, and hyphen allowed)", s.Name, ch)
		}
	}

	if s.Command == "" {
		return fmt.Errorf("command is required")
	}

	return nil
}
