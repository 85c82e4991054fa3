package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"txagent/internal/config"
	"txagent/internal/llm"
	"txagent/internal/llm/openai"
	"txagent/internal/logger"
	"txagent/internal/mcp"
	"txagent/internal/store"
	"txagent/internal/tool"
	"txagent/internal/tool/builtin"

	"github.com/spf13/cobra"
)

// app holds the components shared by the subcommands.
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	store    *store.Store
	registry *tool.Registry
	mcp      *mcp.Manager
}

// loadConfig reads .env, the config file and command-line overrides.
// Errors are configuration errors.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	var cfg *config.Config
	var err error
	if cfgFile != "" {
		cfg, err = config.Load(cfgFile)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-base-url") {
		cfg.Model.BaseURL = apiBaseURL
	}
	if flags.Changed("api-key") {
		cfg.Model.APIKey = apiKey
	}
	if flags.Changed("model") {
		cfg.Model.Name = model
	}
	if flags.Changed("temperature") {
		cfg.Model.Temperature = temperature
	}
	if flags.Changed("max-iterations") {
		cfg.Agent.MaxIterations = maxIterations
	}
	if flags.Changed("parallel-tools") {
		cfg.Agent.ParallelTools = parallelTools
	}
	if flags.Changed("driver") {
		cfg.Store.Driver = storeDriver
	}
	if flags.Changed("dsn") {
		cfg.Store.DSN = storeDSN
	}

	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	// Local OpenAI-compatible servers accept any key.
	if cfg.Model.APIKey == "" {
		cfg.Model.APIKey = cfg.Model.Name
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger() *logger.Logger {
	level := logger.LevelInfo
	if verbose {
		level = logger.LevelDebug
	}
	return logger.NewLogger(os.Stderr, logger.Options{
		Level:   level,
		NoColor: noColor,
		JSON:    jsonLogs,
	})
}

// setup opens the store and registers the built-in tools. When withMCP is
// set, tools of the configured MCP servers are registered as well.
func setup(ctx context.Context, cmd *cobra.Command, withMCP bool) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := newLogger()

	log.Debug("Opening %s store", cfg.Store.Driver)
	s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, internal(err)
	}

	a := &app{cfg: cfg, log: log, store: s, registry: tool.NewRegistry()}

	for _, t := range []tool.Tool{
		builtin.NewTransactionsTool(s),
		builtin.NewDateTool(time.Now, time.Local),
	} {
		if err := a.registry.Register(t); err != nil {
			a.Close()
			return nil, internal(err)
		}
	}

	if withMCP && len(cfg.MCP.Servers) > 0 {
		a.mcp = mcp.NewManager(a.registry)
		if err := a.mcp.Initialize(ctx, cfg.MCP); err != nil {
			if a.mcp.ServerCount() == 0 {
				a.Close()
				return nil, internal(err)
			}
			log.Error("%v", err)
		}
		log.Info("Loaded MCP servers: %v", a.mcp.ListServers())
	}

	log.Debug("Registered %d tools", len(a.registry.List()))
	return a, nil
}

func (a *app) modelClient() llm.Client {
	a.log.Debug("Creating model client (model: %s, base URL: %s)", a.cfg.Model.Name, a.cfg.Model.BaseURL)
	return openai.NewClient(a.cfg.Model.APIKey, a.cfg.Model.Name, openai.Options{
		BaseURL: a.cfg.Model.BaseURL,
		Timeout: a.cfg.Model.Timeout,
	})
}

func (a *app) Close() {
	if a.mcp != nil {
		if err := a.mcp.Close(); err != nil {
			a.log.Error("%v", err)
		}
	}
	if err := a.store.Close(); err != nil {
		a.log.Error("Closing store: %v", err)
	}
}
