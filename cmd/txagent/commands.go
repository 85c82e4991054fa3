package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txagent/internal/agent"
	"txagent/internal/config"
	"txagent/internal/console"
	"txagent/internal/logger"
	"txagent/internal/mcp"
	"txagent/internal/store"
	"txagent/internal/tool"
	"txagent/internal/tool/builtin"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func newChatCmd() *cobra.Command {
	var render bool

	chatCmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, render)
		},
	}

	f := chatCmd.Flags()
	f.StringVar(&apiBaseURL, "api-base-url", config.DefaultBaseURL, "OpenAI-compatible API base URL")
	f.StringVar(&apiKey, "api-key", "", "API key (default: $OPENAI_API_KEY)")
	f.StringVar(&model, "model", config.DefaultModel, "Model to use")
	f.Float32Var(&temperature, "temperature", config.DefaultTemperature, "Temperature")
	f.IntVar(&maxIterations, "max-iterations", config.DefaultMaxIterations, "Maximum model calls per user turn")
	f.BoolVar(&parallelTools, "parallel-tools", false, "Run tool calls of one model turn concurrently")
	f.BoolVar(&render, "render", false, "Render answers as markdown")

	return chatCmd
}

func runChat(cmd *cobra.Command, render bool) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	prompt, err := agent.LoadSystemPrompt(a.cfg.Agent.SystemPromptFile)
	if err != nil {
		return err
	}

	orchestrator := agent.NewOrchestrator(agent.BuildSystemPrompt(prompt, a.registry), a.modelClient(), a.registry, &agent.Config{
		Temperature:   a.cfg.Model.Temperature,
		MaxTokens:     a.cfg.Model.MaxTokens,
		MaxIterations: a.cfg.Agent.MaxIterations,
		ParallelTools: a.cfg.Agent.ParallelTools,
	})

	in, err := console.NewLineReader(os.Stdin, os.Stdout)
	if err != nil {
		return internal(err)
	}
	defer in.Close()

	out := console.NewWriter(os.Stdout)
	stdoutFd := int(os.Stdout.Fd())
	color := !noColor && term.IsTerminal(stdoutFd)
	out.SetColorMode(color)
	if render {
		width, _, _ := term.GetSize(stdoutFd)
		renderer, err := console.NewMarkdownRenderer(color, width)
		if err != nil {
			return internal(err)
		}
		out.SetRenderer(renderer)
	}

	session := agent.NewSession()
	a.log.SessionStart(session.ID)
	defer func() {
		a.log.SessionEnd(time.Since(session.StartedAt), session.ToolCallCount())
		session.Close()
	}()

	if err := console.Run(logger.WithContext(ctx, a.log), in, out, orchestrator, session); err != nil {
		return internal(err)
	}
	return nil
}

func newQueryCmd() *cobra.Command {
	var startDate, endDate string
	var limit int

	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run the transaction query tool and print its JSON result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}
			if cmd.Flags().Changed("start-date") {
				params["startDate"] = startDate
			}
			if cmd.Flags().Changed("end-date") {
				params["endDate"] = endDate
			}
			if cmd.Flags().Changed("limit") {
				params["limit"] = limit
			}
			return runQuery(cmd, params)
		},
	}

	f := queryCmd.Flags()
	f.StringVar(&startDate, "start-date", "", "Inclusive lower bound (YYYY-MM-DD)")
	f.StringVar(&endDate, "end-date", "", "Inclusive upper bound (YYYY-MM-DD)")
	f.IntVar(&limit, "limit", builtin.DefaultLimit, "Maximum number of transactions")

	return queryCmd
}

func runQuery(cmd *cobra.Command, params map[string]any) error {
	ctx := cmd.Context()

	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	raw, err := json.Marshal(params)
	if err != nil {
		return internal(err)
	}

	result, err := a.registry.Invoke(logger.WithContext(ctx, a.log), builtin.TransactionsToolName, raw)
	if err != nil {
		if errors.Is(err, tool.ErrInvalidArgument) {
			return err
		}
		return internal(err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Output)
	return nil
}

func newMCPServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-serve",
		Short: "Expose the transaction tools over MCP on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx, cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			a.log.Info("Serving %d tools over MCP stdio", len(a.registry.List()))
			if err := mcp.Serve(logger.WithContext(ctx, a.log), a.registry); err != nil && !errors.Is(err, context.Canceled) {
				return internal(err)
			}
			return nil
		},
	}
}

func newInitDBCmd() *cobra.Command {
	var demo bool
	var demoCount int

	initCmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the transactions table, optionally with demo rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if demo && demoCount <= 0 {
				return fmt.Errorf("--demo-count must be positive, got %d", demoCount)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger()

			s, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
			if err != nil {
				return internal(err)
			}
			defer s.Close()

			if err := s.EnsureSchema(ctx); err != nil {
				return internal(err)
			}
			log.Info("Schema ready (%s)", cfg.Store.Driver)

			if demo {
				if err := s.InsertTransactions(ctx, store.DemoRows(time.Now(), demoCount)); err != nil {
					return internal(err)
				}
				log.Info("Inserted %d demo transactions", demoCount)
			}
			return nil
		},
	}

	initCmd.Flags().BoolVar(&demo, "demo", false, "Insert demo transactions")
	initCmd.Flags().IntVar(&demoCount, "demo-count", 150, "Number of demo transactions")
	return initCmd
}
