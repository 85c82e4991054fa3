package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"txagent/internal/llm"
	"txagent/internal/logger"
	"txagent/internal/tool"
)

// ErrMaxIterations is returned when a user turn needs more model calls than allowed.
var ErrMaxIterations = errors.New("max iterations exceeded")

// DefaultMaxIterations bounds model calls within one user turn.
const DefaultMaxIterations = 8

// TruncationNotice is appended to answers cut short by the model's length limit.
const TruncationNotice = "\n[Response truncated due to length limit]"

type Config struct {
	Temperature   float32
	MaxTokens     int
	MaxIterations int
	ParallelTools bool
}

// TurnResult is the outcome of one resolved user turn.
type TurnResult struct {
	Answer     string
	ToolCalls  []*tool.CallResult
	Iterations int
	Truncated  bool
	Usage      llm.Usage
}

// Orchestrator drives the model / tool loop for sessions. It holds no
// per-conversation state, so one instance can serve independent sessions.
type Orchestrator struct {
	systemPrompt string
	llmClient    llm.Client
	toolRegistry *tool.Registry
	executor     *tool.Executor
	config       *Config
}

func NewOrchestrator(systemPrompt string, client llm.Client, registry *tool.Registry, cfg *Config) *Orchestrator {
	if cfg == nil {
		cfg = &Config{Temperature: 0.1}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}

	executor := tool.NewExecutor(registry)
	if cfg.ParallelTools {
		executor.SetMode(tool.ExecutionModeParallel)
	}

	return &Orchestrator{
		systemPrompt: systemPrompt,
		llmClient:    client,
		toolRegistry: registry,
		executor:     executor,
		config:       cfg,
	}
}

// Turn appends userText to the session and loops between the model and the
// tools until the model produces a final answer.
//
// Tool failures are fed back to the model as error payloads. A model service
// failure ends the turn with an error wrapping llm.ErrModelService; it is not retried.
func (o *Orchestrator) Turn(ctx context.Context, session *Session, userText string) (*TurnResult, error) {
	if session.Closed() {
		return nil, fmt.Errorf("session %s is closed", session.ID)
	}

	execCtx := NewExecutionContext(logger.FromContext(ctx), o.config.MaxIterations)
	log := execCtx.Logger

	session.Append(llm.UserMessage(userText))
	execCtx.Transition(StateModelTurn)

	result := &TurnResult{}
	tools := o.toolRegistry.Describe()

	for iteration := 1; iteration <= o.config.MaxIterations; iteration++ {
		execCtx.CurrentIteration = iteration
		result.Iterations = iteration

		log.Debug("Iteration %d/%d: calling model", iteration, o.config.MaxIterations)

		resp, err := o.llmClient.Chat(ctx, &llm.ChatRequest{
			Messages:    o.buildMessages(session),
			Tools:       tools,
			Temperature: o.config.Temperature,
			MaxTokens:   o.config.MaxTokens,
		})
		if err != nil {
			log.Error("Model call failed: %v", err)
			if !errors.Is(err, llm.ErrModelService) {
				err = fmt.Errorf("%w: %v", llm.ErrModelService, err)
			}
			return nil, err
		}

		result.Usage.Add(resp.Usage)

		if !resp.Message.HasToolCalls() {
			answer := resp.Message.Content
			if resp.StopReason == llm.StopReasonLength {
				answer += TruncationNotice
				result.Truncated = true
			}

			session.Append(llm.AssistantMessage(answer, nil))
			execCtx.Transition(StateAwaitingInput)
			execCtx.LogTurnEnd()

			result.Answer = answer
			return result, nil
		}

		session.Append(llm.AssistantMessage(resp.Message.Content, resp.Message.ToolCalls))

		execCtx.Transition(StateToolExecution)
		log.Info("Executing %d tool call(s)...", len(resp.Message.ToolCalls))

		calls := o.executor.Execute(ctx, resp.Message.ToolCalls)
		for _, call := range calls {
			execCtx.ToolCallCount++
			session.Append(llm.ToolResultMessage(call.CallID, call.ToolName, call.Result.Output))
		}
		result.ToolCalls = append(result.ToolCalls, calls...)

		execCtx.Transition(StateModelTurn)
	}

	log.Error("Max iterations (%d) exceeded", o.config.MaxIterations)
	return nil, fmt.Errorf("%w: no final answer after %d model calls", ErrMaxIterations, o.config.MaxIterations)
}

// buildMessages prepends the system directive to the session history.
func (o *Orchestrator) buildMessages(session *Session) []llm.Message {
	history := session.History()
	messages := make([]llm.Message, 0, len(history)+1)

	if o.systemPrompt != "" {
		messages = append(messages, llm.Message{
			Role:      llm.RoleSystem,
			Content:   o.systemPrompt,
			Timestamp: time.Now(),
		})
	}

	return append(messages, history...)
}
