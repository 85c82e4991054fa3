package tool

import (
	"context"
	"encoding/json"
	"time"

	"txagent/internal/llm"
	"txagent/internal/logger"

	"golang.org/x/sync/errgroup"
)

type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
	ExecutionModeParallel   ExecutionMode = "parallel"
)

// EmptyOutputPlaceholder is returned when a tool produces no output.
// LLM APIs reject tool messages with empty content.
const EmptyOutputPlaceholder = "(Tool executed successfully with no output)"

// defaultParallelLimit caps concurrent tool calls so each holds at most one store connection.
const defaultParallelLimit = 4

// Executor runs model-requested tool calls through a Registry. Tool failures
// never escape as Go errors: they become error payloads in the CallResult.
type Executor struct {
	registry *Registry
	mode     ExecutionMode
	limit    int
}

func NewExecutor(registry *Registry) *Executor {
	return &Executor{
		registry: registry,
		mode:     ExecutionModeSequential,
		limit:    defaultParallelLimit,
	}
}

func (e *Executor) SetMode(mode ExecutionMode) {
	e.mode = mode
}

// Execute executes tool calls based on the configured mode. Results are
// returned in the order of toolCalls.
func (e *Executor) Execute(ctx context.Context, toolCalls []*llm.ToolCall) []*CallResult {
	if e.mode == ExecutionModeParallel && len(toolCalls) > 1 {
		return e.ExecuteParallel(ctx, toolCalls)
	}
	return e.ExecuteSequential(ctx, toolCalls)
}

// ExecuteSequential executes tools one by one in order
func (e *Executor) ExecuteSequential(ctx context.Context, toolCalls []*llm.ToolCall) []*CallResult {
	results := make([]*CallResult, len(toolCalls))
	for i, tc := range toolCalls {
		results[i] = e.executeOne(ctx, tc)
	}
	return results
}

// ExecuteParallel executes independent tools concurrently
func (e *Executor) ExecuteParallel(ctx context.Context, toolCalls []*llm.ToolCall) []*CallResult {
	results := make([]*CallResult, len(toolCalls))

	var g errgroup.Group
	g.SetLimit(e.limit)
	for i, tc := range toolCalls {
		g.Go(func() error {
			results[i] = e.executeOne(ctx, tc)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (e *Executor) executeOne(ctx context.Context, tc *llm.ToolCall) *CallResult {
	log := logger.FromContext(ctx)
	startTime := time.Now()

	name, args := "", ""
	if tc.Function != nil {
		name, args = tc.Function.Name, tc.Function.Arguments
	}
	log.ToolCall(name, args)

	call := &CallResult{
		ToolName:  name,
		CallID:    tc.ID,
		Params:    json.RawMessage(args),
		StartTime: startTime,
	}

	result, err := e.registry.Invoke(ctx, name, json.RawMessage(args))
	switch {
	case err != nil:
		call.Result = failure(ErrorCode(err), err.Error())
	case !result.Success:
		call.Result = failure(CodeToolError, result.Error)
	default:
		if result.Output == "" {
			result.Output = EmptyOutputPlaceholder
		}
		call.Result = result
	}

	call.EndTime = time.Now()
	log.ToolResult(name, call.Result.Success, call.Result.Output, call.Duration())

	return call
}

func failure(code, message string) *Result {
	return &Result{
		Success: false,
		Output:  NewErrorPayload(code, message),
		Error:   message,
	}
}
