package agent

import (
	"time"

	"txagent/internal/logger"
)

// State is a step of the per-turn state machine.
type State string

const (
	StateAwaitingInput State = "awaiting_input"
	StateModelTurn     State = "model_turn"
	StateToolExecution State = "tool_execution"
)

// ExecutionContext tracks the progress of a single user turn
type ExecutionContext struct {
	Logger           *logger.Logger
	StartTime        time.Time
	State            State
	CurrentIteration int
	MaxIterations    int
	ToolCallCount    int
}

func NewExecutionContext(log *logger.Logger, maxIterations int) *ExecutionContext {
	if log == nil {
		log = logger.Nop()
	}
	return &ExecutionContext{
		Logger:        log,
		StartTime:     time.Now(),
		State:         StateAwaitingInput,
		MaxIterations: maxIterations,
	}
}

// Transition moves to the next state and records it at debug level
func (ctx *ExecutionContext) Transition(next State) {
	ctx.Logger.Debug("State %s -> %s", ctx.State, next)
	ctx.State = next
}

// LogTurnEnd logs duration and tool usage of the finished turn
func (ctx *ExecutionContext) LogTurnEnd() {
	ctx.Logger.Info("Turn completed in %s (%d model call(s), %d tool call(s))",
		time.Since(ctx.StartTime).Round(time.Millisecond), ctx.CurrentIteration, ctx.ToolCallCount)
}
