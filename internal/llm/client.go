package llm

import (
	"context"
	"errors"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrModelService marks failures of the model endpoint itself (network,
// timeout, protocol). They end the current user turn.
var ErrModelService = errors.New("model service error")

// Client is a chat-completion service that can request tool calls.
type Client interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
	Provider() string
	Model() string
}

// ChatRequest carries the full dialogue (system directive first), the tool
// schemas the model may call and sampling parameters.
type ChatRequest struct {
	Messages    []Message
	Tools       []*ToolDefinition
	Temperature float32
	MaxTokens   int // 0 leaves the server default
}

// ChatResponse is a complete (non-streamed) reply: either a final answer
// or tool calls in Message.ToolCalls.
type ChatResponse struct {
	Message    Message
	StopReason StopReason
	Usage      Usage
}

// ToolDefinition describes one callable tool in a request.
type ToolDefinition struct {
	Type     string
	Function *FunctionDef
}

type FunctionDef struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}
