package mcp

import (
	"context"

	"txagent/internal/tool"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer exposes every tool in registry as an MCP tool. Calls go
// through registry.Invoke, so arguments are validated the same way as in
// a chat session and failures come back as error payloads with IsError set.
func NewServer(registry *tool.Registry) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: implementationName, Version: Version}, nil)

	for _, t := range registry.List() {
		schema := t.Parameters()
		if schema == nil {
			schema = &jsonschema.Schema{Type: "object"}
		}
		server.AddTool(&mcp.Tool{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: schema,
		}, invokeHandler(registry, t.Name()))
	}

	return server
}

// Serve runs the registry server over stdin/stdout until ctx is done or the peer disconnects.
func Serve(ctx context.Context, registry *tool.Registry) error {
	return NewServer(registry).Run(ctx, &mcp.StdioTransport{})
}

func invokeHandler(registry *tool.Registry, name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := registry.Invoke(ctx, name, req.Params.Arguments)
		if err != nil {
			return errorResult(tool.NewErrorPayload(tool.ErrorCode(err), err.Error())), nil
		}
		if !result.Success {
			return errorResult(tool.NewErrorPayload(tool.CodeToolError, result.Error)), nil
		}

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Output}},
		}, nil
	}
}

func errorResult(payload string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: payload}},
		IsError: true,
	}
}
