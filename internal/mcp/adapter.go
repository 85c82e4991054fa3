package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"txagent/internal/tool"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ToolAdapter exposes a tool of a connected MCP server through the tool.Tool interface
type ToolAdapter struct {
	client         *Client
	mcpTool        *mcp.Tool
	namespacedName string // e.g. "fxrates_convert"
}

func NewToolAdapter(client *Client, mcpTool *mcp.Tool) *ToolAdapter {
	return &ToolAdapter{
		client:         client,
		mcpTool:        mcpTool,
		namespacedName: fmt.Sprintf("%s_%s", client.Name(), mcpTool.Name),
	}
}

// Name returns the namespaced tool name (server_tool)
func (a *ToolAdapter) Name() string {
	return a.namespacedName
}

func (a *ToolAdapter) Description() string {
	desc := a.mcpTool.Description
	if desc == "" {
		desc = fmt.Sprintf("MCP tool from %s server", a.client.Name())
	}
	return fmt.Sprintf("%s\n\n[MCP Server: %s]", desc, a.client.Name())
}

func (a *ToolAdapter) BestPractices() string {
	return ""
}

// Parameters converts the server's input schema, which the SDK hands over
// as untyped JSON, into a jsonschema.Schema.
func (a *ToolAdapter) Parameters() *jsonschema.Schema {
	empty := &jsonschema.Schema{Type: "object"}
	if a.mcpTool.InputSchema == nil {
		return empty
	}
	if schema, ok := a.mcpTool.InputSchema.(*jsonschema.Schema); ok {
		return schema
	}

	data, err := json.Marshal(a.mcpTool.InputSchema)
	if err != nil {
		return empty
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return empty
	}
	return &schema
}

// Execute forwards the call to the MCP server. Server-side failures are
// reported as unsuccessful results so they reach the model as error payloads.
func (a *ToolAdapter) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	var args map[string]any
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, fmt.Errorf("%w: %v", tool.ErrInvalidArgument, err)
	}

	result, err := a.client.CallTool(ctx, a.mcpTool.Name, args)
	if err != nil {
		return tool.Failed(fmt.Sprintf("MCP tool execution failed: %v", err)), nil
	}

	if result.IsError {
		return tool.Failed(formatMCPError(result)), nil
	}

	res := tool.OK(formatMCPContent(result.Content))
	res.Data = map[string]any{
		"mcp_server": a.client.Name(),
		"mcp_tool":   a.mcpTool.Name,
	}
	return res, nil
}

// formatMCPContent flattens MCP content items into text
func formatMCPContent(content []mcp.Content) string {
	var parts []string

	for _, item := range content {
		switch c := item.(type) {
		case *mcp.TextContent:
			parts = append(parts, c.Text)
		case *mcp.ImageContent:
			parts = append(parts, fmt.Sprintf("[Image: %s]", c.MIMEType))
		case *mcp.AudioContent:
			parts = append(parts, fmt.Sprintf("[Audio: %s]", c.MIMEType))
		default:
			data, err := json.Marshal(item)
			if err != nil {
				parts = append(parts, fmt.Sprintf("[Unknown content type: %T]", item))
			} else {
				parts = append(parts, string(data))
			}
		}
	}

	return strings.Join(parts, "\n")
}

func formatMCPError(result *mcp.CallToolResult) string {
	if len(result.Content) > 0 {
		return formatMCPContent(result.Content)
	}
	return "MCP tool returned an error"
}
