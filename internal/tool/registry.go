package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"txagent/internal/llm"

	"github.com/google/jsonschema-go/jsonschema"
)

type registered struct {
	tool   Tool
	schema *jsonschema.Resolved
}

// Registry maps tool names to their implementation and resolved argument
// schema. Dispatch is an explicit lookup by name.
type Registry struct {
	tools map[string]*registered
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*registered),
	}
}

func (r *Registry) Register(tool Tool) error {
	name := tool.Name()

	var resolved *jsonschema.Resolved
	if schema := tool.Parameters(); schema != nil {
		var err error
		resolved, err = schema.Resolve(nil)
		if err != nil {
			return fmt.Errorf("tool %s: invalid parameter schema: %w", name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}

	r.tools[name] = &registered{tool: tool, schema: resolved}
	return nil
}

func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.tools[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	return entry.tool, nil
}

// List returns the registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tools := make([]Tool, 0, len(r.tools))
	for _, entry := range r.tools {
		tools = append(tools, entry.tool)
	}
	sort.Slice(tools, func(i, j int) bool {
		return tools[i].Name() < tools[j].Name()
	})
	return tools
}

// Describe returns the tool schemas to include in a model request.
func (r *Registry) Describe() []*llm.ToolDefinition {
	tools := r.List()
	defs := make([]*llm.ToolDefinition, len(tools))

	for i, t := range tools {
		defs[i] = &llm.ToolDefinition{
			Type: "function",
			Function: &llm.FunctionDef{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		}
	}

	return defs
}

// Invoke validates params against the tool's declared schema and runs it.
// Unknown names fail with ErrUnknownTool, rejected arguments with ErrInvalidArgument.
func (r *Registry) Invoke(ctx context.Context, name string, params json.RawMessage) (*Result, error) {
	r.mu.RLock()
	entry, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}

	params = normalizeParams(params)

	var instance any
	if err := json.Unmarshal(params, &instance); err != nil {
		return nil, fmt.Errorf("%w: arguments are not valid JSON: %v", ErrInvalidArgument, err)
	}
	if _, ok := instance.(map[string]any); !ok {
		return nil, fmt.Errorf("%w: arguments must be a JSON object", ErrInvalidArgument)
	}

	if entry.schema != nil {
		if err := entry.schema.Validate(instance); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
	}

	return entry.tool.Execute(ctx, params)
}

// normalizeParams treats absent arguments as an empty object; some models
// send "" or null for tools without parameters.
func normalizeParams(params json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return json.RawMessage("{}")
	}
	return trimmed
}

// GetToolBestPractices collects best practices from all registered tools
func (r *Registry) GetToolBestPractices() string {
	tools := r.List()
	var practices []string

	for _, t := range tools {
		if bp := t.BestPractices(); bp != "" {
			practices = append(practices, bp)
		}
	}

	if len(practices) == 0 {
		return ""
	}

	result := "# Tool Usage Best Practices\n\n"
	for i, practice := range practices {
		result += practice
		if i < len(practices)-1 {
			result += "\n\n"
		}
	}

	return result
}
