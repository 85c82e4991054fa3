package tool

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
)

// MockToolWithBestPractices is a mock tool that declares usage notes and a typed schema
type MockToolWithBestPractices struct {
	calls int
}

func (t *MockToolWithBestPractices) Name() string {
	return "mock_tool_with_bp"
}

func (t *MockToolWithBestPractices) Description() string {
	return "A mock tool with best practices"
}

func (t *MockToolWithBestPractices) Parameters() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"param": {Type: "string"},
			"count": {Type: "integer"},
		},
	}
}

func (t *MockToolWithBestPractices) Execute(ctx context.Context, params json.RawMessage) (*Result, error) {
	t.calls++
	return &Result{Success: true, Output: "mock output: " + string(params)}, nil
}

func (t *MockToolWithBestPractices) BestPractices() string {
	return `**Mock Tool Best Practices**:
1. Always use param X
2. Never use param Y
3. Check results carefully`
}

// MockToolWithoutBestPractices is a mock tool without usage notes or schema
type MockToolWithoutBestPractices struct{}

func (t *MockToolWithoutBestPractices) Name() string {
	return "mock_tool_without_bp"
}

func (t *MockToolWithoutBestPractices) Description() string {
	return "A mock tool without best practices"
}

func (t *MockToolWithoutBestPractices) BestPractices() string {
	return ""
}

func (t *MockToolWithoutBestPractices) Parameters() *jsonschema.Schema {
	return nil
}

func (t *MockToolWithoutBestPractices) Execute(ctx context.Context, params json.RawMessage) (*Result, error) {
	return &Result{Success: true, Output: "mock output"}, nil
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&MockToolWithoutBestPractices{}); err != nil {
		t.Fatalf("Failed to register tool: %v", err)
	}
	if err := registry.Register(&MockToolWithoutBestPractices{}); err == nil {
		t.Error("Expected error when registering a duplicate tool name")
	}
}

func TestRegistry_GetUnknown(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Get("missing")
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("Expected ErrUnknownTool, got: %v", err)
	}
}

func TestRegistry_DescribeSortedByName(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockToolWithoutBestPractices{})
	registry.Register(&MockToolWithBestPractices{})

	defs := registry.Describe()
	if len(defs) != 2 {
		t.Fatalf("Expected 2 definitions, got %d", len(defs))
	}
	if defs[0].Function.Name != "mock_tool_with_bp" || defs[1].Function.Name != "mock_tool_without_bp" {
		t.Errorf("Unexpected order: %s, %s", defs[0].Function.Name, defs[1].Function.Name)
	}
	if defs[0].Type != "function" {
		t.Errorf("Expected function type, got %s", defs[0].Type)
	}
	if defs[0].Function.Parameters == nil || defs[0].Function.Parameters.Type != "object" {
		t.Error("Expected object parameter schema to be exposed")
	}
}

func TestRegistry_InvokeUnknownTool(t *testing.T) {
	registry := NewRegistry()

	_, err := registry.Invoke(context.Background(), "nope", json.RawMessage(`{}`))
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("Expected ErrUnknownTool, got: %v", err)
	}
}

func TestRegistry_InvokeValidatesAgainstSchema(t *testing.T) {
	registry := NewRegistry()
	mock := &MockToolWithBestPractices{}
	registry.Register(mock)

	cases := []string{
		`{"param": 5}`,
		`{"count": "many"}`,
		`[1, 2]`,
		`not json`,
	}
	for _, params := range cases {
		_, err := registry.Invoke(context.Background(), mock.Name(), json.RawMessage(params))
		if !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("params %s: expected ErrInvalidArgument, got: %v", params, err)
		}
	}

	if mock.calls != 0 {
		t.Errorf("Expected tool not to run on invalid arguments, ran %d times", mock.calls)
	}
}

func TestRegistry_InvokeValidArguments(t *testing.T) {
	registry := NewRegistry()
	mock := &MockToolWithBestPractices{}
	registry.Register(mock)

	result, err := registry.Invoke(context.Background(), mock.Name(), json.RawMessage(`{"param": "x", "count": 3}`))
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if !result.Success {
		t.Errorf("Expected success, got error: %s", result.Error)
	}
	if mock.calls != 1 {
		t.Errorf("Expected 1 call, got %d", mock.calls)
	}
}

func TestRegistry_InvokeEmptyArgumentsBecomeObject(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&MockToolWithBestPractices{})

	for _, params := range []string{"", "null", "  "} {
		result, err := registry.Invoke(context.Background(), "mock_tool_with_bp", json.RawMessage(params))
		if err != nil {
			t.Fatalf("params %q: Invoke failed: %v", params, err)
		}
		if result.Output != "mock output: {}" {
			t.Errorf("params %q: expected normalized {}, got %q", params, result.Output)
		}
	}
}

func TestRegistry_GetToolBestPractices_Empty(t *testing.T) {
	registry := NewRegistry()

	practices := registry.GetToolBestPractices()
	if practices != "" {
		t.Errorf("Expected empty string when no tools registered, got: %s", practices)
	}
}

func TestRegistry_GetToolBestPractices_Mixed(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(&MockToolWithBestPractices{}); err != nil {
		t.Fatalf("Failed to register tool1: %v", err)
	}
	if err := registry.Register(&MockToolWithoutBestPractices{}); err != nil {
		t.Fatalf("Failed to register tool2: %v", err)
	}

	practices := registry.GetToolBestPractices()

	if !strings.Contains(practices, "# Tool Usage Best Practices") {
		t.Error("Best practices should contain header")
	}
	if !strings.Contains(practices, "Always use param X") {
		t.Error("Best practices should contain specific practice text")
	}
	if strings.Contains(practices, "mock_tool_without_bp") {
		t.Error("Best practices should not reference tools without best practices")
	}
}
