package tool

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is a named capability the model can call. Tools only read; whatever
// they return is handed to the model verbatim.
type Tool interface {
	Name() string

	// Description is the model-facing contract: what the tool returns and
	// what it must not be used for.
	Description() string

	// BestPractices is appended to the system directive; empty when there is nothing to add.
	BestPractices() string

	// Parameters is the argument schema. Registry.Invoke validates against it
	// before Execute is called.
	Parameters() *jsonschema.Schema

	Execute(ctx context.Context, params json.RawMessage) (*Result, error)
}

// Result is the outcome of one Execute. Output is what the model sees.
// A tool that ran but could not do its job sets Success false and Error;
// Go errors are reserved for taxonomy failures (see errors.go).
type Result struct {
	Success bool
	Output  string
	Error   string
	Data    map[string]any
}

// OK returns a successful result with output shown to the model.
func OK(output string) *Result {
	return &Result{Success: true, Output: output}
}

// Failed returns an unsuccessful result with a reason for the model.
func Failed(reason string) *Result {
	return &Result{Success: false, Error: reason}
}

// CallResult records one model-requested call as executed.
type CallResult struct {
	ToolName  string
	CallID    string
	Params    json.RawMessage
	Result    *Result
	StartTime time.Time
	EndTime   time.Time
}

func (c *CallResult) Duration() time.Duration {
	return c.EndTime.Sub(c.StartTime)
}
