package builtin

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateTool_Execute(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)
	dateTool := NewDateTool(func() time.Time { return fixed }, time.UTC)

	result, err := dateTool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.JSONEq(t, `{"date":"2024-06-15","weekday":"Saturday","timezone":"UTC"}`, result.Output)
}

func TestDateTool_UsesLocation(t *testing.T) {
	fixed := time.Date(2024, 6, 15, 23, 30, 0, 0, time.UTC)
	plus3 := time.FixedZone("UTC+3", 3*60*60)
	dateTool := NewDateTool(func() time.Time { return fixed }, plus3)

	result, err := dateTool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.Contains(t, result.Output, `"date":"2024-06-16"`)
}
