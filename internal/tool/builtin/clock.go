package builtin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"txagent/internal/tool"

	"github.com/google/jsonschema-go/jsonschema"
)

const DateToolName = "get_current_date"

// DateTool reports today's date so the model can turn relative periods into explicit bounds
type DateTool struct {
	now func() time.Time
	loc *time.Location
}

func NewDateTool(now func() time.Time, loc *time.Location) *DateTool {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &DateTool{now: now, loc: loc}
}

func (t *DateTool) Name() string {
	return DateToolName
}

func (t *DateTool) Description() string {
	return `Returns the current date (YYYY-MM-DD), weekday and time zone.
Use it to resolve relative periods such as "last month" or "this year" into explicit dates.`
}

func (t *DateTool) BestPractices() string {
	return ""
}

func (t *DateTool) Parameters() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
}

func (t *DateTool) Execute(ctx context.Context, params json.RawMessage) (*tool.Result, error) {
	now := t.now().In(t.loc)

	out, err := json.Marshal(struct {
		Date     string `json:"date"`
		Weekday  string `json:"weekday"`
		Timezone string `json:"timezone"`
	}{
		Date:     now.Format(dateLayout),
		Weekday:  now.Weekday().String(),
		Timezone: t.loc.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode date: %w", err)
	}

	return tool.OK(string(out)), nil
}
