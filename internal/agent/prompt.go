package agent

import (
	"fmt"
	"os"
	"strings"

	"txagent/internal/tool"
)

// NoDataAnswer is the fixed reply for questions the retrieved data cannot answer.
const NoDataAnswer = "no information available in the provided data for this question"

// DefaultSystemPrompt is the directive used when no prompt file is configured.
var DefaultSystemPrompt = `You are an assistant answering questions about a client's financial transactions.

Rules:
1. Use only facts returned by tools in this conversation. Never invent transactions, amounts, dates or counterparties.
2. To look up transactions call get_client_transactions. Use get_current_date to turn relative periods into explicit dates.
3. Do not forecast, project or give recommendations.
4. If the retrieved transactions are empty or do not contain what the question needs, answer exactly:
   "` + NoDataAnswer + `"
5. If a tool returns an error, say that the data could not be retrieved. Do not guess.
6. When meta.has_more is true, state that the list is incomplete.`

// LoadSystemPrompt reads the directive from path, or returns the default when path is empty.
func LoadSystemPrompt(path string) (string, error) {
	if path == "" {
		return DefaultSystemPrompt, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read system prompt: %w", err)
	}

	prompt := strings.TrimSpace(string(data))
	if prompt == "" {
		return "", fmt.Errorf("system prompt file %s is empty", path)
	}
	return prompt, nil
}

// BuildSystemPrompt appends the registry's tool usage notes to base.
func BuildSystemPrompt(base string, registry *tool.Registry) string {
	practices := registry.GetToolBestPractices()
	if practices == "" {
		return base
	}
	return base + "\n\n" + practices
}
