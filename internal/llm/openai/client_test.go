package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"txagent/internal/llm"

	"github.com/google/jsonschema-go/jsonschema"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(req openai.ChatCompletionRequest) (int, any)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Chat_FinalAnswer(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newTestServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		got = req
		return http.StatusOK, openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message:      openai.ChatCompletionMessage{Role: "assistant", Content: "hello"},
				FinishReason: openai.FinishReasonStop,
			}},
			Usage: openai.Usage{PromptTokens: 3, CompletionTokens: 1, TotalTokens: 4},
		}
	})

	client := NewClient("test-key", "test-model", Options{BaseURL: srv.URL})
	resp, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "be factual"},
			{Role: llm.RoleUser, Content: "hi"},
		},
		Tools: []*llm.ToolDefinition{{
			Type: "function",
			Function: &llm.FunctionDef{
				Name:        "get_client_transactions",
				Description: "raw data",
				Parameters:  &jsonschema.Schema{Type: "object"},
			},
		}},
		Temperature: 0.1,
	})
	require.NoError(t, err)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	require.Len(t, got.Tools, 1)
	assert.Equal(t, "get_client_transactions", got.Tools[0].Function.Name)

	assert.Equal(t, llm.StopReasonStop, resp.StopReason)
	assert.Equal(t, "hello", resp.Message.Content)
	assert.Equal(t, llm.RoleAssistant, resp.Message.Role)
	assert.Equal(t, 4, resp.Usage.TotalTokens)
}

func TestClient_Chat_ToolCalls(t *testing.T) {
	srv := newTestServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{{
				Message: openai.ChatCompletionMessage{
					Role: "assistant",
					ToolCalls: []openai.ToolCall{{
						ID:   "call_1",
						Type: openai.ToolTypeFunction,
						Function: openai.FunctionCall{
							Name:      "get_client_transactions",
							Arguments: `{"limit":5}`,
						},
					}},
				},
				// Local servers sometimes send "stop" here.
				FinishReason: openai.FinishReasonStop,
			}},
		}
	})

	client := NewClient("k", "m", Options{BaseURL: srv.URL})
	resp, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "show"}},
	})
	require.NoError(t, err)

	assert.Equal(t, llm.StopReasonToolCalls, resp.StopReason)
	require.Len(t, resp.Message.ToolCalls, 1)
	assert.Equal(t, "call_1", resp.Message.ToolCalls[0].ID)
	assert.Equal(t, `{"limit":5}`, resp.Message.ToolCalls[0].Function.Arguments)
}

func TestClient_Chat_ServiceErrorIsWrapped(t *testing.T) {
	srv := newTestServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusInternalServerError, map[string]any{
			"error": map[string]any{"message": "boom", "type": "server_error"},
		}
	})

	client := NewClient("k", "m", Options{BaseURL: srv.URL})
	_, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, llm.ErrModelService))
}

func TestClient_Chat_NoChoices(t *testing.T) {
	srv := newTestServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		return http.StatusOK, openai.ChatCompletionResponse{}
	})

	client := NewClient("k", "m", Options{BaseURL: srv.URL})
	_, err := client.Chat(context.Background(), &llm.ChatRequest{
		Messages: []llm.Message{{Role: llm.RoleUser, Content: "hi"}},
	})
	assert.ErrorIs(t, err, llm.ErrModelService)
}

func TestConvertMessages_ToolResultKeepsPayload(t *testing.T) {
	payload := `{"meta":{"limit":2,"returned":1,"has_more":false},"transactions":[{"transaction_id":"t1","dt":"2024-01-02","amount":"10.50","currency":"EUR","counterparty":"Shop"}]}`

	msgs := convertMessages([]llm.Message{
		{
			Role: llm.RoleAssistant,
			ToolCalls: []*llm.ToolCall{{
				ID:       "call_9",
				Type:     "function",
				Function: &llm.FunctionCall{Name: "get_client_transactions", Arguments: `{"limit":2}`},
			}},
		},
		{Role: llm.RoleTool, ToolCallID: "call_9", Name: "get_client_transactions", Content: payload},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, "call_9", msgs[0].ToolCalls[0].ID)
	assert.Equal(t, "call_9", msgs[1].ToolCallID)
	assert.JSONEq(t, payload, msgs[1].Content)
}
