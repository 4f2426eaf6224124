package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resty.dev/v3"

	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/internal/report"
)

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(body))
}

func TestClient_GenerateLeads(t *testing.T) {
	tests := []struct {
		name              string
		request           inference.GenerateLeadsRequest
		mockServerHandler func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request)

		wantResponse    inference.GenerateLeadsResponse
		wantCalls       int32
		wantError       bool
		wantErrorString string
	}{
		{
			name:    "Success with text blocks, citations and web searches",
			request: inference.GenerateLeadsRequest{Prompt: "find leads"},
			mockServerHandler: func(t *testing.T, _ int32, w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/v1/messages", r.URL.Path)
				assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
				assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

				var reqBody MessagesRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
				assert.Equal(t, "claude-test", reqBody.Model)
				assert.Equal(t, 4096, reqBody.MaxTokens)
				require.Len(t, reqBody.Messages, 1)
				assert.Equal(t, Message{Role: "user", Content: "find leads"}, reqBody.Messages[0])
				assert.Equal(t, []Tool{{Type: "web_search_20250305", Name: "web_search", MaxUses: 100}}, reqBody.Tools)

				writeJSON(t, w, http.StatusOK, MessagesResponse{
					ID:         "msg_1",
					Model:      "claude-test",
					StopReason: "end_turn",
					Content: []ContentBlock{
						{Type: "text", Text: "## Lead 1: Acme"},
						{Type: "server_tool_use"},
						{Type: "web_search_tool_result"},
						{
							Type: "text",
							Text: "- **Email:** info@acme.example.com",
							Citations: []Citation{
								{Type: "web_search_result_location", URL: "https://acme.example.com", Title: "Acme", CitedText: "Contact us"},
								{Type: "web_search_result_location", URL: "https://acme.example.com", Title: "Acme", CitedText: "Contact us"},
								{Type: "web_search_result_location", URL: "https://news.example.com", Title: "News"},
							},
						},
					},
					Usage: Usage{InputTokens: 10, OutputTokens: 20, ServerToolUse: ServerToolUse{WebSearchRequests: 4}},
				})
			},
			wantResponse: inference.GenerateLeadsResponse{
				Content: "## Lead 1: Acme\n\n- **Email:** info@acme.example.com",
				Citations: []report.Citation{
					{Title: "Acme", URL: "https://acme.example.com", CitedText: "Contact us"},
					{Title: "News", URL: "https://news.example.com"},
				},
				WebSearchCount: 4,
			},
			wantCalls: 1,
		},
		{
			name:    "Retries server errors",
			request: inference.GenerateLeadsRequest{Prompt: "find leads"},
			mockServerHandler: func(t *testing.T, calls int32, w http.ResponseWriter, r *http.Request) {
				if calls == 1 {
					writeJSON(t, w, 529, map[string]any{
						"type":  "error",
						"error": map[string]string{"type": "overloaded_error", "message": "Overloaded"},
					})
					return
				}
				writeJSON(t, w, http.StatusOK, MessagesResponse{
					Content: []ContentBlock{{Type: "text", Text: "No leads found."}},
				})
			},
			wantResponse: inference.GenerateLeadsResponse{Content: "No leads found."},
			wantCalls:    2,
		},
		{
			name:    "Does not retry authentication errors",
			request: inference.GenerateLeadsRequest{Prompt: "find leads"},
			mockServerHandler: func(t *testing.T, _ int32, w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusUnauthorized, map[string]any{
					"type":  "error",
					"error": map[string]string{"type": "authentication_error", "message": "invalid x-api-key"},
				})
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "response error 401: invalid x-api-key",
		},
		{
			name:    "Empty content",
			request: inference.GenerateLeadsRequest{Prompt: "find leads"},
			mockServerHandler: func(t *testing.T, _ int32, w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, http.StatusOK, MessagesResponse{})
			},
			wantCalls:       1,
			wantError:       true,
			wantErrorString: "empty response content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.mockServerHandler(t, calls.Add(1), w, r)
			}))
			defer server.Close()

			client := &Client{
				httpClient: resty.New().
					SetBaseURL(server.URL).
					SetHeader("x-api-key", "test-key").
					SetHeader("anthropic-version", apiVersion),
				model:            "claude-test",
				maxTokens:        DefaultMaxTokens,
				maxWebSearches:   DefaultMaxWebSearches,
				maxRetryAttempts: 1,
				retryDelay:       time.Millisecond,
			}
			defer client.Close()

			gotResponse, gotErr := client.GenerateLeads(context.Background(), tt.request)
			assert.Equal(t, tt.wantCalls, calls.Load())

			if tt.wantError {
				require.Error(t, gotErr)
				if tt.wantErrorString != "" {
					assert.Contains(t, gotErr.Error(), tt.wantErrorString)
				}
				return
			}

			require.NoError(t, gotErr)
			assert.Equal(t, tt.wantResponse, gotResponse)
		})
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient("key", "", Options{})
	defer client.Close()

	assert.Equal(t, DefaultModel, client.GetModel())
	assert.Equal(t, DefaultMaxTokens, client.maxTokens)
	assert.Equal(t, DefaultMaxWebSearches, client.maxWebSearches)
}
