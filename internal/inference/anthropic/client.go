// Package anthropic generates leads with Claude and its server-side web
// search tool.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/internal/report"
)

const (
	DefaultBaseURL        = "https://api.anthropic.com"
	DefaultModel          = "claude-haiku-4-5-20251001"
	DefaultMaxTokens      = 4096
	DefaultMaxWebSearches = 100

	apiVersion = "2023-06-01"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxTokens        int
	maxWebSearches   int
	maxRetryAttempts uint
	retryDelay       time.Duration
}

// Options tunes a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL          string
	MaxTokens        int
	MaxWebSearches   int
	MaxRetryAttempts uint
}

func NewClient(apiKey, model string, opts Options) *Client {
	if model == "" {
		model = DefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.MaxWebSearches <= 0 {
		opts.MaxWebSearches = DefaultMaxWebSearches
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/"))
	client.SetHeader("x-api-key", apiKey)
	client.SetHeader("anthropic-version", apiVersion)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		maxTokens:        opts.MaxTokens,
		maxWebSearches:   opts.MaxWebSearches,
		maxRetryAttempts: opts.MaxRetryAttempts,
		retryDelay:       time.Second,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

type MessagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
	Tools     []Tool    `json:"tools,omitempty"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Tool struct {
	Type    string `json:"type"`
	Name    string `json:"name"`
	MaxUses int    `json:"max_uses,omitempty"`
}

type MessagesResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Content    []ContentBlock `json:"content"`
	Usage      Usage          `json:"usage"`
}

// ContentBlock is one block of the answer. Only text blocks are read; tool
// use and search result blocks are skipped.
type ContentBlock struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Citations []Citation `json:"citations,omitempty"`
}

type Citation struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	CitedText string `json:"cited_text"`
}

type Usage struct {
	InputTokens   int           `json:"input_tokens"`
	OutputTokens  int           `json:"output_tokens"`
	ServerToolUse ServerToolUse `json:"server_tool_use"`
}

type ServerToolUse struct {
	WebSearchRequests int `json:"web_search_requests"`
}

type ErrorResponse struct {
	Type  string `json:"type"`
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateLeads implements the inference.Client interface
func (client *Client) GenerateLeads(
	ctx context.Context,
	params inference.GenerateLeadsRequest,
) (inference.GenerateLeadsResponse, error) {
	return inference.Retry(ctx, client.maxRetryAttempts, client.retryDelay, func() (inference.GenerateLeadsResponse, error) {
		return client.generateLeads(ctx, params)
	})
}

func (client *Client) getRequestBody(params inference.GenerateLeadsRequest) MessagesRequest {
	return MessagesRequest{
		Model:     client.model,
		MaxTokens: client.maxTokens,
		Messages: []Message{
			{Role: "user", Content: params.Prompt},
		},
		Tools: []Tool{
			{Type: "web_search_20250305", Name: "web_search", MaxUses: client.maxWebSearches},
		},
	}
}

func (client *Client) generateLeads(
	ctx context.Context,
	params inference.GenerateLeadsRequest,
) (inference.GenerateLeadsResponse, error) {
	requestBody := client.getRequestBody(params)

	startedAt := time.Now()
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&MessagesResponse{}).
		Post("/v1/messages")
	if err != nil {
		return inference.GenerateLeadsResponse{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		message := response.String()
		var errorBody ErrorResponse
		if err := json.Unmarshal([]byte(message), &errorBody); err == nil && errorBody.Error.Message != "" {
			message = errorBody.Error.Message
		}
		return inference.GenerateLeadsResponse{}, fmt.Errorf("response error %d: %s", response.StatusCode(), message)
	}

	responseBody, ok := response.Result().(*MessagesResponse)
	if !ok || responseBody == nil || len(responseBody.Content) == 0 {
		return inference.GenerateLeadsResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}

	result := toGenerateLeadsResponse(*responseBody)
	slog.Default().Debug("anthropic response",
		"model", responseBody.Model,
		"stopReason", responseBody.StopReason,
		"webSearches", result.WebSearchCount,
		"citations", len(result.Citations),
		"inputTokens", responseBody.Usage.InputTokens,
		"outputTokens", responseBody.Usage.OutputTokens,
		"elapsed", time.Since(startedAt),
	)
	return result, nil
}

// toGenerateLeadsResponse joins the text blocks and collects their citations,
// dropping exact duplicates.
func toGenerateLeadsResponse(body MessagesResponse) inference.GenerateLeadsResponse {
	var texts []string
	var citations []report.Citation
	seen := make(map[report.Citation]bool)
	for _, block := range body.Content {
		if block.Type != "text" {
			continue
		}
		texts = append(texts, block.Text)
		for _, c := range block.Citations {
			citation := report.Citation{Title: c.Title, URL: c.URL, CitedText: c.CitedText}
			if seen[citation] {
				continue
			}
			seen[citation] = true
			citations = append(citations, citation)
		}
	}
	return inference.GenerateLeadsResponse{
		Content:        strings.Join(texts, "\n\n"),
		Citations:      citations,
		WebSearchCount: body.Usage.ServerToolUse.WebSearchRequests,
	}
}
