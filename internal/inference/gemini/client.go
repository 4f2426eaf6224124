// Package gemini generates leads with Gemini grounded by Google Search.
package gemini

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
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	retryDelay       time.Duration
}

// Options tunes a Client. Zero values fall back to the defaults above.
type Options struct {
	BaseURL          string
	MaxRetryAttempts uint
}

func NewClient(apiKey, model string, opts Options) *Client {
	if model == "" {
		model = DefaultModel
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimSuffix(opts.BaseURL, "/"))
	client.SetHeader("x-goog-api-key", apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
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

type GenerateContentRequest struct {
	Contents []Content `json:"contents"`
	Tools    []Tool    `json:"tools,omitempty"`
}

type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

type Part struct {
	Text string `json:"text,omitempty"`
}

type Tool struct {
	GoogleSearch *GoogleSearch `json:"google_search,omitempty"`
}

type GoogleSearch struct{}

type GenerateContentResponse struct {
	Candidates    []Candidate   `json:"candidates"`
	UsageMetadata UsageMetadata `json:"usageMetadata"`
	ModelVersion  string        `json:"modelVersion"`
}

type Candidate struct {
	Content           Content            `json:"content"`
	FinishReason      string             `json:"finishReason"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GroundingMetadata struct {
	WebSearchQueries  []string           `json:"webSearchQueries"`
	GroundingChunks   []GroundingChunk   `json:"groundingChunks"`
	GroundingSupports []GroundingSupport `json:"groundingSupports"`
}

type GroundingChunk struct {
	Web *WebChunk `json:"web,omitempty"`
}

type WebChunk struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type GroundingSupport struct {
	Segment               Segment `json:"segment"`
	GroundingChunkIndices []int   `json:"groundingChunkIndices"`
}

type Segment struct {
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
	Text       string `json:"text"`
}

type UsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type ErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
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

func (client *Client) generateLeads(
	ctx context.Context,
	params inference.GenerateLeadsRequest,
) (inference.GenerateLeadsResponse, error) {
	requestBody := GenerateContentRequest{
		Contents: []Content{
			{Role: "user", Parts: []Part{{Text: params.Prompt}}},
		},
		Tools: []Tool{
			{GoogleSearch: &GoogleSearch{}},
		},
	}

	startedAt := time.Now()
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&GenerateContentResponse{}).
		Post("/v1beta/models/" + client.model + ":generateContent")
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

	responseBody, ok := response.Result().(*GenerateContentResponse)
	if !ok || responseBody == nil || len(responseBody.Candidates) == 0 {
		return inference.GenerateLeadsResponse{}, fmt.Errorf("empty response body or candidates: %s", response.String())
	}

	result := toGenerateLeadsResponse(responseBody.Candidates[0])
	if result.Content == "" {
		return inference.GenerateLeadsResponse{}, fmt.Errorf("empty response content: %s", response.String())
	}
	slog.Default().Debug("gemini response",
		"model", responseBody.ModelVersion,
		"finishReason", responseBody.Candidates[0].FinishReason,
		"webSearches", result.WebSearchCount,
		"citations", len(result.Citations),
		"promptTokens", responseBody.UsageMetadata.PromptTokenCount,
		"candidatesTokens", responseBody.UsageMetadata.CandidatesTokenCount,
		"elapsed", time.Since(startedAt),
	)
	return result, nil
}

// toGenerateLeadsResponse joins the candidate's text parts and turns each web
// grounding chunk into a citation. The cited text is the first supported
// segment that references the chunk.
func toGenerateLeadsResponse(candidate Candidate) inference.GenerateLeadsResponse {
	var texts []string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			texts = append(texts, part.Text)
		}
	}
	result := inference.GenerateLeadsResponse{
		Content: strings.Join(texts, ""),
	}

	grounding := candidate.GroundingMetadata
	if grounding == nil {
		return result
	}
	result.WebSearchCount = len(grounding.WebSearchQueries)

	citedText := make(map[int]string)
	for _, support := range grounding.GroundingSupports {
		for _, index := range support.GroundingChunkIndices {
			if _, ok := citedText[index]; !ok {
				citedText[index] = support.Segment.Text
			}
		}
	}
	for i, chunk := range grounding.GroundingChunks {
		if chunk.Web == nil {
			continue
		}
		result.Citations = append(result.Citations, report.Citation{
			Title:     chunk.Web.Title,
			URL:       chunk.Web.URI,
			CitedText: citedText[i],
		})
	}
	return result
}
