package inference

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/leadgen/internal/report"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the methods for AI lead generation
type Client interface {
	GenerateLeads(ctx context.Context, params GenerateLeadsRequest) (GenerateLeadsResponse, error)
}

// GenerateLeadsRequest holds the rendered prompt sent to the provider
type GenerateLeadsRequest struct {
	Prompt string `json:"prompt"`
}

// GenerateLeadsResponse is the Markdown answer of a provider with the sources
// its web search cited
type GenerateLeadsResponse struct {
	Content        string            `json:"content"`
	Citations      []report.Citation `json:"citations"`
	WebSearchCount int               `json:"web_search_count"`
}

// Provider names an LLM backend
type Provider string

const (
	ProviderClaude Provider = "claude"
	ProviderGemini Provider = "gemini"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported provider")
	ErrMissingAPIKey       = errors.New("API key is required")
)

const (
	DefaultMaxRetryAttempts = 3
)

// ParseProvider validates a provider name. An empty name selects fallback.
func ParseProvider(name string, fallback Provider) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case "":
		return fallback, nil
	case ProviderClaude, ProviderGemini:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
	}
}
