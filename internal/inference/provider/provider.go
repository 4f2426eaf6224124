// Package provider builds the inference client of a configured provider.
package provider

import (
	"fmt"
	"io"
	"strings"

	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/internal/inference/anthropic"
	"github.com/at-ishikawa/leadgen/internal/inference/gemini"
)

// Client is an inference client holding an HTTP connection pool.
type Client interface {
	inference.Client
	io.Closer
}

// NewClient returns the client of provider p. An empty model selects the
// configured model of p.
func NewClient(p inference.Provider, apiKey, model string, cfg *config.Config) (Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, inference.ErrMissingAPIKey
	}
	if model == "" {
		model = cfg.Model(string(p))
	}

	switch p {
	case inference.ProviderClaude:
		return anthropic.NewClient(apiKey, model, anthropic.Options{
			BaseURL:          cfg.Anthropic.BaseURL,
			MaxTokens:        cfg.Anthropic.MaxTokens,
			MaxWebSearches:   cfg.Anthropic.MaxWebSearches,
			MaxRetryAttempts: cfg.Inference.MaxRetryAttempts,
		}), nil
	case inference.ProviderGemini:
		return gemini.NewClient(apiKey, model, gemini.Options{
			BaseURL:          cfg.Gemini.BaseURL,
			MaxRetryAttempts: cfg.Inference.MaxRetryAttempts,
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", inference.ErrUnsupportedProvider, p)
	}
}
