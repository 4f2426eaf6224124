package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/leadgen/internal/assets"
	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/history"
	"github.com/at-ishikawa/leadgen/internal/inference"
	mock_history "github.com/at-ishikawa/leadgen/internal/mocks/history"
	mock_inference "github.com/at-ishikawa/leadgen/internal/mocks/inference"
	"github.com/at-ishikawa/leadgen/internal/report"
	"github.com/at-ishikawa/leadgen/internal/testutil"
)

const validQueryYAML = `company_description: HR software for factories
locations: [Berlin]
industry: [Manufacturing]
company_size_max: "200"
search_mode: loose
max_results: 5
`

func TestGenerator_Run(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name        string
		query       string
		opts        generateOptions
		setupConfig func(cfg *config.Config)
		setupMocks  func(client *mock_inference.MockClient, repo *mock_history.MockRepository)
		wantModel   string
		wantOutput  string
		wantErr     string
	}{
		{
			name:  "writes the report and records it",
			query: validQueryYAML,
			opts:  generateOptions{model: "claude-sonnet-4-5"},
			setupMocks: func(client *mock_inference.MockClient, repo *mock_history.MockRepository) {
				client.EXPECT().GenerateLeads(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req inference.GenerateLeadsRequest) (inference.GenerateLeadsResponse, error) {
						assert.Contains(t, req.Prompt, "SEARCH MODE: LOOSE")
						assert.Contains(t, req.Prompt, "List at most 5 leads.")
						assert.Contains(t, req.Prompt, "Company Size: Any to 200 employees")
						return inference.GenerateLeadsResponse{
							Content:        "## Lead 1: Acme GmbH\n- Website: acme.example",
							Citations:      []report.Citation{{Title: "Acme"}},
							WebSearchCount: 2,
						}, nil
					})
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, entry *history.Entry) error {
						assert.Equal(t, inference.ProviderClaude, entry.Provider)
						assert.Equal(t, 2, entry.WebSearchCount)
						assert.Equal(t, inference.FlexInt(200), entry.Query.CompanySizeMax)
						assert.Equal(t, "## Lead 1: Acme GmbH\n- Website: acme.example...", entry.Summary)
						return nil
					})
			},
			wantModel:  "claude-sonnet-4-5",
			wantOutput: "Provider: claude, web searches: 2, sources: 1, history id: ",
		},
		{
			name:  "history failures are only logged",
			query: validQueryYAML,
			setupMocks: func(client *mock_inference.MockClient, repo *mock_history.MockRepository) {
				client.EXPECT().GenerateLeads(gomock.Any(), gomock.Any()).
					Return(inference.GenerateLeadsResponse{Content: "## Lead 1: Acme"}, nil)
				repo.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))
			},
			wantOutput: "Wrote ",
		},
		{
			name:    "invalid query",
			query:   "company_description: HR software\n",
			wantErr: "locations must contain at least 1 item",
		},
		{
			name:    "unknown provider",
			query:   validQueryYAML,
			opts:    generateOptions{provider: "openai"},
			wantErr: "unsupported provider",
		},
		{
			name:        "missing API key",
			query:       validQueryYAML,
			setupConfig: func(cfg *config.Config) { cfg.Anthropic.APIKey = "" },
			wantErr:     "API key is required for claude",
		},
		{
			name:  "provider failure",
			query: validQueryYAML,
			setupMocks: func(client *mock_inference.MockClient, repo *mock_history.MockRepository) {
				client.EXPECT().GenerateLeads(gomock.Any(), gomock.Any()).
					Return(inference.GenerateLeadsResponse{}, errors.New("response error 401: invalid x-api-key"))
			},
			wantErr: "invalid x-api-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_inference.NewMockClient(ctrl)
			repo := mock_history.NewMockRepository(ctrl)
			if tt.setupMocks != nil {
				tt.setupMocks(client, repo)
			}

			cfg := &config.Config{
				Anthropic: config.AnthropicConfig{APIKey: "sk-ant-test"},
				Inference: config.InferenceConfig{DefaultProvider: "claude"},
			}
			if tt.setupConfig != nil {
				tt.setupConfig(cfg)
			}
			tmpl, err := assets.ParsePromptTemplate("")
			require.NoError(t, err)

			var gotModel string
			var out bytes.Buffer
			g := &generator{
				cfg: cfg,
				newClient: func(p inference.Provider, apiKey, model string) (inference.Client, error) {
					assert.Equal(t, "sk-ant-test", apiKey)
					gotModel = model
					return client, nil
				},
				history:        repo,
				builder:        newTestBuilder(),
				promptTemplate: tmpl,
				now:            func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
				out:            &out,
			}

			dir := t.TempDir()
			opts := tt.opts
			opts.queryFile = testutil.WriteFile(t, dir, "query.yml", tt.query)
			opts.output = filepath.Join(dir, "leads.pdf")

			err = g.run(context.Background(), opts)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				assert.NoFileExists(t, opts.output)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantModel, gotModel)

			pdfBytes, err := os.ReadFile(opts.output)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(pdfBytes, []byte("%PDF-")))
			assert.Contains(t, out.String(), tt.wantOutput)
		})
	}
}
