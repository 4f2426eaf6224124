package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"text/template"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/leadgen/internal/assets"
	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/history"
	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/internal/inference/provider"
	"github.com/at-ishikawa/leadgen/internal/report"
)

type generateOptions struct {
	queryFile string
	provider  string
	model     string
	output    string
}

// generator runs one lead search from a query file to a PDF on disk.
type generator struct {
	cfg            *config.Config
	newClient      func(p inference.Provider, apiKey, model string) (inference.Client, error)
	history        history.Repository
	builder        *report.Builder
	promptTemplate *template.Template
	now            func() time.Time
	out            io.Writer
}

func newGenerateCommand() *cobra.Command {
	var opts generateOptions

	command := &cobra.Command{
		Use:   "generate",
		Short: "Search for leads with a provider and write the PDF report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			builder, err := report.NewBuilderFromConfig(cfg.Report)
			if err != nil {
				return fmt.Errorf("report.NewBuilderFromConfig() > %w", err)
			}
			tmpl, err := assets.ParsePromptTemplate(cfg.Templates.PromptFile)
			if err != nil {
				return fmt.Errorf("assets.ParsePromptTemplate() > %w", err)
			}
			repo, closeRepo, err := history.NewRepository(cmd.Context(), cfg.History)
			if err != nil {
				return fmt.Errorf("history.NewRepository() > %w", err)
			}
			defer func() {
				_ = closeRepo()
			}()

			g := &generator{
				cfg: cfg,
				newClient: func(p inference.Provider, apiKey, model string) (inference.Client, error) {
					return provider.NewClient(p, apiKey, model, cfg)
				},
				history:        repo,
				builder:        builder,
				promptTemplate: tmpl,
				now:            time.Now,
				out:            cmd.OutOrStdout(),
			}
			return g.run(cmd.Context(), opts)
		},
	}

	command.Flags().StringVarP(&opts.queryFile, "query", "q", "", "YAML file with the lead query")
	command.Flags().StringVar(&opts.provider, "provider", "", "provider to use (claude or gemini); defaults to inference.default_provider")
	command.Flags().StringVar(&opts.model, "model", "", "model name; defaults to the configured model of the provider")
	command.Flags().StringVarP(&opts.output, "output", "o", "leads.pdf", "output PDF path")
	_ = command.MarkFlagRequired("query")

	return command
}

func (g *generator) run(ctx context.Context, opts generateOptions) error {
	logger := slog.Default()

	var query inference.LeadQuery
	if err := readYAMLFile(opts.queryFile, &query); err != nil {
		return err
	}
	validator, err := config.NewValidator("yaml")
	if err != nil {
		return fmt.Errorf("config.NewValidator() > %w", err)
	}
	if err := validator.Struct(query); err != nil {
		return fmt.Errorf("invalid query in %s: %w", opts.queryFile, err)
	}
	query = query.WithDefaults()

	p, err := inference.ParseProvider(opts.provider, inference.Provider(g.cfg.Inference.DefaultProvider))
	if err != nil {
		return err
	}
	apiKey := g.cfg.APIKey(string(p))
	if apiKey == "" {
		return fmt.Errorf("%w for %s", inference.ErrMissingAPIKey, p)
	}

	prompt, err := inference.BuildPrompt(g.promptTemplate, query)
	if err != nil {
		return fmt.Errorf("inference.BuildPrompt() > %w", err)
	}
	logger.Debug("built the prompt", "provider", p, "prompt", prompt)

	client, err := g.newClient(p, apiKey, opts.model)
	if err != nil {
		return fmt.Errorf("newClient(%s) > %w", p, err)
	}
	if closer, ok := client.(io.Closer); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	generated, err := client.GenerateLeads(ctx, inference.GenerateLeadsRequest{Prompt: prompt})
	if err != nil {
		return fmt.Errorf("client.GenerateLeads() > %w", err)
	}

	pdfBytes, err := g.builder.Build(generated.Content, generated.Citations, query.Criteria())
	if err != nil {
		return fmt.Errorf("builder.Build() > %w", err)
	}
	if err := writeFile(opts.output, pdfBytes); err != nil {
		return err
	}

	entry := history.NewEntry(g.now(), p, query)
	entry.Summary = history.Summarize(generated.Content)
	entry.WebSearchCount = generated.WebSearchCount
	entry.PDFBase64 = base64.StdEncoding.EncodeToString(pdfBytes)
	if err := g.history.Save(ctx, entry); err != nil {
		logger.Warn("failed to save the history entry", "id", entry.ID, "error", err)
	}

	green := color.New(color.FgGreen)
	if _, err := green.Fprintf(g.out, "Wrote %s (%d bytes)\n", opts.output, len(pdfBytes)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(g.out, "Provider: %s, web searches: %d, sources: %d, history id: %s\n",
		p, generated.WebSearchCount, len(generated.Citations), entry.ID)
	return err
}
