package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/at-ishikawa/leadgen/internal/report"
)

type renderOptions struct {
	markdownFile  string
	criteriaFile  string
	citationsFile string
	output        string
}

func newRenderCommand() *cobra.Command {
	var opts renderOptions

	command := &cobra.Command{
		Use:   "render <markdown-file>",
		Short: "Render a Markdown lead list into a PDF report without calling a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			builder, err := report.NewBuilderFromConfig(cfg.Report)
			if err != nil {
				return fmt.Errorf("report.NewBuilderFromConfig() > %w", err)
			}

			opts.markdownFile = args[0]
			return runRender(cmd.OutOrStdout(), builder, opts)
		},
	}

	command.Flags().StringVar(&opts.criteriaFile, "criteria", "", "YAML file with the search criteria to print")
	command.Flags().StringVar(&opts.citationsFile, "citations", "", "YAML file with the list of cited sources")
	command.Flags().StringVarP(&opts.output, "output", "o", "leads.pdf", "output PDF path")

	return command
}

func runRender(w io.Writer, builder *report.Builder, opts renderOptions) error {
	body, err := os.ReadFile(opts.markdownFile)
	if err != nil {
		return fmt.Errorf("os.ReadFile(%s) > %w", opts.markdownFile, err)
	}

	var criteria report.SearchCriteria
	if opts.criteriaFile != "" {
		if err := readYAMLFile(opts.criteriaFile, &criteria); err != nil {
			return err
		}
	}
	var citations []report.Citation
	if opts.citationsFile != "" {
		if err := readYAMLFile(opts.citationsFile, &citations); err != nil {
			return err
		}
	}

	pdfBytes, err := builder.Build(string(body), citations, criteria)
	if err != nil {
		return fmt.Errorf("builder.Build() > %w", err)
	}
	if err := writeFile(opts.output, pdfBytes); err != nil {
		return err
	}

	_, err = color.New(color.FgGreen).Fprintf(w, "Wrote %s (%d bytes)\n", opts.output, len(pdfBytes))
	return err
}

func readYAMLFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("yaml.Unmarshal(%s) > %w", path, err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("os.MkdirAll(%s) > %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("os.WriteFile(%s) > %w", path, err)
	}
	return nil
}
