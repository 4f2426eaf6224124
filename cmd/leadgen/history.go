package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/leadgen/internal/history"
)

func newHistoryCommand() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previously generated reports",
	}

	historyCmd.AddCommand(newHistoryListCommand())
	historyCmd.AddCommand(newHistoryExportCommand())

	return historyCmd
}

func openHistory(cmd *cobra.Command) (history.Repository, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	repo, closeRepo, err := history.NewRepository(cmd.Context(), cfg.History)
	if err != nil {
		return nil, nil, fmt.Errorf("history.NewRepository() > %w", err)
	}
	return repo, closeRepo, nil
}

func newHistoryListCommand() *cobra.Command {
	var limit int

	command := &cobra.Command{
		Use:   "list",
		Short: "List the most recent reports",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeRepo()
			}()

			entries, err := repo.List(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("repo.List() > %w", err)
			}
			return printHistory(cmd.OutOrStdout(), entries)
		},
	}
	command.Flags().IntVar(&limit, "limit", history.DefaultListLimit, "maximum number of reports to list")

	return command
}

func newHistoryExportCommand() *cobra.Command {
	var output string

	command := &cobra.Command{
		Use:   "export <id>",
		Short: "Write the PDF of a stored report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, closeRepo, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = closeRepo()
			}()

			entry, err := repo.Find(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("repo.Find(%s) > %w", args[0], err)
			}
			if output == "" {
				output = "leads-" + entry.ID + ".pdf"
			}
			return exportEntry(cmd.OutOrStdout(), entry, output)
		},
	}
	command.Flags().StringVarP(&output, "output", "o", "", "output PDF path (default leads-<id>.pdf)")

	return command
}

const descriptionWidth = 48

func printHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No reports yet.")
		return err
	}

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	if _, err := bold.Fprintf(w, "%-36s  %-16s  %-8s  %8s  %s\n", "ID", "CREATED", "PROVIDER", "SEARCHES", "DESCRIPTION"); err != nil {
		return err
	}
	for _, entry := range entries {
		if _, err := cyan.Fprintf(w, "%-36s", entry.ID); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %-16s  %-8s  %8d  %s\n",
			entry.CreatedAt.Format("2006-01-02 15:04"),
			entry.Provider,
			entry.WebSearchCount,
			truncate(entry.Query.CompanyDescription, descriptionWidth),
		); err != nil {
			return err
		}
	}
	return nil
}

func exportEntry(w io.Writer, entry *history.Entry, output string) error {
	if entry.PDFBase64 == "" {
		return fmt.Errorf("report %s has no stored PDF", entry.ID)
	}
	pdfBytes, err := base64.StdEncoding.DecodeString(entry.PDFBase64)
	if err != nil {
		return fmt.Errorf("base64.DecodeString(%s) > %w", entry.ID, err)
	}
	if err := writeFile(output, pdfBytes); err != nil {
		return err
	}
	_, err = color.New(color.FgGreen).Fprintf(w, "Wrote %s (%d bytes)\n", output, len(pdfBytes))
	return err
}

func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}
