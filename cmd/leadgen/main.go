package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/logging"
)

var (
	configFile   string
	loadedConfig *config.Config
)

func main() {
	// A missing .env file is fine
	_ = godotenv.Load()

	if err := newRootCommand().Execute(); err != nil {
		if _, fprintfErr := fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err); fprintfErr != nil {
			panic(fmt.Errorf("failed to output an error: %w. Reason: %w", err, fprintfErr))
		}
		os.Exit(1)
	}
	os.Exit(0)
}

func newRootCommand() *cobra.Command {
	var debugMode bool
	var logCloser io.Closer

	rootCommand := &cobra.Command{
		Use:           "leadgen",
		Short:         "Generate B2B lead reports as PDF",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			loadedConfig = cfg
			logCloser = logging.Setup(cfg.Log, debugMode)
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if logCloser == nil {
				return nil
			}
			return logCloser.Close()
		},
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "config file path")
	rootCommand.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode")

	rootCommand.AddCommand(
		newRenderCommand(),
		newGenerateCommand(),
		newHistoryCommand(),
	)
	return rootCommand
}

// loadConfig returns the configuration loaded by the root command, or loads
// it when a subcommand runs on its own.
func loadConfig() (*config.Config, error) {
	if loadedConfig != nil {
		return loadedConfig, nil
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}
