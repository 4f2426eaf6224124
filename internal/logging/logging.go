// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/at-ishikawa/leadgen/internal/config"
)

// Setup installs a text logger writing to stdout and, when cfg.File is set,
// to a rotated log file. debug forces the debug level regardless of cfg.
// The returned closer releases the log file.
func Setup(cfg config.LogConfig, debug bool) io.Closer {
	return setup(os.Stdout, cfg, debug)
}

func setup(stdout io.Writer, cfg config.LogConfig, debug bool) io.Closer {
	logLevel := slog.LevelInfo
	if debug || cfg.Debug {
		logLevel = slog.LevelDebug
	}

	out := stdout
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		rotated := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB, // megabytes
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays, // days
			LocalTime:  true,
		}
		out = io.MultiWriter(stdout, rotated)
		closer = rotated
	}

	slog.SetDefault(
		slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})),
	)
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
