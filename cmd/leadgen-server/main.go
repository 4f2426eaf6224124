package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/at-ishikawa/leadgen/internal/assets"
	"github.com/at-ishikawa/leadgen/internal/config"
	"github.com/at-ishikawa/leadgen/internal/history"
	"github.com/at-ishikawa/leadgen/internal/inference"
	"github.com/at-ishikawa/leadgen/internal/inference/provider"
	"github.com/at-ishikawa/leadgen/internal/logging"
	"github.com/at-ishikawa/leadgen/internal/report"
	"github.com/at-ishikawa/leadgen/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("LEADGEN_CONFIG"))
	if err != nil {
		return fmt.Errorf("config.Load() > %w", err)
	}
	logCloser := logging.Setup(cfg.Log, false)
	defer func() {
		_ = logCloser.Close()
	}()
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := history.NewRepository(ctx, cfg.History)
	if err != nil {
		return fmt.Errorf("history.NewRepository() > %w", err)
	}
	defer func() {
		_ = closeRepo()
	}()

	builder, err := report.NewBuilderFromConfig(cfg.Report)
	if err != nil {
		return fmt.Errorf("report.NewBuilderFromConfig() > %w", err)
	}
	tmpl, err := assets.ParsePromptTemplate(cfg.Templates.PromptFile)
	if err != nil {
		return fmt.Errorf("assets.ParsePromptTemplate() > %w", err)
	}

	newClient := func(p inference.Provider, apiKey, model string) (inference.Client, error) {
		return provider.NewClient(p, apiKey, model, cfg)
	}
	handler, err := server.NewLeadHandler(cfg, newClient, repo, builder, tmpl)
	if err != nil {
		return fmt.Errorf("server.NewLeadHandler() > %w", err)
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(handler.Routes(), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			"addr", cfg.Server.Addr,
			"provider", cfg.Inference.DefaultProvider,
			"history", cfg.History.Driver,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("srv.ListenAndServe() > %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("srv.Shutdown() > %w", err)
	}
	return nil
}
