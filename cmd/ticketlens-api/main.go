package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ticketlens/ticketlens/internal/api"
	"github.com/ticketlens/ticketlens/internal/config"
	"github.com/ticketlens/ticketlens/internal/docsearch"
	"github.com/ticketlens/ticketlens/internal/keywords"
	"github.com/ticketlens/ticketlens/internal/observability"
	"github.com/ticketlens/ticketlens/internal/tickets"
	"github.com/ticketlens/ticketlens/internal/warehouse"
	"github.com/ticketlens/ticketlens/internal/warehouse/omni"
)

func main() {
	cfg, err := config.LoadFromEnv("ticketlens-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	template, err := warehouse.LoadTemplate(cfg.Warehouse.TemplatePath, cfg.Warehouse.FilterField)
	if err != nil {
		logger.Error("failed to load query template", slog.Any("error", err))
		os.Exit(1)
	}

	engine, err := omni.New(omni.Config{
		BaseURL:        cfg.Warehouse.BaseURL,
		APIKey:         cfg.Warehouse.APIKey,
		PollTimeout:    cfg.Warehouse.PollTimeout,
		PollInterval:   cfg.Warehouse.PollInterval,
		RequestTimeout: cfg.Warehouse.RequestTimeout,
		Logger:         logger,
	})
	if err != nil {
		logger.Error("failed to initialize warehouse client", slog.Any("error", err))
		os.Exit(1)
	}

	source, err := tickets.NewPylonSource(tickets.PylonConfig{
		BaseURL: cfg.Helpdesk.BaseURL,
		APIKey:  cfg.Helpdesk.APIKey,
		Timeout: cfg.Helpdesk.Timeout,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialize helpdesk client", slog.Any("error", err))
		os.Exit(1)
	}

	var searcher docsearch.Searcher
	if cfg.DocSearch.BaseURL != "" && cfg.DocSearch.APIKey != "" {
		typesense, err := docsearch.NewTypesenseSearcher(docsearch.TypesenseConfig{
			BaseURL:     cfg.DocSearch.BaseURL,
			APIKey:      cfg.DocSearch.APIKey,
			Collection:  cfg.DocSearch.Collection,
			DocsBaseURL: cfg.DocSearch.DocsBaseURL,
			Timeout:     cfg.DocSearch.Timeout,
			Logger:      logger,
		})
		if err != nil {
			logger.Error("failed to initialize documentation search", slog.Any("error", err))
			os.Exit(1)
		}
		searcher = typesense
	} else {
		logger.Info("documentation search disabled: no docsearch credentials configured")
	}

	var vocabulary keywords.Vocabulary
	if cfg.Keywords.VocabularyPath != "" {
		vocabulary, err = keywords.LoadVocabulary(cfg.Keywords.VocabularyPath)
		if err != nil {
			logger.Error("failed to load domain vocabulary", slog.Any("error", err))
			os.Exit(1)
		}
	}

	deps := api.Dependencies{
		Logger:       logger,
		Engine:       engine,
		Template:     template,
		Tickets:      source,
		DocSearch:    searcher,
		Vocabulary:   vocabulary,
		LinkHints:    splitHints(cfg.Warehouse.LinkHints),
		MaxDocLinks:  cfg.DocSearch.MaxLinks,
		PreviewChars: cfg.Keywords.PreviewChars,
		Readiness: api.CombineReadinessChecks(
			api.CheckWarehouseConfig(cfg),
			api.CheckHelpdeskConfig(cfg),
		),
		DependencyTimeout: time.Second,
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

func splitHints(raw string) []string {
	parts := strings.Split(raw, ",")
	hints := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			hints = append(hints, trimmed)
		}
	}
	return hints
}
