package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ticketlens/ticketlens/internal/config"
	"github.com/ticketlens/ticketlens/internal/docsearch"
	"github.com/ticketlens/ticketlens/internal/keywords"
	"github.com/ticketlens/ticketlens/internal/observability"
	"github.com/ticketlens/ticketlens/internal/tickets"
	"github.com/ticketlens/ticketlens/internal/warehouse"
)

type ReadinessCheck func(ctx context.Context) error

// Dependencies carries everything the routes need. Engine and Template are
// required for the webhook and export routes; Tickets, DocSearch and
// Vocabulary are optional enrichments and may be left nil.
type Dependencies struct {
	Logger            *slog.Logger
	Readiness         ReadinessCheck
	DependencyTimeout time.Duration
	Engine            warehouse.Engine
	Template          *warehouse.Template
	Tickets           tickets.Source
	DocSearch         docsearch.Searcher
	Vocabulary        keywords.Vocabulary
	LinkHints         []string
	MaxDocLinks       int
	PreviewChars      int
}

func NewHandler(cfg config.Config, deps Dependencies) http.Handler {
	hasLogger := deps.Logger != nil
	if !hasLogger {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mux := http.NewServeMux()

	// The helpdesk platform calls the bare root path for both the install
	// handshake and per-ticket data fetches, discriminated by request_type.
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		handleWebhook(deps, w, r)
	})

	mux.HandleFunc("GET /v1/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "service": cfg.Service.Name})
	})

	mux.HandleFunc("GET /v1/ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Readiness == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
			return
		}
		timeout := deps.DependencyTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		if err := deps.Readiness(ctx); err != nil {
			writeError(r.Context(), w, http.StatusServiceUnavailable, "NOT_READY", err.Error(), true, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
	})

	mux.Handle("GET /v1/metrics", promhttp.Handler())

	mux.HandleFunc("GET /v1/export", func(w http.ResponseWriter, r *http.Request) {
		handleExport(deps, w, r)
	})

	middlewares := []func(http.Handler) http.Handler{
		observability.TraceMiddleware,
		observability.MetricsMiddleware,
	}
	if hasLogger {
		middlewares = append(middlewares, observability.LoggingMiddleware(deps.Logger))
	}
	return chain(mux, middlewares...)
}

func CheckWarehouseConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Warehouse.BaseURL == "" {
			return errors.New("warehouse base url is not configured")
		}
		if cfg.Warehouse.APIKey == "" {
			return errors.New("warehouse api key is not configured")
		}
		return nil
	}
}

func CheckHelpdeskConfig(cfg config.Config) ReadinessCheck {
	return func(_ context.Context) error {
		if cfg.Helpdesk.APIKey == "" {
			return errors.New("helpdesk api key is not configured")
		}
		return nil
	}
}

func CombineReadinessChecks(checks ...ReadinessCheck) ReadinessCheck {
	filtered := make([]ReadinessCheck, 0, len(checks))
	for _, check := range checks {
		if check != nil {
			filtered = append(filtered, check)
		}
	}
	return func(ctx context.Context) error {
		for _, check := range filtered {
			if err := check(ctx); err != nil {
				return err
			}
		}
		return nil
	}
}

func chain(base http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	wrapped := base
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(ctx context.Context, w http.ResponseWriter, status int, code, message string, retryable bool, extra map[string]any) {
	writeJSON(w, status, map[string]any{
		"error_code": code,
		"message":    message,
		"retryable":  retryable,
		"context":    extra,
		"trace_id":   observability.TraceIDFromContext(ctx),
	})
}
