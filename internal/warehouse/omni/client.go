package omni

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ticketlens/ticketlens/internal/warehouse"
)

const (
	defaultPollTimeout    = 30 * time.Second
	defaultPollInterval   = 3 * time.Second
	defaultRequestTimeout = 15 * time.Second
)

type Config struct {
	BaseURL        string
	APIKey         string
	PollTimeout    time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

// Client acquires query results from an Omni-compatible execution
// service. One Acquire call is one independent synchronous acquisition;
// the client keeps no state across calls beyond its configuration.
type Client struct {
	baseURL      string
	apiKey       string
	pollTimeout  time.Duration
	pollInterval time.Duration
	client       *http.Client
	logger       *slog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

var _ warehouse.Engine = (*Client)(nil)

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}
	pollInterval := cfg.PollInterval
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:      strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:       strings.TrimSpace(cfg.APIKey),
		pollTimeout:  pollTimeout,
		pollInterval: pollInterval,
		client:       &http.Client{Timeout: requestTimeout},
		logger:       logger,
		now:          time.Now,
		sleep:        sleepContext,
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Acquire submits the query and returns the decoded result table. The
// run response either carries the result inline or names jobs to wait
// on; in the latter case the client polls until the result appears or
// the poll deadline passes.
func (c *Client) Acquire(ctx context.Context, request warehouse.Request) (warehouse.Table, error) {
	start := c.now()
	table, err := c.acquire(ctx, request)
	acquisitionDurationSeconds.Observe(c.now().Sub(start).Seconds())
	acquisitionsTotal.WithLabelValues(outcomeLabel(err)).Inc()
	if err == nil {
		resultRows.Observe(float64(table.RowCount()))
	}
	return table, err
}

func (c *Client) acquire(ctx context.Context, request warehouse.Request) (warehouse.Table, error) {
	body, err := c.runQuery(ctx, request)
	if err != nil {
		return warehouse.Table{}, err
	}

	fragments := SplitObjects(body)
	outcome, err := classifyFragments(fragments)
	if err != nil {
		return warehouse.Table{}, err
	}

	switch {
	case outcome.resultFound:
		return DecodeResult(outcome.encodedResult)
	case len(outcome.jobIDs) > 0:
		encoded, err := c.pollJobs(ctx, outcome.jobIDs)
		if err != nil {
			return warehouse.Table{}, err
		}
		return DecodeResult(encoded)
	default:
		return warehouse.Table{}, &MalformedResponseError{
			Reason: fmt.Sprintf("no result or job ids in %d fragments", len(fragments)),
		}
	}
}

func (c *Client) runQuery(ctx context.Context, request warehouse.Request) (string, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("marshal query request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query/run", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	c.logger.DebugContext(ctx, "submitting warehouse query")
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &TransportError{Op: "run", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "run", Err: err}
	}
	if resp.StatusCode >= 400 {
		return "", &ExecutionError{Op: "run", StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return string(raw), nil
}
