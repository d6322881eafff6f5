package tickets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultPylonBaseURL = "https://api.usepylon.com"

type PylonConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  *slog.Logger
}

// PylonSource reads issue bodies from a Pylon-compatible helpdesk API.
type PylonSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

var _ Source = (*PylonSource)(nil)

func NewPylonSource(cfg PylonConfig) (*PylonSource, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultPylonBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PylonSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(cfg.APIKey),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}, nil
}

// IssueBodyHTML returns the issue's HTML body. An issue without a body
// yields an empty string, not an error.
func (s *PylonSource) IssueBodyHTML(ctx context.Context, issueID string) (string, error) {
	if strings.TrimSpace(issueID) == "" {
		return "", fmt.Errorf("issue id is required")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/issues/"+url.PathEscape(issueID), nil)
	if err != nil {
		return "", fmt.Errorf("build issue request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	s.logger.DebugContext(ctx, "fetching issue", slog.String("issue_id", issueID))
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request issue: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read issue response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("issue fetch failed status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Data struct {
			BodyHTML string `json:"body_html"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode issue response: %w", err)
	}
	if parsed.Data.BodyHTML == "" {
		s.logger.WarnContext(ctx, "issue has no body", slog.String("issue_id", issueID))
	}
	return parsed.Data.BodyHTML, nil
}
