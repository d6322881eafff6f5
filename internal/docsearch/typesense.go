package docsearch

import (
	"bytes"
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

const (
	defaultCollection  = "omni-docs"
	defaultDocsBaseURL = "https://docs.omni.co"

	queryByFields      = "hierarchy.lvl0,hierarchy.lvl1,hierarchy.lvl2,hierarchy.lvl3,hierarchy.lvl4,hierarchy.lvl5,hierarchy.lvl6,content"
	includeFields      = "hierarchy.lvl0,hierarchy.lvl1,content,url"
	hierarchyMaxLevels = 7
)

type TypesenseConfig struct {
	BaseURL     string
	APIKey      string
	Collection  string
	DocsBaseURL string
	Timeout     time.Duration
	Logger      *slog.Logger
}

// TypesenseSearcher queries a Typesense documentation index through its
// multi_search endpoint.
type TypesenseSearcher struct {
	searchURL   string
	collection  string
	docsBaseURL string
	client      *http.Client
	logger      *slog.Logger
}

var _ Searcher = (*TypesenseSearcher)(nil)

func NewTypesenseSearcher(cfg TypesenseConfig) (*TypesenseSearcher, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	collection := strings.TrimSpace(cfg.Collection)
	if collection == "" {
		collection = defaultCollection
	}
	docsBaseURL := strings.TrimSpace(cfg.DocsBaseURL)
	if docsBaseURL == "" {
		docsBaseURL = defaultDocsBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	params := url.Values{}
	params.Set("x-typesense-api-key", strings.TrimSpace(cfg.APIKey))
	return &TypesenseSearcher{
		searchURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/") + "/multi_search?" + params.Encode(),
		collection:  collection,
		docsBaseURL: strings.TrimRight(docsBaseURL, "/"),
		client:      &http.Client{Timeout: timeout},
		logger:      logger,
	}, nil
}

// Search returns the first grouped hit for the phrase. The title joins
// the page's non-empty hierarchy levels; relative page URLs are made
// absolute against the docs base URL.
func (s *TypesenseSearcher) Search(ctx context.Context, phrase string) (Hit, bool, error) {
	hit, found, err := s.search(ctx, phrase)
	switch {
	case err != nil:
		searchesTotal.WithLabelValues("error").Inc()
	case found:
		searchesTotal.WithLabelValues("hit").Inc()
	default:
		searchesTotal.WithLabelValues("miss").Inc()
	}
	return hit, found, err
}

func (s *TypesenseSearcher) search(ctx context.Context, phrase string) (Hit, bool, error) {
	body, err := json.Marshal(map[string]any{
		"searches": []map[string]any{{
			"collection":     s.collection,
			"q":              phrase,
			"query_by":       queryByFields,
			"include_fields": includeFields,
			"group_by":       "url",
			"group_limit":    3,
		}},
	})
	if err != nil {
		return Hit{}, false, fmt.Errorf("marshal search body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.searchURL, bytes.NewReader(body))
	if err != nil {
		return Hit{}, false, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json, text/plain, */*")
	// The hosted search endpoint expects the JSON body as text/plain.
	httpReq.Header.Set("Content-Type", "text/plain")

	s.logger.DebugContext(ctx, "searching docs", slog.String("phrase", phrase))
	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Hit{}, false, fmt.Errorf("request doc search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Hit{}, false, fmt.Errorf("read doc search response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return Hit{}, false, fmt.Errorf("doc search failed status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Results []struct {
			GroupedHits []struct {
				Hits []struct {
					Document map[string]any `json:"document"`
				} `json:"hits"`
			} `json:"grouped_hits"`
		} `json:"results"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Hit{}, false, fmt.Errorf("decode doc search response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return Hit{}, false, nil
	}

	for _, group := range parsed.Results[0].GroupedHits {
		if len(group.Hits) == 0 {
			continue
		}
		document := group.Hits[0].Document
		pageURL, ok := document["url"].(string)
		if !ok || pageURL == "" {
			continue
		}

		var parts []string
		for i := 0; i < hierarchyMaxLevels; i++ {
			if level, ok := document[fmt.Sprintf("hierarchy.lvl%d", i)].(string); ok && level != "" {
				parts = append(parts, level)
			}
		}
		title := strings.Join(parts, " > ")
		if title == "" {
			title = pageURL
		}
		if !strings.HasPrefix(pageURL, "http") {
			pageURL = s.docsBaseURL + pageURL
		}
		return Hit{Title: title, URL: pageURL}, true, nil
	}
	return Hit{}, false, nil
}
