package omni

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

type waitEntry struct {
	Result  string `json:"result"`
	Timeout bool   `json:"timeout"`
}

// pollJobs waits for one of the outstanding jobs to surface an encoded
// result. The deadline is measured from poll start; a wait request that
// fails is retried on the next tick, and an empty wait reply just means
// not done yet. Per-job timeout flags on the entries do not end the
// loop, only the deadline does.
func (c *Client) pollJobs(ctx context.Context, jobIDs []string) (string, error) {
	deadline := c.now().Add(c.pollTimeout)
	for c.now().Before(deadline) {
		c.logger.DebugContext(ctx, "polling warehouse jobs", slog.Int("jobs", len(jobIDs)))
		pollTicksTotal.Inc()
		encoded, found, err := c.waitOnce(ctx, jobIDs)
		if err != nil {
			if ctx.Err() != nil {
				return "", err
			}
			pollFailuresTotal.Inc()
			c.logger.WarnContext(ctx, "job wait request failed", slog.Any("error", err))
		} else if found {
			return encoded, nil
		}
		if err := c.sleep(ctx, c.pollInterval); err != nil {
			return "", err
		}
	}
	pollTimeoutsTotal.Inc()
	return "", &PollTimeoutError{JobIDs: jobIDs, Timeout: c.pollTimeout}
}

func (c *Client) waitOnce(ctx context.Context, jobIDs []string) (string, bool, error) {
	encodedIDs, err := json.Marshal(jobIDs)
	if err != nil {
		return "", false, fmt.Errorf("marshal job ids: %w", err)
	}
	params := url.Values{}
	params.Set("job_ids", string(encodedIDs))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/query/wait?"+params.Encode(), nil)
	if err != nil {
		return "", false, fmt.Errorf("build wait request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", false, &TransportError{Op: "wait", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, &TransportError{Op: "wait", Err: err}
	}
	if resp.StatusCode >= 400 {
		return "", false, &ExecutionError{Op: "wait", StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var entries []waitEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return "", false, &MalformedResponseError{Reason: "wait response is not a JSON array", Err: err}
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Result, ResultMagicPrefix) {
			return entry.Result, true, nil
		}
	}
	return "", false, nil
}
