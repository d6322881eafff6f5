package ticketlensctl

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Stdout     io.Writer
	Stderr     io.Writer
}

// Run executes one ticketlensctl command against a running API and
// returns the process exit code: 0 on success, 1 on request failure,
// 2 on usage errors.
func Run(ctx context.Context, args []string, defaults Options) int {
	stdout := defaults.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := defaults.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	fs := flag.NewFlagSet("ticketlensctl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	baseURL := fs.String("base-url", firstNonEmpty(defaults.BaseURL, "http://localhost:8080"), "ticketlens API base URL")
	timeout := fs.Duration("timeout", durationOr(defaults.Timeout, 60*time.Second), "HTTP timeout (e.g. 10s)")

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() < 1 {
		writeUsage(stderr)
		return 2
	}

	client := defaults.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: *timeout}
	}

	command := strings.TrimSpace(fs.Arg(0))
	rest := fs.Args()[1:]

	path := ""
	query := url.Values{}
	outputPath := ""
	switch command {
	case "health":
		path = "/v1/health"
	case "ready":
		path = "/v1/ready"
	case "verify":
		sub := flag.NewFlagSet("verify", flag.ContinueOnError)
		sub.SetOutput(stderr)
		code := sub.String("code", "", "verification code to echo back")
		if err := sub.Parse(rest); err != nil {
			return 2
		}
		if *code == "" {
			_, _ = fmt.Fprintln(stderr, "verify requires -code")
			return 2
		}
		path = "/"
		query.Set("request_type", "verify")
		query.Set("code", *code)
	case "fetch-data":
		sub := flag.NewFlagSet("fetch-data", flag.ContinueOnError)
		sub.SetOutput(stderr)
		email := sub.String("email", "", "requester email (account id)")
		issue := sub.String("issue", "", "helpdesk issue id for documentation links")
		if err := sub.Parse(rest); err != nil {
			return 2
		}
		if *email == "" {
			_, _ = fmt.Fprintln(stderr, "fetch-data requires -email")
			return 2
		}
		path = "/"
		query.Set("request_type", "fetch_data")
		query.Set("requester_email", *email)
		if *issue != "" {
			query.Set("issue_id", *issue)
		}
	case "export":
		sub := flag.NewFlagSet("export", flag.ContinueOnError)
		sub.SetOutput(stderr)
		email := sub.String("email", "", "requester email (account id)")
		output := sub.String("o", "account_data.parquet", "output file for the parquet download")
		if err := sub.Parse(rest); err != nil {
			return 2
		}
		if *email == "" {
			_, _ = fmt.Fprintln(stderr, "export requires -email")
			return 2
		}
		path = "/v1/export"
		query.Set("requester_email", *email)
		outputPath = *output
	default:
		_, _ = fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		writeUsage(stderr)
		return 2
	}

	endpoint := strings.TrimRight(*baseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	code, responseBody, err := doRequest(ctx, client, endpoint)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "request failed: %v\n", err)
		return 1
	}

	if code >= 400 {
		_, _ = fmt.Fprintf(stderr, "http %d: %s\n", code, strings.TrimSpace(string(responseBody)))
		return 1
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, responseBody, 0o644); err != nil {
			_, _ = fmt.Fprintf(stderr, "write %s: %v\n", outputPath, err)
			return 1
		}
		_, _ = fmt.Fprintf(stdout, "wrote %d bytes to %s\n", len(responseBody), outputPath)
		return 0
	}

	if pretty, ok := prettyJSON(responseBody); ok {
		_, _ = fmt.Fprintln(stdout, pretty)
		return 0
	}
	if len(responseBody) > 0 {
		_, _ = fmt.Fprintln(stdout, string(responseBody))
	}
	return 0
}

func doRequest(ctx context.Context, client *http.Client, url string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func prettyJSON(raw []byte) (string, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", false
	}
	var anyValue any
	if err := json.Unmarshal(raw, &anyValue); err != nil {
		return "", false
	}
	formatted, err := json.MarshalIndent(anyValue, "", "  ")
	if err != nil {
		return "", false
	}
	return string(formatted), true
}

func writeUsage(w io.Writer) {
	_, _ = fmt.Fprintln(w, "usage: ticketlensctl [flags] <command>")
	_, _ = fmt.Fprintln(w, "")
	_, _ = fmt.Fprintln(w, "commands:")
	_, _ = fmt.Fprintln(w, "  health                       GET /v1/health")
	_, _ = fmt.Fprintln(w, "  ready                        GET /v1/ready")
	_, _ = fmt.Fprintln(w, "  verify -code C               webhook verification handshake")
	_, _ = fmt.Fprintln(w, "  fetch-data -email E [-issue I]  fetch the account card")
	_, _ = fmt.Fprintln(w, "  export -email E [-o FILE]    download account rows as parquet")
}

func firstNonEmpty(a, b string) string {
	if strings.TrimSpace(a) != "" {
		return strings.TrimSpace(a)
	}
	return b
}

func durationOr(v, fallback time.Duration) time.Duration {
	if v > 0 {
		return v
	}
	return fallback
}
