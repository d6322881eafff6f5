package tickets

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestIssueBodyHTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/issues/issue-42" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer helpdesk-key" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `{"data":{"body_html":"<p>Cannot connect</p>","state":"open"}}`)
	}))
	defer server.Close()

	source, err := NewPylonSource(PylonConfig{BaseURL: server.URL, APIKey: "helpdesk-key"})
	if err != nil {
		t.Fatalf("NewPylonSource() error = %v", err)
	}
	body, err := source.IssueBodyHTML(context.Background(), "issue-42")
	if err != nil {
		t.Fatalf("IssueBodyHTML() error = %v", err)
	}
	if body != "<p>Cannot connect</p>" {
		t.Fatalf("body = %q", body)
	}
}

func TestIssueBodyHTMLMissingBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"state":"open"}}`)
	}))
	defer server.Close()

	source, err := NewPylonSource(PylonConfig{BaseURL: server.URL, APIKey: "helpdesk-key"})
	if err != nil {
		t.Fatalf("NewPylonSource() error = %v", err)
	}
	body, err := source.IssueBodyHTML(context.Background(), "issue-42")
	if err != nil {
		t.Fatalf("IssueBodyHTML() error = %v", err)
	}
	if body != "" {
		t.Fatalf("body = %q, want empty", body)
	}
}

func TestIssueBodyHTMLStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	source, err := NewPylonSource(PylonConfig{BaseURL: server.URL, APIKey: "helpdesk-key"})
	if err != nil {
		t.Fatalf("NewPylonSource() error = %v", err)
	}
	if _, err := source.IssueBodyHTML(context.Background(), "issue-42"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestNewPylonSourceRequiresAPIKey(t *testing.T) {
	if _, err := NewPylonSource(PylonConfig{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestExtractText(t *testing.T) {
	rawHTML := `<div><p>Cannot   connect</p><script>var x = 1;</script><p>to <b>warehouse</b></p></div>`
	if got := ExtractText(rawHTML); got != "Cannot connect to warehouse" {
		t.Fatalf("ExtractText() = %q", got)
	}
}

func TestExtractTextPlainInput(t *testing.T) {
	if got := ExtractText("plain words only"); got != "plain words only" {
		t.Fatalf("ExtractText() = %q", got)
	}
}

func TestPreview(t *testing.T) {
	if got := Preview("abcdef", 4); got != "abcd" {
		t.Fatalf("Preview() = %q", got)
	}
	if got := Preview("abc", 10); got != "abc" {
		t.Fatalf("Preview() = %q", got)
	}
	if got := Preview("abc", 0); got != "" {
		t.Fatalf("Preview() = %q", got)
	}
}
