package config

import (
	"log/slog"
	"testing"
	"time"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"TICKETLENS_WAREHOUSE_BASE_URL": "https://acme.omniapp.co/api/v1",
		"TICKETLENS_WAREHOUSE_API_KEY":  "warehouse-key",
		"TICKETLENS_HELPDESK_API_KEY":   "helpdesk-key",
	}
}

func TestLoadDefaultsForDevProfile(t *testing.T) {
	lookup := mapLookup(requiredEnv())
	cfg, err := Load("ticketlens-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileDev {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileDev)
	}
	if cfg.HTTP.Address != ":8080" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.Observability.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Warehouse.PollTimeout != 30*time.Second {
		t.Fatalf("Warehouse.PollTimeout = %s", cfg.Warehouse.PollTimeout)
	}
	if cfg.Warehouse.PollInterval != 3*time.Second {
		t.Fatalf("Warehouse.PollInterval = %s", cfg.Warehouse.PollInterval)
	}
	if cfg.Warehouse.TemplatePath != "query_template.json" {
		t.Fatalf("Warehouse.TemplatePath = %q", cfg.Warehouse.TemplatePath)
	}
	if cfg.Warehouse.FilterField != "users.email" {
		t.Fatalf("Warehouse.FilterField = %q", cfg.Warehouse.FilterField)
	}
	if cfg.Helpdesk.BaseURL != "https://api.usepylon.com" {
		t.Fatalf("Helpdesk.BaseURL = %q", cfg.Helpdesk.BaseURL)
	}
	if cfg.DocSearch.BaseURL != "" {
		t.Fatalf("DocSearch.BaseURL = %q, want unset", cfg.DocSearch.BaseURL)
	}
	if cfg.DocSearch.Collection != "omni-docs" {
		t.Fatalf("DocSearch.Collection = %q", cfg.DocSearch.Collection)
	}
	if cfg.DocSearch.MaxLinks != 3 {
		t.Fatalf("DocSearch.MaxLinks = %d", cfg.DocSearch.MaxLinks)
	}
	if cfg.Keywords.PreviewChars != 200 {
		t.Fatalf("Keywords.PreviewChars = %d", cfg.Keywords.PreviewChars)
	}
}

func TestLoadProdProfileDefaults(t *testing.T) {
	env := requiredEnv()
	env["TICKETLENS_PROFILE"] = "prod"
	cfg, err := Load("ticketlens-api", mapLookup(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Profile != ProfileProd {
		t.Fatalf("Profile = %q, want %q", cfg.Profile, ProfileProd)
	}
	if cfg.Observability.LogLevel != slog.LevelInfo {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	lookup := mapLookup(map[string]string{
		"TICKETLENS_PROFILE":                  "test",
		"TICKETLENS_SERVICE_NAME":             "ticketlens-custom",
		"TICKETLENS_HTTP_ADDR":                ":9999",
		"TICKETLENS_HTTP_READ_TIMEOUT":        "2s",
		"TICKETLENS_HTTP_WRITE_TIMEOUT":       "3s",
		"TICKETLENS_WAREHOUSE_BASE_URL":       "https://bi.example.com/api/v1",
		"TICKETLENS_WAREHOUSE_API_KEY":        "wh-key",
		"TICKETLENS_WAREHOUSE_POLL_TIMEOUT":   "45s",
		"TICKETLENS_WAREHOUSE_POLL_INTERVAL":  "500ms",
		"TICKETLENS_WAREHOUSE_TEMPLATE_PATH":  "/etc/ticketlens/query.json",
		"TICKETLENS_WAREHOUSE_FILTER_FIELD":   "accounts.email",
		"TICKETLENS_WAREHOUSE_LINK_HINTS":     "omniapp.co,example.app",
		"TICKETLENS_HELPDESK_BASE_URL":        "https://helpdesk.example.com",
		"TICKETLENS_HELPDESK_API_KEY":         "hd-key",
		"TICKETLENS_HELPDESK_TIMEOUT":         "4s",
		"TICKETLENS_DOCSEARCH_BASE_URL":       "https://search.example.net",
		"TICKETLENS_DOCSEARCH_API_KEY":        "ts-key",
		"TICKETLENS_DOCSEARCH_COLLECTION":     "docs-v2",
		"TICKETLENS_DOCSEARCH_DOCS_BASE_URL":  "https://docs.example.com",
		"TICKETLENS_DOCSEARCH_MAX_LINKS":      "5",
		"TICKETLENS_DOCSEARCH_TIMEOUT":        "2s",
		"TICKETLENS_KEYWORDS_VOCABULARY_PATH": "/etc/ticketlens/vocab.json",
		"TICKETLENS_KEYWORDS_PREVIEW_CHARS":   "320",
		"TICKETLENS_LOG_LEVEL":                "error",
		"TICKETLENS_LOG_JSON":                 "false",
	})
	cfg, err := Load("ticketlens-api", lookup)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Service.Name != "ticketlens-custom" {
		t.Fatalf("Service.Name = %q", cfg.Service.Name)
	}
	if cfg.HTTP.Address != ":9999" {
		t.Fatalf("HTTP.Address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.ReadTimeout != 2*time.Second {
		t.Fatalf("HTTP.ReadTimeout = %s", cfg.HTTP.ReadTimeout)
	}
	if cfg.HTTP.WriteTimeout != 3*time.Second {
		t.Fatalf("HTTP.WriteTimeout = %s", cfg.HTTP.WriteTimeout)
	}
	if cfg.Warehouse.BaseURL != "https://bi.example.com/api/v1" {
		t.Fatalf("Warehouse.BaseURL = %q", cfg.Warehouse.BaseURL)
	}
	if cfg.Warehouse.APIKey != "wh-key" {
		t.Fatalf("Warehouse.APIKey = %q", cfg.Warehouse.APIKey)
	}
	if cfg.Warehouse.PollTimeout != 45*time.Second {
		t.Fatalf("Warehouse.PollTimeout = %s", cfg.Warehouse.PollTimeout)
	}
	if cfg.Warehouse.PollInterval != 500*time.Millisecond {
		t.Fatalf("Warehouse.PollInterval = %s", cfg.Warehouse.PollInterval)
	}
	if cfg.Warehouse.TemplatePath != "/etc/ticketlens/query.json" {
		t.Fatalf("Warehouse.TemplatePath = %q", cfg.Warehouse.TemplatePath)
	}
	if cfg.Warehouse.FilterField != "accounts.email" {
		t.Fatalf("Warehouse.FilterField = %q", cfg.Warehouse.FilterField)
	}
	if cfg.Warehouse.LinkHints != "omniapp.co,example.app" {
		t.Fatalf("Warehouse.LinkHints = %q", cfg.Warehouse.LinkHints)
	}
	if cfg.Helpdesk.BaseURL != "https://helpdesk.example.com" {
		t.Fatalf("Helpdesk.BaseURL = %q", cfg.Helpdesk.BaseURL)
	}
	if cfg.Helpdesk.Timeout != 4*time.Second {
		t.Fatalf("Helpdesk.Timeout = %s", cfg.Helpdesk.Timeout)
	}
	if cfg.DocSearch.BaseURL != "https://search.example.net" {
		t.Fatalf("DocSearch.BaseURL = %q", cfg.DocSearch.BaseURL)
	}
	if cfg.DocSearch.APIKey != "ts-key" {
		t.Fatalf("DocSearch.APIKey = %q", cfg.DocSearch.APIKey)
	}
	if cfg.DocSearch.Collection != "docs-v2" {
		t.Fatalf("DocSearch.Collection = %q", cfg.DocSearch.Collection)
	}
	if cfg.DocSearch.DocsBaseURL != "https://docs.example.com" {
		t.Fatalf("DocSearch.DocsBaseURL = %q", cfg.DocSearch.DocsBaseURL)
	}
	if cfg.DocSearch.MaxLinks != 5 {
		t.Fatalf("DocSearch.MaxLinks = %d", cfg.DocSearch.MaxLinks)
	}
	if cfg.Keywords.VocabularyPath != "/etc/ticketlens/vocab.json" {
		t.Fatalf("Keywords.VocabularyPath = %q", cfg.Keywords.VocabularyPath)
	}
	if cfg.Keywords.PreviewChars != 320 {
		t.Fatalf("Keywords.PreviewChars = %d", cfg.Keywords.PreviewChars)
	}
	if cfg.Observability.LogLevel != slog.LevelError {
		t.Fatalf("LogLevel = %v", cfg.Observability.LogLevel)
	}
	if cfg.Observability.LogJSON {
		t.Fatal("LogJSON = true, want false")
	}
}

func TestLoadErrorsOnInvalidValues(t *testing.T) {
	tests := []map[string]string{
		{"TICKETLENS_PROFILE": "oops"},
		{"TICKETLENS_HTTP_READ_TIMEOUT": "NaN"},
		{"TICKETLENS_WAREHOUSE_POLL_TIMEOUT": "30"},
		{"TICKETLENS_WAREHOUSE_POLL_INTERVAL": "soon"},
		{"TICKETLENS_DOCSEARCH_MAX_LINKS": "many"},
		{"TICKETLENS_KEYWORDS_PREVIEW_CHARS": "oops"},
		{"TICKETLENS_LOG_JSON": "not-bool"},
		{"TICKETLENS_LOG_LEVEL": "verbose"},
	}
	for _, env := range tests {
		for key, value := range requiredEnv() {
			env[key] = value
		}
		_, err := Load("ticketlens-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error for env %#v", env)
		}
	}
}

func TestLoadRequiresCredentials(t *testing.T) {
	for _, missing := range []string{
		"TICKETLENS_WAREHOUSE_BASE_URL",
		"TICKETLENS_WAREHOUSE_API_KEY",
		"TICKETLENS_HELPDESK_API_KEY",
	} {
		env := requiredEnv()
		delete(env, missing)
		_, err := Load("ticketlens-api", mapLookup(env))
		if err == nil {
			t.Fatalf("Load() expected error when %s is missing", missing)
		}
	}
}

func mapLookup(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
