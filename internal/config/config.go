package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Warehouse     WarehouseConfig
	Helpdesk      HelpdeskConfig
	DocSearch     DocSearchConfig
	Keywords      KeywordsConfig
	Observability ObservabilityConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// WarehouseConfig drives the Omni query client and the query template the
// webhook binds account ids into. LinkHints is a comma-separated list of
// substrings that mark a result value as a link when rendered on a card.
type WarehouseConfig struct {
	BaseURL        string
	APIKey         string
	PollTimeout    time.Duration
	PollInterval   time.Duration
	RequestTimeout time.Duration
	TemplatePath   string
	FilterField    string
	LinkHints      string
}

type HelpdeskConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// DocSearchConfig is optional: without a base URL and API key the service
// runs with documentation links disabled.
type DocSearchConfig struct {
	BaseURL     string
	APIKey      string
	Collection  string
	DocsBaseURL string
	MaxLinks    int
	Timeout     time.Duration
}

type KeywordsConfig struct {
	VocabularyPath string
	PreviewChars   int
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("TICKETLENS_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid TICKETLENS_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "TICKETLENS_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_WAREHOUSE_BASE_URL", &cfg.Warehouse.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_WAREHOUSE_API_KEY", &cfg.Warehouse.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_WAREHOUSE_POLL_TIMEOUT", &cfg.Warehouse.PollTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_WAREHOUSE_POLL_INTERVAL", &cfg.Warehouse.PollInterval); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_WAREHOUSE_REQUEST_TIMEOUT", &cfg.Warehouse.RequestTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_WAREHOUSE_TEMPLATE_PATH", &cfg.Warehouse.TemplatePath); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_WAREHOUSE_FILTER_FIELD", &cfg.Warehouse.FilterField); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_WAREHOUSE_LINK_HINTS", &cfg.Warehouse.LinkHints); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_HELPDESK_BASE_URL", &cfg.Helpdesk.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_HELPDESK_API_KEY", &cfg.Helpdesk.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_HELPDESK_TIMEOUT", &cfg.Helpdesk.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_DOCSEARCH_BASE_URL", &cfg.DocSearch.BaseURL); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_DOCSEARCH_API_KEY", &cfg.DocSearch.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_DOCSEARCH_COLLECTION", &cfg.DocSearch.Collection); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_DOCSEARCH_DOCS_BASE_URL", &cfg.DocSearch.DocsBaseURL); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "TICKETLENS_DOCSEARCH_MAX_LINKS", &cfg.DocSearch.MaxLinks); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "TICKETLENS_DOCSEARCH_TIMEOUT", &cfg.DocSearch.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "TICKETLENS_KEYWORDS_VOCABULARY_PATH", &cfg.Keywords.VocabularyPath); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "TICKETLENS_KEYWORDS_PREVIEW_CHARS", &cfg.Keywords.PreviewChars); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "TICKETLENS_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "TICKETLENS_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Warehouse.BaseURL == "" {
		return Config{}, fmt.Errorf("TICKETLENS_WAREHOUSE_BASE_URL is required")
	}
	if cfg.Warehouse.APIKey == "" {
		return Config{}, fmt.Errorf("TICKETLENS_WAREHOUSE_API_KEY is required")
	}
	if cfg.Helpdesk.APIKey == "" {
		return Config{}, fmt.Errorf("TICKETLENS_HELPDESK_API_KEY is required")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "ticketlens-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Warehouse: WarehouseConfig{
			PollTimeout:    30 * time.Second,
			PollInterval:   3 * time.Second,
			RequestTimeout: 15 * time.Second,
			TemplatePath:   "query_template.json",
			FilterField:    "users.email",
			LinkHints:      "omniapp.co",
		},
		Helpdesk: HelpdeskConfig{
			BaseURL: "https://api.usepylon.com",
			Timeout: 10 * time.Second,
		},
		DocSearch: DocSearchConfig{
			Collection:  "omni-docs",
			DocsBaseURL: "https://docs.omni.co",
			MaxLinks:    3,
			Timeout:     8 * time.Second,
		},
		Keywords: KeywordsConfig{
			PreviewChars: 200,
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18080"
		cfg.Observability.LogLevel = slog.LevelWarn
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
