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

type SourceKind string

const (
	SourceGViz       SourceKind = "gviz"
	SourceSheetProxy SourceKind = "sheetproxy"
	SourceAirtable   SourceKind = "airtable"
	SourceXLSX       SourceKind = "xlsx"
)

const (
	DefaultSheetName    = "Sheet1"
	DefaultAirtableView = "Grid view"
)

type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Source        SourceConfig
	Upstream      UpstreamConfig
	Response      ResponseConfig
	CORS          CORSConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
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

type SourceConfig struct {
	Kind       SourceKind
	GSheet     GSheetConfig
	SheetProxy SheetProxyConfig
	Airtable   AirtableConfig
}

type GSheetConfig struct {
	ID      string
	Name    string
	BaseURL string
}

type SheetProxyConfig struct {
	BaseURL string
}

type AirtableConfig struct {
	Token   string
	BaseID  string
	Table   string
	View    string
	BaseURL string
}

type UpstreamConfig struct {
	Timeout   time.Duration
	UserAgent string
}

type ResponseConfig struct {
	CacheMaxAge time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required     bool
	StaticTokens string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("CHEFROULETTE_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid CHEFROULETTE_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	steps := []func() error{
		func() error { return applyString(lookup, "CHEFROULETTE_SERVICE_NAME", &cfg.Service.Name) },
		func() error { return applyString(lookup, "CHEFROULETTE_HTTP_ADDR", &cfg.HTTP.Address) },
		func() error { return applyDuration(lookup, "CHEFROULETTE_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout) },
		func() error { return applyDuration(lookup, "CHEFROULETTE_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout) },
		func() error { return applyDuration(lookup, "CHEFROULETTE_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout) },
		func() error { return applySourceKind(lookup, "CHEFROULETTE_SOURCE", &cfg.Source.Kind) },
		func() error { return applyString(lookup, "GSHEET_ID", &cfg.Source.GSheet.ID) },
		func() error { return applyStringDefault(lookup, "GSHEET_NAME", &cfg.Source.GSheet.Name) },
		func() error { return applyString(lookup, "CHEFROULETTE_GSHEETS_BASE_URL", &cfg.Source.GSheet.BaseURL) },
		func() error { return applyString(lookup, "CHEFROULETTE_SHEETPROXY_BASE_URL", &cfg.Source.SheetProxy.BaseURL) },
		func() error { return applyString(lookup, "AIRTABLE_TOKEN", &cfg.Source.Airtable.Token) },
		func() error { return applyString(lookup, "AIRTABLE_BASE_ID", &cfg.Source.Airtable.BaseID) },
		func() error { return applyString(lookup, "AIRTABLE_TABLE", &cfg.Source.Airtable.Table) },
		func() error { return applyStringDefault(lookup, "AIRTABLE_VIEW", &cfg.Source.Airtable.View) },
		func() error { return applyString(lookup, "CHEFROULETTE_AIRTABLE_BASE_URL", &cfg.Source.Airtable.BaseURL) },
		func() error { return applyDuration(lookup, "CHEFROULETTE_UPSTREAM_TIMEOUT", &cfg.Upstream.Timeout) },
		func() error { return applyString(lookup, "CHEFROULETTE_USER_AGENT", &cfg.Upstream.UserAgent) },
		func() error { return applyDuration(lookup, "CHEFROULETTE_CACHE_MAX_AGE", &cfg.Response.CacheMaxAge) },
		func() error { return applyList(lookup, "CHEFROULETTE_CORS_ORIGINS", &cfg.CORS.AllowedOrigins) },
		func() error { return applyBool(lookup, "CHEFROULETTE_LOG_JSON", &cfg.Observability.LogJSON) },
		func() error { return applyLogLevel(lookup, "CHEFROULETTE_LOG_LEVEL", &cfg.Observability.LogLevel) },
		func() error { return applyBool(lookup, "CHEFROULETTE_AUTH_REQUIRED", &cfg.Auth.Required) },
		func() error { return applyString(lookup, "CHEFROULETTE_AUTH_TOKENS", &cfg.Auth.StaticTokens) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return Config{}, err
		}
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Upstream.Timeout <= 0 {
		return Config{}, fmt.Errorf("invalid CHEFROULETTE_UPSTREAM_TIMEOUT: must be positive")
	}
	if cfg.Response.CacheMaxAge < 0 {
		return Config{}, fmt.Errorf("invalid CHEFROULETTE_CACHE_MAX_AGE: must not be negative")
	}
	if cfg.Auth.Required && strings.TrimSpace(cfg.Auth.StaticTokens) == "" {
		return Config{}, fmt.Errorf("CHEFROULETTE_AUTH_TOKENS is required when CHEFROULETTE_AUTH_REQUIRED is true")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "chefroulette-api"},
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Source: SourceConfig{
			Kind: SourceGViz,
			GSheet: GSheetConfig{
				Name:    DefaultSheetName,
				BaseURL: "https://docs.google.com",
			},
			SheetProxy: SheetProxyConfig{
				BaseURL: "https://opensheet.elk.sh",
			},
			Airtable: AirtableConfig{
				View:    DefaultAirtableView,
				BaseURL: "https://api.airtable.com",
			},
		},
		Upstream: UpstreamConfig{
			Timeout:   10 * time.Second,
			UserAgent: "ChefRoulette/1.0",
		},
		Response: ResponseConfig{
			CacheMaxAge: 60 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"*"},
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

// applyStringDefault keeps the default when the variable is set but blank.
func applyStringDefault(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyList(lookup LookupFunc, key string, dst *[]string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	values := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	*dst = values
	return nil
}

func applySourceKind(lookup LookupFunc, key string, dst *SourceKind) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	kind := SourceKind(strings.ToLower(strings.TrimSpace(raw)))
	switch kind {
	case SourceGViz, SourceSheetProxy, SourceAirtable, SourceXLSX:
		*dst = kind
		return nil
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
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
