// Package config provides application configuration.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // DISPLAY_TIMEZONE must resolve in minimal images.
)

const (
	defaultQueryAPIURL = "https://aakashdg-alert-summary-fc-backend.hf.space"
	defaultAlertAPIURL = "https://aakashdg-mcp-alert-generator.hf.space"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	AllowedOrigins []string
	LogLevel       slog.Level
	Backend        BackendConfig
	Session        SessionConfig
	Display        DisplayConfig
}

// BackendConfig points at the remote inference and alert services.
type BackendConfig struct {
	QueryURL string // advisory backend (POST /api/query, /api/export-pdf)
	AlertURL string // alert backend (GET /locations, POST /generate-alert)
	Timeout  time.Duration
}

// SessionConfig controls in-memory page sessions.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// DisplayConfig controls how backend values are presented.
type DisplayConfig struct {
	TimeZone string
	Location *time.Location
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LogLevel:       getEnvLevel("LOG_LEVEL", slog.LevelInfo),
		Backend: BackendConfig{
			QueryURL: strings.TrimRight(getEnv("QUERY_API_URL", defaultQueryAPIURL), "/"),
			AlertURL: strings.TrimRight(getEnv("ALERT_API_URL", defaultAlertAPIURL), "/"),
			Timeout:  getEnvDuration("BACKEND_TIMEOUT", 90*time.Second),
		},
		Session: SessionConfig{
			TTL:           getEnvDuration("PAGE_SESSION_TTL", 30*time.Minute),
			SweepInterval: time.Minute,
		},
		Display: DisplayConfig{
			TimeZone: getEnv("DISPLAY_TIMEZONE", "Asia/Kolkata"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set and
// resolves the display time zone.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if err := validateBaseURL("QUERY_API_URL", c.Backend.QueryURL); err != nil {
		return err
	}
	if err := validateBaseURL("ALERT_API_URL", c.Backend.AlertURL); err != nil {
		return err
	}
	if c.Backend.Timeout <= 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must be > 0")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("PAGE_SESSION_TTL must be > 0")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be > 0")
	}
	loc, err := time.LoadLocation(c.Display.TimeZone)
	if err != nil {
		return fmt.Errorf("DISPLAY_TIMEZONE %q: %w", c.Display.TimeZone, err)
	}
	c.Display.Location = loc
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func validateBaseURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host, got %q", key, raw)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvLevel(key string, fallback slog.Level) slog.Level {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
		return fallback
	}
	return level
}
