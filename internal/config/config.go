// Package config loads process configuration from the environment.
// A .env file in the working directory is honored outside production.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upstream modes.
const (
	ModeDirect = "direct"
	ModeLocal  = "local"
)

// Config holds every setting of the server and the watcher.
type Config struct {
	Port        string
	Env         string
	LogLevel    string
	Development bool

	// UpstreamMode selects how upstream base URLs are resolved:
	// "local" sends everything through ProxyOrigin, "direct" hits the real hosts.
	UpstreamMode string
	ProxyOrigin  string

	ARPBaseURL           string
	SupplierPrimaryURL   string
	SupplierSecondaryURL string

	FetchTimeout    time.Duration
	SupplierTimeout time.Duration

	// FanoutLimit caps concurrent balance checks per page. 0 means unbounded.
	FanoutLimit int

	WebhookURL string
	// NotifyAllowedURLs are the extra webhooks a search request may pick.
	NotifyAllowedURLs []string
	NotifyMaxAttempts int
	NotifyTimeout     time.Duration
	NotifyBackoffUnit time.Duration

	ProxyEnabled bool
	ProxyTimeout time.Duration

	SessionIdleTimeout time.Duration

	WatchSchedule     string
	WatchItemCodes    []string
	WatchWindowDays   int
	WatchOnlyPositive bool
	WatchPageSize     int
}

// Load reads configuration. envFile may be empty to skip .env loading.
func Load(envFile string) (*Config, error) {
	if envFile != "" && os.Getenv("APP_ENV") != "production" {
		// Missing .env is fine, variables may come from the real environment.
		_ = godotenv.Load(envFile)
	}

	cfg := &Config{
		Port:     getEnv("APP_PORT", getEnv("PORT", "3000")),
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		UpstreamMode: strings.ToLower(getEnv("UPSTREAM_MODE", ModeDirect)),
		ProxyOrigin:  getEnv("UPSTREAM_PROXY_ORIGIN", "http://localhost:3000"),

		ARPBaseURL:           getEnv("ARP_API_BASE", "https://dadosabertos.compras.gov.br/"),
		SupplierPrimaryURL:   getEnv("CNPJ_PRIMARY_BASE", "https://www.receitaws.com.br/v1/cnpj/"),
		SupplierSecondaryURL: getEnv("CNPJ_SECONDARY_BASE", "https://brasilapi.com.br/api/cnpj/v1/"),

		FetchTimeout:    getEnvDuration("FETCH_TIMEOUT", 12*time.Second),
		SupplierTimeout: getEnvDuration("SUPPLIER_TIMEOUT", 15*time.Second),
		FanoutLimit:     getEnvInt("FANOUT_LIMIT", 0),

		WebhookURL:        getEnv("N8N_WEBHOOK_URL", ""),
		NotifyAllowedURLs: getEnvList("NOTIFY_ALLOWED_URLS"),
		NotifyMaxAttempts: getEnvInt("NOTIFY_MAX_ATTEMPTS", 2),
		NotifyTimeout:     getEnvDuration("NOTIFY_TIMEOUT", 5*time.Second),
		NotifyBackoffUnit: getEnvDuration("NOTIFY_BACKOFF", time.Second),

		ProxyEnabled: getEnvBool("PROXY_ENABLED", true),
		ProxyTimeout: getEnvDuration("PROXY_TIMEOUT", 30*time.Second),

		SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute),

		WatchSchedule:     getEnv("WATCH_SCHEDULE", "0 7 * * *"),
		WatchItemCodes:    getEnvList("WATCH_ITEM_CODES"),
		WatchWindowDays:   getEnvInt("WATCH_WINDOW_DAYS", 180),
		WatchOnlyPositive: getEnvBool("WATCH_ONLY_POSITIVE", true),
		WatchPageSize:     getEnvInt("WATCH_PAGE_SIZE", 50),
	}
	cfg.Development = cfg.Env == "development"

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.UpstreamMode != ModeDirect && c.UpstreamMode != ModeLocal {
		return fmt.Errorf("UPSTREAM_MODE must be %q or %q, got %q", ModeDirect, ModeLocal, c.UpstreamMode)
	}
	if c.UpstreamMode == ModeLocal && c.ProxyOrigin == "" {
		return fmt.Errorf("UPSTREAM_PROXY_ORIGIN is required in local mode")
	}
	if c.FanoutLimit < 0 {
		return fmt.Errorf("FANOUT_LIMIT must not be negative")
	}
	if c.NotifyMaxAttempts < 1 {
		return fmt.Errorf("NOTIFY_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// IsLocal reports whether upstream calls go through the local proxy origin.
func (c *Config) IsLocal() bool {
	return c.UpstreamMode == ModeLocal
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
