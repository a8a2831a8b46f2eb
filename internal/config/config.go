package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	APIBaseURL         string `env:"CHATIFY_API_URL" envDefault:"https://chatify-api.up.railway.app"`
	StatePath          string `env:"CHATIFY_STATE_PATH"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	SentryDSN          string `env:"SENTRY_DSN"`
	HTTPTimeoutSeconds int    `env:"HTTP_TIMEOUT_SECONDS" envDefault:"15"`
	DebounceMillis     int    `env:"FETCH_DEBOUNCE_MS" envDefault:"300"`
	PollSeconds        int    `env:"POLL_INTERVAL_SECONDS" envDefault:"5"`
	AvatarBaseURL      string `env:"AVATAR_BASE_URL" envDefault:"https://i.pravatar.cc/300"`
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) FetchDebounce() time.Duration {
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("CHATIFY_API_URL must be an absolute URL, got %q", c.APIBaseURL)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("CHATIFY_API_URL must use http or https, got %q", u.Scheme)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.DebounceMillis < 0 {
		return fmt.Errorf("FETCH_DEBOUNCE_MS must not be negative")
	}
	if c.PollSeconds <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if cfg.StatePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.StatePath = filepath.Join(home, ".chatify", "state.db")
	}

	return &cfg, nil
}
