// Package config loads the aiterm configuration from defaults, an optional
// YAML file and AITERM_* environment variables, in that order.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/aretw0/aiterm/internal/logging"
	"github.com/aretw0/aiterm/pkg/domain"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "AITERM"

// Theme names accepted by the renderers.
const (
	ThemeAuto  = "auto"
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// Config holds all application configuration.
type Config struct {
	APIURL         string        `yaml:"api_url" envconfig:"API_URL"`
	ExecutePath    string        `yaml:"execute_path" envconfig:"EXECUTE_PATH"`
	SuggestPath    string        `yaml:"suggest_path" envconfig:"SUGGEST_PATH"`
	StatusPath     string        `yaml:"status_path" envconfig:"STATUS_PATH"`
	ExecuteTimeout time.Duration `yaml:"execute_timeout" envconfig:"EXECUTE_TIMEOUT"`
	SuggestTimeout time.Duration `yaml:"suggest_timeout" envconfig:"SUGGEST_TIMEOUT"`
	Debounce       time.Duration `yaml:"debounce" envconfig:"DEBOUNCE"`
	RateLimit      float64       `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	RateBurst      int           `yaml:"rate_burst" envconfig:"RATE_BURST"`
	SuggestRetries int           `yaml:"suggest_retries" envconfig:"SUGGEST_RETRIES"`

	Autocomplete   bool   `yaml:"autocomplete" envconfig:"AUTOCOMPLETE"`
	ShowTimestamps bool   `yaml:"show_timestamps" envconfig:"SHOW_TIMESTAMPS"`
	Theme          string `yaml:"theme" envconfig:"THEME"`
	User           string `yaml:"user" envconfig:"PROMPT_USER"`
	Host           string `yaml:"host" envconfig:"PROMPT_HOST"`
	Directory      string `yaml:"directory" envconfig:"DIRECTORY"`
	Catalog        string `yaml:"catalog" envconfig:"CATALOG"`

	RedisURL   string        `yaml:"redis_url" envconfig:"REDIS_URL"`
	SessionDir string        `yaml:"session_dir" envconfig:"SESSION_DIR"`
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"SESSION_TTL"`

	// EncryptionKey is a base64 AES-256 key sealing stored sessions.
	EncryptionKey  string   `yaml:"encryption_key" envconfig:"ENCRYPTION_KEY"`
	FallbackKeys   []string `yaml:"fallback_keys" envconfig:"FALLBACK_KEYS"`
	Redact         bool     `yaml:"redact" envconfig:"REDACT"`
	RedactPatterns []string `yaml:"redact_patterns" envconfig:"REDACT_PATTERNS"`

	Port       int           `yaml:"port" envconfig:"SERVER_PORT"`
	LogLevel   string        `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		APIURL:         "http://localhost:8000",
		ExecutePath:    "/api/execute",
		SuggestPath:    "/api/suggestions",
		StatusPath:     "/api/status",
		ExecuteTimeout: 30 * time.Second,
		SuggestTimeout: 5 * time.Second,
		Debounce:       300 * time.Millisecond,
		RateLimit:      20,
		RateBurst:      10,
		SuggestRetries: 2,
		Autocomplete:   true,
		Theme:          ThemeAuto,
		User:           "user",
		Host:           "localhost",
		Directory:      domain.DefaultDirectory,
		SessionTTL:     24 * time.Hour,
		Redact:         true,
		Port:           8080,
		LogLevel:       "info",
	}
}

// Load layers the YAML file at path (optional) and the environment over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the console cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.ExecuteTimeout <= 0 {
		errs = append(errs, errors.New("execute_timeout must be positive"))
	}
	if c.SuggestTimeout <= 0 {
		errs = append(errs, errors.New("suggest_timeout must be positive"))
	}
	if c.Debounce < 0 {
		errs = append(errs, errors.New("debounce must not be negative"))
	}
	if c.RateLimit < 0 || c.RateBurst < 0 || c.SuggestRetries < 0 {
		errs = append(errs, errors.New("rate_limit, rate_burst and suggest_retries must not be negative"))
	}
	switch c.Theme {
	case ThemeAuto, ThemeDark, ThemeLight:
	default:
		errs = append(errs, fmt.Errorf("unknown theme %q", c.Theme))
	}
	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("invalid api_url %q", c.APIURL))
	}
	if c.Port < 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid port %d", c.Port))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.RedisURL != "" && c.SessionDir != "" {
		errs = append(errs, errors.New("redis_url and session_dir are mutually exclusive"))
	}
	if _, _, err := c.Keys(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Keys decodes the encryption keys. Both results are nil when encryption is off.
func (c *Config) Keys() (active []byte, fallback [][]byte, err error) {
	if c.EncryptionKey == "" {
		if len(c.FallbackKeys) > 0 {
			return nil, nil, errors.New("fallback_keys require encryption_key")
		}
		return nil, nil, nil
	}
	decode := func(name, v string) ([]byte, error) {
		k, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("%s is not valid base64: %w", name, err)
		}
		if len(k) != 32 {
			return nil, fmt.Errorf("%s must decode to 32 bytes, got %d", name, len(k))
		}
		return k, nil
	}
	if active, err = decode("encryption_key", c.EncryptionKey); err != nil {
		return nil, nil, err
	}
	for _, v := range c.FallbackKeys {
		k, err := decode("fallback_keys", v)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, k)
	}
	return active, fallback, nil
}
