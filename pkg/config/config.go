// Package config loads library admin settings from YAML, .env files and
// LIBADMIN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "LIBADMIN_"

const (
	TransportHTTP  = "http"
	TransportFiber = "fiber"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	Transport       string        `yaml:"transport"`
	BasePath        string        `yaml:"base_path"`
	Env             string        `yaml:"env"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	DisableCSRF     bool          `yaml:"disable_csrf"`
}

// SessionConfig configures workspace identity and lifetime.
type SessionConfig struct {
	CookieName    string        `yaml:"cookie_name"`
	Lifetime      time.Duration `yaml:"lifetime"`
	Secure        bool          `yaml:"secure"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// ChartConfig configures the dashboard charts.
type ChartConfig struct {
	Theme      string        `yaml:"theme"`
	AssetsHost string        `yaml:"assets_host"`
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// CatalogConfig configures seed data and book defaults.
type CatalogConfig struct {
	SeedFile         string `yaml:"seed_file"`
	PlaceholderImage string `yaml:"placeholder_image"`
}

// RateLimitConfig throttles mutating requests per client.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Session   SessionConfig   `yaml:"session"`
	Charts    ChartConfig     `yaml:"charts"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Transport:       TransportHTTP,
			BasePath:        "/admin",
			Env:             "development",
			ShutdownTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			CookieName:    "libadmin_session",
			Lifetime:      12 * time.Hour,
			SweepInterval: 5 * time.Minute,
		},
		Charts: ChartConfig{
			Theme:      "westeros",
			AssetsHost: "https://go-echarts.github.io/go-echarts-assets/assets/",
			CacheTTL:   time.Minute,
		},
		RateLimit: RateLimitConfig{RPS: 5, Burst: 20},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
}

// Load builds the configuration: defaults, then the YAML file (when path is
// set), then the .env file and LIBADMIN_* variables.
func Load(path, envFile string) (Config, error) {
	cfg := Defaults()
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	}
	if path != "" {
		f, err := os.Open(path) //nolint:gosec
		if err != nil {
			return cfg, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()
		if err := Decode(f, &cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Decode reads YAML into cfg, rejecting unknown fields. An empty document
// leaves cfg untouched.
func Decode(r io.Reader, cfg *Config) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from LIBADMIN_* variables resolved by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDR":              &c.Server.Addr,
		"TRANSPORT":         &c.Server.Transport,
		"BASE_PATH":         &c.Server.BasePath,
		"ENV":               &c.Server.Env,
		"SESSION_COOKIE":    &c.Session.CookieName,
		"CHART_THEME":       &c.Charts.Theme,
		"CHART_ASSETS_HOST": &c.Charts.AssetsHost,
		"SEED_FILE":         &c.Catalog.SeedFile,
		"PLACEHOLDER_IMAGE": &c.Catalog.PlaceholderImage,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
	}
	for key, target := range strs {
		if value, ok := lookup(EnvPrefix + key); ok {
			*target = strings.TrimSpace(value)
		}
	}

	durations := map[string]*time.Duration{
		"SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
		"SESSION_LIFETIME": &c.Session.Lifetime,
		"SWEEP_INTERVAL":   &c.Session.SweepInterval,
		"CHART_CACHE_TTL":  &c.Charts.CacheTTL,
	}
	for key, target := range durations {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*target = d
	}

	bools := map[string]*bool{
		"SESSION_SECURE": &c.Session.Secure,
		"DISABLE_CSRF":   &c.Server.DisableCSRF,
	}
	for key, target := range bools {
		value, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %s%s: %w", EnvPrefix, key, err)
		}
		*target = b
	}

	if value, ok := lookup(EnvPrefix + "RATE_LIMIT_RPS"); ok {
		rps, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("config: %sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
		c.RateLimit.RPS = rps
	}
	if value, ok := lookup(EnvPrefix + "RATE_LIMIT_BURST"); ok {
		burst, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("config: %sRATE_LIMIT_BURST: %w", EnvPrefix, err)
		}
		c.RateLimit.Burst = burst
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("config: server.addr is required")
	}
	switch c.Server.Transport {
	case TransportHTTP, TransportFiber:
	default:
		return fmt.Errorf("config: unsupported transport %q", c.Server.Transport)
	}
	if !strings.HasPrefix(c.Server.BasePath, "/") {
		return fmt.Errorf("config: base_path %q must start with /", c.Server.BasePath)
	}
	if c.Session.Lifetime <= 0 {
		return errors.New("config: session.lifetime must be positive")
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("config: rate_limit rps and burst must be positive")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: unsupported log format %q", c.Log.Format)
	}
	return nil
}

// Production reports whether the server runs in production mode.
func (c Config) Production() bool {
	return strings.EqualFold(c.Server.Env, "production")
}
