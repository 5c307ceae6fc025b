package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, TransportHTTP, cfg.Server.Transport)
	assert.Equal(t, "/admin", cfg.Server.BasePath)
	assert.False(t, cfg.Production())
}

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg := Defaults()
	doc := `
server:
  addr: ":9090"
  transport: fiber
charts:
  theme: chalk
  cache_ttl: 30s
`
	require.NoError(t, Decode(strings.NewReader(doc), &cfg))
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, TransportFiber, cfg.Server.Transport)
	assert.Equal(t, "chalk", cfg.Charts.Theme)
	assert.Equal(t, 30*time.Second, cfg.Charts.CacheTTL)
	assert.Equal(t, "/admin", cfg.Server.BasePath, "unset fields keep defaults")
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	cfg := Defaults()
	err := Decode(strings.NewReader("server:\n  port: 80\n"), &cfg)
	require.Error(t, err)
}

func TestDecodeEmptyDocument(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, Decode(strings.NewReader(""), &cfg))
	assert.Equal(t, Defaults(), cfg)
}

func TestApplyEnv(t *testing.T) {
	cfg := Defaults()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"LIBADMIN_ADDR":             ":7000",
		"LIBADMIN_SESSION_LIFETIME": "30m",
		"LIBADMIN_SESSION_SECURE":   "true",
		"LIBADMIN_RATE_LIMIT_RPS":   "2.5",
		"LIBADMIN_RATE_LIMIT_BURST": "4",
		"LIBADMIN_LOG_FORMAT":       "json",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Session.Lifetime)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 4, cfg.RateLimit.Burst)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestApplyEnvRejectsMalformedValues(t *testing.T) {
	cases := map[string]string{
		"LIBADMIN_SESSION_LIFETIME": "soon",
		"LIBADMIN_DISABLE_CSRF":     "maybe",
		"LIBADMIN_RATE_LIMIT_RPS":   "fast",
		"LIBADMIN_RATE_LIMIT_BURST": "1.5",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			cfg := Defaults()
			err := cfg.ApplyEnv(lookupFrom(map[string]string{key: value}))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"empty addr":    func(c *Config) { c.Server.Addr = "" },
		"bad transport": func(c *Config) { c.Server.Transport = "grpc" },
		"relative base": func(c *Config) { c.Server.BasePath = "admin" },
		"zero lifetime": func(c *Config) { c.Session.Lifetime = 0 },
		"zero burst":    func(c *Config) { c.RateLimit.Burst = 0 },
		"bad level":     func(c *Config) { c.Log.Level = "loud" },
		"bad format":    func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Defaults()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadReadsFileAndEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "libadmin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  base_path: /library\n"), 0o600))
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte("LIBADMIN_CHART_THEME=vintage\n"), 0o600))
	t.Setenv("LIBADMIN_CHART_THEME", "")
	require.NoError(t, os.Unsetenv("LIBADMIN_CHART_THEME"))

	cfg, err := Load(path, envPath)
	require.NoError(t, err)
	assert.Equal(t, "/library", cfg.Server.BasePath)
	assert.Equal(t, "vintage", cfg.Charts.Theme)
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, LogConfig{Level: "warn", Format: "json"})
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}
