package config_test

import (
	"bytes"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/aiterm/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://localhost:8000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.ExecuteTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "~/Desktop", cfg.Directory)
	assert.True(t, cfg.Autocomplete)
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "aiterm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: http://backend:9000
debounce: 150ms
theme: dark
autocomplete: false
`), 0o644))

	t.Setenv("AITERM_THEME", "light")
	t.Setenv("AITERM_EXECUTE_TIMEOUT", "45s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:9000", cfg.APIURL, "file overrides default")
	assert.Equal(t, 150*time.Millisecond, cfg.Debounce)
	assert.False(t, cfg.Autocomplete)
	assert.Equal(t, "light", cfg.Theme, "environment overrides file")
	assert.Equal(t, 45*time.Second, cfg.ExecuteTimeout)
	assert.Equal(t, "/api/execute", cfg.ExecutePath, "untouched fields keep defaults")
}

func TestLoad_Errors(t *testing.T) {
	t.Run("Missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("Bad env value", func(t *testing.T) {
		t.Setenv("AITERM_DEBOUNCE", "soon")
		_, err := config.Load("")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero timeout", func(c *config.Config) { c.ExecuteTimeout = 0 }},
		{"negative debounce", func(c *config.Config) { c.Debounce = -time.Second }},
		{"unknown theme", func(c *config.Config) { c.Theme = "neon" }},
		{"relative url", func(c *config.Config) { c.APIURL = "localhost:8000" }},
		{"bad port", func(c *config.Config) { c.Port = 70000 }},
		{"bad log level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"two stores", func(c *config.Config) {
			c.RedisURL = "redis://localhost"
			c.SessionDir = "/tmp/s"
		}},
		{"short key", func(c *config.Config) { c.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("short")) }},
		{"fallback without key", func(c *config.Config) { c.FallbackKeys = []string{"x"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestKeys(t *testing.T) {
	cfg := config.Default()
	active, fallback, err := cfg.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	key := bytes.Repeat([]byte{7}, 32)
	old := bytes.Repeat([]byte{9}, 32)
	t.Setenv("AITERM_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(key))
	t.Setenv("AITERM_FALLBACK_KEYS", base64.StdEncoding.EncodeToString(old))

	cfg, err = config.Load("")
	require.NoError(t, err)
	active, fallback, err = cfg.Keys()
	require.NoError(t, err)
	assert.Equal(t, key, active)
	assert.Equal(t, [][]byte{old}, fallback)
}
