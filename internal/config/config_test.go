package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagecraft.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"
prototypes = ["./protos/basic.yaml"]

[store]
backend = "redis"
redis_addr = "localhost:6379"
redis_ttl = "24h"
mask_props = ["apiToken"]

[history]
window = "250ms"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, 24*time.Hour, cfg.Store.RedisTTL.Duration)
	assert.Equal(t, []string{"apiToken"}, cfg.Store.MaskProps)
	assert.Equal(t, 250*time.Millisecond, cfg.History.Window.Duration)
	assert.Equal(t, ":8080", cfg.HTTP.Addr, "unset keys keep their default")
	assert.Equal(t, []string{"./protos/basic.yaml"}, cfg.Prototypes)
}

func TestLoad_MissingDefaultFileIsFine(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "unknown log level"},
		{"bad backend", func(c *Config) { c.Store.Backend = "mongo" }, "unknown store backend"},
		{"redis without addr", func(c *Config) { c.Store.Backend = BackendRedis }, "redis_addr"},
		{"short key", func(c *Config) { c.Store.EncryptionKey = "c2hvcnQ=" }, "32 bytes"},
		{"negative window", func(c *Config) { c.History.Window.Duration = -time.Second }, "negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStoreKey(t *testing.T) {
	s := StoreConfig{EncryptionKey: "MDEyMzQ1Njc4OTAxMjM0NTY3ODkwMTIzNDU2Nzg5MDE="}
	key, err := s.Key()
	require.NoError(t, err)
	assert.Len(t, key, 32)

	key, err = StoreConfig{}.Key()
	require.NoError(t, err)
	assert.Nil(t, key)
}
