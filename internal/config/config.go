// Package config reads the optional pagecraft.toml file.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/aretw0/pagecraft/internal/logging"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "pagecraft.toml"

// Store backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendLoam   = "loam"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Config is the editor configuration.
type Config struct {
	LogLevel string        `toml:"log_level"`
	Store    StoreConfig   `toml:"store"`
	History  HistoryConfig `toml:"history"`
	HTTP     HTTPConfig    `toml:"http"`
	// Prototypes are YAML definition bundles registered at startup.
	Prototypes []string `toml:"prototypes"`
}

type StoreConfig struct {
	Backend string `toml:"backend"`
	// Path is the directory of the file and loam stores or the SQLite file.
	Path string `toml:"path"`

	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	RedisPrefix   string   `toml:"redis_prefix"`
	RedisTTL      Duration `toml:"redis_ttl"`

	// EncryptionKey is a base64 AES-256 key; pages are stored encrypted
	// when set.
	EncryptionKey string `toml:"encryption_key"`
	// MaskProps are patterns of prop and param keys masked before storage.
	MaskProps []string `toml:"mask_props"`
}

type HistoryConfig struct {
	Window Duration `toml:"window"`
}

type HTTPConfig struct {
	Addr string `toml:"addr"`
}

// Duration decodes TOML strings such as "1s" or "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store:    StoreConfig{Backend: BackendFile, Path: ".pagecraft/pages"},
		History:  HistoryConfig{Window: Duration{time.Second}},
		HTTP:     HTTPConfig{Addr: ":8080"},
	}
}

// Load reads path over the defaults. A missing DefaultFile is not an
// error; a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values a typo would break.
func (c Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendLoam, BackendSQLite:
	case BackendRedis:
		if c.Store.RedisAddr == "" {
			errs = append(errs, errors.New("store.redis_addr is required for the redis backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store backend %q", c.Store.Backend))
	}
	if c.Store.EncryptionKey != "" {
		if _, err := c.Store.Key(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.History.Window.Duration < 0 {
		errs = append(errs, errors.New("history.window cannot be negative"))
	}
	return errors.Join(errs...)
}

// Key decodes the encryption key. It is nil when none is configured.
func (s StoreConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("store.encryption_key is not base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("store.encryption_key must be 32 bytes, got %d", len(key))
	}
	return key, nil
}
