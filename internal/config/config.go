// Package config holds default settings and the optional TOML config file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8080"

	// DefaultKVPort is the default port of the key-value server.
	DefaultKVPort = "8078"

	// DefaultStorage keeps the store in memory only.
	DefaultStorage = StorageMemory

	// DefaultFilePath is where the file backend writes when no path is given.
	DefaultFilePath = "tasks.csv"

	// DefaultKVURL points at a key-value server on the local machine.
	DefaultKVURL = "http://localhost:" + DefaultKVPort

	// DefaultBucketWidth is the scheduling slot width.
	DefaultBucketWidth = 10 * time.Minute

	// DefaultMaxDuration is the longest task window accepted.
	DefaultMaxDuration = 31 * 24 * time.Hour

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""
)

// Storage backend names.
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageKV       = "kv"
	StoragePostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Store   StoreConfig   `toml:"store"`
	Storage StorageConfig `toml:"storage"`
	KV      KVConfig      `toml:"kv"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port string `toml:"port"`
}

// StoreConfig holds task manager settings.
type StoreConfig struct {
	// HistoryCapacity bounds the view history; 0 means unbounded.
	HistoryCapacity int    `toml:"history_capacity"`
	BucketWidth     string `toml:"bucket_width"`
	MaxDuration     string `toml:"max_duration"`
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend     string `toml:"backend"`
	File        string `toml:"file"`
	KVURL       string `toml:"kv_url"`
	DatabaseURL string `toml:"database_url"`
}

// KVConfig holds key-value server settings.
type KVConfig struct {
	Port string `toml:"port"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: DefaultPort,
		},
		Store: StoreConfig{
			BucketWidth: DefaultBucketWidth.String(),
			MaxDuration: DefaultMaxDuration.String(),
		},
		Storage: StorageConfig{
			Backend:     DefaultStorage,
			File:        DefaultFilePath,
			KVURL:       DefaultKVURL,
			DatabaseURL: DefaultDatabaseURL,
		},
		KV: KVConfig{
			Port: DefaultKVPort,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults.
// An empty path or a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks values that cannot be caught by decoding alone.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageMemory, StorageFile, StorageKV, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if _, err := c.BucketWidth(); err != nil {
		return err
	}

	if _, err := c.MaxDuration(); err != nil {
		return err
	}

	if c.Store.HistoryCapacity < 0 {
		return fmt.Errorf("history capacity must not be negative, got %d", c.Store.HistoryCapacity)
	}

	return nil
}

// BucketWidth parses the configured scheduling slot width.
func (c *Config) BucketWidth() (time.Duration, error) {
	if c.Store.BucketWidth == "" {
		return DefaultBucketWidth, nil
	}
	d, err := time.ParseDuration(c.Store.BucketWidth)
	if err != nil {
		return 0, fmt.Errorf("invalid bucket width %q: %w", c.Store.BucketWidth, err)
	}
	if d <= 0 || time.Hour%d != 0 {
		return 0, fmt.Errorf("bucket width %s must evenly divide one hour", d)
	}
	return d, nil
}

// MaxDuration parses the longest task window accepted.
func (c *Config) MaxDuration() (time.Duration, error) {
	if c.Store.MaxDuration == "" {
		return DefaultMaxDuration, nil
	}
	d, err := time.ParseDuration(c.Store.MaxDuration)
	if err != nil {
		return 0, fmt.Errorf("invalid max duration %q: %w", c.Store.MaxDuration, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("max duration must be positive, got %s", d)
	}
	return d, nil
}
