// Package config loads configuration from environment variables, optionally
// layered over a YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration.
type Config struct {
	// Server
	ListenAddr      string        `yaml:"listen_addr"`
	MetricsAddr     string        `yaml:"metrics_addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigin      string        `yaml:"cors_origin"`

	// Logging
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Storage
	StorageRoot  string `yaml:"storage_root"`
	TrashDir     string `yaml:"trash_dir"`
	StaticPrefix string `yaml:"static_prefix"`

	// Uploads
	MaxUploadSize int64 `yaml:"max_upload_size"`

	// Recent files
	RecentLimit int `yaml:"recent_limit"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		ListenAddr:      ":5000",
		MetricsAddr:     ":9090",
		ShutdownTimeout: 10 * time.Second,
		CORSOrigin:      "*",
		LogLevel:        "info",
		LogFormat:       "json",
		StorageRoot:     "./user_data",
		TrashDir:        ".trash",
		StaticPrefix:    "/user_data",
		MaxUploadSize:   100 * 1024 * 1024, // 100MB default
		RecentLimit:     50,
	}
}

// Load reads configuration: defaults, then the YAML file named by CONFIG_FILE
// (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ListenAddr = envOr("LISTEN_ADDR", cfg.ListenAddr)
	cfg.MetricsAddr = envOrEmpty("METRICS_ADDR", cfg.MetricsAddr)
	cfg.ShutdownTimeout = envDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.CORSOrigin = envOrEmpty("CORS_ORIGIN", cfg.CORSOrigin)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.StorageRoot = envOr("STORAGE_ROOT", cfg.StorageRoot)
	cfg.TrashDir = envOr("TRASH_DIR", cfg.TrashDir)
	cfg.StaticPrefix = envOr("STATIC_PREFIX", cfg.StaticPrefix)
	cfg.MaxUploadSize = envInt64("MAX_UPLOAD_SIZE", cfg.MaxUploadSize)
	cfg.RecentLimit = envInt("RECENT_LIMIT", cfg.RecentLimit)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.StorageRoot) == "" {
		return fmt.Errorf("STORAGE_ROOT is required")
	}
	abs, err := filepath.Abs(c.StorageRoot)
	if err != nil {
		return fmt.Errorf("resolve STORAGE_ROOT: %w", err)
	}
	c.StorageRoot = abs

	if c.TrashDir == "" || c.TrashDir == "." || c.TrashDir == ".." ||
		strings.ContainsAny(c.TrashDir, `/\`) {
		return fmt.Errorf("TRASH_DIR must be a single path segment, got %q", c.TrashDir)
	}

	if !strings.HasPrefix(c.StaticPrefix, "/") || c.StaticPrefix == "/" {
		return fmt.Errorf("STATIC_PREFIX must start with / and not be the root, got %q", c.StaticPrefix)
	}
	c.StaticPrefix = strings.TrimSuffix(c.StaticPrefix, "/")

	if c.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.RecentLimit <= 0 {
		return fmt.Errorf("RECENT_LIMIT must be positive")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envOrEmpty is like envOr but an explicitly empty variable wins, so
// METRICS_ADDR= disables the metrics listener.
func envOrEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
