// Package config holds engine configuration with environment loading and
// validation
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds configuration settings for the orchestrator
type Config struct {
	// API Server
	APIHost  string
	APIPort  int
	LogLevel string

	// Stores
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	// Archiving
	ArchiveBucketURL string
	ArchivePrefix    string

	// Engine
	MaxBatchSize    int
	GraphCacheSize  int
	ShutdownTimeout time.Duration
}

const (
	DefaultAPIPort = 8080
	DefaultAPIHost = "0.0.0.0"
	MaxTCPPort     = 65535

	DefaultRedisAddr   = "localhost:6379"
	DefaultRedisDB     = 0
	DefaultRedisPrefix = "floe"

	DefaultGraphCacheSize  = 1024
	DefaultShutdownTimeout = 10 * time.Second

	MaxGraphCacheSize = 1_000_000
	MaxBatchSizeLimit = 10_000
)

var (
	ErrInvalidAPIPort        = errors.New("invalid API port")
	ErrInvalidGraphCacheSize = errors.New("graph cache size must be positive")
	ErrInvalidBatchSize      = errors.New("max batch size cannot be negative")
)

// NewDefaultConfig creates a configuration with sensible defaults for all
// engine settings and stores
func NewDefaultConfig() *Config {
	return &Config{
		APIPort:         DefaultAPIPort,
		APIHost:         DefaultAPIHost,
		LogLevel:        "info",
		RedisAddr:       DefaultRedisAddr,
		RedisDB:         DefaultRedisDB,
		RedisPrefix:     DefaultRedisPrefix,
		GraphCacheSize:  DefaultGraphCacheSize,
		ShutdownTimeout: DefaultShutdownTimeout,
	}
}

// LoadFromEnv populates configuration values from environment variables.
// Returns an error if any env var cannot be parsed
func (c *Config) LoadFromEnv() error {
	if apiHost := os.Getenv("API_HOST"); apiHost != "" {
		c.APIHost = apiHost
	}
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		c.LogLevel = logLevel
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		c.RedisAddr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		c.RedisPassword = password
	}
	if prefix := os.Getenv("REDIS_PREFIX"); prefix != "" {
		c.RedisPrefix = prefix
	}
	if bucketURL := os.Getenv("ARCHIVE_BUCKET_URL"); bucketURL != "" {
		c.ArchiveBucketURL = bucketURL
	}
	if prefix := os.Getenv("ARCHIVE_PREFIX"); prefix != "" {
		c.ArchivePrefix = prefix
	}

	if err := loadEnvInt("API_PORT", &c.APIPort, 0, MaxTCPPort); err != nil {
		return err
	}
	if err := loadEnvInt("REDIS_DB", &c.RedisDB, -1, 15); err != nil {
		return err
	}
	if err := loadEnvInt(
		"GRAPH_CACHE_SIZE", &c.GraphCacheSize, 0, MaxGraphCacheSize,
	); err != nil {
		return err
	}
	if err := loadEnvInt(
		"MAX_BATCH_SIZE", &c.MaxBatchSize, 0, MaxBatchSizeLimit,
	); err != nil {
		return err
	}

	return nil
}

// Validate checks that all configuration values are valid
func (c *Config) Validate() error {
	if c.APIPort <= 0 || c.APIPort > MaxTCPPort {
		return fmt.Errorf("%w: %d", ErrInvalidAPIPort, c.APIPort)
	}
	if c.GraphCacheSize <= 0 {
		return ErrInvalidGraphCacheSize
	}
	if c.MaxBatchSize < 0 {
		return ErrInvalidBatchSize
	}
	return nil
}

// loadEnvInt reads key from the environment, parses it as an integer, and
// sets *dst if the value is in the range (min, max). Returns an error if
// the value cannot be parsed or falls outside the valid range
func loadEnvInt[T ~int | ~int64](key string, dst *T, min, max T) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %q", key, s)
	}
	tv := T(v)
	if tv <= min || tv > max {
		return fmt.Errorf("invalid %s: %d out of range [%d, %d]",
			key, tv, min+1, max)
	}
	*dst = tv
	return nil
}
