// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package config loads accountd settings.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// YAML file, then command-line flags that were explicitly set. The database
// URL falls back to the DATABASE_URL environment variable when no other
// source provides it.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/accountd/accountd/internal/logging"
)

// DatabaseURLEnv is read when database.url is not configured.
const DatabaseURLEnv = "DATABASE_URL"

// Cache drivers.
const (
	CacheDriverRedis  = "redis"
	CacheDriverMemory = "memory"
)

// Config is the full accountd configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Cache    CacheConfig    `koanf:"cache"`
	Auth     AuthConfig     `koanf:"auth"`
	Startup  StartupConfig  `koanf:"startup"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr string `koanf:"addr"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// DatabaseConfig configures the Postgres pool.
type DatabaseConfig struct {
	URL      string `koanf:"url"`
	MaxConns int32  `koanf:"max_conns"`
}

// RedisConfig configures the Redis client used by the token cache.
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// CacheConfig selects the token cache implementation.
type CacheConfig struct {
	Driver string `koanf:"driver"`
}

// AuthConfig configures access tokens.
type AuthConfig struct {
	TokenTTL time.Duration `koanf:"token_ttl"`
}

// StartupConfig bounds how long startup waits for backing services.
type StartupConfig struct {
	MaxRetries uint64        `koanf:"max_retries"`
	RetryBase  time.Duration `koanf:"retry_base"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP:     HTTPConfig{Addr: "127.0.0.1:8080"},
		Metrics:  MetricsConfig{Addr: "127.0.0.1:9100"},
		Log:      LogConfig{Format: logging.FormatJSON, Level: "info"},
		Database: DatabaseConfig{MaxConns: 10},
		Redis:    RedisConfig{Addr: "127.0.0.1:6379"},
		Cache:    CacheConfig{Driver: CacheDriverRedis},
		Auth:     AuthConfig{TokenTTL: time.Hour},
		Startup:  StartupConfig{MaxRetries: 5, RetryBase: 500 * time.Millisecond},
	}
}

// defaults flattens Default into koanf keys.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"http.addr":           d.HTTP.Addr,
		"metrics.addr":        d.Metrics.Addr,
		"log.format":          d.Log.Format,
		"log.level":           d.Log.Level,
		"database.url":        d.Database.URL,
		"database.max_conns":  d.Database.MaxConns,
		"redis.addr":          d.Redis.Addr,
		"redis.password":      d.Redis.Password,
		"redis.db":            d.Redis.DB,
		"cache.driver":        d.Cache.Driver,
		"auth.token_ttl":      d.Auth.TokenTTL,
		"startup.max_retries": d.Startup.MaxRetries,
		"startup.retry_base":  d.Startup.RetryBase,
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the flags in fs that were explicitly set. fs may be nil.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrapf(err, "read config file")
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "read flags")
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "decode config")
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = os.Getenv(DatabaseURLEnv)
	}
	cfg.Cache.Driver = strings.ToLower(strings.TrimSpace(cfg.Cache.Driver))

	return &cfg, nil
}

// Validate checks the settings serve needs.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "http address is required")
	}
	if c.Log.Format != logging.FormatJSON && c.Log.Format != logging.FormatText {
		return invalid("log.format", "log format must be json or text")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "log level must be debug, info, warn or error")
	}
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.Database.MaxConns <= 0 {
		return invalid("database.max_conns", "database max connections must be positive")
	}
	switch c.Cache.Driver {
	case CacheDriverRedis:
		if c.Redis.Addr == "" {
			return invalid("redis.addr", "redis address is required for the redis cache driver")
		}
	case CacheDriverMemory:
	default:
		return invalid("cache.driver", "cache driver must be redis or memory")
	}
	if c.Auth.TokenTTL < time.Second {
		return invalid("auth.token_ttl", "token TTL must be at least 1s")
	}
	return nil
}

// ValidateDatabase checks only the database URL. Used by commands that do
// not start the server.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" {
		return invalid("database.url", "database URL is required (set database.url or "+DatabaseURLEnv+")")
	}
	return nil
}

func invalid(key, msg string) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf("%s", msg)
}
