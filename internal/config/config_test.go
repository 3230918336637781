// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/pkg/errutil"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accountd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func serveFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	config.RegisterServeFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")

	cfg, err := config.Load("", serveFlags(t))
	require.NoError(t, err)

	assert.Equal(t, config.Default(), *cfg)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "")
	path := writeConfig(t, `
http:
  addr: 0.0.0.0:8000
log:
  format: text
  level: debug
database:
  url: postgres://app@db/accountd
  max_conns: 25
cache:
  driver: Memory
auth:
  token_ttl: 30m
startup:
  max_retries: 2
  retry_base: 100ms
`)

	cfg, err := config.Load(path, serveFlags(t))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8000", cfg.HTTP.Addr)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://app@db/accountd", cfg.Database.URL)
	assert.Equal(t, int32(25), cfg.Database.MaxConns)
	assert.Equal(t, config.CacheDriverMemory, cfg.Cache.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, uint64(2), cfg.Startup.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, cfg.Startup.RetryBase)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr, "unset keys keep their defaults")
}

func TestLoad_ExplicitFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
http:
  addr: 0.0.0.0:8000
log:
  format: text
`)

	cfg, err := config.Load(path, serveFlags(t, "--http-addr", "127.0.0.1:9999", "--token-ttl", "5m", "--metrics-addr", ""))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9999", cfg.HTTP.Addr)
	assert.Equal(t, "text", cfg.Log.Format, "unchanged flags do not clobber the file")
	assert.Equal(t, 5*time.Minute, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Metrics.Addr)
}

func TestLoad_DatabaseURLFallsBackToEnv(t *testing.T) {
	t.Setenv(config.DatabaseURLEnv, "postgres://env@db/accountd")

	cfg, err := config.Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env@db/accountd", cfg.Database.URL)

	cfg, err = config.Load("", serveFlags(t, "--database-url", "postgres://flag@db/accountd"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag@db/accountd", cfg.Database.URL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestLoad_MalformedFile(t *testing.T) {
	_, err := config.Load(writeConfig(t, "http: [unterminated"), nil)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "CONFIG_LOAD_FAILED")
}

func TestConfig_Validate(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Database.URL = "postgres://localhost/accountd"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantKey string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"memory driver needs no redis", func(c *config.Config) { c.Cache.Driver = config.CacheDriverMemory; c.Redis.Addr = "" }, ""},
		{"empty http addr", func(c *config.Config) { c.HTTP.Addr = "" }, "http.addr"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad log level", func(c *config.Config) { c.Log.Level = "loud" }, "log.level"},
		{"missing database url", func(c *config.Config) { c.Database.URL = "" }, "database.url"},
		{"zero max conns", func(c *config.Config) { c.Database.MaxConns = 0 }, "database.max_conns"},
		{"unknown cache driver", func(c *config.Config) { c.Cache.Driver = "memcached" }, "cache.driver"},
		{"redis driver without addr", func(c *config.Config) { c.Redis.Addr = "" }, "redis.addr"},
		{"sub-second ttl", func(c *config.Config) { c.Auth.TokenTTL = 500 * time.Millisecond }, "auth.token_ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantKey == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			errutil.AssertErrorCode(t, err, "CONFIG_INVALID")
			errutil.AssertErrorContext(t, err, "key", tt.wantKey)
		})
	}
}
