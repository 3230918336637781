// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package config

import "github.com/spf13/pflag"

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"http-addr":          "http.addr",
	"metrics-addr":       "metrics.addr",
	"log-format":         "log.format",
	"log-level":          "log.level",
	"database-url":       "database.url",
	"database-max-conns": "database.max_conns",
	"redis-addr":         "redis.addr",
	"redis-password":     "redis.password",
	"redis-db":           "redis.db",
	"cache-driver":       "cache.driver",
	"token-ttl":          "auth.token_ttl",
}

// RegisterServeFlags adds the flags read by Load for the serve command.
func RegisterServeFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTP.Addr, "API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	RegisterDatabaseFlags(fs)
	fs.Int32("database-max-conns", d.Database.MaxConns, "maximum Postgres pool connections")
	fs.String("redis-addr", d.Redis.Addr, "Redis address for the token cache")
	fs.String("redis-password", d.Redis.Password, "Redis password")
	fs.Int("redis-db", d.Redis.DB, "Redis database number")
	fs.String("cache-driver", d.Cache.Driver, "token cache driver (redis or memory)")
	fs.Duration("token-ttl", d.Auth.TokenTTL, "access token lifetime")
}

// RegisterDatabaseFlags adds only the database URL flag.
func RegisterDatabaseFlags(fs *pflag.FlagSet) {
	fs.String("database-url", "", "Postgres connection URL (default: $"+DatabaseURLEnv+")")
}
