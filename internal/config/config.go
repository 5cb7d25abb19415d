// Package config loads runtime configuration from defaults, an optional
// config file, and TRACKD_* environment variables, in increasing priority.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"trackd.sh/internal/terrors"
)

// Config is the resolved runtime configuration.
type Config struct {
	// Store selects the record store backend: "mongo" or "memory".
	Store string

	MongoURI      string
	MongoDatabase string

	// OpsAddr is the listen address of the health/metrics endpoint.
	OpsAddr string

	StatsInterval   time.Duration
	ShutdownTimeout time.Duration
}

// Load resolves the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("store", "mongo")
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "trackd")
	v.SetDefault("ops.addr", ":9090")
	v.SetDefault("stats.interval", 30*time.Second)
	v.SetDefault("shutdown.timeout", 10*time.Second)

	v.SetEnvPrefix("TRACKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, terrors.Wrapf(err, terrors.ErrCodeInvalidInput, "failed to read config file %s", path)
		}
	}

	cfg := &Config{
		Store:           v.GetString("store"),
		MongoURI:        v.GetString("mongo.uri"),
		MongoDatabase:   v.GetString("mongo.database"),
		OpsAddr:         v.GetString("ops.addr"),
		StatsInterval:   v.GetDuration("stats.interval"),
		ShutdownTimeout: v.GetDuration("shutdown.timeout"),
	}

	if cfg.Store != "mongo" && cfg.Store != "memory" {
		return nil, terrors.Newf(terrors.ErrCodeInvalidInput, "unknown store backend: %s", cfg.Store)
	}
	if cfg.StatsInterval <= 0 {
		cfg.StatsInterval = 30 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return cfg, nil
}
