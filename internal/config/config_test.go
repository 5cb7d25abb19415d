package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "mongo", cfg.Store)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "trackd", cfg.MongoDatabase)
	assert.Equal(t, ":9090", cfg.OpsAddr)
	assert.Equal(t, 30*time.Second, cfg.StatsInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TRACKD_STORE", "memory")
	t.Setenv("TRACKD_OPS_ADDR", ":8081")
	t.Setenv("TRACKD_STATS_INTERVAL", "5s")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, ":8081", cfg.OpsAddr)
	assert.Equal(t, 5*time.Second, cfg.StatsInterval)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("TRACKD_STORE", "cassandra")

	_, err := Load("")
	require.Error(t, err)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}
