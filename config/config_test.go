package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DEFAULT_PREFIX", "")
	t.Setenv("ENVIRONMENT", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ";", cfg.DefaultPrefix)
	assert.Equal(t, 3600*time.Second, cfg.CacheTTL)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 4, cfg.PersistWorkers)
	assert.False(t, cfg.OTelEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DEFAULT_PREFIX", "!")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("PERSIST_WORKERS", "8")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PRIMARY_COLOR", "#ff0000")
	t.Setenv("OWNER_IDS", "123, 456,,bad")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.DefaultPrefix)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, 8, cfg.PersistWorkers)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 0xff0000, cfg.PrimaryColor)
	assert.Equal(t, []int64{123, 456}, cfg.OwnerIDs)
	assert.True(t, cfg.IsOwner(456))
	assert.False(t, cfg.IsOwner(789))
}

func TestLoad_MissingToken(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("ENVIRONMENT", "production")

	_, err := load()
	assert.EqualError(t, err, "DISCORD_TOKEN is required")
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	testCfg := NewTestConfig()
	testCfg.DefaultPrefix = "?"
	SetTestConfig(testCfg)

	assert.Same(t, testCfg, Get())
	assert.Equal(t, "?", Get().DefaultPrefix)
}
