package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "memory", cfg.StorageType)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.RoomTTL)
	assert.Equal(t, 3*time.Minute, cfg.MatchDuration)
	assert.Equal(t, time.Minute, cfg.ReaperInterval)
	assert.Equal(t, 30*time.Minute, cfg.MaxLobbyAge)
	assert.Equal(t, 15*time.Minute, cfg.FinishedGrace)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GUMBALL_PORT", "9090")
	t.Setenv("GUMBALL_STORAGE_TYPE", "redis")
	t.Setenv("GUMBALL_REDIS_URL", "redis://redis.internal:6379")
	t.Setenv("GUMBALL_MATCH_DURATION", "90s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "redis", cfg.StorageType)
	assert.Equal(t, "redis://redis.internal:6379", cfg.RedisURL)
	assert.Equal(t, 90*time.Second, cfg.MatchDuration)
}
