package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MODERATION_TIMEOUT", "")
	t.Setenv("RESET_DB", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, 5*time.Second, cfg.ModerationTimeout)
	assert.Equal(t, 5*time.Minute, cfg.FeaturedCacheTTL)
	assert.False(t, cfg.ResetDB)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RESET_DB", "true")
	t.Setenv("MODERATION_TIMEOUT", "2s")
	t.Setenv("FEATURED_CACHE_TTL", "30s")

	cfg := Load()

	assert.Equal(t, "9000", cfg.ServerPort)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.True(t, cfg.ResetDB)
	assert.Equal(t, 2*time.Second, cfg.ModerationTimeout)
	assert.Equal(t, 30*time.Second, cfg.FeaturedCacheTTL)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("MODERATION_TIMEOUT", "-1s")
	t.Setenv("RESET_DB", "maybe")

	cfg := Load()

	assert.Equal(t, 0, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.ModerationTimeout)
	assert.False(t, cfg.ResetDB)
}
