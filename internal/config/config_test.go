package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_Defaults(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "s3cret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 10, cfg.DB.MaxConns)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "public", cfg.PublicDir)
	assert.True(t, cfg.Cache.Allows("GET"))
	assert.False(t, cfg.Cache.Allows("POST"))
	assert.False(t, cfg.IsProduction())
}

func TestProcess_MissingSecret(t *testing.T) {
	_, err := process(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.Error(t, err)
}

func TestProcess_Overrides(t *testing.T) {
	cfg, err := process(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                 "x",
		"APP_ENV":                    "production",
		"JWT_TTL":                    "90m",
		"CACHE_METHODS":              "get,head",
		"REDIS_ADDR":                 "cache:6380",
		"RATE_LIMIT_CAPACITY":        "0",
		"RATE_LIMIT_REFILL_INTERVAL": "2s",
		"RATE_LIMIT_TTL":             "1s",
	}))
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 90*time.Minute, cfg.JWT.TTL)
	assert.True(t, cfg.Cache.Allows("HEAD"))
	assert.Equal(t, "cache:6380", cfg.Redis.Address())
	assert.Equal(t, 1, cfg.RateLimit.Capacity)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.TTL)
}

func TestRedisConfig_AddressFromHostPort(t *testing.T) {
	assert.Equal(t, "redis:6379", RedisConfig{Host: "redis", Port: "6379"}.Address())
}
