package config

import (
	"math"
	"testing"
	"time"

	apperrors "persona-agent/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load(zap.NewNop())

	assert.Equal(t, 5.0, cfg.ConfidenceThreshold)
	assert.False(t, cfg.RemoteFallbackEnabled)
	assert.Equal(t, 2, cfg.RemoteMaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 20*time.Second, cfg.LLMRequestTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionRetentionAge)
	assert.Equal(t, 20.0, cfg.TriggerBonus)
	assert.Equal(t, 0.7, cfg.RecencyPenalty)
	assert.Equal(t, SessionStoreMemory, cfg.SessionStore)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIDENCE_THRESHOLD", "7.5")
	t.Setenv("REMOTE_FALLBACK_ENABLED", "true")
	t.Setenv("REMOTE_API_KEY", "  sk-test  ")
	t.Setenv("RETRY_DELAY_SECONDS", "3")
	t.Setenv("SESSION_STORE", "Redis")

	cfg := Load(zap.NewNop())

	assert.Equal(t, 7.5, cfg.ConfidenceThreshold)
	assert.Equal(t, "sk-test", cfg.RemoteAPIKey)
	assert.Equal(t, 3*time.Second, cfg.RetryDelay)
	assert.Equal(t, SessionStoreRedis, cfg.SessionStore)
	assert.True(t, cfg.RemoteConfigured())
}

func TestRemoteConfiguredRequiresBothFlagAndKey(t *testing.T) {
	assert.False(t, (&Config{RemoteFallbackEnabled: true}).RemoteConfigured())
	assert.False(t, (&Config{RemoteAPIKey: "sk"}).RemoteConfigured())
	assert.True(t, (&Config{RemoteFallbackEnabled: true, RemoteAPIKey: "sk"}).RemoteConfigured())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Load(zap.NewNop())
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "negative_threshold", mutate: func(c *Config) { c.ConfidenceThreshold = -1 }},
		{name: "nan_threshold", mutate: func(c *Config) { c.ConfidenceThreshold = math.NaN() }},
		{name: "recency_penalty_above_one", mutate: func(c *Config) { c.RecencyPenalty = 1.5 }},
		{name: "zero_default_damping", mutate: func(c *Config) { c.DefaultDamping = 0 }},
		{name: "negative_bonus", mutate: func(c *Config) { c.KeywordBonus = -2 }},
		{name: "fuzzy_threshold_zero", mutate: func(c *Config) { c.FuzzyThreshold = 0 }},
		{name: "unknown_store", mutate: func(c *Config) { c.SessionStore = "etcd" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrInvalidConfig)
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zap.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zap.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zap.InfoLevel, parseLevel("nonsense"))
}
