package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFromEnvDefaults(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.APIURL)
	assert.Equal(t, "openai/gpt-3.5-turbo", cfg.LLM.Model)
	assert.Equal(t, 8000, cfg.LLM.MaxTokens)

	assert.Equal(t, "zh", cfg.Translate.TargetLanguage.String())

	assert.Equal(t, 100, cfg.Pipeline.StageSize)
	assert.Equal(t, 20, cfg.Pipeline.BatchSize)
	assert.Equal(t, 3, cfg.Pipeline.ContextSize)
	assert.Equal(t, 5, cfg.Pipeline.MinResegmentCues)
	assert.InDelta(t, 0.7, cfg.Pipeline.RetentionRatio, 1e-9)
	assert.InDelta(t, 0.2, cfg.Pipeline.MinSpanSeconds, 1e-9)

	assert.Equal(t, 140, cfg.Sync.TickIntervalMs)

	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, 720, cfg.Cache.TTLHours)
	assert.Equal(t, "0 0 * * *", cfg.Cache.SweepCronExpr)
}

func TestNewFromEnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("TARGET_LANGUAGE", "es")
	t.Setenv("STAGE_SIZE", "50")
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("RETENTION_RATIO", "0.9")
	t.Setenv("TICK_INTERVAL_MS", "200")
	t.Setenv("CACHE_ENABLED", "false")

	cfg, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.Translate.TargetLanguage.String())
	assert.Equal(t, 50, cfg.Pipeline.StageSize)
	assert.Equal(t, 10, cfg.Pipeline.BatchSize)
	assert.InDelta(t, 0.9, cfg.Pipeline.RetentionRatio, 1e-9)
	assert.Equal(t, 200, cfg.Sync.TickIntervalMs)
	assert.False(t, cfg.Cache.Enabled)
}

func TestNewFromEnvOptions(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")

	cfg, err := NewFromEnv(func(c *Config) {
		c.Pipeline.StageSize = 7
	})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Pipeline.StageSize)
}

func TestNewFromEnvValidation(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "")
		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LLM_API_KEY")
	})

	t.Run("invalid target language", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")
		t.Setenv("TARGET_LANGUAGE", "!!!")
		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TARGET_LANGUAGE")
	})

	t.Run("retention ratio out of range", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")
		t.Setenv("RETENTION_RATIO", "1.5")
		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RETENTION_RATIO")
	})

	t.Run("tick interval too small", func(t *testing.T) {
		t.Setenv("LLM_API_KEY", "test-key")
		t.Setenv("TICK_INTERVAL_MS", "0")
		_, err := NewFromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TICK_INTERVAL_MS")
	})
}

func TestNewFromEnvIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("LLM_API_KEY", "test-key")
	t.Setenv("STAGE_SIZE", "not a number")

	cfg, err := NewFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Pipeline.StageSize)
}
