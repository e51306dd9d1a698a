package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gasdoc/internal/config"
)

func TestExtractorConfig_PrimaryConfig_FlatFallback(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider:     "claude",
		APIKey:       "sk-flat",
		DefaultModel: "claude-sonnet-4-20250514",
		MaxRetries:   3,
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "claude", primary.Provider)
	assert.Equal(t, "sk-flat", primary.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", primary.DefaultModel)
	assert.Equal(t, 3, primary.MaxRetries)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestExtractorConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.ExtractorConfig{
		Provider: "flat-should-be-ignored",
		Primary: config.ExtractorProviderConfig{
			Provider: "vertex",
			Project:  "gas-billing",
			Region:   "asia-southeast1",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "vertex", primary.Provider)
	assert.Equal(t, "gas-billing", primary.Project)
}

func TestExtractorConfig_OptionalSlots(t *testing.T) {
	cfg := config.ExtractorConfig{Provider: "gemini"}
	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())

	cfg.Secondary = config.ExtractorProviderConfig{Provider: "openai"}
	cfg.Tertiary = config.ExtractorProviderConfig{Provider: "claude"}
	require.NotNil(t, cfg.SecondaryConfig())
	require.NotNil(t, cfg.TertiaryConfig())
	assert.Equal(t, "openai", cfg.SecondaryConfig().Provider)
	assert.Equal(t, "claude", cfg.TertiaryConfig().Provider)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "auto", cfg.Classifier.SignalSource)
	assert.Equal(t, "single", cfg.Extractor.Mode)
	assert.Equal(t, 4, cfg.Pipeline.BatchConcurrency)
	assert.Equal(t, int64(25), cfg.Pipeline.MaxFileSizeMB)
	assert.Equal(t, 120*time.Second, cfg.Pipeline.ExtractTimeout())
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GASDOC_EXTRACTOR_MODE", "fallback")
	t.Setenv("GASDOC_EXTRACTOR_PRIMARY_PROVIDER", "claude")
	t.Setenv("GASDOC_EXTRACTOR_PRIMARY_API_KEY", "sk-primary")
	t.Setenv("GASDOC_EXTRACTOR_SECONDARY_PROVIDER", "gemini")
	t.Setenv("GASDOC_EXTRACTOR_SECONDARY_REQUESTS_PER_MINUTE", "30")
	t.Setenv("GASDOC_CLASSIFIER_SIGNAL_SOURCE", "keyword")
	t.Setenv("GASDOC_PIPELINE_BATCH_CONCURRENCY", "8")
	t.Setenv("GASDOC_LOG_FORMAT", "json")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "fallback", cfg.Extractor.Mode)
	assert.Equal(t, "claude", cfg.Extractor.PrimaryConfig().Provider)
	assert.Equal(t, "sk-primary", cfg.Extractor.PrimaryConfig().APIKey)
	require.NotNil(t, cfg.Extractor.SecondaryConfig())
	assert.Equal(t, 30, cfg.Extractor.SecondaryConfig().RequestsPerMinute)
	assert.Equal(t, "keyword", cfg.Classifier.SignalSource)
	assert.Equal(t, 8, cfg.Pipeline.BatchConcurrency)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9090")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Port)
}
