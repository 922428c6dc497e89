package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serendiv/pulse/internal/models"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pulse.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfigIsValid(t *testing.T) {
	config := NewDefaultConfig()
	require.NoError(t, config.Validate())

	assert.Equal(t, "offline", config.LLM.EmbedProvider)
	assert.Equal(t, []string{"24h", "168h"}, config.Indicators.Windows)
	assert.Equal(t, 2.0, config.Indicators.AnomalyK)
}

func TestLoadFromFilesOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
environment = "production"

[indicators]
anomaly_k = 3.0
min_volume = 5

[retrieval]
top_k = 8
`)

	config, err := LoadFromFiles(path)
	require.NoError(t, err)

	assert.True(t, config.IsProduction())
	assert.Equal(t, 3.0, config.Indicators.AnomalyK)
	assert.Equal(t, 5, config.Indicators.MinVolume)
	assert.Equal(t, 8, config.Retrieval.TopK)

	// Untouched values keep their defaults.
	assert.Equal(t, 0.1, config.Indicators.TrendThreshold)
	assert.Equal(t, "0 */6 * * *", config.Pipeline.Schedule)
}

func TestLoadFromFilesLaterFilesWin(t *testing.T) {
	first := writeConfigFile(t, "[retrieval]\ntop_k = 3\n")
	second := writeConfigFile(t, "[retrieval]\ntop_k = 9\n")

	config, err := LoadFromFiles(first, second)
	require.NoError(t, err)
	assert.Equal(t, 9, config.Retrieval.TopK)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PULSE_LOG_LEVEL", "debug")
	t.Setenv("PULSE_EMBED_DIMENSION", "512")
	t.Setenv("GEMINI_API_KEY", "test-key")

	config, err := LoadFromFiles()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Logging.Level)
	assert.Equal(t, 512, config.LLM.EmbedDimension)
	assert.Equal(t, "test-key", config.LLM.Gemini.APIKey)
}

func TestValidateRejectsBadSchedule(t *testing.T) {
	config := NewDefaultConfig()
	config.Pipeline.Schedule = "every six hours"

	err := config.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestValidateRejectsBadWindow(t *testing.T) {
	config := NewDefaultConfig()
	config.Indicators.Windows = []string{"24h", "yesterday"}

	err := config.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestValidateRequiresAPIKeyForCloudProviders(t *testing.T) {
	config := NewDefaultConfig()
	config.LLM.EmbedProvider = "gemini"
	config.LLM.Gemini.APIKey = ""

	err := config.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)

	config.LLM.Gemini.APIKey = "key"
	require.NoError(t, config.Validate())
}

func TestValidateRejectsUnknownProvider(t *testing.T) {
	config := NewDefaultConfig()
	config.LLM.GenerateProvider = "mystery"

	err := config.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}

func TestMarkdownToPlainText(t *testing.T) {
	markdown := "# Heading\n\nSome **bold** text with a [link](https://example.com).\n\n- item one\n- item two\n"

	plain := MarkdownToPlainText(markdown)
	assert.Contains(t, plain, "Heading")
	assert.Contains(t, plain, "bold")
	assert.Contains(t, plain, "link")
	assert.NotContains(t, plain, "**")
	assert.NotContains(t, plain, "https://example.com")
}

func TestTruncateRespectsWordBoundaries(t *testing.T) {
	out := Truncate("the quick brown fox jumps", 14)
	assert.LessOrEqual(t, len(out), 14)
	assert.Equal(t, "the quick", out)

	assert.Equal(t, "short", Truncate("short", 100))
}

func TestSnapshotKeyFormat(t *testing.T) {
	start := time.Date(2026, 8, 28, 6, 0, 0, 0, time.UTC)
	key := models.SnapshotKey(start, "24h")
	assert.Equal(t, "2026-08-28T06:00:00Z|24h", key)
}
