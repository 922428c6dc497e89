package reports

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

func sampleSnapshot() *models.IndicatorSnapshot {
	end := time.Date(2026, 8, 29, 6, 0, 0, 0, time.UTC)
	return &models.IndicatorSnapshot{
		WindowKey:         models.SnapshotKey(end.Add(-24*time.Hour), "24h"),
		Window:            "24h",
		WindowStart:       end.Add(-24 * time.Hour),
		WindowEnd:         end,
		GeneratedAt:       end,
		ArticleCount:      42,
		NationalSentiment: -0.12,
		SentimentDistribution: map[string]int{
			models.SentimentPositive: 10,
			models.SentimentNeutral:  20,
			models.SentimentNegative: 12,
		},
		TopTopics: []models.TopicCount{{Topic: "power cuts", Count: 8}},
		Volume: models.VolumeStats{
			Current: 42, BaselineMean: 30, BaselineStdDev: 4, BaselineWindows: 10,
			ZScore: 3.0, Anomalous: true,
		},
		Sectors: []models.SectorIndicator{{
			Sector: models.SectorEnergy, ArticleCount: 12, MeanSentiment: -0.4,
			SentimentLabel: models.SentimentNegative, Velocity: -0.3,
			Cluster: models.ClusterDeclining,
		}},
		Flags: []models.FlaggedEvent{{
			Type: models.FlagRisk, Sector: models.SectorEnergy, ArticleID: "art_1",
			Title: "Fuel shortage deepens", Sentiment: -0.7, Severity: "high",
			MatchedTerms: []string{"shortage"},
		}},
	}
}

func TestRenderPDFProducesDocument(t *testing.T) {
	svc := NewService(&common.ReportsConfig{Enabled: true, OutputDir: t.TempDir()}, arbor.NewLogger())

	data, err := svc.RenderPDF(sampleSnapshot())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestWriteBriefingCreatesFile(t *testing.T) {
	dir := t.TempDir()
	svc := NewService(&common.ReportsConfig{Enabled: true, OutputDir: dir}, arbor.NewLogger())

	path, err := svc.WriteBriefing(sampleSnapshot())
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(path))
	assert.Contains(t, filepath.Base(path), "briefing_24h_")
}

func TestRenderMarkdownIncludesSectionsAndFlags(t *testing.T) {
	svc := NewService(&common.ReportsConfig{}, arbor.NewLogger())

	out := svc.RenderMarkdown(sampleSnapshot())
	assert.Contains(t, out, "# News Intelligence Briefing")
	assert.Contains(t, out, "| energy | 12 |")
	assert.Contains(t, out, "Fuel shortage deepens")
	assert.Contains(t, out, "Volume anomaly")
}
