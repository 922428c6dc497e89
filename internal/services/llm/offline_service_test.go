package llm

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

func TestOfflineEmbedIsDeterministic(t *testing.T) {
	svc, err := NewOfflineService(64)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := svc.Embed(ctx, "inflation pressures central bank policy")
	require.NoError(t, err)
	second, err := svc.Embed(ctx, "inflation pressures central bank policy")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestOfflineEmbedIsNormalized(t *testing.T) {
	svc, err := NewOfflineService(64)
	require.NoError(t, err)

	vec, err := svc.Embed(context.Background(), "tourism arrivals hotel occupancy")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestOfflineEmbedSimilarTextScoresHigher(t *testing.T) {
	svc, err := NewOfflineService(128)
	require.NoError(t, err)
	ctx := context.Background()

	query, err := svc.Embed(ctx, "fuel shortage power cuts electricity")
	require.NoError(t, err)
	related, err := svc.Embed(ctx, "electricity board announces power cuts amid fuel shortage")
	require.NoError(t, err)
	unrelated, err := svc.Embed(ctx, "cricket team wins the series in style")
	require.NoError(t, err)

	assert.Greater(t,
		models.CosineSimilarity(query, related),
		models.CosineSimilarity(query, unrelated))
}

func TestOfflineEmbedRejectsEmptyText(t *testing.T) {
	svc, err := NewOfflineService(64)
	require.NoError(t, err)

	_, err = svc.Embed(context.Background(), "   ")
	assert.ErrorIs(t, err, models.ErrDataQuality)
}

func TestOfflineGenerateUsesLastUserMessage(t *testing.T) {
	svc, err := NewOfflineService(64)
	require.NoError(t, err)

	out, err := svc.Generate(context.Background(), []interfaces.Message{
		{Role: interfaces.RoleSystem, Content: "You are an analyst."},
		{Role: interfaces.RoleUser, Content: "What happened in the energy sector?"},
	})
	require.NoError(t, err)
	assert.Contains(t, out, "energy sector")
}

func TestNewProvidersOffline(t *testing.T) {
	cfg := common.NewDefaultConfig()
	embedder, generator, err := NewProviders(context.Background(), &cfg.LLM, arbor.NewLogger())
	require.NoError(t, err)

	assert.Equal(t, OfflineModelName, embedder.ModelName())
	assert.Equal(t, cfg.LLM.EmbedDimension, embedder.Dimension())
	assert.NotNil(t, generator)
	assert.NoError(t, embedder.HealthCheck(context.Background()))
}

func TestNewProvidersRejectsUnknownProvider(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.LLM.EmbedProvider = "nonsense"

	_, _, err := NewProviders(context.Background(), &cfg.LLM, arbor.NewLogger())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
