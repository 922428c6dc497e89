package insights

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

type memStores struct {
	articles map[string]*models.Article
	insights map[models.Sector]*models.SectorInsight
}

func newMemStores() *memStores {
	return &memStores{
		articles: make(map[string]*models.Article),
		insights: make(map[models.Sector]*models.SectorInsight),
	}
}

func (m *memStores) SaveArticle(_ context.Context, a *models.Article) error {
	copied := *a
	m.articles[a.ID] = &copied
	return nil
}

func (m *memStores) GetArticle(_ context.Context, id string) (*models.Article, error) {
	return m.articles[id], nil
}

func (m *memStores) QueryByTime(_ context.Context, from, to time.Time, sector models.Sector) ([]*models.Article, error) {
	var out []*models.Article
	for _, a := range m.articles {
		if a.PublishedAt.Before(from) || !a.PublishedAt.Before(to) {
			continue
		}
		if sector != "" && (a.Enrichment == nil || a.Enrichment.Sector != sector) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStores) CountByTime(ctx context.Context, from, to time.Time) (int, error) {
	articles, err := m.QueryByTime(ctx, from, to, "")
	return len(articles), err
}

func (m *memStores) ListUnenriched(_ context.Context) ([]*models.Article, error) { return nil, nil }

func (m *memStores) ListAll(_ context.Context) ([]*models.Article, error) { return nil, nil }

func (m *memStores) Count(_ context.Context) (int, error) { return len(m.articles), nil }

func (m *memStores) SaveInsight(_ context.Context, insight *models.SectorInsight) error {
	copied := *insight
	m.insights[insight.Sector] = &copied
	return nil
}

func (m *memStores) GetInsight(_ context.Context, sector models.Sector) (*models.SectorInsight, error) {
	return m.insights[sector], nil
}

type stubGenerator struct {
	calls    int
	response string
	err      error
}

func (s *stubGenerator) Generate(_ context.Context, _ []interfaces.Message) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) ModelName() string                   { return "stub-model" }
func (s *stubGenerator) HealthCheck(_ context.Context) error { return nil }
func (s *stubGenerator) Close() error                        { return nil }

func sectorArticle(id string, sector models.Sector, sentiment float64) *models.Article {
	return &models.Article{
		ID:          id,
		Title:       "Headline " + id,
		PublishedAt: time.Now().UTC().Add(-24 * time.Hour),
		ContentHash: "hash-" + id,
		Enrichment: &models.Enrichment{
			SentimentScore: sentiment,
			Sector:         sector,
			Keywords:       []models.Keyword{{Text: "theme-" + id, Weight: 1}},
			ContentHash:    "hash-" + id,
		},
	}
}

func TestSectorInsightGeneratesAndCaches(t *testing.T) {
	store := newMemStores()
	generator := &stubGenerator{response: "The energy sector had a difficult week."}
	svc := NewService(store, store, generator, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, sectorArticle("e1", models.SectorEnergy, -0.4)))
	require.NoError(t, store.SaveArticle(ctx, sectorArticle("e2", models.SectorEnergy, -0.2)))

	insight, err := svc.SectorInsight(ctx, models.SectorEnergy)
	require.NoError(t, err)

	assert.True(t, insight.Grounded)
	assert.Equal(t, 2, insight.ArticleCount)
	assert.Equal(t, generator.response, insight.Insights)
	assert.NotEmpty(t, insight.KeyThemes)
	assert.Equal(t, 1, generator.calls)

	// Second call within the TTL serves the cache.
	_, err = svc.SectorInsight(ctx, models.SectorEnergy)
	require.NoError(t, err)
	assert.Equal(t, 1, generator.calls)
}

func TestSectorInsightFallsBackOnGenerationFailure(t *testing.T) {
	store := newMemStores()
	generator := &stubGenerator{err: errors.New("model unavailable")}
	svc := NewService(store, store, generator, arbor.NewLogger())
	ctx := context.Background()

	require.NoError(t, store.SaveArticle(ctx, sectorArticle("f1", models.SectorFinance, -0.5)))

	insight, err := svc.SectorInsight(ctx, models.SectorFinance)
	require.NoError(t, err)

	assert.False(t, insight.Grounded)
	assert.Contains(t, insight.Insights, "finance")
	assert.Contains(t, insight.Insights, "broadly negative")
}

func TestSectorInsightEmptyWindow(t *testing.T) {
	store := newMemStores()
	generator := &stubGenerator{response: "unused"}
	svc := NewService(store, store, generator, arbor.NewLogger())

	insight, err := svc.SectorInsight(context.Background(), models.SectorTourism)
	require.NoError(t, err)

	assert.Zero(t, insight.ArticleCount)
	assert.False(t, insight.Grounded)
	assert.Zero(t, generator.calls)
}

func TestSectorInsightRejectsUnknownSector(t *testing.T) {
	svc := NewService(newMemStores(), newMemStores(), &stubGenerator{}, arbor.NewLogger())

	_, err := svc.SectorInsight(context.Background(), models.Sector("aviation"))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfiguration)
}
