package badger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/models"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func storedArticle(id string, publishedAt time.Time) *models.Article {
	return &models.Article{
		ID:              id,
		Source:          "test-source",
		Title:           "Title " + id,
		URL:             "https://example.com/" + id,
		ContentMarkdown: "Body for " + id,
		ContentHash:     models.HashContent("Title "+id, "Body for "+id),
		PublishedAt:     publishedAt,
	}
}

func TestArticleSaveAndGet(t *testing.T) {
	storage := NewArticleStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	article := storedArticle("art_1", time.Now().UTC().Add(-time.Hour))
	require.NoError(t, storage.SaveArticle(ctx, article))

	loaded, err := storage.GetArticle(ctx, "art_1")
	require.NoError(t, err)
	assert.Equal(t, article.Title, loaded.Title)
	assert.Equal(t, article.ContentHash, loaded.ContentHash)
	assert.False(t, loaded.ScrapedAt.IsZero())
}

func TestArticleEnrichmentIsAtomic(t *testing.T) {
	storage := NewArticleStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()

	article := storedArticle("art_1", time.Now().UTC().Add(-time.Hour))
	require.NoError(t, storage.SaveArticle(ctx, article))

	// A save with enrichment replaces the whole record; a reader sees
	// either the raw article or the fully enriched one.
	article.Enrichment = &models.Enrichment{
		SentimentScore: 0.4,
		SentimentLabel: models.SentimentPositive,
		Sector:         models.SectorFinance,
		ContentHash:    article.ContentHash,
		EnrichedAt:     time.Now().UTC(),
	}
	require.NoError(t, storage.SaveArticle(ctx, article))

	loaded, err := storage.GetArticle(ctx, "art_1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Enrichment)
	assert.Equal(t, models.SectorFinance, loaded.Enrichment.Sector)
	assert.True(t, loaded.IsEnriched())
	assert.False(t, loaded.NeedsEnrichment())
}

func TestArticleQueryByTimeWindow(t *testing.T) {
	storage := NewArticleStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	require.NoError(t, storage.SaveArticle(ctx, storedArticle("in_1", now.Add(-2*time.Hour))))
	require.NoError(t, storage.SaveArticle(ctx, storedArticle("in_2", now.Add(-20*time.Hour))))
	require.NoError(t, storage.SaveArticle(ctx, storedArticle("out_old", now.Add(-30*time.Hour))))

	articles, err := storage.QueryByTime(ctx, now.Add(-24*time.Hour), now, "")
	require.NoError(t, err)
	assert.Len(t, articles, 2)

	count, err := storage.CountByTime(ctx, now.Add(-24*time.Hour), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestArticleQueryBySector(t *testing.T) {
	storage := NewArticleStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	finance := storedArticle("fin_1", now.Add(-time.Hour))
	finance.Enrichment = &models.Enrichment{Sector: models.SectorFinance, ContentHash: finance.ContentHash}
	require.NoError(t, storage.SaveArticle(ctx, finance))

	energy := storedArticle("eng_1", now.Add(-time.Hour))
	energy.Enrichment = &models.Enrichment{Sector: models.SectorEnergy, ContentHash: energy.ContentHash}
	require.NoError(t, storage.SaveArticle(ctx, energy))

	articles, err := storage.QueryByTime(ctx, now.Add(-24*time.Hour), now, models.SectorFinance)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, "fin_1", articles[0].ID)
}

func TestArticleListUnenriched(t *testing.T) {
	storage := NewArticleStorage(newTestDB(t), arbor.NewLogger())
	ctx := context.Background()
	now := time.Now().UTC()

	raw := storedArticle("raw_1", now.Add(-time.Hour))
	require.NoError(t, storage.SaveArticle(ctx, raw))

	enriched := storedArticle("done_1", now.Add(-time.Hour))
	enriched.Enrichment = &models.Enrichment{Sector: models.SectorGeneral, ContentHash: enriched.ContentHash}
	require.NoError(t, storage.SaveArticle(ctx, enriched))

	stale := storedArticle("stale_1", now.Add(-time.Hour))
	stale.Enrichment = &models.Enrichment{Sector: models.SectorGeneral, ContentHash: "old-hash"}
	require.NoError(t, storage.SaveArticle(ctx, stale))

	pending, err := storage.ListUnenriched(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	ids := map[string]struct{}{}
	for _, a := range pending {
		ids[a.ID] = struct{}{}
	}
	assert.Contains(t, ids, "raw_1")
	assert.Contains(t, ids, "stale_1")
}
