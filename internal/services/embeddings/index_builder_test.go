package embeddings

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
	"github.com/serendiv/pulse/internal/services/llm"
)

type memArticleStore struct {
	articles map[string]*models.Article
}

func (m *memArticleStore) SaveArticle(_ context.Context, a *models.Article) error {
	copied := *a
	m.articles[a.ID] = &copied
	return nil
}

func (m *memArticleStore) GetArticle(_ context.Context, id string) (*models.Article, error) {
	return m.articles[id], nil
}

func (m *memArticleStore) QueryByTime(_ context.Context, _, _ time.Time, _ models.Sector) ([]*models.Article, error) {
	return nil, nil
}

func (m *memArticleStore) CountByTime(_ context.Context, _, _ time.Time) (int, error) {
	return 0, nil
}

func (m *memArticleStore) ListUnenriched(_ context.Context) ([]*models.Article, error) {
	return nil, nil
}

func (m *memArticleStore) ListAll(_ context.Context) ([]*models.Article, error) {
	out := make([]*models.Article, 0, len(m.articles))
	for _, a := range m.articles {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memArticleStore) Count(_ context.Context) (int, error) { return len(m.articles), nil }

type memVectorStore struct {
	records map[string]*models.VectorRecord
	upserts int
}

func (m *memVectorStore) UpsertRecord(_ context.Context, r *models.VectorRecord) error {
	copied := *r
	m.records[r.ArticleID] = &copied
	m.upserts++
	return nil
}

func (m *memVectorStore) GetRecord(_ context.Context, id string) (*models.VectorRecord, error) {
	return m.records[id], nil
}

func (m *memVectorStore) ListIDs(_ context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(m.records))
	for id := range m.records {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (m *memVectorStore) Search(_ context.Context, embedding []float32, model string, k int, minScore float64, filter *models.RetrievalFilter) ([]models.VectorMatch, error) {
	var matches []models.VectorMatch
	for _, r := range m.records {
		if !filter.Matches(r) {
			continue
		}
		if model != "" && r.Model != model {
			return nil, fmt.Errorf("model mismatch on %s", r.ArticleID)
		}
		score := models.CosineSimilarity(embedding, r.Embedding)
		if score >= minScore {
			rec := *r
			matches = append(matches, models.VectorMatch{Record: &rec, Score: score})
		}
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (m *memVectorStore) Count(_ context.Context) (int, error) { return len(m.records), nil }

func newBuilderFixture(t *testing.T) (*IndexBuilder, *memArticleStore, *memVectorStore) {
	t.Helper()
	embedder, err := llm.NewOfflineService(64)
	require.NoError(t, err)

	articles := &memArticleStore{articles: make(map[string]*models.Article)}
	vectors := &memVectorStore{records: make(map[string]*models.VectorRecord)}
	cfg := &common.EmbeddingsConfig{TextLimit: 1500}

	return NewIndexBuilder(cfg, embedder, articles, vectors, arbor.NewLogger()), articles, vectors
}

func enrichedArticle(id, title, body string) *models.Article {
	hash := models.HashContent(title, body)
	return &models.Article{
		ID:              id,
		Title:           title,
		URL:             "https://example.com/" + id,
		ContentMarkdown: body,
		ContentHash:     hash,
		PublishedAt:     time.Now().UTC().Add(-time.Hour),
		Enrichment: &models.Enrichment{
			SentimentScore: 0.2,
			SentimentLabel: models.SentimentPositive,
			Sector:         models.SectorFinance,
			ContentHash:    hash,
			EnrichedAt:     time.Now().UTC(),
		},
	}
}

func TestBuildIndexEmbedsEnrichedArticles(t *testing.T) {
	builder, articles, vectors := newBuilderFixture(t)
	ctx := context.Background()

	require.NoError(t, articles.SaveArticle(ctx, enrichedArticle("art_1", "Rupee strengthens", "The rupee gained against the dollar.")))
	require.NoError(t, articles.SaveArticle(ctx, enrichedArticle("art_2", "Exports rise", "Apparel exports rose sharply.")))

	unenriched := enrichedArticle("art_3", "Pending", "Not yet enriched.")
	unenriched.Enrichment = nil
	require.NoError(t, articles.SaveArticle(ctx, unenriched))

	stats, err := builder.BuildIndex(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Embedded)
	assert.Len(t, vectors.records, 2)

	record := vectors.records["art_1"]
	require.NotNil(t, record)
	assert.Equal(t, llm.OfflineModelName, record.Model)
	assert.Equal(t, models.SectorFinance, record.Sector)
	assert.NotEmpty(t, record.Embedding)
	assert.NotEmpty(t, record.Excerpt)
}

func TestBuildIndexIsIdempotent(t *testing.T) {
	builder, articles, vectors := newBuilderFixture(t)
	ctx := context.Background()

	require.NoError(t, articles.SaveArticle(ctx, enrichedArticle("art_1", "Rupee strengthens", "The rupee gained against the dollar.")))

	_, err := builder.BuildIndex(ctx, false)
	require.NoError(t, err)
	firstUpserts := vectors.upserts

	// Rebuilding over an unchanged store embeds nothing.
	stats, err := builder.BuildIndex(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Embedded)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, firstUpserts, vectors.upserts)
}

func TestBuildIndexReembedsChangedContent(t *testing.T) {
	builder, articles, vectors := newBuilderFixture(t)
	ctx := context.Background()

	article := enrichedArticle("art_1", "Rupee strengthens", "The rupee gained against the dollar.")
	require.NoError(t, articles.SaveArticle(ctx, article))

	_, err := builder.BuildIndex(ctx, false)
	require.NoError(t, err)
	original := vectors.records["art_1"].Embedding

	updated := enrichedArticle("art_1", "Rupee strengthens", "A substantially rewritten body about currency markets.")
	require.NoError(t, articles.SaveArticle(ctx, updated))

	stats, err := builder.BuildIndex(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Embedded)
	assert.NotEqual(t, original, vectors.records["art_1"].Embedding)
	assert.Len(t, vectors.records, 1)
}

func TestBuildIndexForceReembedsEverything(t *testing.T) {
	builder, articles, vectors := newBuilderFixture(t)
	ctx := context.Background()

	require.NoError(t, articles.SaveArticle(ctx, enrichedArticle("art_1", "Rupee strengthens", "The rupee gained against the dollar.")))

	_, err := builder.BuildIndex(ctx, false)
	require.NoError(t, err)

	stats, err := builder.BuildIndex(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Embedded)
	assert.Equal(t, 2, vectors.upserts)
}

func TestEmbeddingTextTruncates(t *testing.T) {
	body := ""
	for i := 0; i < 500; i++ {
		body += "word "
	}
	article := enrichedArticle("art_long", "A very long article", body)

	text := EmbeddingText(article, 200)
	assert.LessOrEqual(t, len(text), 200)
	assert.Contains(t, text, "A very long article")
}
