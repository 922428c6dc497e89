package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// transientRetries bounds re-attempts on transient embedding failures
// within a single build pass.
const transientRetries = 2

// IndexBuilder maintains one vector record per article identity. A rebuild
// over an unchanged store embeds nothing: records whose content hash matches
// the stored article are skipped, so re-indexing is idempotent and cheap.
type IndexBuilder struct {
	config   *common.EmbeddingsConfig
	embedder interfaces.EmbeddingProvider
	articles interfaces.ArticleStorage
	vectors  interfaces.VectorStorage
	logger   arbor.ILogger
}

// NewIndexBuilder creates an index builder.
func NewIndexBuilder(config *common.EmbeddingsConfig, embedder interfaces.EmbeddingProvider, articles interfaces.ArticleStorage, vectors interfaces.VectorStorage, logger arbor.ILogger) *IndexBuilder {
	return &IndexBuilder{
		config:   config,
		embedder: embedder,
		articles: articles,
		vectors:  vectors,
		logger:   logger,
	}
}

// BuildIndex embeds enriched articles missing from the index, plus any whose
// content changed since indexing. With force set, every enriched article is
// re-embedded. Per-article failures are counted and skipped.
func (b *IndexBuilder) BuildIndex(ctx context.Context, force bool) (*models.IndexStats, error) {
	start := time.Now()

	articles, err := b.articles.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles for indexing: %w", err)
	}

	indexed, err := b.vectors.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexed identities: %w", err)
	}

	stats := &models.IndexStats{}
	for _, article := range articles {
		if !article.IsEnriched() {
			continue
		}
		stats.Scanned++

		if !force {
			if _, present := indexed[article.ID]; present {
				record, err := b.vectors.GetRecord(ctx, article.ID)
				if err == nil && record != nil && record.ContentHash == article.ContentHash && record.Model == b.embedder.ModelName() {
					stats.Skipped++
					continue
				}
			}
		}

		if err := b.indexArticle(ctx, article); err != nil {
			stats.Failed++
			b.logger.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to index article")
			continue
		}
		stats.Embedded++
	}

	b.logger.Info().
		Int("scanned", stats.Scanned).
		Int("embedded", stats.Embedded).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("duration", time.Since(start)).
		Msg("Vector index build complete")

	return stats, nil
}

func (b *IndexBuilder) indexArticle(ctx context.Context, article *models.Article) error {
	text := EmbeddingText(article, b.config.TextLimit)
	if text == "" {
		return fmt.Errorf("%w: article %s has no embeddable text", models.ErrDataQuality, article.ID)
	}

	embedding, err := b.embedWithRetry(ctx, text)
	if err != nil {
		return err
	}

	record := &models.VectorRecord{
		ArticleID:   article.ID,
		Embedding:   embedding,
		Model:       b.embedder.ModelName(),
		Sector:      article.Enrichment.Sector,
		PublishedAt: article.PublishedAt,
		Sentiment:   article.Enrichment.SentimentScore,
		Title:       article.Title,
		Excerpt:     common.Truncate(common.MarkdownToPlainText(article.ContentMarkdown), 300),
		ContentHash: article.ContentHash,
	}

	if err := b.vectors.UpsertRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to upsert vector record: %w", err)
	}
	return nil
}

// embedWithRetry retries transient failures a bounded number of times.
// Anything else fails immediately.
func (b *IndexBuilder) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error
	for attempt := 0; attempt <= transientRetries; attempt++ {
		embedding, err := b.embedder.Embed(ctx, text)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		if !errors.Is(err, models.ErrTransientIO) {
			return nil, err
		}
	}
	return nil, lastErr
}

// EmbeddingText composes the text to embed: title plus plain article body,
// truncated to the model input limit.
func EmbeddingText(article *models.Article, limit int) string {
	body := common.NormalizeWhitespace(common.MarkdownToPlainText(article.ContentMarkdown))
	text := article.Title
	if body != "" {
		text = text + "\n" + body
	}
	return common.Truncate(text, limit)
}
