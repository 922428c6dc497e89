package enrichment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// Service derives sentiment, entities, keywords, and a sector label for
// stored articles. Enrichment is a pure function of article content, so
// re-running it over unchanged articles is a no-op.
type Service struct {
	config  *common.EnrichmentConfig
	lexicon *common.Lexicon
	storage interfaces.ArticleStorage
	logger  arbor.ILogger
}

// NewService creates an enrichment service.
func NewService(config *common.EnrichmentConfig, lexicon *common.Lexicon, storage interfaces.ArticleStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:  config,
		lexicon: lexicon,
		storage: storage,
		logger:  logger,
	}
}

// Enrich computes the enrichment block for a single article without
// persisting it. Articles whose content reduces to empty text fail with a
// data quality error.
func (s *Service) Enrich(article *models.Article) (*models.Enrichment, error) {
	plain := common.MarkdownToPlainText(article.ContentMarkdown)
	text := strings.TrimSpace(article.Title + "\n" + plain)
	if text == "" {
		return nil, fmt.Errorf("%w: article %s has no extractable text", models.ErrDataQuality, article.ID)
	}

	score := ScoreSentiment(text, s.lexicon)
	keywords := ExtractKeywords(text, s.config.MaxKeywords, s.lexicon)

	return &models.Enrichment{
		SentimentScore:   score,
		SentimentLabel:   SentimentLabel(score, s.config.PositiveThreshold, s.config.NegativeThreshold),
		Entities:         ExtractEntities(article.Title+". "+plain, s.config.MaxEntities),
		Keywords:         keywords,
		Sector:           ClassifySector(text, keywords, s.lexicon),
		MentionedSectors: MentionedSectors(text, keywords, s.lexicon),
		WordCount:        len(strings.Fields(plain)),
		ContentHash:      article.ContentHash,
		EnrichedAt:       time.Now().UTC(),
	}, nil
}

// EnrichAll enriches every article that needs it. An article needs
// enrichment when it has none, or when its content hash no longer matches
// the hash recorded at enrichment time. With force set, all articles are
// recomputed regardless. A failure on one article is logged and counted but
// never aborts the pass.
func (s *Service) EnrichAll(ctx context.Context, force bool) (*models.EnrichStats, error) {
	start := time.Now()

	var articles []*models.Article
	var err error
	if force {
		articles, err = s.storage.ListAll(ctx)
	} else {
		articles, err = s.storage.ListUnenriched(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list articles for enrichment: %w", err)
	}

	stats := &models.EnrichStats{}
	for _, article := range articles {
		stats.Processed++

		if !force && !article.NeedsEnrichment() {
			stats.Skipped++
			continue
		}

		enrichment, err := s.Enrich(article)
		if err != nil {
			stats.Failed++
			s.logger.Warn().Err(err).Str("article_id", article.ID).Msg("Enrichment failed")
			continue
		}

		article.Enrichment = enrichment
		if err := s.storage.SaveArticle(ctx, article); err != nil {
			stats.Failed++
			s.logger.Warn().Err(err).Str("article_id", article.ID).Msg("Failed to save enriched article")
			continue
		}
		stats.Enriched++
	}

	s.logger.Info().
		Int("processed", stats.Processed).
		Int("enriched", stats.Enriched).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Dur("duration", time.Since(start)).
		Msg("Enrichment pass complete")

	return stats, nil
}
