package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// Service ranks indexed article content against a query. It never calls the
// generative backend; its contract ends at returning ranked excerpts.
type Service struct {
	config   *common.RetrievalConfig
	embedder interfaces.EmbeddingProvider
	vectors  interfaces.VectorStorage
	logger   arbor.ILogger
}

// NewService creates a retrieval service.
func NewService(config *common.RetrievalConfig, embedder interfaces.EmbeddingProvider, vectors interfaces.VectorStorage, logger arbor.ILogger) *Service {
	return &Service{
		config:   config,
		embedder: embedder,
		vectors:  vectors,
		logger:   logger,
	}
}

// Retrieve embeds the query and returns the top matches above the similarity
// floor. An empty result is a valid answer, not an error: it tells the
// caller no stored content is relevant enough to ground on.
//
// Records embedded under a different model than the current provider fail
// loudly before they are scored. Similarity across embedding spaces is
// meaningless, and degrading silently is worse than refusing.
func (s *Service) Retrieve(ctx context.Context, query string, filter *models.RetrievalFilter) (*models.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query text is empty", models.ErrDataQuality)
	}

	start := time.Now()

	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	matches, err := s.vectors.Search(ctx, embedding, s.embedder.ModelName(), s.config.TopK, s.config.MinSimilarity, filter)
	if err != nil {
		if errors.Is(err, models.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("vector search failed: %w", err)
	}

	result := &models.RetrievalResult{Query: query}
	for _, match := range matches {
		result.Matches = append(result.Matches, models.RetrievedExcerpt{
			ArticleID:   match.Record.ArticleID,
			Title:       match.Record.Title,
			Score:       match.Score,
			Excerpt:     common.Truncate(match.Record.Excerpt, s.config.ExcerptLength),
			Sector:      match.Record.Sector,
			PublishedAt: match.Record.PublishedAt,
		})
	}

	s.logger.Debug().
		Int("matches", len(result.Matches)).
		Float64("min_similarity", s.config.MinSimilarity).
		Dur("duration", time.Since(start)).
		Msg("Retrieval complete")

	return result, nil
}
