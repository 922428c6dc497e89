package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// ArticleStorage implements the ArticleStorage interface for Badger
type ArticleStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewArticleStorage creates a new ArticleStorage instance
func NewArticleStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ArticleStorage {
	return &ArticleStorage{
		db:     db,
		logger: logger,
	}
}

// SaveArticle upserts the full article record. The whole record is written
// in one upsert, so enrichment fields are never observable half-set.
func (s *ArticleStorage) SaveArticle(ctx context.Context, article *models.Article) error {
	if article.ID == "" {
		return fmt.Errorf("article ID is required")
	}

	now := time.Now().UTC()
	if article.ScrapedAt.IsZero() {
		article.ScrapedAt = now
	}
	article.UpdatedAt = now

	if err := s.db.Store().Upsert(article.ID, article); err != nil {
		return fmt.Errorf("failed to save article: %w", err)
	}
	return nil
}

func (s *ArticleStorage) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	if err := s.db.Store().Get(id, &article); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("article not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

func (s *ArticleStorage) QueryByTime(ctx context.Context, from, to time.Time, sector models.Sector) ([]*models.Article, error) {
	var articles []models.Article
	query := badgerhold.Where("PublishedAt").Ge(from).And("PublishedAt").Lt(to)
	if err := s.db.Store().Find(&articles, query); err != nil {
		return nil, fmt.Errorf("failed to query articles: %w", err)
	}

	result := make([]*models.Article, 0, len(articles))
	for i := range articles {
		if sector != "" {
			if articles[i].Enrichment == nil || articles[i].Enrichment.Sector != sector {
				continue
			}
		}
		result = append(result, &articles[i])
	}
	return result, nil
}

func (s *ArticleStorage) CountByTime(ctx context.Context, from, to time.Time) (int, error) {
	count, err := s.db.Store().Count(&models.Article{}, badgerhold.Where("PublishedAt").Ge(from).And("PublishedAt").Lt(to))
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}

// ListUnenriched returns articles with no enrichment block, plus articles
// whose content changed after they were last enriched.
func (s *ArticleStorage) ListUnenriched(ctx context.Context) ([]*models.Article, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*models.Article, 0, len(all))
	for _, a := range all {
		if a.NeedsEnrichment() {
			result = append(result, a)
		}
	}
	return result, nil
}

func (s *ArticleStorage) ListAll(ctx context.Context) ([]*models.Article, error) {
	var articles []models.Article
	if err := s.db.Store().Find(&articles, badgerhold.Where("ID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	result := make([]*models.Article, len(articles))
	for i := range articles {
		result[i] = &articles[i]
	}
	return result, nil
}

func (s *ArticleStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Article{}, badgerhold.Where("ID").Ne(""))
	if err != nil {
		return 0, fmt.Errorf("failed to count articles: %w", err)
	}
	return int(count), nil
}
