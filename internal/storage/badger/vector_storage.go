package badger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// VectorStorage implements the VectorStorage interface for Badger. Records
// are keyed by article identity, so re-indexing the same article overwrites
// its prior vector instead of duplicating it. Search is a brute-force cosine
// scan; the corpus is bounded by the news archive size, which keeps this
// well within interactive latency.
type VectorStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewVectorStorage creates a new VectorStorage instance
func NewVectorStorage(db *BadgerDB, logger arbor.ILogger) interfaces.VectorStorage {
	return &VectorStorage{
		db:     db,
		logger: logger,
	}
}

func (s *VectorStorage) UpsertRecord(ctx context.Context, record *models.VectorRecord) error {
	if record.ArticleID == "" {
		return fmt.Errorf("vector record article ID is required")
	}
	if len(record.Embedding) == 0 {
		return fmt.Errorf("vector record embedding is required")
	}

	record.Dimension = len(record.Embedding)
	record.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Upsert(record.ArticleID, record); err != nil {
		return fmt.Errorf("failed to upsert vector record: %w", err)
	}
	return nil
}

func (s *VectorStorage) GetRecord(ctx context.Context, articleID string) (*models.VectorRecord, error) {
	var record models.VectorRecord
	if err := s.db.Store().Get(articleID, &record); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("vector record not found: %s", articleID)
		}
		return nil, fmt.Errorf("failed to get vector record: %w", err)
	}
	return &record, nil
}

func (s *VectorStorage) ListIDs(ctx context.Context) (map[string]struct{}, error) {
	var records []models.VectorRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ArticleID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to list vector records: %w", err)
	}

	ids := make(map[string]struct{}, len(records))
	for i := range records {
		ids[records[i].ArticleID] = struct{}{}
	}
	return ids, nil
}

// Search scans candidate records, scores them by cosine similarity against
// the query embedding, and returns at most k matches above minScore in
// descending score order.
func (s *VectorStorage) Search(ctx context.Context, embedding []float32, model string, k int, minScore float64, filter *models.RetrievalFilter) ([]models.VectorMatch, error) {
	if len(embedding) == 0 {
		return nil, fmt.Errorf("query embedding is required")
	}

	var records []models.VectorRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ArticleID").Ne("")); err != nil {
		return nil, fmt.Errorf("failed to scan vector records: %w", err)
	}

	matches := make([]models.VectorMatch, 0, len(records))
	for i := range records {
		record := &records[i]
		if !filter.Matches(record) {
			continue
		}
		// Checked before scoring: a record from a different embedding
		// space would otherwise score near zero and vanish silently.
		if model != "" && record.Model != model {
			return nil, fmt.Errorf("%w: vector record %s was embedded with model %q but queries use %q; re-run the index build",
				models.ErrConfiguration, record.ArticleID, record.Model, model)
		}
		score := models.CosineSimilarity(embedding, record.Embedding)
		if score < minScore {
			continue
		}
		matches = append(matches, models.VectorMatch{Record: record, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.ArticleID < matches[j].Record.ArticleID
	})

	if k > 0 && len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func (s *VectorStorage) Count(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.VectorRecord{}, badgerhold.Where("ArticleID").Ne(""))
	if err != nil {
		return 0, fmt.Errorf("failed to count vector records: %w", err)
	}
	return int(count), nil
}
