package interfaces

import (
	"context"
	"time"

	"github.com/serendiv/pulse/internal/models"
)

// ArticleStorage is the article store contract. Writes are full-record
// upserts keyed by article identity, so a reader never observes a partially
// enriched record.
type ArticleStorage interface {
	// SaveArticle upserts the complete article record. Idempotent on ID.
	SaveArticle(ctx context.Context, article *models.Article) error

	GetArticle(ctx context.Context, id string) (*models.Article, error)

	// QueryByTime returns articles published in [from, to). Sector "" means
	// all sectors; a non-empty sector matches enriched articles only.
	QueryByTime(ctx context.Context, from, to time.Time, sector models.Sector) ([]*models.Article, error)

	// CountByTime returns the number of articles published in [from, to).
	CountByTime(ctx context.Context, from, to time.Time) (int, error)

	// ListUnenriched returns articles that need enrichment (never enriched,
	// or content changed since enrichment).
	ListUnenriched(ctx context.Context) ([]*models.Article, error)

	// ListAll returns every stored article.
	ListAll(ctx context.Context) ([]*models.Article, error)

	Count(ctx context.Context) (int, error)
}

// SnapshotStorage persists indicator snapshots keyed by window. Saving a
// snapshot for an existing window key fully replaces the prior snapshot.
type SnapshotStorage interface {
	SaveSnapshot(ctx context.Context, snapshot *models.IndicatorSnapshot) error
	GetSnapshot(ctx context.Context, windowKey string) (*models.IndicatorSnapshot, error)

	// LatestSnapshot returns the most recently generated snapshot for the
	// given window length (e.g. "24h"), or nil when none exists. The
	// dashboard reads this so a failed cycle still renders the last
	// committed snapshot.
	LatestSnapshot(ctx context.Context, window string) (*models.IndicatorSnapshot, error)

	ListSnapshots(ctx context.Context, window string, limit int) ([]*models.IndicatorSnapshot, error)
}

// VectorStorage is the vector store contract: per-record atomic upserts keyed
// by article identity, and similarity search over candidates.
type VectorStorage interface {
	UpsertRecord(ctx context.Context, record *models.VectorRecord) error
	GetRecord(ctx context.Context, articleID string) (*models.VectorRecord, error)

	// ListIDs returns the identities already present in the index, used to
	// compute the not-yet-indexed set difference.
	ListIDs(ctx context.Context) (map[string]struct{}, error)

	// Search returns candidate matches above minScore, descending by cosine
	// similarity, at most k. Filter may be nil. A non-empty model is checked
	// against every scanned candidate before scoring; a record embedded
	// under a different model fails the search with ErrConfiguration rather
	// than scoring it in an incompatible space.
	Search(ctx context.Context, embedding []float32, model string, k int, minScore float64, filter *models.RetrievalFilter) ([]models.VectorMatch, error)

	Count(ctx context.Context) (int, error)
}

// InsightStorage caches generated sector insights.
type InsightStorage interface {
	SaveInsight(ctx context.Context, insight *models.SectorInsight) error
	GetInsight(ctx context.Context, sector models.Sector) (*models.SectorInsight, error)
}

// StorageManager provides access to all storage interfaces.
type StorageManager interface {
	ArticleStorage() ArticleStorage
	SnapshotStorage() SnapshotStorage
	VectorStorage() VectorStorage
	InsightStorage() InsightStorage
	Close() error
}
