package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// SnapshotStorage implements the SnapshotStorage interface for Badger
type SnapshotStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSnapshotStorage creates a new SnapshotStorage instance
func NewSnapshotStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SnapshotStorage {
	return &SnapshotStorage{
		db:     db,
		logger: logger,
	}
}

// SaveSnapshot upserts by window key: the new snapshot fully replaces any
// prior one for the same window, so recomputation is idempotent and readers
// see either the old snapshot or the new one, never a mix.
func (s *SnapshotStorage) SaveSnapshot(ctx context.Context, snapshot *models.IndicatorSnapshot) error {
	if snapshot.WindowKey == "" {
		return fmt.Errorf("snapshot window key is required")
	}

	if err := s.db.Store().Upsert(snapshot.WindowKey, snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	s.logger.Debug().
		Str("window_key", snapshot.WindowKey).
		Int("articles", snapshot.ArticleCount).
		Msg("Snapshot saved")
	return nil
}

func (s *SnapshotStorage) GetSnapshot(ctx context.Context, windowKey string) (*models.IndicatorSnapshot, error) {
	var snapshot models.IndicatorSnapshot
	if err := s.db.Store().Get(windowKey, &snapshot); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("snapshot not found: %s", windowKey)
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}
	return &snapshot, nil
}

// LatestSnapshot returns the most recently generated snapshot for a window
// length, or nil when none has been committed yet.
func (s *SnapshotStorage) LatestSnapshot(ctx context.Context, window string) (*models.IndicatorSnapshot, error) {
	snapshots, err := s.ListSnapshots(ctx, window, 1)
	if err != nil {
		return nil, err
	}
	if len(snapshots) == 0 {
		return nil, nil
	}
	return snapshots[0], nil
}

func (s *SnapshotStorage) ListSnapshots(ctx context.Context, window string, limit int) ([]*models.IndicatorSnapshot, error) {
	var snapshots []models.IndicatorSnapshot
	query := badgerhold.Where("Window").Eq(window).SortBy("GeneratedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.Store().Find(&snapshots, query); err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}

	result := make([]*models.IndicatorSnapshot, len(snapshots))
	for i := range snapshots {
		result[i] = &snapshots[i]
	}
	return result, nil
}
