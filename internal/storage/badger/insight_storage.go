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

// InsightStorage implements the InsightStorage interface for Badger
type InsightStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewInsightStorage creates a new InsightStorage instance
func NewInsightStorage(db *BadgerDB, logger arbor.ILogger) interfaces.InsightStorage {
	return &InsightStorage{
		db:     db,
		logger: logger,
	}
}

func (s *InsightStorage) SaveInsight(ctx context.Context, insight *models.SectorInsight) error {
	if insight.Sector == "" {
		return fmt.Errorf("insight sector is required")
	}
	if insight.GeneratedAt.IsZero() {
		insight.GeneratedAt = time.Now().UTC()
	}

	if err := s.db.Store().Upsert("insight_"+string(insight.Sector), insight); err != nil {
		return fmt.Errorf("failed to save insight: %w", err)
	}
	return nil
}

func (s *InsightStorage) GetInsight(ctx context.Context, sector models.Sector) (*models.SectorInsight, error) {
	var insight models.SectorInsight
	if err := s.db.Store().Get("insight_"+string(sector), &insight); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get insight: %w", err)
	}
	return &insight, nil
}
