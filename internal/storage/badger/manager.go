package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db       *BadgerDB
	article  interfaces.ArticleStorage
	snapshot interfaces.SnapshotStorage
	vector   interfaces.VectorStorage
	insight  interfaces.InsightStorage
	logger   arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:       db,
		article:  NewArticleStorage(db, logger),
		snapshot: NewSnapshotStorage(db, logger),
		vector:   NewVectorStorage(db, logger),
		insight:  NewInsightStorage(db, logger),
		logger:   logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// ArticleStorage returns the Article storage interface
func (m *Manager) ArticleStorage() interfaces.ArticleStorage {
	return m.article
}

// SnapshotStorage returns the Snapshot storage interface
func (m *Manager) SnapshotStorage() interfaces.SnapshotStorage {
	return m.snapshot
}

// VectorStorage returns the Vector storage interface
func (m *Manager) VectorStorage() interfaces.VectorStorage {
	return m.vector
}

// InsightStorage returns the Insight storage interface
func (m *Manager) InsightStorage() interfaces.InsightStorage {
	return m.insight
}

// Close closes the underlying database
func (m *Manager) Close() error {
	return m.db.Close()
}
