package interfaces

import (
	"context"
	"time"

	"github.com/serendiv/pulse/internal/models"
)

// ScraperService fetches configured news sources and stores raw articles.
type ScraperService interface {
	Run(ctx context.Context) (*models.ScrapeStats, error)
}

// EnrichmentService adds NLP-derived fields to stored articles. Re-running
// on an unchanged, already-enriched article is a no-op. Per-article failures
// are logged and skipped; they never abort the batch.
type EnrichmentService interface {
	// EnrichAll processes every article that needs enrichment, or every
	// article when force is set.
	EnrichAll(ctx context.Context, force bool) (*models.EnrichStats, error)

	// Enrich computes the enrichment block for a single article without
	// persisting it.
	Enrich(article *models.Article) (*models.Enrichment, error)
}

// IndicatorService computes and persists indicator snapshots.
type IndicatorService interface {
	// BuildSnapshot computes the snapshot for the trailing window ending at
	// windowEnd and persists it, replacing any prior snapshot for the same
	// window key.
	BuildSnapshot(ctx context.Context, windowEnd time.Time, window time.Duration) (*models.IndicatorSnapshot, error)

	// BuildAll computes snapshots for every configured window length.
	BuildAll(ctx context.Context) (int, error)
}

// IndexService maintains the vector index over enriched articles.
type IndexService interface {
	// BuildIndex embeds enriched articles not yet indexed (or all when
	// force is set) and upserts one vector record per article identity.
	BuildIndex(ctx context.Context, force bool) (*models.IndexStats, error)
}

// RetrievalService ranks indexed article content against a query. Its
// contract ends at returning ranked, thresholded excerpts; it never calls
// the generative backend.
type RetrievalService interface {
	Retrieve(ctx context.Context, query string, filter *models.RetrievalFilter) (*models.RetrievalResult, error)
}

// ChatService composes a chatbot answer: grounded on retrieved excerpts when
// retrieval finds relevant content, ungrounded general-knowledge otherwise.
type ChatService interface {
	Ask(ctx context.Context, query string) (*models.Answer, error)
}

// InsightService generates per-sector analyst summaries.
type InsightService interface {
	SectorInsight(ctx context.Context, sector models.Sector) (*models.SectorInsight, error)
}

// PipelineService runs the multi-stage batch cycle on a recurring schedule.
type PipelineService interface {
	Start() error
	Stop()
	State() models.PipelineState
	RunCycle(ctx context.Context) *models.CycleResult
	LastCycle() *models.CycleResult
}
