package models

import (
	"errors"
	"time"
)

// PipelineState names a state of the orchestrator's cycle state machine.
type PipelineState string

const (
	StateIdle              PipelineState = "idle"
	StateScraping          PipelineState = "scraping"
	StateEnriching         PipelineState = "enriching"
	StateIndicatorBuilding PipelineState = "indicator_building"
	StateIndexBuilding     PipelineState = "index_building"
)

// StageStatus is the outcome of one pipeline stage within a cycle.
type StageStatus string

const (
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
	StageSkipped   StageStatus = "skipped"
)

// StageResult records the outcome of one stage.
type StageResult struct {
	Stage    PipelineState `json:"stage"`
	Status   StageStatus   `json:"status"`
	Error    string        `json:"error,omitempty"`
	Items    int           `json:"items"`
	Duration time.Duration `json:"duration"`
}

// CycleResult records one full pipeline cycle. A failed stage does not abort
// the cycle; its error is recorded and the next stage runs with whatever
// partial data exists.
type CycleResult struct {
	CycleID     string        `json:"cycle_id"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Stages      []StageResult `json:"stages"`
	Interrupted bool          `json:"interrupted"`
}

// ScrapeStats summarizes one scraper run.
type ScrapeStats struct {
	Fetched int `json:"fetched"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// EnrichStats summarizes one enrichment run.
type EnrichStats struct {
	Processed int `json:"processed"`
	Enriched  int `json:"enriched"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// IndexStats summarizes one vector index build.
type IndexStats struct {
	Scanned  int `json:"scanned"`
	Embedded int `json:"embedded"`
	Skipped  int `json:"skipped"`
	Failed   int `json:"failed"`
}

// Error taxonomy. Per-article and per-sector failures wrap one of these so
// callers can distinguish retryable network failures from bad input data.
// Only configuration errors are fatal, and only at startup.
var (
	// ErrTransientIO marks scrape/embed/generate network failures.
	// Retried a bounded number of times, then skipped for the cycle.
	ErrTransientIO = errors.New("transient io failure")

	// ErrDataQuality marks malformed or empty article input.
	// Skipped and logged, never retried.
	ErrDataQuality = errors.New("data quality failure")

	// ErrConfiguration marks missing or invalid configuration.
	// Fatal at startup, never raised mid-cycle.
	ErrConfiguration = errors.New("configuration error")
)
