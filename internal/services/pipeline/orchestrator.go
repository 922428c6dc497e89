package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// Orchestrator runs the batch cycle on a cron schedule: scrape, enrich,
// build indicators, build the vector index, then back to idle. One cycle
// runs at a time; a tick that fires while a cycle is in flight is skipped
// rather than queued.
type Orchestrator struct {
	config     *common.PipelineConfig
	scraper    interfaces.ScraperService
	enrichment interfaces.EnrichmentService
	indicators interfaces.IndicatorService
	index      interfaces.IndexService
	logger     arbor.ILogger

	cron *cron.Cron

	mu        sync.Mutex
	state     models.PipelineState
	lastCycle *models.CycleResult
	cancel    context.CancelFunc
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(config *common.PipelineConfig, scraper interfaces.ScraperService, enrichment interfaces.EnrichmentService, indicators interfaces.IndicatorService, index interfaces.IndexService, logger arbor.ILogger) *Orchestrator {
	return &Orchestrator{
		config:     config,
		scraper:    scraper,
		enrichment: enrichment,
		indicators: indicators,
		index:      index,
		logger:     logger,
		state:      models.StateIdle,
	}
}

// Start registers the cron schedule and begins ticking. With RunOnStartup
// set, one cycle runs immediately in the background.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.cron != nil {
		return fmt.Errorf("pipeline already started")
	}

	c := cron.New()
	_, err := c.AddFunc(o.config.Schedule, func() {
		o.runScheduled()
	})
	if err != nil {
		return fmt.Errorf("%w: invalid pipeline schedule %q: %v", models.ErrConfiguration, o.config.Schedule, err)
	}

	o.cron = c
	c.Start()
	o.logger.Info().Str("schedule", o.config.Schedule).Msg("Pipeline scheduler started")

	if o.config.RunOnStartup {
		go o.runScheduled()
	}
	return nil
}

// Stop halts the scheduler and interrupts any in-flight cycle. The running
// cycle stops at its next stage boundary; the in-flight stage completes.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.cron != nil {
		o.cron.Stop()
		o.cron = nil
	}
	cancel := o.cancel
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	o.logger.Info().Msg("Pipeline scheduler stopped")
}

// State returns the current pipeline state.
func (o *Orchestrator) State() models.PipelineState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastCycle returns the most recently completed cycle, or nil.
func (o *Orchestrator) LastCycle() *models.CycleResult {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastCycle
}

func (o *Orchestrator) runScheduled() {
	ctx, cancel := context.WithCancel(context.Background())

	o.mu.Lock()
	if o.state != models.StateIdle {
		o.mu.Unlock()
		cancel()
		o.logger.Warn().Str("state", string(o.state)).Msg("Cycle tick skipped; pipeline busy")
		return
	}
	o.cancel = cancel
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.cancel = nil
		o.mu.Unlock()
		cancel()
	}()

	o.RunCycle(ctx)
}

// RunCycle executes one full cycle. Each stage failure is recorded and the
// next stage still runs on whatever data exists. Cancellation is honored at
// stage boundaries only: the stage in flight finishes, remaining stages are
// marked skipped, and the cycle is marked interrupted.
func (o *Orchestrator) RunCycle(ctx context.Context) *models.CycleResult {
	o.mu.Lock()
	if o.state != models.StateIdle {
		o.mu.Unlock()
		return nil
	}
	o.state = models.StateScraping
	o.mu.Unlock()

	result := &models.CycleResult{
		CycleID:   common.NewCycleID(),
		StartedAt: time.Now().UTC(),
	}
	o.logger.Info().Str("cycle_id", result.CycleID).Msg("Pipeline cycle started")

	stages := []struct {
		state models.PipelineState
		run   func(context.Context) (int, error)
	}{
		{models.StateScraping, func(ctx context.Context) (int, error) {
			stats, err := o.scraper.Run(ctx)
			if stats != nil {
				return stats.Saved, err
			}
			return 0, err
		}},
		{models.StateEnriching, func(ctx context.Context) (int, error) {
			stats, err := o.enrichment.EnrichAll(ctx, false)
			if stats != nil {
				return stats.Enriched, err
			}
			return 0, err
		}},
		{models.StateIndicatorBuilding, func(ctx context.Context) (int, error) {
			return o.indicators.BuildAll(ctx)
		}},
		{models.StateIndexBuilding, func(ctx context.Context) (int, error) {
			stats, err := o.index.BuildIndex(ctx, false)
			if stats != nil {
				return stats.Embedded, err
			}
			return 0, err
		}},
	}

	for _, stage := range stages {
		if ctx.Err() != nil {
			result.Interrupted = true
			result.Stages = append(result.Stages, models.StageResult{
				Stage:  stage.state,
				Status: models.StageSkipped,
				Error:  ctx.Err().Error(),
			})
			continue
		}

		o.setState(stage.state)
		result.Stages = append(result.Stages, o.runStage(ctx, stage.state, stage.run))
	}

	result.CompletedAt = time.Now().UTC()

	o.mu.Lock()
	o.state = models.StateIdle
	o.lastCycle = result
	o.mu.Unlock()

	o.logger.Info().
		Str("cycle_id", result.CycleID).
		Dur("duration", result.CompletedAt.Sub(result.StartedAt)).
		Bool("interrupted", result.Interrupted).
		Msg("Pipeline cycle finished")

	return result
}

func (o *Orchestrator) runStage(ctx context.Context, state models.PipelineState, run func(context.Context) (int, error)) models.StageResult {
	start := time.Now()
	items, err := run(ctx)

	stageResult := models.StageResult{
		Stage:    state,
		Items:    items,
		Duration: time.Since(start),
	}
	if err != nil {
		stageResult.Status = models.StageFailed
		stageResult.Error = err.Error()
		o.logger.Error().Err(err).Str("stage", string(state)).Msg("Pipeline stage failed")
	} else {
		stageResult.Status = models.StageCompleted
		o.logger.Info().
			Str("stage", string(state)).
			Int("items", items).
			Dur("duration", stageResult.Duration).
			Msg("Pipeline stage completed")
	}
	return stageResult
}

func (o *Orchestrator) setState(state models.PipelineState) {
	o.mu.Lock()
	o.state = state
	o.mu.Unlock()
}
