package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/services/chat"
	"github.com/serendiv/pulse/internal/services/embeddings"
	"github.com/serendiv/pulse/internal/services/enrichment"
	"github.com/serendiv/pulse/internal/services/indicators"
	"github.com/serendiv/pulse/internal/services/insights"
	"github.com/serendiv/pulse/internal/services/llm"
	"github.com/serendiv/pulse/internal/services/pipeline"
	"github.com/serendiv/pulse/internal/services/reports"
	"github.com/serendiv/pulse/internal/services/retrieval"
	"github.com/serendiv/pulse/internal/services/scraper"
	badgerstorage "github.com/serendiv/pulse/internal/storage/badger"
)

// App wires configuration, storage, and services together.
type App struct {
	Config  *common.Config
	Logger  arbor.ILogger
	Storage interfaces.StorageManager

	Embedder  interfaces.EmbeddingProvider
	Generator interfaces.GenerationProvider

	Scraper    interfaces.ScraperService
	Enrichment interfaces.EnrichmentService
	Indicators interfaces.IndicatorService
	Index      interfaces.IndexService
	Retrieval  interfaces.RetrievalService
	Chat       interfaces.ChatService
	Insights   interfaces.InsightService
	Reports    *reports.Service
	Pipeline   interfaces.PipelineService
}

// New builds the application graph from configuration. Construction order:
// storage, providers, lexicon, then services bottom-up.
func New(ctx context.Context, config *common.Config, logger arbor.ILogger) (*App, error) {
	storage, err := badgerstorage.NewManager(logger, &config.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	embedder, generator, err := llm.NewProviders(ctx, &config.LLM, logger)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to initialize LLM providers: %w", err)
	}

	lexicon, err := common.LoadLexicon(config.Enrichment.LexiconPath)
	if err != nil {
		storage.Close()
		return nil, fmt.Errorf("failed to load lexicon: %w", err)
	}

	articles := storage.ArticleStorage()

	scraperSvc := scraper.NewService(&config.Scraper, articles, logger)
	enrichSvc := enrichment.NewService(&config.Enrichment, lexicon, articles, logger)
	indicatorSvc := indicators.NewEngine(&config.Indicators, lexicon, articles, storage.SnapshotStorage(), logger)
	indexSvc := embeddings.NewIndexBuilder(&config.Embeddings, embedder, articles, storage.VectorStorage(), logger)
	retrievalSvc := retrieval.NewService(&config.Retrieval, embedder, storage.VectorStorage(), logger)
	chatSvc := chat.NewService(retrievalSvc, generator, logger)
	insightSvc := insights.NewService(articles, storage.InsightStorage(), generator, logger)
	reportSvc := reports.NewService(&config.Reports, logger)

	pipelineSvc := pipeline.NewOrchestrator(&config.Pipeline, scraperSvc, enrichSvc, indicatorSvc, indexSvc, logger)

	return &App{
		Config:     config,
		Logger:     logger,
		Storage:    storage,
		Embedder:   embedder,
		Generator:  generator,
		Scraper:    scraperSvc,
		Enrichment: enrichSvc,
		Indicators: indicatorSvc,
		Index:      indexSvc,
		Retrieval:  retrievalSvc,
		Chat:       chatSvc,
		Insights:   insightSvc,
		Reports:    reportSvc,
		Pipeline:   pipelineSvc,
	}, nil
}

// Close releases providers and storage.
func (a *App) Close() {
	if a.Embedder != nil {
		a.Embedder.Close()
	}
	if a.Generator != nil {
		a.Generator.Close()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close storage cleanly")
		}
	}
}
