package llm

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// NewProviders builds the embedding and generation providers selected in
// configuration. An unknown provider name is a configuration error; callers
// treat that as fatal at startup rather than falling back silently.
func NewProviders(ctx context.Context, config *common.LLMConfig, logger arbor.ILogger) (interfaces.EmbeddingProvider, interfaces.GenerationProvider, error) {
	var gemini *GeminiService

	newGemini := func() (*GeminiService, error) {
		if gemini != nil {
			return gemini, nil
		}
		svc, err := NewGeminiService(ctx, config, logger)
		if err != nil {
			return nil, err
		}
		gemini = svc
		return gemini, nil
	}

	var embedder interfaces.EmbeddingProvider
	switch config.EmbedProvider {
	case "gemini":
		svc, err := newGemini()
		if err != nil {
			return nil, nil, err
		}
		embedder = &GeminiEmbedder{svc}
	case "offline":
		svc, err := NewOfflineService(config.EmbedDimension)
		if err != nil {
			return nil, nil, err
		}
		embedder = svc
	default:
		return nil, nil, fmt.Errorf("%w: unknown embed provider %q", models.ErrConfiguration, config.EmbedProvider)
	}

	var generator interfaces.GenerationProvider
	switch config.GenerateProvider {
	case "gemini":
		svc, err := newGemini()
		if err != nil {
			return nil, nil, err
		}
		generator = &GeminiGenerator{svc}
	case "claude":
		svc, err := NewClaudeService(config, logger)
		if err != nil {
			return nil, nil, err
		}
		generator = svc
	case "offline":
		svc, err := NewOfflineService(config.EmbedDimension)
		if err != nil {
			return nil, nil, err
		}
		generator = svc
	default:
		return nil, nil, fmt.Errorf("%w: unknown generate provider %q", models.ErrConfiguration, config.GenerateProvider)
	}

	logger.Info().
		Str("embed_provider", config.EmbedProvider).
		Str("generate_provider", config.GenerateProvider).
		Msg("LLM providers initialized")

	return embedder, generator, nil
}
