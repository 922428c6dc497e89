package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// Service answers questions over the article index. When retrieval finds
// relevant excerpts the answer is grounded on them and carries its sources;
// otherwise the model answers from general knowledge and the response is
// marked ungrounded.
type Service struct {
	retrieval interfaces.RetrievalService
	generator interfaces.GenerationProvider
	logger    arbor.ILogger
}

// NewService creates a chat service.
func NewService(retrieval interfaces.RetrievalService, generator interfaces.GenerationProvider, logger arbor.ILogger) *Service {
	return &Service{
		retrieval: retrieval,
		generator: generator,
		logger:    logger,
	}
}

// Ask answers a single question. A retrieval failure degrades to the
// ungrounded path rather than failing the question outright; only a
// generation failure is fatal.
func (s *Service) Ask(ctx context.Context, query string) (*models.Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: question is empty", models.ErrDataQuality)
	}

	start := time.Now()

	result, err := s.retrieval.Retrieve(ctx, query, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Retrieval failed; answering ungrounded")
		result = &models.RetrievalResult{Query: query}
	}

	var userPrompt string
	if result.Grounded() {
		userPrompt = groundedPrompt(query, result.Matches)
	} else {
		userPrompt = ungroundedPrompt(query)
	}

	text, err := s.generator.Generate(ctx, []interfaces.Message{
		{Role: interfaces.RoleSystem, Content: systemPrompt},
		{Role: interfaces.RoleUser, Content: userPrompt},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	answer := &models.Answer{
		Text:     text,
		Grounded: result.Grounded(),
		Sources:  result.Matches,
	}

	s.logger.Debug().
		Bool("grounded", answer.Grounded).
		Int("sources", len(answer.Sources)).
		Dur("duration", time.Since(start)).
		Msg("Chat answer composed")

	return answer, nil
}
