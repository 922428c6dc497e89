package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"google.golang.org/genai"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// GeminiService talks to the Gemini API for embeddings and chat generation.
// The two provider roles are exposed through GeminiEmbedder and
// GeminiGenerator, which share one underlying client.
type GeminiService struct {
	client *genai.Client
	config *common.LLMConfig
	logger arbor.ILogger
}

// GeminiEmbedder exposes the embedding side of a GeminiService.
type GeminiEmbedder struct {
	*GeminiService
}

// GeminiGenerator exposes the chat generation side of a GeminiService.
type GeminiGenerator struct {
	*GeminiService
}

// NewGeminiService creates a Gemini client from configuration.
func NewGeminiService(ctx context.Context, config *common.LLMConfig, logger arbor.ILogger) (*GeminiService, error) {
	if config.Gemini.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key is not configured", models.ErrConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	logger.Debug().
		Str("embed_model", config.EmbedModel).
		Str("chat_model", config.Gemini.ChatModel).
		Int("dimension", config.EmbedDimension).
		Msg("Gemini client initialized")

	return &GeminiService{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Embed returns the embedding vector for the given text.
func (s *GeminiService) Embed(ctx context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: cannot embed empty text", models.ErrDataQuality)
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	outputDim := int32(s.config.EmbedDimension)
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	result, err := s.client.Models.EmbedContent(ctx, s.config.EmbedModel, contents, &genai.EmbedContentConfig{
		OutputDimensionality: &outputDim,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: gemini embedding request failed: %w", models.ErrTransientIO, err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("%w: gemini returned an empty embedding", models.ErrTransientIO)
	}

	values := result.Embeddings[0].Values
	if len(values) != s.config.EmbedDimension {
		return nil, fmt.Errorf("%w: gemini returned dimension %d, expected %d",
			models.ErrConfiguration, len(values), s.config.EmbedDimension)
	}

	return values, nil
}

// Generate produces a chat completion from the conversation messages.
// A message with role "system" becomes the system instruction.
func (s *GeminiService) Generate(ctx context.Context, messages []interfaces.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var system string
	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case interfaces.RoleSystem:
			system = msg.Content
		case interfaces.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.config.Gemini.Temperature),
	}
	if system != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	resp, err := s.client.Models.GenerateContent(ctx, s.config.Gemini.ChatModel, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generation request failed: %w", models.ErrTransientIO, err)
	}

	var sb strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		break
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: gemini returned an empty response", models.ErrTransientIO)
	}
	return text, nil
}

// Dimension returns the configured embedding dimensionality.
func (s *GeminiService) Dimension() int {
	return s.config.EmbedDimension
}

// HealthCheck embeds a short probe text to verify connectivity.
func (s *GeminiService) HealthCheck(ctx context.Context) error {
	if _, err := s.Embed(ctx, "health check"); err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// Close releases the client.
func (s *GeminiService) Close() error {
	s.client = nil
	return nil
}

// ModelName returns the embedding model identifier.
func (e *GeminiEmbedder) ModelName() string {
	return e.config.EmbedModel
}

// ModelName returns the chat model identifier.
func (g *GeminiGenerator) ModelName() string {
	return g.config.Gemini.ChatModel
}
