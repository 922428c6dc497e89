package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// ClaudeService generates chat completions through the Anthropic API. It is
// generation-only; embeddings always come from a separate provider.
type ClaudeService struct {
	client *anthropic.Client
	config *common.LLMConfig
	logger arbor.ILogger
}

// NewClaudeService creates a Claude client from configuration.
func NewClaudeService(config *common.LLMConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if config.Claude.APIKey == "" {
		return nil, fmt.Errorf("%w: anthropic API key is not configured", models.ErrConfiguration)
	}

	client := anthropic.NewClient(
		option.WithAPIKey(config.Claude.APIKey),
	)

	logger.Debug().
		Str("model", config.Claude.Model).
		Int("max_tokens", config.Claude.MaxTokens).
		Msg("Claude client initialized")

	return &ClaudeService{
		client: &client,
		config: config,
		logger: logger,
	}, nil
}

// Generate produces a completion from the conversation messages. A "system"
// role message becomes the system prompt.
func (s *ClaudeService) Generate(ctx context.Context, messages []interfaces.Message) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(s.config.Claude.Model),
		MaxTokens: int64(s.config.Claude.MaxTokens),
	}
	if s.config.Claude.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(s.config.Claude.Temperature))
	}

	for _, msg := range messages {
		switch msg.Role {
		case interfaces.RoleSystem:
			params.System = []anthropic.TextBlockParam{{Text: msg.Content}}
		case interfaces.RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: claude generation request failed: %w", models.ErrTransientIO, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("%w: claude returned an empty response", models.ErrTransientIO)
	}
	return text, nil
}

// ModelName returns the configured Claude model identifier.
func (s *ClaudeService) ModelName() string {
	return s.config.Claude.Model
}

// HealthCheck verifies the client is usable.
func (s *ClaudeService) HealthCheck(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("claude client is not initialized")
	}
	return nil
}

// Close releases the client.
func (s *ClaudeService) Close() error {
	s.client = nil
	return nil
}
