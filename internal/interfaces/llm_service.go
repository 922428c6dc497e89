package interfaces

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single message in a generation request.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// EmbeddingProvider generates embedding vectors. The same provider must be
// used for indexing and query embedding: mixing embedding spaces degrades
// relevance silently, so the provider's model name is recorded on every
// vector record and verified at query time.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	ModelName() string
	Dimension() int
	HealthCheck(ctx context.Context) error
	Close() error
}

// GenerationProvider produces text completions. Every call is bounded by the
// provider's configured timeout and fails with an error rather than hanging.
type GenerationProvider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
	ModelName() string
	HealthCheck(ctx context.Context) error
	Close() error
}
