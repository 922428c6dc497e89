package llm

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// OfflineModelName identifies vectors produced without a real embedding
// backend. Records carrying it are never mixed with API-produced vectors.
const OfflineModelName = "offline-hash-v1"

// OfflineService is a deterministic provider used in development and tests.
// Embeddings hash tokens into a fixed number of buckets and L2-normalize,
// so identical text always embeds identically and token overlap produces
// nonzero similarity. Generation echoes a canned summary of its input.
type OfflineService struct {
	dimension int
}

// NewOfflineService creates an offline provider with the given embedding
// dimensionality.
func NewOfflineService(dimension int) (*OfflineService, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: embedding dimension must be positive, got %d", models.ErrConfiguration, dimension)
	}
	return &OfflineService{dimension: dimension}, nil
}

// Embed returns a normalized token-hash vector for the text.
func (s *OfflineService) Embed(_ context.Context, text string) ([]float32, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: cannot embed empty text", models.ErrDataQuality)
	}

	vector := make([]float32, s.dimension)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(s.dimension))
		// The next hash bit picks a sign so vectors spread in both
		// directions and unrelated texts are not all mildly positive.
		if (sum>>63)&1 == 1 {
			vector[bucket] -= 1
		} else {
			vector[bucket] += 1
		}
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return nil, fmt.Errorf("%w: text produced a zero embedding", models.ErrDataQuality)
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vector {
		vector[i] *= scale
	}

	return vector, nil
}

// Generate returns a short deterministic completion built from the last
// user message.
func (s *OfflineService) Generate(_ context.Context, messages []interfaces.Message) (string, error) {
	var lastUser string
	for _, msg := range messages {
		if msg.Role == interfaces.RoleUser {
			lastUser = msg.Content
		}
	}
	if lastUser == "" {
		return "", fmt.Errorf("%w: no user message to respond to", models.ErrDataQuality)
	}

	excerpt := lastUser
	if len(excerpt) > 120 {
		excerpt = excerpt[:120]
	}
	return "Offline response based on: " + excerpt, nil
}

// ModelName identifies the offline embedding space.
func (s *OfflineService) ModelName() string {
	return OfflineModelName
}

// Dimension returns the configured dimensionality.
func (s *OfflineService) Dimension() int {
	return s.dimension
}

// HealthCheck always succeeds; there is no backend.
func (s *OfflineService) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (s *OfflineService) Close() error {
	return nil
}
