package models

import (
	"math"
	"time"
)

// VectorRecord is one embedding per article identity, stored alongside the
// metadata used for filtered retrieval. Upsert semantics: rebuilding the
// index never produces duplicates for the same article.
type VectorRecord struct {
	ArticleID string    `json:"article_id"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
	Dimension int       `json:"dimension"`

	// Filter metadata
	Sector      Sector    `json:"sector"`
	PublishedAt time.Time `json:"published_at"`
	Sentiment   float64   `json:"sentiment"`

	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`

	// ContentHash of the article text the embedding was computed from,
	// so unchanged articles are skipped on rebuild.
	ContentHash string    `json:"content_hash"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VectorMatch pairs a record with its similarity score against a query.
type VectorMatch struct {
	Record *VectorRecord
	Score  float64
}

// RetrievalFilter restricts retrieval candidates by metadata. Zero values
// mean no restriction.
type RetrievalFilter struct {
	Sector Sector
	From   time.Time
	To     time.Time
}

// Matches reports whether a record passes the filter.
func (f *RetrievalFilter) Matches(r *VectorRecord) bool {
	if f == nil {
		return true
	}
	if f.Sector != "" && r.Sector != f.Sector {
		return false
	}
	if !f.From.IsZero() && r.PublishedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.PublishedAt.After(f.To) {
		return false
	}
	return true
}

// RetrievedExcerpt is one ranked retrieval hit.
type RetrievedExcerpt struct {
	ArticleID   string    `json:"article_id"`
	Title       string    `json:"title"`
	Score       float64   `json:"score"`
	Excerpt     string    `json:"excerpt"`
	Sector      Sector    `json:"sector"`
	PublishedAt time.Time `json:"published_at"`
}

// RetrievalResult is the ranked, thresholded output of the retrieval engine.
// An empty Matches slice means no record cleared the similarity threshold;
// callers fall back to their ungrounded path.
type RetrievalResult struct {
	Query   string             `json:"query"`
	Matches []RetrievedExcerpt `json:"matches"`
}

// Grounded reports whether the result can ground a generated answer.
func (r *RetrievalResult) Grounded() bool {
	return r != nil && len(r.Matches) > 0
}

// Answer is a chat response composed from a retrieval result.
type Answer struct {
	Text     string             `json:"text"`
	Grounded bool               `json:"grounded"`
	Sources  []RetrievedExcerpt `json:"sources,omitempty"`
}

// CosineSimilarity computes cosine similarity between two vectors. Returns 0
// for mismatched or zero-magnitude inputs rather than NaN.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
