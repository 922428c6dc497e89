package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Article represents a scraped news article. Articles are append-only: once
// stored they are never deleted, and the only mutation after ingestion is the
// Enrichment block appended by the enrichment stage.
type Article struct {
	// Identity: stable hash of source URL + publish time
	ID string `json:"id"`

	Source  string `json:"source"`
	Section string `json:"section,omitempty"`
	Title   string `json:"title"`
	URL     string `json:"url"`

	// Content (markdown-first)
	ContentMarkdown string `json:"content_markdown"`
	ContentHash     string `json:"content_hash"`

	PublishedAt time.Time `json:"published_at"`
	ScrapedAt   time.Time `json:"scraped_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Enrichment is nil until the enrichment stage has processed the
	// article. It is written atomically with the article record: either
	// every field is populated or the block is absent entirely.
	Enrichment *Enrichment `json:"enrichment,omitempty"`
}

// Enrichment holds the NLP-derived fields for an article. All fields are
// populated together; a partially filled Enrichment is never persisted.
type Enrichment struct {
	SentimentScore float64   `json:"sentiment_score"` // [-1, 1]
	SentimentLabel string    `json:"sentiment_label"` // positive, negative, neutral
	Entities       []Entity  `json:"entities"`
	Keywords       []Keyword `json:"keywords"` // ordered by relevance weight
	Sector         Sector    `json:"sector"`
	WordCount      int       `json:"word_count"`

	// MentionedSectors lists every sector the article touches, primary
	// included, used for co-mention correlation.
	MentionedSectors []Sector `json:"mentioned_sectors,omitempty"`

	// ContentHash records the article content the enrichment was computed
	// from, so unchanged articles are recognized as a no-op on re-runs.
	ContentHash string    `json:"content_hash"`
	EnrichedAt  time.Time `json:"enriched_at"`
}

// Entity is a named entity extracted from article text.
type Entity struct {
	Text string `json:"text"`
	Type string `json:"type"` // PERSON, ORG, LOC
}

// Keyword is an extracted keyword with its relevance weight.
type Keyword struct {
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// Entity type constants.
const (
	EntityPerson       = "PERSON"
	EntityOrganization = "ORG"
	EntityLocation     = "LOC"
)

// Sentiment label constants.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// NewArticleID derives the stable article identity from the source URL and
// publish time. The same URL and timestamp always produce the same ID, which
// makes ingestion and re-indexing idempotent.
func NewArticleID(url string, publishedAt time.Time) string {
	h := sha256.Sum256([]byte(url + "|" + publishedAt.UTC().Format(time.RFC3339)))
	return "art_" + hex.EncodeToString(h[:])[:16]
}

// HashContent returns the content hash used for change detection.
func HashContent(title, body string) string {
	h := sha256.Sum256([]byte(title + "\n" + body))
	return hex.EncodeToString(h[:])
}

// IsEnriched reports whether the article carries a complete enrichment block.
func (a *Article) IsEnriched() bool {
	return a.Enrichment != nil
}

// NeedsEnrichment reports whether the enrichment stage should process the
// article: never enriched, or the underlying text changed since enrichment.
func (a *Article) NeedsEnrichment() bool {
	if a.Enrichment == nil {
		return true
	}
	return a.Enrichment.ContentHash != a.ContentHash
}
