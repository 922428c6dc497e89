package models

import (
	"time"
)

// TrendCluster classifies a sector's momentum within a window.
type TrendCluster string

const (
	ClusterTrending  TrendCluster = "trending"
	ClusterDeclining TrendCluster = "declining"
	ClusterNeutral   TrendCluster = "neutral"
)

// FlagType distinguishes risk and opportunity events.
type FlagType string

const (
	FlagRisk        FlagType = "risk"
	FlagOpportunity FlagType = "opportunity"
)

// IndicatorSnapshot is the aggregated intelligence output for a single
// trailing window. Snapshots are keyed by window start + window length, and
// recomputation fully replaces any prior snapshot for the same key.
type IndicatorSnapshot struct {
	WindowKey   string    `json:"window_key"`
	Window      string    `json:"window"` // e.g. "24h", "168h"
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	GeneratedAt time.Time `json:"generated_at"`

	ArticleCount      int     `json:"article_count"`
	NationalSentiment float64 `json:"national_sentiment"`

	SentimentDistribution map[string]int `json:"sentiment_distribution"`
	TopTopics             []TopicCount   `json:"top_topics"`
	TopOrganizations      []OrgCount     `json:"top_organizations"`

	Volume  VolumeStats       `json:"volume"`
	Sectors []SectorIndicator `json:"sectors"`
	Flags   []FlaggedEvent    `json:"flags"`

	// Correlations are the strongest sector co-mention pairs in the
	// window, ranked by combined score.
	Correlations []SectorCorrelation `json:"correlations,omitempty"`

	// Outliers are individual articles whose sentiment deviates strongly
	// from the window mean.
	Outliers []SentimentOutlier `json:"outliers,omitempty"`
}

// VolumeStats compares current-window intelligence volume to a rolling
// baseline of preceding equal-length windows.
type VolumeStats struct {
	Current         int     `json:"current"`
	BaselineMean    float64 `json:"baseline_mean"`
	BaselineStdDev  float64 `json:"baseline_stddev"`
	BaselineWindows int     `json:"baseline_windows"`
	ZScore          float64 `json:"z_score"`
	Anomalous       bool    `json:"anomalous"`
}

// SectorIndicator is the per-sector aggregate within a window. Sectors with
// zero articles in the current window are omitted from the snapshot.
type SectorIndicator struct {
	Sector         Sector       `json:"sector"`
	ArticleCount   int          `json:"article_count"`
	MeanSentiment  float64      `json:"mean_sentiment"`
	SentimentLabel string       `json:"sentiment_label"`
	PreviousCount  int          `json:"previous_count"`
	Velocity       float64      `json:"velocity"`
	Cluster        TrendCluster `json:"cluster"`
}

// FlaggedEvent is an individual article surfaced as a risk or opportunity.
type FlaggedEvent struct {
	Type         FlagType `json:"type"`
	Sector       Sector   `json:"sector"`
	ArticleID    string   `json:"article_id"`
	Title        string   `json:"title"`
	URL          string   `json:"url"`
	Sentiment    float64  `json:"sentiment"`
	Severity     string   `json:"severity"` // high, medium
	MatchedTerms []string `json:"matched_terms"`
}

// SentimentOutlier is an article whose sentiment z-score within the window
// exceeds the configured bound.
type SentimentOutlier struct {
	ArticleID string  `json:"article_id"`
	Title     string  `json:"title"`
	Sentiment float64 `json:"sentiment"`
	ZScore    float64 `json:"z_score"`
	Direction string  `json:"direction"` // positive, negative
}

// SectorCorrelation is a pair of sectors repeatedly mentioned by the same
// articles, with the signals used to rank the relationship.
type SectorCorrelation struct {
	Sector1        Sector  `json:"sector1"` // lexically before Sector2
	Sector2        Sector  `json:"sector2"`
	CoMentions     int     `json:"co_mentions"`
	Jaccard        float64 `json:"jaccard"`
	GlobalFraction float64 `json:"global_fraction"`
	AvgSentiment   float64 `json:"avg_sentiment"`
	Score          float64 `json:"score"`
	Strength       string  `json:"strength"` // very_strong, strong, moderate
}

// TopicCount is an aggregated keyword occurrence count.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// OrgCount is an aggregated organization mention count.
type OrgCount struct {
	Org   string `json:"org"`
	Count int    `json:"count"`
}

// SectorInsight is an LLM-generated analyst summary for one sector.
type SectorInsight struct {
	Sector       Sector    `json:"sector"`
	GeneratedAt  time.Time `json:"generated_at"`
	ArticleCount int       `json:"article_count"`
	Insights     string    `json:"insights"`
	KeyThemes    []string  `json:"key_themes"`
	Grounded     bool      `json:"grounded"` // false when the fallback text was used
}

// SnapshotKey builds the persistence key for a window. Snapshots for the
// same key replace each other on write.
func SnapshotKey(windowStart time.Time, window string) string {
	return windowStart.UTC().Format(time.RFC3339) + "|" + window
}
