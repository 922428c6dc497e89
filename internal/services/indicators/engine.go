package indicators

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// Engine computes indicator snapshots over sliding time windows and commits
// them atomically to snapshot storage. Readers only ever see the previous
// complete snapshot or the new complete snapshot, never a partial one.
type Engine struct {
	config    *common.IndicatorsConfig
	lexicon   *common.Lexicon
	articles  interfaces.ArticleStorage
	snapshots interfaces.SnapshotStorage
	logger    arbor.ILogger
}

// NewEngine creates an indicator engine.
func NewEngine(config *common.IndicatorsConfig, lexicon *common.Lexicon, articles interfaces.ArticleStorage, snapshots interfaces.SnapshotStorage, logger arbor.ILogger) *Engine {
	return &Engine{
		config:    config,
		lexicon:   lexicon,
		articles:  articles,
		snapshots: snapshots,
		logger:    logger,
	}
}

// BuildAll builds a snapshot for every configured window, ending now.
// Windows are independent; a failure on one is logged and does not stop the
// others. Returns the number of snapshots committed.
func (e *Engine) BuildAll(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	built := 0

	for _, w := range e.config.Windows {
		dur, err := time.ParseDuration(w)
		if err != nil {
			return built, fmt.Errorf("%w: invalid indicator window %q: %v", models.ErrConfiguration, w, err)
		}
		if _, err := e.BuildSnapshot(ctx, now, dur); err != nil {
			e.logger.Error().Err(err).Str("window", w).Msg("Failed to build indicator snapshot")
			continue
		}
		built++
	}

	return built, nil
}

// BuildSnapshot computes the full indicator set for the window ending at
// windowEnd and persists it, replacing any prior snapshot for the same
// window key. Sector computations are isolated: a panic inside one sector is
// recovered and that sector omitted rather than losing the whole snapshot.
func (e *Engine) BuildSnapshot(ctx context.Context, windowEnd time.Time, window time.Duration) (*models.IndicatorSnapshot, error) {
	windowEnd = windowEnd.UTC()
	windowStart := windowEnd.Add(-window)
	label := formatWindow(window)

	all, err := e.articles.QueryByTime(ctx, windowStart, windowEnd, "")
	if err != nil {
		return nil, fmt.Errorf("failed to query window articles: %w", err)
	}

	enriched := filterEnriched(all)

	prevAll, err := e.articles.QueryByTime(ctx, windowStart.Add(-window), windowStart, "")
	if err != nil {
		return nil, fmt.Errorf("failed to query previous window articles: %w", err)
	}
	// Unenriched articles carry no sector or sentiment; they count for
	// neither window.
	previous := filterEnriched(prevAll)

	volume, err := e.volumeStats(ctx, windowStart, windowEnd, window)
	if err != nil {
		return nil, err
	}

	snapshot := &models.IndicatorSnapshot{
		WindowKey:             models.SnapshotKey(windowStart, label),
		Window:                label,
		WindowStart:           windowStart,
		WindowEnd:             windowEnd,
		GeneratedAt:           time.Now().UTC(),
		ArticleCount:          len(enriched),
		NationalSentiment:     weightedNationalSentiment(enriched),
		SentimentDistribution: sentimentDistribution(enriched),
		TopTopics:             e.topTopics(enriched),
		TopOrganizations:      e.topOrganizations(enriched),
		Volume:                volume,
		Sectors:               e.sectorIndicators(enriched, previous),
		Correlations:          ComputeCorrelations(enriched),
		Flags:                 DetectFlags(enriched, e.config, e.lexicon),
		Outliers:              e.sentimentOutliers(enriched),
	}

	if err := e.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to save indicator snapshot: %w", err)
	}

	e.logger.Info().
		Str("window", label).
		Int("articles", snapshot.ArticleCount).
		Float64("national_sentiment", snapshot.NationalSentiment).
		Bool("volume_anomaly", snapshot.Volume.Anomalous).
		Msg("Indicator snapshot committed")

	return snapshot, nil
}

// weightedNationalSentiment is the article-volume weighted mean across
// sectors, which reduces to the plain mean over all enriched articles.
func weightedNationalSentiment(articles []*models.Article) float64 {
	if len(articles) == 0 {
		return 0
	}
	var sum float64
	for _, a := range articles {
		sum += a.Enrichment.SentimentScore
	}
	return sum / float64(len(articles))
}

func sentimentDistribution(articles []*models.Article) map[string]int {
	dist := map[string]int{
		models.SentimentPositive: 0,
		models.SentimentNeutral:  0,
		models.SentimentNegative: 0,
	}
	for _, a := range articles {
		dist[a.Enrichment.SentimentLabel]++
	}
	return dist
}

// sectorIndicators computes per-sector aggregates plus velocity against the
// preceding window. Each sector runs inside a recover guard; a failed sector
// is dropped from the snapshot, not fatal to it.
func (e *Engine) sectorIndicators(current, previous []*models.Article) []models.SectorIndicator {
	curBySector := groupBySector(current)
	prevBySector := groupBySector(previous)

	var indicators []models.SectorIndicator
	for _, sector := range models.AllSectors() {
		articles := curBySector[sector]
		if len(articles) == 0 {
			continue
		}

		indicator, ok := e.buildSectorIndicator(sector, articles, prevBySector[sector])
		if ok {
			indicators = append(indicators, indicator)
		}
	}
	return indicators
}

func (e *Engine) buildSectorIndicator(sector models.Sector, current, previous []*models.Article) (indicator models.SectorIndicator, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error().Str("sector", string(sector)).Msgf("Sector indicator computation panicked: %v", r)
			ok = false
		}
	}()

	mean := weightedNationalSentiment(current)
	prevMean := weightedNationalSentiment(previous)
	velocity := ComputeVelocity(mean, prevMean, len(previous))

	return models.SectorIndicator{
		Sector:         sector,
		ArticleCount:   len(current),
		MeanSentiment:  mean,
		SentimentLabel: labelForScore(mean),
		PreviousCount:  len(previous),
		Velocity:       velocity,
		Cluster:        ClassifyCluster(velocity, len(current), e.config.MinVolume, e.config.TrendThreshold),
	}, true
}

func filterEnriched(articles []*models.Article) []*models.Article {
	enriched := make([]*models.Article, 0, len(articles))
	for _, a := range articles {
		if a.IsEnriched() {
			enriched = append(enriched, a)
		}
	}
	return enriched
}

func groupBySector(articles []*models.Article) map[models.Sector][]*models.Article {
	grouped := make(map[models.Sector][]*models.Article)
	for _, a := range articles {
		grouped[a.Enrichment.Sector] = append(grouped[a.Enrichment.Sector], a)
	}
	return grouped
}

func labelForScore(score float64) string {
	switch {
	case score >= 0.1:
		return models.SentimentPositive
	case score <= -0.1:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// volumeStats compares the current window's article volume against the
// preceding baseline windows of equal length.
func (e *Engine) volumeStats(ctx context.Context, windowStart, windowEnd time.Time, window time.Duration) (models.VolumeStats, error) {
	current, err := e.articles.CountByTime(ctx, windowStart, windowEnd)
	if err != nil {
		return models.VolumeStats{}, fmt.Errorf("failed to count current window volume: %w", err)
	}

	volumes := make([]int, 0, e.config.BaselineWindows)
	for i := 1; i <= e.config.BaselineWindows; i++ {
		offset := time.Duration(i) * window
		count, err := e.articles.CountByTime(ctx, windowStart.Add(-offset), windowEnd.Add(-offset))
		if err != nil {
			return models.VolumeStats{}, fmt.Errorf("failed to count baseline window volume: %w", err)
		}
		volumes = append(volumes, count)
	}

	mean, stddev := BaselineStats(volumes)
	return models.VolumeStats{
		Current:         current,
		BaselineMean:    mean,
		BaselineStdDev:  stddev,
		BaselineWindows: len(volumes),
		ZScore:          VolumeZScore(current, mean, stddev),
		Anomalous:       IsAnomalous(current, mean, stddev, e.config.AnomalyK),
	}, nil
}

// topTopics counts keyword occurrences across the window, filtered through
// the topic noise rules, capped at the configured maximum.
func (e *Engine) topTopics(articles []*models.Article) []models.TopicCount {
	counts := make(map[string]int)
	for _, a := range articles {
		for _, kw := range a.Enrichment.Keywords {
			topic := strings.ToLower(strings.TrimSpace(kw.Text))
			if len(topic) < 3 || e.lexicon.IsStopword(topic) {
				continue
			}
			counts[topic]++
		}
	}

	topics := make([]models.TopicCount, 0, len(counts))
	for topic, count := range counts {
		topics = append(topics, models.TopicCount{Topic: topic, Count: count})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return topics[i].Topic < topics[j].Topic
	})

	if max := e.config.MaxTopics; max > 0 && len(topics) > max {
		topics = topics[:max]
	}
	return topics
}

// topOrganizations counts organization entity mentions, excluding the news
// publishers themselves so the list surfaces subjects, not sources.
func (e *Engine) topOrganizations(articles []*models.Article) []models.OrgCount {
	counts := make(map[string]int)
	display := make(map[string]string)

	for _, a := range articles {
		for _, ent := range a.Enrichment.Entities {
			if ent.Type != models.EntityOrganization {
				continue
			}
			lower := strings.ToLower(ent.Text)
			if isPublisher(lower, e.lexicon.Publishers) {
				continue
			}
			counts[lower]++
			if _, seen := display[lower]; !seen {
				display[lower] = ent.Text
			}
		}
	}

	orgs := make([]models.OrgCount, 0, len(counts))
	for lower, count := range counts {
		orgs = append(orgs, models.OrgCount{Org: display[lower], Count: count})
	}
	sort.Slice(orgs, func(i, j int) bool {
		if orgs[i].Count != orgs[j].Count {
			return orgs[i].Count > orgs[j].Count
		}
		return orgs[i].Org < orgs[j].Org
	})

	if max := e.config.MaxOrganizations; max > 0 && len(orgs) > max {
		orgs = orgs[:max]
	}
	return orgs
}

func isPublisher(name string, publishers []string) bool {
	for _, p := range publishers {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// outlierMinArticles is the smallest window for which a z-score over article
// sentiments is meaningful.
const outlierMinArticles = 10

const maxOutliers = 20

// sentimentOutliers finds articles whose sentiment deviates sharply from the
// window mean.
func (e *Engine) sentimentOutliers(articles []*models.Article) []models.SentimentOutlier {
	if len(articles) < outlierMinArticles {
		return nil
	}

	scores := make([]float64, len(articles))
	var sum float64
	for i, a := range articles {
		scores[i] = a.Enrichment.SentimentScore
		sum += scores[i]
	}
	mean := sum / float64(len(scores))

	var variance float64
	for _, s := range scores {
		d := s - mean
		variance += d * d
	}
	stddev := math.Sqrt(variance / float64(len(scores)))
	if stddev <= 0 {
		return nil
	}

	var outliers []models.SentimentOutlier
	for i, a := range articles {
		z := (scores[i] - mean) / stddev
		if z > e.config.OutlierZ || z < -e.config.OutlierZ {
			direction := "positive"
			if z < 0 {
				direction = "negative"
			}
			outliers = append(outliers, models.SentimentOutlier{
				ArticleID: a.ID,
				Title:     a.Title,
				Sentiment: scores[i],
				ZScore:    z,
				Direction: direction,
			})
		}
	}

	sort.Slice(outliers, func(i, j int) bool {
		zi, zj := math.Abs(outliers[i].ZScore), math.Abs(outliers[j].ZScore)
		if zi != zj {
			return zi > zj
		}
		return outliers[i].ArticleID < outliers[j].ArticleID
	})

	if len(outliers) > maxOutliers {
		outliers = outliers[:maxOutliers]
	}
	return outliers
}

// formatWindow renders a duration as the compact hour form used in window
// keys, e.g. 24h rather than 24h0m0s.
func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%dh", int(d/time.Hour))
	}
	return d.String()
}
