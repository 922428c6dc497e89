package insights

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/serendiv/pulse/internal/interfaces"
	"github.com/serendiv/pulse/internal/models"
)

// insightWindow is the lookback over which sector insights are generated.
const insightWindow = 7 * 24 * time.Hour

// insightTTL bounds how long a cached insight is served before regeneration.
const insightTTL = 6 * time.Hour

// maxHeadlines caps how many article titles feed the analyst prompt.
const maxHeadlines = 15

// Service generates per-sector analyst summaries from the past week's
// coverage. Generated insights are cached; a generation failure falls back
// to a deterministic summary built from the aggregates alone, so the sector
// view always renders something.
type Service struct {
	articles  interfaces.ArticleStorage
	insights  interfaces.InsightStorage
	generator interfaces.GenerationProvider
	logger    arbor.ILogger
}

// NewService creates an insight service.
func NewService(articles interfaces.ArticleStorage, insights interfaces.InsightStorage, generator interfaces.GenerationProvider, logger arbor.ILogger) *Service {
	return &Service{
		articles:  articles,
		insights:  insights,
		generator: generator,
		logger:    logger,
	}
}

// SectorInsight returns the analyst summary for a sector, generating and
// caching it when the cached copy is missing or stale.
func (s *Service) SectorInsight(ctx context.Context, sector models.Sector) (*models.SectorInsight, error) {
	if !sector.IsValid() {
		return nil, fmt.Errorf("%w: unknown sector %q", models.ErrConfiguration, sector)
	}

	cached, err := s.insights.GetInsight(ctx, sector)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached insight: %w", err)
	}
	if cached != nil && time.Since(cached.GeneratedAt) < insightTTL {
		return cached, nil
	}

	now := time.Now().UTC()
	articles, err := s.articles.QueryByTime(ctx, now.Add(-insightWindow), now, sector)
	if err != nil {
		return nil, fmt.Errorf("failed to query sector articles: %w", err)
	}

	insight := &models.SectorInsight{
		Sector:       sector,
		GeneratedAt:  now,
		ArticleCount: len(articles),
		KeyThemes:    keyThemes(articles),
	}

	if len(articles) == 0 {
		insight.Insights = fmt.Sprintf("No %s coverage in the past week.", sector)
		insight.Grounded = false
	} else {
		text, err := s.generate(ctx, sector, articles)
		if err != nil {
			s.logger.Warn().Err(err).Str("sector", string(sector)).Msg("Insight generation failed; using fallback summary")
			insight.Insights = fallbackSummary(sector, articles)
			insight.Grounded = false
		} else {
			insight.Insights = text
			insight.Grounded = true
		}
	}

	if err := s.insights.SaveInsight(ctx, insight); err != nil {
		s.logger.Warn().Err(err).Str("sector", string(sector)).Msg("Failed to cache sector insight")
	}

	return insight, nil
}

func (s *Service) generate(ctx context.Context, sector models.Sector, articles []*models.Article) (string, error) {
	sorted := make([]*models.Article, len(articles))
	copy(sorted, articles)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "Recent %s sector headlines from Sri Lankan news:\n\n", sector)
	for i, a := range sorted {
		if i >= maxHeadlines {
			break
		}
		sentiment := ""
		if a.Enrichment != nil {
			sentiment = fmt.Sprintf(" (sentiment %.2f)", a.Enrichment.SentimentScore)
		}
		fmt.Fprintf(&sb, "- %s%s\n", a.Title, sentiment)
	}
	sb.WriteString("\nSummarize the week for this sector in three short paragraphs: ")
	sb.WriteString("what happened, what it means for the sector, and what to watch next.")

	system := fmt.Sprintf("You are a market analyst covering the Sri Lankan %s sector. Be concrete and neutral in tone.", sector)

	return s.generator.Generate(ctx, []interfaces.Message{
		{Role: interfaces.RoleSystem, Content: system},
		{Role: interfaces.RoleUser, Content: sb.String()},
	})
}

// fallbackSummary renders a deterministic digest when the model is
// unavailable.
func fallbackSummary(sector models.Sector, articles []*models.Article) string {
	var sum float64
	var scored int
	for _, a := range articles {
		if a.Enrichment != nil {
			sum += a.Enrichment.SentimentScore
			scored++
		}
	}

	tone := "mixed"
	if scored > 0 {
		mean := sum / float64(scored)
		switch {
		case mean >= 0.1:
			tone = "broadly positive"
		case mean <= -0.1:
			tone = "broadly negative"
		default:
			tone = "neutral"
		}
	}

	return fmt.Sprintf("%d %s articles in the past week; coverage tone was %s. Automated analysis is temporarily unavailable.",
		len(articles), sector, tone)
}

// keyThemes surfaces the most frequent keywords across the sector's window.
func keyThemes(articles []*models.Article) []string {
	counts := make(map[string]int)
	for _, a := range articles {
		if a.Enrichment == nil {
			continue
		}
		for _, kw := range a.Enrichment.Keywords {
			counts[kw.Text]++
		}
	}

	themes := make([]string, 0, len(counts))
	for theme := range counts {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool {
		if counts[themes[i]] != counts[themes[j]] {
			return counts[themes[i]] > counts[themes[j]]
		}
		return themes[i] < themes[j]
	})

	if len(themes) > 5 {
		themes = themes[:5]
	}
	return themes
}
