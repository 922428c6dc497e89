package indicators

import (
	"math"
	"sort"
	"strings"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

const severityCutoff = 0.5

// DetectFlags scans enriched articles for risk and opportunity events. An
// article flags when its sentiment crosses the configured threshold AND its
// text matches at least one lexicon term for that category; sentiment alone
// is not enough, which keeps generically gloomy coverage out of the risk
// feed. Each category is ranked by sentiment magnitude and capped.
func DetectFlags(articles []*models.Article, cfg *common.IndicatorsConfig, lex *common.Lexicon) []models.FlaggedEvent {
	var risks, opportunities []models.FlaggedEvent

	for _, article := range articles {
		if article.Enrichment == nil {
			continue
		}
		score := article.Enrichment.SentimentScore

		if score <= cfg.RiskThreshold {
			if terms := matchTerms(article, lex.Risk); len(terms) > 0 {
				risks = append(risks, newFlag(models.FlagRisk, article, terms))
			}
		} else if score >= cfg.OpportunityThreshold {
			if terms := matchTerms(article, lex.Opportunity); len(terms) > 0 {
				opportunities = append(opportunities, newFlag(models.FlagOpportunity, article, terms))
			}
		}
	}

	rankFlags(risks)
	rankFlags(opportunities)

	if len(risks) > cfg.MaxFlagsPerCategory {
		risks = risks[:cfg.MaxFlagsPerCategory]
	}
	if len(opportunities) > cfg.MaxFlagsPerCategory {
		opportunities = opportunities[:cfg.MaxFlagsPerCategory]
	}

	return append(risks, opportunities...)
}

func newFlag(flagType models.FlagType, article *models.Article, terms []string) models.FlaggedEvent {
	score := article.Enrichment.SentimentScore
	severity := "medium"
	if math.Abs(score) >= severityCutoff {
		severity = "high"
	}
	return models.FlaggedEvent{
		Type:         flagType,
		Sector:       article.Enrichment.Sector,
		ArticleID:    article.ID,
		Title:        article.Title,
		URL:          article.URL,
		Sentiment:    score,
		Severity:     severity,
		MatchedTerms: terms,
	}
}

// matchTerms returns the lexicon terms found in the article title or
// keywords, sorted for stable output.
func matchTerms(article *models.Article, terms []string) []string {
	title := strings.ToLower(article.Title)

	var matched []string
	for _, term := range terms {
		if strings.Contains(title, term) {
			matched = append(matched, term)
			continue
		}
		for _, kw := range article.Enrichment.Keywords {
			if strings.Contains(kw.Text, term) {
				matched = append(matched, term)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

func rankFlags(flags []models.FlaggedEvent) {
	sort.Slice(flags, func(i, j int) bool {
		mi, mj := math.Abs(flags[i].Sentiment), math.Abs(flags[j].Sentiment)
		if mi != mj {
			return mi > mj
		}
		return flags[i].ArticleID < flags[j].ArticleID
	})
}
