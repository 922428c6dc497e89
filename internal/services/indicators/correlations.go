package indicators

import (
	"sort"

	"github.com/serendiv/pulse/internal/models"
)

const (
	minCoMentionsBase = 2
	minGlobalFraction = 0.02
	minJaccard        = 0.05
	maxCorrelations   = 20
)

type sectorPair struct {
	s1, s2 models.Sector
}

// ComputeCorrelations finds sector pairs repeatedly mentioned by the same
// articles. Each pair is scored on co-mention volume, Jaccard similarity of
// the two sectors' article sets, and the pair's share of all articles; weak
// one-off co-mentions are filtered by thresholds that scale with the busiest
// pair. Returns at most maxCorrelations pairs, strongest first.
func ComputeCorrelations(articles []*models.Article) []models.SectorCorrelation {
	sectorArticles := make(map[models.Sector]map[string]struct{})
	pairCounts := make(map[sectorPair]int)
	pairSentiment := make(map[sectorPair]float64)

	for _, a := range articles {
		sectors := a.Enrichment.MentionedSectors
		for _, s := range sectors {
			if sectorArticles[s] == nil {
				sectorArticles[s] = make(map[string]struct{})
			}
			sectorArticles[s][a.ID] = struct{}{}
		}
		if len(sectors) < 2 {
			continue
		}
		for i := 0; i < len(sectors); i++ {
			for j := i + 1; j < len(sectors); j++ {
				pair := orderedPair(sectors[i], sectors[j])
				pairCounts[pair]++
				pairSentiment[pair] += a.Enrichment.SentimentScore
			}
		}
	}

	if len(pairCounts) == 0 {
		return nil
	}

	maxPairCount := 0
	for _, count := range pairCounts {
		if count > maxPairCount {
			maxPairCount = count
		}
	}
	minCoMentions := minCoMentionsBase
	if dynamic := maxPairCount / 100; dynamic > minCoMentions {
		minCoMentions = dynamic
	}

	total := len(articles)
	var correlations []models.SectorCorrelation
	for pair, count := range pairCounts {
		if count < minCoMentions {
			continue
		}

		union := unionSize(sectorArticles[pair.s1], sectorArticles[pair.s2])
		jaccard := 0.0
		if union > 0 {
			jaccard = float64(count) / float64(union)
		}
		globalFraction := float64(count) / float64(total)
		if jaccard < minJaccard || globalFraction < minGlobalFraction {
			continue
		}

		correlations = append(correlations, models.SectorCorrelation{
			Sector1:        pair.s1,
			Sector2:        pair.s2,
			CoMentions:     count,
			Jaccard:        jaccard,
			GlobalFraction: globalFraction,
			AvgSentiment:   pairSentiment[pair] / float64(count),
			Score:          0.5*(float64(count)/float64(maxPairCount)) + 0.3*jaccard + 0.2*globalFraction,
			Strength:       correlationStrength(count, jaccard),
		})
	}

	sort.Slice(correlations, func(i, j int) bool {
		if correlations[i].Score != correlations[j].Score {
			return correlations[i].Score > correlations[j].Score
		}
		if correlations[i].Sector1 != correlations[j].Sector1 {
			return correlations[i].Sector1 < correlations[j].Sector1
		}
		return correlations[i].Sector2 < correlations[j].Sector2
	})

	if len(correlations) > maxCorrelations {
		correlations = correlations[:maxCorrelations]
	}
	return correlations
}

func orderedPair(a, b models.Sector) sectorPair {
	if a < b {
		return sectorPair{a, b}
	}
	return sectorPair{b, a}
}

func unionSize(a, b map[string]struct{}) int {
	size := len(a)
	for id := range b {
		if _, ok := a[id]; !ok {
			size++
		}
	}
	return size
}

func correlationStrength(coMentions int, jaccard float64) string {
	switch {
	case coMentions >= 8 && jaccard >= 0.15:
		return "very_strong"
	case coMentions >= 4 && jaccard >= 0.10:
		return "strong"
	default:
		return "moderate"
	}
}
