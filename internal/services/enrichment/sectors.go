package enrichment

import (
	"sort"
	"strings"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

// ClassifySector assigns the article to the sector whose lexicon terms score
// highest against the text and extracted keywords. Ties resolve in lexical
// sector order so classification is stable across runs. No match at all
// yields the general sector.
func ClassifySector(text string, keywords []models.Keyword, lex *common.Lexicon) models.Sector {
	scores := sectorScores(text, keywords, lex)

	best := models.SectorGeneral
	bestScore := 0.0
	for _, name := range sortedSectorNames(lex) {
		if score := scores[name]; score > bestScore {
			bestScore = score
			best = models.Sector(name)
		}
	}
	return best
}

// MentionedSectors returns every sector with a positive lexicon score
// against the text, in lexical order. An article about a bank loan to a
// power plant mentions both finance and energy even though only one wins
// the primary classification.
func MentionedSectors(text string, keywords []models.Keyword, lex *common.Lexicon) []models.Sector {
	scores := sectorScores(text, keywords, lex)

	var mentioned []models.Sector
	for _, name := range sortedSectorNames(lex) {
		if scores[name] > 0 {
			mentioned = append(mentioned, models.Sector(name))
		}
	}
	return mentioned
}

func sectorScores(text string, keywords []models.Keyword, lex *common.Lexicon) map[string]float64 {
	var sb strings.Builder
	sb.WriteString(strings.ToLower(text))
	for _, kw := range keywords {
		sb.WriteByte(' ')
		sb.WriteString(kw.Text)
	}
	haystack := sb.String()

	scores := make(map[string]float64, len(lex.Sectors))
	for name, terms := range lex.Sectors {
		var score float64
		for term, weight := range terms {
			score += weight * float64(strings.Count(haystack, term))
		}
		scores[name] = score
	}
	return scores
}

func sortedSectorNames(lex *common.Lexicon) []string {
	names := make([]string, 0, len(lex.Sectors))
	for name := range lex.Sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
