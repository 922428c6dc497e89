package enrichment

import (
	"sort"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

const minKeywordLength = 3

// ExtractKeywords returns up to maxKeywords weighted terms from the text.
// Candidates are non-stopword unigrams and adjacent-token bigrams; weights
// are frequencies normalized against the most frequent candidate so the top
// keyword always carries weight 1.0. Ordering is weight descending with a
// lexical tie-break, which keeps repeated runs over the same text identical.
func ExtractKeywords(text string, maxKeywords int, lex *common.Lexicon) []models.Keyword {
	if maxKeywords <= 0 {
		return nil
	}

	tokens := Tokenize(text)
	counts := make(map[string]int)

	prev := ""
	for _, tok := range tokens {
		if len(tok) < minKeywordLength || lex.IsStopword(tok) || isNumeric(tok) {
			prev = ""
			continue
		}
		counts[tok]++
		if prev != "" {
			counts[prev+" "+tok]++
		}
		prev = tok
	}

	if len(counts) == 0 {
		return nil
	}

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}

	keywords := make([]models.Keyword, 0, len(counts))
	for term, c := range counts {
		keywords = append(keywords, models.Keyword{
			Text:   term,
			Weight: float64(c) / float64(maxCount),
		})
	}

	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Weight != keywords[j].Weight {
			return keywords[i].Weight > keywords[j].Weight
		}
		return keywords[i].Text < keywords[j].Text
	})

	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords
}

func isNumeric(token string) bool {
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
