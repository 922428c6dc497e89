package enrichment

import (
	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

// negators flip the sign of the next matched sentiment word.
var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "without": {}, "hardly": {},
}

// negationReach limits how far a negator influences following tokens.
const negationReach = 3

// ScoreSentiment computes a deterministic sentiment score in [-1, 1] from
// lexicon word weights. The score is the mean weight of matched words, with
// negation flipping the sign of a match within reach. Text with no matched
// words scores exactly 0.
func ScoreSentiment(text string, lex *common.Lexicon) float64 {
	tokens := Tokenize(text)

	var sum float64
	var matches int
	negateUntil := -1

	for i, tok := range tokens {
		if _, ok := negators[tok]; ok {
			negateUntil = i + negationReach
			continue
		}

		weight, ok := lex.Sentiment.Positive[tok]
		if !ok {
			weight, ok = lex.Sentiment.Negative[tok]
		}
		if !ok {
			continue
		}

		if i <= negateUntil {
			weight = -weight
			negateUntil = -1
		}
		sum += weight
		matches++
	}

	if matches == 0 {
		return 0
	}

	score := sum / float64(matches)
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

// SentimentLabel buckets a score using the configured thresholds.
func SentimentLabel(score, positiveThreshold, negativeThreshold float64) string {
	switch {
	case score >= positiveThreshold:
		return models.SentimentPositive
	case score <= negativeThreshold:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
