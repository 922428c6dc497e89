package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

func TestScoreSentimentBounds(t *testing.T) {
	lex := testLexicon(t)

	tests := []struct {
		name string
		text string
		sign int
	}{
		{"positive text", "Strong growth and record profit boost the recovery", 1},
		{"negative text", "Crisis deepens as shortage and strike cause collapse", -1},
		{"no matched words", "The quick brown fox jumps over the lazy dog", 0},
		{"empty text", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := ScoreSentiment(tt.text, lex)
			assert.GreaterOrEqual(t, score, -1.0)
			assert.LessOrEqual(t, score, 1.0)
			switch tt.sign {
			case 1:
				assert.Greater(t, score, 0.0)
			case -1:
				assert.Less(t, score, 0.0)
			default:
				assert.Zero(t, score)
			}
		})
	}
}

func TestScoreSentimentNegationFlips(t *testing.T) {
	lex := testLexicon(t)

	plain := ScoreSentiment("the results show growth", lex)
	negated := ScoreSentiment("the results show no growth", lex)

	assert.Greater(t, plain, 0.0)
	assert.Less(t, negated, 0.0)
}

func TestSentimentLabelThresholds(t *testing.T) {
	assert.Equal(t, models.SentimentPositive, SentimentLabel(0.3, 0.1, -0.1))
	assert.Equal(t, models.SentimentNegative, SentimentLabel(-0.3, 0.1, -0.1))
	assert.Equal(t, models.SentimentNeutral, SentimentLabel(0.05, 0.1, -0.1))
	assert.Equal(t, models.SentimentPositive, SentimentLabel(0.1, 0.1, -0.1))
	assert.Equal(t, models.SentimentNegative, SentimentLabel(-0.1, 0.1, -0.1))
}

func TestLexiconOverride(t *testing.T) {
	lex, err := common.LoadLexicon("")
	require.NoError(t, err)
	assert.NotEmpty(t, lex.Sectors)
	assert.NotEmpty(t, lex.Sentiment.Positive)
	assert.NotEmpty(t, lex.Risk)
	assert.True(t, lex.IsStopword("the"))
	assert.False(t, lex.IsStopword("inflation"))
}
