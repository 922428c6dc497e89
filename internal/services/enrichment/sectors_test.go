package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/serendiv/pulse/internal/common"
	"github.com/serendiv/pulse/internal/models"
)

func TestClassifySectorMatchesDominantTerms(t *testing.T) {
	lex := testLexicon(t)

	tests := []struct {
		name   string
		text   string
		sector models.Sector
	}{
		{"finance", "the central bank raised the interest rate as inflation eased", models.SectorFinance},
		{"energy", "the power plant outage forced another power cut across the grid", models.SectorEnergy},
		{"tourism", "tourist arrivals lifted hotel occupancy in the hospitality trade", models.SectorTourism},
		{"agriculture", "paddy farmers received fertilizer ahead of the harvest", models.SectorAgriculture},
		{"no signal", "an unremarkable note about nothing in particular", models.SectorGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.sector, ClassifySector(tt.text, nil, lex))
		})
	}
}

func TestClassifySectorTieBreaksLexically(t *testing.T) {
	lex := &common.Lexicon{
		Sectors: map[string]map[string]float64{
			"energy":  {"shared": 1.0},
			"finance": {"shared": 1.0},
			"tourism": {"shared": 1.0},
		},
	}

	// All three sectors score identically; the lexically first wins.
	assert.Equal(t, models.SectorEnergy, ClassifySector("a shared term", nil, lex))
}

func TestMentionedSectorsCoversSecondaryMentions(t *testing.T) {
	lex := testLexicon(t)

	text := "the central bank arranged a loan for the power plant expansion"
	mentioned := MentionedSectors(text, nil, lex)

	assert.Contains(t, mentioned, models.SectorFinance)
	assert.Contains(t, mentioned, models.SectorEnergy)
	// The winner is always among the mentions.
	assert.Contains(t, mentioned, ClassifySector(text, nil, lex))
}

func TestClassifySectorUsesKeywords(t *testing.T) {
	lex := testLexicon(t)

	keywords := []models.Keyword{
		{Text: "apparel", Weight: 1.0},
		{Text: "garment", Weight: 0.8},
	}
	assert.Equal(t, models.SectorManufacturing, ClassifySector("short note", keywords, lex))
}
