package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serendiv/pulse/internal/models"
)

func findEntity(entities []models.Entity, text string) *models.Entity {
	for i := range entities {
		if entities[i].Text == text {
			return &entities[i]
		}
	}
	return nil
}

func TestExtractEntitiesClassifiesByMarker(t *testing.T) {
	text := "The Central Bank of Sri Lanka met in Colombo. " +
		"Minister Anura Perera addressed the Ceylon Electricity Board."

	entities := ExtractEntities(text, 15)
	require.NotEmpty(t, entities)

	bank := findEntity(entities, "Central Bank")
	require.NotNil(t, bank)
	assert.Equal(t, models.EntityOrganization, bank.Type)

	colombo := findEntity(entities, "Colombo")
	require.NotNil(t, colombo)
	assert.Equal(t, models.EntityLocation, colombo.Type)

	person := findEntity(entities, "Anura Perera")
	require.NotNil(t, person)
	assert.Equal(t, models.EntityPerson, person.Type)

	board := findEntity(entities, "Ceylon Electricity Board")
	require.NotNil(t, board)
	assert.Equal(t, models.EntityOrganization, board.Type)
}

func TestExtractEntitiesDeduplicatesAndCaps(t *testing.T) {
	text := "Colombo saw rain. Later in Colombo the skies cleared. Kandy and Galle stayed dry."

	entities := ExtractEntities(text, 2)
	assert.Len(t, entities, 2)

	var texts []string
	for _, e := range entities {
		texts = append(texts, e.Text)
	}
	assert.Contains(t, texts, "Colombo")
}

func TestExtractEntitiesIgnoresSentenceInitialWords(t *testing.T) {
	entities := ExtractEntities("Yesterday the markets closed early. Trading resumed today.", 15)
	assert.Nil(t, findEntity(entities, "Yesterday"))
	assert.Nil(t, findEntity(entities, "Trading"))
}

func TestExtractKeywordsRanksByFrequency(t *testing.T) {
	lex := testLexicon(t)
	text := "inflation inflation inflation economy economy exports"

	keywords := ExtractKeywords(text, 3, lex)
	require.NotEmpty(t, keywords)

	assert.Equal(t, "inflation", keywords[0].Text)
	assert.Equal(t, 1.0, keywords[0].Weight)
	for i := 1; i < len(keywords); i++ {
		assert.LessOrEqual(t, keywords[i].Weight, keywords[i-1].Weight)
	}
}

func TestExtractKeywordsSkipsStopwords(t *testing.T) {
	lex := testLexicon(t)

	keywords := ExtractKeywords("the and of with from inflation", 5, lex)
	require.Len(t, keywords, 1)
	assert.Equal(t, "inflation", keywords[0].Text)
}

func TestExtractKeywordsIncludesBigrams(t *testing.T) {
	lex := testLexicon(t)
	text := "central bank central bank central bank policy"

	keywords := ExtractKeywords(text, 10, lex)

	var texts []string
	for _, kw := range keywords {
		texts = append(texts, kw.Text)
	}
	assert.Contains(t, texts, "central bank")
}
