package enrichment

import (
	"strings"

	"github.com/serendiv/pulse/internal/models"
)

// orgMarkers classify a capitalized span as an organization when any token
// matches. Covers the corporate and institutional suffixes common in local
// news copy.
var orgMarkers = map[string]struct{}{
	"bank": {}, "ministry": {}, "company": {}, "group": {}, "authority": {},
	"corporation": {}, "board": {}, "commission": {}, "airlines": {},
	"holdings": {}, "plc": {}, "ltd": {}, "limited": {}, "department": {},
	"university": {}, "institute": {}, "association": {}, "council": {},
	"exchange": {}, "fund": {}, "bureau": {}, "party": {}, "federation": {},
	"union": {}, "committee": {}, "agency": {}, "parliament": {},
}

// personTitles precede a name; the title itself is stripped from the entity.
var personTitles = map[string]struct{}{
	"mr": {}, "mrs": {}, "ms": {}, "dr": {}, "prof": {}, "minister": {},
	"president": {}, "chairman": {}, "secretary": {}, "general": {},
	"justice": {}, "mp": {},
}

// locations is a gazetteer of Sri Lankan place names plus the countries that
// recur in regional coverage.
var locations = map[string]struct{}{
	"sri lanka": {}, "colombo": {}, "kandy": {}, "galle": {}, "jaffna": {},
	"negombo": {}, "trincomalee": {}, "batticaloa": {}, "anuradhapura": {},
	"kurunegala": {}, "ratnapura": {}, "matara": {}, "badulla": {},
	"hambantota": {}, "gampaha": {}, "kalutara": {}, "polonnaruwa": {},
	"nuwara eliya": {}, "vavuniya": {}, "mannar": {}, "puttalam": {},
	"kegalle": {}, "monaragala": {}, "ampara": {}, "kilinochchi": {},
	"mullaitivu": {}, "matale": {}, "india": {}, "china": {}, "japan": {},
	"maldives": {}, "pakistan": {}, "bangladesh": {}, "singapore": {},
	"united states": {}, "united kingdom": {}, "australia": {},
}

// ExtractEntities finds named entities in the text using capitalization
// heuristics and the location gazetteer. Entities are returned in first
// occurrence order, deduplicated case-insensitively, capped at maxEntities.
//
// Classification order: gazetteer locations, organization markers, person
// titles. Remaining multi-word spans default to organizations. Single
// capitalized words are kept only when the gazetteer or a marker claims
// them, since sentence-initial capitals are otherwise pure noise.
func ExtractEntities(text string, maxEntities int) []models.Entity {
	if maxEntities <= 0 {
		return nil
	}

	tokens, sentenceStart := rawTokens(text)

	entities := make([]models.Entity, 0, maxEntities)
	seen := make(map[string]struct{})

	i := 0
	for i < len(tokens) {
		if !isCapitalized(tokens[i]) {
			i++
			continue
		}

		j := i + 1
		for j < len(tokens) && isCapitalized(tokens[j]) && !sentenceStart[j] {
			j++
		}
		span := tokens[i:j]

		if ent, ok := classifySpan(span, sentenceStart[i]); ok {
			key := strings.ToLower(ent.Text)
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				entities = append(entities, ent)
				if len(entities) >= maxEntities {
					break
				}
			}
		}
		i = j
	}

	return entities
}

func classifySpan(span []string, atSentenceStart bool) (models.Entity, bool) {
	// Sentence-initial articles attach to the following span; drop them.
	if len(span) > 1 {
		switch strings.ToLower(span[0]) {
		case "the", "a", "an":
			span = span[1:]
		}
	}

	lower := make([]string, len(span))
	for i, t := range span {
		lower[i] = strings.ToLower(t)
	}
	joined := strings.Join(lower, " ")

	if _, ok := locations[joined]; ok {
		return models.Entity{Text: strings.Join(span, " "), Type: models.EntityLocation}, true
	}

	for _, t := range lower {
		if _, ok := orgMarkers[t]; ok {
			return models.Entity{Text: strings.Join(span, " "), Type: models.EntityOrganization}, true
		}
	}

	if _, ok := personTitles[strings.TrimSuffix(lower[0], ".")]; ok && len(span) > 1 {
		return models.Entity{Text: strings.Join(span[1:], " "), Type: models.EntityPerson}, true
	}

	if len(span) == 1 {
		// A lone capitalized word at sentence start is indistinguishable
		// from an ordinary word.
		if atSentenceStart {
			return models.Entity{}, false
		}
		return models.Entity{Text: span[0], Type: models.EntityOrganization}, true
	}

	if len(span) <= 3 {
		return models.Entity{Text: strings.Join(span, " "), Type: models.EntityPerson}, true
	}
	return models.Entity{Text: strings.Join(span, " "), Type: models.EntityOrganization}, true
}
