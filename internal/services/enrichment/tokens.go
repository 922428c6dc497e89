package enrichment

import (
	"strings"
	"unicode"
)

// Tokenize splits text into lowercase word tokens, stripping punctuation.
// Hyphenated words are kept whole so domain terms like "e-commerce" survive.
func Tokenize(text string) []string {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '-'
	})

	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.Trim(strings.ToLower(t), "-")
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// rawTokens splits text preserving case, used for entity extraction where
// capitalization carries signal. Returns tokens alongside a flag marking
// which tokens start a sentence.
func rawTokens(text string) ([]string, []bool) {
	fields := strings.Fields(text)
	tokens := make([]string, 0, len(fields))
	sentenceStart := make([]bool, 0, len(fields))

	start := true
	for _, f := range fields {
		trimmed := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if trimmed == "" {
			start = true
			continue
		}
		tokens = append(tokens, trimmed)
		sentenceStart = append(sentenceStart, start)
		start = strings.ContainsAny(f, ".!?:;\n")
	}
	return tokens, sentenceStart
}

func isCapitalized(token string) bool {
	for _, r := range token {
		return unicode.IsUpper(r)
	}
	return false
}
