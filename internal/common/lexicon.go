package common

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon holds the term lists that drive enrichment and flag detection.
// A built-in default covers the Sri Lankan news domain; a YAML file can
// replace any section without recompiling.
type Lexicon struct {
	Sectors     map[string]map[string]float64 `yaml:"sectors"`
	Sentiment   SentimentLexicon              `yaml:"sentiment"`
	Risk        []string                      `yaml:"risk"`
	Opportunity []string                      `yaml:"opportunity"`
	Publishers  []string                      `yaml:"publishers"`
	Stopwords   []string                      `yaml:"stopwords"`

	stopwordSet map[string]struct{}
}

// SentimentLexicon maps signed word weights used for scoring.
type SentimentLexicon struct {
	Positive map[string]float64 `yaml:"positive"`
	Negative map[string]float64 `yaml:"negative"`
}

// LoadLexicon returns the built-in lexicon, merged with overrides from the
// given YAML file when path is non-empty. Sections present in the file
// replace the corresponding built-in section wholesale.
func LoadLexicon(path string) (*Lexicon, error) {
	lex := DefaultLexicon()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read lexicon file %s: %w", path, err)
		}

		var override Lexicon
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse lexicon file %s: %w", path, err)
		}

		if len(override.Sectors) > 0 {
			lex.Sectors = override.Sectors
		}
		if len(override.Sentiment.Positive) > 0 {
			lex.Sentiment.Positive = override.Sentiment.Positive
		}
		if len(override.Sentiment.Negative) > 0 {
			lex.Sentiment.Negative = override.Sentiment.Negative
		}
		if len(override.Risk) > 0 {
			lex.Risk = override.Risk
		}
		if len(override.Opportunity) > 0 {
			lex.Opportunity = override.Opportunity
		}
		if len(override.Publishers) > 0 {
			lex.Publishers = override.Publishers
		}
		if len(override.Stopwords) > 0 {
			lex.Stopwords = override.Stopwords
		}
	}

	lex.stopwordSet = make(map[string]struct{}, len(lex.Stopwords))
	for _, w := range lex.Stopwords {
		lex.stopwordSet[w] = struct{}{}
	}

	return lex, nil
}

// IsStopword reports whether the lowercase token carries no topical signal.
func (l *Lexicon) IsStopword(token string) bool {
	_, ok := l.stopwordSet[token]
	return ok
}

// DefaultLexicon returns the built-in term lists.
func DefaultLexicon() *Lexicon {
	return &Lexicon{
		Sectors: map[string]map[string]float64{
			"agriculture": {
				"agriculture": 2.0, "farmer": 1.5, "paddy": 2.0, "harvest": 1.5,
				"fertilizer": 1.5, "crop": 1.5, "tea": 1.0, "rubber": 1.0,
				"coconut": 1.0, "fisheries": 1.5, "irrigation": 1.5, "rice": 1.0,
				"plantation": 1.5, "cultivation": 1.5,
			},
			"construction": {
				"construction": 2.0, "infrastructure": 1.5, "highway": 1.5,
				"housing": 1.5, "contractor": 1.5, "cement": 1.5, "real estate": 2.0,
				"bridge": 1.0, "development project": 1.5, "urban": 1.0,
			},
			"energy": {
				"energy": 2.0, "electricity": 2.0, "power plant": 2.0, "fuel": 1.5,
				"petroleum": 1.5, "solar": 1.5, "renewable": 1.5, "ceb": 2.0,
				"power cut": 2.0, "diesel": 1.0, "grid": 1.0, "wind power": 1.5,
			},
			"finance": {
				"bank": 1.5, "banking": 2.0, "inflation": 2.0, "interest rate": 2.0,
				"rupee": 1.5, "stock": 1.0, "imf": 2.0, "loan": 1.5, "treasury": 1.5,
				"monetary": 2.0, "fiscal": 1.5, "bond": 1.0, "forex": 1.5,
				"investment": 1.0, "economy": 1.0, "debt": 1.5,
			},
			"government": {
				"government": 1.5, "parliament": 2.0, "minister": 1.5, "cabinet": 2.0,
				"election": 2.0, "policy": 1.0, "president": 1.5, "gazette": 1.5,
				"legislation": 2.0, "ministry": 1.5, "provincial council": 2.0,
				"opposition": 1.0, "bill": 1.0,
			},
			"healthcare": {
				"hospital": 2.0, "health": 1.5, "doctor": 1.5, "medicine": 1.5,
				"patient": 1.5, "vaccine": 2.0, "dengue": 2.0, "epidemic": 2.0,
				"pharmaceutical": 2.0, "clinic": 1.5, "surgery": 1.0, "nurses": 1.5,
			},
			"manufacturing": {
				"manufacturing": 2.0, "factory": 2.0, "apparel": 2.0, "garment": 2.0,
				"export": 1.0, "industrial": 1.5, "production": 1.0, "textile": 2.0,
				"assembly": 1.0, "supply chain": 1.5,
			},
			"technology": {
				"technology": 2.0, "software": 2.0, "digital": 1.5, "startup": 2.0,
				"internet": 1.5, "telecom": 1.5, "innovation": 1.0, "cyber": 2.0,
				"artificial intelligence": 2.0, "it industry": 2.0, "broadband": 1.5,
				"data center": 2.0,
			},
			"tourism": {
				"tourism": 2.0, "tourist": 2.0, "hotel": 1.5, "airline": 1.5,
				"airport": 1.5, "travel": 1.0, "resort": 1.5, "hospitality": 2.0,
				"visitor arrivals": 2.0, "heritage": 1.0, "beach": 1.0,
			},
		},
		Sentiment: SentimentLexicon{
			Positive: map[string]float64{
				"growth": 0.6, "improve": 0.5, "improved": 0.5, "improving": 0.5,
				"gain": 0.5, "gains": 0.5, "surge": 0.6, "boost": 0.6, "strong": 0.5,
				"record": 0.4, "success": 0.7, "successful": 0.7, "profit": 0.6,
				"recovery": 0.6, "expand": 0.5, "expansion": 0.5, "rise": 0.4,
				"rises": 0.4, "increase": 0.3, "increased": 0.3, "positive": 0.6,
				"opportunity": 0.5, "benefit": 0.5, "win": 0.5, "agreement": 0.3,
				"stable": 0.4, "progress": 0.5, "milestone": 0.5, "investment": 0.3,
				"upgrade": 0.5, "resilient": 0.5, "thriving": 0.7, "approved": 0.4,
			},
			Negative: map[string]float64{
				"crisis": -0.8, "decline": -0.5, "declined": -0.5, "loss": -0.5,
				"losses": -0.5, "fall": -0.4, "falls": -0.4, "drop": -0.4,
				"shortage": -0.7, "strike": -0.6, "protest": -0.5, "corruption": -0.8,
				"fraud": -0.8, "collapse": -0.9, "deficit": -0.5, "default": -0.8,
				"bankrupt": -0.9, "unemployment": -0.6, "inflation": -0.4,
				"negative": -0.6, "weak": -0.4, "failure": -0.7, "failed": -0.6,
				"concern": -0.3, "warning": -0.4, "threat": -0.6, "flood": -0.6,
				"drought": -0.6, "outage": -0.6, "debt": -0.4, "scandal": -0.7,
				"arrested": -0.5, "shutdown": -0.7, "deadly": -0.8, "disaster": -0.8,
			},
		},
		Risk: []string{
			"crisis", "shortage", "strike", "protest", "corruption", "fraud",
			"collapse", "default", "flood", "drought", "outage", "scandal",
			"shutdown", "disaster", "bankruptcy", "layoffs", "emergency",
			"curfew", "unrest",
		},
		Opportunity: []string{
			"investment", "expansion", "growth", "partnership", "agreement",
			"export", "launch", "milestone", "grant", "funding", "upgrade",
			"recovery", "surplus", "modernization", "deal",
		},
		Publishers: []string{
			"daily mirror", "daily news", "the island", "sunday times", "ada derana",
			"news first", "hiru news", "lanka news", "ft.lk", "economynext",
			"colombo gazette", "reuters", "afp",
		},
		Stopwords: []string{
			"a", "about", "above", "after", "again", "against", "all", "also", "am",
			"an", "and", "any", "are", "as", "at", "be", "because", "been", "before",
			"being", "below", "between", "both", "but", "by", "can", "could", "did",
			"do", "does", "doing", "down", "during", "each", "few", "for", "from",
			"further", "had", "has", "have", "having", "he", "her", "here", "hers",
			"him", "his", "how", "however", "i", "if", "in", "into", "is", "it",
			"its", "just", "more", "most", "mr", "mrs", "ms", "my", "new", "no",
			"nor", "not", "now", "of", "off", "on", "once", "one", "only", "or",
			"other", "our", "out", "over", "own", "said", "same", "she", "should",
			"so", "some", "such", "than", "that", "the", "their", "them", "then",
			"there", "these", "they", "this", "those", "through", "to", "too",
			"two", "under", "until", "up", "very", "was", "we", "were", "what",
			"when", "where", "which", "while", "who", "whom", "why", "will",
			"with", "would", "year", "years", "you", "your",
		},
	}
}
