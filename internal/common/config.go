package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"

	"github.com/serendiv/pulse/internal/models"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
	Scraper     ScraperConfig    `toml:"scraper"`
	Enrichment  EnrichmentConfig `toml:"enrichment"`
	Indicators  IndicatorsConfig `toml:"indicators"`
	Embeddings  EmbeddingsConfig `toml:"embeddings"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	LLM         LLMConfig        `toml:"llm"`
	Pipeline    PipelineConfig   `toml:"pipeline"`
	Reports     ReportsConfig    `toml:"reports"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"`
	Output []string `toml:"output"` // "stdout", "file"
}

// ScraperConfig controls the news source fetch stage.
type ScraperConfig struct {
	UserAgent      string         `toml:"user_agent"`
	RequestTimeout time.Duration  `toml:"request_timeout" validate:"gt=0"`
	RequestDelay   time.Duration  `toml:"request_delay"`
	MaxRetries     int            `toml:"max_retries" validate:"gte=0"`
	MaxBodySize    int            `toml:"max_body_size"`
	Sources        []SourceConfig `toml:"sources" validate:"dive"`
}

// SourceConfig describes one news source index page and the selectors used
// to extract article links and bodies from it.
type SourceConfig struct {
	Name          string `toml:"name" validate:"required"`
	Section       string `toml:"section"`
	IndexURL      string `toml:"index_url" validate:"required,url"`
	LinkSelector  string `toml:"link_selector" validate:"required"`
	TitleSelector string `toml:"title_selector" validate:"required"`
	BodySelector  string `toml:"body_selector" validate:"required"`
	MaxArticles   int    `toml:"max_articles"`
}

// EnrichmentConfig controls the NLP enrichment stage.
type EnrichmentConfig struct {
	// LexiconPath optionally overrides the built-in sector/sentiment
	// lexicon with a YAML file.
	LexiconPath       string  `toml:"lexicon_path"`
	MaxKeywords       int     `toml:"max_keywords" validate:"gt=0"`
	MaxEntities       int     `toml:"max_entities" validate:"gt=0"`
	PositiveThreshold float64 `toml:"positive_threshold"`
	NegativeThreshold float64 `toml:"negative_threshold"`
}

// IndicatorsConfig holds the thresholds the indicator engine runs with.
// These are configuration, not hardcoded values.
type IndicatorsConfig struct {
	Windows              []string `toml:"windows" validate:"min=1"` // e.g. ["24h", "168h"]
	TrendThreshold       float64  `toml:"trend_threshold" validate:"gt=0"`
	MinVolume            int      `toml:"min_volume" validate:"gte=0"`
	AnomalyK             float64  `toml:"anomaly_k" validate:"gt=0"`
	BaselineWindows      int      `toml:"baseline_windows" validate:"gte=3"`
	RiskThreshold        float64  `toml:"risk_threshold"`
	OpportunityThreshold float64  `toml:"opportunity_threshold"`
	MaxFlagsPerCategory  int      `toml:"max_flags_per_category" validate:"gt=0"`
	MaxTopics            int      `toml:"max_topics"`
	MaxOrganizations     int      `toml:"max_organizations"`
	OutlierZ             float64  `toml:"outlier_z"`
}

// EmbeddingsConfig controls the vector index builder.
type EmbeddingsConfig struct {
	// TextLimit is the embedding model input limit in characters; article
	// text is truncated to it before embedding.
	TextLimit int `toml:"text_limit" validate:"gt=0"`
}

// RetrievalConfig controls the retrieval engine.
type RetrievalConfig struct {
	TopK          int     `toml:"top_k" validate:"gt=0"`
	MinSimilarity float64 `toml:"min_similarity" validate:"gte=0,lte=1"`
	ExcerptLength int     `toml:"excerpt_length" validate:"gt=0"`
}

// LLMConfig selects and configures the embedding and generation providers.
type LLMConfig struct {
	EmbedProvider    string        `toml:"embed_provider" validate:"oneof=gemini offline"`
	GenerateProvider string        `toml:"generate_provider" validate:"oneof=gemini claude offline"`
	EmbedModel       string        `toml:"embed_model"`
	EmbedDimension   int           `toml:"embed_dimension" validate:"gt=0"`
	Timeout          time.Duration `toml:"timeout" validate:"gt=0"`
	Gemini           GeminiConfig  `toml:"gemini"`
	Claude           ClaudeConfig  `toml:"claude"`
}

type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	ChatModel   string  `toml:"chat_model"`
	Temperature float32 `toml:"temperature"`
}

type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// PipelineConfig controls the orchestrator schedule.
type PipelineConfig struct {
	Schedule     string `toml:"schedule" validate:"required"` // cron expression
	RunOnStartup bool   `toml:"run_on_startup"`
}

// ReportsConfig controls PDF briefing export.
type ReportsConfig struct {
	Enabled   bool   `toml:"enabled"`
	OutputDir string `toml:"output_dir"`
}

// NewDefaultConfig returns the default configuration
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/pulse",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Scraper: ScraperConfig{
			UserAgent:      "pulse/1.0 (+https://github.com/serendiv/pulse)",
			RequestTimeout: 30 * time.Second,
			RequestDelay:   2 * time.Second,
			MaxRetries:     2,
			MaxBodySize:    2 * 1024 * 1024,
		},
		Enrichment: EnrichmentConfig{
			MaxKeywords:       15,
			MaxEntities:       10,
			PositiveThreshold: 0.1,
			NegativeThreshold: -0.1,
		},
		Indicators: IndicatorsConfig{
			Windows:              []string{"24h", "168h"},
			TrendThreshold:       0.1,
			MinVolume:            3,
			AnomalyK:             2.0,
			BaselineWindows:      10,
			RiskThreshold:        -0.3,
			OpportunityThreshold: 0.3,
			MaxFlagsPerCategory:  10,
			MaxTopics:            10,
			MaxOrganizations:     10,
			OutlierZ:             2.0,
		},
		Embeddings: EmbeddingsConfig{
			TextLimit: 1500,
		},
		Retrieval: RetrievalConfig{
			TopK:          5,
			MinSimilarity: 0.25,
			ExcerptLength: 300,
		},
		LLM: LLMConfig{
			EmbedProvider:    "offline",
			GenerateProvider: "offline",
			EmbedModel:       "gemini-embedding-001",
			EmbedDimension:   256,
			Timeout:          60 * time.Second,
			Gemini: GeminiConfig{
				ChatModel:   "gemini-2.0-flash",
				Temperature: 0.3,
			},
			Claude: ClaudeConfig{
				Model:       "claude-sonnet-4-20250514",
				MaxTokens:   2048,
				Temperature: 0.3,
			},
		},
		Pipeline: PipelineConfig{
			Schedule: "0 */6 * * *", // every 6 hours
		},
		Reports: ReportsConfig{
			OutputDir: "./data/reports",
		},
	}
}

// LoadFromFiles loads configuration with priority: defaults -> file1 ->
// file2 -> ... -> environment. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("PULSE_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if badgerPath := os.Getenv("PULSE_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("PULSE_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("PULSE_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	if schedule := os.Getenv("PULSE_PIPELINE_SCHEDULE"); schedule != "" {
		config.Pipeline.Schedule = schedule
	}

	if provider := os.Getenv("PULSE_EMBED_PROVIDER"); provider != "" {
		config.LLM.EmbedProvider = provider
	}
	if provider := os.Getenv("PULSE_GENERATE_PROVIDER"); provider != "" {
		config.LLM.GenerateProvider = provider
	}
	if dim := os.Getenv("PULSE_EMBED_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.LLM.EmbedDimension = d
		}
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.LLM.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.LLM.Claude.APIKey = key
	}
}

// Validate checks the configuration for structural and semantic errors.
// Any failure here is a configuration error: fatal at startup, never raised
// mid-cycle.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrConfiguration, err)
	}

	if _, err := cron.ParseStandard(c.Pipeline.Schedule); err != nil {
		return fmt.Errorf("%w: invalid pipeline schedule %q: %v", models.ErrConfiguration, c.Pipeline.Schedule, err)
	}

	for _, w := range c.Indicators.Windows {
		d, err := time.ParseDuration(w)
		if err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid indicator window %q", models.ErrConfiguration, w)
		}
	}

	// Cloud providers need credentials up front so a cycle never discovers
	// a missing key halfway through.
	if c.LLM.EmbedProvider == "gemini" || c.LLM.GenerateProvider == "gemini" {
		if c.LLM.Gemini.APIKey == "" {
			return fmt.Errorf("%w: gemini provider selected but no API key configured (set GEMINI_API_KEY or llm.gemini.api_key)", models.ErrConfiguration)
		}
	}
	if c.LLM.GenerateProvider == "claude" && c.LLM.Claude.APIKey == "" {
		return fmt.Errorf("%w: claude provider selected but no API key configured (set ANTHROPIC_API_KEY or llm.claude.api_key)", models.ErrConfiguration)
	}

	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}
