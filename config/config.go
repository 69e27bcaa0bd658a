package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds the full configuration for the retrieval engine. All
// vocabulary lists are configuration rather than code so a corpus swap never
// touches the algorithms.
type Config struct {
	Storage    StorageConfig    `yaml:"storage"`
	Splitter   SplitterConfig   `yaml:"splitter"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Keyword    KeywordConfig    `yaml:"keyword"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	History    HistoryConfig    `yaml:"history"`
}

// StorageConfig locates the BadgerDB backing store.
type StorageConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path     string `yaml:"path"`
	InMemory bool   `yaml:"in_memory"`
}

// SplitterConfig controls document chunking at ingestion time.
type SplitterConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// VectorizerConfig defines the lexical feature space.
type VectorizerConfig struct {
	// Dimension is the fixed feature-vector length.
	Dimension int `yaml:"dimension"`
	// Keywords is the closed vocabulary for the keyword-frequency block.
	// Slot order follows list order and must stay stable for stored
	// vectors to remain comparable.
	Keywords []string `yaml:"keywords"`
	// Bigrams is the closed vocabulary of two-token phrases, written
	// "first_second".
	Bigrams []string `yaml:"bigrams"`
	// Chars is the letter set for the character-frequency block.
	Chars string `yaml:"chars"`
	// VisualKeywords mark text describing figures and diagrams.
	VisualKeywords []string `yaml:"visual_keywords"`
}

// ClassifierConfig holds the indicator vocabularies for query classification.
type ClassifierConfig struct {
	SummaryKeywords     []string `yaml:"summary_keywords"`
	DetailKeywords      []string `yaml:"detail_keywords"`
	NameIndicators      []string `yaml:"name_indicators"`
	KnownNames          []string `yaml:"known_names"`
	VisualIndicators    []string `yaml:"visual_indicators"`
	ReferenceIndicators []string `yaml:"reference_indicators"`
}

// KeywordConfig tunes the keyword fallback scan.
type KeywordConfig struct {
	// KnownKeywords score higher on a fallback hit than proper-name
	// pattern hits.
	KnownKeywords []string `yaml:"known_keywords"`
	MaxMatches    int      `yaml:"max_matches"`
}

// RetrievalConfig tunes ranking, merging and context assembly.
type RetrievalConfig struct {
	TopKSummary    int     `yaml:"top_k_summary"`
	TopKDetail     int     `yaml:"top_k_detail"`
	TopKDefault    int     `yaml:"top_k_default"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	// VectorMergeCap bounds how many vector hits follow keyword hits
	// in a merged name-query result.
	VectorMergeCap int `yaml:"vector_merge_cap"`

	// SummaryContextChunks and SummaryCharLimit bound summary context:
	// more chunks, each truncated.
	SummaryContextChunks int `yaml:"summary_context_chunks"`
	SummaryCharLimit     int `yaml:"summary_char_limit"`
	// DetailContextChunks bounds detail context, full chunk text.
	DetailContextChunks int `yaml:"detail_context_chunks"`
	// DefaultContextChunks bounds default context, full chunk text.
	DefaultContextChunks int `yaml:"default_context_chunks"`
}

// HistoryConfig bounds per-session chat history.
type HistoryConfig struct {
	// MaxMessages is the per-session retention limit.
	MaxMessages int `yaml:"max_messages"`
	// ContextMessages is how many recent turns feed reference resolution.
	ContextMessages int `yaml:"context_messages"`
	// ContextCharLimit truncates each prior turn in assembled context.
	ContextCharLimit int `yaml:"context_char_limit"`
}

// Load reads configuration from the given YAML file. An empty path falls
// back to default locations, and missing files yield the built-in defaults.
// Any field absent from the file keeps its default value.
func Load(path string) (*Config, error) {
	if path == "" {
		locations := []string{
			"handoff.yaml",
			"handoff.yml",
			filepath.Join(os.Getenv("HOME"), ".config/handoff/config.yaml"),
		}
		for _, loc := range locations {
			if _, err := os.Stat(loc); err == nil {
				path = loc
				break
			}
		}
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration. The vocabulary lists target a
// project knowledge-transfer corpus and are meant to be replaced per
// deployment.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.Path == "" {
		c.Storage.Path = filepath.Join(os.Getenv("HOME"), ".handoff", "db")
	}
	if c.Splitter.ChunkSize == 0 {
		c.Splitter.ChunkSize = 1000
	}
	if c.Splitter.ChunkOverlap == 0 {
		c.Splitter.ChunkOverlap = 200
	}

	if c.Vectorizer.Dimension == 0 {
		c.Vectorizer.Dimension = 384
	}
	if len(c.Vectorizer.Keywords) == 0 {
		c.Vectorizer.Keywords = defaultKeywords
	}
	if len(c.Vectorizer.Bigrams) == 0 {
		c.Vectorizer.Bigrams = defaultBigrams
	}
	if c.Vectorizer.Chars == "" {
		c.Vectorizer.Chars = "aeioutrnslc"
	}
	if len(c.Vectorizer.VisualKeywords) == 0 {
		c.Vectorizer.VisualKeywords = defaultVisualKeywords
	}

	if len(c.Classifier.SummaryKeywords) == 0 {
		c.Classifier.SummaryKeywords = defaultSummaryKeywords
	}
	if len(c.Classifier.DetailKeywords) == 0 {
		c.Classifier.DetailKeywords = defaultDetailKeywords
	}
	if len(c.Classifier.NameIndicators) == 0 {
		c.Classifier.NameIndicators = defaultNameIndicators
	}
	if len(c.Classifier.KnownNames) == 0 {
		c.Classifier.KnownNames = defaultKnownNames
	}
	if len(c.Classifier.VisualIndicators) == 0 {
		c.Classifier.VisualIndicators = defaultVisualIndicators
	}
	if len(c.Classifier.ReferenceIndicators) == 0 {
		c.Classifier.ReferenceIndicators = defaultReferenceIndicators
	}

	if len(c.Keyword.KnownKeywords) == 0 {
		c.Keyword.KnownKeywords = defaultFallbackKeywords
	}
	if c.Keyword.MaxMatches == 0 {
		c.Keyword.MaxMatches = 10
	}

	if c.Retrieval.TopKSummary == 0 {
		c.Retrieval.TopKSummary = 8
	}
	if c.Retrieval.TopKDetail == 0 {
		c.Retrieval.TopKDetail = 20
	}
	if c.Retrieval.TopKDefault == 0 {
		c.Retrieval.TopKDefault = 15
	}
	if c.Retrieval.ScoreThreshold == 0 {
		c.Retrieval.ScoreThreshold = 0.01
	}
	if c.Retrieval.VectorMergeCap == 0 {
		c.Retrieval.VectorMergeCap = 10
	}
	if c.Retrieval.SummaryContextChunks == 0 {
		c.Retrieval.SummaryContextChunks = 8
	}
	if c.Retrieval.SummaryCharLimit == 0 {
		c.Retrieval.SummaryCharLimit = 800
	}
	if c.Retrieval.DetailContextChunks == 0 {
		c.Retrieval.DetailContextChunks = 8
	}
	if c.Retrieval.DefaultContextChunks == 0 {
		c.Retrieval.DefaultContextChunks = 5
	}

	if c.History.MaxMessages == 0 {
		c.History.MaxMessages = 20
	}
	if c.History.ContextMessages == 0 {
		c.History.ContextMessages = 6
	}
	if c.History.ContextCharLimit == 0 {
		c.History.ContextCharLimit = 200
	}
}

// Validate checks the configuration for values the engine cannot run with.
func (c *Config) Validate() error {
	if c.Vectorizer.Dimension < 1 {
		return fmt.Errorf("config: vectorizer dimension must be positive, got %d", c.Vectorizer.Dimension)
	}
	if c.Splitter.ChunkSize < 1 {
		return fmt.Errorf("config: splitter chunk_size must be positive, got %d", c.Splitter.ChunkSize)
	}
	if c.Splitter.ChunkOverlap < 0 || c.Splitter.ChunkOverlap >= c.Splitter.ChunkSize {
		return fmt.Errorf("config: chunk_overlap must be in [0, chunk_size), got %d", c.Splitter.ChunkOverlap)
	}
	if c.Retrieval.ScoreThreshold < 0 || c.Retrieval.ScoreThreshold > 1 {
		return fmt.Errorf("config: score_threshold must be in [0,1], got %g", c.Retrieval.ScoreThreshold)
	}
	if c.Retrieval.TopKSummary < 1 || c.Retrieval.TopKDetail < 1 || c.Retrieval.TopKDefault < 1 {
		return fmt.Errorf("config: top_k values must be positive")
	}
	if c.History.MaxMessages < 1 {
		return fmt.Errorf("config: history max_messages must be positive, got %d", c.History.MaxMessages)
	}
	return nil
}
