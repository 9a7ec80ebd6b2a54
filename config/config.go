package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the recipe retrieval pipeline.
type Config struct {
	Corpus    CorpusConfig    `yaml:"corpus"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CorpusConfig selects which files under the data directory are ingested.
type CorpusConfig struct {
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

// ChunkingConfig configures how documents are split into passages.
type ChunkingConfig struct {
	Strategy            string  `yaml:"strategy"` // "window" or "semantic"
	Size                int     `yaml:"size"`     // characters per window
	Overlap             int     `yaml:"overlap"`  // characters of overlap
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinChunkChars       int     `yaml:"min_chunk_chars"`
}

// RetrievalConfig holds the BM25 parameters.
type RetrievalConfig struct {
	K1       float64 `yaml:"k1"`
	B        float64 `yaml:"b"`
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"` // Filter results below this score (0 = disabled)
}

// EmbeddingConfig configures the sentence encoder used by semantic chunking.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	BatchSize int    `yaml:"batch_size"`
	Dimension int    `yaml:"dimension"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Includes: []string{"**/*.txt", "**/*.md"},
			Excludes: []string{"**/.chefrag/**"},
		},
		Chunking: ChunkingConfig{
			Strategy:            "window",
			Size:                500,
			Overlap:             50,
			SimilarityThreshold: 0.65,
			MinChunkChars:       40,
		},
		Retrieval: RetrievalConfig{
			K1:   1.5,
			B:    0.75,
			TopK: 3,
		},
		Embedding: EmbeddingConfig{
			Provider:  "mock",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			BatchSize: 100,
			Dimension: 384,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment
// overrides. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	applyEnv(cfg)
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for chefrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "chefrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".chefrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// applyEnv overrides the numeric knobs from CHEFRAG_* environment
// variables. Unparsable values are ignored.
func applyEnv(cfg *Config) {
	if v, ok := envFloat("CHEFRAG_BM25_K1"); ok {
		cfg.Retrieval.K1 = v
	}
	if v, ok := envFloat("CHEFRAG_BM25_B"); ok {
		cfg.Retrieval.B = v
	}
	if v, ok := envInt("CHEFRAG_TOP_K"); ok {
		cfg.Retrieval.TopK = v
	}
	if v, ok := envInt("CHEFRAG_CHUNK_SIZE"); ok {
		cfg.Chunking.Size = v
	}
	if v, ok := envInt("CHEFRAG_CHUNK_OVERLAP"); ok {
		cfg.Chunking.Overlap = v
	}
	if v, ok := envFloat("CHEFRAG_SIMILARITY_THRESHOLD"); ok {
		cfg.Chunking.SimilarityThreshold = v
	}
	if v := os.Getenv("CHEFRAG_CHUNK_STRATEGY"); v != "" {
		cfg.Chunking.Strategy = v
	}
}

func envFloat(name string) (float64, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// DBPath returns the path to the passage database.
func DBPath(dir string) string {
	return filepath.Join(dir, ".chefrag", "passages.db")
}

// EnsureDataDir ensures the .chefrag directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".chefrag"), 0755)
}
