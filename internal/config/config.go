// Package config loads and validates corpusgap configuration from
// user config, project config, and environment overrides, in that
// precedence order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete corpusgap configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Quality    QualityConfig    `yaml:"quality" json:"quality"`
	Ingest     IngestConfig     `yaml:"ingest" json:"ingest"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	Evaluate   EvaluateConfig   `yaml:"evaluate" json:"evaluate"`
	Logging    LoggingConfig    `yaml:"logging" json:"logging"`
}

// PathsConfig configures where corpusgap keeps its data.
type PathsConfig struct {
	// DataDir holds the indexes and the results store.
	DataDir string `yaml:"data_dir" json:"data_dir"`

	// KnowledgeFile optionally overrides the built-in knowledge base.
	KnowledgeFile string `yaml:"knowledge_file" json:"knowledge_file"`

	// QuestionsFile is the default evaluation question set.
	QuestionsFile string `yaml:"questions_file" json:"questions_file"`
}

// RetrievalConfig tunes the retrieval pipeline.
type RetrievalConfig struct {
	// TopK is the default result count per query.
	TopK int `yaml:"top_k" json:"top_k"`

	// StageCount is the number of retrieval stages.
	StageCount int `yaml:"stage_count" json:"stage_count"`

	// CandidatesPerStage overrides the tapering per-stage fetch sizes.
	CandidatesPerStage []int `yaml:"candidates_per_stage" json:"candidates_per_stage"`

	// DisableRerank forces the basic similarity-sort path.
	DisableRerank bool `yaml:"disable_rerank" json:"disable_rerank"`

	// CacheSize bounds the query result cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`

	// CacheTTL is the result cache entry lifetime (e.g. "5m").
	CacheTTL string `yaml:"cache_ttl" json:"cache_ttl"`
}

// QualityConfig sets the quality band thresholds on the 0-10 scale.
type QualityConfig struct {
	GoodThreshold float64 `yaml:"good_threshold" json:"good_threshold"`
	WeakThreshold float64 `yaml:"weak_threshold" json:"weak_threshold"`
}

// IngestConfig tunes document ingestion.
type IngestConfig struct {
	// ChunkSize is the chunk window in characters.
	ChunkSize int `yaml:"chunk_size" json:"chunk_size"`

	// ChunkOverlap is the window overlap in characters.
	ChunkOverlap int `yaml:"chunk_overlap" json:"chunk_overlap"`

	// BatchSize is the embedding batch size.
	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// MaxFileSizeMB rejects oversized input files.
	MaxFileSizeMB int `yaml:"max_file_size_mb" json:"max_file_size_mb"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder ("static" is the only built-in).
	Provider string `yaml:"provider" json:"provider"`

	// Dimensions is the embedding vector size.
	Dimensions int `yaml:"dimensions" json:"dimensions"`

	// CacheSize bounds the embedding LRU cache.
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// EvaluateConfig tunes evaluation runs.
type EvaluateConfig struct {
	// Concurrency bounds parallel question evaluation.
	Concurrency int `yaml:"concurrency" json:"concurrency"`

	// TopK is the per-question retrieval depth.
	TopK int `yaml:"top_k" json:"top_k"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
}

// NewConfig returns the default configuration.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			DataDir: defaultDataDir(),
		},
		Retrieval: RetrievalConfig{
			TopK:       5,
			StageCount: 3,
			CacheSize:  512,
			CacheTTL:   "5m",
		},
		Quality: QualityConfig{
			GoodThreshold: 7.0,
			WeakThreshold: 5.0,
		},
		Ingest: IngestConfig{
			ChunkSize:     1200,
			ChunkOverlap:  200,
			BatchSize:     32,
			MaxFileSizeMB: 64,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "static",
			Dimensions: 256,
			CacheSize:  4096,
		},
		Evaluate: EvaluateConfig{
			Concurrency: runtime.NumCPU(),
			TopK:        5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// defaultDataDir returns the default data directory (~/.corpusgap).
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".corpusgap")
	}
	return filepath.Join(home, ".corpusgap")
}

// GetUserConfigPath returns the path to the user configuration file.
// It follows the XDG Base Directory specification:
//   - $XDG_CONFIG_HOME/corpusgap/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/corpusgap/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "corpusgap", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "corpusgap", "config.yaml")
	}
	return filepath.Join(home, ".config", "corpusgap", "config.yaml")
}

// GetUserConfigDir returns the user configuration directory.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user config file exists.
func UserConfigExists() bool {
	_, err := os.Stat(GetUserConfigPath())
	return err == nil
}

// loadUserConfig loads the user config if present. Returns nil when
// the file does not exist.
func loadUserConfig() (*Config, error) {
	path := GetUserConfigPath()
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse user config %s: %w", path, err)
	}
	return &parsed, nil
}

// Load builds the effective configuration for a project directory:
// defaults, then user config, then project config, then environment
// overrides, validated at the end.
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := loadUserConfig(); err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadFromFile attempts to load .corpusgap.yaml or .corpusgap.yml.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ".corpusgap.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".corpusgap.yml")
	if _, err := os.Stat(ymlPath); err == nil {
		return c.loadYAML(ymlPath)
	}

	// No config file is fine, defaults apply.
	return nil
}

// loadYAML loads and merges configuration from a YAML file.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Paths.DataDir != "" {
		c.Paths.DataDir = other.Paths.DataDir
	}
	if other.Paths.KnowledgeFile != "" {
		c.Paths.KnowledgeFile = other.Paths.KnowledgeFile
	}
	if other.Paths.QuestionsFile != "" {
		c.Paths.QuestionsFile = other.Paths.QuestionsFile
	}

	if other.Retrieval.TopK != 0 {
		c.Retrieval.TopK = other.Retrieval.TopK
	}
	if other.Retrieval.StageCount != 0 {
		c.Retrieval.StageCount = other.Retrieval.StageCount
	}
	if len(other.Retrieval.CandidatesPerStage) > 0 {
		c.Retrieval.CandidatesPerStage = other.Retrieval.CandidatesPerStage
	}
	if other.Retrieval.DisableRerank {
		c.Retrieval.DisableRerank = true
	}
	if other.Retrieval.CacheSize != 0 {
		c.Retrieval.CacheSize = other.Retrieval.CacheSize
	}
	if other.Retrieval.CacheTTL != "" {
		c.Retrieval.CacheTTL = other.Retrieval.CacheTTL
	}

	if other.Quality.GoodThreshold != 0 {
		c.Quality.GoodThreshold = other.Quality.GoodThreshold
	}
	if other.Quality.WeakThreshold != 0 {
		c.Quality.WeakThreshold = other.Quality.WeakThreshold
	}

	if other.Ingest.ChunkSize != 0 {
		c.Ingest.ChunkSize = other.Ingest.ChunkSize
	}
	if other.Ingest.ChunkOverlap != 0 {
		c.Ingest.ChunkOverlap = other.Ingest.ChunkOverlap
	}
	if other.Ingest.BatchSize != 0 {
		c.Ingest.BatchSize = other.Ingest.BatchSize
	}
	if other.Ingest.MaxFileSizeMB != 0 {
		c.Ingest.MaxFileSizeMB = other.Ingest.MaxFileSizeMB
	}

	if other.Embeddings.Provider != "" {
		c.Embeddings.Provider = other.Embeddings.Provider
	}
	if other.Embeddings.Dimensions != 0 {
		c.Embeddings.Dimensions = other.Embeddings.Dimensions
	}
	if other.Embeddings.CacheSize != 0 {
		c.Embeddings.CacheSize = other.Embeddings.CacheSize
	}

	if other.Evaluate.Concurrency != 0 {
		c.Evaluate.Concurrency = other.Evaluate.Concurrency
	}
	if other.Evaluate.TopK != 0 {
		c.Evaluate.TopK = other.Evaluate.TopK
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
}

// applyEnvOverrides applies CORPUSGAP_* environment variables, the
// highest-precedence configuration source.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("CORPUSGAP_DATA_DIR"); v != "" {
		c.Paths.DataDir = v
	}
	if v := os.Getenv("CORPUSGAP_TOP_K"); v != "" {
		if k, err := strconv.Atoi(v); err == nil && k > 0 {
			c.Retrieval.TopK = k
		}
	}
	if v := os.Getenv("CORPUSGAP_STAGE_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Retrieval.StageCount = n
		}
	}
	if v := os.Getenv("CORPUSGAP_DISABLE_RERANK"); v != "" {
		c.Retrieval.DisableRerank = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("CORPUSGAP_GOOD_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 && t <= 10 {
			c.Quality.GoodThreshold = t
		}
	}
	if v := os.Getenv("CORPUSGAP_WEAK_THRESHOLD"); v != "" {
		if t, err := strconv.ParseFloat(v, 64); err == nil && t >= 0 && t <= 10 {
			c.Quality.WeakThreshold = t
		}
	}
	if v := os.Getenv("CORPUSGAP_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CORPUSGAP_EVAL_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Evaluate.Concurrency = n
		}
	}
}

// CacheTTLDuration parses the configured cache TTL, falling back to
// five minutes on a malformed value.
func (c *Config) CacheTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.Retrieval.CacheTTL)
	if err != nil || d <= 0 {
		return 5 * time.Minute
	}
	return d
}

// Validate checks the final configuration for consistency.
func (c *Config) Validate() error {
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.StageCount <= 0 {
		return fmt.Errorf("retrieval.stage_count must be positive, got %d", c.Retrieval.StageCount)
	}

	if c.Quality.GoodThreshold < 0 || c.Quality.GoodThreshold > 10 {
		return fmt.Errorf("quality.good_threshold must be between 0 and 10, got %f", c.Quality.GoodThreshold)
	}
	if c.Quality.WeakThreshold < 0 || c.Quality.WeakThreshold > 10 {
		return fmt.Errorf("quality.weak_threshold must be between 0 and 10, got %f", c.Quality.WeakThreshold)
	}
	if c.Quality.WeakThreshold >= c.Quality.GoodThreshold {
		return fmt.Errorf("quality.weak_threshold (%.1f) must be below quality.good_threshold (%.1f)",
			c.Quality.WeakThreshold, c.Quality.GoodThreshold)
	}

	if c.Ingest.ChunkSize <= 0 {
		return fmt.Errorf("ingest.chunk_size must be positive, got %d", c.Ingest.ChunkSize)
	}
	if c.Ingest.ChunkOverlap < 0 || c.Ingest.ChunkOverlap >= c.Ingest.ChunkSize {
		return fmt.Errorf("ingest.chunk_overlap must be in [0, chunk_size), got %d", c.Ingest.ChunkOverlap)
	}

	if c.Embeddings.Provider != "" {
		validProviders := map[string]bool{"static": true}
		if !validProviders[strings.ToLower(c.Embeddings.Provider)] {
			return fmt.Errorf("embeddings.provider must be 'static', got %s", c.Embeddings.Provider)
		}
	}
	if c.Embeddings.Dimensions <= 0 {
		return fmt.Errorf("embeddings.dimensions must be positive, got %d", c.Embeddings.Dimensions)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	return loadUserConfig()
}
