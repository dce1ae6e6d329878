package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"talkdocs/internal/domain"
)

// OpenAIConfig holds configuration shared by the OpenAI embedder and generator.
type OpenAIConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	EmbeddingModel string `yaml:"embedding_model"`
	LLMModel       string `yaml:"llm_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
	BatchSize      int    `yaml:"batch_size"`
}

// OllamaConfig holds configuration shared by the Ollama embedder and generator.
type OllamaConfig struct {
	URL            string `yaml:"url"`
	EmbeddingModel string `yaml:"embedding_model"`
	LLMModel       string `yaml:"llm_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
	BatchSize      int    `yaml:"batch_size"`
}

// EmbedderConfig selects the text embedder implementation. Dimension sizes
// the hashing embedder; remote embedders report the width of their model.
type EmbedderConfig struct {
	Type      string `yaml:"type"`
	Dimension int    `yaml:"dimension"`
}

// LLMConfig selects the answer generator implementation.
type LLMConfig struct {
	Type         string  `yaml:"type"`
	Temperature  float32 `yaml:"temperature"`
	MaxSentences int     `yaml:"max_sentences"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// StorageConfig locates uploads and the persisted index.
type StorageConfig struct {
	DataDir        string `yaml:"data_dir"`
	UploadDir      string `yaml:"upload_dir"`
	IndexDir       string `yaml:"index_dir"`
	IndexName      string `yaml:"index_name"`
	MetadataFormat string `yaml:"metadata_format"`
	MaxFileSizeMB  int    `yaml:"max_file_size_mb"`
}

// RetrieverConfig controls how many chunks are retrieved and how relevant
// they must be.
type RetrieverConfig struct {
	TopK           int     `yaml:"top_k"`
	ScoreThreshold float64 `yaml:"score_threshold"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Embedder  EmbedderConfig  `yaml:"embedder"`
	LLM       LLMConfig       `yaml:"llm"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Ollama    OllamaConfig    `yaml:"ollama"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Storage   StorageConfig   `yaml:"storage"`
	Retriever RetrieverConfig `yaml:"retriever"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
// Environment overrides are applied last.
func Load(path string) (*AppConfig, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrConfiguration, path, err)
	}
	applyConfigDefaults(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/talkdocs/config.yaml.
// If neither exists, it writes defaults to ~/.config/talkdocs/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg *AppConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "talkdocs", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig { return defaultConfig() }

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "hashing", Dimension: 384},
		LLM:      LLMConfig{Type: "local", Temperature: 0.1, MaxSentences: 3},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			APIKeyEnv:      "OPENAI_API_KEY",
			EmbeddingModel: "text-embedding-3-small",
			LLMModel:       "gpt-4o-mini",
			TimeoutSecs:    60,
			BatchSize:      64,
		},
		Ollama: OllamaConfig{
			URL:            "http://localhost:11434",
			EmbeddingModel: "nomic-embed-text",
			LLMModel:       "llama3.2",
			TimeoutSecs:    300,
			BatchSize:      32,
		},
		Chunker: ChunkerConfig{ChunkSize: 700, ChunkOverlap: 120},
		Storage: StorageConfig{
			DataDir:        "./data",
			UploadDir:      "./data/uploads",
			IndexDir:       "./data/indexes",
			IndexName:      "default_index",
			MetadataFormat: "json",
			MaxFileSizeMB:  10,
		},
		Retriever: RetrieverConfig{TopK: 5, ScoreThreshold: 0.30},
		Log:       LogConfig{Level: "info", Format: "text"},
	}
	return cfg
}

// applyConfigDefaults fills fields a partial YAML file left empty.
func applyConfigDefaults(cfg *AppConfig) {
	def := defaultConfig()
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = def.Embedder.Type
	}
	if cfg.Embedder.Type == "hashing" && cfg.Embedder.Dimension == 0 {
		cfg.Embedder.Dimension = def.Embedder.Dimension
	}
	if cfg.LLM.Type == "" {
		cfg.LLM.Type = def.LLM.Type
	}
	if cfg.OpenAI.APIKeyEnv == "" {
		cfg.OpenAI.APIKeyEnv = def.OpenAI.APIKeyEnv
	}
	if cfg.Storage.IndexName == "" {
		cfg.Storage.IndexName = def.Storage.IndexName
	}
	if cfg.Storage.MetadataFormat == "" {
		cfg.Storage.MetadataFormat = def.Storage.MetadataFormat
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = def.Log.Level
	}
}

// Validate rejects configurations the application cannot run with.
func (c *AppConfig) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{domain.ErrConfiguration}, args...)...))
	}
	switch strings.ToLower(c.Embedder.Type) {
	case "hashing":
		if c.Embedder.Dimension <= 0 {
			bad("embedder.dimension must be positive, got %d", c.Embedder.Dimension)
		}
	case "openai", "ollama":
	default:
		bad("unknown embedder: %s", c.Embedder.Type)
	}
	switch strings.ToLower(c.LLM.Type) {
	case "openai", "ollama", "local":
	default:
		bad("unknown llm: %s", c.LLM.Type)
	}
	if c.Chunker.ChunkSize <= 0 {
		bad("chunk_size must be positive, got %d", c.Chunker.ChunkSize)
	}
	if c.Chunker.ChunkOverlap < 0 || c.Chunker.ChunkOverlap >= c.Chunker.ChunkSize {
		bad("chunk_overlap (%d) must be in [0, chunk_size (%d))", c.Chunker.ChunkOverlap, c.Chunker.ChunkSize)
	}
	if c.Retriever.TopK <= 0 {
		bad("top_k must be positive, got %d", c.Retriever.TopK)
	}
	if c.Retriever.ScoreThreshold < -1 || c.Retriever.ScoreThreshold > 1 {
		bad("score_threshold must be in [-1, 1], got %g", c.Retriever.ScoreThreshold)
	}
	if c.Storage.MaxFileSizeMB <= 0 {
		bad("max_file_size_mb must be positive, got %d", c.Storage.MaxFileSizeMB)
	}
	if c.Storage.IndexName == "" || strings.ContainsAny(c.Storage.IndexName, `/\`) {
		bad("invalid index_name %q", c.Storage.IndexName)
	}
	switch c.Storage.MetadataFormat {
	case "json", "sqlite":
	default:
		bad("unknown metadata_format: %s", c.Storage.MetadataFormat)
	}
	return errors.Join(errs...)
}

// PrepareDirectories ensures all runtime directories exist.
func (c *AppConfig) PrepareDirectories() error {
	for _, dir := range []string{c.Storage.DataDir, c.Storage.UploadDir, c.Storage.IndexDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}
