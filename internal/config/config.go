package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProviderConfig holds connection details for the OpenAI-compatible
// completion/embedding provider. The API key is referenced by the name
// of the environment variable holding it, never stored directly.
type ProviderConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
	TimeoutSecs    int    `yaml:"timeout_secs"`
}

// EmbedderConfig selects the embedder implementation.
type EmbedderConfig struct {
	Type        string `yaml:"type"` // "remote" or "local"
	Concurrency int    `yaml:"concurrency"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	ChunkSize int `yaml:"chunk_size"`
	Overlap   int `yaml:"overlap"`
}

// RetrievalConfig configures chunk ranking and context assembly.
type RetrievalConfig struct {
	SimilarityFloor float64 `yaml:"similarity_floor"`
	TopK            int     `yaml:"top_k"`
	ContextChars    int     `yaml:"context_chars"`
}

// ScriptConfig bounds the script-generation pipeline.
type ScriptConfig struct {
	MaxAttempts int    `yaml:"max_attempts"`
	TimeoutMs   int    `yaml:"timeout_ms"`
	MaxSteps    uint64 `yaml:"max_steps"`
}

// SummaryConfig configures the document digest shown by the console.
type SummaryConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure. It is
// loaded once at startup and read-only afterward.
type AppConfig struct {
	Provider  ProviderConfig  `yaml:"provider"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Script    ScriptConfig    `yaml:"script"`
	Summary   SummaryConfig   `yaml:"summary"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/elements/config.yaml.
// If neither exists, it writes defaults to ~/.config/elements/config.yaml and returns them.
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
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "elements", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{
		Embedder: EmbedderConfig{Type: "remote"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Provider.APIKeyEnv == "" {
		cfg.Provider.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Provider.ChatModel == "" {
		cfg.Provider.ChatModel = "gpt-4o"
	}
	if cfg.Provider.EmbeddingModel == "" {
		cfg.Provider.EmbeddingModel = "text-embedding-ada-002"
	}
	if cfg.Provider.TimeoutSecs == 0 {
		cfg.Provider.TimeoutSecs = 120
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "remote"
	}
	if cfg.Embedder.Concurrency == 0 {
		cfg.Embedder.Concurrency = 4
	}
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
	}
	if cfg.Chunker.Overlap < 0 {
		cfg.Chunker.Overlap = 0
	}
	if cfg.Retrieval.SimilarityFloor == 0 {
		cfg.Retrieval.SimilarityFloor = 0.7
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.ContextChars == 0 {
		cfg.Retrieval.ContextChars = 3000
	}
	if cfg.Script.MaxAttempts == 0 {
		cfg.Script.MaxAttempts = 3
	}
	if cfg.Script.TimeoutMs == 0 {
		cfg.Script.TimeoutMs = 10000
	}
	if cfg.Script.MaxSteps == 0 {
		cfg.Script.MaxSteps = 50_000_000
	}
	if cfg.Summary.MaxSentences == 0 {
		cfg.Summary.MaxSentences = 3
	}
}
