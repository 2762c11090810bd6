package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Size    int `yaml:"size"`
	Overlap int `yaml:"overlap"`
}

// EmbedderConfig configures word2vec training on each uploaded document.
type EmbedderConfig struct {
	Dimension    int     `yaml:"dimension"`
	Window       int     `yaml:"window"`
	MinCount     int     `yaml:"min_count"`
	Epochs       int     `yaml:"epochs"`
	Negative     int     `yaml:"negative"`
	LearningRate float64 `yaml:"learning_rate"`
	Workers      int     `yaml:"workers"`
	Seed         uint64  `yaml:"seed"`
}

// RetrievalConfig controls how many chunks become prompt context.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k"`
	MinScore float64 `yaml:"min_score"`
}

// GeneratorConfig selects and configures the hosted language model.
type GeneratorConfig struct {
	Type        string `yaml:"type"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	MaxRetries  int    `yaml:"max_retries"`
}

// SummarizerConfig configures the summary shown after an upload.
type SummarizerConfig struct {
	MaxSentences int `yaml:"max_sentences"`
}

// LogConfig configures the JSON log file.
type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Language   string           `yaml:"language"`
	Chunker    ChunkerConfig    `yaml:"chunker"`
	Embedder   EmbedderConfig   `yaml:"embedder"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docqa/config.yaml.
// If neither exists, it writes defaults to ~/.config/docqa/config.yaml and returns them.
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

// Validate rejects settings the pipeline cannot run with.
func (c *AppConfig) Validate() error {
	switch {
	case c.Chunker.Size <= 0:
		return fmt.Errorf("chunker.size must be positive, got %d", c.Chunker.Size)
	case c.Chunker.Overlap < 0 || c.Chunker.Overlap >= c.Chunker.Size:
		return fmt.Errorf("chunker.overlap must be in [0, %d), got %d", c.Chunker.Size, c.Chunker.Overlap)
	case c.Retrieval.TopK <= 0:
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	switch c.Generator.Type {
	case "gemini", "openai":
	default:
		return fmt.Errorf("unknown generator: %s", c.Generator.Type)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docqa", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.Chunker.Size == 0 {
		cfg.Chunker.Size = 500
		if cfg.Chunker.Overlap == 0 {
			cfg.Chunker.Overlap = 50
		}
	}

	e := &cfg.Embedder
	if e.Dimension == 0 {
		e.Dimension = 100
	}
	if e.Window == 0 {
		e.Window = 5
	}
	if e.MinCount == 0 {
		e.MinCount = 1
	}
	if e.Epochs == 0 {
		e.Epochs = 5
	}
	if e.Negative == 0 {
		e.Negative = 5
	}
	if e.LearningRate == 0 {
		e.LearningRate = 0.025
	}
	if e.Workers == 0 {
		e.Workers = 4
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 2
	}

	g := &cfg.Generator
	if g.Type == "" {
		g.Type = "gemini"
	}
	if g.APIKeyEnv == "" {
		g.APIKeyEnv = "API_KEY"
	}
	if g.Model == "" {
		switch g.Type {
		case "gemini":
			g.Model = "gemini-1.5-pro"
		case "openai":
			g.Model = "gpt-4o-mini"
		}
	}
	if g.Type == "openai" && g.BaseURL == "" {
		g.BaseURL = "https://api.openai.com/v1"
	}
	if g.TimeoutSecs == 0 {
		g.TimeoutSecs = 60
	}

	if cfg.Summarizer.MaxSentences == 0 {
		cfg.Summarizer.MaxSentences = 3
	}
	if cfg.Log.File == "" {
		cfg.Log.File = "docqa.log"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
