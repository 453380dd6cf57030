// Package config loads and defaults the engine configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all engine configuration.
type Config struct {
	// Data locations
	DBPath  string `yaml:"db_path"`
	KeyPath string `yaml:"key_path"`

	// Optional model artefacts
	NeuralModelPath   string `yaml:"neural_model_path"`
	EmbedderModelPath string `yaml:"embedder_model_path"`

	// Counsel behaviour
	DefaultDepth string `yaml:"default_depth"` // quick, standard, deep

	// Retrieval weights
	Retrieval RetrievalConfig `yaml:"retrieval"`

	// Learning rates
	Learning LearningConfig `yaml:"learning"`

	// Embedding provider
	Embedding EmbeddingConfig `yaml:"embedding"`

	// Request handling
	RequestDeadlineMS int `yaml:"request_deadline_ms"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// RetrievalConfig holds the fusion and ranking weights. Tests pin these,
// so they are configuration rather than constants.
type RetrievalConfig struct {
	TopK     int     `yaml:"top_k"`
	KRRF     float64 `yaml:"k_rrf"`
	WFTS     float64 `yaml:"w_fts"`
	WSem     float64 `yaml:"w_sem"`
	WExplore float64 `yaml:"w_explore"`
}

// LearningConfig holds the asymmetric Bayesian update deltas.
type LearningConfig struct {
	SuccessDelta float64 `yaml:"success_delta"`
	FailureDelta float64 `yaml:"failure_delta"`
}

// EmbeddingConfig selects the semantic embedder.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // hash or ollama
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	Dim      int    `yaml:"dim"`
}

// LoggingConfig gates the category file logger.
type LoggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Dir        string          `yaml:"dir"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

// Default returns the configuration with all nominal values filled in.
// dataDir is the per-user data directory holding the store and key.
func Default(dataDir string) *Config {
	return &Config{
		DBPath:       filepath.Join(dataDir, "minds.db"),
		KeyPath:      filepath.Join(dataDir, "signing.key"),
		DefaultDepth: "standard",
		Retrieval: RetrievalConfig{
			TopK:     50,
			KRRF:     60,
			WFTS:     0.3,
			WSem:     0.5,
			WExplore: 0.5,
		},
		Learning: LearningConfig{
			SuccessDelta: 0.05,
			FailureDelta: 0.10,
		},
		Embedding: EmbeddingConfig{
			Provider: "hash",
			Dim:      384,
		},
		RequestDeadlineMS: 30000,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads a YAML config file over the defaults. A missing file is not an
// error; the defaults stand.
func Load(path string, dataDir string) (*Config, error) {
	cfg := Default(dataDir)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyFallbacks(dataDir)
	return cfg, nil
}

// applyFallbacks restores defaults the file zeroed out.
func (c *Config) applyFallbacks(dataDir string) {
	d := Default(dataDir)
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.KeyPath == "" {
		c.KeyPath = d.KeyPath
	}
	if c.DefaultDepth == "" {
		c.DefaultDepth = d.DefaultDepth
	}
	if c.Retrieval.TopK == 0 {
		c.Retrieval.TopK = d.Retrieval.TopK
	}
	if c.Retrieval.KRRF == 0 {
		c.Retrieval.KRRF = d.Retrieval.KRRF
	}
	if c.Retrieval.WFTS == 0 {
		c.Retrieval.WFTS = d.Retrieval.WFTS
	}
	if c.Retrieval.WSem == 0 {
		c.Retrieval.WSem = d.Retrieval.WSem
	}
	if c.Retrieval.WExplore == 0 {
		c.Retrieval.WExplore = d.Retrieval.WExplore
	}
	if c.Learning.SuccessDelta == 0 {
		c.Learning.SuccessDelta = d.Learning.SuccessDelta
	}
	if c.Learning.FailureDelta == 0 {
		c.Learning.FailureDelta = d.Learning.FailureDelta
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = d.Embedding.Provider
	}
	if c.Embedding.Dim == 0 {
		c.Embedding.Dim = d.Embedding.Dim
	}
	if c.RequestDeadlineMS == 0 {
		c.RequestDeadlineMS = d.RequestDeadlineMS
	}
}

// RequestDeadline returns the per-request deadline as a duration.
func (c *Config) RequestDeadline() time.Duration {
	return time.Duration(c.RequestDeadlineMS) * time.Millisecond
}

// DefaultDataDir resolves the per-user data directory.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".minds"), nil
}
