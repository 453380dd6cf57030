package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"minds/internal/config"
	"minds/internal/counsel"
	"minds/internal/embedding"
	"minds/internal/logging"
	"minds/internal/neural"
	"minds/internal/outcome"
	"minds/internal/provenance"
	"minds/internal/retrieval"
	"minds/internal/sampler"
	"minds/internal/store"
	"minds/internal/types"
)

// app holds the fully wired engine for one CLI invocation.
type app struct {
	cfg     *config.Config
	store   *store.Store
	chain   *provenance.Chain
	engine  *counsel.Engine
	updater *outcome.Updater
	emb     embedding.Embedder
}

// openApp builds the engine from config. Callers must Close.
func openApp() (*app, error) {
	dataDir := flagDataDir
	if dataDir == "" {
		var err error
		dataDir, err = config.DefaultDataDir()
		if err != nil {
			return nil, err
		}
	}
	configPath := flagConfig
	if configPath == "" {
		configPath = filepath.Join(dataDir, "config.yaml")
	}

	cfg, err := config.Load(configPath, dataDir)
	if err != nil {
		return nil, err
	}
	if err := logging.Initialize(logging.Options{
		DebugMode:  cfg.Logging.DebugMode,
		Dir:        logDir(cfg, dataDir),
		Level:      cfg.Logging.Level,
		Categories: cfg.Logging.Categories,
	}); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	chain, err := provenance.Init(cfg.KeyPath)
	if err != nil {
		st.Close()
		return nil, err
	}

	// The semantic index degrades to lexical-only when the embedder
	// cannot be built.
	emb, err := embedding.New(embedding.Config{
		Provider:  cfg.Embedding.Provider,
		Endpoint:  cfg.Embedding.Endpoint,
		Model:     cfg.Embedding.Model,
		Dim:       cfg.Embedding.Dim,
		VocabPath: cfg.EmbedderModelPath,
	})
	if err != nil {
		logger.Warn("semantic index unavailable", zap.Error(err))
		emb = nil
	}

	var scorer neural.Scorer = neural.Nop{}
	if model, err := neural.Load(cfg.NeuralModelPath); err != nil {
		logger.Warn("neural scorer unavailable", zap.Error(err))
	} else if model != nil {
		scorer = model
	}

	pl := retrieval.New(st, emb, sampler.New(rand.NewSource(time.Now().UnixNano())), scorer, cfg.Retrieval)
	engine := counsel.New(st, pl, chain, cfg.RequestDeadline(), types.Depth(cfg.DefaultDepth))

	return &app{
		cfg:     cfg,
		store:   st,
		chain:   chain,
		engine:  engine,
		updater: outcome.New(st, cfg.Learning),
		emb:     emb,
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("store close", zap.Error(err))
	}
}

func logDir(cfg *config.Config, dataDir string) string {
	if cfg.Logging.Dir != "" {
		return cfg.Logging.Dir
	}
	return filepath.Join(dataDir, "logs")
}

// printJSON writes a value as indented JSON to stdout.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
