// Package neural consumes an exported posterior model and scores
// (question, principle, context) triples as (mu, sigma). The engine never
// trains; it only loads what the external trainer exported. When no model
// is installed the Nop scorer stands in and the retrieval pipeline falls
// back to Thompson draws without branching.
package neural

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"minds/internal/logging"
)

// Features is the context bag a score is computed from.
type Features struct {
	Similarity float64 // cosine(question, principle) in [-1, 1]
	Rho        float64 // posterior mean of the arm in play
	Pulls      int64   // global pulls for the principle
	Domain     string  // decision domain, may be empty
	Urgency    float64 // 0..1
	Difficulty float64 // 0..1
}

// Scorer produces a success probability and an uncertainty for a candidate.
type Scorer interface {
	// Score returns (mu, sigma, true) for a known principle, ok=false when
	// the scorer cannot judge this candidate.
	Score(principleID string, feat Features) (mu, sigma float64, ok bool)

	// Available reports whether a real model is loaded.
	Available() bool
}

// Combined folds uncertainty into a single optimistic score.
func Combined(mu, sigma, wExplore float64) float64 {
	return mu + wExplore*sigma
}

// Nop is the fallback scorer used when no model file is installed.
type Nop struct{}

// Score always declines.
func (Nop) Score(string, Features) (float64, float64, bool) { return 0, 0, false }

// Available reports no model.
func (Nop) Available() bool { return false }

// model is the exported file layout: a linear head per output over the
// feature vector, plus the principle vocabulary the trainer saw.
type model struct {
	FeatureDim int            `json:"feature_dim"`
	Domains    []string       `json:"domains"`
	Principles map[string]int `json:"principles"`
	Mu         head           `json:"mu"`
	Sigma      head           `json:"sigma"`
}

type head struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Model is a loaded neural posterior.
type Model struct {
	m model
}

// Load reads an exported model from path. A missing path yields (nil, nil)
// so callers can substitute Nop without special-casing.
func Load(path string) (*Model, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read neural model: %w", err)
	}

	var m model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse neural model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("neural model %s: %w", path, err)
	}

	logging.Embedding("neural model loaded: %d principles, %d features", len(m.Principles), m.FeatureDim)
	return &Model{m: m}, nil
}

func (m *model) validate() error {
	if m.FeatureDim <= 0 {
		return fmt.Errorf("feature_dim must be positive")
	}
	want := 5 + len(m.Domains)
	if m.FeatureDim != want {
		return fmt.Errorf("feature_dim %d does not fit %d base features + %d domains", m.FeatureDim, 5, len(m.Domains))
	}
	if len(m.Mu.Weights) != m.FeatureDim || len(m.Sigma.Weights) != m.FeatureDim {
		return fmt.Errorf("head weight length mismatch")
	}
	return nil
}

// Score implements Scorer. Unknown principles decline so the pipeline uses
// the Thompson draw instead.
func (m *Model) Score(principleID string, feat Features) (float64, float64, bool) {
	if _, known := m.m.Principles[principleID]; !known {
		return 0, 0, false
	}

	x := make([]float64, 0, m.m.FeatureDim)
	x = append(x, feat.Similarity, feat.Rho, math.Log1p(float64(feat.Pulls))/10, feat.Urgency, feat.Difficulty)
	for _, d := range m.m.Domains {
		if d == feat.Domain {
			x = append(x, 1)
		} else {
			x = append(x, 0)
		}
	}

	mu := sigmoid(dot(m.m.Mu.Weights, x) + m.m.Mu.Bias)
	sigma := sigmoid(dot(m.m.Sigma.Weights, x) + m.m.Sigma.Bias)
	return mu, sigma, true
}

// Available implements Scorer.
func (m *Model) Available() bool { return true }

func dot(w, x []float64) float64 {
	var s float64
	for i := range w {
		s += w[i] * x[i]
	}
	return s
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
