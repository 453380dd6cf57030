// Package embedding generates fixed-dimension vectors for semantic search
// over principles. Two providers: a deterministic local feature-hash
// embedder (always available) and an Ollama-backed model embedder.
package embedding

import (
	"context"
	"fmt"
	"math"

	"minds/internal/logging"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates the embedding for a single text. It must be
	// deterministic for identical input.
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of embeddings.
	Dimensions() int

	// Name returns the provider name.
	Name() string
}

// Config selects and parameterises the embedder.
type Config struct {
	Provider  string // "hash" or "ollama"
	Endpoint  string // ollama endpoint
	Model     string // ollama model
	Dim       int    // hash embedder dimension (256 or 384)
	VocabPath string // optional term-weight vocabulary for the hash embedder
}

// New creates an embedder from configuration.
func New(cfg Config) (Embedder, error) {
	timer := logging.StartTimer(logging.CategoryEmbedding, "New")
	defer timer.Stop()

	switch cfg.Provider {
	case "", "hash":
		dim := cfg.Dim
		if dim == 0 {
			dim = 384
		}
		if dim != 256 && dim != 384 {
			return nil, fmt.Errorf("unsupported embedding dimension %d (use 256 or 384)", dim)
		}
		logging.Embedding("using hash embedder, dim=%d vocab=%s", dim, cfg.VocabPath)
		return NewHashEmbedderWithVocab(dim, cfg.VocabPath)
	case "ollama":
		logging.Embedding("using ollama embedder: endpoint=%s model=%s", cfg.Endpoint, cfg.Model)
		return NewOllamaEmbedder(cfg.Endpoint, cfg.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s (use 'hash' or 'ollama')", cfg.Provider)
	}
}

// CosineSimilarity computes the cosine of two vectors, in [-1, 1].
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}

// L2Normalize returns the unit-length version of vec.
func L2Normalize(vec []float32) []float32 {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, f := range vec {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
