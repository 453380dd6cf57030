package embedding

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"os"
	"strings"
	"unicode"
)

// HashEmbedder is a deterministic feature-hashing embedder. Tokens and
// token bigrams hash into signed buckets; the result is L2-normalised.
// It needs no model file, so the semantic index is available even when no
// embedder artefacts are installed. An optional vocabulary file supplies
// per-term weights (IDF-style) exported alongside a trained model.
type HashEmbedder struct {
	dim   int
	vocab map[string]float32
}

// NewHashEmbedder creates a hash embedder of the given dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	return &HashEmbedder{dim: dim}
}

// NewHashEmbedderWithVocab loads term weights from a JSON vocabulary file
// (term -> weight). A missing path yields uniform weights.
func NewHashEmbedderWithVocab(dim int, vocabPath string) (*HashEmbedder, error) {
	e := NewHashEmbedder(dim)
	if vocabPath == "" {
		return e, nil
	}
	data, err := os.ReadFile(vocabPath)
	if err != nil {
		if os.IsNotExist(err) {
			return e, nil
		}
		return nil, fmt.Errorf("read embedder vocabulary: %w", err)
	}
	if err := json.Unmarshal(data, &e.vocab); err != nil {
		return nil, fmt.Errorf("parse embedder vocabulary %s: %w", vocabPath, err)
	}
	return e, nil
}

// weight returns the vocabulary weight for a token, default 1.
func (h *HashEmbedder) weight(token string) float32 {
	if w, ok := h.vocab[token]; ok {
		return w
	}
	return 1
}

// Embed maps text to a deterministic unit vector.
func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dim)
	tokens := hashTokens(text)

	add := func(feature string, weight float32) {
		f := fnv.New64a()
		f.Write([]byte(feature))
		sum := f.Sum64()
		bucket := int(sum % uint64(h.dim))
		sign := float32(1)
		if (sum>>63)&1 == 1 {
			sign = -1
		}
		vec[bucket] += sign * weight
	}

	for i, tok := range tokens {
		add(tok, h.weight(tok))
		if i+1 < len(tokens) {
			// Bigrams add word-order features, so texts sharing a phrase
			// score closer than texts sharing only its separate words.
			add(tokens[i]+" "+tokens[i+1], 0.5*h.weight(tok))
		}
	}

	return L2Normalize(vec), nil
}

// Dimensions returns the vector dimensionality.
func (h *HashEmbedder) Dimensions() int { return h.dim }

// Name returns the provider name.
func (h *HashEmbedder) Name() string { return "hash" }

func hashTokens(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
