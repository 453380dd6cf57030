package embedding

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(384)
	ctx := context.Background()

	a, err := e.Embed(ctx, "should we rewrite the legacy system")
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Embed(ctx, "should we rewrite the legacy system")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("identical input must embed identically:\n%s", diff)
	}
	if len(a) != 384 {
		t.Errorf("dim = %d, want 384", len(a))
	}
}

func TestHashEmbedderUnitLength(t *testing.T) {
	e := NewHashEmbedder(256)
	vec, err := e.Embed(context.Background(), "profile before optimizing")
	if err != nil {
		t.Fatal(err)
	}
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	if math.Abs(math.Sqrt(sum)-1.0) > 1e-5 {
		t.Errorf("vector norm = %f, want 1", math.Sqrt(sum))
	}
}

func TestHashEmbedderSimilarTextCloser(t *testing.T) {
	e := NewHashEmbedder(384)
	ctx := context.Background()

	base, _ := e.Embed(ctx, "premature optimization is the root of all evil")
	near, _ := e.Embed(ctx, "premature optimization causes evil outcomes")
	far, _ := e.Embed(ctx, "hire more engineers to meet the deadline")

	simNear, _ := CosineSimilarity(base, near)
	simFar, _ := CosineSimilarity(base, far)
	if simNear <= simFar {
		t.Errorf("overlapping text should be closer: near=%f far=%f", simNear, simFar)
	}
}

func TestCosineSimilarityMismatch(t *testing.T) {
	if _, err := CosineSimilarity([]float32{1}, []float32{1, 2}); err == nil {
		t.Error("dimension mismatch should error")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(Config{Provider: "cloud-magic"}); err == nil {
		t.Error("unknown provider should error")
	}
}

func TestNewRejectsOddDimension(t *testing.T) {
	if _, err := New(Config{Provider: "hash", Dim: 100}); err == nil {
		t.Error("dimension outside {256, 384} should error")
	}
}

func TestHashEmbedderVocabWeights(t *testing.T) {
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.json")
	if err := os.WriteFile(vocabPath, []byte(`{"caching": 5.0}`), 0o644); err != nil {
		t.Fatal(err)
	}

	weighted, err := NewHashEmbedderWithVocab(384, vocabPath)
	if err != nil {
		t.Fatal(err)
	}
	uniform := NewHashEmbedder(384)
	ctx := context.Background()

	base, _ := uniform.Embed(ctx, "caching strategy")
	boosted, _ := weighted.Embed(ctx, "caching strategy")
	probe, _ := uniform.Embed(ctx, "caching")

	simBase, _ := CosineSimilarity(base, probe)
	simBoosted, _ := CosineSimilarity(boosted, probe)
	if simBoosted <= simBase {
		t.Errorf("vocabulary weight should pull the vector toward the heavy term: %f vs %f", simBoosted, simBase)
	}

	// Missing vocabulary path degrades to uniform weights.
	fallback, err := NewHashEmbedderWithVocab(384, filepath.Join(dir, "absent.json"))
	if err != nil {
		t.Fatal(err)
	}
	a, _ := fallback.Embed(ctx, "caching strategy")
	if diff := cmp.Diff(base, a); diff != "" {
		t.Errorf("absent vocab must behave like uniform weights:\n%s", diff)
	}
}

func TestOllamaEmbedder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"embedding":[3.0,4.0]}`))
	}))
	defer srv.Close()

	e, err := NewOllamaEmbedder(srv.URL, "all-minilm")
	if err != nil {
		t.Fatal(err)
	}
	vec, err := e.Embed(context.Background(), "anything")
	if err != nil {
		t.Fatal(err)
	}
	// 3-4-5 triangle, normalised.
	if math.Abs(float64(vec[0])-0.6) > 1e-6 || math.Abs(float64(vec[1])-0.8) > 1e-6 {
		t.Errorf("vec = %v, want [0.6 0.8]", vec)
	}
	if e.Dimensions() != 2 {
		t.Errorf("dim = %d, want 2", e.Dimensions())
	}
}

func TestOllamaEmbedderServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	e, _ := NewOllamaEmbedder(srv.URL, "missing")
	if _, err := e.Embed(context.Background(), "text"); err == nil {
		t.Error("server error should surface")
	}
}
