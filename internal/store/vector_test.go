package store

import (
	"context"
	"math"
	"testing"
)

func TestSemanticSearchRanksByCosine(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)
	ctx := context.Background()

	// Three orthogonal-ish vectors; query is closest to strangler-fig.
	if err := s.UpsertEmbedding(ctx, "strangler-fig", []float32{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertEmbedding(ctx, "second-system-effect", []float32{0.5, 0.5, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := s.UpsertEmbedding(ctx, "premature-optimization", []float32{0, 0, 1, 0}); err != nil {
		t.Fatal(err)
	}

	hits, err := s.SemanticSearch(ctx, []float32{0.9, 0.1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("SemanticSearch: %v", err)
	}
	if len(hits) < 2 {
		t.Fatalf("expected at least 2 hits, got %d", len(hits))
	}
	if hits[0].PrincipleID != "strangler-fig" {
		t.Errorf("top hit = %s, want strangler-fig", hits[0].PrincipleID)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("scores not descending: %v", hits)
		}
	}
	for _, h := range hits {
		if h.Score < 0 {
			t.Errorf("negative-similarity hit leaked: %v", h)
		}
	}
}

func TestUpsertEmbeddingNormalises(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)
	ctx := context.Background()

	// Store an unnormalised vector; a matching query must score ~1.0.
	if err := s.UpsertEmbedding(ctx, "strangler-fig", []float32{10, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	hits, err := s.SemanticSearch(ctx, []float32{1, 0, 0, 0}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("hits = %v", hits)
	}
	if math.Abs(hits[0].Score-1.0) > 1e-5 {
		t.Errorf("identical direction should score 1.0, got %f", hits[0].Score)
	}
}

func TestEmbeddingCount(t *testing.T) {
	s := newTestStore(t)
	seedCouncil(t, s)
	ctx := context.Background()

	n, err := s.EmbeddingCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
	if err := s.UpsertEmbedding(ctx, "strangler-fig", []float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}
	if n, _ = s.EmbeddingCount(ctx); n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}
