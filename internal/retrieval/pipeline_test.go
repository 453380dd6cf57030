package retrieval

import (
	"context"
	"errors"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"

	"minds/internal/config"
	"minds/internal/embedding"
	"minds/internal/sampler"
	"minds/internal/store"
	"minds/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestPipeline(t *testing.T) (*Pipeline, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	ctx := context.Background()
	thinkers := []types.Thinker{
		{ID: "martin-fowler", Name: "Martin Fowler", Domain: "software"},
		{ID: "kent-beck", Name: "Kent Beck", Domain: "software"},
		{ID: "fred-brooks", Name: "Fred Brooks", Domain: "systems"},
		{ID: "donald-knuth", Name: "Donald Knuth", Domain: "software"},
		{ID: "ward-cunningham", Name: "Ward Cunningham", Domain: "software"},
	}
	principles := []types.Principle{
		{ID: "strangler-fig", ThinkerID: "martin-fowler", Name: "Strangler Fig",
			Description:   "Replace a legacy system incrementally by routing new behaviour around the old rewrite target",
			DomainTags:    []string{"architecture", "migration"},
			Falsification: "Fails when the legacy system exposes no seams",
			DefaultStance: types.StanceFor},
		{ID: "small-steps", ThinkerID: "kent-beck", Name: "Small Steps",
			Description:   "Make each change small enough that the legacy rewrite stays shippable every day",
			DomainTags:    []string{"process"},
			Falsification: "Fails when steps carry no observable progress",
			DefaultStance: types.StanceFor},
		{ID: "second-system-effect", ThinkerID: "fred-brooks", Name: "Second-System Effect",
			Description:   "The rewrite of a legacy system attracts every deferred ambition and collapses under them",
			DomainTags:    []string{"architecture"},
			Falsification: "Fails when scope is held fixed by contract",
			DefaultStance: types.StanceAgainst},
		{ID: "premature-optimization", ThinkerID: "donald-knuth", Name: "Premature Optimization",
			Description:   "Optimizing a legacy system before profiling wastes the rewrite budget on the wrong code",
			DomainTags:    []string{"performance"},
			Falsification: "Fails when a profile already identified the bottleneck",
			DefaultStance: types.StanceAgainst},
		{ID: "technical-debt-metaphor", ThinkerID: "ward-cunningham", Name: "Technical Debt",
			Description:   "Shipping on borrowed design is fine while you repay; a legacy rewrite is one way to settle",
			DomainTags:    []string{"process"},
			Falsification: "Fails when the interest rate on the debt is effectively zero",
			DefaultStance: types.StanceNeutral},
	}
	for _, th := range thinkers {
		if err := st.InsertThinker(ctx, th); err != nil {
			t.Fatal(err)
		}
	}
	emb := embedding.NewHashEmbedder(256)
	for _, p := range principles {
		if err := st.InsertPrinciple(ctx, p); err != nil {
			t.Fatal(err)
		}
		vec, _ := emb.Embed(ctx, p.Name+" "+p.Description)
		if err := st.UpsertEmbedding(ctx, p.ID, vec); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default(t.TempDir()).Retrieval
	pl := New(st, emb, sampler.New(rand.NewSource(7)), nil, cfg)
	return pl, st
}

func TestRunProducesBothSides(t *testing.T) {
	pl, _ := newTestPipeline(t)

	res, err := pl.Run(context.Background(), Request{
		Question: "Should we rewrite the legacy system?",
		Depth:    types.DepthStandard,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Template == nil || res.Template.ID != "rewrite-vs-refactor" {
		t.Errorf("template = %v", res.Template)
	}
	if len(res.Pro) == 0 || len(res.Con) == 0 {
		t.Fatalf("expected candidates on both sides, got %d/%d", len(res.Pro), len(res.Con))
	}
	for _, c := range res.Pro {
		if c.Stance != types.StanceFor {
			t.Errorf("pro side carries stance %q", c.Stance)
		}
	}
	for _, c := range res.Con {
		if c.Stance != types.StanceAgainst {
			t.Errorf("con side carries stance %q", c.Stance)
		}
	}
}

func TestRunOrdersBySelection(t *testing.T) {
	pl, _ := newTestPipeline(t)

	res, err := pl.Run(context.Background(), Request{
		Question: "Should we rewrite the legacy system?",
		Depth:    types.DepthDeep,
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, side := range [][]Candidate{res.Pro, res.Con} {
		for i := 1; i < len(side); i++ {
			if side[i].Selection > side[i-1].Selection {
				t.Errorf("side not ordered by selection score")
			}
		}
	}
}

func TestRunOneThinkerPerSide(t *testing.T) {
	pl, st := newTestPipeline(t)
	ctx := context.Background()

	// A second Fowler principle competing for the same side.
	if err := st.InsertPrinciple(ctx, types.Principle{
		ID: "monolith-first", ThinkerID: "martin-fowler", Name: "Monolith First",
		Description:   "Start the legacy replacement as one deployable and split later",
		Falsification: "Fails when the domain is already well charted",
		DefaultStance: types.StanceFor,
	}); err != nil {
		t.Fatal(err)
	}

	res, err := pl.Run(ctx, Request{
		Question: "Should we rewrite the legacy system?",
		Depth:    types.DepthDeep,
	})
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]int{}
	for _, c := range res.Pro {
		seen[c.Principle.ThinkerID]++
	}
	if seen["martin-fowler"] > 1 {
		t.Errorf("thinker appears %d times on the FOR side", seen["martin-fowler"])
	}
}

func TestRunExclusions(t *testing.T) {
	pl, _ := newTestPipeline(t)

	res, err := pl.Run(context.Background(), Request{
		Question: "Should we rewrite the legacy system?",
		Depth:    types.DepthDeep,
		Exclude:  []string{"strangler-fig", "small-steps"},
	})
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range append(res.Pro, res.Con...) {
		if c.Principle.ID == "strangler-fig" || c.Principle.ID == "small-steps" {
			t.Errorf("excluded principle %s surfaced", c.Principle.ID)
		}
	}
}

func TestRunEmptyQuestion(t *testing.T) {
	pl, _ := newTestPipeline(t)
	_, err := pl.Run(context.Background(), Request{Question: "   "})
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunUnknownDepth(t *testing.T) {
	pl, _ := newTestPipeline(t)
	_, err := pl.Run(context.Background(), Request{Question: "anything", Depth: types.Depth("extreme")})
	if !errors.Is(err, types.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestRunNoCandidatesIsPartial(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "empty.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	cfg := config.Default(t.TempDir()).Retrieval
	pl := New(st, nil, sampler.New(rand.NewSource(1)), nil, cfg)

	res, err := pl.Run(context.Background(), Request{Question: "entirely unrelated gibberish zzqx"})
	if err != nil {
		t.Fatalf("empty corpus should not error: %v", err)
	}
	if !res.Partial {
		t.Error("no candidates must set partial")
	}
	if len(res.Pro)+len(res.Con) != 0 {
		t.Errorf("expected empty slates, got %d/%d", len(res.Pro), len(res.Con))
	}
}

func TestRunExpiredDeadlineIsPartial(t *testing.T) {
	pl, _ := newTestPipeline(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	res, err := pl.Run(ctx, Request{Question: "Should we rewrite the legacy system?"})
	if err != nil {
		t.Fatalf("deadline expiry must not error: %v", err)
	}
	if !res.Partial {
		t.Error("expired deadline must set partial")
	}
}

func TestRunWithoutSemanticIndex(t *testing.T) {
	pl, st := newTestPipeline(t)
	_ = pl

	// A pipeline with no embedder falls back to lexical-only retrieval.
	cfg := config.Default(t.TempDir()).Retrieval
	lexOnly := New(st, nil, sampler.New(rand.NewSource(3)), nil, cfg)

	res, err := lexOnly.Run(context.Background(), Request{
		Question: "Should we rewrite the legacy system?",
	})
	if err != nil {
		t.Fatalf("lexical-only run failed: %v", err)
	}
	if len(res.Pro)+len(res.Con) == 0 {
		t.Error("lexical-only retrieval should still find candidates")
	}
}

func TestNeutralAssignedConcreteSide(t *testing.T) {
	pl, _ := newTestPipeline(t)

	res, err := pl.Run(context.Background(), Request{
		Question: "Should we pay down technical debt before the next feature?",
		Depth:    types.DepthStandard,
	})
	if err != nil {
		t.Fatal(err)
	}
	// technical-debt-metaphor is neutral; if it surfaced it must have been
	// assigned to a concrete side.
	for _, c := range append(res.Pro, res.Con...) {
		if c.Stance == types.StanceNeutral {
			t.Errorf("neutral stance leaked into slate: %s", c.Principle.ID)
		}
	}
}
