package mcp

import (
	"context"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minds/internal/config"
	"minds/internal/counsel"
	"minds/internal/embedding"
	"minds/internal/importer"
	"minds/internal/outcome"
	"minds/internal/provenance"
	"minds/internal/retrieval"
	"minds/internal/sampler"
	"minds/internal/store"
	"minds/internal/types"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	emb := embedding.NewHashEmbedder(256)
	_, err = importer.New(st, emb).ImportDocs(context.Background(), importer.Seed())
	require.NoError(t, err)

	chain, err := provenance.Init(filepath.Join(dir, "signing.key"))
	require.NoError(t, err)

	cfg := config.Default(dir)
	pl := retrieval.New(st, emb, sampler.New(rand.NewSource(5)), nil, cfg.Retrieval)
	engine := counsel.New(st, pl, chain, 30*time.Second, types.DepthStandard)
	updater := outcome.New(st, cfg.Learning)

	return NewServer(st, engine, updater)
}

func TestCounselThenOutcomeThenAudit(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, counselOut, err := s.handleCounsel(ctx, nil, counselInput{
		Question: "Should we rewrite the legacy system?",
	})
	require.NoError(t, err)
	require.NotEmpty(t, counselOut.DecisionID)
	require.NotEmpty(t, counselOut.Positions)
	assert.Equal(t, "Devil's Advocate", counselOut.Challenge.Thinker)

	_, outcomeOut, err := s.handleRecordOutcome(ctx, nil, recordOutcomeInput{
		DecisionID: counselOut.DecisionID,
		Success:    true,
	})
	require.NoError(t, err)
	assert.True(t, outcomeOut.Applied)
	assert.NotEmpty(t, outcomeOut.PrinciplesAdjusted)

	_, audit, err := s.handleAuditDecision(ctx, nil, auditDecisionInput{DecisionID: counselOut.DecisionID})
	require.NoError(t, err)
	assert.True(t, audit.ChainValid, "reason: %s", audit.Reason)

	// The cited principles keep their ids through the round-trip, with
	// updated posteriors visible in sync.
	_, posteriors, err := s.handleSyncPosteriors(ctx, nil, syncPosteriorsInput{})
	require.NoError(t, err)
	for _, adj := range outcomeOut.PrinciplesAdjusted {
		arm, ok := posteriors.Posteriors[adj.PrincipleID]
		require.True(t, ok, "posterior missing for %s", adj.PrincipleID)
		assert.Equal(t, adj.NewRho, arm.Rho())
	}
}

func TestSearchPrinciples(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleSearchPrinciples(context.Background(), nil, searchPrinciplesInput{
		Query: "premature optimization profiling",
	})
	require.NoError(t, err)
	require.NotEmpty(t, out.Results)

	var found bool
	for _, r := range out.Results {
		if r.ID == "premature-optimization" {
			found = true
		}
	}
	assert.True(t, found, "results: %+v", out.Results)
}

func TestSearchPrinciplesEmptyQuery(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.handleSearchPrinciples(context.Background(), nil, searchPrinciplesInput{})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestGetDecisionTemplate(t *testing.T) {
	s := newTestServer(t)

	_, tpl, err := s.handleGetDecisionTemplate(context.Background(), nil, getTemplateInput{TemplateID: "add-caching"})
	require.NoError(t, err)
	assert.Equal(t, "Add Caching", tpl.Name)

	_, _, err = s.handleGetDecisionTemplate(context.Background(), nil, getTemplateInput{TemplateID: "nope"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestCheckBlindSpots(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, out, err := s.handleCheckBlindSpots(ctx, nil, checkBlindSpotsInput{
		Context: "Should we add caching?",
	})
	require.NoError(t, err)
	assert.Equal(t, "add-caching", out.TemplateID)
	assert.NotEmpty(t, out.BlindSpots)

	_, generic, err := s.handleCheckBlindSpots(ctx, nil, checkBlindSpotsInput{
		Context: "completely unrelated topic",
	})
	require.NoError(t, err)
	assert.Len(t, generic.BlindSpots, 3)
	assert.Equal(t, "Rollback plan", generic.BlindSpots[0].Name)
}

func TestValidatePrd(t *testing.T) {
	s := newTestServer(t)

	_, report, err := s.handleValidatePrd(context.Background(), nil, validatePrdInput{
		PrdJSON: `{"title":"t","problem":"p","non_goals":["x"],"success_spec":"hit rate above 80%","stories":[{"id":"s1","acceptance_criteria":["returns 200 within 100ms"]},{"id":"s2","acceptance_criteria":["rejects malformed input"]}]}`,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Score, 90)

	_, _, err = s.handleValidatePrd(context.Background(), nil, validatePrdInput{PrdJSON: "{oops"})
	assert.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestGetSynergiesAndTensions(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, syn, err := s.handleGetSynergies(ctx, nil, principleSetInput{
		PrincipleIDs: []string{"monolith-first"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, syn.Synergies)

	_, ten, err := s.handleGetTensions(ctx, nil, principleSetInput{
		PrincipleIDs: []string{"acid-matters"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ten.Tensions)

	_, none, err := s.handleGetSynergies(ctx, nil, principleSetInput{PrincipleIDs: []string{"unknown"}})
	require.NoError(t, err)
	assert.Empty(t, none.Synergies)
}

func TestPreWorkContext(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handlePreWorkContext(context.Background(), nil, preWorkContextInput{
		Task: "Should we add caching to fix the slow endpoint?",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Frameworks)
	assert.Contains(t, out.SuggestedApproach, "Add Caching")
}

func TestCounterfactualSim(t *testing.T) {
	s := newTestServer(t)

	_, out, err := s.handleCounterfactualSim(context.Background(), nil, counterfactualInput{
		Question:           "Should we rewrite the legacy system?",
		ExcludedPrinciples: []string{"strangler-fig", "small-steps"},
	})
	require.NoError(t, err)
	for _, id := range out.NewPrincipleIDs {
		assert.NotContains(t, []string{"strangler-fig", "small-steps"}, id)
	}
}

func TestRecordOutcomesBatch(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, c1, err := s.handleCounsel(ctx, nil, counselInput{Question: "Should we add caching?"})
	require.NoError(t, err)
	_, c2, err := s.handleCounsel(ctx, nil, counselInput{Question: "Should we hire more engineers?"})
	require.NoError(t, err)

	_, out, err := s.handleRecordOutcomesBatch(ctx, nil, recordOutcomesBatchInput{
		Outcomes: []recordOutcomeInput{
			{DecisionID: c1.DecisionID, Success: true},
			{DecisionID: c2.DecisionID, Success: false},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Applied)
}

func TestWisdomStats(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, c, err := s.handleCounsel(ctx, nil, counselInput{Question: "Should we add caching?"})
	require.NoError(t, err)
	_, _, err = s.handleRecordOutcome(ctx, nil, recordOutcomeInput{DecisionID: c.DecisionID, Success: true})
	require.NoError(t, err)

	_, stats, err := s.handleWisdomStats(ctx, nil, wisdomStatsInput{})
	require.NoError(t, err)
	assert.Greater(t, stats.Thinkers, int64(0))
	assert.Greater(t, stats.Decisions, int64(0))
	assert.Equal(t, int64(1), stats.RecordedOutcomes)
	assert.NotEmpty(t, stats.TopPrinciples)
}
