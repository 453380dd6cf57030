// Package retrieval composes the lexical index, semantic index, template
// matcher, arm sampler, and neural scorer into a ranked, stance-split
// candidate list. Fusion is reciprocal rank fusion over the three named
// sources; selection multiplies the rerank score by the arm draw or the
// neural posterior.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"minds/internal/config"
	"minds/internal/embedding"
	"minds/internal/logging"
	"minds/internal/neural"
	"minds/internal/sampler"
	"minds/internal/store"
	"minds/internal/templates"
	"minds/internal/types"
)

// Request is one retrieval call.
type Request struct {
	Question string
	Domain   string
	Depth    types.Depth
	Exclude  []string // principle ids excluded by the caller (counterfactuals)
}

// Candidate is one ranked principle with its provenance through the ranking.
type Candidate struct {
	Principle   types.Principle
	ThinkerName string
	Stance      types.Stance // resolved stance for this request
	Similarity  float64      // normalised semantic score, 0 when absent
	RRF         float64
	Rerank      float64
	Selection   float64
	Rho         float64 // posterior mean of the arm in play
	FromNeural  bool
}

// Result is the pipeline output: two ranked sub-lists plus match metadata.
type Result struct {
	Template      *templates.Template
	TemplateScore float64
	Pro           []Candidate
	Con           []Candidate
	Partial       bool
	PartialReason string
}

// Pipeline wires the retrieval sources together.
type Pipeline struct {
	store    *store.Store
	embedder embedding.Embedder // nil when the semantic index is unavailable
	sampler  *sampler.Sampler
	scorer   neural.Scorer
	cfg      config.RetrievalConfig
}

// New creates a pipeline. embedder may be nil; scorer may be neural.Nop{}.
func New(st *store.Store, emb embedding.Embedder, smp *sampler.Sampler, scorer neural.Scorer, cfg config.RetrievalConfig) *Pipeline {
	if scorer == nil {
		scorer = neural.Nop{}
	}
	return &Pipeline{store: st, embedder: emb, sampler: smp, scorer: scorer, cfg: cfg}
}

// Run executes the full retrieval algorithm. A deadline expiry at any stage
// short-circuits with Partial=true rather than erroring; in-flight store
// reads complete but later stages are skipped.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryRetrieval, "Run")
	defer timer.Stop()

	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: empty question", types.ErrInvalidInput)
	}
	if req.Depth == "" {
		req.Depth = types.DepthStandard
	}
	if !req.Depth.Valid() {
		return nil, fmt.Errorf("%w: unknown depth %q", types.ErrInvalidInput, req.Depth)
	}

	res := &Result{}
	res.Template, res.TemplateScore = templates.Match(req.Question)
	if res.Template != nil {
		logging.RetrievalDebug("template %s matched at %.2f", res.Template.ID, res.TemplateScore)
	}

	if expired(ctx) {
		res.Partial = true
		res.PartialReason = "deadline exceeded before retrieval"
		return res, nil
	}

	lexical, semantic := p.fanOut(ctx, req)

	// Template stream: boost principles in declared order.
	var templateStream []Ranked
	if res.Template != nil {
		for i, b := range res.Template.Boost {
			templateStream = append(templateStream, Ranked{PrincipleID: b.PrincipleID, Rank: i + 1})
		}
	}

	fused := RRF(p.cfg.KRRF, templateStream, lexical, semantic)
	if len(fused) == 0 {
		res.Partial = true
		res.PartialReason = "no candidates matched"
		return res, nil
	}

	lexNorm := normalizeScores(lexical)
	semNorm := normalizeScores(semantic)

	if expired(ctx) {
		res.Partial = true
		res.PartialReason = "deadline exceeded during fusion"
		return res, nil
	}

	candidates, err := p.scoreCandidates(ctx, req, res.Template, fused, lexNorm, semNorm)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Selection != candidates[j].Selection {
			return candidates[i].Selection > candidates[j].Selection
		}
		if candidates[i].Rho != candidates[j].Rho {
			return candidates[i].Rho > candidates[j].Rho
		}
		return candidates[i].Principle.ID < candidates[j].Principle.ID
	})

	p.split(req.Depth, candidates, res)
	logging.Retrieval("retrieved %d pro / %d con candidates (partial=%v)", len(res.Pro), len(res.Con), res.Partial)
	return res, nil
}

// fanOut runs lexical and semantic retrieval concurrently. Either source
// failing degrades to an empty stream; the lexical path logs its error, and
// a missing semantic index is expected when no embedder is configured.
func (p *Pipeline) fanOut(ctx context.Context, req Request) (lexical, semantic []Ranked) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hits, err := p.store.LexicalSearch(gctx, req.Question, req.Domain, p.cfg.TopK)
		if err != nil {
			logging.Get(logging.CategoryRetrieval).Warn("lexical search failed: %v", err)
			return nil
		}
		for i, h := range hits {
			lexical = append(lexical, Ranked{PrincipleID: h.PrincipleID, Rank: i + 1, Score: h.Score})
		}
		return nil
	})

	if p.embedder != nil {
		g.Go(func() error {
			vec, err := p.embedder.Embed(gctx, req.Question)
			if err != nil {
				logging.Get(logging.CategoryRetrieval).Warn("query embedding failed: %v", err)
				return nil
			}
			hits, err := p.store.SemanticSearch(gctx, vec, p.cfg.TopK)
			if err != nil {
				logging.Get(logging.CategoryRetrieval).Warn("semantic search failed: %v", err)
				return nil
			}
			for i, h := range hits {
				semantic = append(semantic, Ranked{PrincipleID: h.PrincipleID, Rank: i + 1, Score: h.Score})
			}
			return nil
		})
	}

	_ = g.Wait()
	return lexical, semantic
}

// scoreCandidates resolves principle records, applies filters, and computes
// selection scores from one consistent arm snapshot.
func (p *Pipeline) scoreCandidates(ctx context.Context, req Request, tpl *templates.Template,
	fused, lexNorm, semNorm map[string]float64) ([]Candidate, error) {

	excluded := make(map[string]bool, len(req.Exclude))
	for _, id := range req.Exclude {
		excluded[id] = true
	}

	names, err := p.store.ThinkerNames(ctx)
	if err != nil {
		return nil, err
	}
	global, contextual, err := p.store.ArmSnapshot(ctx, req.Domain)
	if err != nil {
		return nil, err
	}
	snap := sampler.Snapshot{Global: global, Contextual: contextual}

	var out []Candidate
	for _, id := range sortedIDs(fused) {
		if excluded[id] {
			continue
		}
		if tpl != nil && tpl.IsAntiPattern(id) {
			continue
		}

		principle, err := p.store.GetPrinciple(ctx, id)
		if err != nil {
			// A boost or stale index entry pointing at a missing principle
			// is a corpus defect: skip and log rather than abort.
			logging.Get(logging.CategoryRetrieval).Warn("skipping unknown principle %s: %v", id, err)
			continue
		}

		rrf := fused[id]
		rerank := rrf + p.cfg.WFTS*lexNorm[id] + p.cfg.WSem*semNorm[id]

		arm := snap.Arm(id)
		rho := arm.Rho()

		var armOrNeural float64
		var fromNeural bool
		mu, sigma, ok := p.scorer.Score(id, neural.Features{
			Similarity: semNorm[id],
			Rho:        rho,
			Pulls:      snap.GlobalPulls(id),
			Domain:     req.Domain,
		})
		if ok {
			armOrNeural = neural.Combined(mu, sigma, p.cfg.WExplore)
			fromNeural = true
		} else {
			armOrNeural = p.sampler.Draw(snap, id)
		}

		out = append(out, Candidate{
			Principle:   principle,
			ThinkerName: names[principle.ThinkerID],
			Stance:      p.resolveStance(tpl, principle),
			Similarity:  semNorm[id],
			RRF:         rrf,
			Rerank:      rerank,
			Selection:   rerank * armOrNeural,
			Rho:         rho,
			FromNeural:  fromNeural,
		})
	}
	return out, nil
}

// resolveStance applies the per-principle default, with template boost
// overrides for the template's own principles. A contradiction between a
// non-neutral default and an override is flagged, not silently resolved.
func (p *Pipeline) resolveStance(tpl *templates.Template, principle types.Principle) types.Stance {
	stance := principle.DefaultStance
	if stance == "" {
		stance = types.StanceNeutral
	}
	if tpl == nil {
		return stance
	}
	override, ok := tpl.BoostStance(principle.ID)
	if !ok {
		return stance
	}
	if stance != types.StanceNeutral && stance != override {
		logging.Get(logging.CategoryRetrieval).Warn(
			"template %s overrides stance of %s: default=%s override=%s",
			tpl.ID, principle.ID, stance, override)
	}
	return override
}

// split builds the pro and con sub-lists, enforcing one principle per
// thinker per side and filling short sides from neutral candidates.
func (p *Pipeline) split(depth types.Depth, candidates []Candidate, res *Result) {
	perSide := depth.PositionsPerSide()

	var neutrals []Candidate
	proThinkers := map[string]bool{}
	conThinkers := map[string]bool{}

	place := func(c Candidate, side *[]Candidate, thinkers map[string]bool) bool {
		if len(*side) >= perSide || thinkers[c.Principle.ThinkerID] {
			return false
		}
		*side = append(*side, c)
		thinkers[c.Principle.ThinkerID] = true
		return true
	}

	for _, c := range candidates {
		switch c.Stance {
		case types.StanceFor:
			place(c, &res.Pro, proThinkers)
		case types.StanceAgainst:
			place(c, &res.Con, conThinkers)
		default:
			neutrals = append(neutrals, c)
		}
	}

	// Neutral principles fill the minority side first to keep balance.
	for _, c := range neutrals {
		if len(res.Pro) <= len(res.Con) {
			c.Stance = types.StanceFor
			if place(c, &res.Pro, proThinkers) {
				continue
			}
			c.Stance = types.StanceAgainst
			place(c, &res.Con, conThinkers)
		} else {
			c.Stance = types.StanceAgainst
			if place(c, &res.Con, conThinkers) {
				continue
			}
			c.Stance = types.StanceFor
			place(c, &res.Pro, proThinkers)
		}
	}

	if len(res.Pro) < perSide || len(res.Con) < perSide {
		res.Partial = true
		if res.PartialReason == "" {
			res.PartialReason = "insufficient candidates"
		}
	}

	// Depth >= standard wants at least two distinct thinkers overall.
	if depth != types.DepthQuick {
		distinct := map[string]bool{}
		for _, c := range res.Pro {
			distinct[c.Principle.ThinkerID] = true
		}
		for _, c := range res.Con {
			distinct[c.Principle.ThinkerID] = true
		}
		if len(distinct) > 0 && len(distinct) < 2 {
			res.Partial = true
			if res.PartialReason == "" {
				res.PartialReason = "single-thinker slate"
			}
		}
	}
}

func expired(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
