// Package counsel turns ranked retrieval candidates into the adversarial
// counsel response: balanced FOR/AGAINST positions, a devil's-advocate
// challenge, causal hints, and the signed decision record.
package counsel

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"minds/internal/logging"
	"minds/internal/provenance"
	"minds/internal/retrieval"
	"minds/internal/store"
	"minds/internal/types"
)

// Engine orchestrates one counsel call: match, retrieve, assemble, persist,
// sign. Within a single decision id the persist-sign-return sequence is
// atomic through store.AppendDecision.
type Engine struct {
	store    *store.Store
	pipeline *retrieval.Pipeline
	chain    *provenance.Chain
	deadline time.Duration
	depth    types.Depth
}

// New creates a counsel engine.
func New(st *store.Store, pl *retrieval.Pipeline, chain *provenance.Chain, deadline time.Duration, defaultDepth types.Depth) *Engine {
	if defaultDepth == "" {
		defaultDepth = types.DepthStandard
	}
	return &Engine{store: st, pipeline: pl, chain: chain, deadline: deadline, depth: defaultDepth}
}

// Counsel answers a decision question and records the decision.
func (e *Engine) Counsel(ctx context.Context, req types.CounselRequest) (*types.CounselResponse, error) {
	timer := logging.StartTimer(logging.CategoryCounsel, "Counsel")
	defer timer.Stop()

	if strings.TrimSpace(req.Question) == "" {
		return nil, fmt.Errorf("%w: empty question", types.ErrInvalidInput)
	}
	if req.Depth == "" {
		req.Depth = e.depth
	}
	if !req.Depth.Valid() {
		return nil, fmt.Errorf("%w: unknown depth %q", types.ErrInvalidInput, req.Depth)
	}

	// Each request carries a deadline; retrieval short-circuits on expiry
	// but persistence below is not subject to it, preserving invariants.
	runCtx := ctx
	var cancel context.CancelFunc
	if _, has := ctx.Deadline(); !has && e.deadline > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.deadline)
		defer cancel()
	}

	result, err := e.pipeline.Run(runCtx, retrieval.Request{
		Question: req.Question,
		Domain:   req.Domain,
		Depth:    req.Depth,
		Exclude:  req.Exclude,
	})
	if err != nil {
		return nil, err
	}

	response := e.assemble(req, result)

	if err := e.persist(context.WithoutCancel(ctx), req, response); err != nil {
		return nil, err
	}
	logging.Counsel("decision %s: %d positions, partial=%v", response.DecisionID, len(response.Positions), response.Partial)
	return response, nil
}

// persist stores the decision and its signature atomically.
func (e *Engine) persist(ctx context.Context, req types.CounselRequest, response *types.CounselResponse) error {
	content, err := provenance.Canonical(response.Question, response.Domain, response.Positions, response.Challenge)
	if err != nil {
		return fmt.Errorf("canonical serialisation: %w", err)
	}
	contentHash := provenance.HashContent(content)

	dec := &types.Decision{
		ID:       response.DecisionID,
		Question: response.Question,
		Domain:   response.Domain,
	}
	_, err = e.store.AppendDecision(ctx, dec, func(prev string) (types.ProvenanceInfo, error) {
		link := e.chain.Sign(contentHash, prev)
		response.Provenance = link
		response.CreatedAt = dec.CreatedAt
		counselJSON, err := json.Marshal(response)
		if err != nil {
			return types.ProvenanceInfo{}, fmt.Errorf("marshal counsel: %w", err)
		}
		dec.CounselJSON = counselJSON
		return link, nil
	})
	return err
}

// newDecisionID honours a caller-supplied id and generates a UUID otherwise.
func newDecisionID(requested string) string {
	if requested != "" {
		return requested
	}
	return uuid.NewString()
}
