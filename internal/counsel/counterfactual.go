package counsel

import (
	"context"

	"minds/internal/logging"
	"minds/internal/retrieval"
	"minds/internal/types"
)

// CounterfactualResponse compares the counsel with and without a set of
// excluded principles. Nothing here is persisted or signed: the simulation
// is a read-only what-if.
type CounterfactualResponse struct {
	Question             string           `json:"question"`
	ExcludedPrinciples   []string         `json:"excluded_principles"`
	AlternativePositions []types.Position `json:"alternative_positions"`
	OriginalPrincipleIDs []string         `json:"original_principle_ids"`
	NewPrincipleIDs      []string         `json:"new_principle_ids"`
	DiversityDelta       float64          `json:"diversity_delta"` // Jaccard distance between principle sets
}

// Counterfactual runs the retrieval twice, with and without the exclusions,
// and reports how far the slate moved.
func (e *Engine) Counterfactual(ctx context.Context, req types.CounselRequest, excluded []string) (*CounterfactualResponse, error) {
	timer := logging.StartTimer(logging.CategoryCounsel, "Counterfactual")
	defer timer.Stop()

	if req.Depth == "" {
		req.Depth = e.depth
	}

	original, err := e.pipeline.Run(ctx, retrieval.Request{
		Question: req.Question,
		Domain:   req.Domain,
		Depth:    req.Depth,
	})
	if err != nil {
		return nil, err
	}

	alternative, err := e.pipeline.Run(ctx, retrieval.Request{
		Question: req.Question,
		Domain:   req.Domain,
		Depth:    req.Depth,
		Exclude:  excluded,
	})
	if err != nil {
		return nil, err
	}

	originalIDs := slateIDs(original)
	newIDs := slateIDs(alternative)

	altChosen := append(append([]retrieval.Candidate{}, alternative.Pro...), alternative.Con...)
	byThinker := make(map[string][]string)
	for _, c := range altChosen {
		byThinker[c.Principle.ThinkerID] = append(byThinker[c.Principle.ThinkerID], c.Principle.ID)
	}
	positions := make([]types.Position, 0, len(altChosen))
	for _, c := range altChosen {
		positions = append(positions, buildPosition(c, byThinker[c.Principle.ThinkerID]))
	}

	return &CounterfactualResponse{
		Question:             req.Question,
		ExcludedPrinciples:   excluded,
		AlternativePositions: positions,
		OriginalPrincipleIDs: originalIDs,
		NewPrincipleIDs:      newIDs,
		DiversityDelta:       jaccardDistance(originalIDs, newIDs),
	}, nil
}

func slateIDs(result *retrieval.Result) []string {
	var ids []string
	for _, c := range result.Pro {
		ids = append(ids, c.Principle.ID)
	}
	for _, c := range result.Con {
		ids = append(ids, c.Principle.ID)
	}
	return ids
}

// jaccardDistance is 1 - |intersection| / |union| over two id sets.
func jaccardDistance(a, b []string) float64 {
	setA := make(map[string]bool, len(a))
	for _, id := range a {
		setA[id] = true
	}
	union := make(map[string]bool, len(a)+len(b))
	intersection := 0
	for _, id := range a {
		union[id] = true
	}
	for _, id := range b {
		if setA[id] {
			intersection++
		}
		union[id] = true
	}
	if len(union) == 0 {
		return 0
	}
	return 1 - float64(intersection)/float64(len(union))
}
