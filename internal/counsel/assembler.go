package counsel

import (
	"fmt"
	"sort"
	"time"

	"minds/internal/retrieval"
	"minds/internal/types"
)

// Fallback considerations used when neither the template nor tag scanning
// yields at least three missing considerations.
var fallbackConsiderations = []string{
	"rollback plan",
	"team capacity",
	"timeline constraints",
}

const (
	challengeThinker    = "Devil's Advocate"
	challengeThinkerID  = "_challenge"
	challengeConfidence = 0.95
)

// assemble builds the counsel response from the ranked sub-lists.
func (e *Engine) assemble(req types.CounselRequest, result *retrieval.Result) *types.CounselResponse {
	chosen := append(append([]retrieval.Candidate{}, result.Pro...), result.Con...)

	// Same-thinker citations: every chosen principle of a thinker is cited
	// by that thinker's positions.
	byThinker := make(map[string][]string)
	for _, c := range chosen {
		byThinker[c.Principle.ThinkerID] = append(byThinker[c.Principle.ThinkerID], c.Principle.ID)
	}

	positions := make([]types.Position, 0, len(chosen))
	var principleIDs, causalHints []string
	for _, c := range chosen {
		pos := buildPosition(c, byThinker[c.Principle.ThinkerID])
		positions = append(positions, pos)
		principleIDs = append(principleIDs, c.Principle.ID)
		causalHints = append(causalHints, fmt.Sprintf("%s cites %s for %s stance",
			pos.Thinker, c.Principle.ID, c.Stance))
	}

	challenge := e.buildChallenge(req, result, chosen)

	response := &types.CounselResponse{
		DecisionID:    newDecisionID(req.DecisionID),
		Question:      req.Question,
		Domain:        req.Domain,
		Positions:     positions,
		Challenge:     challenge,
		PrincipleIDs:  principleIDs,
		CausalHints:   causalHints,
		Partial:       result.Partial,
		PartialReason: result.PartialReason,
		CreatedAt:     time.Now().UTC(),
	}
	response.Summary = summarize(positions, challenge)
	response.UrgencyAdjustment = detectUrgency(req.Question, positions)
	return response
}

// buildPosition renders one candidate as a position. The argument is the
// principle description behind a stance-appropriate lead-in; confidence is
// the posterior mean of the arm the selection used.
func buildPosition(c retrieval.Candidate, cited []string) types.Position {
	leadIn := "FOR: "
	if c.Stance == types.StanceAgainst {
		leadIn = "AGAINST: "
	}

	falsifiable := c.Principle.Falsification
	if falsifiable == "" {
		if c.Stance == types.StanceFor {
			falsifiable = fmt.Sprintf("This recommendation is wrong if %s does not apply to this context", c.Principle.Name)
		} else {
			falsifiable = fmt.Sprintf("This caution is unnecessary if you have already validated against %s", c.Principle.Name)
		}
	}

	thinker := c.ThinkerName
	if thinker == "" {
		thinker = c.Principle.ThinkerID
	}

	return types.Position{
		Thinker:         thinker,
		ThinkerID:       c.Principle.ThinkerID,
		Stance:          c.Stance,
		Argument:        leadIn + c.Principle.Description,
		PrinciplesCited: cited,
		Confidence:      c.Rho,
		FalsifiableIf:   falsifiable,
	}
}

// buildChallenge enumerates 3-5 missing considerations: template blind
// spots first, then domain tags under-represented in the chosen slate,
// then the fixed fallbacks.
func (e *Engine) buildChallenge(req types.CounselRequest, result *retrieval.Result, chosen []retrieval.Candidate) types.Position {
	var considerations []string
	seen := map[string]bool{}
	add := func(item string) {
		if len(considerations) < 5 && item != "" && !seen[item] {
			seen[item] = true
			considerations = append(considerations, item)
		}
	}

	if result.Template != nil {
		for _, bs := range result.Template.BlindSpots {
			add(bs.Name)
		}
	}

	if len(considerations) < 3 {
		for _, tag := range underRepresentedTags(chosen) {
			add("coverage of " + tag)
		}
	}

	if len(considerations) < 3 {
		for _, f := range fallbackConsiderations {
			add(f)
		}
	}

	argument := fmt.Sprintf("Missing considerations: %s. The positions above may be incomplete without addressing these.",
		joinList(considerations))

	return types.Position{
		Thinker:         challengeThinker,
		ThinkerID:       challengeThinkerID,
		Stance:          types.StanceChallenge,
		Argument:        argument,
		PrinciplesCited: []string{"socratic-method"},
		Confidence:      challengeConfidence,
		FalsifiableIf:   "This challenge is invalid if you have direct evidence addressing it",
	}
}

// underRepresentedTags returns domain tags that only a single chosen
// principle covers, sorted for determinism.
func underRepresentedTags(chosen []retrieval.Candidate) []string {
	counts := map[string]int{}
	for _, c := range chosen {
		for _, tag := range c.Principle.DomainTags {
			counts[tag]++
		}
	}
	var tags []string
	for tag, n := range counts {
		if n == 1 {
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// summarize produces the one-line response summary.
func summarize(positions []types.Position, challenge types.Position) string {
	var forCount, againstCount int
	best := -1.0
	bestLabel := "none"
	for _, p := range positions {
		switch p.Stance {
		case types.StanceFor:
			forCount++
		case types.StanceAgainst:
			againstCount++
		}
		if p.Confidence > best {
			best = p.Confidence
			bestLabel = fmt.Sprintf("%s (%.0f%%)", p.Thinker, p.Confidence*100)
		}
	}
	return fmt.Sprintf("%d position(s) FOR, %d AGAINST. Highest confidence: %s. Challenge: %s",
		forCount, againstCount, bestLabel, challenge.Argument)
}

func joinList(items []string) string {
	out := ""
	for i, it := range items {
		if i > 0 {
			out += ", "
		}
		out += it
	}
	return out
}
