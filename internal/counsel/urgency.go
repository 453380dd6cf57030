package counsel

import (
	"math"
	"strings"

	"minds/internal/types"
)

// Keyword sets that move a decision toward escalation or deferral.
var (
	escalateKeywords = []string{
		"security", "vulnerable", "breach", "hack", "data loss", "corruption",
		"production down", "breaking change", "backwards compat", "legal",
		"compliance", "gdpr", "pii", "money", "billing", "payment",
		"deadline", "blocker", "critical",
	}
	deferKeywords = []string{
		"future", "eventually", "someday", "maybe", "nice to have", "phase 2",
		"later", "considering", "thinking about", "exploring", "research",
		"spike", "poc", "prototype",
	}
)

// detectUrgency suggests "escalate" or "defer" from question keywords and
// the confidence spread of the assembled positions. Empty means neither.
func detectUrgency(question string, positions []types.Position) string {
	q := strings.ToLower(question)

	var escalateScore, deferScore int
	for _, kw := range escalateKeywords {
		if strings.Contains(q, kw) {
			escalateScore++
		}
	}
	for _, kw := range deferKeywords {
		if strings.Contains(q, kw) {
			deferScore++
		}
	}

	avgConfidence := 0.5
	if len(positions) > 0 {
		var sum float64
		for _, p := range positions {
			sum += p.Confidence
		}
		avgConfidence = sum / float64(len(positions))
	}

	// Low confidence on a high-stakes question escalates; stakes alone
	// escalate at two keywords.
	if avgConfidence < 0.5 && escalateScore >= 1 {
		return "escalate"
	}
	if escalateScore >= 2 {
		return "escalate"
	}
	if deferScore >= 2 {
		return "defer"
	}

	// Contentious slate: near-equal FOR and AGAINST mass.
	var forMass, againstMass float64
	for _, p := range positions {
		switch p.Stance {
		case types.StanceFor:
			forMass += p.Confidence
		case types.StanceAgainst:
			againstMass += p.Confidence
		}
	}
	if forMass > 0 && againstMass > 0 &&
		math.Abs(forMass-againstMass) < 0.2 && forMass+againstMass > 1.0 {
		return "escalate"
	}
	return ""
}
