// Package types defines the core entities of the adversarial decision
// engine: thinkers, principles, counsel responses, decisions, and the
// Thompson-sampling posteriors that close the learning loop.
package types

import (
	"time"
)

// Thinker is a curated domain expert. Immutable after import.
type Thinker struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Domain     string `json:"domain"`
	Background string `json:"background,omitempty"`
}

// ThinkerDomains is the closed set of primary thinker domains.
var ThinkerDomains = []string{
	"software", "systems", "philosophy", "business", "decision-making", "security",
}

// Stance is the side a principle argues by default, or a position takes.
type Stance string

const (
	StanceFor       Stance = "for"
	StanceAgainst   Stance = "against"
	StanceNeutral   Stance = "neutral"
	StanceChallenge Stance = "challenge"
)

// Principle is a named doctrine owned by exactly one thinker.
type Principle struct {
	ID              string   `json:"id"`
	ThinkerID       string   `json:"thinker_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	DomainTags      []string `json:"domain_tags,omitempty"`
	Falsification   string   `json:"falsification"`
	AntiPattern     string   `json:"anti_pattern,omitempty"`
	ApplicationRule string   `json:"application_rule,omitempty"`
	DefaultStance   Stance   `json:"default_stance"`
}

// Depth controls how many positions a counsel carries per side.
type Depth string

const (
	DepthQuick    Depth = "quick"
	DepthStandard Depth = "standard"
	DepthDeep     Depth = "deep"
)

// PositionsPerSide returns the FOR/AGAINST slate size for a depth.
func (d Depth) PositionsPerSide() int {
	switch d {
	case DepthQuick:
		return 1
	case DepthDeep:
		return 3
	default:
		return 2
	}
}

// Valid reports whether d is a recognised depth value.
func (d Depth) Valid() bool {
	switch d {
	case DepthQuick, DepthStandard, DepthDeep:
		return true
	}
	return false
}

// Position is one side of the adversarial counsel, attributed to a thinker.
type Position struct {
	Thinker         string   `json:"thinker"`
	ThinkerID       string   `json:"thinker_id"`
	Stance          Stance   `json:"stance"`
	Argument        string   `json:"argument"`
	PrinciplesCited []string `json:"principles_cited"`
	Confidence      float64  `json:"confidence"`
	FalsifiableIf   string   `json:"falsifiable_if,omitempty"`
}

// ProvenanceInfo carries the chain link stored with every decision.
type ProvenanceInfo struct {
	ContentHash  string `json:"content_hash"`
	PreviousHash string `json:"previous_hash"`
	Signature    string `json:"signature"`
	AgentPubkey  string `json:"agent_pubkey"`
}

// CounselResponse is the full structured answer to a decision question.
type CounselResponse struct {
	DecisionID        string         `json:"decision_id"`
	Question          string         `json:"question"`
	Domain            string         `json:"domain,omitempty"`
	Positions         []Position     `json:"positions"`
	Challenge         Position       `json:"challenge"`
	Summary           string         `json:"summary"`
	PrincipleIDs      []string       `json:"principle_ids"`
	CausalHints       []string       `json:"causal_hints"`
	UrgencyAdjustment string         `json:"urgency_adjustment,omitempty"`
	Partial           bool           `json:"partial,omitempty"`
	PartialReason     string         `json:"partial_reason,omitempty"`
	Provenance        ProvenanceInfo `json:"provenance"`
	CreatedAt         time.Time      `json:"created_at"`
}

// CounselRequest is the input to a counsel call.
type CounselRequest struct {
	Question   string   `json:"question"`
	Domain     string   `json:"domain,omitempty"`
	DecisionID string   `json:"decision_id,omitempty"`
	Depth      Depth    `json:"depth,omitempty"`
	Exclude    []string `json:"exclude,omitempty"`
}

// Decision is a persisted counsel with outcome tracking.
type Decision struct {
	ID                string
	Question          string
	Domain            string
	CounselJSON       []byte
	OutcomeSuccess    *bool
	OutcomeNotes      string
	OutcomeRecordedAt time.Time
	CreatedAt         time.Time
	Provenance        ProvenanceInfo
}

// OutcomePending reports whether the decision still awaits an outcome.
func (d *Decision) OutcomePending() bool { return d.OutcomeSuccess == nil }

// OutcomeRequest reports the real-world result of a decision.
type OutcomeRequest struct {
	DecisionID string `json:"decision_id"`
	Success    bool   `json:"success"`
	Notes      string `json:"notes,omitempty"`
	Domain     string `json:"domain,omitempty"`
}

// ArmPosterior is a Beta(alpha, beta) posterior over a principle's
// empirical success rate. Alpha and Beta never drop below 1.
type ArmPosterior struct {
	PrincipleID string    `json:"principle_id"`
	Domain      string    `json:"domain,omitempty"`
	Alpha       float64   `json:"alpha"`
	Beta        float64   `json:"beta"`
	Pulls       int64     `json:"pulls"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Rho is the posterior mean alpha/(alpha+beta).
func (a ArmPosterior) Rho() float64 {
	if a.Alpha+a.Beta == 0 {
		return 0.5
	}
	return a.Alpha / (a.Alpha + a.Beta)
}

// UniformArm returns the initial Beta(1,1) posterior for a principle.
func UniformArm(principleID string) ArmPosterior {
	return ArmPosterior{PrincipleID: principleID, Alpha: 1, Beta: 1}
}

// PrincipleAdjustment describes one posterior move after an outcome report.
type PrincipleAdjustment struct {
	PrincipleID string  `json:"principle_id"`
	OldRho      float64 `json:"old_rho"`
	NewRho      float64 `json:"new_rho"`
	Pulls       int64   `json:"pulls"`
}
