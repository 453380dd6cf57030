// Package templates holds the closed catalogue of decision archetypes and
// the matcher that detects them in question text. Templates are not generic
// frameworks: each carries curated trigger weights, a boost set of principle
// ids to inject, declared blind spots, and principle synergies/tensions.
package templates

import (
	"strings"

	"minds/internal/types"
)

// Template is one pre-declared decision archetype.
type Template struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Domain      string `json:"domain"`

	// Keywords and Phrases map trigger text (lower case) to curated weights.
	Keywords map[string]float64 `json:"keywords"`
	Phrases  map[string]float64 `json:"phrases"`

	// Boost principles are injected into the candidate set when the
	// template matches. A non-empty Stance overrides the principle's
	// default stance for this decision shape only.
	Boost []Boost `json:"boost"`

	// AntiPatternPrinciples are dropped from the candidate set: principles
	// known to mislead for this decision shape.
	AntiPatternPrinciples []string `json:"anti_pattern_principles,omitempty"`

	Synergies  []Synergy   `json:"synergies,omitempty"`
	Tensions   []Tension   `json:"tensions,omitempty"`
	BlindSpots []BlindSpot `json:"blind_spots,omitempty"`
}

// Boost injects one principle with an optional stance override.
type Boost struct {
	PrincipleID string       `json:"principle_id"`
	Stance      types.Stance `json:"stance,omitempty"`
}

// Synergy names principles that work well together.
type Synergy struct {
	Principles []string `json:"principles"`
	Why        string   `json:"why"`
}

// Tension names principles in conflict: pick one, not both.
type Tension struct {
	PrincipleA string `json:"principle_a"`
	PrincipleB string `json:"principle_b"`
	WhenA      string `json:"when_a"`
	WhenB      string `json:"when_b"`
}

// BlindSpot is something commonly overlooked for this decision shape.
type BlindSpot struct {
	Name          string `json:"name"`
	CheckQuestion string `json:"check_question"`
	Severity      string `json:"severity"` // critical, high, medium, low
}

// MatchFloor is the minimum weighted coverage for a template to apply.
const MatchFloor = 0.25

// Match returns the template whose trigger set best covers the question, or
// nil when the best coverage is below MatchFloor. Earliest-declared wins
// ties.
func Match(question string) (*Template, float64) {
	q := strings.ToLower(question)

	var best *Template
	var bestScore float64
	for _, tpl := range Catalogue() {
		score := tpl.coverage(q)
		if score > bestScore {
			t := tpl
			best = &t
			bestScore = score
		}
	}
	if bestScore < MatchFloor {
		return nil, bestScore
	}
	return best, bestScore
}

// Get returns a template by id.
func Get(id string) (*Template, bool) {
	for _, tpl := range Catalogue() {
		if tpl.ID == id {
			t := tpl
			return &t, true
		}
	}
	return nil, false
}

// coverage is matched trigger weight over total trigger weight.
func (t *Template) coverage(q string) float64 {
	var total, matched float64
	for kw, w := range t.Keywords {
		total += w
		if strings.Contains(q, kw) {
			matched += w
		}
	}
	for ph, w := range t.Phrases {
		total += w
		if strings.Contains(q, ph) {
			matched += w
		}
	}
	if total == 0 {
		return 0
	}
	return matched / total
}

// BoostStance returns the stance override the template declares for a
// principle, if any.
func (t *Template) BoostStance(principleID string) (types.Stance, bool) {
	for _, b := range t.Boost {
		if b.PrincipleID == principleID && b.Stance != "" {
			return b.Stance, true
		}
	}
	return "", false
}

// IsAntiPattern reports whether the template lists the principle as an
// anti-pattern for this decision shape.
func (t *Template) IsAntiPattern(principleID string) bool {
	for _, id := range t.AntiPatternPrinciples {
		if id == principleID {
			return true
		}
	}
	return false
}
