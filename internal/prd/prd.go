// Package prd scores product requirement documents against the council's
// standards: small falsifiable stories, explicit scope, no kitchen sinks.
package prd

import (
	"encoding/json"
	"fmt"
	"strings"

	"minds/internal/types"
)

// Document is the PRD JSON a caller submits for validation.
type Document struct {
	Title       string   `json:"title"`
	Problem     string   `json:"problem,omitempty"`
	NonGoals    []string `json:"non_goals,omitempty"`
	Stories     []Story  `json:"stories"`
	SuccessSpec string   `json:"success_spec,omitempty"`
}

// Story is one unit of scoped work.
type Story struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	AcceptanceCriteria []string `json:"acceptance_criteria,omitempty"`
	EstimateDays       float64  `json:"estimate_days,omitempty"`
}

// Report is the validation result.
type Report struct {
	Score       int      `json:"score"` // 0-100
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// maxStoriesBeforeSplit is where a PRD stops being one deliverable.
const maxStoriesBeforeSplit = 8

// Parse decodes a PRD from JSON.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: invalid prd json: %v", types.ErrInvalidInput, err)
	}
	return &doc, nil
}

// Validate scores the document. The score starts at 100 and loses points
// per defect; warnings name the defects, suggestions name the fixes.
func Validate(doc *Document) *Report {
	r := &Report{Score: 100, Warnings: []string{}, Suggestions: []string{}}

	penalize := func(points int, warning, suggestion string) {
		r.Score -= points
		r.Warnings = append(r.Warnings, warning)
		if suggestion != "" {
			r.Suggestions = append(r.Suggestions, suggestion)
		}
	}

	if strings.TrimSpace(doc.Title) == "" {
		penalize(10, "missing title", "name the deliverable in one line")
	}
	if strings.TrimSpace(doc.Problem) == "" {
		penalize(15, "no problem statement", "state the job the user is hiring this work to do")
	}
	if len(doc.NonGoals) == 0 {
		penalize(10, "no non-goals", "say what is out of scope; removal is cheaper than addition")
	}
	if strings.TrimSpace(doc.SuccessSpec) == "" {
		penalize(10, "no success criteria", "state what observable outcome would prove the PRD wrong")
	}

	switch {
	case len(doc.Stories) == 0:
		penalize(25, "no stories", "break the work into independently shippable stories")
	case len(doc.Stories) > maxStoriesBeforeSplit:
		penalize(15,
			fmt.Sprintf("%d stories in one PRD", len(doc.Stories)),
			fmt.Sprintf("split into multiple PRDs of at most %d stories", maxStoriesBeforeSplit))
	}

	for _, s := range doc.Stories {
		if len(s.AcceptanceCriteria) == 0 {
			penalize(5, fmt.Sprintf("story %s has no acceptance criteria", storyLabel(s)),
				"every story needs a falsifiable done-condition")
			continue
		}
		for _, ac := range s.AcceptanceCriteria {
			if !falsifiable(ac) {
				penalize(3, fmt.Sprintf("story %s criterion %q is not checkable", storyLabel(s), ac),
					"rewrite the criterion so a reviewer could mark it failed")
				break
			}
		}
		if s.EstimateDays > 5 {
			penalize(5, fmt.Sprintf("story %s estimated at %.0f days", storyLabel(s), s.EstimateDays),
				"slice stories under a week so each step stays shippable")
		}
	}

	if r.Score < 0 {
		r.Score = 0
	}
	return r
}

// falsifiable is a cheap test for whether a criterion could ever be marked
// failed: it needs a verb of observation or a measurable bound.
func falsifiable(criterion string) bool {
	c := strings.ToLower(criterion)
	if len(strings.Fields(c)) < 3 {
		return false
	}
	vague := []string{"works well", "is better", "good enough", "user friendly", "fast enough", "improved"}
	for _, v := range vague {
		if strings.Contains(c, v) {
			return false
		}
	}
	markers := []string{"returns", "shows", "displays", "fails", "rejects", "under ", "within ", "at least", "at most", "exactly", "when ", "must ", "should ", "%", "ms", "seconds"}
	for _, m := range markers {
		if strings.Contains(c, m) {
			return true
		}
	}
	return false
}

func storyLabel(s Story) string {
	if s.ID != "" {
		return s.ID
	}
	if s.Title != "" {
		return fmt.Sprintf("%q", s.Title)
	}
	return "(unnamed)"
}
