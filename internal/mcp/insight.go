package mcp

import (
	"context"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"minds/internal/prd"
	"minds/internal/templates"
	"minds/internal/types"
)

// Knowledge tools: template and corpus lookups that never touch posteriors.

// --- search_principles ---

type searchPrinciplesInput struct {
	Query  string `json:"query" jsonschema:"search text"`
	Domain string `json:"domain,omitempty" jsonschema:"optional domain tag filter"`
	Limit  int    `json:"limit,omitempty" jsonschema:"max results, default 10"`
}

type principleResult struct {
	types.Principle
	Score float64 `json:"score"`
}

type searchPrinciplesOutput struct {
	Results []principleResult `json:"results"`
}

func (s *Server) handleSearchPrinciples(ctx context.Context, _ *sdkmcp.CallToolRequest, input searchPrinciplesInput) (*sdkmcp.CallToolResult, searchPrinciplesOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, searchPrinciplesOutput{}, fmt.Errorf("search_principles: %w: empty query", types.ErrInvalidInput)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	hits, err := s.store.LexicalSearch(ctx, input.Query, input.Domain, limit)
	if err != nil {
		return nil, searchPrinciplesOutput{}, fmt.Errorf("search_principles: %w", err)
	}

	out := searchPrinciplesOutput{Results: []principleResult{}}
	for _, h := range hits {
		p, err := s.store.GetPrinciple(ctx, h.PrincipleID)
		if err != nil {
			continue
		}
		out.Results = append(out.Results, principleResult{Principle: p, Score: h.Score})
	}
	return nil, out, nil
}

// --- get_decision_template ---

type getTemplateInput struct {
	TemplateID string `json:"template_id" jsonschema:"template id, e.g. rewrite-vs-refactor"`
}

func (s *Server) handleGetDecisionTemplate(_ context.Context, _ *sdkmcp.CallToolRequest, input getTemplateInput) (*sdkmcp.CallToolResult, templates.Template, error) {
	tpl, ok := templates.Get(input.TemplateID)
	if !ok {
		return nil, templates.Template{}, fmt.Errorf("get_decision_template: %w: template %s", types.ErrNotFound, input.TemplateID)
	}
	return nil, *tpl, nil
}

// --- check_blind_spots ---

type checkBlindSpotsInput struct {
	Context string `json:"context" jsonschema:"decision context or question text"`
}

type checkBlindSpotsOutput struct {
	TemplateID string                 `json:"template_id,omitempty"`
	BlindSpots []templates.BlindSpot  `json:"blind_spots"`
}

// genericBlindSpots covers contexts no template recognises.
var genericBlindSpots = []templates.BlindSpot{
	{Name: "Rollback plan", CheckQuestion: "How do you undo this if it goes wrong?", Severity: "high"},
	{Name: "Team capacity", CheckQuestion: "Who does this work, and what do they stop doing?", Severity: "high"},
	{Name: "Timeline constraints", CheckQuestion: "What deadline makes this urgent, and is it real?", Severity: "medium"},
}

func (s *Server) handleCheckBlindSpots(_ context.Context, _ *sdkmcp.CallToolRequest, input checkBlindSpotsInput) (*sdkmcp.CallToolResult, checkBlindSpotsOutput, error) {
	if strings.TrimSpace(input.Context) == "" {
		return nil, checkBlindSpotsOutput{}, fmt.Errorf("check_blind_spots: %w: empty context", types.ErrInvalidInput)
	}
	tpl, _ := templates.Match(input.Context)
	if tpl == nil || len(tpl.BlindSpots) == 0 {
		return nil, checkBlindSpotsOutput{BlindSpots: genericBlindSpots}, nil
	}
	return nil, checkBlindSpotsOutput{TemplateID: tpl.ID, BlindSpots: tpl.BlindSpots}, nil
}

// --- detect_anti_patterns ---

type detectAntiPatternsInput struct {
	Description string `json:"description" jsonschema:"plan or design description to scan"`
}

type antiPatternHit struct {
	PrincipleID string `json:"principle_id"`
	Name        string `json:"name"`
	AntiPattern string `json:"anti_pattern"`
}

type detectAntiPatternsOutput struct {
	AntiPatterns []antiPatternHit `json:"anti_patterns"`
}

func (s *Server) handleDetectAntiPatterns(ctx context.Context, _ *sdkmcp.CallToolRequest, input detectAntiPatternsInput) (*sdkmcp.CallToolResult, detectAntiPatternsOutput, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, detectAntiPatternsOutput{}, fmt.Errorf("detect_anti_patterns: %w: empty description", types.ErrInvalidInput)
	}

	out := detectAntiPatternsOutput{AntiPatterns: []antiPatternHit{}}
	seen := map[string]bool{}

	// Template-declared anti-patterns for the matched decision shape.
	if tpl, _ := templates.Match(input.Description); tpl != nil {
		for _, id := range tpl.AntiPatternPrinciples {
			if p, err := s.store.GetPrinciple(ctx, id); err == nil && !seen[id] {
				seen[id] = true
				out.AntiPatterns = append(out.AntiPatterns, antiPatternHit{
					PrincipleID: id, Name: p.Name,
					AntiPattern: fmt.Sprintf("misleading for this decision shape: %s", p.Description),
				})
			}
		}
	}

	// Principles whose own anti-pattern text matches the description.
	hits, err := s.store.LexicalSearch(ctx, input.Description, "", 20)
	if err == nil {
		for _, h := range hits {
			p, err := s.store.GetPrinciple(ctx, h.PrincipleID)
			if err != nil || p.AntiPattern == "" || seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out.AntiPatterns = append(out.AntiPatterns, antiPatternHit{
				PrincipleID: p.ID, Name: p.Name, AntiPattern: p.AntiPattern,
			})
		}
	}
	return nil, out, nil
}

// --- validate_prd ---

type validatePrdInput struct {
	PrdJSON string `json:"prd_json" jsonschema:"PRD document as a JSON string"`
}

func (s *Server) handleValidatePrd(_ context.Context, _ *sdkmcp.CallToolRequest, input validatePrdInput) (*sdkmcp.CallToolResult, prd.Report, error) {
	doc, err := prd.Parse([]byte(input.PrdJSON))
	if err != nil {
		return nil, prd.Report{}, fmt.Errorf("validate_prd: %w", err)
	}
	return nil, *prd.Validate(doc), nil
}

// --- get_synergies / get_tensions ---

type principleSetInput struct {
	PrincipleIDs []string `json:"principle_ids" jsonschema:"principle ids to cross-reference"`
}

type getSynergiesOutput struct {
	Synergies []templates.Synergy `json:"synergies"`
}

func (s *Server) handleGetSynergies(_ context.Context, _ *sdkmcp.CallToolRequest, input principleSetInput) (*sdkmcp.CallToolResult, getSynergiesOutput, error) {
	set := idSet(input.PrincipleIDs)
	out := getSynergiesOutput{Synergies: []templates.Synergy{}}
	for _, tpl := range templates.Catalogue() {
		for _, syn := range tpl.Synergies {
			if overlaps(set, syn.Principles) {
				out.Synergies = append(out.Synergies, syn)
			}
		}
	}
	return nil, out, nil
}

type getTensionsOutput struct {
	Tensions []templates.Tension `json:"tensions"`
}

func (s *Server) handleGetTensions(_ context.Context, _ *sdkmcp.CallToolRequest, input principleSetInput) (*sdkmcp.CallToolResult, getTensionsOutput, error) {
	set := idSet(input.PrincipleIDs)
	out := getTensionsOutput{Tensions: []templates.Tension{}}
	for _, tpl := range templates.Catalogue() {
		for _, ten := range tpl.Tensions {
			if set[ten.PrincipleA] || set[ten.PrincipleB] {
				out.Tensions = append(out.Tensions, ten)
			}
		}
	}
	return nil, out, nil
}

// --- pre_work_context ---

type preWorkContextInput struct {
	Task   string `json:"task" jsonschema:"the task about to start"`
	Domain string `json:"domain,omitempty" jsonschema:"optional domain"`
}

type preWorkContextOutput struct {
	Frameworks        []principleResult `json:"frameworks"`
	AntiPatterns      []antiPatternHit  `json:"anti_patterns"`
	SuggestedApproach string            `json:"suggested_approach"`
}

func (s *Server) handlePreWorkContext(ctx context.Context, req *sdkmcp.CallToolRequest, input preWorkContextInput) (*sdkmcp.CallToolResult, preWorkContextOutput, error) {
	if strings.TrimSpace(input.Task) == "" {
		return nil, preWorkContextOutput{}, fmt.Errorf("pre_work_context: %w: empty task", types.ErrInvalidInput)
	}

	out := preWorkContextOutput{Frameworks: []principleResult{}, AntiPatterns: []antiPatternHit{}}

	_, search, err := s.handleSearchPrinciples(ctx, req, searchPrinciplesInput{
		Query: input.Task, Domain: input.Domain, Limit: 5,
	})
	if err == nil {
		out.Frameworks = search.Results
	}

	_, anti, err := s.handleDetectAntiPatterns(ctx, req, detectAntiPatternsInput{Description: input.Task})
	if err == nil {
		out.AntiPatterns = anti.AntiPatterns
	}

	if tpl, _ := templates.Match(input.Task); tpl != nil {
		out.SuggestedApproach = fmt.Sprintf("This looks like %q. %s", tpl.Name, tpl.Description)
	} else if len(out.Frameworks) > 0 {
		out.SuggestedApproach = fmt.Sprintf("Start from %s: %s",
			out.Frameworks[0].Name, out.Frameworks[0].Description)
	} else {
		out.SuggestedApproach = "No matching framework; state the trade-off explicitly and list what would prove each side wrong."
	}
	return nil, out, nil
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func overlaps(set map[string]bool, ids []string) bool {
	for _, id := range ids {
		if set[id] {
			return true
		}
	}
	return false
}
