// Package mcp exposes the engine as an MCP tool server over stdio. Each
// tool is JSON-in/JSON-out with a typed schema; the dispatcher is the MCP
// SDK, the semantics live in the engine packages.
package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"minds/internal/counsel"
	"minds/internal/logging"
	"minds/internal/outcome"
	"minds/internal/provenance"
	"minds/internal/store"
	"minds/internal/types"
)

// Server wires the engine into the MCP SDK.
type Server struct {
	MCPServer *sdkmcp.Server

	store   *store.Store
	engine  *counsel.Engine
	updater *outcome.Updater
}

// NewServer creates the tool server.
func NewServer(st *store.Store, engine *counsel.Engine, updater *outcome.Updater) *Server {
	s := &Server{store: st, engine: engine, updater: updater}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "minds", Version: "dev"},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves tool calls over the given transport until ctx ends.
func (s *Server) Run(ctx context.Context, transport sdkmcp.Transport) error {
	logging.Get(logging.CategoryMCP).Info("MCP server starting")
	return s.MCPServer.Run(ctx, transport)
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "counsel",
		Description: "Get adversarial counsel on a decision: FOR and AGAINST positions from named thinkers with cited principles, falsification conditions, and a devil's-advocate challenge.",
	}, s.handleCounsel)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "record_outcome",
		Description: "Report how a decision turned out. Updates the cited principles' posteriors (failures punished twice as strongly). Idempotent per decision id.",
	}, s.handleRecordOutcome)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "record_outcomes_batch",
		Description: "Report a batch of outcomes transactionally; one bad report rolls back the whole batch.",
	}, s.handleRecordOutcomesBatch)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "pre_work_context",
		Description: "Frameworks, anti-patterns, and a suggested approach for a task, assembled before work starts.",
	}, s.handlePreWorkContext)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "search_principles",
		Description: "Full-text search over the principle corpus.",
	}, s.handleSearchPrinciples)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_decision_template",
		Description: "Fetch one decision template by id, with triggers, boosted principles, synergies, tensions, and blind spots.",
	}, s.handleGetDecisionTemplate)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "check_blind_spots",
		Description: "List blind spots for a decision context: what the question is not asking.",
	}, s.handleCheckBlindSpots)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "detect_anti_patterns",
		Description: "Detect known anti-patterns in a plan or description.",
	}, s.handleDetectAntiPatterns)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "validate_prd",
		Description: "Score a PRD JSON document: story sizing, falsifiable acceptance criteria, explicit non-goals.",
	}, s.handleValidatePrd)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_synergies",
		Description: "Principle combinations that reinforce each other and involve any of the given ids.",
	}, s.handleGetSynergies)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_tensions",
		Description: "Principle pairs in conflict that involve any of the given ids: pick one, not both.",
	}, s.handleGetTensions)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "wisdom_stats",
		Description: "Corpus and learning totals plus top and bottom principles by posterior mean.",
	}, s.handleWisdomStats)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "audit_decision",
		Description: "Verify a decision's provenance: content hash, chain link, signature.",
	}, s.handleAuditDecision)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "sync_posteriors",
		Description: "Export all Thompson posteriors, global and per-domain.",
	}, s.handleSyncPosteriors)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "counterfactual_sim",
		Description: "Re-run a counsel with principles excluded and report the diversity delta. Nothing is persisted.",
	}, s.handleCounterfactualSim)
}

// --- counsel ---

type counselInput struct {
	Question   string `json:"question" jsonschema:"the decision question"`
	Domain     string `json:"domain,omitempty" jsonschema:"optional decision domain, e.g. architecture or performance"`
	Depth      string `json:"depth,omitempty" jsonschema:"quick, standard, or deep"`
	DecisionID string `json:"decision_id,omitempty" jsonschema:"caller-supplied decision id; generated when absent"`
}

type counselOutput struct {
	DecisionID        string           `json:"decision_id"`
	Positions         []types.Position `json:"positions"`
	Challenge         types.Position   `json:"challenge"`
	CausalHints       []string         `json:"causal_hints"`
	Summary           string           `json:"summary"`
	UrgencyAdjustment string           `json:"urgency_adjustment,omitempty"`
	Partial           bool             `json:"partial,omitempty"`
	PartialReason     string           `json:"partial_reason,omitempty"`
}

func (s *Server) handleCounsel(ctx context.Context, _ *sdkmcp.CallToolRequest, input counselInput) (*sdkmcp.CallToolResult, counselOutput, error) {
	resp, err := s.engine.Counsel(ctx, types.CounselRequest{
		Question:   input.Question,
		Domain:     input.Domain,
		Depth:      types.Depth(input.Depth),
		DecisionID: input.DecisionID,
	})
	if err != nil {
		return nil, counselOutput{}, fmt.Errorf("counsel: %w", err)
	}
	return nil, counselOutput{
		DecisionID:        resp.DecisionID,
		Positions:         resp.Positions,
		Challenge:         resp.Challenge,
		CausalHints:       resp.CausalHints,
		Summary:           resp.Summary,
		UrgencyAdjustment: resp.UrgencyAdjustment,
		Partial:           resp.Partial,
		PartialReason:     resp.PartialReason,
	}, nil
}

// --- record_outcome ---

type recordOutcomeInput struct {
	DecisionID string `json:"decision_id" jsonschema:"decision id from a counsel call"`
	Success    bool   `json:"success" jsonschema:"whether the decision worked out"`
	Notes      string `json:"notes,omitempty" jsonschema:"optional free-text notes"`
	Domain     string `json:"domain,omitempty" jsonschema:"optional domain override for contextual learning"`
}

type recordOutcomeOutput struct {
	Applied            bool                        `json:"applied"`
	PrinciplesAdjusted []types.PrincipleAdjustment `json:"principles_adjusted"`
	NewConfidences     map[string]float64          `json:"new_confidences"`
}

func (s *Server) handleRecordOutcome(ctx context.Context, _ *sdkmcp.CallToolRequest, input recordOutcomeInput) (*sdkmcp.CallToolResult, recordOutcomeOutput, error) {
	res, err := s.updater.Record(ctx, types.OutcomeRequest{
		DecisionID: input.DecisionID,
		Success:    input.Success,
		Notes:      input.Notes,
		Domain:     input.Domain,
	})
	if err != nil {
		return nil, recordOutcomeOutput{}, fmt.Errorf("record_outcome: %w", err)
	}
	return nil, recordOutcomeOutput{
		Applied:            res.Applied,
		PrinciplesAdjusted: res.PrinciplesAdjusted,
		NewConfidences:     res.NewConfidences,
	}, nil
}

// --- record_outcomes_batch ---

type recordOutcomesBatchInput struct {
	Outcomes []recordOutcomeInput `json:"outcomes" jsonschema:"outcome reports to apply transactionally"`
}

type recordOutcomesBatchOutput struct {
	Applied int `json:"applied"`
}

func (s *Server) handleRecordOutcomesBatch(ctx context.Context, _ *sdkmcp.CallToolRequest, input recordOutcomesBatchInput) (*sdkmcp.CallToolResult, recordOutcomesBatchOutput, error) {
	reqs := make([]types.OutcomeRequest, 0, len(input.Outcomes))
	for _, o := range input.Outcomes {
		reqs = append(reqs, types.OutcomeRequest{
			DecisionID: o.DecisionID,
			Success:    o.Success,
			Notes:      o.Notes,
			Domain:     o.Domain,
		})
	}
	results, err := s.updater.RecordBatch(ctx, reqs)
	if err != nil {
		return nil, recordOutcomesBatchOutput{}, fmt.Errorf("record_outcomes_batch: %w", err)
	}
	applied := 0
	for _, r := range results {
		if r.Applied {
			applied++
		}
	}
	return nil, recordOutcomesBatchOutput{Applied: applied}, nil
}

// --- wisdom_stats ---

type wisdomStatsInput struct{}

func (s *Server) handleWisdomStats(ctx context.Context, _ *sdkmcp.CallToolRequest, _ wisdomStatsInput) (*sdkmcp.CallToolResult, store.WisdomStats, error) {
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, store.WisdomStats{}, fmt.Errorf("wisdom_stats: %w", err)
	}
	return nil, *stats, nil
}

// --- audit_decision ---

type auditDecisionInput struct {
	DecisionID string `json:"decision_id" jsonschema:"decision id to audit"`
}

func (s *Server) handleAuditDecision(ctx context.Context, _ *sdkmcp.CallToolRequest, input auditDecisionInput) (*sdkmcp.CallToolResult, provenance.AuditReport, error) {
	report, err := provenance.Audit(ctx, s.store, input.DecisionID)
	if err != nil {
		return nil, provenance.AuditReport{}, fmt.Errorf("audit_decision: %w", err)
	}
	return nil, *report, nil
}

// --- sync_posteriors ---

type syncPosteriorsInput struct{}

func (s *Server) handleSyncPosteriors(ctx context.Context, _ *sdkmcp.CallToolRequest, _ syncPosteriorsInput) (*sdkmcp.CallToolResult, outcome.SyncPosteriorsResponse, error) {
	resp, err := s.updater.SyncPosteriors(ctx)
	if err != nil {
		return nil, outcome.SyncPosteriorsResponse{}, fmt.Errorf("sync_posteriors: %w", err)
	}
	return nil, *resp, nil
}

// --- counterfactual_sim ---

type counterfactualInput struct {
	Question           string   `json:"question" jsonschema:"the decision question"`
	Domain             string   `json:"domain,omitempty" jsonschema:"optional decision domain"`
	ExcludedPrinciples []string `json:"excluded_principles" jsonschema:"principle ids to exclude from the simulation"`
}

func (s *Server) handleCounterfactualSim(ctx context.Context, _ *sdkmcp.CallToolRequest, input counterfactualInput) (*sdkmcp.CallToolResult, counsel.CounterfactualResponse, error) {
	resp, err := s.engine.Counterfactual(ctx, types.CounselRequest{
		Question: input.Question,
		Domain:   input.Domain,
	}, input.ExcludedPrinciples)
	if err != nil {
		return nil, counsel.CounterfactualResponse{}, fmt.Errorf("counterfactual_sim: %w", err)
	}
	return nil, *resp, nil
}
