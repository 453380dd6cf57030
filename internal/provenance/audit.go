package provenance

import (
	"context"
	"encoding/json"
	"fmt"

	"minds/internal/logging"
	"minds/internal/store"
	"minds/internal/types"
)

// AuditReport is the result of verifying one decision's chain link.
type AuditReport struct {
	DecisionID string               `json:"decision_id"`
	ChainValid bool                 `json:"chain_valid"`
	Reason     string               `json:"reason,omitempty"`
	Provenance types.ProvenanceInfo `json:"provenance"`
}

// Audit recomputes a decision's content hash, checks the link to the record
// written immediately before it (created_at order, decision id tie-break),
// and verifies the signature under the stored pubkey.
func Audit(ctx context.Context, st *store.Store, decisionID string) (*AuditReport, error) {
	dec, err := st.LoadDecision(ctx, decisionID)
	if err != nil {
		return nil, err
	}
	report := &AuditReport{DecisionID: decisionID, Provenance: dec.Provenance}

	if reason := checkDecision(ctx, st, dec); reason != "" {
		logging.Provenance("audit %s failed: %s", decisionID, reason)
		report.Reason = reason
		return report, nil
	}
	report.ChainValid = true
	return report, nil
}

// VerifyAll walks the whole chain in order and returns the first failure per
// decision. All links verifying means the store is untampered.
func VerifyAll(ctx context.Context, st *store.Store) ([]AuditReport, error) {
	decisions, err := st.DecisionsInChainOrder(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]AuditReport, 0, len(decisions))
	prevHash := store.GenesisHash
	for _, dec := range decisions {
		report := AuditReport{DecisionID: dec.ID, Provenance: dec.Provenance}

		switch {
		case recomputeHash(dec) != dec.Provenance.ContentHash:
			report.Reason = "content_hash mismatch"
		case dec.Provenance.PreviousHash != prevHash:
			report.Reason = fmt.Sprintf("broken chain link: previous_hash %s does not match predecessor %s",
				short(dec.Provenance.PreviousHash), short(prevHash))
		case VerifyLink(dec.Provenance) != nil:
			report.Reason = "invalid signature"
		default:
			report.ChainValid = true
		}
		reports = append(reports, report)
		prevHash = dec.Provenance.ContentHash
	}
	return reports, nil
}

// checkDecision validates one decision against its stored predecessor.
func checkDecision(ctx context.Context, st *store.Store, dec *types.Decision) string {
	if recomputeHash(dec) != dec.Provenance.ContentHash {
		return "content_hash mismatch"
	}

	prev, err := st.PredecessorOf(ctx, dec)
	if err != nil {
		return fmt.Sprintf("predecessor lookup failed: %v", err)
	}
	expected := store.GenesisHash
	if prev != nil {
		expected = prev.Provenance.ContentHash
	}
	if dec.Provenance.PreviousHash != expected {
		return fmt.Sprintf("broken chain link: previous_hash %s does not match predecessor %s",
			short(dec.Provenance.PreviousHash), short(expected))
	}

	if err := VerifyLink(dec.Provenance); err != nil {
		return "invalid signature"
	}
	return ""
}

// recomputeHash rebuilds the canonical serialisation from the stored
// counsel. An unparseable counsel hashes to an empty sentinel so tampered
// JSON also fails the content check.
func recomputeHash(dec *types.Decision) string {
	var counsel types.CounselResponse
	if err := json.Unmarshal(dec.CounselJSON, &counsel); err != nil {
		return ""
	}
	content, err := Canonical(dec.Question, dec.Domain, counsel.Positions, counsel.Challenge)
	if err != nil {
		return ""
	}
	return HashContent(content)
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
