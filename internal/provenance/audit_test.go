package provenance

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"minds/internal/store"
	"minds/internal/types"
)

func signedDecision(t *testing.T, st *store.Store, chain *Chain, id, question string, created time.Time) *types.Decision {
	t.Helper()

	challenge := types.Position{
		Thinker: "Devil's Advocate", ThinkerID: "_challenge",
		Stance: types.StanceChallenge, Confidence: 0.95,
		Argument: "Missing considerations: rollback plan.",
	}
	positions := []types.Position{{
		Thinker: "Martin Fowler", ThinkerID: "martin-fowler",
		Stance: types.StanceFor, Argument: "FOR: route around it", Confidence: 0.5,
		PrinciplesCited: []string{"strangler-fig"},
	}}

	counsel := types.CounselResponse{
		DecisionID: id, Question: question,
		Positions: positions, Challenge: challenge,
	}

	content, err := Canonical(question, "", positions, challenge)
	if err != nil {
		t.Fatal(err)
	}
	hash := HashContent(content)

	dec := &types.Decision{ID: id, Question: question, CreatedAt: created}
	_, err = st.AppendDecision(context.Background(), dec, func(prev string) (types.ProvenanceInfo, error) {
		link := chain.Sign(hash, prev)
		counsel.Provenance = link
		counselJSON, err := json.Marshal(counsel)
		if err != nil {
			return types.ProvenanceInfo{}, err
		}
		dec.CounselJSON = counselJSON
		return link, nil
	})
	if err != nil {
		t.Fatalf("AppendDecision: %v", err)
	}
	return dec
}

func auditFixture(t *testing.T) (*store.Store, *Chain, string) {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	chain, err := Init(filepath.Join(dir, "signing.key"))
	if err != nil {
		t.Fatal(err)
	}
	return st, chain, dbPath
}

func TestAuditValidChain(t *testing.T) {
	st, chain, _ := auditFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

	signedDecision(t, st, chain, "d1", "first question", base)
	signedDecision(t, st, chain, "d2", "second question", base.Add(time.Minute))

	for _, id := range []string{"d1", "d2"} {
		report, err := Audit(context.Background(), st, id)
		if err != nil {
			t.Fatalf("Audit(%s): %v", id, err)
		}
		if !report.ChainValid {
			t.Errorf("decision %s invalid: %s", id, report.Reason)
		}
	}

	reports, err := VerifyAll(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("reports = %d", len(reports))
	}
	for _, r := range reports {
		if !r.ChainValid {
			t.Errorf("decision %s invalid: %s", r.DecisionID, r.Reason)
		}
	}
}

func TestAuditUnknownDecision(t *testing.T) {
	st, _, _ := auditFixture(t)
	if _, err := Audit(context.Background(), st, "ghost"); err == nil {
		t.Error("unknown decision must error")
	}
}

func TestAuditDetectsTamperedCounsel(t *testing.T) {
	st, chain, dbPath := auditFixture(t)
	signedDecision(t, st, chain, "d1", "tamper target", time.Now().UTC())

	// Flip the stored counsel behind the store's back.
	tamperCounsel(t, dbPath, "d1")

	report, err := Audit(context.Background(), st, "d1")
	if err != nil {
		t.Fatal(err)
	}
	if report.ChainValid {
		t.Fatal("tampered counsel must not verify")
	}
	if report.Reason != "content_hash mismatch" {
		t.Errorf("reason = %q, want content_hash mismatch", report.Reason)
	}
}

func TestVerifyAllDetectsBrokenLink(t *testing.T) {
	st, chain, dbPath := auditFixture(t)
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	signedDecision(t, st, chain, "d1", "first", base)
	signedDecision(t, st, chain, "d2", "second", base.Add(time.Minute))

	// Rewrite d2's previous_hash so the link no longer points at d1.
	execSQL(t, dbPath, `UPDATE provenance SET previous_hash = ? WHERE decision_id = 'd2'`,
		"deadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeefdeadbeef")

	reports, err := VerifyAll(context.Background(), st)
	if err != nil {
		t.Fatal(err)
	}
	var brokenReason string
	for _, r := range reports {
		if r.DecisionID == "d2" {
			brokenReason = r.Reason
		}
	}
	if brokenReason == "" {
		t.Fatal("broken link not detected")
	}
}

// tamperCounsel flips the stored argument text of a decision.
func tamperCounsel(t *testing.T, dbPath, decisionID string) {
	t.Helper()
	execSQL(t, dbPath,
		`UPDATE decisions SET counsel_json = replace(counsel_json, 'route around it', 'route aroXnd it') WHERE id = ?`,
		decisionID)
}

func execSQL(t *testing.T, dbPath, query string, args ...interface{}) {
	t.Helper()
	db, err := sql.Open(rawDriverName, dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}
