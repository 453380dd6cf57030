package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"minds/internal/types"
)

func appendTestDecision(t *testing.T, s *Store, id string, created time.Time) *types.Decision {
	t.Helper()
	dec := &types.Decision{
		ID:          id,
		Question:    "question for " + id,
		CounselJSON: []byte(`{"positions":[]}`),
		CreatedAt:   created,
	}
	_, err := s.AppendDecision(context.Background(), dec, func(prev string) (types.ProvenanceInfo, error) {
		return types.ProvenanceInfo{
			ContentHash:  "hash-" + id,
			PreviousHash: prev,
			AgentPubkey:  "pubkey",
			Signature:    "sig-" + id,
		}, nil
	})
	if err != nil {
		t.Fatalf("AppendDecision(%s): %v", id, err)
	}
	return dec
}

func TestAppendDecisionChainsTip(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	appendTestDecision(t, s, "d1", base)
	appendTestDecision(t, s, "d2", base.Add(time.Second))

	d2, err := s.LoadDecision(context.Background(), "d2")
	if err != nil {
		t.Fatal(err)
	}
	if d2.Provenance.PreviousHash != "hash-d1" {
		t.Errorf("d2 previous_hash = %q, want hash-d1", d2.Provenance.PreviousHash)
	}

	d1, _ := s.LoadDecision(context.Background(), "d1")
	if d1.Provenance.PreviousHash != GenesisHash {
		t.Errorf("first link should anchor at genesis, got %q", d1.Provenance.PreviousHash)
	}
}

func TestChainOrderTieBreaksOnID(t *testing.T) {
	s := newTestStore(t)
	same := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Same created_at: chain order falls back to lexical id.
	appendTestDecision(t, s, "bbb", same)
	appendTestDecision(t, s, "aaa", same)

	ordered, err := s.DecisionsInChainOrder(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(ordered) != 2 || ordered[0].ID != "aaa" || ordered[1].ID != "bbb" {
		ids := make([]string, len(ordered))
		for i, d := range ordered {
			ids[i] = d.ID
		}
		t.Errorf("chain order = %v, want [aaa bbb]", ids)
	}

	prev, err := s.PredecessorOf(context.Background(), ordered[1])
	if err != nil {
		t.Fatal(err)
	}
	if prev == nil || prev.ID != "aaa" {
		t.Errorf("predecessor of bbb should be aaa, got %+v", prev)
	}
	first, err := s.PredecessorOf(context.Background(), ordered[0])
	if err != nil {
		t.Fatal(err)
	}
	if first != nil {
		t.Errorf("first decision should have no predecessor, got %+v", first)
	}
}

func TestSignErrorAbortsAppend(t *testing.T) {
	s := newTestStore(t)
	dec := &types.Decision{ID: "dx", Question: "q", CounselJSON: []byte("{}")}

	_, err := s.AppendDecision(context.Background(), dec, func(string) (types.ProvenanceInfo, error) {
		return types.ProvenanceInfo{}, fmt.Errorf("%w: signer down", types.ErrProvenanceViolation)
	})
	if !errors.Is(err, types.ErrProvenanceViolation) {
		t.Fatalf("expected signer error to surface, got %v", err)
	}
	if _, err := s.LoadDecision(context.Background(), "dx"); !errors.Is(err, types.ErrNotFound) {
		t.Error("decision must not persist when signing fails")
	}
}

func TestSetOutcomeIdempotent(t *testing.T) {
	s := newTestStore(t)
	appendTestDecision(t, s, "d1", time.Now().UTC())
	ctx := context.Background()

	var applied bool
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		applied, err = s.SetOutcomeTx(ctx, tx, "d1", true, "went well")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatal("first outcome should apply")
	}

	err = s.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		applied, err = s.SetOutcomeTx(ctx, tx, "d1", false, "second thoughts")
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if applied {
		t.Error("second outcome must be a no-op")
	}

	d, _ := s.LoadDecision(ctx, "d1")
	if d.OutcomeSuccess == nil || !*d.OutcomeSuccess {
		t.Error("first outcome must win")
	}
	if d.OutcomeNotes != "went well; second thoughts" {
		t.Errorf("notes = %q, want appended notes", d.OutcomeNotes)
	}
}

func TestSetOutcomeUnknownDecision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := s.SetOutcomeTx(ctx, tx, "ghost", true, "")
		return err
	})
	if !errors.Is(err, types.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
