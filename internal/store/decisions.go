package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"minds/internal/logging"
	"minds/internal/types"
)

// timeFormat is a fixed-width RFC3339 layout. Fixed-width fractions keep
// lexicographic comparison of stored timestamps identical to temporal
// order, which the chain-walk SQL relies on.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// GenesisHash anchors the provenance chain: 32 zero bytes, hex.
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

// AppendDecision persists a decision and its provenance link atomically.
// The sign callback receives the current chain tip (or GenesisHash) and
// returns the link to store; observers never see a decision without one.
func (s *Store) AppendDecision(ctx context.Context, dec *types.Decision,
	sign func(previousHash string) (types.ProvenanceInfo, error)) (types.ProvenanceInfo, error) {

	timer := logging.StartTimer(logging.CategoryStore, "AppendDecision")
	defer timer.Stop()

	var link types.ProvenanceInfo
	err := s.WithTx(ctx, func(tx *sql.Tx) error {
		tip := GenesisHash
		err := tx.QueryRowContext(ctx, `
			SELECT pr.content_hash
			FROM provenance pr JOIN decisions d ON d.id = pr.decision_id
			ORDER BY d.created_at DESC, d.id DESC LIMIT 1`).Scan(&tip)
		if err != nil && err != sql.ErrNoRows {
			return storeErr("read chain tip", err)
		}

		created := dec.CreatedAt
		if created.IsZero() {
			// Monotonic assignment keeps chain-walk order identical to
			// append order even when the wall clock repeats a timestamp.
			created = time.Now().UTC()
			if !created.After(s.lastCreated) {
				created = s.lastCreated.Add(time.Nanosecond)
			}
			s.lastCreated = created
		}
		// Assigned before signing so the callback sees the final timestamp.
		dec.CreatedAt = created

		link, err = sign(tip)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO decisions (id, question, domain, counsel_json, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			dec.ID, dec.Question, dec.Domain, string(dec.CounselJSON),
			created.Format(timeFormat))
		if err != nil {
			return storeErr("insert decision "+dec.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO provenance (decision_id, agent_pubkey, content_hash, previous_hash, signature)
			VALUES (?, ?, ?, ?, ?)`,
			dec.ID, link.AgentPubkey, link.ContentHash, link.PreviousHash, link.Signature)
		if err != nil {
			return storeErr("insert provenance "+dec.ID, err)
		}
		dec.Provenance = link
		return nil
	})
	if err != nil {
		return types.ProvenanceInfo{}, err
	}
	return link, nil
}

const decisionSelect = `
	SELECT d.id, d.question, d.domain, d.counsel_json,
	       d.outcome_success, d.outcome_notes, d.outcome_recorded_at, d.created_at,
	       pr.agent_pubkey, pr.content_hash, pr.previous_hash, pr.signature
	FROM decisions d
	LEFT JOIN provenance pr ON pr.decision_id = d.id`

// LoadDecision fetches a decision with its provenance link.
func (s *Store) LoadDecision(ctx context.Context, id string) (*types.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanDecision(s.db.QueryRowContext(ctx, decisionSelect+" WHERE d.id = ?", id))
}

// LoadDecisionTx fetches a decision inside a transaction. Callers already
// hold the store's write lock through WithTx.
func (s *Store) LoadDecisionTx(ctx context.Context, tx *sql.Tx, id string) (*types.Decision, error) {
	return scanDecision(tx.QueryRowContext(ctx, decisionSelect+" WHERE d.id = ?", id))
}

// DecisionsInChainOrder returns every decision ordered by (created_at, id):
// the order the chain is defined over, including the clock-skew tie-break.
func (s *Store) DecisionsInChainOrder(ctx context.Context) ([]*types.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, decisionSelect+" ORDER BY d.created_at ASC, d.id ASC")
	if err != nil {
		return nil, storeErr("decisions in chain order", err)
	}
	defer rows.Close()

	var out []*types.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PredecessorOf returns the decision written immediately before the given one
// in chain order, or nil when the decision is the chain's first.
func (s *Store) PredecessorOf(ctx context.Context, dec *types.Decision) (*types.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	created := dec.CreatedAt.Format(timeFormat)
	row := s.db.QueryRowContext(ctx, decisionSelect+`
		WHERE (d.created_at < ?) OR (d.created_at = ? AND d.id < ?)
		ORDER BY d.created_at DESC, d.id DESC LIMIT 1`,
		created, created, dec.ID)
	prev, err := scanDecision(row)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return prev, nil
}

// SetOutcomeTx marks a decision complete inside a transaction. Returns
// applied=false and leaves the recorded outcome unchanged when it is already
// set; non-empty notes are still appended. Unknown ids yield ErrNotFound.
func (s *Store) SetOutcomeTx(ctx context.Context, tx *sql.Tx, id string, success bool, notes string) (bool, error) {
	var existing sql.NullInt64
	err := tx.QueryRowContext(ctx, "SELECT outcome_success FROM decisions WHERE id = ?", id).Scan(&existing)
	if err == sql.ErrNoRows {
		return false, fmt.Errorf("%w: decision %s", types.ErrNotFound, id)
	}
	if err != nil {
		return false, storeErr("load outcome "+id, err)
	}
	if existing.Valid {
		// First report wins; later reports may only append notes.
		if notes != "" {
			_, err = tx.ExecContext(ctx, `
				UPDATE decisions SET outcome_notes = CASE
					WHEN outcome_notes = '' THEN ?
					ELSE outcome_notes || '; ' || ? END
				WHERE id = ?`, notes, notes, id)
			if err != nil {
				return false, storeErr("append outcome notes "+id, err)
			}
		}
		return false, nil
	}

	outcome := 0
	if success {
		outcome = 1
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE decisions
		SET outcome_success = ?, outcome_notes = ?, outcome_recorded_at = ?
		WHERE id = ?`,
		outcome, notes, time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return false, storeErr("set outcome "+id, err)
	}
	return true, nil
}

func scanDecision(row rowScanner) (*types.Decision, error) {
	var d types.Decision
	var outcome sql.NullInt64
	var recordedAt, createdAt, counsel string
	var pubkey, contentHash, prevHash, sig sql.NullString

	err := row.Scan(&d.ID, &d.Question, &d.Domain, &counsel,
		&outcome, &d.OutcomeNotes, &recordedAt, &createdAt,
		&pubkey, &contentHash, &prevHash, &sig)
	if err != nil {
		return nil, storeErr("decision", err)
	}
	d.CounselJSON = []byte(counsel)
	if outcome.Valid {
		success := outcome.Int64 == 1
		d.OutcomeSuccess = &success
	}
	if recordedAt != "" {
		d.OutcomeRecordedAt, _ = time.Parse(time.RFC3339Nano, recordedAt)
	}
	d.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	d.Provenance = types.ProvenanceInfo{
		AgentPubkey:  pubkey.String,
		ContentHash:  contentHash.String,
		PreviousHash: prevHash.String,
		Signature:    sig.String,
	}
	return &d, nil
}
