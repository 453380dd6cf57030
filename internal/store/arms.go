package store

import (
	"context"
	"database/sql"
	"time"

	"minds/internal/types"
)

// GetArm returns the global posterior for a principle, Beta(1,1) when the
// principle has never been pulled.
func (s *Store) GetArm(ctx context.Context, principleID string) (types.ArmPosterior, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readArm(ctx, s.db, principleID)
}

// GetContextualArm returns the (principle, domain) posterior and whether it
// exists.
func (s *Store) GetContextualArm(ctx context.Context, principleID, domain string) (types.ArmPosterior, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	arm := types.ArmPosterior{PrincipleID: principleID, Domain: domain, Alpha: 1, Beta: 1}
	var updated string
	err := s.db.QueryRowContext(ctx, `
		SELECT alpha, beta, sample_count, updated_at
		FROM contextual_arms WHERE principle_id = ? AND domain = ?`,
		principleID, domain).Scan(&arm.Alpha, &arm.Beta, &arm.Pulls, &updated)
	if err == sql.ErrNoRows {
		return arm, false, nil
	}
	if err != nil {
		return arm, false, storeErr("contextual arm", err)
	}
	arm.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return arm, true, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) readArm(ctx context.Context, q queryRower, principleID string) (types.ArmPosterior, error) {
	arm := types.UniformArm(principleID)
	var updated string
	err := q.QueryRowContext(ctx, `
		SELECT alpha, beta, pulls, updated_at
		FROM thompson_arms WHERE principle_id = ?`, principleID).
		Scan(&arm.Alpha, &arm.Beta, &arm.Pulls, &updated)
	if err == sql.ErrNoRows {
		return arm, nil
	}
	if err != nil {
		return arm, storeErr("arm "+principleID, err)
	}
	arm.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return arm, nil
}

// ArmSnapshot returns global and contextual posteriors for a candidate set
// in two single reads, so the sampler never observes a torn (alpha, beta).
func (s *Store) ArmSnapshot(ctx context.Context, domain string) (global map[string]types.ArmPosterior, contextual map[string]types.ArmPosterior, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	global = make(map[string]types.ArmPosterior)
	contextual = make(map[string]types.ArmPosterior)

	rows, err := s.db.QueryContext(ctx,
		"SELECT principle_id, alpha, beta, pulls FROM thompson_arms")
	if err != nil {
		return nil, nil, storeErr("arm snapshot", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a types.ArmPosterior
		if err := rows.Scan(&a.PrincipleID, &a.Alpha, &a.Beta, &a.Pulls); err != nil {
			return nil, nil, storeErr("scan arm", err)
		}
		global[a.PrincipleID] = a
	}
	if err := rows.Err(); err != nil {
		return nil, nil, storeErr("arm snapshot", err)
	}

	if domain == "" {
		return global, contextual, nil
	}
	crows, err := s.db.QueryContext(ctx, `
		SELECT principle_id, alpha, beta, sample_count
		FROM contextual_arms WHERE domain = ?`, domain)
	if err != nil {
		return nil, nil, storeErr("contextual snapshot", err)
	}
	defer crows.Close()
	for crows.Next() {
		a := types.ArmPosterior{Domain: domain}
		if err := crows.Scan(&a.PrincipleID, &a.Alpha, &a.Beta, &a.Pulls); err != nil {
			return nil, nil, storeErr("scan contextual arm", err)
		}
		contextual[a.PrincipleID] = a
	}
	return global, contextual, crows.Err()
}

// BumpArmTx applies one asymmetric update to the global posterior inside a
// transaction and returns the new state.
func (s *Store) BumpArmTx(ctx context.Context, tx *sql.Tx, principleID string, success bool, successDelta, failureDelta float64) (types.ArmPosterior, error) {
	alphaDelta, betaDelta := 0.0, 0.0
	if success {
		alphaDelta = successDelta
	} else {
		betaDelta = failureDelta
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO thompson_arms (principle_id, alpha, beta, pulls, updated_at)
		VALUES (?, 1.0 + ?, 1.0 + ?, 1, ?)
		ON CONFLICT(principle_id) DO UPDATE SET
			alpha = alpha + ?,
			beta = beta + ?,
			pulls = pulls + 1,
			updated_at = ?`,
		principleID, alphaDelta, betaDelta, now,
		alphaDelta, betaDelta, now)
	if err != nil {
		return types.ArmPosterior{}, storeErr("bump arm "+principleID, err)
	}

	arm := types.UniformArm(principleID)
	var updated string
	err = tx.QueryRowContext(ctx, `
		SELECT alpha, beta, pulls, updated_at
		FROM thompson_arms WHERE principle_id = ?`, principleID).
		Scan(&arm.Alpha, &arm.Beta, &arm.Pulls, &updated)
	if err != nil {
		return arm, storeErr("reload arm "+principleID, err)
	}
	arm.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
	return arm, nil
}

// BumpContextualArmTx applies the identical update to the (principle, domain)
// posterior.
func (s *Store) BumpContextualArmTx(ctx context.Context, tx *sql.Tx, principleID, domain string, success bool, successDelta, failureDelta float64) error {
	alphaDelta, betaDelta := 0.0, 0.0
	if success {
		alphaDelta = successDelta
	} else {
		betaDelta = failureDelta
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO contextual_arms (principle_id, domain, alpha, beta, sample_count, updated_at)
		VALUES (?, ?, 1.0 + ?, 1.0 + ?, 1, ?)
		ON CONFLICT(principle_id, domain) DO UPDATE SET
			alpha = alpha + ?,
			beta = beta + ?,
			sample_count = sample_count + 1,
			updated_at = ?`,
		principleID, domain, alphaDelta, betaDelta, now,
		alphaDelta, betaDelta, now)
	return storeErr("bump contextual arm "+principleID, err)
}

// AllArms returns every global posterior, principle-id order.
func (s *Store) AllArms(ctx context.Context) ([]types.ArmPosterior, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT principle_id, alpha, beta, pulls, updated_at
		FROM thompson_arms ORDER BY principle_id`)
	if err != nil {
		return nil, storeErr("all arms", err)
	}
	defer rows.Close()

	var out []types.ArmPosterior
	for rows.Next() {
		var a types.ArmPosterior
		var updated string
		if err := rows.Scan(&a.PrincipleID, &a.Alpha, &a.Beta, &a.Pulls, &updated); err != nil {
			return nil, storeErr("scan arm", err)
		}
		a.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updated)
		out = append(out, a)
	}
	return out, rows.Err()
}

// AllContextualArms returns every contextual posterior grouped by domain.
func (s *Store) AllContextualArms(ctx context.Context) (map[string][]types.ArmPosterior, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT principle_id, domain, alpha, beta, sample_count
		FROM contextual_arms ORDER BY domain, principle_id`)
	if err != nil {
		return nil, storeErr("all contextual arms", err)
	}
	defer rows.Close()

	out := make(map[string][]types.ArmPosterior)
	for rows.Next() {
		var a types.ArmPosterior
		if err := rows.Scan(&a.PrincipleID, &a.Domain, &a.Alpha, &a.Beta, &a.Pulls); err != nil {
			return nil, storeErr("scan contextual arm", err)
		}
		out[a.Domain] = append(out[a.Domain], a)
	}
	return out, rows.Err()
}
