// Package outcome closes the learning loop: it applies asymmetric Bayesian
// updates to principle posteriors when callers report how a decision played
// out. Failures are punished twice as strongly as successes are rewarded.
package outcome

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"minds/internal/config"
	"minds/internal/logging"
	"minds/internal/store"
	"minds/internal/types"
)

// Result reports what one outcome call changed.
type Result struct {
	DecisionID          string                      `json:"decision_id"`
	Applied             bool                        `json:"applied"` // false when the outcome was already recorded
	PrinciplesAdjusted  []types.PrincipleAdjustment `json:"principles_adjusted"`
	NewConfidences      map[string]float64          `json:"new_confidences"`
}

// Updater applies outcome reports through the store's write queue.
type Updater struct {
	store *store.Store
	cfg   config.LearningConfig
}

// New creates an updater with the configured learning deltas.
func New(st *store.Store, cfg config.LearningConfig) *Updater {
	return &Updater{store: st, cfg: cfg}
}

// Record applies one outcome. The first report on a decision id wins;
// subsequent reports append notes but leave posteriors untouched. Unknown
// decision ids surface ErrNotFound.
func (u *Updater) Record(ctx context.Context, req types.OutcomeRequest) (*Result, error) {
	timer := logging.StartTimer(logging.CategoryOutcome, "Record")
	defer timer.Stop()

	if req.DecisionID == "" {
		return nil, fmt.Errorf("%w: empty decision_id", types.ErrInvalidInput)
	}

	var result *Result
	err := u.store.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		result, err = u.recordTx(ctx, tx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	logging.Outcome("decision %s outcome=%v applied=%v adjusted=%d",
		req.DecisionID, req.Success, result.Applied, len(result.PrinciplesAdjusted))
	return result, nil
}

// RecordBatch applies a vector of outcomes transactionally: one failing
// report rolls back the whole batch.
func (u *Updater) RecordBatch(ctx context.Context, reqs []types.OutcomeRequest) ([]*Result, error) {
	timer := logging.StartTimer(logging.CategoryOutcome, "RecordBatch")
	defer timer.Stop()

	var results []*Result
	err := u.store.WithTx(ctx, func(tx *sql.Tx) error {
		for _, req := range reqs {
			if req.DecisionID == "" {
				return fmt.Errorf("%w: empty decision_id in batch", types.ErrInvalidInput)
			}
			r, err := u.recordTx(ctx, tx, req)
			if err != nil {
				return err
			}
			results = append(results, r)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// recordTx is the shared single-decision path. Callers own the transaction.
func (u *Updater) recordTx(ctx context.Context, tx *sql.Tx, req types.OutcomeRequest) (*Result, error) {
	dec, err := u.store.LoadDecisionTx(ctx, tx, req.DecisionID)
	if err != nil {
		return nil, err
	}

	applied, err := u.store.SetOutcomeTx(ctx, tx, req.DecisionID, req.Success, req.Notes)
	if err != nil {
		return nil, err
	}

	result := &Result{
		DecisionID:     req.DecisionID,
		Applied:        applied,
		NewConfidences: make(map[string]float64),
	}
	principleIDs, domain := citedPrinciples(dec)
	if req.Domain != "" {
		domain = req.Domain
	}

	if !applied {
		// Idempotent second report: existing posteriors, no re-application.
		for _, pid := range principleIDs {
			arm, err := u.readArmTx(ctx, tx, pid)
			if err != nil {
				return nil, err
			}
			result.NewConfidences[pid] = arm.Rho()
		}
		return result, nil
	}

	for _, pid := range principleIDs {
		before, err := u.readArmTx(ctx, tx, pid)
		if err != nil {
			return nil, err
		}
		after, err := u.store.BumpArmTx(ctx, tx, pid, req.Success, u.cfg.SuccessDelta, u.cfg.FailureDelta)
		if err != nil {
			return nil, err
		}
		if domain != "" {
			if err := u.store.BumpContextualArmTx(ctx, tx, pid, domain, req.Success, u.cfg.SuccessDelta, u.cfg.FailureDelta); err != nil {
				return nil, err
			}
		}
		result.PrinciplesAdjusted = append(result.PrinciplesAdjusted, types.PrincipleAdjustment{
			PrincipleID: pid,
			OldRho:      before.Rho(),
			NewRho:      after.Rho(),
			Pulls:       after.Pulls,
		})
		result.NewConfidences[pid] = after.Rho()
	}
	return result, nil
}

// readArmTx reads a global arm within the transaction, Beta(1,1) default.
func (u *Updater) readArmTx(ctx context.Context, tx *sql.Tx, principleID string) (types.ArmPosterior, error) {
	arm := types.UniformArm(principleID)
	err := tx.QueryRowContext(ctx,
		"SELECT alpha, beta, pulls FROM thompson_arms WHERE principle_id = ?", principleID).
		Scan(&arm.Alpha, &arm.Beta, &arm.Pulls)
	if err == sql.ErrNoRows {
		return arm, nil
	}
	if err != nil {
		return arm, fmt.Errorf("%w: read arm %s: %v", types.ErrStoreUnavailable, principleID, err)
	}
	return arm, nil
}

// citedPrinciples extracts the principle ids and domain from the stored
// counsel. The challenge's synthetic citations are not principles and are
// never adjusted.
func citedPrinciples(dec *types.Decision) ([]string, string) {
	var counsel types.CounselResponse
	if err := json.Unmarshal(dec.CounselJSON, &counsel); err != nil {
		logging.Get(logging.CategoryOutcome).Warn("unparseable counsel for %s: %v", dec.ID, err)
		return nil, dec.Domain
	}

	seen := map[string]bool{}
	var ids []string
	for _, id := range counsel.PrincipleIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	domain := counsel.Domain
	if domain == "" {
		domain = dec.Domain
	}
	return ids, domain
}

// SyncPosteriors exports every posterior, global and contextual, for
// distributed workers that keep a local copy.
type SyncPosteriorsResponse struct {
	Posteriors map[string]types.ArmPosterior            `json:"posteriors"`
	Domains    map[string]map[string]types.ArmPosterior `json:"domains"`
}

// SyncPosteriors snapshots all arms.
func (u *Updater) SyncPosteriors(ctx context.Context) (*SyncPosteriorsResponse, error) {
	arms, err := u.store.AllArms(ctx)
	if err != nil {
		return nil, err
	}
	contextual, err := u.store.AllContextualArms(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SyncPosteriorsResponse{
		Posteriors: make(map[string]types.ArmPosterior, len(arms)),
		Domains:    make(map[string]map[string]types.ArmPosterior, len(contextual)),
	}
	for _, a := range arms {
		resp.Posteriors[a.PrincipleID] = a
	}
	for domain, list := range contextual {
		m := make(map[string]types.ArmPosterior, len(list))
		for _, a := range list {
			m[a.PrincipleID] = a
		}
		resp.Domains[domain] = m
	}
	return resp, nil
}
