package store

import (
	"context"
)

// WisdomStats summarises the learning flywheel for the stats tool.
type WisdomStats struct {
	Thinkers         int64            `json:"thinkers"`
	Principles       int64            `json:"principles"`
	Decisions        int64            `json:"decisions"`
	RecordedOutcomes int64            `json:"recorded_outcomes"`
	Successes        int64            `json:"successes"`
	SuccessRate      float64          `json:"success_rate"`
	TopPrinciples    []PrincipleStats `json:"top_principles"`
	BottomPrinciples []PrincipleStats `json:"bottom_principles"`
}

// PrincipleStats is one principle's posterior summary.
type PrincipleStats struct {
	PrincipleID string  `json:"principle_id"`
	Name        string  `json:"name"`
	Rho         float64 `json:"rho"`
	Pulls       int64   `json:"pulls"`
}

// Stats aggregates totals plus the top and bottom principles by posterior
// mean (pulled principles only).
func (s *Store) Stats(ctx context.Context) (*WisdomStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := &WisdomStats{}
	counts := []struct {
		query string
		dst   *int64
	}{
		{"SELECT COUNT(*) FROM thinkers", &out.Thinkers},
		{"SELECT COUNT(*) FROM principles", &out.Principles},
		{"SELECT COUNT(*) FROM decisions", &out.Decisions},
		{"SELECT COUNT(*) FROM decisions WHERE outcome_success IS NOT NULL", &out.RecordedOutcomes},
		{"SELECT COUNT(*) FROM decisions WHERE outcome_success = 1", &out.Successes},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, storeErr("stats", err)
		}
	}
	if out.RecordedOutcomes > 0 {
		out.SuccessRate = float64(out.Successes) / float64(out.RecordedOutcomes)
	}

	rank := func(order string) ([]PrincipleStats, error) {
		rows, err := s.db.QueryContext(ctx, `
			SELECT a.principle_id, p.name, a.alpha / (a.alpha + a.beta) AS rho, a.pulls
			FROM thompson_arms a JOIN principles p ON p.id = a.principle_id
			WHERE a.pulls > 0
			ORDER BY rho `+order+`, a.principle_id LIMIT 5`)
		if err != nil {
			return nil, storeErr("stats rank", err)
		}
		defer rows.Close()
		var list []PrincipleStats
		for rows.Next() {
			var ps PrincipleStats
			if err := rows.Scan(&ps.PrincipleID, &ps.Name, &ps.Rho, &ps.Pulls); err != nil {
				return nil, storeErr("scan stats", err)
			}
			list = append(list, ps)
		}
		return list, rows.Err()
	}

	var err error
	if out.TopPrinciples, err = rank("DESC"); err != nil {
		return nil, err
	}
	if out.BottomPrinciples, err = rank("ASC"); err != nil {
		return nil, err
	}
	return out, nil
}
