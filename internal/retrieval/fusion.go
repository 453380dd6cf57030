package retrieval

import (
	"sort"
)

// Ranked is one entry of a retriever's result stream.
type Ranked struct {
	PrincipleID string
	Rank        int // 1-based rank within the source
	Score       float64
}

// RRF computes reciprocal rank fusion over named source streams:
// score(p) = sum over sources of 1/(k + rank_s(p)).
// Pure function, easy to test in isolation.
func RRF(k float64, sources ...[]Ranked) map[string]float64 {
	fused := make(map[string]float64)
	for _, src := range sources {
		for _, r := range src {
			fused[r.PrincipleID] += 1 / (k + float64(r.Rank))
		}
	}
	return fused
}

// normalizeScores maps raw source scores to [0, 1] by dividing by the max.
func normalizeScores(src []Ranked) map[string]float64 {
	out := make(map[string]float64, len(src))
	var max float64
	for _, r := range src {
		if r.Score > max {
			max = r.Score
		}
	}
	if max <= 0 {
		return out
	}
	for _, r := range src {
		out[r.PrincipleID] = r.Score / max
	}
	return out
}

// rankStream assigns 1-based ranks in slice order.
func rankStream(ids []string, scores map[string]float64) []Ranked {
	out := make([]Ranked, 0, len(ids))
	for i, id := range ids {
		out = append(out, Ranked{PrincipleID: id, Rank: i + 1, Score: scores[id]})
	}
	return out
}

// sortedIDs returns map keys in deterministic order for iteration.
func sortedIDs(m map[string]float64) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
