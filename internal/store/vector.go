package store

import (
	"context"
	"encoding/binary"
	"math"

	"minds/internal/logging"
)

// Embedding vectors are stored as little-endian float32 blobs, the layout
// vec_distance_cosine expects under both drivers. Vectors are L2-normalised
// on store.

// UpsertEmbedding stores a principle's embedding vector.
func (s *Store) UpsertEmbedding(ctx context.Context, principleID string, vec []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	normalized := l2Normalize(vec)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (principle_id, vector, dim)
		VALUES (?, ?, ?)
		ON CONFLICT(principle_id) DO UPDATE SET
			vector = excluded.vector,
			dim = excluded.dim`,
		principleID, encodeVector(normalized), len(normalized))
	return storeErr("upsert embedding "+principleID, err)
}

// SemanticHit is one semantic search result.
type SemanticHit struct {
	PrincipleID string
	Score       float64 // cosine similarity in (-1, 1)
}

// SemanticSearch ranks principles by cosine similarity to the query vector.
// Results are filtered to score >= 0 and sorted descending; ties break by id.
func (s *Store) SemanticSearch(ctx context.Context, queryVec []float32, limit int) ([]SemanticHit, error) {
	timer := logging.StartTimer(logging.CategoryStore, "SemanticSearch")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	query := encodeVector(l2Normalize(queryVec))

	rows, err := s.db.QueryContext(ctx, `
		SELECT principle_id, score FROM (
			SELECT principle_id, 1.0 - vec_distance_cosine(vector, ?) AS score
			FROM embeddings WHERE dim = ?
		)
		WHERE score >= 0
		ORDER BY score DESC, principle_id ASC
		LIMIT ?`,
		query, len(queryVec), limit)
	if err != nil {
		return nil, storeErr("semantic search", err)
	}
	defer rows.Close()

	var hits []SemanticHit
	for rows.Next() {
		var h SemanticHit
		if err := rows.Scan(&h.PrincipleID, &h.Score); err != nil {
			return nil, storeErr("scan semantic hit", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("semantic search", err)
	}
	logging.StoreDebug("semantic search returned %d hits", len(hits))
	return hits, nil
}

// EmbeddingCount reports how many principles have vectors.
func (s *Store) EmbeddingCount(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM embeddings").Scan(&n)
	return n, storeErr("embedding count", err)
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, f := range vec {
		sum += float64(f) * float64(f)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	out := make([]float32, len(vec))
	for i, f := range vec {
		out[i] = float32(float64(f) / norm)
	}
	return out
}
