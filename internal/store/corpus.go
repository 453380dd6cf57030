package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"minds/internal/logging"
	"minds/internal/types"
)

// InsertThinker writes a thinker, idempotent by id (import time only).
func (s *Store) InsertThinker(ctx context.Context, t types.Thinker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO thinkers (id, name, domain, background)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			domain = excluded.domain,
			background = excluded.background`,
		t.ID, t.Name, t.Domain, t.Background)
	return storeErr("insert thinker "+t.ID, err)
}

// InsertPrinciple writes a principle, idempotent by id (import time only).
func (s *Store) InsertPrinciple(ctx context.Context, p types.Principle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tags, err := json.Marshal(p.DomainTags)
	if err != nil {
		return fmt.Errorf("%w: marshal domain tags for %s: %v", types.ErrCorpusInvariant, p.ID, err)
	}
	stance := p.DefaultStance
	if stance == "" {
		stance = types.StanceNeutral
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO principles (id, thinker_id, name, description, domain_tags,
			falsification, anti_pattern, application_rule, default_stance)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			thinker_id = excluded.thinker_id,
			name = excluded.name,
			description = excluded.description,
			domain_tags = excluded.domain_tags,
			falsification = excluded.falsification,
			anti_pattern = excluded.anti_pattern,
			application_rule = excluded.application_rule,
			default_stance = excluded.default_stance`,
		p.ID, p.ThinkerID, p.Name, p.Description, string(tags),
		p.Falsification, p.AntiPattern, p.ApplicationRule, string(stance))
	return storeErr("insert principle "+p.ID, err)
}

// DeleteThinker removes a thinker; its principles cascade.
func (s *Store) DeleteThinker(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM thinkers WHERE id = ?", id)
	if err != nil {
		return storeErr("delete thinker "+id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: thinker %s", types.ErrNotFound, id)
	}
	return nil
}

// GetThinker loads one thinker.
func (s *Store) GetThinker(ctx context.Context, id string) (types.Thinker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t types.Thinker
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, domain, background FROM thinkers WHERE id = ?", id).
		Scan(&t.ID, &t.Name, &t.Domain, &t.Background)
	if err != nil {
		return types.Thinker{}, storeErr("thinker "+id, err)
	}
	return t, nil
}

// ListThinkers returns all thinkers ordered by id.
func (s *Store) ListThinkers(ctx context.Context) ([]types.Thinker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, domain, background FROM thinkers ORDER BY id")
	if err != nil {
		return nil, storeErr("list thinkers", err)
	}
	defer rows.Close()

	var out []types.Thinker
	for rows.Next() {
		var t types.Thinker
		if err := rows.Scan(&t.ID, &t.Name, &t.Domain, &t.Background); err != nil {
			return nil, storeErr("scan thinker", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetPrinciple loads one principle.
func (s *Store) GetPrinciple(ctx context.Context, id string) (types.Principle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanPrinciple(s.db.QueryRowContext(ctx, principleSelect+" WHERE id = ?", id))
}

// GetPrinciplesByThinker returns a thinker's principles ordered by id.
func (s *Store) GetPrinciplesByThinker(ctx context.Context, thinkerID string) ([]types.Principle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, principleSelect+" WHERE thinker_id = ? ORDER BY id", thinkerID)
	if err != nil {
		return nil, storeErr("principles by thinker "+thinkerID, err)
	}
	defer rows.Close()
	return scanPrinciples(rows)
}

// ListPrinciples returns the whole principle corpus ordered by id.
func (s *Store) ListPrinciples(ctx context.Context) ([]types.Principle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, principleSelect+" ORDER BY id")
	if err != nil {
		return nil, storeErr("list principles", err)
	}
	defer rows.Close()
	return scanPrinciples(rows)
}

// ThinkerNames returns id -> display name for the whole council. Built once
// at startup by callers that resolve positions.
func (s *Store) ThinkerNames(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM thinkers")
	if err != nil {
		return nil, storeErr("thinker names", err)
	}
	defer rows.Close()

	names := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, storeErr("scan thinker name", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}

const principleSelect = `SELECT id, thinker_id, name, description, domain_tags,
	falsification, anti_pattern, application_rule, default_stance FROM principles`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPrinciple(row rowScanner) (types.Principle, error) {
	var p types.Principle
	var tags, stance string
	err := row.Scan(&p.ID, &p.ThinkerID, &p.Name, &p.Description, &tags,
		&p.Falsification, &p.AntiPattern, &p.ApplicationRule, &stance)
	if err != nil {
		return types.Principle{}, storeErr("principle", err)
	}
	if tags != "" {
		if err := json.Unmarshal([]byte(tags), &p.DomainTags); err != nil {
			return types.Principle{}, fmt.Errorf("%w: domain tags of %s: %v", types.ErrCorpusInvariant, p.ID, err)
		}
	}
	p.DefaultStance = types.Stance(stance)
	return p, nil
}

func scanPrinciples(rows *sql.Rows) ([]types.Principle, error) {
	var out []types.Principle
	for rows.Next() {
		p, err := scanPrinciple(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SearchHit is one lexical search result.
type SearchHit struct {
	PrincipleID string
	Score       float64
}

// LexicalSearch tokenises the query and runs a full-text match over
// (name, description, domain_tags). Scores are BM25-style, descending;
// ties break by lexicographic principle id. An optional domain restricts
// hits to principles tagged with it.
func (s *Store) LexicalSearch(ctx context.Context, query, domain string, limit int) ([]SearchHit, error) {
	timer := logging.StartTimer(logging.CategoryStore, "LexicalSearch")
	defer timer.Stop()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}

	keywords := tokenize(query)
	if len(keywords) == 0 {
		return nil, nil
	}
	match := strings.Join(keywords, " OR ")

	q := `
		SELECT p.id, -bm25(principles_fts) AS score
		FROM principles_fts
		JOIN principles p ON principles_fts.rowid = p.rowid
		WHERE principles_fts MATCH ?`
	args := []interface{}{match}
	if domain != "" {
		q += ` AND p.domain_tags LIKE ?`
		args = append(args, `%"`+domain+`"%`)
	}
	q += ` ORDER BY score DESC, p.id ASC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		// FTS5 rejects some token streams; fall back to LIKE like the
		// original search path.
		return s.likeSearch(ctx, keywords, domain, limit)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.PrincipleID, &h.Score); err != nil {
			return nil, storeErr("scan search hit", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("lexical search", err)
	}
	logging.StoreDebug("lexical search %q returned %d hits", query, len(hits))
	return hits, nil
}

// likeSearch is the fallback when FTS rejects the query.
func (s *Store) likeSearch(ctx context.Context, keywords []string, domain string, limit int) ([]SearchHit, error) {
	var conds []string
	var args []interface{}
	for _, kw := range keywords {
		conds = append(conds, "(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)")
		pat := "%" + strings.ToLower(kw) + "%"
		args = append(args, pat, pat)
	}
	q := "SELECT id FROM principles WHERE (" + strings.Join(conds, " OR ") + ")"
	if domain != "" {
		q += " AND domain_tags LIKE ?"
		args = append(args, `%"`+domain+`"%`)
	}
	q += " ORDER BY id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, storeErr("like search", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, storeErr("scan like hit", err)
		}
		hits = append(hits, SearchHit{PrincipleID: id, Score: 0.5})
	}
	return hits, rows.Err()
}

// GetPrinciplesByDomain returns principles tagged with the domain, id order.
func (s *Store) GetPrinciplesByDomain(ctx context.Context, domain string) ([]types.Principle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		principleSelect+" WHERE domain_tags LIKE ? ORDER BY id", `%"`+domain+`"%`)
	if err != nil {
		return nil, storeErr("principles by domain "+domain, err)
	}
	defer rows.Close()
	return scanPrinciples(rows)
}

// tokenize splits a query into FTS-safe keywords, longest first capped at 15
// to keep expanded queries bounded.
func tokenize(query string) []string {
	fields := strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	seen := make(map[string]bool)
	var out []string
	for _, f := range fields {
		if len(f) <= 2 || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, `"`+f+`"`)
	}
	if len(out) > 15 {
		sort.SliceStable(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
		out = out[:15]
	}
	return out
}
