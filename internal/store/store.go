// Package store implements the corpus store: durable storage for thinkers,
// principles, decisions, outcomes, and Thompson posteriors, plus the lexical
// (FTS5) and semantic (embedding) indexes over principles.
//
// The store exclusively owns all persisted state. Other components borrow
// read snapshots or submit write intents through it; writes are serialised
// behind a single mutex on top of SQLite's WAL.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"minds/internal/logging"
	"minds/internal/types"
)

// Store wraps the SQLite database holding the whole corpus.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string

	// lastCreated backs monotonic created_at assignment; guarded by mu.
	lastCreated time.Time
}

// Open initialises the database at path, creating schema as needed.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", types.ErrStoreUnavailable, err)
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %v", types.ErrStoreUnavailable, err)
	}
	// Single writer through s.mu; the pool must not spawn competing writers.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("store opened at %s (driver=%s)", path, driverName)
	return s, nil
}

// initialize applies pragmas and creates tables.
func (s *Store) initialize() error {
	if _, err := s.db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		return fmt.Errorf("%w: set pragmas: %v", types.ErrStoreUnavailable, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS thinkers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		domain TEXT NOT NULL,
		background TEXT DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS principles (
		id TEXT PRIMARY KEY,
		thinker_id TEXT NOT NULL REFERENCES thinkers(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		domain_tags TEXT DEFAULT '[]',
		falsification TEXT DEFAULT '',
		anti_pattern TEXT DEFAULT '',
		application_rule TEXT DEFAULT '',
		default_stance TEXT DEFAULT 'neutral',
		UNIQUE(thinker_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_principles_thinker ON principles(thinker_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS principles_fts USING fts5(
		name,
		description,
		domain_tags,
		content=principles,
		content_rowid=rowid
	);

	CREATE TRIGGER IF NOT EXISTS principles_ai AFTER INSERT ON principles BEGIN
		INSERT INTO principles_fts(rowid, name, description, domain_tags)
		VALUES (new.rowid, new.name, new.description, new.domain_tags);
	END;
	CREATE TRIGGER IF NOT EXISTS principles_ad AFTER DELETE ON principles BEGIN
		INSERT INTO principles_fts(principles_fts, rowid, name, description, domain_tags)
		VALUES ('delete', old.rowid, old.name, old.description, old.domain_tags);
	END;
	CREATE TRIGGER IF NOT EXISTS principles_au AFTER UPDATE ON principles BEGIN
		INSERT INTO principles_fts(principles_fts, rowid, name, description, domain_tags)
		VALUES ('delete', old.rowid, old.name, old.description, old.domain_tags);
		INSERT INTO principles_fts(rowid, name, description, domain_tags)
		VALUES (new.rowid, new.name, new.description, new.domain_tags);
	END;

	CREATE TABLE IF NOT EXISTS embeddings (
		principle_id TEXT PRIMARY KEY REFERENCES principles(id) ON DELETE CASCADE,
		vector BLOB NOT NULL,
		dim INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS decisions (
		id TEXT PRIMARY KEY,
		question TEXT NOT NULL,
		domain TEXT DEFAULT '',
		counsel_json TEXT NOT NULL,
		outcome_success INTEGER,
		outcome_notes TEXT DEFAULT '',
		outcome_recorded_at TEXT DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created_at, id);

	CREATE TABLE IF NOT EXISTS provenance (
		decision_id TEXT PRIMARY KEY REFERENCES decisions(id),
		agent_pubkey TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		previous_hash TEXT NOT NULL,
		signature TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS thompson_arms (
		principle_id TEXT PRIMARY KEY REFERENCES principles(id) ON DELETE CASCADE,
		alpha REAL NOT NULL DEFAULT 1.0,
		beta REAL NOT NULL DEFAULT 1.0,
		pulls INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS contextual_arms (
		principle_id TEXT NOT NULL REFERENCES principles(id) ON DELETE CASCADE,
		domain TEXT NOT NULL,
		alpha REAL NOT NULL DEFAULT 1.0,
		beta REAL NOT NULL DEFAULT 1.0,
		sample_count INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(principle_id, domain)
	);
	CREATE INDEX IF NOT EXISTS idx_contextual_arms_domain ON contextual_arms(domain);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("%w: create schema: %v", types.ErrStoreUnavailable, err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	logging.Store("store closed: %s", s.dbPath)
	return s.db.Close()
}

// WithTx runs fn inside a serialised write transaction. Any error rolls the
// whole transaction back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", types.ErrStoreUnavailable, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", types.ErrStoreUnavailable, err)
	}
	return nil
}

// storeErr classifies a driver error into the engine taxonomy.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", types.ErrNotFound, op)
	}
	msg := err.Error()
	if strings.Contains(msg, "constraint") || strings.Contains(msg, "UNIQUE") ||
		strings.Contains(msg, "FOREIGN KEY") {
		return fmt.Errorf("%w: %s: %v", types.ErrCorpusInvariant, op, err)
	}
	return fmt.Errorf("%w: %s: %v", types.ErrStoreUnavailable, op, err)
}
