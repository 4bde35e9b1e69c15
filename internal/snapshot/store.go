// Package snapshot persists catalog snapshots in SQLite so deltas can
// be computed across process runs.
//
// Persistence round-trips item identity, digest, size, kind, tags,
// last-changed time, and the scoring excerpt faithfully: a loaded
// snapshot must score identically to the scan it came from, because
// cached scores are validated by digest alone.
package snapshot

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/MarianaDuarte/focal/internal/catalog"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeLayout is RFC 3339 with fixed-width nanoseconds. RFC3339Nano
// trims trailing fraction zeros, which breaks the lexical ORDER BY on
// taken_at for snapshots taken within the same second; padding keeps
// string order equal to time order for UTC timestamps.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultDataDir returns where the snapshot database lives.
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".focal")
}

// Store is the snapshot history backed by SQLite.
type Store struct {
	db *sql.DB
}

// Open creates the data directory if needed, opens the database with
// WAL mode, and runs migrations.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("snapshot: create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("snapshot: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id       TEXT PRIMARY KEY,
			scope    TEXT NOT NULL,
			taken_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_scope ON snapshots(scope, taken_at DESC);

		CREATE TABLE IF NOT EXISTS snapshot_items (
			snapshot_id  TEXT NOT NULL REFERENCES snapshots(id) ON DELETE CASCADE,
			item_id      TEXT NOT NULL,
			kind         TEXT NOT NULL,
			size_bytes   INTEGER NOT NULL,
			digest       TEXT NOT NULL,
			last_changed TEXT NOT NULL,
			tags         TEXT NOT NULL DEFAULT '[]',
			excerpt      TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (snapshot_id, item_id)
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save persists a snapshot and all its items in one transaction.
func (s *Store) Save(snap *catalog.Snapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO snapshots (id, scope, taken_at) VALUES (?, ?, ?)",
		snap.ID, snap.Scope, snap.TakenAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("snapshot: insert snapshot: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO snapshot_items (snapshot_id, item_id, kind, size_bytes, digest, last_changed, tags, excerpt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare items: %w", err)
	}
	defer stmt.Close()

	for _, it := range snap.Items {
		tags, err := json.Marshal(it.Tags)
		if err != nil {
			return fmt.Errorf("snapshot: marshal tags for %s: %w", it.ID, err)
		}
		_, err = stmt.Exec(
			snap.ID, it.ID, string(it.Kind), it.SizeBytes, it.Digest,
			it.LastChanged.UTC().Format(timeLayout), string(tags), it.Excerpt,
		)
		if err != nil {
			return fmt.Errorf("snapshot: insert item %s: %w", it.ID, err)
		}
	}

	return tx.Commit()
}

// Latest returns the most recent snapshot for a scope, or nil (not an
// error) when none has been saved yet.
func (s *Store) Latest(scope string) (*catalog.Snapshot, error) {
	var (
		id      string
		takenAt string
	)
	err := s.db.QueryRow(
		"SELECT id, taken_at FROM snapshots WHERE scope = ? ORDER BY taken_at DESC LIMIT 1",
		scope,
	).Scan(&id, &takenAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("snapshot: query latest: %w", err)
	}

	taken, err := time.Parse(time.RFC3339Nano, takenAt)
	if err != nil {
		return nil, fmt.Errorf("snapshot: parse taken_at: %w", err)
	}

	items, err := s.loadItems(id)
	if err != nil {
		return nil, err
	}
	return catalog.NewSnapshot(id, scope, taken, items), nil
}

func (s *Store) loadItems(snapshotID string) ([]catalog.Item, error) {
	rows, err := s.db.Query(`
		SELECT item_id, kind, size_bytes, digest, last_changed, tags, excerpt
		FROM snapshot_items WHERE snapshot_id = ? ORDER BY item_id
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("snapshot: query items: %w", err)
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var (
			it          catalog.Item
			kind        string
			lastChanged string
			tags        string
		)
		if err := rows.Scan(&it.ID, &kind, &it.SizeBytes, &it.Digest, &lastChanged, &tags, &it.Excerpt); err != nil {
			return nil, fmt.Errorf("snapshot: scan item: %w", err)
		}
		it.Kind = catalog.Kind(kind)
		if t, err := time.Parse(time.RFC3339Nano, lastChanged); err == nil {
			it.LastChanged = t
		}
		if err := json.Unmarshal([]byte(tags), &it.Tags); err != nil {
			return nil, fmt.Errorf("snapshot: parse tags for %s: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Prune deletes all but the newest keep snapshots for a scope. Item
// rows go with them via the cascade.
func (s *Store) Prune(scope string, keep int) error {
	if keep < 1 {
		keep = 1
	}
	_, err := s.db.Exec(`
		DELETE FROM snapshots WHERE scope = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE scope = ? ORDER BY taken_at DESC LIMIT ?
		)
	`, scope, scope, keep)
	if err != nil {
		return fmt.Errorf("snapshot: prune: %w", err)
	}
	return nil
}

// Scopes lists all scopes with at least one saved snapshot.
func (s *Store) Scopes() ([]string, error) {
	rows, err := s.db.Query("SELECT DISTINCT scope FROM snapshots ORDER BY scope")
	if err != nil {
		return nil, fmt.Errorf("snapshot: query scopes: %w", err)
	}
	defer rows.Close()

	var scopes []string
	for rows.Next() {
		var scope string
		if err := rows.Scan(&scope); err != nil {
			return nil, fmt.Errorf("snapshot: scan scope: %w", err)
		}
		scopes = append(scopes, scope)
	}
	return scopes, rows.Err()
}
