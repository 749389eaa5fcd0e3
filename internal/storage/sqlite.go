package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the snapshot document in a single-row table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS room_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			document TEXT NOT NULL,
			saved_at INTEGER NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("initialising sqlite: %w", err)
		}
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*Snapshot, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT document FROM room_snapshot WHERE id = 1").Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(doc), &snap); err != nil {
		return nil, fmt.Errorf("unmarshalling snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	snap.LastSaved = s.now().UnixMilli()

	doc, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshalling json: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO room_snapshot (id, document, saved_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET document = excluded.document, saved_at = excluded.saved_at`,
		string(doc), snap.LastSaved)
	if err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
