// Package sqlite implements storage.Sink for SQLite.
//
// Key design point: SQLite has no native TIMESTAMPTZ type, so extracted_at is
// stored as an RFC3339Nano string for reliable round-trip behavior and easy
// debugging.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"extract/internal/storage"
)

// Sink implements storage.Sink for SQLite via database/sql.
type Sink struct {
	db    *sql.DB
	table string
}

func init() {
	storage.Register("sqlite", New)
}

// New opens (or creates) the SQLite database at cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Sink{db: db, table: cfg.Table}, nil
}

func (s *Sink) Close() { _ = s.db.Close() }

// EnsureSchema creates the records table if it does not exist. Idempotent so
// command startup never depends on prior runs.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		source TEXT NOT NULL,
		position INTEGER NOT NULL,
		payload TEXT NOT NULL,
		extracted_at TEXT NOT NULL
	)`, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite ensure schema: %w", err)
	}
	return nil
}

// InsertRecords appends records in one transaction.
func (s *Sink) InsertRecords(ctx context.Context, records []storage.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (source, position, payload, extracted_at) VALUES (?, ?, ?, ?)", s.table,
	))
	if err != nil {
		return 0, fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	var n int64
	for _, rec := range records {
		payload, err := json.Marshal(rec.Fields)
		if err != nil {
			return 0, fmt.Errorf("sqlite marshal payload: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Source, rec.Position, string(payload), now); err != nil {
			return 0, fmt.Errorf("sqlite insert: %w", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlite commit: %w", err)
	}
	return n, nil
}

var _ storage.Sink = (*Sink)(nil)
