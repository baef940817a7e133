// Package mssql implements storage.Sink for Microsoft SQL Server.
//
// Note on driver registration: this package intentionally does NOT blank
// import a SQL Server driver. The command must register the "sqlserver"
// driver (cmd packages blank-import github.com/microsoft/go-mssqldb), which
// keeps this package testable against a stub driver.
package mssql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"extract/internal/storage"
)

// Sink implements storage.Sink for SQL Server via database/sql.
type Sink struct {
	db    *sql.DB
	table string
}

func init() {
	storage.Register("mssql", New)
}

// New opens a connection using the registered "sqlserver" driver and
// validates connectivity via PingContext.
func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// EnsureSchema creates the records table if it does not exist.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`IF OBJECT_ID(N'%s', N'U') IS NULL
		CREATE TABLE %s (
			source NVARCHAR(1024) NOT NULL,
			position INT NOT NULL,
			payload NVARCHAR(MAX) NOT NULL,
			extracted_at DATETIMEOFFSET NOT NULL
		)`, s.table, s.table)
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("mssql ensure schema: %w", err)
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
		return 0, fmt.Errorf("mssql begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (source, position, payload, extracted_at) VALUES (@p1, @p2, @p3, @p4)", s.table,
	))
	if err != nil {
		return 0, fmt.Errorf("mssql prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	var n int64
	for _, rec := range records {
		payload, err := json.Marshal(rec.Fields)
		if err != nil {
			return 0, fmt.Errorf("mssql marshal payload: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, rec.Source, rec.Position, string(payload), now); err != nil {
			return 0, fmt.Errorf("mssql insert: %w", err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("mssql commit: %w", err)
	}
	return n, nil
}

var _ storage.Sink = (*Sink)(nil)
