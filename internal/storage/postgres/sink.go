// Package postgres implements storage.Sink for Postgres using pgx.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"extract/internal/storage"
)

// Sink implements storage.Sink for Postgres.
type Sink struct {
	pool  *pgxpool.Pool
	table string
}

func init() {
	storage.Register("postgres", New)
}

// New creates a connection pool for cfg.DSN.
func New(ctx context.Context, cfg storage.Config) (storage.Sink, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	return &Sink{pool: pool, table: cfg.Table}, nil
}

// Close closes the connection pool.
func (s *Sink) Close() { s.pool.Close() }

// EnsureSchema creates the records table if it does not exist. The payload
// column is JSONB so ad-hoc queries over extracted fields stay cheap.
func (s *Sink) EnsureSchema(ctx context.Context) error {
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		source TEXT NOT NULL,
		position INT NOT NULL,
		payload JSONB NOT NULL,
		extracted_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`, s.table)
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("postgres ensure schema: %w", err)
	}
	return nil
}

// InsertRecords appends records in one batched round trip.
func (s *Sink) InsertRecords(ctx context.Context, records []storage.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}

	sql := fmt.Sprintf("INSERT INTO %s (source, position, payload) VALUES ($1, $2, $3)", s.table)

	batch := &pgx.Batch{}
	for _, rec := range records {
		payload, err := json.Marshal(rec.Fields)
		if err != nil {
			return 0, fmt.Errorf("postgres marshal payload: %w", err)
		}
		batch.Queue(sql, rec.Source, rec.Position, payload)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	var n int64
	for range records {
		tag, err := br.Exec()
		if err != nil {
			return n, fmt.Errorf("postgres insert: %w", err)
		}
		n += tag.RowsAffected()
	}
	return n, nil
}

var _ storage.Sink = (*Sink)(nil)
