// Package storage persists extracted records behind a backend-agnostic Sink
// interface.
//
// Backends register themselves by kind (sqlite, postgres, mssql); commands
// select one with a -db flag. The schema is deliberately generic — one row
// per extracted record with its source and position plus the record payload
// as JSON — because field sets vary per mapping file and per call.
package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// DefaultTable is used when Config.Table is empty.
const DefaultTable = "extracted_records"

// Config selects and configures a sink backend.
//
// Edge cases:
//   - Kind must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
//   - Table must be a plain SQL identifier; it is interpolated into DDL.
type Config struct {
	Kind  string
	DSN   string
	Table string
}

// Record is one extracted record with its provenance.
type Record struct {
	// Source identifies the page the record came from (file name, URL, or
	// "stdin").
	Source string

	// Position is the record's index within its source document.
	Position int

	// Fields is the extracted field map.
	Fields map[string]string
}

// Sink persists extracted records.
//
// Implementations must be safe for sequential use by one command; they are
// not required to support concurrent InsertRecords calls.
type Sink interface {
	// EnsureSchema creates the backing table if needed. Idempotent.
	EnsureSchema(ctx context.Context) error

	// InsertRecords appends records and returns the number inserted.
	InsertRecords(ctx context.Context, records []Record) (int64, error)

	// Close releases backend resources. Call once at shutdown.
	Close()
}

// Factory constructs a Sink for a validated Config.
type Factory func(ctx context.Context, cfg Config) (Sink, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register makes a backend available under kind. Backend packages call this
// from init(); registering the same kind twice panics.
func Register(kind string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[kind]; dup {
		panic(fmt.Sprintf("storage: duplicate backend kind %q", kind))
	}
	registry[kind] = f
}

// New constructs a Sink for cfg.
//
// Errors:
//   - Unknown or empty Kind.
//   - Invalid Table identifier.
//   - Any backend factory error (bad DSN, unreachable server).
func New(ctx context.Context, cfg Config) (Sink, error) {
	if cfg.Table == "" {
		cfg.Table = DefaultTable
	}
	if !ValidIdentifier(cfg.Table) {
		return nil, fmt.Errorf("storage: invalid table name %q", cfg.Table)
	}

	registryMu.Lock()
	f, ok := registry[cfg.Kind]
	registryMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown backend kind %q", cfg.Kind)
	}
	return f(ctx, cfg)
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether s is safe to interpolate into DDL as a
// table name. Backends share this check so the rule is uniform.
func ValidIdentifier(s string) bool {
	return identRe.MatchString(s)
}

// ParseConfig parses the -db flag format "kind=sqlite,dsn=records.db" with an
// optional ",table=name" part.
func ParseConfig(s string) (Config, error) {
	var cfg Config
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return Config{}, fmt.Errorf("storage: malformed -db part %q", part)
		}
		switch key {
		case "kind":
			cfg.Kind = val
		case "dsn":
			cfg.DSN = val
		case "table":
			cfg.Table = val
		default:
			return Config{}, fmt.Errorf("storage: unknown -db key %q", key)
		}
	}
	if cfg.Kind == "" {
		return Config{}, fmt.Errorf("storage: -db requires kind=")
	}
	if cfg.DSN == "" {
		return Config{}, fmt.Errorf("storage: -db requires dsn=")
	}
	return cfg, nil
}
