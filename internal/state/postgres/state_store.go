// Package postgres provides a Postgres-backed ingestion state store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/economic-index-etl/internal/ingest"
)

// DefaultTable holds one row per (data_source, target_bucket).
const DefaultTable = "etl_execution_state"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used for state rows.
type Config struct {
	DSN             string        `mapstructure:"dsn"`
	Table           string        `mapstructure:"table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

type pool interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...any) pgx.Row
	Close()
}

// StateStore reads and upserts ingestion markers.
type StateStore struct {
	pool  pool
	table string
}

// NewStateStore connects to Postgres and ensures the state table exists.
func NewStateStore(ctx context.Context, cfg Config) (*StateStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("state.postgres.dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	store := &StateStore{pool: p, table: table}
	if err := store.EnsureSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return store, nil
}

// NewStateStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStateStoreWithPool(p pool, table string) (*StateStore, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &StateStore{pool: p, table: name}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *StateStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// EnsureSchema creates the state table when it does not exist.
func (s *StateStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	data_source      TEXT        NOT NULL,
	target_bucket    TEXT        NOT NULL,
	reference_period TEXT        NOT NULL,
	last_execution   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (data_source, target_bucket)
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create state table: %w", err)
	}
	return nil
}

// Get loads the marker for (seriesID, target).
func (s *StateStore) Get(ctx context.Context, seriesID, target string) (ingest.IngestionState, bool, error) {
	query := fmt.Sprintf(`
SELECT reference_period, last_execution
FROM %s
WHERE data_source = $1 AND target_bucket = $2`, s.table)

	state := ingest.IngestionState{SeriesID: seriesID, TargetDestination: target}
	err := s.pool.QueryRow(ctx, query, seriesID, target).Scan(&state.LastReferencePeriod, &state.LastExecutionTime)
	if errors.Is(err, pgx.ErrNoRows) {
		return ingest.IngestionState{}, false, nil
	}
	if err != nil {
		return ingest.IngestionState{}, false, fmt.Errorf("select state: %w", err)
	}
	state.LastExecutionTime = state.LastExecutionTime.UTC()
	return state, true, nil
}

// Put upserts the marker for the state's (series, target).
func (s *StateStore) Put(ctx context.Context, state ingest.IngestionState) error {
	if state.SeriesID == "" || state.TargetDestination == "" {
		return fmt.Errorf("series id and target are required")
	}
	query := fmt.Sprintf(`
INSERT INTO %s (data_source, target_bucket, reference_period, last_execution)
VALUES ($1, $2, $3, $4)
ON CONFLICT (data_source, target_bucket) DO UPDATE
SET reference_period = EXCLUDED.reference_period,
    last_execution = EXCLUDED.last_execution`, s.table)

	args := []any{
		state.SeriesID,
		state.TargetDestination,
		state.LastReferencePeriod,
		state.LastExecutionTime.UTC(),
	}
	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert state: %w", err)
	}
	return nil
}
