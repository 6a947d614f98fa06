package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/tracelight/osint-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses. pgxmock satisfies it
// for unit tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS investigations (
	id                 TEXT PRIMARY KEY,
	identifier         TEXT NOT NULL,
	region             TEXT NOT NULL,
	overall_confidence DOUBLE PRECISION NOT NULL,
	confidence_level   TEXT NOT NULL,
	successful_sources INTEGER NOT NULL,
	total_sources      INTEGER NOT NULL,
	record             JSONB NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_investigations_identifier ON investigations(identifier);
CREATE INDEX IF NOT EXISTS idx_investigations_region ON investigations(region);
CREATE INDEX IF NOT EXISTS idx_investigations_level ON investigations(confidence_level);
CREATE INDEX IF NOT EXISTS idx_investigations_created_at ON investigations(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveInvestigation(ctx context.Context, agg *model.AggregatedIntelligence) error {
	inv := model.NewInvestigation(agg)

	recordJSON, err := json.Marshal(agg)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal record")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO investigations
		 (id, identifier, region, overall_confidence, confidence_level, successful_sources, total_sources, record, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.Identifier, inv.Region, inv.OverallConfidence, string(inv.ConfidenceLevel),
		inv.SuccessfulSources, inv.TotalSources, recordJSON, inv.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert investigation %s", inv.ID)
}

func (s *PostgresStore) GetInvestigation(ctx context.Context, id string) (*model.Investigation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, identifier, region, overall_confidence, confidence_level, successful_sources, total_sources, record, created_at
		 FROM investigations WHERE id = $1`,
		id,
	)

	inv, err := scanPgInvestigation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(err, "postgres: get investigation %s", id)
	}
	return inv, err
}

func (s *PostgresStore) ListInvestigations(ctx context.Context, filter Filter) ([]model.Investigation, error) {
	query := `SELECT id, identifier, region, overall_confidence, confidence_level, successful_sources, total_sources, record, created_at
	          FROM investigations WHERE 1=1`
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Identifier != "" {
		query += ` AND identifier = ` + arg(filter.Identifier)
	}
	if filter.Region != "" {
		query += ` AND region = ` + arg(filter.Region)
	}
	if filter.Level != "" {
		query += ` AND confidence_level = ` + arg(string(filter.Level))
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at > ` + arg(filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ` + arg(limit)

	if filter.Offset > 0 {
		query += ` OFFSET ` + arg(filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list investigations")
	}
	defer rows.Close()

	var out []model.Investigation
	for rows.Next() {
		inv, err := scanPgInvestigation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list investigations iterate")
}

func (s *PostgresStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM investigations WHERE created_at < $1`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: delete old investigations")
	}
	return int(tag.RowsAffected()), nil
}

func scanPgInvestigation(row pgx.Row) (*model.Investigation, error) {
	var inv model.Investigation
	var recordJSON []byte

	err := row.Scan(
		&inv.ID, &inv.Identifier, &inv.Region, &inv.OverallConfidence, &inv.ConfidenceLevel,
		&inv.SuccessfulSources, &inv.TotalSources, &recordJSON, &inv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan investigation")
	}

	inv.Record = &model.AggregatedIntelligence{}
	if err := json.Unmarshal(recordJSON, inv.Record); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal record")
	}
	return &inv, nil
}
