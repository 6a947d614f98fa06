package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/tracelight/osint-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS investigations (
	id                 TEXT PRIMARY KEY,
	identifier         TEXT NOT NULL,
	region             TEXT NOT NULL,
	overall_confidence REAL NOT NULL,
	confidence_level   TEXT NOT NULL,
	successful_sources INTEGER NOT NULL,
	total_sources      INTEGER NOT NULL,
	record             TEXT NOT NULL,
	created_at         DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_investigations_identifier ON investigations(identifier);
CREATE INDEX IF NOT EXISTS idx_investigations_region ON investigations(region);
CREATE INDEX IF NOT EXISTS idx_investigations_level ON investigations(confidence_level);
CREATE INDEX IF NOT EXISTS idx_investigations_created_at ON investigations(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveInvestigation(ctx context.Context, agg *model.AggregatedIntelligence) error {
	inv := model.NewInvestigation(agg)

	recordJSON, err := json.Marshal(agg)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal record")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO investigations
		 (id, identifier, region, overall_confidence, confidence_level, successful_sources, total_sources, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.Identifier, inv.Region, inv.OverallConfidence, string(inv.ConfidenceLevel),
		inv.SuccessfulSources, inv.TotalSources, string(recordJSON), inv.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert investigation %s", inv.ID)
}

func (s *SQLiteStore) GetInvestigation(ctx context.Context, id string) (*model.Investigation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, identifier, region, overall_confidence, confidence_level, successful_sources, total_sources, record, created_at
		 FROM investigations WHERE id = ?`,
		id,
	)
	return scanInvestigation(row)
}

func (s *SQLiteStore) ListInvestigations(ctx context.Context, filter Filter) ([]model.Investigation, error) {
	query := `SELECT id, identifier, region, overall_confidence, confidence_level, successful_sources, total_sources, record, created_at
	          FROM investigations WHERE 1=1`
	var args []any

	if filter.Identifier != "" {
		query += ` AND identifier = ?`
		args = append(args, filter.Identifier)
	}
	if filter.Region != "" {
		query += ` AND region = ?`
		args = append(args, filter.Region)
	}
	if filter.Level != "" {
		query += ` AND confidence_level = ?`
		args = append(args, string(filter.Level))
	}
	if !filter.CreatedAfter.IsZero() {
		query += ` AND created_at > ?`
		args = append(args, filter.CreatedAfter.UTC())
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list investigations")
	}
	defer rows.Close()

	var out []model.Investigation
	for rows.Next() {
		inv, err := scanInvestigation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list investigations iterate")
}

func (s *SQLiteStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM investigations WHERE created_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: delete old investigations")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanInvestigation(row scannable) (*model.Investigation, error) {
	var inv model.Investigation
	var recordJSON string

	err := row.Scan(
		&inv.ID, &inv.Identifier, &inv.Region, &inv.OverallConfidence, &inv.ConfidenceLevel,
		&inv.SuccessfulSources, &inv.TotalSources, &recordJSON, &inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, eris.New("investigation not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan investigation")
	}

	inv.Record = &model.AggregatedIntelligence{}
	if err := json.Unmarshal([]byte(recordJSON), inv.Record); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal record")
	}
	return &inv, nil
}
