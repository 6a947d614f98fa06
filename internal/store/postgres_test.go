package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracelight/osint-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	s := &PostgresStore{pool: mock}
	return s, mock
}

func TestPostgresStore_SaveInvestigation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	agg := sampleAggregation(t, "+919876501234")
	mock.ExpectExec(`INSERT INTO investigations`).
		WithArgs(agg.ID, agg.Identifier, agg.Region, agg.OverallConfidence, string(agg.ConfidenceLevel),
			agg.SuccessfulSources, agg.TotalSources, pgxmock.AnyArg(), agg.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveInvestigation(context.Background(), agg))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInvestigation_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`FROM investigations WHERE id = \$1`).
		WithArgs("missing-id").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetInvestigation(context.Background(), "missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get investigation")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetInvestigation(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Now().UTC()
	record := []byte(`{"id":"inv-1","identifier":"+919876501234","region":"IN","results":null,"merged":{}}`)
	rows := pgxmock.NewRows([]string{
		"id", "identifier", "region", "overall_confidence", "confidence_level",
		"successful_sources", "total_sources", "record", "created_at",
	}).AddRow("inv-1", "+919876501234", "IN", 80.75, "high", 1, 1, record, created)

	mock.ExpectQuery(`FROM investigations WHERE id = \$1`).
		WithArgs("inv-1").
		WillReturnRows(rows)

	inv, err := s.GetInvestigation(context.Background(), "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "inv-1", inv.ID)
	assert.Equal(t, model.LevelHigh, inv.ConfidenceLevel)
	require.NotNil(t, inv.Record)
	assert.Equal(t, "+919876501234", inv.Record.Identifier)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListInvestigations_Filtered(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	created := time.Now().UTC()
	record := []byte(`{"id":"inv-1","identifier":"+919876501234","region":"IN"}`)
	rows := pgxmock.NewRows([]string{
		"id", "identifier", "region", "overall_confidence", "confidence_level",
		"successful_sources", "total_sources", "record", "created_at",
	}).AddRow("inv-1", "+919876501234", "IN", 80.75, "high", 1, 1, record, created)

	mock.ExpectQuery(`FROM investigations WHERE 1=1 AND region = \$1 ORDER BY created_at DESC LIMIT \$2`).
		WithArgs("IN", 100).
		WillReturnRows(rows)

	out, err := s.ListInvestigations(context.Background(), Filter{Region: "IN"})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "inv-1", out[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteOlderThan(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	cutoff := time.Now().UTC().Add(-24 * time.Hour)
	mock.ExpectExec(`DELETE FROM investigations WHERE created_at < \$1`).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	n, err := s.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Migrate(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS investigations`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
