package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracelight/osint-cli/internal/model"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleAggregation(t *testing.T, identifier string) *model.AggregatedIntelligence {
	t.Helper()
	result, err := model.NewResult(model.SourceLocal, model.Fields{
		IsValid: model.Bool(true),
		Country: model.String("India"),
	}, 95, 5*time.Millisecond)
	require.NoError(t, err)

	return &model.AggregatedIntelligence{
		ID:         uuid.New().String(),
		Identifier: identifier,
		Region:     "IN",
		Results:    []model.IntelligenceResult{result},
		Merged: map[string]model.MergedField{
			model.FieldIsValid: {Value: true, Source: model.SourceLocal},
			model.FieldCountry: {Value: "India", Source: model.SourceLocal},
		},
		OverallConfidence: 80.75,
		ConfidenceLevel:   model.LevelHigh,
		SourcesUsed:       []model.Source{model.SourceLocal},
		TotalSources:      1,
		SuccessfulSources: 1,
		ProcessingTime:    12 * time.Millisecond,
		CreatedAt:         time.Now().UTC(),
	}
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	agg := sampleAggregation(t, "+919876501234")
	require.NoError(t, s.SaveInvestigation(ctx, agg))

	inv, err := s.GetInvestigation(ctx, agg.ID)
	require.NoError(t, err)

	assert.Equal(t, agg.ID, inv.ID)
	assert.Equal(t, "+919876501234", inv.Identifier)
	assert.Equal(t, "IN", inv.Region)
	assert.Equal(t, model.LevelHigh, inv.ConfidenceLevel)
	assert.InDelta(t, 80.75, inv.OverallConfidence, 0.001)
	assert.Equal(t, 1, inv.SuccessfulSources)

	// Full record round-trips through the JSON column.
	require.NotNil(t, inv.Record)
	assert.Equal(t, "India", inv.Record.Merged[model.FieldCountry].Value)
	require.Len(t, inv.Record.Results, 1)
	assert.Equal(t, model.SourceLocal, inv.Record.Results[0].Source)
}

func TestSQLiteStore_GetNotFound(t *testing.T) {
	s := newTestSQLite(t)

	_, err := s.GetInvestigation(context.Background(), "missing-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteStore_ListFilters(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	a := sampleAggregation(t, "+919876501234")
	b := sampleAggregation(t, "+15551234567")
	b.Region = "US"
	c := sampleAggregation(t, "+919876501234")
	c.ConfidenceLevel = model.LevelUnreliable
	c.OverallConfidence = 0

	for _, agg := range []*model.AggregatedIntelligence{a, b, c} {
		require.NoError(t, s.SaveInvestigation(ctx, agg))
	}

	all, err := s.ListInvestigations(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byIdentifier, err := s.ListInvestigations(ctx, Filter{Identifier: "+919876501234"})
	require.NoError(t, err)
	assert.Len(t, byIdentifier, 2)

	byRegion, err := s.ListInvestigations(ctx, Filter{Region: "US"})
	require.NoError(t, err)
	require.Len(t, byRegion, 1)
	assert.Equal(t, b.ID, byRegion[0].ID)

	byLevel, err := s.ListInvestigations(ctx, Filter{Level: model.LevelUnreliable})
	require.NoError(t, err)
	require.Len(t, byLevel, 1)
	assert.Equal(t, c.ID, byLevel[0].ID)
}

func TestSQLiteStore_ListLimitOffset(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		agg := sampleAggregation(t, "+919876501234")
		agg.CreatedAt = time.Now().UTC().Add(time.Duration(i) * time.Second)
		require.NoError(t, s.SaveInvestigation(ctx, agg))
	}

	page, err := s.ListInvestigations(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page, 2)

	rest, err := s.ListInvestigations(ctx, Filter{Limit: 10, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, rest, 3)
}

func TestSQLiteStore_ListCreatedAfter(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	old := sampleAggregation(t, "+919876501234")
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	recent := sampleAggregation(t, "+919876501234")

	require.NoError(t, s.SaveInvestigation(ctx, old))
	require.NoError(t, s.SaveInvestigation(ctx, recent))

	got, err := s.ListInvestigations(ctx, Filter{CreatedAfter: time.Now().UTC().Add(-24 * time.Hour)})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, recent.ID, got[0].ID)
}

func TestSQLiteStore_DeleteOlderThan(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	old := sampleAggregation(t, "+919876501234")
	old.CreatedAt = time.Now().UTC().Add(-72 * time.Hour)
	recent := sampleAggregation(t, "+919876501234")

	require.NoError(t, s.SaveInvestigation(ctx, old))
	require.NoError(t, s.SaveInvestigation(ctx, recent))

	n, err := s.DeleteOlderThan(ctx, time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	remaining, err := s.ListInvestigations(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, recent.ID, remaining[0].ID)
}

func TestSQLiteStore_MigrateIdempotent(t *testing.T) {
	s := newTestSQLite(t)
	require.NoError(t, s.Migrate(context.Background()))
	require.NoError(t, s.Migrate(context.Background()))
}
