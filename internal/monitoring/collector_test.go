package monitoring

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/store"
)

// mockStore implements store.Store for testing.
type mockStore struct {
	invs    []model.Investigation
	listErr error
}

func (m *mockStore) ListInvestigations(_ context.Context, filter store.Filter) ([]model.Investigation, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var filtered []model.Investigation
	for _, inv := range m.invs {
		if !filter.CreatedAfter.IsZero() && inv.CreatedAt.Before(filter.CreatedAfter) {
			continue
		}
		filtered = append(filtered, inv)
	}
	return filtered, nil
}

// Unused store methods — satisfy the interface.
func (m *mockStore) SaveInvestigation(context.Context, *model.AggregatedIntelligence) error {
	return nil
}
func (m *mockStore) GetInvestigation(context.Context, string) (*model.Investigation, error) {
	return nil, nil
}
func (m *mockStore) DeleteOlderThan(context.Context, time.Time) (int, error) { return 0, nil }
func (m *mockStore) Migrate(context.Context) error                           { return nil }
func (m *mockStore) Close() error                                            { return nil }

func investigation(level model.Level, confidence float64, results ...model.IntelligenceResult) model.Investigation {
	successful := 0
	for _, r := range results {
		if r.Success {
			successful++
		}
	}
	return model.Investigation{
		ID:                "inv-" + string(level),
		Identifier:        "+919876501234",
		Region:            "IN",
		OverallConfidence: confidence,
		ConfidenceLevel:   level,
		SuccessfulSources: successful,
		TotalSources:      len(results),
		Record: &model.AggregatedIntelligence{
			Results: results,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func success(src model.Source) model.IntelligenceResult {
	return model.IntelligenceResult{Source: src, Success: true, Confidence: 90}
}

func failure(src model.Source) model.IntelligenceResult {
	return model.IntelligenceResult{Source: src, Success: false, Error: "boom"}
}

func TestCollect_Empty(t *testing.T) {
	c := NewCollector(&mockStore{})

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Zero(t, snap.Total)
	assert.Zero(t, snap.AvgConfidence)
	assert.Equal(t, 24, snap.LookbackHours)
}

func TestCollect_Aggregates(t *testing.T) {
	st := &mockStore{invs: []model.Investigation{
		investigation(model.LevelHigh, 85, success(model.SourceLocal), success(model.SourceNumVerify)),
		investigation(model.LevelMedium, 65, success(model.SourceLocal), failure(model.SourceNumVerify)),
		investigation(model.LevelUnreliable, 0, failure(model.SourceLocal), failure(model.SourceNumVerify)),
	}}
	c := NewCollector(st)

	snap, err := c.Collect(context.Background(), 0)
	require.NoError(t, err)

	assert.Equal(t, 3, snap.Total)
	assert.InDelta(t, 50.0, snap.AvgConfidence, 0.001)
	assert.Equal(t, 1, snap.ByLevel[model.LevelHigh])
	assert.Equal(t, 1, snap.ByLevel[model.LevelMedium])
	assert.Equal(t, 1, snap.ByLevel[model.LevelUnreliable])

	// local succeeded 2/3, numverify 1/3.
	assert.InDelta(t, 2.0/3.0, snap.SourceSuccessRate[model.SourceLocal], 0.001)
	assert.InDelta(t, 1.0/3.0, snap.SourceSuccessRate[model.SourceNumVerify], 0.001)

	// Two of three investigations had at least one failed source.
	assert.InDelta(t, 2.0/3.0, snap.DegradedRate, 0.001)
}

func TestCollect_LookbackFiltersOld(t *testing.T) {
	old := investigation(model.LevelHigh, 85, success(model.SourceLocal))
	old.CreatedAt = time.Now().UTC().Add(-48 * time.Hour)
	recent := investigation(model.LevelMedium, 65, success(model.SourceLocal))

	c := NewCollector(&mockStore{invs: []model.Investigation{old, recent}})

	snap, err := c.Collect(context.Background(), 24)
	require.NoError(t, err)

	assert.Equal(t, 1, snap.Total)
	assert.InDelta(t, 65.0, snap.AvgConfidence, 0.001)
}

func TestCollect_StoreError(t *testing.T) {
	c := NewCollector(&mockStore{listErr: assert.AnError})

	_, err := c.Collect(context.Background(), 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list investigations")
}
