// Package monitoring aggregates operational statistics over the stored
// investigation history.
package monitoring

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/tracelight/osint-cli/internal/model"
	"github.com/tracelight/osint-cli/internal/store"
)

// MetricsSnapshot holds a point-in-time view of lookup quality and source
// health over a lookback window.
type MetricsSnapshot struct {
	Total         int     `json:"total"`
	AvgConfidence float64 `json:"avg_confidence"`

	// ByLevel counts investigations per confidence band.
	ByLevel map[model.Level]int `json:"by_level"`

	// SourceSuccessRate maps each source to its success ratio across all
	// investigations that dispatched it.
	SourceSuccessRate map[model.Source]float64 `json:"source_success_rate"`

	// DegradedRate is the share of investigations where at least one
	// dispatched source failed.
	DegradedRate float64 `json:"degraded_rate"`

	LookbackHours int       `json:"lookback_hours"`
	CollectedAt   time.Time `json:"collected_at"`
}

// Collector gathers metrics from the investigation store.
type Collector struct {
	store store.Store
}

// NewCollector creates a new metrics collector.
func NewCollector(st store.Store) *Collector {
	return &Collector{store: st}
}

// Collect gathers a snapshot over the given lookback window. A lookback of
// zero or less covers the whole history.
func (c *Collector) Collect(ctx context.Context, lookbackHours int) (*MetricsSnapshot, error) {
	snap := &MetricsSnapshot{
		ByLevel:           make(map[model.Level]int),
		SourceSuccessRate: make(map[model.Source]float64),
		LookbackHours:     lookbackHours,
		CollectedAt:       time.Now().UTC(),
	}

	filter := store.Filter{Limit: 10000}
	if lookbackHours > 0 {
		filter.CreatedAfter = time.Now().UTC().Add(-time.Duration(lookbackHours) * time.Hour)
	}

	invs, err := c.store.ListInvestigations(ctx, filter)
	if err != nil {
		return nil, eris.Wrap(err, "monitoring: list investigations")
	}

	snap.Total = len(invs)
	if snap.Total == 0 {
		return snap, nil
	}

	var confidenceSum float64
	var degraded int
	dispatched := make(map[model.Source]int)
	succeeded := make(map[model.Source]int)

	for _, inv := range invs {
		confidenceSum += inv.OverallConfidence
		snap.ByLevel[inv.ConfidenceLevel]++
		if inv.SuccessfulSources < inv.TotalSources {
			degraded++
		}
		if inv.Record == nil {
			continue
		}
		for _, r := range inv.Record.Results {
			dispatched[r.Source]++
			if r.Success {
				succeeded[r.Source]++
			}
		}
	}

	snap.AvgConfidence = confidenceSum / float64(snap.Total)
	snap.DegradedRate = float64(degraded) / float64(snap.Total)
	for src, total := range dispatched {
		snap.SourceSuccessRate[src] = float64(succeeded[src]) / float64(total)
	}

	return snap, nil
}
