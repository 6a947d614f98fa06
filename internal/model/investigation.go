package model

import "time"

// Investigation is one persisted aggregation, the unit of the lookup
// history. Record carries the full aggregated intelligence; the remaining
// columns are denormalized for filtering and stats.
type Investigation struct {
	ID                string                  `json:"id"`
	Identifier        string                  `json:"identifier"`
	Region            string                  `json:"region"`
	OverallConfidence float64                 `json:"overall_confidence"`
	ConfidenceLevel   Level                   `json:"confidence_level"`
	SuccessfulSources int                     `json:"successful_sources"`
	TotalSources      int                     `json:"total_sources"`
	Record            *AggregatedIntelligence `json:"record,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// NewInvestigation denormalizes an aggregated record for persistence.
func NewInvestigation(agg *AggregatedIntelligence) Investigation {
	return Investigation{
		ID:                agg.ID,
		Identifier:        agg.Identifier,
		Region:            agg.Region,
		OverallConfidence: agg.OverallConfidence,
		ConfidenceLevel:   agg.ConfidenceLevel,
		SuccessfulSources: agg.SuccessfulSources,
		TotalSources:      agg.TotalSources,
		Record:            agg,
		CreatedAt:         agg.CreatedAt,
	}
}
