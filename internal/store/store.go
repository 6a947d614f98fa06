package store

import (
	"context"
	"time"

	"github.com/tracelight/osint-cli/internal/model"
)

// Filter specifies criteria for listing investigations.
type Filter struct {
	Identifier   string      `json:"identifier,omitempty"`
	Region       string      `json:"region,omitempty"`
	Level        model.Level `json:"level,omitempty"`
	CreatedAfter time.Time   `json:"created_after,omitempty"`
	Limit        int         `json:"limit,omitempty"`
	Offset       int         `json:"offset,omitempty"`
}

// Store defines the persistence interface for the investigation history.
type Store interface {
	SaveInvestigation(ctx context.Context, agg *model.AggregatedIntelligence) error
	GetInvestigation(ctx context.Context, id string) (*model.Investigation, error)
	ListInvestigations(ctx context.Context, filter Filter) ([]model.Investigation, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
