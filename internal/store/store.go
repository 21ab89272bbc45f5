// Package store persists the history of coverage queries.
package store

import (
	"context"
	"time"
)

// QueryRecord is one answered coverage query.
type QueryRecord struct {
	ID              string    `json:"id"`
	Station         string    `json:"station,omitempty"`
	Line            string    `json:"line,omitempty"`
	Lng             float64   `json:"lng"`
	Lat             float64   `json:"lat"`
	RadiusMeters    float64   `json:"radius_meters"`
	AffectedAreas   int       `json:"affected_areas"`
	TotalPopulation float64   `json:"total_population"`
	WithinRadius    float64   `json:"within_radius"`
	CreatedAt       time.Time `json:"created_at"`
}

// QueryFilter specifies criteria for listing recorded queries.
type QueryFilter struct {
	Station string `json:"station,omitempty"`
	Line    string `json:"line,omitempty"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for query history.
type Store interface {
	SaveQuery(ctx context.Context, rec QueryRecord) (*QueryRecord, error)
	ListQueries(ctx context.Context, filter QueryFilter) ([]QueryRecord, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
