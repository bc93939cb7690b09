// Package store persists solve history for the stats endpoints.
package store

import (
	"context"
	"time"
)

// SolveRecord is one completed (or failed) solve.
type SolveRecord struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	RequestHash   string        `json:"request_hash"`
	NumLocations  int           `json:"num_locations"`
	NumVehicles   int           `json:"num_vehicles"`
	Status        string        `json:"status"`
	TotalDistance int64         `json:"total_distance"`
	TotalLoad     int64         `json:"total_load"`
	VehiclesUsed  int           `json:"vehicles_used"`
	Cached        bool          `json:"cached"`
	Duration      time.Duration `json:"-"`
	DurationMs    int64         `json:"duration_ms"`
}

// FleetStats aggregates solve history for reporting.
type FleetStats struct {
	TotalSolves     int     `json:"total_solves"`
	SolvedCount     int     `json:"solved_count"`
	InfeasibleCount int     `json:"infeasible_count"`
	CacheHits       int     `json:"cache_hits"`
	AvgDurationMs   float64 `json:"avg_duration_ms"`
	AvgDistance     float64 `json:"avg_distance"`
	AvgVehiclesUsed float64 `json:"avg_vehicles_used"`
}

// Store records solve history. Implementations must be safe for
// concurrent use by HTTP handlers.
type Store interface {
	RecordSolve(ctx context.Context, rec SolveRecord) error
	RecentSolves(ctx context.Context, limit int) ([]SolveRecord, error)
	Stats(ctx context.Context) (FleetStats, error)
	Close() error
}
