// Package model holds the request and response shapes of the optimization
// API. The solver package owns the report types; these wrap them for the
// HTTP surface.
package model

import (
	"github.com/ridrisa/barq-fleet-optimization-api/internal/geo"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/solver"
)

// OptimizeRequest is the matrix-based CVRP request. SolveID is optional;
// clients that want to stream progress generate it up front, subscribe,
// and then submit the request carrying the same id.
type OptimizeRequest struct {
	SolveID           string     `json:"solve_id,omitempty"`
	DistanceMatrix    [][]int64  `json:"distance_matrix"`
	Demands           []int64    `json:"demands"`
	VehicleCapacities []int64    `json:"vehicle_capacities"`
	NumVehicles       int        `json:"num_vehicles"`
	Depot             int        `json:"depot"`
	TimeLimit         float64    `json:"time_limit,omitempty"` // seconds
	TimeWindows       [][2]int64 `json:"time_windows,omitempty"`
	ServiceTimes      []int64    `json:"service_times,omitempty"`
}

// BatchTimeWindow mirrors the per-location window of the batch request.
type BatchTimeWindow struct {
	Earliest int64 `json:"earliest"`
	Latest   int64 `json:"latest"`
}

// BatchLocation is a delivery point given by coordinates.
type BatchLocation struct {
	ID          string           `json:"id,omitempty"`
	Lat         float64          `json:"lat"`
	Lng         float64          `json:"lng"`
	Demand      int64            `json:"demand"`
	TimeWindow  *BatchTimeWindow `json:"time_window,omitempty"`
	ServiceTime *int64           `json:"service_time,omitempty"` // minutes
}

// BatchVehicle is one capacitated vehicle of the batch request.
type BatchVehicle struct {
	ID       string `json:"id,omitempty"`
	Capacity int64  `json:"capacity"`
}

// BatchRequest carries raw coordinates; the distance matrix is derived with
// the haversine formula before the solver runs.
type BatchRequest struct {
	SolveID   string          `json:"solve_id,omitempty"`
	Depot     geo.Point       `json:"depot"`
	Locations []BatchLocation `json:"locations"`
	Vehicles  []BatchVehicle  `json:"vehicles"`
	TimeLimit float64         `json:"time_limit,omitempty"`
}

// OptimizationMetadata describes how a response was produced.
type OptimizationMetadata struct {
	SolveID            string `json:"solve_id"`
	Algorithm          string `json:"algorithm"`
	Strategy           string `json:"strategy"`
	Status             string `json:"status"`
	TimeWindowsEnabled bool   `json:"time_windows_enabled"`
	Cached             bool   `json:"cached,omitempty"`
	Timestamp          string `json:"timestamp"`
}

// OptimizeResponse is the wire shape of a solve result.
type OptimizeResponse struct {
	Success  bool                  `json:"success"`
	Routes   []solver.RouteReport  `json:"routes,omitempty"`
	Summary  *solver.Summary       `json:"summary,omitempty"`
	Error    string                `json:"error,omitempty"`
	Metadata *OptimizationMetadata `json:"optimization_metadata,omitempty"`
}

// Defaults applied when optional request fields are absent.
const (
	DefaultTimeLimitSeconds   = 5
	DefaultServiceTimeMinutes = 8
)

// ApplyDefaults normalizes optional fields in place.
func (r *OptimizeRequest) ApplyDefaults() {
	if r.TimeLimit <= 0 {
		r.TimeLimit = DefaultTimeLimitSeconds
	}
}
