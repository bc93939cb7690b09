package model

import (
	"github.com/ridrisa/barq-fleet-optimization-api/internal/geo"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/solver"
)

// Problem validates the request against the solver's invariants and returns
// the immutable model. The returned error, when not nil, is a
// *solver.ValidationError.
func (r *OptimizeRequest) Problem() (*solver.Problem, error) {
	var opts *solver.Options
	if r.TimeWindows != nil || r.ServiceTimes != nil {
		opts = &solver.Options{}
		if r.TimeWindows != nil {
			opts.TimeWindows = make([]solver.TimeWindow, len(r.TimeWindows))
			for i, tw := range r.TimeWindows {
				opts.TimeWindows[i] = solver.TimeWindow{Earliest: tw[0], Latest: tw[1]}
			}
		}
		opts.ServiceTimes = r.ServiceTimes
	}
	return solver.NewProblem(r.DistanceMatrix, r.Demands, r.VehicleCapacities, r.NumVehicles, r.Depot, opts)
}

// ToOptimizeRequest expands a coordinate-based batch request into the matrix
// form: haversine distances, depot at index 0, default service times, and a
// depot window spanning the planning horizon when any location has a window.
func (b *BatchRequest) ToOptimizeRequest() *OptimizeRequest {
	points := make([]geo.Point, 0, len(b.Locations)+1)
	points = append(points, b.Depot)
	demands := make([]int64, 1, len(b.Locations)+1)
	for _, loc := range b.Locations {
		points = append(points, geo.Point{Lat: loc.Lat, Lng: loc.Lng})
		demands = append(demands, loc.Demand)
	}

	caps := make([]int64, len(b.Vehicles))
	for i, v := range b.Vehicles {
		caps[i] = v.Capacity
	}

	req := &OptimizeRequest{
		SolveID:           b.SolveID,
		DistanceMatrix:    geo.DistanceMatrix(points),
		Demands:           demands,
		VehicleCapacities: caps,
		NumVehicles:       len(b.Vehicles),
		Depot:             0,
		TimeLimit:         b.TimeLimit,
	}

	windowed := false
	for _, loc := range b.Locations {
		if loc.TimeWindow != nil {
			windowed = true
			break
		}
	}
	if windowed {
		req.TimeWindows = make([][2]int64, 0, len(b.Locations)+1)
		req.ServiceTimes = make([]int64, 0, len(b.Locations)+1)
		req.TimeWindows = append(req.TimeWindows, [2]int64{0, solver.HorizonMinutes})
		req.ServiceTimes = append(req.ServiceTimes, 0)
		for _, loc := range b.Locations {
			if loc.TimeWindow != nil {
				req.TimeWindows = append(req.TimeWindows, [2]int64{loc.TimeWindow.Earliest, loc.TimeWindow.Latest})
			} else {
				req.TimeWindows = append(req.TimeWindows, [2]int64{0, solver.HorizonMinutes})
			}
			if loc.ServiceTime != nil {
				req.ServiceTimes = append(req.ServiceTimes, *loc.ServiceTime)
			} else {
				req.ServiceTimes = append(req.ServiceTimes, DefaultServiceTimeMinutes)
			}
		}
	}
	req.ApplyDefaults()
	return req
}
