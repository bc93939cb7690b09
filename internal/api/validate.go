package api

import (
	"fmt"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/model"
)

// Shape-level checks run before the solver's own validation so malformed
// requests fail fast with a field name. Cross-field invariants (square
// matrix, depot demand, window bounds) stay with the solver.
func validateOptimizeRequest(req *model.OptimizeRequest) error {
	if len(req.DistanceMatrix) == 0 {
		return fmt.Errorf("distance_matrix must not be empty")
	}
	if len(req.Demands) == 0 {
		return fmt.Errorf("demands must not be empty")
	}
	if req.NumVehicles <= 0 {
		return fmt.Errorf("num_vehicles must be > 0")
	}
	if len(req.VehicleCapacities) == 0 {
		return fmt.Errorf("vehicle_capacities must not be empty")
	}
	if req.TimeLimit < 0 {
		return fmt.Errorf("time_limit must be >= 0")
	}
	if req.Depot < 0 {
		return fmt.Errorf("depot must be >= 0")
	}
	return nil
}

func validateBatchRequest(req *model.BatchRequest) error {
	if len(req.Locations) == 0 {
		return fmt.Errorf("locations must not be empty")
	}
	if len(req.Vehicles) == 0 {
		return fmt.Errorf("vehicles must not be empty")
	}
	for i, loc := range req.Locations {
		if loc.Lat < -90 || loc.Lat > 90 || loc.Lng < -180 || loc.Lng > 180 {
			return fmt.Errorf("locations[%d]: coordinates out of range", i)
		}
		if loc.Demand < 0 {
			return fmt.Errorf("locations[%d]: demand must be >= 0", i)
		}
		if loc.TimeWindow != nil && loc.TimeWindow.Earliest > loc.TimeWindow.Latest {
			return fmt.Errorf("locations[%d]: time_window earliest exceeds latest", i)
		}
	}
	for i, v := range req.Vehicles {
		if v.Capacity <= 0 {
			return fmt.Errorf("vehicles[%d]: capacity must be > 0", i)
		}
	}
	if req.TimeLimit < 0 {
		return fmt.Errorf("time_limit must be >= 0")
	}
	return nil
}
