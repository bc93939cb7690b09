package solver

import "fmt"

// StopRecord is one visited location in a finalized route. The depot appears
// as the first and last record of every route.
type StopRecord struct {
	LocationIndex  int    `json:"location_index"`
	Demand         int64  `json:"demand"`
	CumulativeLoad int64  `json:"cumulative_load"`
	ArrivalTime    *int64 `json:"arrival_time,omitempty"`
	DepartureTime  *int64 `json:"departure_time,omitempty"`
}

// RouteReport is one vehicle's itinerary with recomputed totals.
type RouteReport struct {
	VehicleID           int          `json:"vehicle_id"`
	Stops               []StopRecord `json:"stops"`
	TotalDistance       int64        `json:"total_distance"`
	TotalLoad           int64        `json:"total_load"`
	CapacityUtilization float64      `json:"capacity_utilization"`
	TotalTime           *int64       `json:"total_time,omitempty"`
}

// Summary aggregates across the whole fleet.
type Summary struct {
	TotalDistance         int64    `json:"total_distance"`
	TotalLoad             int64    `json:"total_load"`
	TotalDemand           int64    `json:"total_demand"`
	NumVehiclesUsed       int      `json:"num_vehicles_used"`
	AverageRouteDistance  float64  `json:"average_route_distance"`
	AverageLoadPerVehicle float64  `json:"average_load_per_vehicle"`
	TotalTime             *int64   `json:"total_time,omitempty"`
	AverageRouteTime      *float64 `json:"average_route_time,omitempty"`
}

// Report is the full extraction payload for a feasible solution.
type Report struct {
	Routes  []RouteReport `json:"routes"`
	Summary Summary       `json:"summary"`
}

// extract walks the finalized routes and recomputes every cumulative value
// from the Problem rather than trusting state cached during the search. It
// cross-checks the coverage and capacity invariants and fails with
// ErrInternal if the search handed over a violating solution.
func extract(p *Problem, dims *registry, sol *Solution) (*Report, error) {
	if !sol.complete() {
		return nil, fmt.Errorf("%w: %d location(s) left unassigned", ErrInternal, len(sol.unassigned))
	}
	seen := make([]int, p.NumLocations())
	depot := p.Depot()

	report := &Report{Routes: make([]RouteReport, 0, len(sol.routes))}
	var totalTime int64
	for v, route := range sol.routes {
		rr := RouteReport{VehicleID: v, Stops: make([]StopRecord, 0, len(route)+2)}

		var sched routeSchedule
		if dims.time != nil {
			s, ok := dims.time.schedule(route)
			if !ok {
				return nil, fmt.Errorf("%w: vehicle %d route violates the time dimension", ErrInternal, v)
			}
			sched = s
		}

		var load int64
		start := StopRecord{LocationIndex: depot}
		if dims.time != nil {
			d := sched.depart
			start.ArrivalTime = ptr(d)
			start.DepartureTime = ptr(d)
		}
		rr.Stops = append(rr.Stops, start)

		prev := depot
		for i, loc := range route {
			seen[loc]++
			load += p.Demand(loc)
			if load > p.Capacity(v) {
				return nil, fmt.Errorf("%w: vehicle %d exceeds capacity %d at stop %d", ErrInternal, v, p.Capacity(v), loc)
			}
			rec := StopRecord{
				LocationIndex:  loc,
				Demand:         p.Demand(loc),
				CumulativeLoad: load,
			}
			if dims.time != nil {
				rec.ArrivalTime = ptr(sched.arrivals[i])
				rec.DepartureTime = ptr(sched.departs[i])
			}
			rr.Stops = append(rr.Stops, rec)
			rr.TotalDistance += p.ArcCost(prev, loc)
			prev = loc
		}
		rr.TotalDistance += p.ArcCost(prev, depot)
		end := StopRecord{LocationIndex: depot, CumulativeLoad: load}
		if dims.time != nil {
			end.ArrivalTime = ptr(sched.returnsAt)
			rt := sched.returnsAt - sched.depart
			rr.TotalTime = ptr(rt)
			totalTime += rt
		}
		rr.Stops = append(rr.Stops, end)

		rr.TotalLoad = load
		if c := p.Capacity(v); c > 0 {
			rr.CapacityUtilization = float64(load) / float64(c) * 100
		}
		report.Routes = append(report.Routes, rr)
	}

	for loc := 0; loc < p.NumLocations(); loc++ {
		if loc == depot {
			continue
		}
		if seen[loc] != 1 {
			return nil, fmt.Errorf("%w: location %d appears %d times across routes", ErrInternal, loc, seen[loc])
		}
	}

	s := &report.Summary
	for _, rr := range report.Routes {
		s.TotalDistance += rr.TotalDistance
		s.TotalLoad += rr.TotalLoad
		if len(rr.Stops) > 2 {
			s.NumVehiclesUsed++
		}
	}
	s.TotalDemand = p.TotalDemand()
	if s.TotalLoad != s.TotalDemand {
		return nil, fmt.Errorf("%w: total load %d does not match total demand %d", ErrInternal, s.TotalLoad, s.TotalDemand)
	}
	nv := float64(p.NumVehicles())
	s.AverageRouteDistance = float64(s.TotalDistance) / nv
	s.AverageLoadPerVehicle = float64(s.TotalLoad) / nv
	if dims.time != nil {
		s.TotalTime = ptr(totalTime)
		avg := float64(totalTime) / nv
		s.AverageRouteTime = &avg
	}
	return report, nil
}

func ptr(v int64) *int64 { return &v }
