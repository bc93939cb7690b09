package solver

import "fmt"

// Planning constants shared with the production fleet service: urban average
// speed of 40 km/h (667 m/min), an 8 hour route horizon, and up to 30 minutes
// of waiting allowed at any stop.
const (
	SpeedMetersPerMinute = 667
	HorizonMinutes       = 480
	WaitingSlackMinutes  = 30
)

// TimeWindow bounds the minute at which service at a location may begin.
type TimeWindow struct {
	Earliest int64 `json:"earliest"`
	Latest   int64 `json:"latest"`
}

// ValidationError reports the first input invariant violated while building a
// Problem. No search runs against invalid data.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Options carries the optional parts of a Problem.
type Options struct {
	TimeWindows  []TimeWindow
	ServiceTimes []int64 // minutes, per location
	TimeMatrix   [][]int64
}

// Problem is the validated, immutable model for a single optimization
// request. All lookups the constructor and improver need are exposed as
// methods so the search never closes over request state.
type Problem struct {
	dist       [][]int64
	travel     [][]int64 // minutes; nil when the time dimension is inactive
	demands    []int64
	capacities []int64
	depot      int
	windows    []TimeWindow
	service    []int64
}

// NewProblem validates the request shape and returns the immutable model.
// When time windows are requested without an explicit time matrix, a travel
// time matrix is derived from distances at SpeedMetersPerMinute.
func NewProblem(dist [][]int64, demands, capacities []int64, numVehicles, depot int, opts *Options) (*Problem, error) {
	n := len(dist)
	if n == 0 {
		return nil, &ValidationError{Field: "distance_matrix", Reason: "must be non-empty"}
	}
	if len(demands) != n {
		return nil, &ValidationError{Field: "demands", Reason: fmt.Sprintf("length %d does not match %d locations", len(demands), n)}
	}
	for i, row := range dist {
		if len(row) != n {
			return nil, &ValidationError{Field: "distance_matrix", Reason: fmt.Sprintf("row %d has length %d, want %d", i, len(row), n)}
		}
		for j, d := range row {
			if d < 0 {
				return nil, &ValidationError{Field: "distance_matrix", Reason: fmt.Sprintf("negative distance at [%d][%d]", i, j)}
			}
		}
	}
	if numVehicles <= 0 {
		return nil, &ValidationError{Field: "num_vehicles", Reason: "must be positive"}
	}
	if len(capacities) != numVehicles {
		return nil, &ValidationError{Field: "vehicle_capacities", Reason: fmt.Sprintf("length %d does not match %d vehicles", len(capacities), numVehicles)}
	}
	for v, c := range capacities {
		if c < 0 {
			return nil, &ValidationError{Field: "vehicle_capacities", Reason: fmt.Sprintf("vehicle %d has negative capacity", v)}
		}
	}
	if depot < 0 || depot >= n {
		return nil, &ValidationError{Field: "depot", Reason: fmt.Sprintf("index %d out of range [0,%d)", depot, n)}
	}
	for i, d := range demands {
		if d < 0 {
			return nil, &ValidationError{Field: "demands", Reason: fmt.Sprintf("negative demand at location %d", i)}
		}
	}
	if demands[depot] != 0 {
		return nil, &ValidationError{Field: "demands", Reason: fmt.Sprintf("depot demand must be 0, got %d", demands[depot])}
	}

	p := &Problem{
		dist:       dist,
		demands:    demands,
		capacities: capacities,
		depot:      depot,
	}
	if opts == nil {
		return p, nil
	}

	if opts.TimeWindows != nil {
		if len(opts.TimeWindows) != n {
			return nil, &ValidationError{Field: "time_windows", Reason: fmt.Sprintf("length %d does not match %d locations", len(opts.TimeWindows), n)}
		}
		for i, tw := range opts.TimeWindows {
			if tw.Earliest > tw.Latest {
				return nil, &ValidationError{Field: "time_windows", Reason: fmt.Sprintf("location %d has earliest %d > latest %d", i, tw.Earliest, tw.Latest)}
			}
			if tw.Earliest < 0 {
				return nil, &ValidationError{Field: "time_windows", Reason: fmt.Sprintf("location %d has negative earliest %d", i, tw.Earliest)}
			}
		}
		p.windows = opts.TimeWindows
	}
	if opts.ServiceTimes != nil {
		if len(opts.ServiceTimes) != n {
			return nil, &ValidationError{Field: "service_times", Reason: fmt.Sprintf("length %d does not match %d locations", len(opts.ServiceTimes), n)}
		}
		for i, st := range opts.ServiceTimes {
			if st < 0 {
				return nil, &ValidationError{Field: "service_times", Reason: fmt.Sprintf("negative service time at location %d", i)}
			}
		}
		p.service = opts.ServiceTimes
	}
	if opts.TimeMatrix != nil {
		if len(opts.TimeMatrix) != n {
			return nil, &ValidationError{Field: "time_matrix", Reason: fmt.Sprintf("length %d does not match %d locations", len(opts.TimeMatrix), n)}
		}
		for i, row := range opts.TimeMatrix {
			if len(row) != n {
				return nil, &ValidationError{Field: "time_matrix", Reason: fmt.Sprintf("row %d has length %d, want %d", i, len(row), n)}
			}
		}
		p.travel = opts.TimeMatrix
	} else if p.windows != nil {
		p.travel = deriveTravelMatrix(dist)
	}
	return p, nil
}

// deriveTravelMatrix converts meters to whole minutes at the fixed average
// speed. Pure arithmetic, no part of the search.
func deriveTravelMatrix(dist [][]int64) [][]int64 {
	out := make([][]int64, len(dist))
	for i, row := range dist {
		out[i] = make([]int64, len(row))
		for j, d := range row {
			out[i][j] = d / SpeedMetersPerMinute
		}
	}
	return out
}

// NumLocations returns N including the depot.
func (p *Problem) NumLocations() int { return len(p.dist) }

// NumVehicles returns the fleet size.
func (p *Problem) NumVehicles() int { return len(p.capacities) }

// Depot returns the distinguished start/end location index.
func (p *Problem) Depot() int { return p.depot }

// ArcCost returns the distance from location i to location j.
func (p *Problem) ArcCost(i, j int) int64 { return p.dist[i][j] }

// Demand returns the demand at a location.
func (p *Problem) Demand(i int) int64 { return p.demands[i] }

// Capacity returns the capacity of a vehicle.
func (p *Problem) Capacity(v int) int64 { return p.capacities[v] }

// ServiceTime returns the minutes consumed at a location before departure.
func (p *Problem) ServiceTime(i int) int64 {
	if p.service == nil {
		return 0
	}
	return p.service[i]
}

// TransitTime returns travel from i to j plus the service time at i, matching
// the accumulation rule of the time dimension.
func (p *Problem) TransitTime(i, j int) int64 {
	if p.travel == nil {
		return 0
	}
	return p.travel[i][j] + p.ServiceTime(i)
}

// HasTimeDimension reports whether time windows were supplied.
func (p *Problem) HasTimeDimension() bool { return p.windows != nil }

// Window returns the time window for a location. The depot is treated as
// open for the whole horizon even if a narrower window was supplied.
func (p *Problem) Window(i int) TimeWindow {
	if i == p.depot {
		return TimeWindow{Earliest: 0, Latest: HorizonMinutes}
	}
	return p.windows[i]
}

// TotalDemand sums demand over all locations.
func (p *Problem) TotalDemand() int64 {
	var sum int64
	for _, d := range p.demands {
		sum += d
	}
	return sum
}

// FleetCapacity sums capacity over all vehicles.
func (p *Problem) FleetCapacity() int64 {
	var sum int64
	for _, c := range p.capacities {
		sum += c
	}
	return sum
}
