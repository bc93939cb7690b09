package solver

// Dimensions are the cumulative accumulation rules carried along a route:
// load for the capacity constraint and minutes for the optional time
// constraint. Both are checked on every candidate route the constructor or
// improver produces; a route that violates either is rejected outright.

// capacityDimension enforces that cumulative load never exceeds the owning
// vehicle's capacity at any prefix of the route.
type capacityDimension struct {
	p *Problem
}

func (d capacityDimension) feasible(route []int, vehicle int) bool {
	cap := d.p.Capacity(vehicle)
	var load int64
	for _, loc := range route {
		load += d.p.Demand(loc)
		if load > cap {
			return false
		}
	}
	return true
}

func (d capacityDimension) load(route []int) int64 {
	var load int64
	for _, loc := range route {
		load += d.p.Demand(loc)
	}
	return load
}

// timeDimension accumulates transit time between consecutive stops, clamps
// the value at every stop into its window (arriving early means waiting, up
// to the slack bound), and caps the value at the final depot return by the
// horizon.
type timeDimension struct {
	p *Problem
}

// routeSchedule holds recomputed service-start and departure minutes for
// every stop of one route, plus the depot departure and return times.
type routeSchedule struct {
	depart    int64 // depot departure
	arrivals  []int64
	departs   []int64
	returnsAt int64 // arrival back at the depot
}

// schedule propagates the time dimension along depot -> route -> depot.
// The depot departure floats so the first stop is reached at its earliest
// time without waiting; later stops may wait up to WaitingSlackMinutes.
func (d timeDimension) schedule(route []int) (routeSchedule, bool) {
	sched := routeSchedule{
		arrivals: make([]int64, len(route)),
		departs:  make([]int64, len(route)),
	}
	if len(route) == 0 {
		return sched, true
	}
	depot := d.p.Depot()

	first := route[0]
	if t0 := d.p.Window(first).Earliest - d.p.TransitTime(depot, first); t0 > 0 {
		sched.depart = t0
	}

	t := sched.depart
	prev := depot
	for i, loc := range route {
		t += d.p.TransitTime(prev, loc)
		w := d.p.Window(loc)
		if t < w.Earliest {
			if w.Earliest-t > WaitingSlackMinutes {
				return sched, false
			}
			t = w.Earliest
		}
		if t > w.Latest {
			return sched, false
		}
		sched.arrivals[i] = t
		sched.departs[i] = t + d.p.ServiceTime(loc)
		prev = loc
	}
	sched.returnsAt = t + d.p.TransitTime(prev, depot)
	if sched.returnsAt > HorizonMinutes {
		return sched, false
	}
	return sched, true
}

func (d timeDimension) feasible(route []int) bool {
	_, ok := d.schedule(route)
	return ok
}

// registry bundles the dimensions attached to a Problem.
type registry struct {
	capacity capacityDimension
	time     *timeDimension
}

func newRegistry(p *Problem) *registry {
	r := &registry{capacity: capacityDimension{p: p}}
	if p.HasTimeDimension() {
		r.time = &timeDimension{p: p}
	}
	return r
}

// routeFeasible checks every active dimension for one vehicle's route.
func (r *registry) routeFeasible(route []int, vehicle int) bool {
	if !r.capacity.feasible(route, vehicle) {
		return false
	}
	if r.time != nil && !r.time.feasible(route) {
		return false
	}
	return true
}
