package solver

import "math"

// Solution is one route per vehicle. Routes hold customer location indices
// only; the depot bookends are implicit. Stops the constructor could not
// place stay in unassigned until the improver finds room for them.
type Solution struct {
	routes     [][]int
	unassigned []int
}

func (s *Solution) clone() *Solution {
	out := &Solution{
		routes:     make([][]int, len(s.routes)),
		unassigned: append([]int(nil), s.unassigned...),
	}
	for i, r := range s.routes {
		out.routes[i] = append([]int(nil), r...)
	}
	return out
}

func (s *Solution) complete() bool { return len(s.unassigned) == 0 }

// distance is the real objective: total travel over all routes including
// depot departure and return arcs.
func (s *Solution) distance(p *Problem) int64 {
	var total int64
	for _, r := range s.routes {
		total += routeDistance(p, r)
	}
	return total
}

func routeDistance(p *Problem, route []int) int64 {
	if len(route) == 0 {
		return 0
	}
	depot := p.Depot()
	total := p.ArcCost(depot, route[0])
	for i := 1; i < len(route); i++ {
		total += p.ArcCost(route[i-1], route[i])
	}
	return total + p.ArcCost(route[len(route)-1], depot)
}

// construct builds the initial solution with a cheapest-extension heuristic:
// each vehicle in turn repeatedly appends the unvisited location with the
// lowest marginal distance among all locations that keep every dimension
// feasible, ties broken by lowest location index. A route closes when
// nothing more fits; leftover locations are reported as unassigned rather
// than dropped.
func construct(p *Problem, dims *registry) *Solution {
	n := p.NumLocations()
	depot := p.Depot()
	visited := make([]bool, n)
	visited[depot] = true

	sol := &Solution{routes: make([][]int, p.NumVehicles())}
	remaining := n - 1

	for v := 0; v < p.NumVehicles() && remaining > 0; v++ {
		route := []int{}
		for {
			last := depot
			if len(route) > 0 {
				last = route[len(route)-1]
			}
			best := -1
			bestCost := int64(math.MaxInt64)
			for loc := 0; loc < n; loc++ {
				if visited[loc] {
					continue
				}
				cand := append(route, loc)
				if !dims.routeFeasible(cand, v) {
					continue
				}
				// marginal cost of extending ...->last->depot through loc
				marginal := p.ArcCost(last, loc) + p.ArcCost(loc, depot) - p.ArcCost(last, depot)
				if marginal < bestCost {
					bestCost = marginal
					best = loc
				}
			}
			if best < 0 {
				break
			}
			route = append(route, best)
			visited[best] = true
			remaining--
		}
		sol.routes[v] = route
	}

	for loc := 0; loc < n; loc++ {
		if !visited[loc] {
			sol.unassigned = append(sol.unassigned, loc)
		}
	}
	return sol
}
