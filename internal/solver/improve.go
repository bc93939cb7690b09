package solver

import (
	"context"
	"math"
	"time"
)

const (
	// glsLambda scales arc penalties relative to the mean arc cost.
	glsLambda = 0.2
	// maxStagnantOptima bounds how many consecutive local optima the search
	// cycles through without a new incumbent before declaring convergence.
	maxStagnantOptima = 60
	// orOptMaxSegment is the longest intra-route segment or-opt relocates.
	orOptMaxSegment = 3
)

// ProgressEvent is emitted whenever the improver finds a new incumbent.
type ProgressEvent struct {
	Iteration int           `json:"iteration"`
	Distance  int64         `json:"distance"`
	Elapsed   time.Duration `json:"-"`
	ElapsedMs int64         `json:"elapsed_ms"`
}

// SearchStats summarizes one improvement run.
type SearchStats struct {
	Iterations      int   `json:"iterations"`
	Improvements    int   `json:"improvements"`
	LocalOptima     int   `json:"local_optima"`
	InitialDistance int64 `json:"initial_distance"`
	BestDistance    int64 `json:"best_distance"`
	ElapsedMs       int64 `json:"elapsed_ms"`
}

type exitState int

const (
	exitTimedOut exitState = iota
	exitConverged
)

// improver refines a solution in place under a wall-clock budget. Moves are
// evaluated against an augmented cost (real distance plus accumulated arc
// penalties); only real-cost feasible complete solutions become incumbents,
// so an escaping move never degrades the reported result.
type improver struct {
	p         *Problem
	dims      *registry
	ctx       context.Context
	deadline  time.Time
	started   time.Time
	pen       [][]int64
	penWeight int64
	onBetter  func(ProgressEvent)
	stats     SearchStats
}

func newImprover(ctx context.Context, p *Problem, dims *registry, deadline time.Time, onBetter func(ProgressEvent)) *improver {
	n := p.NumLocations()
	pen := make([][]int64, n)
	for i := range pen {
		pen[i] = make([]int64, n)
	}
	return &improver{
		p:         p,
		dims:      dims,
		ctx:       ctx,
		deadline:  deadline,
		started:   time.Now(),
		pen:       pen,
		penWeight: penaltyWeight(p),
		onBetter:  onBetter,
	}
}

// penaltyWeight is lambda times the mean non-zero arc cost, floored at 1 so
// penalties always bite on integer matrices.
func penaltyWeight(p *Problem) int64 {
	n := p.NumLocations()
	var sum int64
	var count int64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if i != j {
				sum += p.ArcCost(i, j)
				count++
			}
		}
	}
	if count == 0 {
		return 1
	}
	w := int64(glsLambda * float64(sum) / float64(count))
	if w < 1 {
		w = 1
	}
	return w
}

func (im *improver) expired() bool {
	select {
	case <-im.ctx.Done():
		return true
	default:
	}
	return !time.Now().Before(im.deadline)
}

func (im *improver) augArc(i, j int) int64 {
	return im.p.ArcCost(i, j) + im.penWeight*im.pen[i][j]
}

func (im *improver) augRoute(route []int) int64 {
	if len(route) == 0 {
		return 0
	}
	depot := im.p.Depot()
	total := im.augArc(depot, route[0])
	for i := 1; i < len(route); i++ {
		total += im.augArc(route[i-1], route[i])
	}
	return total + im.augArc(route[len(route)-1], depot)
}

// run drives the improvement loop until the budget expires or the search
// converges. It returns the best complete feasible solution seen, which may
// be nil when coverage was never achieved.
func (im *improver) run(sol *Solution) (*Solution, exitState) {
	var best *Solution
	var bestDist int64
	promote := func(s *Solution) {
		if !s.complete() {
			return
		}
		d := s.distance(im.p)
		if best != nil && d >= bestDist {
			return
		}
		best = s.clone()
		bestDist = d
		im.stats.Improvements++
		im.stats.BestDistance = d
		if im.onBetter != nil {
			elapsed := time.Since(im.started)
			im.onBetter(ProgressEvent{
				Iteration: im.stats.Iterations,
				Distance:  d,
				Elapsed:   elapsed,
				ElapsedMs: elapsed.Milliseconds(),
			})
		}
	}
	promote(sol)

	cur := sol
	stagnant := 0
	for {
		if im.expired() {
			return best, exitTimedOut
		}
		im.stats.Iterations++

		moved := im.coveragePass(cur)
		for _, pass := range []func(*Solution) bool{im.twoOptPass, im.orOptPass, im.relocatePass, im.swapPass} {
			if im.expired() {
				return best, exitTimedOut
			}
			if pass(cur) {
				moved = true
			}
		}

		prevBest := best
		promote(cur)
		if best != prevBest {
			stagnant = 0
		}

		if !moved {
			// Local optimum under the augmented cost: penalize the most
			// utilized expensive arcs and search again.
			if !im.penalize(cur) {
				return best, exitConverged
			}
			im.stats.LocalOptima++
			stagnant++
			if stagnant >= maxStagnantOptima {
				return best, exitConverged
			}
		}
	}
}

// penalize increments the penalty of every arc in the current solution with
// maximal utility cost/(1+penalty). Returns false when the solution has no
// arcs at all.
func (im *improver) penalize(s *Solution) bool {
	depot := im.p.Depot()
	type arc struct{ from, to int }
	var arcs []arc
	for _, r := range s.routes {
		if len(r) == 0 {
			continue
		}
		arcs = append(arcs, arc{depot, r[0]})
		for i := 1; i < len(r); i++ {
			arcs = append(arcs, arc{r[i-1], r[i]})
		}
		arcs = append(arcs, arc{r[len(r)-1], depot})
	}
	if len(arcs) == 0 {
		return false
	}
	bestUtil := -1.0
	for _, a := range arcs {
		u := float64(im.p.ArcCost(a.from, a.to)) / float64(1+im.pen[a.from][a.to])
		if u > bestUtil {
			bestUtil = u
		}
	}
	for _, a := range arcs {
		u := float64(im.p.ArcCost(a.from, a.to)) / float64(1+im.pen[a.from][a.to])
		if u == bestUtil {
			im.pen[a.from][a.to]++
		}
	}
	return true
}

// coveragePass tries to place unassigned stops: cheapest feasible insertion
// first, then an ejection move that relocates one assigned stop to another
// route to make room. Any move that reduces the unassigned set is accepted
// regardless of distance.
func (im *improver) coveragePass(s *Solution) bool {
	moved := false
	for i := 0; i < len(s.unassigned); {
		loc := s.unassigned[i]
		if im.insertCheapest(s, loc) || im.insertWithEjection(s, loc) || im.makeRoom(s, loc) {
			s.unassigned = append(s.unassigned[:i], s.unassigned[i+1:]...)
			moved = true
			continue
		}
		i++
	}
	return moved
}

// makeRoom frees capacity for loc on one target route by relocating the
// target's stops onto other vehicles, cheapest augmented delta first, until
// loc fits. The relocations are restored when no target route can be opened
// up.
func (im *improver) makeRoom(s *Solution, loc int) bool {
	need := im.p.Demand(loc)
	residual := func(v int) int64 {
		return im.p.Capacity(v) - im.dims.capacity.load(s.routes[v])
	}
	for target := range s.routes {
		snapshot := make([][]int, len(s.routes))
		for v, r := range s.routes {
			snapshot[v] = append([]int(nil), r...)
		}
		opened := true
		for residual(target) < need {
			type move struct {
				b        int
				src, dst []int
			}
			var bestMove *move
			bestDelta := int64(math.MaxInt64)
			for i := range s.routes[target] {
				x := s.routes[target][i]
				src := removeAt(s.routes[target], i)
				if !im.dims.routeFeasible(src, target) {
					continue
				}
				base := im.augRoute(s.routes[target])
				for b := range s.routes {
					if b == target {
						continue
					}
					for pos := 0; pos <= len(s.routes[b]); pos++ {
						cand := insertAt(s.routes[b], x, pos)
						if !im.dims.routeFeasible(cand, b) {
							continue
						}
						delta := (im.augRoute(src) + im.augRoute(cand)) - (base + im.augRoute(s.routes[b]))
						if delta < bestDelta {
							bestDelta = delta
							bestMove = &move{b: b, src: src, dst: cand}
						}
					}
				}
			}
			if bestMove == nil {
				opened = false
				break
			}
			s.routes[target] = bestMove.src
			s.routes[bestMove.b] = bestMove.dst
		}
		if opened && residual(target) >= need {
			bestPos := -1
			bestCost := int64(math.MaxInt64)
			for pos := 0; pos <= len(s.routes[target]); pos++ {
				cand := insertAt(s.routes[target], loc, pos)
				if !im.dims.routeFeasible(cand, target) {
					continue
				}
				if c := im.augRoute(cand); c < bestCost {
					bestCost = c
					bestPos = pos
				}
			}
			if bestPos >= 0 {
				s.routes[target] = insertAt(s.routes[target], loc, bestPos)
				return true
			}
		}
		copy(s.routes, snapshot)
	}
	return false
}

func (im *improver) insertCheapest(s *Solution, loc int) bool {
	bestV, bestPos := -1, -1
	bestCost := int64(math.MaxInt64)
	for v, route := range s.routes {
		for pos := 0; pos <= len(route); pos++ {
			cand := insertAt(route, loc, pos)
			if !im.dims.routeFeasible(cand, v) {
				continue
			}
			if c := im.augRoute(cand); c < bestCost {
				bestCost = c
				bestV, bestPos = v, pos
			}
		}
	}
	if bestV < 0 {
		return false
	}
	s.routes[bestV] = insertAt(s.routes[bestV], loc, bestPos)
	return true
}

// insertWithEjection ejects one stop from a route, inserts loc in its place
// (at the best feasible position), and re-homes the ejected stop on a
// different route. First feasible combination wins.
func (im *improver) insertWithEjection(s *Solution, loc int) bool {
	for a, route := range s.routes {
		for i, ejected := range route {
			reduced := removeAt(route, i)
			aPos := -1
			aCost := int64(math.MaxInt64)
			for pos := 0; pos <= len(reduced); pos++ {
				cand := insertAt(reduced, loc, pos)
				if !im.dims.routeFeasible(cand, a) {
					continue
				}
				if c := im.augRoute(cand); c < aCost {
					aCost = c
					aPos = pos
				}
			}
			if aPos < 0 {
				continue
			}
			newA := insertAt(reduced, loc, aPos)
			for b := range s.routes {
				if b == a {
					continue
				}
				for pos := 0; pos <= len(s.routes[b]); pos++ {
					cand := insertAt(s.routes[b], ejected, pos)
					if !im.dims.routeFeasible(cand, b) {
						continue
					}
					s.routes[a] = newA
					s.routes[b] = cand
					return true
				}
			}
		}
	}
	return false
}

// twoOptPass reverses intra-route segments, first improvement on the
// augmented cost.
func (im *improver) twoOptPass(s *Solution) bool {
	moved := false
	for v, route := range s.routes {
		n := len(route)
		if n < 3 {
			continue
		}
		base := im.augRoute(route)
		for i := 0; i < n-1; i++ {
			for k := i + 1; k < n; k++ {
				cand := append([]int(nil), route...)
				for a, b := i, k; a < b; a, b = a+1, b-1 {
					cand[a], cand[b] = cand[b], cand[a]
				}
				c := im.augRoute(cand)
				if c >= base {
					continue
				}
				if !im.dims.routeFeasible(cand, v) {
					continue
				}
				route = cand
				base = c
				moved = true
			}
		}
		s.routes[v] = route
	}
	return moved
}

// orOptPass relocates segments of length 1..3 within their own route.
func (im *improver) orOptPass(s *Solution) bool {
	moved := false
	for v, route := range s.routes {
		n := len(route)
		if n < 2 {
			continue
		}
		base := im.augRoute(route)
		for segLen := 1; segLen <= orOptMaxSegment && segLen < n; segLen++ {
			for i := 0; i+segLen <= n; i++ {
				seg := append([]int(nil), route[i:i+segLen]...)
				rest := append(append([]int(nil), route[:i]...), route[i+segLen:]...)
				for pos := 0; pos <= len(rest); pos++ {
					if pos == i {
						continue
					}
					cand := append(append(append([]int(nil), rest[:pos]...), seg...), rest[pos:]...)
					c := im.augRoute(cand)
					if c >= base {
						continue
					}
					if !im.dims.routeFeasible(cand, v) {
						continue
					}
					route = cand
					n = len(route)
					base = c
					moved = true
					break
				}
			}
		}
		s.routes[v] = route
	}
	return moved
}

// relocatePass moves single stops between vehicles.
func (im *improver) relocatePass(s *Solution) bool {
	moved := false
	for a := range s.routes {
		for i := 0; i < len(s.routes[a]); i++ {
			loc := s.routes[a][i]
			srcBase := im.augRoute(s.routes[a])
			src := removeAt(s.routes[a], i)
			srcCost := im.augRoute(src)
			applied := false
			for b := range s.routes {
				if b == a {
					continue
				}
				dstBase := im.augRoute(s.routes[b])
				for pos := 0; pos <= len(s.routes[b]); pos++ {
					cand := insertAt(s.routes[b], loc, pos)
					delta := (srcCost + im.augRoute(cand)) - (srcBase + dstBase)
					if delta >= 0 {
						continue
					}
					if !im.dims.routeFeasible(cand, b) || !im.dims.routeFeasible(src, a) {
						continue
					}
					s.routes[a] = src
					s.routes[b] = cand
					moved = true
					applied = true
					break
				}
				if applied {
					break
				}
			}
			if applied {
				i--
			}
		}
	}
	return moved
}

// swapPass exchanges one stop between two vehicles.
func (im *improver) swapPass(s *Solution) bool {
	moved := false
	for a := 0; a < len(s.routes); a++ {
		for b := a + 1; b < len(s.routes); b++ {
			for i := 0; i < len(s.routes[a]); i++ {
				for j := 0; j < len(s.routes[b]); j++ {
					base := im.augRoute(s.routes[a]) + im.augRoute(s.routes[b])
					ca := append([]int(nil), s.routes[a]...)
					cb := append([]int(nil), s.routes[b]...)
					ca[i], cb[j] = cb[j], ca[i]
					if im.augRoute(ca)+im.augRoute(cb) >= base {
						continue
					}
					if !im.dims.routeFeasible(ca, a) || !im.dims.routeFeasible(cb, b) {
						continue
					}
					s.routes[a] = ca
					s.routes[b] = cb
					moved = true
				}
			}
		}
	}
	return moved
}

func insertAt(route []int, loc, pos int) []int {
	out := make([]int, 0, len(route)+1)
	out = append(out, route[:pos]...)
	out = append(out, loc)
	return append(out, route[pos:]...)
}

func removeAt(route []int, i int) []int {
	out := make([]int, 0, len(route)-1)
	out = append(out, route[:i]...)
	return append(out, route[i+1:]...)
}
