// Package solver implements a capacitated vehicle routing engine: greedy
// route construction followed by guided local search under a wall-clock
// budget. Each solve is a single synchronous computation over its own
// Problem and Solution instances; concurrent solves share nothing.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/logging"
)

// DefaultTimeLimit matches the production service default of five seconds.
const DefaultTimeLimit = 5 * time.Second

// SolveOptions tunes one solve.
type SolveOptions struct {
	// TimeLimit bounds the wall clock spent improving; DefaultTimeLimit
	// when zero.
	TimeLimit time.Duration
	// Progress, when set, receives an event each time the improver finds a
	// better incumbent.
	Progress func(ProgressEvent)
}

// Solve runs construction and improvement against a validated Problem and
// returns a tagged outcome. The reported solution, when present, satisfies
// the capacity dimension exactly and the time dimension when active.
func Solve(ctx context.Context, p *Problem, opts SolveOptions) Outcome {
	limit := opts.TimeLimit
	if limit <= 0 {
		limit = DefaultTimeLimit
	}
	log := logging.Component("solver")
	started := time.Now()

	if total, fleet := p.TotalDemand(), p.FleetCapacity(); total > fleet {
		return Outcome{
			Status: StatusInfeasible,
			Reason: fmt.Sprintf("total demand %d exceeds total fleet capacity %d", total, fleet),
		}
	}

	dims := newRegistry(p)
	initial := construct(p, dims)
	initialDist := initial.distance(p)
	log.Debug().
		Int("locations", p.NumLocations()-1).
		Int("vehicles", p.NumVehicles()).
		Int("unassigned", len(initial.unassigned)).
		Int64("initial_distance", initialDist).
		Msg("construction finished")

	deadline := started.Add(limit)
	im := newImprover(ctx, p, dims, deadline, opts.Progress)
	best, exit := im.run(initial)
	im.stats.InitialDistance = initialDist
	im.stats.ElapsedMs = time.Since(started).Milliseconds()

	if best == nil {
		if exit == exitTimedOut {
			return Outcome{
				Status: StatusTimedOutNoSolution,
				Reason: "time budget expired before a feasible solution was constructed",
				Search: im.stats,
			}
		}
		return Outcome{
			Status: StatusInfeasible,
			Reason: infeasibilityReason(initial),
			Search: im.stats,
		}
	}

	report, err := extract(p, dims, best)
	if err != nil {
		log.Error().Err(err).Msg("solution extraction failed invariant cross-check")
		return Outcome{
			Status: StatusInternalError,
			Reason: err.Error(),
			Search: im.stats,
		}
	}

	status := StatusSolved
	if exit == exitTimedOut {
		status = StatusTimedOut
	}
	logEvent(log, status).
		Int64("distance", report.Summary.TotalDistance).
		Int("vehicles_used", report.Summary.NumVehiclesUsed).
		Int("iterations", im.stats.Iterations).
		Int64("elapsed_ms", im.stats.ElapsedMs).
		Msg("solve finished")
	return Outcome{Status: status, Report: report, Search: im.stats}
}

func infeasibilityReason(initial *Solution) string {
	if n := len(initial.unassigned); n > 0 {
		return fmt.Sprintf("no feasible placement found for %d location(s), first unassigned index %d", n, initial.unassigned[0])
	}
	return "no feasible solution exists"
}

func logEvent(log zerolog.Logger, status Status) *zerolog.Event {
	if status == StatusTimedOut {
		return log.Warn()
	}
	return log.Info()
}
