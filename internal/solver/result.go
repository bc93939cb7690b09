package solver

import "errors"

// Status tags the outcome of a solve so callers can tell "no solution
// exists" apart from "no solution found in time" instead of catching one
// undifferentiated failure.
type Status string

const (
	// StatusSolved means the search converged on a feasible solution.
	StatusSolved Status = "solved"
	// StatusTimedOut means the budget expired but a feasible incumbent was
	// found and is reported.
	StatusTimedOut Status = "timed_out"
	// StatusInfeasible means no feasible solution exists for the input.
	StatusInfeasible Status = "infeasible"
	// StatusTimedOutNoSolution means the budget expired before any feasible
	// solution was constructed.
	StatusTimedOutNoSolution Status = "timed_out_no_solution"
	// StatusInternalError means an invariant the search guarantees was
	// violated; a defect, not a business outcome.
	StatusInternalError Status = "internal_error"
)

// ErrInternal marks extractor cross-check failures.
var ErrInternal = errors.New("solver internal invariant violated")

// Outcome is the tagged result of a solve. Report is non-nil exactly when a
// feasible solution is available (StatusSolved or StatusTimedOut).
type Outcome struct {
	Status Status      `json:"status"`
	Report *Report     `json:"report,omitempty"`
	Reason string      `json:"reason,omitempty"`
	Search SearchStats `json:"search"`
}

// Feasible reports whether the outcome carries a usable solution.
func (o Outcome) Feasible() bool {
	return o.Status == StatusSolved || o.Status == StatusTimedOut
}
