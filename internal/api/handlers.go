package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/cache"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/metrics"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/model"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/solver"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/store"
)

const (
	algorithmName = "guided_local_search"
	strategyName  = "path_cheapest_arc"
)

// OptimizeHandler handles POST /api/optimize/cvrp.
func (s *Server) OptimizeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	var req model.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if req.TimeLimit <= 0 {
		req.TimeLimit = s.Cfg.Solver.DefaultTimeLimit.Std().Seconds()
	}
	req.ApplyDefaults()
	if err := validateOptimizeRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request", err.Error(), r.URL.Path)
		return
	}
	s.solve(w, r, &req)
}

// BatchHandler handles POST /api/optimize/batch: coordinate-based requests
// whose distance matrix is derived with the haversine formula.
func (s *Server) BatchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeProblem(w, http.StatusMethodNotAllowed, "method not allowed", "", r.URL.Path)
		return
	}
	var breq model.BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&breq); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateBatchRequest(&breq); err != nil {
		writeProblem(w, http.StatusBadRequest, "invalid request", err.Error(), r.URL.Path)
		return
	}
	if breq.TimeLimit <= 0 {
		breq.TimeLimit = s.Cfg.Solver.DefaultTimeLimit.Std().Seconds()
	}
	s.solve(w, r, breq.ToOptimizeRequest())
}

func (s *Server) solve(w http.ResponseWriter, r *http.Request, req *model.OptimizeRequest) {
	ctx := r.Context()
	solveID := req.SolveID
	if solveID == "" {
		solveID = uuid.NewString()
	}
	key := cache.KeyFor(req)

	if s.Cache != nil {
		if raw, ok := s.Cache.Get(ctx, key); ok {
			var resp model.OptimizeResponse
			if err := json.Unmarshal(raw, &resp); err == nil {
				metrics.CacheLookups.WithLabelValues("hit").Inc()
				if resp.Metadata != nil {
					resp.Metadata.SolveID = solveID
					resp.Metadata.Cached = true
					resp.Metadata.Timestamp = time.Now().UTC().Format(time.RFC3339)
				}
				s.recordSolve(req, solveID, string(key), resp.Metadata, resp.Summary, 0, true)
				s.Broker.Publish(solveID, ProgressUpdate{SolveID: solveID, Type: "done", Status: statusOf(resp.Metadata)})
				writeJSON(w, http.StatusOK, resp)
				return
			}
		}
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	}

	p, err := req.Problem()
	if err != nil {
		var verr *solver.ValidationError
		if errors.As(err, &verr) {
			writeProblem(w, http.StatusBadRequest, "invalid request", verr.Error(), r.URL.Path)
			return
		}
		writeProblem(w, http.StatusBadRequest, "invalid request", err.Error(), r.URL.Path)
		return
	}

	limit := time.Duration(req.TimeLimit * float64(time.Second))
	if ceiling := s.Cfg.Solver.MaxTimeLimit.Std(); ceiling > 0 && limit > ceiling {
		limit = ceiling
	}

	started := time.Now()
	outcome := solver.Solve(ctx, p, solver.SolveOptions{
		TimeLimit: limit,
		Progress: func(evt solver.ProgressEvent) {
			s.Broker.Publish(solveID, ProgressUpdate{
				SolveID:   solveID,
				Type:      "progress",
				Iteration: int64(evt.Iteration),
				Distance:  evt.Distance,
				ElapsedMs: evt.ElapsedMs,
			})
		},
	})
	elapsed := time.Since(started)

	metrics.SolveDuration.WithLabelValues(string(outcome.Status)).Observe(elapsed.Seconds())
	metrics.SolveOutcomes.WithLabelValues(string(outcome.Status)).Inc()
	metrics.SolveIterations.Observe(float64(outcome.Search.Iterations))

	resp := buildResponse(solveID, req, outcome)
	s.recordSolve(req, solveID, string(key), resp.Metadata, resp.Summary, elapsed, false)
	s.Broker.Publish(solveID, ProgressUpdate{SolveID: solveID, Type: "done", Status: string(outcome.Status)})

	code := http.StatusOK
	switch outcome.Status {
	case solver.StatusInfeasible, solver.StatusTimedOutNoSolution:
		code = http.StatusUnprocessableEntity
	case solver.StatusInternalError:
		code = http.StatusInternalServerError
	}
	if code == http.StatusOK && s.Cache != nil {
		if raw, err := json.Marshal(resp); err == nil {
			s.Cache.Put(ctx, key, raw)
		}
	}
	writeJSON(w, code, resp)
}

func buildResponse(solveID string, req *model.OptimizeRequest, outcome solver.Outcome) *model.OptimizeResponse {
	meta := &model.OptimizationMetadata{
		SolveID:            solveID,
		Algorithm:          algorithmName,
		Strategy:           strategyName,
		Status:             string(outcome.Status),
		TimeWindowsEnabled: req.TimeWindows != nil,
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
	}
	resp := &model.OptimizeResponse{Metadata: meta}
	if outcome.Feasible() {
		resp.Success = true
		resp.Routes = outcome.Report.Routes
		resp.Summary = &outcome.Report.Summary
		return resp
	}
	resp.Error = outcome.Reason
	if resp.Error == "" {
		resp.Error = "no solution found"
	}
	return resp
}

func statusOf(meta *model.OptimizationMetadata) string {
	if meta == nil {
		return ""
	}
	return meta.Status
}

func (s *Server) recordSolve(req *model.OptimizeRequest, solveID, hash string, meta *model.OptimizationMetadata, summary *solver.Summary, elapsed time.Duration, cached bool) {
	rec := store.SolveRecord{
		ID:           solveID,
		CreatedAt:    time.Now().UTC(),
		RequestHash:  hash,
		NumLocations: len(req.DistanceMatrix),
		NumVehicles:  req.NumVehicles,
		Status:       statusOf(meta),
		Cached:       cached,
		Duration:     elapsed,
		DurationMs:   elapsed.Milliseconds(),
	}
	if summary != nil {
		rec.TotalDistance = summary.TotalDistance
		rec.TotalLoad = summary.TotalLoad
		rec.VehiclesUsed = summary.NumVehiclesUsed
	}
	// Persist off the request context so a client disconnect does not
	// lose the history row.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Store.RecordSolve(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("solve_id", solveID).Msg("record solve failed")
	}
}

// HealthHandler reports liveness.
func (s *Server) HealthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "fleet-optimization-api"})
}

// ReadyHandler reports readiness; with a Postgres store it checks the pool.
func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	if pg, ok := s.Store.(*store.Postgres); ok {
		if err := pg.Ping(r.Context()); err != nil {
			writeProblem(w, http.StatusServiceUnavailable, "not ready", err.Error(), r.URL.Path)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// SolveStatsHandler handles GET /api/stats/solves.
func (s *Server) SolveStatsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	recs, err := s.Store.RecentSolves(r.Context(), limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "store error", err.Error(), r.URL.Path)
		return
	}
	if recs == nil {
		recs = []store.SolveRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"solves": recs})
}

// FleetStatsHandler handles GET /api/stats/fleet.
func (s *Server) FleetStatsHandler(w http.ResponseWriter, r *http.Request) {
	st, err := s.Store.Stats(r.Context())
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "store error", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Routes builds the service mux with middleware applied.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/optimize/cvrp", s.wrap("/api/optimize/cvrp", s.OptimizeHandler))
	mux.HandleFunc("/api/optimize/batch", s.wrap("/api/optimize/batch", s.BatchHandler))
	mux.HandleFunc("/api/optimize/stream", s.StreamHandler)
	mux.HandleFunc("/api/stats/solves", s.wrap("/api/stats/solves", s.SolveStatsHandler))
	mux.HandleFunc("/api/stats/fleet", s.wrap("/api/stats/fleet", s.FleetStatsHandler))
	mux.HandleFunc("/health", s.HealthHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.HandleFunc("/readyz", s.ReadyHandler)
	return mux
}
