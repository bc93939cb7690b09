package store

import (
	"context"
	"sync"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/solver"
)

const memoryHistoryLimit = 1000

// Memory keeps solve history in process. History is bounded; the oldest
// records are dropped once the limit is reached.
type Memory struct {
	mu      sync.RWMutex
	records []SolveRecord
}

// NewMemory builds an empty in-process store.
func NewMemory() *Memory { return &Memory{} }

func (m *Memory) RecordSolve(_ context.Context, rec SolveRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if len(m.records) > memoryHistoryLimit {
		m.records = m.records[len(m.records)-memoryHistoryLimit:]
	}
	return nil
}

func (m *Memory) RecentSolves(_ context.Context, limit int) ([]SolveRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]SolveRecord, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) Stats(_ context.Context) (FleetStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st FleetStats
	st.TotalSolves = len(m.records)
	if st.TotalSolves == 0 {
		return st, nil
	}
	var durSum, distSum int64
	var usedSum int
	for _, r := range m.records {
		switch solver.Status(r.Status) {
		case solver.StatusSolved, solver.StatusTimedOut:
			st.SolvedCount++
		case solver.StatusInfeasible:
			st.InfeasibleCount++
		}
		if r.Cached {
			st.CacheHits++
		}
		durSum += r.DurationMs
		distSum += r.TotalDistance
		usedSum += r.VehiclesUsed
	}
	n := float64(st.TotalSolves)
	st.AvgDurationMs = float64(durSum) / n
	st.AvgDistance = float64(distSum) / n
	st.AvgVehiclesUsed = float64(usedSum) / n
	return st, nil
}

func (m *Memory) Close() error { return nil }
