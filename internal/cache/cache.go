// Package cache provides keyed storage for solved optimization responses.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/model"
)

// Key identifies a problem instance. Two requests with identical solver
// inputs produce the same key regardless of request-level metadata.
type Key string

// KeyFor hashes the solver-relevant fields of a request.
func KeyFor(req *model.OptimizeRequest) Key {
	payload := struct {
		Matrix       [][]int64  `json:"m"`
		Demands      []int64    `json:"d"`
		Capacities   []int64    `json:"c"`
		NumVehicles  int        `json:"n"`
		Depot        int        `json:"o"`
		TimeLimit    float64    `json:"t"`
		TimeWindows  [][2]int64 `json:"w,omitempty"`
		ServiceTimes []int64    `json:"s,omitempty"`
	}{req.DistanceMatrix, req.Demands, req.VehicleCapacities, req.NumVehicles, req.Depot, req.TimeLimit, req.TimeWindows, req.ServiceTimes}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return Key(hex.EncodeToString(sum[:]))
}

// Cache stores serialized solved responses keyed by problem hash. Values
// are opaque bytes so in-process and Redis backends share one shape.
type Cache interface {
	Get(ctx context.Context, k Key) ([]byte, bool)
	Put(ctx context.Context, k Key, raw []byte)
}
