package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/geo"
	"github.com/ridrisa/barq-fleet-optimization-api/internal/solver"
)

func TestBatchToOptimizeRequest(t *testing.T) {
	st := int64(12)
	b := &BatchRequest{
		Depot: geo.Point{Lat: 24.7136, Lng: 46.6753},
		Locations: []BatchLocation{
			{ID: "loc1", Lat: 24.7236, Lng: 46.6853, Demand: 5,
				TimeWindow: &BatchTimeWindow{Earliest: 60, Latest: 180}, ServiceTime: &st},
			{ID: "loc2", Lat: 24.7336, Lng: 46.6953, Demand: 10},
		},
		Vehicles: []BatchVehicle{{ID: "v1", Capacity: 15}, {ID: "v2", Capacity: 15}},
	}

	req := b.ToOptimizeRequest()
	assert.Len(t, req.DistanceMatrix, 3)
	assert.Equal(t, []int64{0, 5, 10}, req.Demands)
	assert.Equal(t, []int64{15, 15}, req.VehicleCapacities)
	assert.Equal(t, 2, req.NumVehicles)
	assert.Equal(t, 0, req.Depot)
	assert.Equal(t, float64(DefaultTimeLimitSeconds), req.TimeLimit)

	require.Len(t, req.TimeWindows, 3)
	assert.Equal(t, [2]int64{0, solver.HorizonMinutes}, req.TimeWindows[0])
	assert.Equal(t, [2]int64{60, 180}, req.TimeWindows[1])
	assert.Equal(t, [2]int64{0, solver.HorizonMinutes}, req.TimeWindows[2])
	assert.Equal(t, []int64{0, 12, DefaultServiceTimeMinutes}, req.ServiceTimes)

	p, err := req.Problem()
	require.NoError(t, err)
	assert.Equal(t, 3, p.NumLocations())
	assert.True(t, p.HasTimeDimension())
}

func TestBatchWithoutWindowsSkipsTimeDimension(t *testing.T) {
	b := &BatchRequest{
		Depot:     geo.Point{Lat: 24.7, Lng: 46.6},
		Locations: []BatchLocation{{Lat: 24.71, Lng: 46.61, Demand: 3}},
		Vehicles:  []BatchVehicle{{Capacity: 5}},
	}
	req := b.ToOptimizeRequest()
	assert.Nil(t, req.TimeWindows)
	assert.Nil(t, req.ServiceTimes)

	p, err := req.Problem()
	require.NoError(t, err)
	assert.False(t, p.HasTimeDimension())
}

func TestProblemSurfacesValidationError(t *testing.T) {
	req := &OptimizeRequest{
		DistanceMatrix:    [][]int64{{0, 1}, {1, 0}},
		Demands:           []int64{0, 1, 2},
		VehicleCapacities: []int64{5},
		NumVehicles:       1,
	}
	_, err := req.Problem()
	var verr *solver.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "demands", verr.Field)
}
