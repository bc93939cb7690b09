package solver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solveOpts() SolveOptions {
	return SolveOptions{TimeLimit: 2 * time.Second}
}

func TestSolveSmallFleet(t *testing.T) {
	dist, demands, caps := validInput()
	p, err := NewProblem(dist, demands, caps, 2, 0, nil)
	require.NoError(t, err)

	out := Solve(context.Background(), p, solveOpts())
	require.True(t, out.Feasible(), "status=%s reason=%s", out.Status, out.Reason)
	require.NotNil(t, out.Report)

	assert.Equal(t, int64(15), out.Report.Summary.TotalLoad)
	assert.Equal(t, out.Report.Summary.TotalDemand, out.Report.Summary.TotalLoad)
	for _, rt := range out.Report.Routes {
		require.GreaterOrEqual(t, len(rt.Stops), 2)
		assert.Equal(t, 0, rt.Stops[0].LocationIndex)
		assert.Equal(t, 0, rt.Stops[len(rt.Stops)-1].LocationIndex)
	}
}

func TestSolveInfeasibleFleet(t *testing.T) {
	dist := [][]int64{
		{0, 100, 200},
		{100, 0, 150},
		{200, 150, 0},
	}
	p, err := NewProblem(dist, []int64{0, 10, 10}, []int64{5, 5}, 2, 0, nil)
	require.NoError(t, err)

	out := Solve(context.Background(), p, solveOpts())
	assert.Equal(t, StatusInfeasible, out.Status)
	assert.Contains(t, out.Reason, "total demand 20 exceeds total fleet capacity 10")
	assert.Nil(t, out.Report)
}

func TestSolveDepotOnly(t *testing.T) {
	p, err := NewProblem([][]int64{{0}}, []int64{0}, []int64{10, 10}, 2, 0, nil)
	require.NoError(t, err)

	out := Solve(context.Background(), p, solveOpts())
	require.Equal(t, StatusSolved, out.Status)
	require.NotNil(t, out.Report)
	assert.Equal(t, int64(0), out.Report.Summary.TotalLoad)
	assert.Equal(t, 0, out.Report.Summary.NumVehiclesUsed)
	for _, rt := range out.Report.Routes {
		assert.Len(t, rt.Stops, 2)
		assert.Equal(t, int64(0), rt.TotalLoad)
	}
}

// cityDistances is a 17 location instance (depot plus 16 stops) whose total
// demand of 60 exactly fills four vehicles of capacity 15, so every complete
// solution packs each vehicle to 100% utilization.
var cityDistances = [][]int64{
	{0, 548, 776, 696, 582, 274, 502, 194, 308, 194, 536, 502, 388, 354, 468, 776, 662},
	{548, 0, 684, 308, 194, 502, 730, 354, 696, 742, 1084, 594, 480, 674, 1016, 868, 1210},
	{776, 684, 0, 992, 878, 502, 274, 810, 468, 742, 400, 1278, 1164, 1130, 788, 1552, 754},
	{696, 308, 992, 0, 114, 650, 878, 502, 844, 890, 1232, 514, 628, 822, 1164, 560, 1358},
	{582, 194, 878, 114, 0, 536, 764, 388, 730, 776, 1118, 400, 514, 708, 1050, 674, 1244},
	{274, 502, 502, 650, 536, 0, 228, 308, 194, 240, 582, 776, 662, 628, 514, 1050, 708},
	{502, 730, 274, 878, 764, 228, 0, 536, 194, 468, 354, 1004, 890, 856, 514, 1278, 480},
	{194, 354, 810, 502, 388, 308, 536, 0, 342, 388, 730, 468, 354, 320, 662, 742, 856},
	{308, 696, 468, 844, 730, 194, 194, 342, 0, 274, 388, 810, 696, 662, 320, 1084, 514},
	{194, 742, 742, 890, 776, 240, 468, 388, 274, 0, 342, 536, 422, 388, 274, 810, 468},
	{536, 1084, 400, 1232, 1118, 582, 354, 730, 388, 342, 0, 878, 764, 730, 388, 1152, 354},
	{502, 594, 1278, 514, 400, 776, 1004, 468, 810, 536, 878, 0, 114, 308, 650, 274, 844},
	{388, 480, 1164, 628, 514, 662, 890, 354, 696, 422, 764, 114, 0, 194, 536, 388, 730},
	{354, 674, 1130, 822, 708, 628, 856, 320, 662, 388, 730, 308, 194, 0, 342, 422, 536},
	{468, 1016, 788, 1164, 1050, 514, 514, 662, 320, 274, 388, 650, 536, 342, 0, 764, 194},
	{776, 868, 1552, 560, 674, 1050, 1278, 742, 1084, 810, 1152, 274, 388, 422, 764, 0, 798},
	{662, 1210, 754, 1358, 1244, 708, 480, 856, 514, 468, 354, 844, 730, 536, 194, 798, 0},
}

func TestSolveTightPacking(t *testing.T) {
	demands := []int64{0, 1, 1, 2, 4, 2, 4, 8, 8, 1, 2, 1, 2, 4, 4, 8, 8}
	caps := []int64{15, 15, 15, 15}
	p, err := NewProblem(cityDistances, demands, caps, 4, 0, nil)
	require.NoError(t, err)

	out := Solve(context.Background(), p, SolveOptions{TimeLimit: 5 * time.Second})
	require.True(t, out.Feasible(), "status=%s reason=%s", out.Status, out.Reason)
	require.NotNil(t, out.Report)

	assert.Equal(t, int64(60), out.Report.Summary.TotalLoad)
	assert.Equal(t, 4, out.Report.Summary.NumVehiclesUsed)
	for _, rt := range out.Report.Routes {
		assert.Equal(t, int64(15), rt.TotalLoad, "vehicle %d", rt.VehicleID)
		assert.InDelta(t, 100.0, rt.CapacityUtilization, 0.001)
	}
}

func TestSolveCoversEveryLocationOnce(t *testing.T) {
	demands := []int64{0, 1, 1, 2, 4, 2, 4, 8, 8, 1, 2, 1, 2, 4, 4, 8, 8}
	caps := []int64{20, 20, 20, 20}
	p, err := NewProblem(cityDistances, demands, caps, 4, 0, nil)
	require.NoError(t, err)

	out := Solve(context.Background(), p, solveOpts())
	require.True(t, out.Feasible())

	seen := map[int]int{}
	for _, rt := range out.Report.Routes {
		for _, st := range rt.Stops[1 : len(rt.Stops)-1] {
			seen[st.LocationIndex]++
		}
	}
	for loc := 1; loc < len(demands); loc++ {
		assert.Equal(t, 1, seen[loc], "location %d", loc)
	}
}

func TestSolveWithTimeWindows(t *testing.T) {
	windows := []TimeWindow{
		{0, 480},
		{10, 120},
		{30, 200},
		{60, 300},
		{0, 480},
	}
	service := []int64{0, 8, 8, 8, 8}
	n := 5
	dist := minutesApart(n, 10)
	demands := []int64{0, 2, 3, 4, 5}
	p, err := NewProblem(dist, demands, []int64{10, 10}, 2, 0, &Options{
		TimeWindows:  windows,
		ServiceTimes: service,
	})
	require.NoError(t, err)

	out := Solve(context.Background(), p, solveOpts())
	require.True(t, out.Feasible(), "status=%s reason=%s", out.Status, out.Reason)

	for _, rt := range out.Report.Routes {
		var last int64 = -1
		for i, st := range rt.Stops {
			require.NotNil(t, st.ArrivalTime, "stop %d has no arrival", i)
			if i > 0 && i < len(rt.Stops)-1 {
				w := windows[st.LocationIndex]
				assert.GreaterOrEqual(t, *st.ArrivalTime, w.Earliest)
				assert.LessOrEqual(t, *st.ArrivalTime, w.Latest)
			}
			assert.GreaterOrEqual(t, *st.ArrivalTime, last, "arrival times must be non-decreasing")
			last = *st.ArrivalTime
		}
		if rt.TotalTime != nil {
			assert.LessOrEqual(t, *rt.TotalTime, int64(HorizonMinutes))
		}
	}
}

func TestSolveHonorsCancelledContext(t *testing.T) {
	dist, demands, caps := validInput()
	p, err := NewProblem(dist, demands, caps, 2, 0, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := Solve(ctx, p, SolveOptions{TimeLimit: time.Minute})
	// Construction is synchronous and always yields an incumbent here, so a
	// pre-cancelled context still reports the initial feasible solution.
	assert.True(t, out.Status == StatusTimedOut || out.Status == StatusSolved)
	require.NotNil(t, out.Report)
}

func TestSolveReportsProgress(t *testing.T) {
	demands := []int64{0, 1, 1, 2, 4, 2, 4, 8, 8, 1, 2, 1, 2, 4, 4, 8, 8}
	caps := []int64{20, 20, 20, 20}
	p, err := NewProblem(cityDistances, demands, caps, 4, 0, nil)
	require.NoError(t, err)

	var events []ProgressEvent
	out := Solve(context.Background(), p, SolveOptions{
		TimeLimit: 2 * time.Second,
		Progress:  func(ev ProgressEvent) { events = append(events, ev) },
	})
	require.True(t, out.Feasible())
	require.NotEmpty(t, events)
	for i := 1; i < len(events); i++ {
		assert.Less(t, events[i].Distance, events[i-1].Distance)
	}
	assert.Equal(t, out.Report.Summary.TotalDistance, events[len(events)-1].Distance)
}
