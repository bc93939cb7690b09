package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minutesApart builds a symmetric distance matrix where adjacent indices are
// the given number of minutes apart at the fixed conversion speed.
func minutesApart(n int, minutes int64) [][]int64 {
	dist := make([][]int64, n)
	for i := range dist {
		dist[i] = make([]int64, n)
		for j := range dist[i] {
			d := int64(i - j)
			if d < 0 {
				d = -d
			}
			dist[i][j] = d * minutes * SpeedMetersPerMinute
		}
	}
	return dist
}

func timeProblem(t *testing.T, windows []TimeWindow, service []int64) *Problem {
	t.Helper()
	n := len(windows)
	demands := make([]int64, n)
	for i := 1; i < n; i++ {
		demands[i] = 1
	}
	p, err := NewProblem(minutesApart(n, 10), demands, []int64{100}, 1, 0, &Options{
		TimeWindows:  windows,
		ServiceTimes: service,
	})
	require.NoError(t, err)
	return p
}

func TestScheduleWaitsForEarliest(t *testing.T) {
	p := timeProblem(t, []TimeWindow{{0, 480}, {30, 60}}, nil)
	dim := timeDimension{p: p}

	sched, ok := dim.schedule([]int{1})
	require.True(t, ok)
	// Departure floats so the stop is reached exactly at its earliest time.
	assert.Equal(t, int64(20), sched.depart)
	assert.Equal(t, int64(30), sched.arrivals[0])
}

func TestScheduleRejectsLateArrival(t *testing.T) {
	// Location 2 is 20 minutes out but closes after 15.
	p := timeProblem(t, []TimeWindow{{0, 480}, {0, 480}, {0, 15}}, nil)
	dim := timeDimension{p: p}

	_, ok := dim.schedule([]int{1, 2})
	assert.False(t, ok)
}

func TestScheduleBoundsWaiting(t *testing.T) {
	// Stop 2 opens 45 minutes after stop 1 closes its service, which would
	// require waiting beyond the slack allowance.
	p := timeProblem(t, []TimeWindow{{0, 480}, {0, 10}, {65, 120}}, nil)
	dim := timeDimension{p: p}

	_, ok := dim.schedule([]int{1, 2})
	assert.False(t, ok)

	// A 25 minute wait is inside the slack bound.
	p = timeProblem(t, []TimeWindow{{0, 480}, {0, 10}, {45, 120}}, nil)
	dim = timeDimension{p: p}
	sched, ok := dim.schedule([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, int64(45), sched.arrivals[1])
}

func TestScheduleEnforcesHorizon(t *testing.T) {
	// 25 stops at 10 minute spacing walk well past the 480 minute horizon.
	n := 26
	windows := make([]TimeWindow, n)
	for i := range windows {
		windows[i] = TimeWindow{0, 480}
	}
	p := timeProblem(t, windows, nil)
	dim := timeDimension{p: p}

	route := make([]int, n-1)
	for i := range route {
		route[i] = i + 1
	}
	_, ok := dim.schedule(route)
	assert.False(t, ok)
}

func TestScheduleAccumulatesServiceTime(t *testing.T) {
	service := []int64{0, 8, 8}
	p := timeProblem(t, []TimeWindow{{0, 480}, {0, 480}, {0, 480}}, service)
	dim := timeDimension{p: p}

	sched, ok := dim.schedule([]int{1, 2})
	require.True(t, ok)
	assert.Equal(t, int64(10), sched.arrivals[0])
	assert.Equal(t, int64(18), sched.departs[0])
	assert.Equal(t, int64(28), sched.arrivals[1])
	assert.Equal(t, int64(36), sched.departs[1])
	assert.Equal(t, int64(56), sched.returnsAt)
}

func TestCapacityDimensionPrefixCheck(t *testing.T) {
	dist, demands, caps := validInput()
	p, err := NewProblem(dist, demands, caps, 2, 0, nil)
	require.NoError(t, err)
	dim := capacityDimension{p: p}

	assert.True(t, dim.feasible([]int{1, 2}, 0))
	assert.Equal(t, int64(15), dim.load([]int{1, 2}))

	tight, err := NewProblem(dist, demands, []int64{9, 15}, 2, 0, nil)
	require.NoError(t, err)
	dim = capacityDimension{p: tight}
	assert.False(t, dim.feasible([]int{1, 2}, 0))
	assert.True(t, dim.feasible([]int{1}, 0))
}
