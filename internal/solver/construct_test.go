package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructDeterministic(t *testing.T) {
	dist, demands, caps := validInput()
	p, err := NewProblem(dist, demands, caps, 2, 0, nil)
	require.NoError(t, err)
	dims := newRegistry(p)

	first := construct(p, dims)
	for i := 0; i < 5; i++ {
		again := construct(p, dims)
		assert.Equal(t, first.routes, again.routes)
		assert.Equal(t, first.unassigned, again.unassigned)
	}
}

func TestConstructRespectsCapacity(t *testing.T) {
	dist, demands, _ := validInput()
	p, err := NewProblem(dist, demands, []int64{5, 10}, 2, 0, nil)
	require.NoError(t, err)
	dims := newRegistry(p)

	sol := construct(p, dims)
	assert.True(t, sol.complete())
	for v, route := range sol.routes {
		assert.True(t, dims.capacity.feasible(route, v), "vehicle %d over capacity", v)
	}
}

func TestConstructSurfacesUnassigned(t *testing.T) {
	// One location whose demand fits no single vehicle.
	dist := [][]int64{
		{0, 100, 200},
		{100, 0, 150},
		{200, 150, 0},
	}
	p, err := NewProblem(dist, []int64{0, 3, 20}, []int64{5, 10}, 2, 0, nil)
	require.NoError(t, err)
	dims := newRegistry(p)

	sol := construct(p, dims)
	assert.False(t, sol.complete())
	assert.Equal(t, []int{2}, sol.unassigned)
}

func TestConstructTieBreaksByLowestIndex(t *testing.T) {
	// Locations 1 and 2 are equidistant from the depot and from each other.
	dist := [][]int64{
		{0, 100, 100},
		{100, 0, 100},
		{100, 100, 0},
	}
	p, err := NewProblem(dist, []int64{0, 1, 1}, []int64{10}, 1, 0, nil)
	require.NoError(t, err)
	dims := newRegistry(p)

	sol := construct(p, dims)
	require.Len(t, sol.routes, 1)
	assert.Equal(t, []int{1, 2}, sol.routes[0])
}
