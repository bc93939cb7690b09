package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridrisa/barq-fleet-optimization-api/internal/model"
)

func sampleRequest() *model.OptimizeRequest {
	return &model.OptimizeRequest{
		DistanceMatrix:    [][]int64{{0, 5}, {5, 0}},
		Demands:           []int64{0, 3},
		VehicleCapacities: []int64{10},
		NumVehicles:       1,
		TimeLimit:         5,
	}
}

func TestKeyForStable(t *testing.T) {
	a := KeyFor(sampleRequest())
	b := KeyFor(sampleRequest())
	assert.Equal(t, a, b)
	assert.Len(t, string(a), 64)

	changed := sampleRequest()
	changed.Demands[1] = 4
	assert.NotEqual(t, a, KeyFor(changed))
}

func TestMemoryPutGet(t *testing.T) {
	m := NewMemory(time.Minute, 4)
	k := KeyFor(sampleRequest())

	_, ok := m.Get(context.Background(), k)
	assert.False(t, ok)

	m.Put(context.Background(), k, []byte(`{"success":true}`))
	raw, ok := m.Get(context.Background(), k)
	require.True(t, ok)
	assert.JSONEq(t, `{"success":true}`, string(raw))
}

func TestMemoryTTLExpiry(t *testing.T) {
	m := NewMemory(time.Minute, 4)
	now := time.Now()
	m.now = func() time.Time { return now }

	m.Put(context.Background(), Key("k"), []byte("v"))
	now = now.Add(2 * time.Minute)
	_, ok := m.Get(context.Background(), Key("k"))
	assert.False(t, ok)
}

func TestMemoryEvictsOldest(t *testing.T) {
	m := NewMemory(time.Minute, 2)
	m.Put(context.Background(), Key("a"), []byte("1"))
	m.Put(context.Background(), Key("b"), []byte("2"))
	m.Put(context.Background(), Key("c"), []byte("3"))

	_, ok := m.Get(context.Background(), Key("a"))
	assert.False(t, ok, "oldest entry should be evicted")
	_, ok = m.Get(context.Background(), Key("c"))
	assert.True(t, ok)
}

func TestRedisRoundTrip(t *testing.T) {
	srv := miniredis.RunT(t)
	c, err := NewRedis("redis://"+srv.Addr(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	k := KeyFor(sampleRequest())
	_, ok := c.Get(context.Background(), k)
	assert.False(t, ok)

	c.Put(context.Background(), k, []byte(`{"success":true}`))
	raw, ok := c.Get(context.Background(), k)
	require.True(t, ok)
	assert.JSONEq(t, `{"success":true}`, string(raw))

	srv.FastForward(2 * time.Minute)
	_, ok = c.Get(context.Background(), k)
	assert.False(t, ok)
}

func TestRedisUnavailableDegradesToMiss(t *testing.T) {
	srv := miniredis.RunT(t)
	c, err := NewRedis("redis://"+srv.Addr(), time.Minute)
	require.NoError(t, err)
	defer c.Close()

	srv.Close()

	// Lookups against a dead server log and report a miss; stores are
	// dropped silently. Neither may panic or error out to the caller.
	_, ok := c.Get(context.Background(), Key("k"))
	assert.False(t, ok)
	c.Put(context.Background(), Key("k"), []byte("v"))
}
