package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextCountsOfflineReadsZero(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	got := NextCounts(rng, models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}, false)
	assert.Equal(t, models.VehicleCounts{}, got)
}

func TestNextCountsBoundedStep(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	current := models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}

	for i := 0; i < 10000; i++ {
		next := NextCounts(rng, current, true)

		assert.GreaterOrEqual(t, next.Cars, 0)
		assert.GreaterOrEqual(t, next.Buses, 0)
		assert.GreaterOrEqual(t, next.Bikes, 0)
		assert.LessOrEqual(t, abs(next.Cars-current.Cars), CountDeltas.Cars)
		assert.LessOrEqual(t, abs(next.Buses-current.Buses), CountDeltas.Buses)
		assert.LessOrEqual(t, abs(next.Bikes-current.Bikes), CountDeltas.Bikes)

		current = next
	}
}

func TestNextCountsClampsAtZero(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	zeros := 0
	for i := 0; i < 1000; i++ {
		next := NextCounts(rng, models.VehicleCounts{}, true)
		assert.GreaterOrEqual(t, next.Cars, 0)
		assert.LessOrEqual(t, next.Cars, CountDeltas.Cars)
		if next.Buses == 0 {
			zeros++
		}
	}
	// a bus delta of -1 or 0 both land on zero
	assert.Greater(t, zeros, 500)
}

func TestNextCountsCoversWholeDeltaRange(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	seen := map[int]bool{}
	for i := 0; i < 2000; i++ {
		next := NextCounts(rng, models.VehicleCounts{Cars: 100, Buses: 100, Bikes: 100}, true)
		seen[next.Bikes-100] = true
	}
	for d := -CountDeltas.Bikes; d <= CountDeltas.Bikes; d++ {
		assert.True(t, seen[d], "delta %d never drawn", d)
	}
}

func TestNextCountsDeterministicForSeed(t *testing.T) {
	walk := func(seed int64) []models.VehicleCounts {
		rng := rand.New(rand.NewSource(seed))
		current := models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}
		var out []models.VehicleCounts
		for i := 0; i < 50; i++ {
			current = NextCounts(rng, current, true)
			out = append(out, current)
		}
		return out
	}
	assert.Equal(t, walk(42), walk(42))
	assert.NotEqual(t, walk(42), walk(43))
}

func TestNextTickDelay(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	var sawLow, sawHigh bool
	for i := 0; i < 5000; i++ {
		d := nextTickDelay(rng, 2*time.Second, 3*time.Second)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.LessOrEqual(t, d, 3*time.Second)
		sawLow = sawLow || d < 2100*time.Millisecond
		sawHigh = sawHigh || d > 2900*time.Millisecond
	}
	assert.True(t, sawLow)
	assert.True(t, sawHigh)

	assert.Equal(t, time.Second, nextTickDelay(rng, time.Second, time.Second))
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestNextCountsResumesFromZeroAfterOutage(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	current := NextCounts(rng, models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}, false)
	require.Equal(t, models.VehicleCounts{}, current)

	next := NextCounts(rng, current, true)
	assert.True(t, next.Cars >= 0 && next.Cars <= CountDeltas.Cars)
	assert.True(t, next.Buses >= 0 && next.Buses <= CountDeltas.Buses)
	assert.True(t, next.Bikes >= 0 && next.Bikes <= CountDeltas.Bikes)
}

func TestNextCountsFromTileDefaults(t *testing.T) {
	rng := rand.New(rand.NewSource(13))
	start := models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}
	for i := 0; i < 1000; i++ {
		next := NextCounts(rng, start, true)
		assert.True(t, next.Cars >= 9 && next.Cars <= 15, "cars %d", next.Cars)
		assert.True(t, next.Buses >= 1 && next.Buses <= 3, "buses %d", next.Buses)
		assert.True(t, next.Bikes >= 14 && next.Bikes <= 22, "bikes %d", next.Bikes)
	}
}
