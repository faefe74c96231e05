package simulator

import (
	"math/rand"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
)

// CountDeltas bounds the per-tick change of each vehicle class.
var CountDeltas = models.VehicleCounts{Cars: 3, Buses: 1, Bikes: 4}

// NextCounts advances a feed's counts by one tick. An offline feed reads all
// zero; an online feed moves each class by a uniform delta in [-d, d] and is
// clamped at zero.
func NextCounts(rng *rand.Rand, current models.VehicleCounts, online bool) models.VehicleCounts {
	if !online {
		return models.VehicleCounts{}
	}
	return models.VehicleCounts{
		Cars:  stepCount(rng, current.Cars, CountDeltas.Cars),
		Buses: stepCount(rng, current.Buses, CountDeltas.Buses),
		Bikes: stepCount(rng, current.Bikes, CountDeltas.Bikes),
	}
}

func stepCount(rng *rand.Rand, value, maxDelta int) int {
	next := value + rng.Intn(2*maxDelta+1) - maxDelta
	if next < 0 {
		return 0
	}
	return next
}

// nextTickDelay picks a uniform period in [lo, hi].
func nextTickDelay(rng *rand.Rand, lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(rng.Int63n(int64(hi-lo)+1))
}
