// Package factories builds the demo catalogue: junctions, their camera feeds
// and the alerts raised against them.
package factories

import (
	"math/rand"

	"github.com/jaswdr/faker"
)

// NewFaker returns a faker whose output is fixed by seed.
func NewFaker(seed int64) faker.Faker {
	return faker.NewWithSeed(rand.NewSource(seed))
}
