package factories

import (
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var edgeNodes = []string{"Jetson X", "Jetson Y", "Jetson Z", "Jetson W"}

// Counts every catalogue camera tile starts from.
var initialCounts = models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}

type FeedFactory struct {
	fake faker.Faker
}

func NewFeedFactory(fake faker.Faker) *FeedFactory {
	return &FeedFactory{fake: fake}
}

// CreateFeeds builds one feed per camera of the junction. Catalogue junctions
// start from the tile counts; the third camera of J1 starts offline.
func (ff *FeedFactory) CreateFeeds(junction *models.Junction, catalogue bool, now time.Time) []*models.Feed {
	feeds := make([]*models.Feed, 0, junction.Cameras)
	for i := 1; i <= junction.Cameras; i++ {
		feed := &models.Feed{
			ID:         cuid.New(),
			Label:      fmt.Sprintf("Cam %s-%02d", junction.ID, i),
			JunctionID: junction.ID,
			EdgeNode:   "Edge: " + edgeNodes[(i-1)%len(edgeNodes)],
			Online:     true,
			LastTick:   now,
		}
		if catalogue {
			feed.Counts = initialCounts
			if junction.ID == "J1" && i == 3 {
				feed.Online = false
				feed.Counts = models.VehicleCounts{}
			}
		} else {
			feed.Counts = models.VehicleCounts{
				Cars:  ff.fake.IntBetween(5, 20),
				Buses: ff.fake.IntBetween(0, 4),
				Bikes: ff.fake.IntBetween(8, 25),
			}
		}
		feeds = append(feeds, feed)
	}
	return feeds
}
