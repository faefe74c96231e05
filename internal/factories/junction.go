package factories

import (
	"fmt"
	"math"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jaswdr/faker"
)

type catalogueJunction struct {
	name         string
	lat, lon     float64
	cameras      int
	vehicleCount int
	incidents    []string
}

// Bhubaneswar junctions shown on the operations map.
var junctionCatalogue = []catalogueJunction{
	{"Jaydev Vihar", 20.296059, 85.824539, 4, 42, nil},
	{"Nandankanan Road", 20.305659, 85.833339, 3, 78, []string{"Signal malfunction"}},
	{"Patia Square", 20.288059, 85.844539, 5, 124, []string{"Accident reported", "Heavy congestion"}},
	{"Acharya Vihar", 20.301059, 85.814539, 3, 65, nil},
	{"Rasulgarh Square", 20.278059, 85.834539, 4, 92, []string{"Road work"}},
	{"Master Canteen", 20.2942, 85.8213, 3, 58, nil},
	{"Kalinga Square", 20.2889, 85.8167, 2, 35, nil},
}

type JunctionFactory struct {
	fake faker.Faker
	next int
}

func NewJunctionFactory(fake faker.Faker) *JunctionFactory {
	return &JunctionFactory{fake: fake}
}

// CatalogueJunctions returns the fixed demo junctions, numbered J1.. in order.
func (jf *JunctionFactory) CatalogueJunctions(now time.Time) []*models.Junction {
	junctions := make([]*models.Junction, 0, len(junctionCatalogue))
	for _, c := range junctionCatalogue {
		incidents := append([]string(nil), c.incidents...)
		congestion := models.CongestionFor(c.vehicleCount)
		junctions = append(junctions, &models.Junction{
			ID:           jf.nextID(),
			Name:         c.name,
			Location:     models.Location{Lat: c.lat, Lon: c.lon},
			Status:       models.StatusFor(congestion, len(incidents)),
			Congestion:   congestion,
			Cameras:      c.cameras,
			VehicleCount: c.vehicleCount,
			Incidents:    incidents,
			LastUpdated:  now,
		})
	}
	return junctions
}

// CreateJunction places a generated junction inside the urban radius.
func (jf *JunctionFactory) CreateJunction(config *models.Config, now time.Time) *models.Junction {
	latRange := config.UrbanRadius / 111.0 // approx. km to degrees
	lonRange := latRange / math.Cos(config.CityLat*math.Pi/180.0)

	latOffset := (jf.fake.Float64(6, 0, 1)*2 - 1) * latRange
	lonOffset := (jf.fake.Float64(6, 0, 1)*2 - 1) * lonRange

	return &models.Junction{
		ID:   jf.nextID(),
		Name: fmt.Sprintf("%s Square", jf.fake.Address().StreetName()),
		Location: models.Location{
			Lat: config.CityLat + latOffset,
			Lon: config.CityLon + lonOffset,
		},
		Status:      models.JunctionStatusNormal,
		Congestion:  models.CongestionLow,
		Cameras:     jf.fake.IntBetween(2, 5),
		Incidents:   []string{},
		LastUpdated: now,
	}
}

func (jf *JunctionFactory) nextID() string {
	jf.next++
	return fmt.Sprintf("J%d", jf.next)
}
