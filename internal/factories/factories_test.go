package factories

import (
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 10, 8, 30, 0, 0, time.UTC)

func TestCatalogueJunctions(t *testing.T) {
	junctions := NewJunctionFactory(NewFaker(1)).CatalogueJunctions(testNow)
	require.Len(t, junctions, 7)

	assert.Equal(t, "J1", junctions[0].ID)
	assert.Equal(t, "Jaydev Vihar", junctions[0].Name)
	assert.Equal(t, models.CongestionMedium, junctions[0].Congestion)
	assert.Equal(t, models.JunctionStatusNormal, junctions[0].Status)

	patia := junctions[2]
	assert.Equal(t, "Patia Square", patia.Name)
	assert.Equal(t, models.CongestionHigh, patia.Congestion)
	assert.Equal(t, models.JunctionStatusAlert, patia.Status)
	assert.Equal(t, []string{"Accident reported", "Heavy congestion"}, patia.Incidents)

	cameras := 0
	for _, j := range junctions {
		cameras += j.Cameras
	}
	assert.Equal(t, 24, cameras)
}

func TestCreateJunctionStaysInsideUrbanRadius(t *testing.T) {
	cfg := &models.Config{CityLat: 20.2961, CityLon: 85.8245, UrbanRadius: 8}
	jf := NewJunctionFactory(NewFaker(3))
	city := models.Location{Lat: cfg.CityLat, Lon: cfg.CityLon}

	for i := 0; i < 50; i++ {
		j := jf.CreateJunction(cfg, testNow)
		assert.Equal(t, "J", j.ID[:1])
		assert.LessOrEqual(t, city.DistanceTo(j.Location), 8*1.5)
		assert.GreaterOrEqual(t, j.Cameras, 2)
		assert.LessOrEqual(t, j.Cameras, 5)
	}
}

func TestCreateFeedsCatalogue(t *testing.T) {
	junctions := NewJunctionFactory(NewFaker(1)).CatalogueJunctions(testNow)
	feeds := NewFeedFactory(NewFaker(1)).CreateFeeds(junctions[0], true, testNow)
	require.Len(t, feeds, 4)

	assert.Equal(t, "Cam J1-01", feeds[0].Label)
	assert.Equal(t, "Edge: Jetson X", feeds[0].EdgeNode)
	assert.Equal(t, models.VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}, feeds[0].Counts)
	assert.True(t, feeds[0].Online)

	assert.False(t, feeds[2].Online)
	assert.Zero(t, feeds[2].Counts.Total())
	assert.NotEqual(t, feeds[0].ID, feeds[1].ID)
}

func TestCreateFeedsGeneratedAreOnline(t *testing.T) {
	j := &models.Junction{ID: "J9", Cameras: 3}
	for _, f := range NewFeedFactory(NewFaker(5)).CreateFeeds(j, false, testNow) {
		assert.True(t, f.Online)
		assert.Equal(t, "J9", f.JunctionID)
		assert.Positive(t, f.Counts.Total())
	}
}

func TestSeedAlerts(t *testing.T) {
	junctions := NewJunctionFactory(NewFaker(1)).CatalogueJunctions(testNow)
	alerts := NewAlertFactory(NewFaker(1)).SeedAlerts(junctions, testNow)
	require.Len(t, alerts, 3)

	assert.Equal(t, models.AlertKindRoadWork, alerts[0].Kind)
	assert.Equal(t, "J1", alerts[0].JunctionID)
	assert.Equal(t, models.AlertCategoryInfo, alerts[0].Category)
	assert.Equal(t, testNow.Add(-time.Hour), alerts[0].CreatedAt)

	assert.Equal(t, models.AlertCategoryAlert, alerts[2].Category)
	assert.Equal(t, "Patia Square", alerts[2].Location)
	require.NotNil(t, alerts[2].Coordinates)
	assert.Equal(t, junctions[2].Location, *alerts[2].Coordinates)

	assert.Empty(t, NewAlertFactory(NewFaker(1)).SeedAlerts(nil, testNow))
}

func TestCreateIncidentOfKind(t *testing.T) {
	j := &models.Junction{ID: "J4", Name: "Acharya Vihar"}
	af := NewAlertFactory(NewFaker(2))

	pothole := af.CreateIncidentOfKind(models.AlertKindPothole, j, testNow)
	assert.Regexp(t, `^Pothole detected \(Segment S-\d{3}\)$`, pothole.Message)
	assert.Equal(t, models.AlertCategoryAlert, pothole.Category)
	assert.False(t, pothole.Resolved)

	for i := 0; i < 20; i++ {
		a := af.CreateIncident(j, testNow)
		assert.Contains(t, IncidentLabel, a.Kind)
		assert.NotEmpty(t, a.Message)
	}
}
