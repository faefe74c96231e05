package factories

import (
	"fmt"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var incidentKinds = []string{
	models.AlertKindAccident,
	models.AlertKindSignal,
	models.AlertKindRoadWork,
	models.AlertKindPothole,
	models.AlertKindViolation,
	models.AlertKindWeather,
	models.AlertKindCongestion,
}

// IncidentLabel is the short text listed under a junction on the map.
var IncidentLabel = map[string]string{
	models.AlertKindAccident:   "Accident reported",
	models.AlertKindSignal:     "Signal malfunction",
	models.AlertKindRoadWork:   "Road work",
	models.AlertKindPothole:    "Pothole",
	models.AlertKindViolation:  "Violation",
	models.AlertKindWeather:    "Heavy rain",
	models.AlertKindCongestion: "Heavy congestion",
}

type AlertFactory struct {
	fake faker.Faker
}

func NewAlertFactory(fake faker.Faker) *AlertFactory {
	return &AlertFactory{fake: fake}
}

// SeedAlerts returns the alerts the feed opens with, matched by name to the
// given junctions.
func (af *AlertFactory) SeedAlerts(junctions []*models.Junction, now time.Time) []*models.Alert {
	seeds := []struct {
		kind, junction, message string
		age                     time.Duration
	}{
		{models.AlertKindRoadWork, "Jaydev Vihar", "Road work in progress", time.Hour},
		{models.AlertKindSignal, "Nandankanan Road", "Traffic signal malfunction", 15 * time.Minute},
		{models.AlertKindAccident, "Patia Square", "Accident detected", 2 * time.Minute},
	}

	byName := make(map[string]*models.Junction, len(junctions))
	for _, j := range junctions {
		byName[j.Name] = j
	}

	alerts := make([]*models.Alert, 0, len(seeds))
	for _, s := range seeds {
		j, ok := byName[s.junction]
		if !ok {
			continue
		}
		alert := af.newAlert(s.kind, j, now.Add(-s.age))
		alert.Message = s.message
		alerts = append(alerts, alert)
	}
	return alerts
}

// CreateIncident raises an alert of a random kind at junction.
func (af *AlertFactory) CreateIncident(junction *models.Junction, now time.Time) *models.Alert {
	kind := incidentKinds[af.fake.IntBetween(0, len(incidentKinds)-1)]
	return af.CreateIncidentOfKind(kind, junction, now)
}

func (af *AlertFactory) CreateIncidentOfKind(kind string, junction *models.Junction, now time.Time) *models.Alert {
	alert := af.newAlert(kind, junction, now)
	alert.Message = af.message(kind)
	return alert
}

func (af *AlertFactory) newAlert(kind string, junction *models.Junction, at time.Time) *models.Alert {
	coords := junction.Location
	return &models.Alert{
		ID:          cuid.New(),
		Category:    models.CategoryForKind(kind),
		Kind:        kind,
		JunctionID:  junction.ID,
		Location:    junction.Name,
		CreatedAt:   at,
		Coordinates: &coords,
	}
}

func (af *AlertFactory) message(kind string) string {
	segment := fmt.Sprintf("S-%03d", af.fake.IntBetween(1, 120))
	switch kind {
	case models.AlertKindAccident:
		return "Accident detected"
	case models.AlertKindSignal:
		return "Traffic signal malfunction"
	case models.AlertKindRoadWork:
		return "Road work in progress"
	case models.AlertKindPothole:
		return fmt.Sprintf("Pothole detected (Segment %s)", segment)
	case models.AlertKindViolation:
		if af.fake.IntBetween(0, 1) == 0 {
			return "Red-light violation detected"
		}
		return "Speed violation detected"
	case models.AlertKindWeather:
		return fmt.Sprintf("Rain sensor: Heavy (%d devices)", af.fake.IntBetween(1, 8))
	case models.AlertKindCongestion:
		return fmt.Sprintf("Congestion spike: Segment %s", segment)
	default:
		return "Incident reported"
	}
}
