package simulator

import (
	"math"
	"time"

	"github.com/chrisdamba/trafficsim/internal/factories"
	"github.com/chrisdamba/trafficsim/internal/models"
)

const (
	freeFlowSpeed   = 45.0 // km/h on an empty junction
	minSpeed        = 5.0
	speedPerVehicle = 0.27
	peakSlowdown    = 0.7
)

func (s *Simulator) initializeTrafficConditions() {
	city := models.Location{Lat: s.Config.CityLat, Lon: s.Config.CityLon}
	day := s.Config.StartDate.Truncate(24 * time.Hour)
	s.TrafficConditions = make([]models.TrafficCondition, 0, 24)
	for hour := 0; hour < 24; hour++ {
		s.TrafficConditions = append(s.TrafficConditions, models.TrafficCondition{
			Time:     day.Add(time.Duration(hour) * time.Hour),
			Location: city,
			Density:  s.generateTrafficDensity(hour),
		})
	}
}

func (s *Simulator) generateTrafficDensity(hour int) float64 {
	switch {
	case hour >= 7 && hour <= 9, hour >= 16 && hour <= 18:
		return 0.7 + s.Rng.Float64()*0.3
	case hour >= 22 || hour <= 5:
		return s.Rng.Float64() * 0.3
	default:
		return 0.3 + s.Rng.Float64()*0.4
	}
}

func (s *Simulator) trafficDensity(t time.Time) float64 {
	if len(s.TrafficConditions) != 24 {
		return 1
	}
	return s.TrafficConditions[t.Hour()].Density
}

func isPeakHour(t time.Time) bool {
	hour := t.Hour()
	return (hour >= 7 && hour <= 9) || (hour >= 16 && hour <= 18)
}

// speedFor estimates the average speed through a junction carrying
// vehicleCount vehicles. The peak slowdown applies before the clamp.
func speedFor(vehicleCount int, t time.Time) float64 {
	speed := freeFlowSpeed - speedPerVehicle*float64(vehicleCount)
	if isPeakHour(t) {
		speed *= peakSlowdown
	}
	speed = math.Max(minSpeed, math.Min(freeFlowSpeed, speed))
	return math.Round(speed*10) / 10
}

// rollUpJunction recomputes a junction's derived attributes from its feeds.
func (s *Simulator) rollUpJunction(j *models.Junction, now time.Time) {
	total := 0
	for _, f := range s.feedsByJunction[j.ID] {
		if f.Online {
			total += f.Counts.Total()
		}
	}
	j.VehicleCount = int(math.Round(float64(total) * s.trafficDensity(now)))
	j.Congestion = models.CongestionFor(j.VehicleCount)
	j.AvgSpeed = speedFor(j.VehicleCount, now)
	j.Status = models.StatusFor(j.Congestion, len(j.Incidents))
	j.LastUpdated = now
}

func (s *Simulator) incidentProbability(j *models.Junction, now time.Time) float64 {
	p := s.Config.IncidentProbability
	if isPeakHour(now) {
		p *= 2
	}
	if j.Congestion == models.CongestionHigh {
		p *= 2
	}
	return math.Min(p, 1)
}

func addIncident(j *models.Junction, kind string) {
	label := factories.IncidentLabel[kind]
	for _, existing := range j.Incidents {
		if existing == label {
			return
		}
	}
	j.Incidents = append(j.Incidents, label)
	j.Status = models.StatusFor(j.Congestion, len(j.Incidents))
}

func removeIncident(j *models.Junction, kind string) {
	label := factories.IncidentLabel[kind]
	for i, existing := range j.Incidents {
		if existing == label {
			j.Incidents = append(j.Incidents[:i], j.Incidents[i+1:]...)
			break
		}
	}
	j.Status = models.StatusFor(j.Congestion, len(j.Incidents))
}

func (s *Simulator) nearestJunction(loc models.Location) *models.Junction {
	var nearest *models.Junction
	best := math.Inf(1)
	for _, id := range s.junctionIDs {
		j := s.Junctions[id]
		if d := loc.DistanceTo(j.Location); d < best {
			best = d
			nearest = j
		}
	}
	return nearest
}
