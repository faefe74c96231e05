package simulator

import (
	"math/rand"
	"testing"
	"time"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestIsPeakHour(t *testing.T) {
	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	peak := map[int]bool{7: true, 8: true, 9: true, 16: true, 17: true, 18: true}
	for hour := 0; hour < 24; hour++ {
		assert.Equal(t, peak[hour], isPeakHour(day.Add(time.Duration(hour)*time.Hour)), "hour %d", hour)
	}
}

func TestSpeedFor(t *testing.T) {
	offPeak := time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)
	peak := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		count int
		at    time.Time
		want  float64
	}{
		{"empty junction", 0, offPeak, 45},
		{"medium traffic", 42, offPeak, 33.7},
		{"medium traffic at peak", 42, peak, 23.6},
		{"gridlock", 200, offPeak, 5},
		{"gridlock at peak", 200, peak, 5},
		{"heavy traffic at peak keeps the floor", 160, peak, 5},
		{"heavy traffic off-peak", 160, offPeak, 5},
		{"busy off-peak", 124, offPeak, 11.5},
		{"busy at peak", 124, peak, 8.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, speedFor(tt.count, tt.at), 1e-9)
		})
	}
}

func TestGenerateTrafficDensity(t *testing.T) {
	s := &Simulator{Rng: rand.New(rand.NewSource(1))}
	for i := 0; i < 200; i++ {
		assert.GreaterOrEqual(t, s.generateTrafficDensity(8), 0.7)
		assert.LessOrEqual(t, s.generateTrafficDensity(2), 0.3)
		d := s.generateTrafficDensity(13)
		assert.True(t, d >= 0.3 && d <= 0.7)
	}
}

func TestRollUpJunction(t *testing.T) {
	now := time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)
	j := &models.Junction{ID: "J1", Incidents: []string{"Road work"}}
	s := &Simulator{
		Config:          &models.Config{},
		feedsByJunction: map[string][]*models.Feed{},
	}
	s.TrafficConditions = make([]models.TrafficCondition, 24)
	for i := range s.TrafficConditions {
		s.TrafficConditions[i].Density = 1
	}
	s.feedsByJunction["J1"] = []*models.Feed{
		{Online: true, Counts: models.VehicleCounts{Cars: 30, Buses: 5, Bikes: 20}},
		{Online: true, Counts: models.VehicleCounts{Cars: 20, Buses: 2, Bikes: 10}},
		{Online: false, Counts: models.VehicleCounts{Cars: 99}},
	}

	s.rollUpJunction(j, now)

	assert.Equal(t, 87, j.VehicleCount)
	assert.Equal(t, models.CongestionHigh, j.Congestion)
	assert.Equal(t, models.JunctionStatusAlert, j.Status)
	assert.InDelta(t, 21.5, j.AvgSpeed, 1e-9)
	assert.Equal(t, now, j.LastUpdated)

	s.TrafficConditions[11].Density = 0.5
	s.rollUpJunction(j, now)
	assert.Equal(t, 44, j.VehicleCount)
	assert.Equal(t, models.CongestionMedium, j.Congestion)
	assert.Equal(t, models.JunctionStatusWarning, j.Status)
}

func TestIncidentLabels(t *testing.T) {
	j := &models.Junction{Congestion: models.CongestionHigh}

	addIncident(j, models.AlertKindAccident)
	addIncident(j, models.AlertKindAccident)
	assert.Equal(t, []string{"Accident reported"}, j.Incidents)
	assert.Equal(t, models.JunctionStatusAlert, j.Status)

	removeIncident(j, models.AlertKindAccident)
	assert.Empty(t, j.Incidents)
	assert.Equal(t, models.JunctionStatusWarning, j.Status)

	removeIncident(j, models.AlertKindPothole)
	assert.Empty(t, j.Incidents)
}

func TestIncidentProbability(t *testing.T) {
	s := &Simulator{Config: &models.Config{IncidentProbability: 0.3}}
	offPeak := time.Date(2024, 6, 10, 11, 0, 0, 0, time.UTC)
	peak := time.Date(2024, 6, 10, 17, 0, 0, 0, time.UTC)

	low := &models.Junction{Congestion: models.CongestionLow}
	high := &models.Junction{Congestion: models.CongestionHigh}
	assert.InDelta(t, 0.3, s.incidentProbability(low, offPeak), 1e-9)
	assert.InDelta(t, 0.6, s.incidentProbability(low, peak), 1e-9)
	assert.InDelta(t, 1.0, s.incidentProbability(high, peak), 1e-9)
}
