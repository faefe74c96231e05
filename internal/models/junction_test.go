package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCongestionFor(t *testing.T) {
	tests := []struct {
		count int
		want  string
	}{
		{0, CongestionLow},
		{39, CongestionLow},
		{40, CongestionMedium},
		{79, CongestionMedium},
		{80, CongestionHigh},
		{124, CongestionHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CongestionFor(tt.count), "count %d", tt.count)
	}
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, JunctionStatusNormal, StatusFor(CongestionMedium, 0))
	assert.Equal(t, JunctionStatusWarning, StatusFor(CongestionLow, 1))
	assert.Equal(t, JunctionStatusWarning, StatusFor(CongestionHigh, 0))
	assert.Equal(t, JunctionStatusAlert, StatusFor(CongestionHigh, 2))
}

func TestCongestionScore(t *testing.T) {
	assert.Zero(t, CongestionScore(CongestionLow))
	assert.Equal(t, 50.0, CongestionScore(CongestionMedium))
	assert.Equal(t, 100.0, CongestionScore(CongestionHigh))
}

func TestVehicleCountsTotal(t *testing.T) {
	assert.Equal(t, 32, VehicleCounts{Cars: 12, Buses: 2, Bikes: 18}.Total())
}

func TestDistanceTo(t *testing.T) {
	jaydev := Location{Lat: 20.296059, Lon: 85.824539}
	patia := Location{Lat: 20.288059, Lon: 85.844539}
	assert.Zero(t, jaydev.DistanceTo(jaydev))
	assert.InDelta(t, 2.25, jaydev.DistanceTo(patia), 0.1)
	assert.InDelta(t, jaydev.DistanceTo(patia), patia.DistanceTo(jaydev), 1e-9)
}

func TestAlertFilterMatch(t *testing.T) {
	resolved := true
	a := &Alert{Category: AlertCategoryAlert, Kind: AlertKindAccident}

	assert.True(t, AlertFilter{}.Match(a))
	assert.True(t, AlertFilter{Category: AlertCategoryAlert, Kind: AlertKindAccident}.Match(a))
	assert.False(t, AlertFilter{Kind: AlertKindPothole}.Match(a))
	assert.False(t, AlertFilter{Resolved: &resolved}.Match(a))
}

func TestCategoryForKind(t *testing.T) {
	assert.Equal(t, AlertCategoryAlert, CategoryForKind(AlertKindAccident))
	assert.Equal(t, AlertCategoryWarning, CategoryForKind(AlertKindSignal))
	assert.Equal(t, AlertCategoryInfo, CategoryForKind(AlertKindRoadWork))
}
