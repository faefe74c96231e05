package models

import "time"

type Junction struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Location     Location  `json:"location"`
	Status       string    `json:"status"`
	Congestion   string    `json:"congestion"`
	Cameras      int       `json:"cameras"`
	VehicleCount int       `json:"vehicle_count"`
	AvgSpeed     float64   `json:"avg_speed"`
	Incidents    []string  `json:"incidents"`
	LastUpdated  time.Time `json:"last_updated"`
}

// CongestionFor maps a vehicle count onto the legend bands.
func CongestionFor(vehicleCount int) string {
	switch {
	case vehicleCount >= HighCongestionThreshold:
		return CongestionHigh
	case vehicleCount >= MediumCongestionThreshold:
		return CongestionMedium
	default:
		return CongestionLow
	}
}

// StatusFor derives the marker status of a junction.
func StatusFor(congestion string, incidents int) string {
	switch {
	case incidents > 0 && congestion == CongestionHigh:
		return JunctionStatusAlert
	case incidents > 0, congestion == CongestionHigh:
		return JunctionStatusWarning
	default:
		return JunctionStatusNormal
	}
}

// CongestionScore is the 0-100 weight of a congestion level in the congestion index.
func CongestionScore(congestion string) float64 {
	switch congestion {
	case CongestionHigh:
		return 100
	case CongestionMedium:
		return 50
	default:
		return 0
	}
}
