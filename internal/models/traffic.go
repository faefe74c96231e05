package models

import "time"

type TrafficCondition struct {
	Time     time.Time `json:"time"`
	Location Location  `json:"location"`
	Density  float64   `json:"density"` // 0..1, share of peak flow
}

// KPISnapshot holds the values of the KPI ribbon at one instant.
type KPISnapshot struct {
	Timestamp       time.Time   `json:"timestamp"`
	ActiveAlerts    int         `json:"active_alerts"`
	ResolvedAlerts  int         `json:"resolved_alerts"`
	OnlineFeeds     int         `json:"online_feeds"`
	OfflineFeeds    int         `json:"offline_feeds"`
	TotalVehicles   int         `json:"total_vehicles"`
	AvgSpeed        float64     `json:"avg_speed"`
	CongestionIndex float64     `json:"congestion_index"`
	Environment     Environment `json:"environment"`
}
