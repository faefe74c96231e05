package models

import "time"

// VehicleCounts is the per-class count shown on a camera tile.
type VehicleCounts struct {
	Cars  int `json:"cars"`
	Buses int `json:"buses"`
	Bikes int `json:"bikes"`
}

func (c VehicleCounts) Total() int {
	return c.Cars + c.Buses + c.Bikes
}

// Feed is a simulated camera attached to a junction.
type Feed struct {
	ID         string        `json:"id"`
	Label      string        `json:"label"`
	JunctionID string        `json:"junction_id"`
	EdgeNode   string        `json:"edge_node"`
	Online     bool          `json:"online"`
	Counts     VehicleCounts `json:"counts"`
	LastTick   time.Time     `json:"last_tick"`
}
