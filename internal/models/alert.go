package models

import "time"

type Alert struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"`
	Kind        string    `json:"kind"`
	JunctionID  string    `json:"junction_id,omitempty"`
	Location    string    `json:"location"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
	Resolved    bool      `json:"resolved"`
	Assignee    string    `json:"assignee,omitempty"`
	Coordinates *Location `json:"coordinates,omitempty"`
}

// CategoryForKind gives the severity an incident kind is reported with.
func CategoryForKind(kind string) string {
	switch kind {
	case AlertKindAccident, AlertKindPothole, AlertKindViolation, AlertKindCongestion:
		return AlertCategoryAlert
	case AlertKindSignal, AlertKindWeather:
		return AlertCategoryWarning
	default:
		return AlertCategoryInfo
	}
}

// AlertFilter selects alerts; zero-valued fields match everything.
type AlertFilter struct {
	Category string
	Kind     string
	Resolved *bool
}

func (f AlertFilter) Match(a *Alert) bool {
	if f.Category != "" && a.Category != f.Category {
		return false
	}
	if f.Kind != "" && a.Kind != f.Kind {
		return false
	}
	if f.Resolved != nil && a.Resolved != *f.Resolved {
		return false
	}
	return true
}
