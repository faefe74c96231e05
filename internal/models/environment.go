package models

const (
	WeatherClear     = "Clear"
	WeatherCloudy    = "Cloudy"
	WeatherLightRain = "Light Rain"
	WeatherHeavyRain = "Heavy Rain"
)

// Environment holds the roadside IoT readings shown next to the alerts feed.
type Environment struct {
	Weather          string  `json:"weather"`
	TemperatureC     float64 `json:"temperature_c"`
	AQI              int     `json:"aqi"`
	CycleAdjustPct   int     `json:"cycle_adjust_pct"` // signal cycle extension for the weather
	PotholeAlerts    int     `json:"pothole_alerts"`
	BatteryPct       int     `json:"battery_pct"`
	ConnectedDevices int     `json:"connected_devices"`
}

// AQICategory returns the US EPA band for an AQI value.
func AQICategory(aqi int) string {
	switch {
	case aqi <= 50:
		return "Good"
	case aqi <= 100:
		return "Moderate"
	case aqi <= 150:
		return "Unhealthy for Sensitive Groups"
	case aqi <= 200:
		return "Unhealthy"
	case aqi <= 300:
		return "Very Unhealthy"
	default:
		return "Hazardous"
	}
}

func CycleAdjustment(weather string) int {
	switch weather {
	case WeatherLightRain:
		return 10
	case WeatherHeavyRain:
		return 20
	default:
		return 0
	}
}

// TimingAutoAdjust reports whether signal timings are stretched for poor air.
func (e Environment) TimingAutoAdjust() bool {
	return e.AQI > 150
}
