package simulator

import (
	"math"
	"math/rand"

	"github.com/chrisdamba/trafficsim/internal/models"
)

const (
	weatherChangeProbability = 0.05
	minBatteryPct            = 20
)

var weatherStates = []string{
	models.WeatherClear,
	models.WeatherCloudy,
	models.WeatherLightRain,
	models.WeatherHeavyRain,
}

func initialEnvironment() models.Environment {
	return models.Environment{
		Weather:        models.WeatherLightRain,
		TemperatureC:   22,
		AQI:            186,
		CycleAdjustPct: models.CycleAdjustment(models.WeatherLightRain),
		BatteryPct:     94,
	}
}

// stepEnvironment advances the sensor readings by one KPI period.
func stepEnvironment(env *models.Environment, rng *rand.Rand) {
	temp := env.TemperatureC + (rng.Float64()*2-1)*0.5
	env.TemperatureC = math.Round(max(-10, min(48, temp))*10) / 10
	env.AQI = max(0, min(500, env.AQI+rng.Intn(21)-10))
	if rng.Float64() < weatherChangeProbability {
		env.Weather = weatherStates[rng.Intn(len(weatherStates))]
	}
	env.CycleAdjustPct = models.CycleAdjustment(env.Weather)

	// edge batteries are swapped once they run low
	env.BatteryPct -= rng.Intn(2)
	if env.BatteryPct < minBatteryPct {
		env.BatteryPct = 100
	}
}
