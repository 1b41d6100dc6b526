// Package accuracy estimates how far ambient temperature and humidity push
// the gas and dust sensors away from their calibration point.
package accuracy

import (
	"math"

	"github.com/lox/airsense/internal/models"
)

// Calibration point shared by the MQ-7 (CO), MQ-8 (H2) and dust sensors.
const (
	ReferenceTemperature = 25.0 // °C
	ReferenceHumidity    = 70.0 // %
)

// PercentPrecision is the number of decimal places error percentages are
// rounded to.
const PercentPrecision = 2

// RoundingMode selects how error percentages are rounded.
type RoundingMode int

const (
	// RoundHalfUp rounds halves away from zero.
	RoundHalfUp RoundingMode = iota
	// RoundHalfEven rounds halves to the nearest even digit.
	RoundHalfEven
)

// DefaultRounding is the rounding mode used by Estimate.
const DefaultRounding = RoundHalfUp

type coefficients struct {
	temperature float64
	humidity    float64
}

var (
	coSensor   = coefficients{temperature: 0.01, humidity: 0.02}
	h2Sensor   = coefficients{temperature: 0.015, humidity: 0.025}
	dustSensor = coefficients{temperature: 0.005, humidity: 0.03}
)

func (c coefficients) errorPercent(temperature, humidity float64) float64 {
	drift := c.temperature*(temperature-ReferenceTemperature) + c.humidity*(humidity-ReferenceHumidity)
	return math.Abs(drift) * 100
}

// Estimate returns the expected error percentage of each sensor at the given
// temperature (°C) and relative humidity (%).
func Estimate(temperature, humidity float64) models.ErrorEstimate {
	return EstimateWith(temperature, humidity, DefaultRounding)
}

// EstimateWith is Estimate with an explicit rounding mode.
func EstimateWith(temperature, humidity float64, mode RoundingMode) models.ErrorEstimate {
	return models.ErrorEstimate{
		CO:   round(coSensor.errorPercent(temperature, humidity), mode),
		H2:   round(h2Sensor.errorPercent(temperature, humidity), mode),
		Dust: round(dustSensor.errorPercent(temperature, humidity), mode),
	}
}

func round(v float64, mode RoundingMode) float64 {
	scale := math.Pow(10, PercentPrecision)
	switch mode {
	case RoundHalfEven:
		return math.RoundToEven(v*scale) / scale
	default:
		return math.Round(v*scale) / scale
	}
}
