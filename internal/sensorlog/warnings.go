package sensorlog

import "strings"

const (
	WarnHighTemperature = "WARNING: High temperature may significantly affect sensor accuracy!"
	WarnLowTemperature  = "WARNING: Low temperature may significantly affect sensor accuracy!"
	WarnHighHumidity    = "WARNING: High humidity may affect dust sensor readings!"
	WarnLowHumidity     = "WARNING: Low humidity may affect gas sensor sensitivity!"
)

// Temperature and humidity ranges outside of which the sensors drift.
// Bounds are inclusive on the quiet side.
const (
	MaxQuietTemperature = 35.0
	MinQuietTemperature = 10.0
	MaxQuietHumidity    = 85.0
	MinQuietHumidity    = 30.0
)

// Warnings returns the advisory warnings for the given ambient conditions.
// At most one temperature and one humidity warning is produced, each preceded
// by a blank line so the result can be appended directly to other text.
func Warnings(temperature, humidity float64) string {
	var b strings.Builder
	switch {
	case temperature > MaxQuietTemperature:
		b.WriteString("\n\n" + WarnHighTemperature)
	case temperature < MinQuietTemperature:
		b.WriteString("\n\n" + WarnLowTemperature)
	}
	switch {
	case humidity > MaxQuietHumidity:
		b.WriteString("\n\n" + WarnHighHumidity)
	case humidity < MinQuietHumidity:
		b.WriteString("\n\n" + WarnLowHumidity)
	}
	return b.String()
}
