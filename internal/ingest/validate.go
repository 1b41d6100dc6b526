package ingest

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMissingConditions is returned when the temperature or humidity of an
// upload is not supplied.
var ErrMissingConditions = errors.New("temperature and humidity are required")

// InvalidConditionError reports a temperature or humidity that is not a
// finite number.
type InvalidConditionError struct {
	Field string
	Value string
}

func (e *InvalidConditionError) Error() string {
	return fmt.Sprintf("invalid %s value %q: must be a number", e.Field, e.Value)
}

// ParseConditions converts form values for temperature (°C) and relative
// humidity (%) into numbers.
func ParseConditions(temperature, humidity string) (float64, float64, error) {
	temperature = strings.TrimSpace(temperature)
	humidity = strings.TrimSpace(humidity)
	if temperature == "" || humidity == "" {
		return 0, 0, ErrMissingConditions
	}

	t, err := conditionValue("temperature", temperature)
	if err != nil {
		return 0, 0, err
	}
	h, err := conditionValue("humidity", humidity)
	if err != nil {
		return 0, 0, err
	}
	return t, h, nil
}

// ValidateConditions rejects non-finite values.
func ValidateConditions(temperature, humidity float64) error {
	if !finite(temperature) {
		return &InvalidConditionError{Field: "temperature", Value: strconv.FormatFloat(temperature, 'f', -1, 64)}
	}
	if !finite(humidity) {
		return &InvalidConditionError{Field: "humidity", Value: strconv.FormatFloat(humidity, 'f', -1, 64)}
	}
	return nil
}

func conditionValue(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !finite(v) {
		return 0, &InvalidConditionError{Field: field, Value: s}
	}
	return v, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
