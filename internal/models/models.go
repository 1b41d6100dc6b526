package models

import (
	"database/sql"
	"time"
)

// HeaderContext is the most recent header line of a sensor log. It applies to
// every reading line that follows it until the next header line.
type HeaderContext struct {
	Altitude    float64 // meters
	Location    string
	Windspeed   float64 // km/h
	Temperature float64 // °C
	Timestamp   string
}

// Reading is one concentration sample combined with the header context in
// force when it was logged. Header fields are invalid when the sample
// preceded every header line.
type Reading struct {
	Altitude    sql.NullFloat64
	Location    sql.NullString
	Windspeed   sql.NullFloat64
	Temperature sql.NullFloat64
	Timestamp   sql.NullString
	Time        string
	CO          float64 // ppm
	H2          float64 // ppm
	Dust        float64 // µg/m³
}

// Dataset is the ordered list of readings parsed from one log, in file order.
type Dataset []Reading

type ErrorEstimate struct {
	CO   float64
	H2   float64
	Dust float64
}

type Upload struct {
	ID           string
	CreatedAt    time.Time
	Filename     string
	Temperature  float64
	Humidity     float64
	Advisory     string
	ReadingCount int
	Charts       []byte // JSON chart set
	RawPayloadID sql.NullInt64
}
