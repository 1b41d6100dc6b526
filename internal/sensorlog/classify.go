package sensorlog

import "strings"

const (
	headerMarker  = "Altitude="
	readingMarker = "CO Concentration:"
)

// LineKind is the classification of a single log line.
type LineKind int

const (
	LineUnrecognized LineKind = iota
	LineHeader
	LineReading
)

func (k LineKind) String() string {
	switch k {
	case LineHeader:
		return "header"
	case LineReading:
		return "reading"
	default:
		return "unrecognized"
	}
}

// Classify reports which kind of line s is. Header detection wins over
// reading detection, matching the order the log writer emits them.
func Classify(s string) LineKind {
	switch {
	case strings.HasPrefix(s, headerMarker):
		return LineHeader
	case strings.Contains(s, readingMarker):
		return LineReading
	default:
		return LineUnrecognized
	}
}
