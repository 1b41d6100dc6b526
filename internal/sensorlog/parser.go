package sensorlog

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lox/airsense/internal/models"
)

// ParserState is the state of the log state machine.
type ParserState int

const (
	// StateNoContext means no header line has been seen yet.
	StateNoContext ParserState = iota
	// StateHaveContext means readings inherit the last header line.
	StateHaveContext
)

func (s ParserState) String() string {
	switch s {
	case StateNoContext:
		return "NoContext"
	case StateHaveContext:
		return "HaveContext"
	default:
		return "Unknown"
	}
}

const (
	headerFields  = 5
	readingFields = 4
	timeToken     = 3
)

// Parser converts sensor log lines into readings one line at a time.
// The zero value is ready to use.
type Parser struct {
	state    ParserState
	header   models.HeaderContext
	line     int
	ignored  int
	readings models.Dataset
}

// Parse runs a fresh Parser over text and returns the dataset together with
// the warnings for the supplied ambient conditions. On any error the dataset
// is nil.
func Parse(text string, temperature, humidity float64) (models.Dataset, string, error) {
	warnings := Warnings(temperature, humidity)

	var p Parser
	if err := p.Feed(text); err != nil {
		return nil, warnings, err
	}
	return p.Dataset(), warnings, nil
}

// Feed parses every newline-separated line of text, stopping at the first
// error.
func (p *Parser) Feed(text string) error {
	for _, line := range strings.Split(text, "\n") {
		if err := p.ParseLine(line); err != nil {
			return err
		}
	}
	return nil
}

// ParseLine advances the state machine by one line. Lines that carry neither
// marker are counted and dropped.
func (p *Parser) ParseLine(line string) error {
	p.line++
	line = strings.TrimSuffix(line, "\r")

	switch Classify(line) {
	case LineHeader:
		h, err := p.parseHeader(line)
		if err != nil {
			return err
		}
		p.header = h
		p.state = StateHaveContext
	case LineReading:
		r, err := p.parseReading(line)
		if err != nil {
			return err
		}
		p.readings = append(p.readings, r)
	default:
		p.ignored++
	}
	return nil
}

func (p *Parser) State() ParserState { return p.state }

// Dataset returns the readings emitted so far.
func (p *Parser) Dataset() models.Dataset {
	if p.readings == nil {
		return models.Dataset{}
	}
	return p.readings
}

// Ignored returns the number of unrecognized lines seen so far.
func (p *Parser) Ignored() int { return p.ignored }

// Lines returns the number of lines consumed so far.
func (p *Parser) Lines() int { return p.line }

func (p *Parser) parseHeader(line string) (models.HeaderContext, error) {
	var h models.HeaderContext
	parts := strings.Split(line, ";")
	if len(parts) != headerFields {
		return h, p.malformed(LineHeader, fmt.Sprintf("want %d ';'-separated fields, got %d", headerFields, len(parts)))
	}

	alt, err := p.unitField(parts[0], "altitude", "m")
	if err != nil {
		return h, err
	}
	loc, err := p.textField(parts[1], "location")
	if err != nil {
		return h, err
	}
	wind, err := p.unitField(parts[2], "windspeed", "km/hr")
	if err != nil {
		return h, err
	}
	temp, err := p.unitField(parts[3], "temperature", "'C")
	if err != nil {
		return h, err
	}
	ts, err := p.textField(parts[4], "timestamp")
	if err != nil {
		return h, err
	}

	return models.HeaderContext{
		Altitude:    alt,
		Location:    loc,
		Windspeed:   wind,
		Temperature: temp,
		Timestamp:   ts,
	}, nil
}

func (p *Parser) parseReading(line string) (models.Reading, error) {
	var r models.Reading
	parts := strings.Split(line, "|")
	if len(parts) != readingFields {
		return r, p.malformed(LineReading, fmt.Sprintf("want %d '|'-separated fields, got %d", readingFields, len(parts)))
	}

	tokens := strings.Split(parts[0], ":")
	if len(tokens) <= timeToken {
		return r, p.malformed(LineReading, fmt.Sprintf("time field %q has %d ':'-separated tokens, want at least %d", strings.TrimSpace(parts[0]), len(tokens), timeToken+1))
	}
	r.Time = strings.TrimSpace(tokens[timeToken])

	var err error
	if r.CO, err = p.concentration(parts[1], "CO"); err != nil {
		return r, err
	}
	if r.H2, err = p.concentration(parts[2], "H2"); err != nil {
		return r, err
	}
	if r.Dust, err = p.concentration(parts[3], "Dust"); err != nil {
		return r, err
	}

	if p.state == StateHaveContext {
		r.Altitude = sql.NullFloat64{Float64: p.header.Altitude, Valid: true}
		r.Location = sql.NullString{String: p.header.Location, Valid: true}
		r.Windspeed = sql.NullFloat64{Float64: p.header.Windspeed, Valid: true}
		r.Temperature = sql.NullFloat64{Float64: p.header.Temperature, Valid: true}
		r.Timestamp = sql.NullString{String: p.header.Timestamp, Valid: true}
	}
	return r, nil
}

// textField returns the trimmed text between the first and second '=' of a
// key=value segment.
func (p *Parser) textField(seg, name string) (string, error) {
	value, ok := delimited(seg, "=")
	if !ok {
		return "", p.malformed(LineHeader, fmt.Sprintf("%s field %q has no '='", name, strings.TrimSpace(seg)))
	}
	return strings.TrimSpace(value), nil
}

// unitField parses key=<number><unit>, discarding everything from the first
// occurrence of unit onwards.
func (p *Parser) unitField(seg, name, unit string) (float64, error) {
	value, err := p.textField(seg, name)
	if err != nil {
		return 0, err
	}
	value, _, _ = strings.Cut(value, unit)
	return p.float(name, strings.TrimSpace(value))
}

// concentration parses "<label>: <number> <unit>". Only the text up to a
// second ':' is considered.
func (p *Parser) concentration(seg, name string) (float64, error) {
	value, ok := delimited(seg, ":")
	if !ok {
		return 0, p.malformed(LineReading, fmt.Sprintf("%s field %q has no ':'", name, strings.TrimSpace(seg)))
	}
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return 0, p.malformed(LineReading, fmt.Sprintf("%s field has no value", name))
	}
	return p.float(name, fields[0])
}

// delimited returns the text between the first and second sep in s, or up to
// the end of s when sep occurs once.
func delimited(s, sep string) (string, bool) {
	parts := strings.SplitN(s, sep, 3)
	if len(parts) < 2 {
		return "", false
	}
	return parts[1], true
}

func (p *Parser) float(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &NumericFormatError{Line: p.line, Field: name, Value: s, Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &NumericFormatError{Line: p.line, Field: name, Value: s, Err: ErrNotFinite}
	}
	return v, nil
}

func (p *Parser) malformed(kind LineKind, reason string) error {
	return &MalformedLineError{Line: p.line, Kind: kind, Reason: reason}
}
