// Package ingest runs a sensor log through parsing, error estimation and
// charting, and persists the result as an upload.
package ingest

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/lox/airsense/internal/accuracy"
	"github.com/lox/airsense/internal/charts"
	"github.com/lox/airsense/internal/metrics"
	"github.com/lox/airsense/internal/models"
	"github.com/lox/airsense/internal/sensorlog"
	"github.com/lox/airsense/internal/store"
)

// Upload outcome labels for metrics.UploadsTotal.
const (
	StatusSuccess    = "success"
	StatusInvalid    = "invalid"
	StatusParseError = "parse_error"
	StatusError      = "error"
)

// ErrInvalidEncoding is returned for logs that are not UTF-8 text.
var ErrInvalidEncoding = errors.New("sensor log is not valid UTF-8")

// Request is one sensor log together with the ambient conditions it was
// recorded under.
type Request struct {
	Source      string // store.SourceUpload or store.SourceIngest
	Filename    string
	Data        []byte
	Temperature float64
	Humidity    float64
}

type Ingester struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

func New(s *store.Store, logger *slog.Logger) *Ingester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingester{
		store:  s,
		logger: logger.With("component", "ingest"),
		now:    time.Now,
	}
}

// Ingest processes req and stores the result. Nothing is written unless the
// whole log parses.
func (in *Ingester) Ingest(req Request) (*models.Upload, error) {
	u, err := in.ingest(req)
	metrics.UploadsTotal.WithLabelValues(req.Source, status(err)).Inc()
	return u, err
}

func (in *Ingester) ingest(req Request) (*models.Upload, error) {
	if err := ValidateConditions(req.Temperature, req.Humidity); err != nil {
		return nil, err
	}
	if !utf8.Valid(req.Data) {
		return nil, ErrInvalidEncoding
	}

	start := time.Now()
	var p sensorlog.Parser
	if err := p.Feed(string(req.Data)); err != nil {
		return nil, err
	}
	metrics.ParseDuration.Observe(time.Since(start).Seconds())

	ds := p.Dataset()
	metrics.ReadingsParsed.WithLabelValues(req.Source).Add(float64(len(ds)))
	metrics.LinesIgnored.WithLabelValues(req.Source).Add(float64(p.Ignored()))

	warnings := sensorlog.Warnings(req.Temperature, req.Humidity)
	est := accuracy.Estimate(req.Temperature, req.Humidity)
	advisory := accuracy.Advisory(req.Temperature, req.Humidity, est, warnings)

	start = time.Now()
	chartJSON, err := charts.Encode(ds)
	if err != nil {
		return nil, err
	}
	metrics.ChartBuildDuration.Observe(time.Since(start).Seconds())

	u := models.Upload{
		ID:           uuid.NewString(),
		CreatedAt:    in.now().UTC(),
		Filename:     req.Filename,
		Temperature:  req.Temperature,
		Humidity:     req.Humidity,
		Advisory:     advisory,
		ReadingCount: len(ds),
		Charts:       chartJSON,
	}

	payloadID, err := in.store.StoreRawPayload(req.Source, req.Filename, req.Data)
	if err != nil {
		in.logger.Warn("failed to store raw payload", "filename", req.Filename, "error", err)
	} else {
		u.RawPayloadID = sql.NullInt64{Int64: payloadID, Valid: true}
	}

	if err := in.store.SaveUpload(u, ds); err != nil {
		return nil, fmt.Errorf("save upload: %w", err)
	}

	in.logger.Info("stored upload",
		"upload_id", u.ID,
		"filename", u.Filename,
		"readings", len(ds),
		"ignored_lines", p.Ignored(),
	)
	return &u, nil
}

// IsParseError reports whether err came from a malformed sensor log.
func IsParseError(err error) bool {
	var malformed *sensorlog.MalformedLineError
	var numeric *sensorlog.NumericFormatError
	return errors.As(err, &malformed) || errors.As(err, &numeric)
}

// IsInvalidInput reports whether err is a rejected temperature or humidity.
func IsInvalidInput(err error) bool {
	var invalid *InvalidConditionError
	return errors.Is(err, ErrMissingConditions) || errors.As(err, &invalid)
}

func status(err error) string {
	switch {
	case err == nil:
		return StatusSuccess
	case IsInvalidInput(err):
		return StatusInvalid
	case IsParseError(err):
		return StatusParseError
	default:
		return StatusError
	}
}
