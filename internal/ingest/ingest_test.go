package ingest

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/lox/airsense/internal/charts"
	"github.com/lox/airsense/internal/sensorlog"
	"github.com/lox/airsense/internal/store"
)

const sampleLog = "Altitude=50m;Location=Park;Windspeed=12km/hr;Temperature=22'C;Timestamp=10:00:00\n" +
	"Sample 1: 10:00:05 | CO Concentration: 3 ppm | H2 Concentration: 1 ppm | Dust Concentration: 20 ug/m3\n" +
	"battery ok\n"

func setupIngester(t *testing.T) (*Ingester, *store.Store) {
	t.Helper()
	db, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := store.New(db, logger)
	if err := s.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(s, logger), s
}

func TestIngest_Success(t *testing.T) {
	in, s := setupIngester(t)
	fixed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	in.now = func() time.Time { return fixed }

	u, err := in.Ingest(Request{
		Source:      store.SourceUpload,
		Filename:    "flight.log",
		Data:        []byte(sampleLog),
		Temperature: 40,
		Humidity:    20,
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected upload ID")
	}
	if u.ReadingCount != 1 {
		t.Errorf("ReadingCount = %d, want 1", u.ReadingCount)
	}
	if !u.RawPayloadID.Valid {
		t.Error("expected raw payload to be linked")
	}
	if !strings.Contains(u.Advisory, "• CO Sensor: ±85.00% error") {
		t.Errorf("advisory missing CO line:\n%s", u.Advisory)
	}
	if !strings.Contains(u.Advisory, sensorlog.WarnHighTemperature) {
		t.Errorf("advisory missing temperature warning:\n%s", u.Advisory)
	}

	var set map[string]json.RawMessage
	if err := json.Unmarshal(u.Charts, &set); err != nil {
		t.Fatalf("charts not JSON: %v", err)
	}
	if _, ok := set[charts.KeyTimeSeries]; !ok {
		t.Error("charts missing time series")
	}

	got, err := s.GetUpload(u.ID)
	if err != nil || got == nil {
		t.Fatalf("GetUpload = %v, %v", got, err)
	}
	if !got.CreatedAt.Equal(fixed) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, fixed)
	}
	readings, err := s.GetReadings(u.ID)
	if err != nil {
		t.Fatalf("GetReadings: %v", err)
	}
	if len(readings) != 1 || readings[0].Location.String != "Park" {
		t.Errorf("readings = %+v", readings)
	}
}

func TestIngest_ParseErrorStoresNothing(t *testing.T) {
	in, s := setupIngester(t)

	_, err := in.Ingest(Request{
		Source:      store.SourceUpload,
		Filename:    "bad.log",
		Data:        []byte("Sample 1: 10:00:05 | CO Concentration: abc ppm | H2 Concentration: 1 ppm | Dust Concentration: 20 ug/m3"),
		Temperature: 25,
		Humidity:    70,
	})
	if !IsParseError(err) {
		t.Fatalf("err = %v, want parse error", err)
	}
	if status(err) != StatusParseError {
		t.Errorf("status = %q, want %q", status(err), StatusParseError)
	}

	latest, err := s.GetLatestUpload()
	if err != nil {
		t.Fatalf("GetLatestUpload: %v", err)
	}
	if latest != nil {
		t.Errorf("upload stored after parse error: %+v", latest)
	}
	stats, err := s.GetRawPayloadStats()
	if err != nil {
		t.Fatalf("GetRawPayloadStats: %v", err)
	}
	if stats.TotalCount != 0 {
		t.Errorf("raw payloads = %d, want 0", stats.TotalCount)
	}
}

func TestIngest_RejectsNonFiniteConditions(t *testing.T) {
	in, _ := setupIngester(t)

	_, err := in.Ingest(Request{Source: store.SourceIngest, Data: []byte(sampleLog), Temperature: math.NaN(), Humidity: 50})
	if !IsInvalidInput(err) {
		t.Fatalf("err = %v, want invalid input", err)
	}
}

func TestParseConditions(t *testing.T) {
	tests := []struct {
		name        string
		temperature string
		humidity    string
		wantT       float64
		wantH       float64
		wantErr     error
		wantField   string
	}{
		{name: "valid", temperature: "22.5", humidity: " 60 ", wantT: 22.5, wantH: 60},
		{name: "negative", temperature: "-5", humidity: "0", wantT: -5, wantH: 0},
		{name: "missing temperature", temperature: "", humidity: "60", wantErr: ErrMissingConditions},
		{name: "missing humidity", temperature: "20", humidity: "  ", wantErr: ErrMissingConditions},
		{name: "non-numeric temperature", temperature: "warm", humidity: "60", wantField: "temperature"},
		{name: "non-numeric humidity", temperature: "20", humidity: "wet", wantField: "humidity"},
		{name: "infinite", temperature: "Inf", humidity: "60", wantField: "temperature"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, hum, err := ParseConditions(tt.temperature, tt.humidity)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			case tt.wantField != "":
				var invalid *InvalidConditionError
				if !errors.As(err, &invalid) {
					t.Fatalf("err = %v, want *InvalidConditionError", err)
				}
				if invalid.Field != tt.wantField {
					t.Errorf("Field = %q, want %q", invalid.Field, tt.wantField)
				}
			default:
				if err != nil {
					t.Fatalf("ParseConditions: %v", err)
				}
				if temp != tt.wantT || hum != tt.wantH {
					t.Errorf("got (%v, %v), want (%v, %v)", temp, hum, tt.wantT, tt.wantH)
				}
			}
		})
	}
}

func TestIngest_InvalidEncoding(t *testing.T) {
	in, _ := setupIngester(t)

	_, err := in.Ingest(Request{Source: store.SourceUpload, Data: []byte{0xff, 0xfe, 'x'}, Temperature: 25, Humidity: 70})
	if !errors.Is(err, ErrInvalidEncoding) {
		t.Fatalf("err = %v, want ErrInvalidEncoding", err)
	}
	if status(err) != StatusError {
		t.Errorf("status = %q, want %q", status(err), StatusError)
	}
}

func TestIngest_NonFiniteReadingIsParseError(t *testing.T) {
	for _, value := range []string{"nan", "inf", "-Infinity"} {
		t.Run(value, func(t *testing.T) {
			in, s := setupIngester(t)

			data := "Altitude=50m;Location=Park;Windspeed=12km/hr;Temperature=22'C;Timestamp=10:00:00\n" +
				"Sample 1: 10:00:05 | CO Concentration: " + value + " ppm | H2 Concentration: 1 ppm | Dust Concentration: 20 ug/m3\n"
			_, err := in.Ingest(Request{Source: store.SourceUpload, Filename: "bad.log", Data: []byte(data), Temperature: 25, Humidity: 70})
			if !IsParseError(err) {
				t.Fatalf("err = %v, want parse error", err)
			}
			if status(err) != StatusParseError {
				t.Errorf("status = %q, want %q", status(err), StatusParseError)
			}
			if latest, _ := s.GetLatestUpload(); latest != nil {
				t.Errorf("upload stored after parse error: %+v", latest)
			}
		})
	}
}
