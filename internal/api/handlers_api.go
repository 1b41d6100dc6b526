package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/lox/airsense/internal/accuracy"
	"github.com/lox/airsense/internal/models"
)

const (
	defaultUploadLimit = 20
	maxUploadLimit     = 100
)

type UploadSummary struct {
	ID           string               `json:"id"`
	CreatedAt    time.Time            `json:"created_at"`
	Filename     string               `json:"filename"`
	Temperature  float64              `json:"temperature"`
	Humidity     float64              `json:"humidity"`
	ReadingCount int                  `json:"reading_count"`
	Errors       models.ErrorEstimate `json:"errors"`
	Advisory     string               `json:"advisory,omitempty"`
}

// ReadingView is a reading as served over the API; header fields are null
// for samples logged before any header line.
type ReadingView struct {
	Altitude    *float64 `json:"altitude"`
	Location    *string  `json:"location"`
	Windspeed   *float64 `json:"windspeed"`
	Temperature *float64 `json:"temperature"`
	Timestamp   *string  `json:"timestamp"`
	Time        string   `json:"time"`
	CO          float64  `json:"co"`
	H2          float64  `json:"h2"`
	Dust        float64  `json:"dust"`
}

func newUploadSummary(u models.Upload) UploadSummary {
	return UploadSummary{
		ID:           u.ID,
		CreatedAt:    u.CreatedAt,
		Filename:     u.Filename,
		Temperature:  u.Temperature,
		Humidity:     u.Humidity,
		ReadingCount: u.ReadingCount,
		Errors:       accuracy.Estimate(u.Temperature, u.Humidity),
	}
}

func newReadingView(r models.Reading) ReadingView {
	v := ReadingView{Time: r.Time, CO: r.CO, H2: r.H2, Dust: r.Dust}
	if r.Altitude.Valid {
		v.Altitude = &r.Altitude.Float64
	}
	if r.Location.Valid {
		v.Location = &r.Location.String
	}
	if r.Windspeed.Valid {
		v.Windspeed = &r.Windspeed.Float64
	}
	if r.Temperature.Valid {
		v.Temperature = &r.Temperature.Float64
	}
	if r.Timestamp.Valid {
		v.Timestamp = &r.Timestamp.String
	}
	return v
}

func (s *Server) handleAPIUploads(w http.ResponseWriter, r *http.Request) {
	limit := defaultUploadLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxUploadLimit)
	}

	uploads, err := s.store.ListUploads(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	summaries := make([]UploadSummary, 0, len(uploads))
	for _, u := range uploads {
		summaries = append(summaries, newUploadSummary(u))
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleAPIUpload(w http.ResponseWriter, r *http.Request) {
	u, ok := s.lookupUpload(w, r, r.PathValue("id"))
	if !ok {
		return
	}
	summary := newUploadSummary(*u)
	summary.Advisory = u.Advisory
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleAPIReadings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, ok := s.lookupUpload(w, r, id); !ok {
		return
	}

	ds, err := s.store.GetReadings(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	views := make([]ReadingView, 0, len(ds))
	for _, reading := range ds {
		views = append(views, newReadingView(reading))
	}
	writeJSON(w, http.StatusOK, views)
}
