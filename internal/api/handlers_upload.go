package api

import (
	"errors"
	"net/http"

	"github.com/lox/airsense/internal/httputil"
	"github.com/lox/airsense/internal/ingest"
	"github.com/lox/airsense/internal/metrics"
	"github.com/lox/airsense/internal/store"
)

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// formOverhead allows for the non-file fields and part headers of an upload.
const formOverhead = 1 << 20

type uploadResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload+formOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.rejectUpload(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		s.rejectUpload(w, http.StatusBadRequest, "No file part")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		// Browsers submit an empty file input as a part with an empty
		// filename, which the multipart reader stores as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			s.rejectUpload(w, http.StatusBadRequest, "No selected file")
			return
		}
		s.rejectUpload(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		s.rejectUpload(w, http.StatusBadRequest, "No selected file")
		return
	}

	temperature, humidity, err := ingest.ParseConditions(r.FormValue("temperature"), r.FormValue("humidity"))
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(store.SourceUpload, ingest.StatusInvalid).Inc()
		if errors.Is(err, ingest.ErrMissingConditions) {
			writeError(w, http.StatusBadRequest, "Temperature and humidity are required")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := httputil.ReadLimited(file, s.maxUpload)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(store.SourceUpload, ingest.StatusInvalid).Inc()
		if errors.Is(err, httputil.ErrTooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, err.Error())
			return
		}
		s.logger.Error("failed to read upload", "filename", header.Filename, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	u, err := s.ingester.Ingest(ingest.Request{
		Source:      store.SourceUpload,
		Filename:    header.Filename,
		Data:        data,
		Temperature: temperature,
		Humidity:    humidity,
	})
	if err != nil {
		if ingest.IsParseError(err) {
			s.logger.Warn("rejected malformed sensor log", "filename", header.Filename, "error", err)
		} else {
			s.logger.Error("upload failed", "filename", header.Filename, "error", err)
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{Status: "success", ID: u.ID})
}

func (s *Server) rejectUpload(w http.ResponseWriter, status int, msg string) {
	metrics.UploadsTotal.WithLabelValues(store.SourceUpload, ingest.StatusInvalid).Inc()
	http.Error(w, msg, status)
}
