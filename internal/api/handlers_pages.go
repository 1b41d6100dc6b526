package api

import (
	"net/http"

	"github.com/lox/airsense/internal/models"
)

type ResultPage struct {
	Upload *models.Upload
	// ID is the upload the page's charts and card are loaded for; empty when
	// nothing has been uploaded.
	ID string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.tmpl.ExecuteTemplate(w, "index.html", nil); err != nil {
		s.logger.Error("template error", "template", "index.html", "error", err)
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	u, ok := s.lookupUpload(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	page := ResultPage{Upload: u}
	if u != nil {
		page.ID = u.ID
	}
	if err := s.tmpl.ExecuteTemplate(w, "result.html", page); err != nil {
		s.logger.Error("template error", "template", "result.html", "error", err)
	}
}

func (s *Server) handleGetGraphs(w http.ResponseWriter, r *http.Request) {
	u, ok := s.lookupUpload(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if u == nil || len(u.Charts) == 0 {
		w.Write([]byte("{}"))
		return
	}
	w.Write(u.Charts)
}

// lookupUpload returns the upload with the given id, or the most recent
// upload when id is empty. It writes the error response itself and returns
// false when the request cannot continue. A nil upload with true means no
// upload exists yet.
func (s *Server) lookupUpload(w http.ResponseWriter, r *http.Request, id string) (*models.Upload, bool) {
	var (
		u   *models.Upload
		err error
	)
	if id == "" {
		u, err = s.store.GetLatestUpload()
	} else {
		u, err = s.store.GetUpload(id)
	}
	if err != nil {
		s.logger.Error("failed to load upload", "upload_id", id, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	if u == nil && id != "" {
		writeError(w, http.StatusNotFound, "upload not found")
		return nil, false
	}
	return u, true
}
