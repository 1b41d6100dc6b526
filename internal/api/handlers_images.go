package api

import (
	"net/http"
	"strconv"

	"github.com/lox/airsense/internal/imagegen"
)

// handleResultCard serves the advisory of an upload as a PNG card suitable
// for link previews.
func (s *Server) handleResultCard(w http.ResponseWriter, r *http.Request) {
	u, ok := s.lookupUpload(w, r, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "no uploads yet")
		return
	}

	if data, ok := s.cards.Get(u.ID); ok {
		serveCard(w, data)
		return
	}

	card := imagegen.NewAdvisoryCard("Sensor accuracy for "+u.Filename, u.Advisory)
	data, err := imagegen.RenderAdvisoryCard(card)
	if err != nil {
		s.logger.Error("card render failed", "upload_id", u.ID, "error", err)
		http.Error(w, "Image generation failed", http.StatusInternalServerError)
		return
	}
	s.cards.Set(u.ID, data)
	serveCard(w, data)
}

func serveCard(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=600")
	w.Write(data)
}
