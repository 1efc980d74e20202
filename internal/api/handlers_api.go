package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/lox/gdpdash/internal/dash"
	"github.com/lox/gdpdash/internal/models"
)

// maxUpdateBody bounds a callback request; the real ones are a few hundred bytes.
const maxUpdateBody = 64 << 10

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type HealthStatus struct {
	Status     string `json:"status"`
	Rows       int    `json:"rows"`
	Indicators int    `json:"indicators"`
	Countries  int    `json:"countries"`
	Years      [2]int `json:"years"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{
		Status:     "ok",
		Rows:       s.ds.Len(),
		Indicators: len(s.ds.Indicators()),
		Countries:  len(s.ds.Countries()),
		Years:      [2]int{s.ds.MinYear(), s.ds.MaxYear()},
	})
}

func (s *Server) handleDashLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.layout())
}

func (s *Server) handleDashDependencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Dependencies())
}

func (s *Server) handleDashUpdate(w http.ResponseWriter, r *http.Request) {
	var req dash.UpdateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := s.app.Dispatch(r.Context(), req)
	switch {
	case errors.Is(err, dash.ErrUnknownOutput):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, dash.ErrInputMismatch):
		writeError(w, http.StatusBadRequest, err)
	case err != nil:
		log.Printf("dispatch %s: %v", req.Output, err)
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleAPIIndicators(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.Indicators())
}

func (s *Server) handleAPICountries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.Countries())
}

func (s *Server) handleAPIYears(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.Years())
}

// handleAPIScatter serves the scatter figure for query parameters x, y,
// xscale, yscale and year. Omitted parameters take the page defaults.
func (s *Server) handleAPIScatter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := s.ds.DefaultScatterSelection()
	if v := q.Get("x"); v != "" {
		sel.XIndicator = models.Indicator(v)
	}
	if v := q.Get("y"); v != "" {
		sel.YIndicator = models.Indicator(v)
	}
	if v := q.Get("xscale"); v != "" {
		sel.XScale = models.ParseScale(v)
	}
	if v := q.Get("yscale"); v != "" {
		sel.YScale = models.ParseScale(v)
	}
	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid year", http.StatusBadRequest)
			return
		}
		sel.Year = year
	}
	writeJSON(w, http.StatusOK, s.scatter(sel))
}

func (s *Server) handleAPITimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sel := s.ds.DefaultTimelineSelection()
	if v := q.Get("country"); v != "" {
		sel.Country = v
	}
	if v := q.Get("indicator"); v != "" {
		sel.Indicator = models.Indicator(v)
	}
	writeJSON(w, http.StatusOK, s.timeline(sel))
}
