package api

import (
	"log"
	"net/http"

	"github.com/lox/gdpdash/internal/models"
)

// Layout describes the controls of both views: the options each one
// offers and its initial value.
type Layout struct {
	Indicators []models.Indicator       `json:"indicators"`
	Countries  []string                 `json:"countries"`
	Years      []int                    `json:"years"`
	Scales     []models.Scale           `json:"scales"`
	Scatter    models.ScatterSelection  `json:"scatter"`
	Timeline   models.TimelineSelection `json:"timeline"`
	IDs        map[string]string        `json:"ids"`
}

type IndexData struct {
	Layout
	Title     string
	PlotlyURL string
	YearIndex int
}

func (s *Server) layout() Layout {
	return Layout{
		Indicators: s.ds.Indicators(),
		Countries:  s.ds.Countries(),
		Years:      s.ds.Years(),
		Scales:     []models.Scale{models.Linear, models.Log},
		Scatter:    s.ds.DefaultScatterSelection(),
		Timeline:   s.ds.DefaultTimelineSelection(),
		IDs: map[string]string{
			"scatterX":          idScatterX,
			"scatterY":          idScatterY,
			"scatterXScale":     idScatterXScale,
			"scatterYScale":     idScatterYScale,
			"scatterYear":       idScatterYear,
			"scatterGraph":      idScatterGraph,
			"timelineCountry":   idTimelineCountry,
			"timelineIndicator": idTimelineIndicator,
			"timelineGraph":     idTimelineGraph,
		},
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	layout := s.layout()
	data := IndexData{
		Layout:    layout,
		Title:     "Eurostat GDP Dashboard",
		PlotlyURL: s.cfg.PlotlyURL,
		YearIndex: len(layout.Years) - 1,
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		log.Printf("template error: %v", err)
	}
}
