package api

import (
	"context"
	"log"
	"strconv"

	"github.com/lox/gdpdash/internal/chart"
	"github.com/lox/gdpdash/internal/dash"
	"github.com/lox/gdpdash/internal/metrics"
	"github.com/lox/gdpdash/internal/models"
	"github.com/lox/gdpdash/internal/resolve"
)

// Component ids used by the page template and the callbacks.
const (
	idScatterX      = "xaxis-column1"
	idScatterY      = "yaxis-column1"
	idScatterXScale = "xaxis-type1"
	idScatterYScale = "yaxis-type1"
	idScatterYear   = "year--slider1"
	idScatterGraph  = "indicator-graphic1"

	idTimelineCountry   = "country2"
	idTimelineIndicator = "yaxis-column2"
	idTimelineGraph     = "indicator-graphic2"
)

func (s *Server) registerCallbacks() error {
	err := s.app.Callback(
		dash.Output(idScatterGraph, "figure"),
		[]dash.Dependency{
			dash.Input(idScatterX, "value"),
			dash.Input(idScatterY, "value"),
			dash.Input(idScatterXScale, "value"),
			dash.Input(idScatterYScale, "value"),
			dash.Input(idScatterYear, "value"),
		},
		s.scatterFigure,
	)
	if err != nil {
		return err
	}
	return s.app.Callback(
		dash.Output(idTimelineGraph, "figure"),
		[]dash.Dependency{
			dash.Input(idTimelineCountry, "value"),
			dash.Input(idTimelineIndicator, "value"),
		},
		s.timelineFigure,
	)
}

// Values that fail to coerce are left zero; they match no rows and the
// user gets an empty chart rather than an error.
func (s *Server) scatterFigure(ctx context.Context, values []any) (any, error) {
	x, _ := dash.String(values, 0)
	y, _ := dash.String(values, 1)
	xScale, _ := dash.String(values, 2)
	yScale, _ := dash.String(values, 3)
	year, _ := dash.Int(values, 4)

	return s.scatter(models.ScatterSelection{
		XIndicator: models.Indicator(x),
		YIndicator: models.Indicator(y),
		XScale:     models.ParseScale(xScale),
		YScale:     models.ParseScale(yScale),
		Year:       year,
	}), nil
}

func (s *Server) timelineFigure(ctx context.Context, values []any) (any, error) {
	country, _ := dash.String(values, 0)
	indicator, _ := dash.String(values, 1)

	return s.timeline(models.TimelineSelection{
		Country:   country,
		Indicator: models.Indicator(indicator),
	}), nil
}

func (s *Server) scatter(sel models.ScatterSelection) chart.Figure {
	s.checkIndicator("scatter", sel.XIndicator)
	s.checkIndicator("scatter", sel.YIndicator)
	if !s.ds.HasYear(sel.Year) {
		unknownSelection("scatter", "year", strconv.Itoa(sel.Year))
	}
	res := resolve.Scatter(s.ds, sel)
	metrics.SeriesPoints.WithLabelValues("scatter").Observe(float64(res.Series.Len()))
	return chart.Scatter(res)
}

func (s *Server) timeline(sel models.TimelineSelection) chart.Figure {
	if !s.ds.HasCountry(sel.Country) {
		unknownSelection("timeline", "country", sel.Country)
	}
	s.checkIndicator("timeline", sel.Indicator)
	res := resolve.Timeline(s.ds, sel)
	metrics.SeriesPoints.WithLabelValues("timeline").Observe(float64(res.Series.Len()))
	return chart.Timeline(res)
}

func (s *Server) checkIndicator(view string, ind models.Indicator) {
	if !s.ds.HasIndicator(ind) {
		unknownSelection(view, "indicator", string(ind))
	}
}

// unknownSelection records a selection that matches no rows, typically a
// page rendered against an older dataset. The chart is drawn empty.
func unknownSelection(view, field, value string) {
	metrics.UnknownSelections.WithLabelValues(view, field).Inc()
	log.Printf("%s: unknown %s %q", view, field, value)
}
