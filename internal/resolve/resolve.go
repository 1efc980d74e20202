// Package resolve turns a view's control state into the series it plots.
// Resolvers are pure functions of the dataset and the selection; an
// unknown indicator, country or year simply matches no rows.
package resolve

import (
	"math"

	"github.com/lox/gdpdash/internal/dataset"
	"github.com/lox/gdpdash/internal/models"
)

// Scatter extracts, for one year, the values of the X indicator and the
// values of the Y indicator as two independent columns. Points are paired
// by position, not by country, so the two sides can differ in length and
// the renderer plots the shorter of the two. Text labels follow the Y rows.
func Scatter(ds *dataset.Dataset, sel models.ScatterSelection) models.ScatterResult {
	res := models.ScatterResult{
		Series: models.Series{X: []float64{}, Y: []float64{}, Text: []string{}},
		XAxis:  models.Axis{Title: string(sel.XIndicator), Scale: sel.XScale},
		YAxis:  models.Axis{Title: string(sel.YIndicator), Scale: sel.YScale},
	}
	if res.XAxis.Scale == "" {
		res.XAxis.Scale = models.Linear
	}
	if res.YAxis.Scale == "" {
		res.YAxis.Scale = models.Linear
	}

	for _, o := range ds.Observations() {
		if o.Time != sel.Year {
			continue
		}
		if o.Indicator == sel.XIndicator {
			res.Series.X = append(res.Series.X, value(o))
		}
		if o.Indicator == sel.YIndicator {
			res.Series.Y = append(res.Series.Y, value(o))
			res.Series.Text = append(res.Series.Text, o.Geo)
		}
	}
	return res
}

// Timeline returns (year, value) pairs for one country and indicator in
// dataset order. It doesn't sort.
func Timeline(ds *dataset.Dataset, sel models.TimelineSelection) models.TimelineResult {
	res := models.TimelineResult{
		Series: models.Series{X: []float64{}, Y: []float64{}},
		YAxis:  models.Axis{Title: string(sel.Indicator), Scale: models.Linear},
	}
	for _, o := range ds.Observations() {
		if o.Geo != sel.Country || o.Indicator != sel.Indicator {
			continue
		}
		res.Series.X = append(res.Series.X, float64(o.Time))
		res.Series.Y = append(res.Series.Y, value(o))
	}
	return res
}

// value keeps missing observations as NaN so positions stay aligned with
// the source rows.
func value(o models.Observation) float64 {
	if !o.Value.Valid {
		return math.NaN()
	}
	return o.Value.Float64
}
