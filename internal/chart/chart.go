// Package chart builds the declarative figures the page hands to Plotly.js.
// Nothing here draws; a Figure is plain data that marshals to the
// {"data": [...], "layout": {...}} shape plotly expects.
package chart

import (
	"math"
	"strconv"

	"github.com/lox/gdpdash/internal/models"
)

const (
	marginPx     = 40
	markerSize   = 15
	markerAlpha  = 0.5
	timelineFont = 10
)

type Figure struct {
	Data   []Trace `json:"data"`
	Layout Layout  `json:"layout"`
}

type Trace struct {
	Type   string   `json:"type"`
	Mode   string   `json:"mode"`
	X      Values   `json:"x"`
	Y      Values   `json:"y"`
	Text   []string `json:"text,omitempty"`
	Marker *Marker  `json:"marker,omitempty"`
}

type Marker struct {
	Size    float64     `json:"size"`
	Opacity float64     `json:"opacity"`
	Line    *MarkerLine `json:"line,omitempty"`
}

type MarkerLine struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

type Layout struct {
	XAxis     *Axis  `json:"xaxis,omitempty"`
	YAxis     *Axis  `json:"yaxis,omitempty"`
	Margin    Margin `json:"margin"`
	HoverMode string `json:"hovermode"`
}

type Axis struct {
	Title Title  `json:"title"`
	Type  string `json:"type"`
}

type Title struct {
	Text string `json:"text"`
	Font *Font  `json:"font,omitempty"`
}

type Font struct {
	Size int `json:"size"`
}

type Margin struct {
	L int `json:"l"`
	B int `json:"b"`
	T int `json:"t"`
	R int `json:"r"`
}

// Values is a numeric column. NaN and ±Inf marshal as null, which plotly
// treats as a gap; a nil column marshals as [].
type Values []float64

func (v Values) MarshalJSON() ([]byte, error) {
	buf := make([]byte, 0, 2+len(v)*8)
	buf = append(buf, '[')
	for i, f := range v {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, f, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

func defaultMargin() Margin {
	return Margin{L: marginPx, B: marginPx, T: marginPx, R: marginPx}
}

// Scatter builds the cross-indicator figure: markers only, labelled with
// the area of each Y point, each axis linear or log.
func Scatter(res models.ScatterResult) Figure {
	return Figure{
		Data: []Trace{{
			Type: "scatter",
			Mode: "markers",
			X:    Values(res.Series.X),
			Y:    Values(res.Series.Y),
			Text: res.Series.Text,
			Marker: &Marker{
				Size:    markerSize,
				Opacity: markerAlpha,
				Line:    &MarkerLine{Width: 0.5, Color: "white"},
			},
		}},
		Layout: Layout{
			XAxis:     &Axis{Title: Title{Text: res.XAxis.Title}, Type: res.XAxis.Scale.AxisType()},
			YAxis:     &Axis{Title: Title{Text: res.YAxis.Title}, Type: res.YAxis.Scale.AxisType()},
			Margin:    defaultMargin(),
			HoverMode: "closest",
		},
	}
}

// Timeline builds the country time-series figure. The y axis is always
// linear and its title uses a smaller font since indicator names are long.
func Timeline(res models.TimelineResult) Figure {
	return Figure{
		Data: []Trace{{
			Type: "scatter",
			Mode: "lines",
			X:    Values(res.Series.X),
			Y:    Values(res.Series.Y),
		}},
		Layout: Layout{
			YAxis: &Axis{
				Title: Title{Text: res.YAxis.Title, Font: &Font{Size: timelineFont}},
				Type:  models.Linear.AxisType(),
			},
			Margin:    defaultMargin(),
			HoverMode: "closest",
		},
	}
}
