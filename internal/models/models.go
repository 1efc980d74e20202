package models

import "database/sql"

// Indicator identifies an economic measure: the national-accounts item plus
// its unit, e.g. "Gross domestic product at market prices (Current prices, million euro)".
type Indicator string

// NewIndicator derives the indicator key for an item/unit pair.
func NewIndicator(item, unit string) Indicator {
	return Indicator(item + " (" + unit + ")")
}

// Observation is one row of the nama_10_gdp table.
type Observation struct {
	Geo       string
	Item      string
	Unit      string
	Time      int
	Value     sql.NullFloat64
	Indicator Indicator
}

// Scale is the axis scale selected by a Linear/Log toggle.
type Scale string

const (
	Linear Scale = "Linear"
	Log    Scale = "Log"
)

// ParseScale maps a toggle value to a Scale. Only an exact "Linear" is
// linear; every other value, the empty string included, is log.
func ParseScale(s string) Scale {
	if s == string(Linear) {
		return Linear
	}
	return Log
}

// AxisType returns the plotly axis type for the scale.
func (s Scale) AxisType() string {
	if s == Log {
		return "log"
	}
	return "linear"
}

// ScatterSelection is the control state of the cross-indicator view.
type ScatterSelection struct {
	XIndicator Indicator `json:"x_indicator"`
	YIndicator Indicator `json:"y_indicator"`
	XScale     Scale     `json:"x_scale"`
	YScale     Scale     `json:"y_scale"`
	Year       int       `json:"year"`
}

// TimelineSelection is the control state of the country time-series view.
type TimelineSelection struct {
	Country   string    `json:"country"`
	Indicator Indicator `json:"indicator"`
}

// Series is a resolved set of points. Text, when present, is aligned with Y.
type Series struct {
	X    []float64
	Y    []float64
	Text []string
}

// Len returns the number of plottable points, which is the shorter of X and Y.
func (s Series) Len() int {
	if len(s.X) < len(s.Y) {
		return len(s.X)
	}
	return len(s.Y)
}

type Axis struct {
	Title string
	Scale Scale
}

type ScatterResult struct {
	Series Series
	XAxis  Axis
	YAxis  Axis
}

type TimelineResult struct {
	Series Series
	YAxis  Axis
}
