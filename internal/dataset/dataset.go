// Package dataset holds the in-memory Eurostat GDP table the dashboard is
// drawn from. A Dataset is built once at startup and never mutated, so it is
// shared between request goroutines without locking.
package dataset

import (
	"errors"
	"sort"

	"github.com/lox/gdpdash/internal/models"
)

var (
	ErrMissingColumn = errors.New("missing required column")
	ErrNoRows        = errors.New("no usable rows")
	ErrEmpty         = errors.New("empty input")
)

// Aggregates are the EU and euro-area composites in nama_10_gdp. They are
// not countries and are dropped at load time.
var Aggregates = []string{
	"European Union (current composition)",
	"European Union (without United Kingdom)",
	"European Union (15 countries)",
	"Euro area (EA11-2000, EA12-2006, EA13-2007, EA15-2008, EA16-2010, EA17-2013, EA18-2014, EA19)",
	"Euro area (19 countries)",
	"Euro area (12 countries)",
}

// Options controls parsing. The zero value parses a comma separated file
// with the default exclusion set.
type Options struct {
	Delimiter       rune
	ExtraExclusions []string
}

func (o Options) exclusions() map[string]bool {
	ex := make(map[string]bool, len(Aggregates)+len(o.ExtraExclusions))
	for _, name := range Aggregates {
		ex[name] = true
	}
	for _, name := range o.ExtraExclusions {
		ex[name] = true
	}
	return ex
}

// LoadStats summarises what happened to the raw rows.
type LoadStats struct {
	RowsRead      int
	RowsKept      int
	RowsExcluded  int
	RowsMalformed int
	MissingValues int
}

type Dataset struct {
	obs        []models.Observation
	indicators []models.Indicator
	countries  []string
	years      []int

	hasIndicator map[models.Indicator]bool
	hasCountry   map[string]bool
	hasYear      map[int]bool

	stats LoadStats
}

// FromObservations builds a Dataset from already decoded rows. Aggregate
// areas are removed and every indicator is recomputed from item and unit,
// whatever the caller put in Observation.Indicator.
func FromObservations(rows []models.Observation, opts Options) (*Dataset, error) {
	b := newBuilder(opts)
	for _, o := range rows {
		b.stats.RowsRead++
		b.add(o)
	}
	return b.finish()
}

type builder struct {
	excluded map[string]bool
	ds       *Dataset
	stats    LoadStats
}

func newBuilder(opts Options) *builder {
	return &builder{
		excluded: opts.exclusions(),
		ds: &Dataset{
			hasIndicator: make(map[models.Indicator]bool),
			hasCountry:   make(map[string]bool),
			hasYear:      make(map[int]bool),
		},
	}
}

func (b *builder) add(o models.Observation) {
	if o.Geo == "" || o.Item == "" || o.Unit == "" {
		b.stats.RowsMalformed++
		return
	}
	if b.excluded[o.Geo] {
		b.stats.RowsExcluded++
		return
	}
	o.Indicator = models.NewIndicator(o.Item, o.Unit)
	if !o.Value.Valid {
		b.stats.MissingValues++
	}

	ds := b.ds
	ds.obs = append(ds.obs, o)
	if !ds.hasIndicator[o.Indicator] {
		ds.hasIndicator[o.Indicator] = true
		ds.indicators = append(ds.indicators, o.Indicator)
	}
	if !ds.hasCountry[o.Geo] {
		ds.hasCountry[o.Geo] = true
		ds.countries = append(ds.countries, o.Geo)
	}
	if !ds.hasYear[o.Time] {
		ds.hasYear[o.Time] = true
		ds.years = append(ds.years, o.Time)
	}
	b.stats.RowsKept++
}

func (b *builder) finish() (*Dataset, error) {
	if len(b.ds.obs) == 0 {
		return nil, ErrNoRows
	}
	sort.Ints(b.ds.years)
	b.ds.stats = b.stats
	return b.ds, nil
}

// Observations returns the rows in source order. Callers must not modify
// the returned slice.
func (d *Dataset) Observations() []models.Observation { return d.obs }

// Indicators returns distinct indicators in first-seen order.
func (d *Dataset) Indicators() []models.Indicator { return d.indicators }

// Countries returns distinct areas in first-seen order.
func (d *Dataset) Countries() []string { return d.countries }

// Years returns distinct time periods, ascending.
func (d *Dataset) Years() []int { return d.years }

func (d *Dataset) Len() int { return len(d.obs) }

func (d *Dataset) Stats() LoadStats { return d.stats }

func (d *Dataset) HasIndicator(i models.Indicator) bool { return d.hasIndicator[i] }

func (d *Dataset) HasCountry(c string) bool { return d.hasCountry[c] }

func (d *Dataset) HasYear(y int) bool { return d.hasYear[y] }

// MinYear and MaxYear bound the year slider.
func (d *Dataset) MinYear() int { return d.years[0] }

func (d *Dataset) MaxYear() int { return d.years[len(d.years)-1] }

// DefaultScatterSelection is the initial state of the scatter controls:
// the first two indicators, linear axes, latest year.
func (d *Dataset) DefaultScatterSelection() models.ScatterSelection {
	x := d.indicators[0]
	y := x
	if len(d.indicators) > 1 {
		y = d.indicators[1]
	}
	return models.ScatterSelection{
		XIndicator: x,
		YIndicator: y,
		XScale:     models.Linear,
		YScale:     models.Linear,
		Year:       d.MaxYear(),
	}
}

// DefaultTimelineSelection is the initial state of the time-series controls.
func (d *Dataset) DefaultTimelineSelection() models.TimelineSelection {
	return models.TimelineSelection{
		Country:   d.countries[0],
		Indicator: d.indicators[0],
	}
}
