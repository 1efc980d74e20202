package dataset

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/lox/gdpdash/internal/metrics"
	"github.com/lox/gdpdash/internal/source"
)

// Load reads the whole table from src. Any error here is fatal for the
// dashboard: there is nothing to serve without the dataset.
func Load(ctx context.Context, src source.Source, opts Options) (*Dataset, error) {
	start := time.Now()

	var (
		ds  *Dataset
		err error
	)
	switch s := src.(type) {
	case source.RowReader:
		rows, rerr := s.ReadObservations(ctx)
		if rerr != nil {
			return nil, fmt.Errorf("read %s: %w", src, rerr)
		}
		ds, err = FromObservations(rows, opts)
	case source.Opener:
		rc, oerr := s.Open(ctx)
		if oerr != nil {
			return nil, oerr
		}
		defer rc.Close()
		ds, err = Parse(rc, opts)
	default:
		return nil, fmt.Errorf("%w: %s", source.ErrUnsupportedScheme, src.Scheme())
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", src, err)
	}

	st := ds.Stats()
	metrics.DatasetRows.WithLabelValues("kept").Set(float64(st.RowsKept))
	metrics.DatasetRows.WithLabelValues("excluded").Set(float64(st.RowsExcluded))
	metrics.DatasetRows.WithLabelValues("malformed").Set(float64(st.RowsMalformed))
	metrics.DatasetRows.WithLabelValues("missing_value").Set(float64(st.MissingValues))

	log.Printf("dataset: loaded %s in %v: %d rows kept, %d aggregate rows excluded, %d malformed rows skipped, %d missing values",
		src, time.Since(start).Round(time.Millisecond), st.RowsKept, st.RowsExcluded, st.RowsMalformed, st.MissingValues)
	log.Printf("dataset: %d indicators, %d countries, years %d-%d",
		len(ds.Indicators()), len(ds.Countries()), ds.MinYear(), ds.MaxYear())
	return ds, nil
}
