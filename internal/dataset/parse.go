package dataset

import (
	"bufio"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/lox/gdpdash/internal/models"
)

// Column names in the Eurostat bulk CSV export.
const (
	ColGeo   = "GEO"
	ColItem  = "NA_ITEM"
	ColUnit  = "UNIT"
	ColTime  = "TIME"
	ColValue = "Value"
)

// MissingTokens are the literal values treated as "no observation".
// Eurostat writes ":" for not available.
var MissingTokens = []string{"", "NaN", ":"}

type columns struct {
	geo, item, unit, time, value int
	width                        int
}

func findColumns(header []string) (columns, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := idx[h]; !dup {
			idx[h] = i
		}
	}
	var c columns
	for _, col := range []struct {
		name string
		dst  *int
	}{
		{ColGeo, &c.geo},
		{ColItem, &c.item},
		{ColUnit, &c.unit},
		{ColTime, &c.time},
		{ColValue, &c.value},
	} {
		i, ok := idx[col.name]
		if !ok {
			return c, fmt.Errorf("%w: %s", ErrMissingColumn, col.name)
		}
		*col.dst = i
	}
	c.width = len(header)
	return c, nil
}

// Parse reads a delimited nama_10_gdp export. Each physical line is decoded
// on its own, since Eurostat fields never contain newlines, so a broken line
// costs exactly one row. Bad lines are skipped and counted in Stats; only a
// missing header, a missing required column or a file with no usable rows
// is an error.
func Parse(r io.Reader, opts Options) (*Dataset, error) {
	comma := opts.Delimiter
	if comma == 0 {
		comma = ','
	}
	br := bufio.NewReader(r)

	var (
		header []string
		cols   columns
		b      = newBuilder(opts)
	)
	for {
		line, rerr := br.ReadString('\n')
		if rerr != nil && !errors.Is(rerr, io.EOF) {
			return nil, fmt.Errorf("read row: %w", rerr)
		}
		line = strings.TrimRight(line, "\r\n")
		if header == nil {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if strings.TrimSpace(line) != "" {
			record, err := splitLine(line, comma)
			switch {
			case header == nil && err != nil:
				return nil, fmt.Errorf("read header: %w", err)
			case header == nil:
				header = record
				if cols, err = findColumns(header); err != nil {
					return nil, err
				}
			case err != nil:
				b.stats.RowsRead++
				b.stats.RowsMalformed++
			default:
				b.stats.RowsRead++
				if obs, ok := parseRecord(record, cols); ok {
					b.add(obs)
				} else {
					b.stats.RowsMalformed++
				}
			}
		}

		if rerr != nil {
			break
		}
	}
	if header == nil {
		return nil, ErrEmpty
	}
	return b.finish()
}

// splitLine decodes one line of delimited text. A quote that is never
// closed or appears inside an unquoted field is an error.
func splitLine(line string, comma rune) ([]string, error) {
	cr := csv.NewReader(strings.NewReader(line))
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	record, err := cr.Read()
	if err != nil {
		return nil, err
	}
	if strings.Count(line, `"`)%2 != 0 {
		return nil, &csv.ParseError{StartLine: 1, Line: 1, Err: csv.ErrQuote}
	}
	return record, nil
}

// parseRecord decodes one row. Rows with more fields than the header are
// rejected; short rows are padded with empty fields.
func parseRecord(record []string, cols columns) (models.Observation, bool) {
	if len(record) > cols.width {
		return models.Observation{}, false
	}
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	year, err := strconv.Atoi(field(cols.time))
	if err != nil {
		return models.Observation{}, false
	}
	value, ok := parseValue(field(cols.value))
	if !ok {
		return models.Observation{}, false
	}
	return models.Observation{
		Geo:   field(cols.geo),
		Item:  field(cols.item),
		Unit:  field(cols.unit),
		Time:  year,
		Value: value,
	}, true
}

// parseValue returns an invalid NullFloat64 for missing tokens and false
// when the field is neither missing nor a number.
func parseValue(s string) (sql.NullFloat64, bool) {
	for _, tok := range MissingTokens {
		if s == tok {
			return sql.NullFloat64{}, true
		}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return sql.NullFloat64{}, false
	}
	if math.IsNaN(f) {
		return sql.NullFloat64{}, true
	}
	return sql.NullFloat64{Float64: f, Valid: true}, true
}
