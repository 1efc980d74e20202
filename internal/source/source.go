// Package source locates the raw GDP table. A source is either a byte
// stream that still needs CSV parsing (local file, HTTP, FTP) or a reader
// of decoded rows (SQLite).
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/lox/gdpdash/internal/metrics"
	"github.com/lox/gdpdash/internal/models"
	"github.com/lox/gdpdash/internal/store"
)

var ErrUnsupportedScheme = errors.New("unsupported source scheme")

type Source interface {
	Scheme() string
	String() string
}

// Opener is a source of delimited text.
type Opener interface {
	Source
	Open(ctx context.Context) (io.ReadCloser, error)
}

// RowReader is a source of already typed observations.
type RowReader interface {
	Source
	ReadObservations(ctx context.Context) ([]models.Observation, error)
}

// Parse picks a source from a --data value. Bare paths are local files.
func Parse(raw string) (Source, error) {
	if !strings.Contains(raw, "://") {
		return &File{Path: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse source %q: %w", raw, err)
	}
	switch u.Scheme {
	case "file":
		return &File{Path: u.Host + u.Path}, nil
	case "http", "https":
		return NewHTTP(raw), nil
	case "ftp":
		return NewFTP(u), nil
	case "sqlite":
		table := u.Query().Get("table")
		if table == "" {
			table = store.DefaultTable
		}
		return &SQLite{Path: u.Host + u.Path, Table: table}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
}

// observe records a fetch outcome for the scheme.
func observe(scheme string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.SourceFetchTotal.WithLabelValues(scheme, status).Inc()
	metrics.SourceFetchLatency.WithLabelValues(scheme).Observe(time.Since(start).Seconds())
}

type File struct {
	Path string
}

func (f *File) Scheme() string { return "file" }

func (f *File) String() string { return f.Path }

func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	start := time.Now()
	fh, err := os.Open(f.Path)
	observe("file", start, err)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return fh, nil
}

type SQLite struct {
	Path  string
	Table string
}

func (s *SQLite) Scheme() string { return "sqlite" }

func (s *SQLite) String() string { return "sqlite://" + s.Path + "?table=" + s.Table }

func (s *SQLite) ReadObservations(ctx context.Context) (obs []models.Observation, err error) {
	start := time.Now()
	defer func() { observe("sqlite", start, err) }()

	if _, err := os.Stat(s.Path); err != nil {
		return nil, fmt.Errorf("open %s: %w", s.Path, err)
	}
	st, err := store.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Observations(ctx, s.Table)
}
