package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"

	"github.com/lox/gdpdash/internal/models"
)

// DefaultTable is the table name used when a sqlite source doesn't name one.
const DefaultTable = "nama_10_gdp"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Store reads observations from a SQLite copy of the GDP table. It never
// writes.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens path read-only with the modernc sqlite driver.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return New(db), nil
}

// DSN returns a read-only URI for path. The busy timeout is a DSN pragma
// so every pooled connection gets it.
func DSN(path string) string {
	return "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro&_pragma=busy_timeout(5000)"
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Schema returns the DDL for a table Observations can read.
func Schema(table string) (string, error) {
	if !tableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %q (
    geo TEXT NOT NULL,
    na_item TEXT NOT NULL,
    unit TEXT NOT NULL,
    time INTEGER NOT NULL,
    value REAL
)`, table), nil
}

// Observations returns every row of table in rowid order, which is the
// order the rows were imported in. NULL values load as missing.
func (s *Store) Observations(ctx context.Context, table string) ([]models.Observation, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT geo, na_item, unit, time, value
		FROM %q
		ORDER BY rowid ASC
	`, table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Geo, &o.Item, &o.Unit, &o.Time, &o.Value); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		observations = append(observations, o)
	}
	return observations, rows.Err()
}
