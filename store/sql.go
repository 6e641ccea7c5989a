// Package store provides the series stores read by the forecaster. SQLStore reads the
// irradiance tables of a relational database and MemoryStore serves series held in memory.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	forecaster "github.com/gamyers/solar-697"
	"github.com/gamyers/solar-697/timedataset"

	_ "modernc.org/sqlite"
)

var (
	ErrInvalidIdentifier = errors.New("invalid table or column identifier")
	ErrInvalidTimestamp  = errors.New("unable to parse timestamp")
	ErrNoDatabase        = errors.New("no database handle")
)

// DriverName is the database/sql driver registered by the sqlite import
const DriverName = "sqlite"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
}

// Options names the tables and columns read by SQLStore
type Options struct {
	SeriesTable    string `json:"series_table" yaml:"series_table"`
	LocaleTable    string `json:"locale_table" yaml:"locale_table"`
	LocationColumn string `json:"location_column" yaml:"location_column"`
	TimeColumn     string `json:"time_column" yaml:"time_column"`

	// ResampleMonthly averages the raw readings into calendar months
	ResampleMonthly bool `json:"resample_monthly" yaml:"resample_monthly"`
}

// NewDefaultOptions reads monthly averages from the nsrdb and geo_zipcodes tables
func NewDefaultOptions() *Options {
	return &Options{
		SeriesTable:     "nsrdb",
		LocaleTable:     "geo_zipcodes",
		LocationColumn:  "zipcode",
		TimeColumn:      "date_time",
		ResampleMonthly: true,
	}
}

// Validate returns the default options if o is nil and otherwise checks every identifier
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	for _, name := range []string{o.SeriesTable, o.LocaleTable, o.LocationColumn, o.TimeColumn} {
		if !identifier.MatchString(name) {
			return nil, fmt.Errorf("%q, %w", name, ErrInvalidIdentifier)
		}
	}
	return o, nil
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// SQLStore reads series and locales from a database/sql handle
type SQLStore struct {
	db  *sql.DB
	opt *Options
}

// NewSQLStore wraps an open database handle. The caller keeps ownership of db.
func NewSQLStore(db *sql.DB, opt *Options) (*SQLStore, error) {
	if db == nil {
		return nil, ErrNoDatabase
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, opt: opt}, nil
}

// Open opens the sqlite database at path
func Open(ctx context.Context, path string, opt *Options) (*SQLStore, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s, %w", path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to connect to %s, %w", path, err)
	}
	s, err := NewSQLStore(db, opt)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// columns lists the columns of the series table in declaration order
func (s *SQLStore) columns(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') ORDER BY cid", s.opt.SeriesTable))
	if err != nil {
		return nil, fmt.Errorf("unable to list columns of %s, %w", s.opt.SeriesTable, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

func (s *SQLStore) hasLocation(ctx context.Context, zipcode string) (bool, error) {
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s = ? LIMIT 1",
		quote(s.opt.SeriesTable), quote(s.opt.LocationColumn))
	var one int
	err := s.db.QueryRowContext(ctx, query, zipcode).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("unable to look up %s, %w", zipcode, err)
	}
	return true, nil
}

// FeatureNames lists every column of the series table if the location has readings
func (s *SQLStore) FeatureNames(ctx context.Context, zipcode string) ([]string, error) {
	ok, err := s.hasLocation(ctx, zipcode)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("zipcode %s, %w", zipcode, forecaster.ErrUnknownLocation)
	}
	return s.columns(ctx)
}

// Series reads the feature column of a location ordered by time. NULL readings become NaN,
// repeated timestamps keep their first reading.
func (s *SQLStore) Series(ctx context.Context, zipcode, feature string) (*timedataset.TimeDataset, error) {
	cols, err := s.columns(ctx)
	if err != nil {
		return nil, err
	}
	if feature == s.opt.TimeColumn || !contains(cols, feature) {
		return nil, fmt.Errorf("column %q, %w", feature, forecaster.ErrUnknownFeature)
	}

	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s = ?",
		quote(s.opt.TimeColumn), quote(feature), quote(s.opt.SeriesTable), quote(s.opt.LocationColumn))
	rows, err := s.db.QueryContext(ctx, query, zipcode)
	if err != nil {
		return nil, fmt.Errorf("unable to query %s for %s, %w", feature, zipcode, err)
	}
	defer rows.Close()

	var readings []reading
	for rows.Next() {
		var (
			raw any
			val sql.NullFloat64
		)
		if err := rows.Scan(&raw, &val); err != nil {
			return nil, fmt.Errorf("unable to scan %s row, %w", feature, err)
		}
		t, err := parseTime(raw)
		if err != nil {
			return nil, err
		}
		r := reading{t: t, y: math.NaN()}
		if val.Valid {
			r.y = val.Float64
		}
		readings = append(readings, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return nil, fmt.Errorf("no %s readings for %s, %w", feature, zipcode, forecaster.ErrUnknownLocation)
	}

	td, err := newDataset(readings)
	if err != nil {
		return nil, err
	}
	if s.opt.ResampleMonthly {
		td = td.ResampleMonthly()
	}
	return td, nil
}

// Locale reads the city, county and state of a zipcode
func (s *SQLStore) Locale(ctx context.Context, zipcode string) (forecaster.Locale, error) {
	query := fmt.Sprintf("SELECT city, county, state FROM %s WHERE zipcode = ?", quote(s.opt.LocaleTable))
	var city, county, state sql.NullString
	err := s.db.QueryRowContext(ctx, query, zipcode).Scan(&city, &county, &state)
	if errors.Is(err, sql.ErrNoRows) {
		return forecaster.Locale{}, fmt.Errorf("zipcode %s, %w", zipcode, forecaster.ErrUnknownLocation)
	}
	if err != nil {
		return forecaster.Locale{}, fmt.Errorf("unable to query locale of %s, %w", zipcode, err)
	}
	return forecaster.Locale{
		Zipcode: zipcode,
		City:    city.String,
		County:  county.String,
		State:   state.String,
	}, nil
}

// Zipcodes lists every location with readings
func (s *SQLStore) Zipcodes(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s ORDER BY 1",
		quote(s.opt.LocationColumn), quote(s.opt.SeriesTable))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to list zipcodes, %w", err)
	}
	defer rows.Close()

	zipcodes := []string{}
	for rows.Next() {
		var z string
		if err := rows.Scan(&z); err != nil {
			return nil, err
		}
		zipcodes = append(zipcodes, z)
	}
	return zipcodes, rows.Err()
}

func contains(vals []string, v string) bool {
	for _, val := range vals {
		if val == v {
			return true
		}
	}
	return false
}

func parseTime(raw any) (time.Time, error) {
	var str string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		str = v
	case []byte:
		str = string(v)
	default:
		return time.Time{}, fmt.Errorf("got %T, %w", raw, ErrInvalidTimestamp)
	}
	str = strings.TrimSpace(str)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q, %w", str, ErrInvalidTimestamp)
}

type reading struct {
	t time.Time
	y float64
}

// newDataset sorts the readings by time dropping repeated timestamps
func newDataset(readings []reading) (*timedataset.TimeDataset, error) {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].t.Before(readings[j].t)
	})
	t := make([]time.Time, 0, len(readings))
	y := make([]float64, 0, len(readings))
	for i, r := range readings {
		if i > 0 && r.t.Equal(readings[i-1].t) {
			continue
		}
		t = append(t, r.t)
		y = append(y, r.y)
	}
	return timedataset.NewUnivariateDataset(t, y)
}
