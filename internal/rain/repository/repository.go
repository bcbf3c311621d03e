package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/metrics"
	"github.com/tkasparek/tkasparek/internal/rain/query"
	"github.com/tkasparek/tkasparek/internal/rain/types"
)

//go:embed sql/get-station.sql
var getStationSQL string

//go:embed sql/get-daily-maximums.sql
var getDailyMaximumsSQL string

//go:embed sql/get-hourly-maximums.sql
var getHourlyMaximumsSQL string

//go:embed sql/get-total-maximums.sql
var getTotalMaximumsSQL string

//go:embed sql/get-total-minimums.sql
var getTotalMinimumsSQL string

var ErrStationNotFound = errors.New("station not found")

type RainRepository interface {
	DailyTotals(ctx context.Context, opts query.Options) ([]types.DailyTotal, error)
	HourlyTotals(ctx context.Context, opts query.Options) ([]types.HourlyTotal, error)
	CountTotals(ctx context.Context, opts query.Options) (int, error)
	HistogramRain(ctx context.Context, opts query.Options) ([]types.Millimetres, error)

	DailyMaximums(ctx context.Context, limit int) ([]types.DailyRecord, error)
	HourlyMaximums(ctx context.Context, limit int) ([]types.HourlyRecord, error)
	TotalMaximums(ctx context.Context, limit int) ([]types.TotalRain, error)
	TotalMinimums(ctx context.Context, limit int) ([]types.TotalRain, error)

	// StationByID returns ErrStationNotFound for an unknown id.
	StationByID(ctx context.Context, id int64) (types.Station, error)
	StationDays(ctx context.Context, opts query.Options, order query.Order) ([]types.StationDay, error)
	StationHours(ctx context.Context, opts query.Options, order query.Order) ([]types.StationHour, error)

	Stations(ctx context.Context, opts query.Options) ([]types.StationListItem, error)
	CountStations(ctx context.Context, opts query.Options) (int, error)
}

type repositoryImpl struct {
	db      *sql.DB
	dialect db.Dialect

	getStationSQL        string
	getDailyMaximumsSQL  string
	getHourlyMaximumsSQL string
	getTotalMaximumsSQL  string
	getTotalMinimumsSQL  string
}

func NewRepository(conn *sql.DB, dialect db.Dialect) RainRepository {
	return &repositoryImpl{
		db:                   conn,
		dialect:              dialect,
		getStationSQL:        dialect.Rebind(getStationSQL),
		getDailyMaximumsSQL:  dialect.Rebind(getDailyMaximumsSQL),
		getHourlyMaximumsSQL: dialect.Rebind(getHourlyMaximumsSQL),
		getTotalMaximumsSQL:  dialect.Rebind(getTotalMaximumsSQL),
		getTotalMinimumsSQL:  dialect.Rebind(getTotalMinimumsSQL),
	}
}

// observe records the query latency; call it deferred with a pointer to the
// named error result. An unknown station counts as a successful query.
func observe(name string, start time.Time, err *error) {
	e := *err
	if errors.Is(e, ErrStationNotFound) {
		e = nil
	}
	metrics.ObserveDBQuery(name, e, time.Since(start))
}

// collect runs q and scans every row with scan. An empty result is a
// non-nil empty slice.
func collect[T any](ctx context.Context, conn *sql.DB, name, q string, args []any, scan func(*sql.Rows, *T) error) ([]T, error) {
	rows, err := conn.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close rows", "query", name, "error", err)
		}
	}()

	out := []T{}
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", name, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

func (r *repositoryImpl) count(ctx context.Context, name string, q query.Query) (n int, err error) {
	defer observe(name, time.Now(), &err)
	if err = r.db.QueryRowContext(ctx, q.SQL, q.Args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func (r *repositoryImpl) DailyTotals(ctx context.Context, opts query.Options) (out []types.DailyTotal, err error) {
	const name = "daily_totals"
	defer observe(name, time.Now(), &err)
	opts.Resolution = query.Daily
	q := query.RainTotals(r.dialect, opts)
	return collect(ctx, r.db, name, q.SQL, q.Args, func(rows *sql.Rows, v *types.DailyTotal) error {
		return rows.Scan(&v.ID, &v.Name, &v.Rain)
	})
}

func (r *repositoryImpl) HourlyTotals(ctx context.Context, opts query.Options) (out []types.HourlyTotal, err error) {
	const name = "hourly_totals"
	defer observe(name, time.Now(), &err)
	opts.Resolution = query.Hourly
	q := query.RainTotals(r.dialect, opts)
	return collect(ctx, r.db, name, q.SQL, q.Args, func(rows *sql.Rows, v *types.HourlyTotal) error {
		return rows.Scan(&v.ID, &v.Name, &v.Rain, &v.Hour)
	})
}

func (r *repositoryImpl) CountTotals(ctx context.Context, opts query.Options) (int, error) {
	return r.count(ctx, opts.Resolution.String()+"_totals_count", query.RainTotalsCount(r.dialect, opts))
}

func (r *repositoryImpl) HistogramRain(ctx context.Context, opts query.Options) (out []types.Millimetres, err error) {
	const name = "histogram_rain"
	defer observe(name, time.Now(), &err)
	opts.Resolution = query.Daily
	q := query.HistogramRain(r.dialect, opts)
	return collect(ctx, r.db, name, q.SQL, q.Args, func(rows *sql.Rows, v *types.Millimetres) error {
		return rows.Scan(v)
	})
}

func (r *repositoryImpl) DailyMaximums(ctx context.Context, limit int) (out []types.DailyRecord, err error) {
	const name = "daily_maximums"
	defer observe(name, time.Now(), &err)
	return collect(ctx, r.db, name, r.getDailyMaximumsSQL, []any{limit}, func(rows *sql.Rows, v *types.DailyRecord) error {
		return rows.Scan(&v.ID, &v.Name, &v.Rain, &v.Day)
	})
}

func (r *repositoryImpl) HourlyMaximums(ctx context.Context, limit int) (out []types.HourlyRecord, err error) {
	const name = "hourly_maximums"
	defer observe(name, time.Now(), &err)
	return collect(ctx, r.db, name, r.getHourlyMaximumsSQL, []any{limit}, func(rows *sql.Rows, v *types.HourlyRecord) error {
		return rows.Scan(&v.ID, &v.Name, &v.Rain, &v.Day, &v.Hour)
	})
}

func scanTotal(rows *sql.Rows, v *types.TotalRain) error {
	return rows.Scan(&v.ID, &v.Name, &v.Rain)
}

func (r *repositoryImpl) TotalMaximums(ctx context.Context, limit int) (out []types.TotalRain, err error) {
	const name = "total_maximums"
	defer observe(name, time.Now(), &err)
	return collect(ctx, r.db, name, r.getTotalMaximumsSQL, []any{limit}, scanTotal)
}

func (r *repositoryImpl) TotalMinimums(ctx context.Context, limit int) (out []types.TotalRain, err error) {
	const name = "total_minimums"
	defer observe(name, time.Now(), &err)
	return collect(ctx, r.db, name, r.getTotalMinimumsSQL, []any{limit}, scanTotal)
}

func (r *repositoryImpl) StationByID(ctx context.Context, id int64) (s types.Station, err error) {
	const name = "station_by_id"
	defer observe(name, time.Now(), &err)
	err = r.db.QueryRowContext(ctx, r.getStationSQL, id).Scan(
		&s.ID, &s.Height, &s.Name, &s.ChmiBranch, &s.Basin, &s.PartialBasin, &s.LocalMunicipality, &s.RegionName,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Station{}, ErrStationNotFound
	}
	if err != nil {
		return types.Station{}, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

func (r *repositoryImpl) StationDays(ctx context.Context, opts query.Options, order query.Order) (out []types.StationDay, err error) {
	const name = "station_days"
	defer observe(name, time.Now(), &err)
	opts.Resolution = query.Daily
	q := query.StationRain(r.dialect, opts, order)
	return collect(ctx, r.db, name, q.SQL, q.Args, func(rows *sql.Rows, v *types.StationDay) error {
		return rows.Scan(&v.Day, &v.Rain)
	})
}

func (r *repositoryImpl) StationHours(ctx context.Context, opts query.Options, order query.Order) (out []types.StationHour, err error) {
	const name = "station_hours"
	defer observe(name, time.Now(), &err)
	opts.Resolution = query.Hourly
	q := query.StationRain(r.dialect, opts, order)
	return collect(ctx, r.db, name, q.SQL, q.Args, func(rows *sql.Rows, v *types.StationHour) error {
		return rows.Scan(&v.Day, &v.Hour, &v.Rain)
	})
}

func (r *repositoryImpl) Stations(ctx context.Context, opts query.Options) (out []types.StationListItem, err error) {
	const name = "stations"
	defer observe(name, time.Now(), &err)
	q := query.Stations(r.dialect, opts)
	return collect(ctx, r.db, name, q.SQL, q.Args, func(rows *sql.Rows, v *types.StationListItem) error {
		return rows.Scan(&v.ID, &v.Name, &v.Height, &v.RegionName, &v.Basin)
	})
}

func (r *repositoryImpl) CountStations(ctx context.Context, opts query.Options) (int, error) {
	return r.count(ctx, "stations_count", query.StationsCount(r.dialect, opts))
}
