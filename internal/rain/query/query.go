// Package query renders the filterable rain queries for a SQL dialect.
//
// Every query is built from a typed Options value; only the fields a query
// understands are applied and zero values mean "no constraint".
package query

import (
	"strings"

	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/pagination"
	"github.com/tkasparek/tkasparek/internal/rain/types"
)

type Resolution int

const (
	Daily Resolution = iota
	Hourly
)

func (r Resolution) String() string {
	if r == Hourly {
		return "hourly"
	}
	return "daily"
}

// Order selects the ordering of per-station rain rows.
type Order int

const (
	// ByRainDesc ranks the wettest rows first; row id breaks ties.
	ByRainDesc Order = iota
	// Chronological orders by day, then hour.
	Chronological
)

type Options struct {
	Resolution Resolution
	// Day restricts rows to a single day.
	Day types.Day
	// After keeps rows with day strictly later than After.
	After      types.Day
	StationID  int64
	FilterName string
	// Page with a zero Limit returns every row.
	Page pagination.Pagination
}

type Query struct {
	SQL  string
	Args []any
}

type builder struct {
	dialect db.Dialect
	where   []string
	args    []any
}

func newBuilder(d db.Dialect) *builder {
	return &builder{dialect: d}
}

// arg binds v and returns its placeholder.
func (b *builder) arg(v any) string {
	b.args = append(b.args, v)
	return b.dialect.Placeholder(len(b.args))
}

func (b *builder) and(cond string) {
	b.where = append(b.where, cond)
}

func (b *builder) rain(alias string, opts Options) {
	if opts.Resolution == Hourly {
		b.and(alias + ".hour IS NOT NULL")
	} else {
		b.and(alias + ".hour IS NULL")
	}
	if !opts.Day.IsZero() {
		b.and(alias + ".day = " + b.arg(opts.Day))
	}
	if !opts.After.IsZero() {
		b.and(alias + ".day > " + b.arg(opts.After))
	}
	if opts.StationID != 0 {
		b.and(alias + ".station_id = " + b.arg(opts.StationID))
	}
}

func (b *builder) build(sel, from, orderBy string, page pagination.Pagination) Query {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(sel)
	sb.WriteString(" FROM ")
	sb.WriteString(from)
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	if orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(orderBy)
	}
	if page.Limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(b.arg(page.Limit))
		sb.WriteString(" OFFSET ")
		sb.WriteString(b.arg(page.Offset))
	}
	return Query{SQL: sb.String(), Args: b.args}
}

// RainTotals lists every station's rain for opts.Day, wettest first. Hourly
// totals carry the hour as a fourth column.
func RainTotals(d db.Dialect, opts Options) Query {
	b := newBuilder(d)
	b.rain("r", opts)
	sel := "s.id, s.name, r.rain"
	if opts.Resolution == Hourly {
		sel += ", r.hour"
	}
	return b.build(sel,
		"rain_data r JOIN station s ON s.id = r.station_id",
		"r.rain DESC, s.name ASC, s.id ASC",
		opts.Page)
}

// RainTotalsCount counts the rows RainTotals would return without pagination.
func RainTotalsCount(d db.Dialect, opts Options) Query {
	b := newBuilder(d)
	b.rain("r", opts)
	return b.build("COUNT(*)",
		"rain_data r JOIN station s ON s.id = r.station_id",
		"",
		pagination.Pagination{})
}

// HistogramRain selects the raw rain values bucketed by the histogram.
func HistogramRain(d db.Dialect, opts Options) Query {
	b := newBuilder(d)
	b.rain("r", opts)
	return b.build("r.rain", "rain_data r", "", pagination.Pagination{})
}

// StationRain lists one station's rows as (day, rain) or, hourly,
// (day, hour, rain).
func StationRain(d db.Dialect, opts Options, order Order) Query {
	b := newBuilder(d)
	b.rain("r", opts)
	sel := "r.day, r.rain"
	if opts.Resolution == Hourly {
		sel = "r.day, r.hour, r.rain"
	}
	orderBy := "r.rain DESC, r.id ASC"
	if order == Chronological {
		orderBy = "r.day ASC, r.hour ASC"
		if opts.Resolution == Daily {
			orderBy = "r.day ASC"
		}
	}
	return b.build(sel, "rain_data r", orderBy, opts.Page)
}

func (b *builder) stationFilter(opts Options) {
	if opts.FilterName != "" {
		b.and(b.dialect.ContainsFold("s.name", b.arg("%"+EscapeLike(opts.FilterName)+"%")))
	}
}

// Stations lists stations with their region, by name then height.
func Stations(d db.Dialect, opts Options) Query {
	b := newBuilder(d)
	b.stationFilter(opts)
	return b.build("s.id, s.name, s.height, g.name, s.basin",
		"station s JOIN region g ON g.id = s.region_id",
		"s.name ASC, s.height ASC, s.id ASC",
		opts.Page)
}

func StationsCount(d db.Dialect, opts Options) Query {
	b := newBuilder(d)
	b.stationFilter(opts)
	return b.build("COUNT(*)",
		"station s JOIN region g ON g.id = s.region_id",
		"",
		pagination.Pagination{})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike makes s match literally inside a LIKE pattern using '\' as the
// escape character.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
