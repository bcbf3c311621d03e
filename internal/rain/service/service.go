// Package service composes repository queries into the rain API responses.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tkasparek/tkasparek/internal/apperr"
	"github.com/tkasparek/tkasparek/internal/pagination"
	"github.com/tkasparek/tkasparek/internal/rain/query"
	"github.com/tkasparek/tkasparek/internal/rain/repository"
	"github.com/tkasparek/tkasparek/internal/rain/types"
)

const (
	OutlierLimit = 10
	TopLimit     = 10

	// last_week keeps hourly rows with day > today-8, last_month daily rows
	// with day > today-31.
	lastWeekDays  = 8
	lastMonthDays = 31
)

type Service struct {
	repository   repository.RainRepository
	clock        Clock
	queryTimeout time.Duration
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithQueryTimeout bounds every single repository call; 0 means no bound
// beyond the request context.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *Service) { s.queryTimeout = d }
}

func NewService(repository repository.RainRepository, opts ...Option) *Service {
	s := &Service{repository: repository, clock: SystemClock()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Today() types.Day {
	return types.DayOf(s.clock.Now())
}

// Yesterday is the default day of the histogram and totals endpoints.
func (s *Service) Yesterday() types.Day {
	return s.Today().AddDays(-1)
}

// runQuery calls fn under the per-query timeout and classifies its error.
func runQuery[T any](ctx context.Context, s *Service, fn func(context.Context) (T, error)) (T, error) {
	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}
	v, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, classify(err)
	}
	return v, nil
}

func (s *Service) Daily(ctx context.Context, day types.Day, page pagination.Pagination) (types.Page[types.DailyTotal], error) {
	opts := query.Options{Resolution: query.Daily, Day: day, Page: page}
	return totals(ctx, s, opts, s.repository.DailyTotals)
}

func (s *Service) Hourly(ctx context.Context, day types.Day, page pagination.Pagination) (types.Page[types.HourlyTotal], error) {
	opts := query.Options{Resolution: query.Hourly, Day: day, Page: page}
	return totals(ctx, s, opts, s.repository.HourlyTotals)
}

// totals loads one page of rows and the unpaginated row count concurrently.
func totals[T any](ctx context.Context, s *Service, opts query.Options, rows func(context.Context, query.Options) ([]T, error)) (types.Page[T], error) {
	var (
		data  []T
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data, err = runQuery(gctx, s, func(ctx context.Context) ([]T, error) { return rows(ctx, opts) })
		return err
	})
	g.Go(func() (err error) {
		count, err = runQuery(gctx, s, func(ctx context.Context) (int, error) { return s.repository.CountTotals(ctx, opts) })
		return err
	})
	if err := g.Wait(); err != nil {
		return types.Page[T]{}, err
	}
	return types.NewPage(data, opts.Page.Meta(count)), nil
}

func (s *Service) Histogram(ctx context.Context, day types.Day) (types.Histogram, error) {
	opts := query.Options{Resolution: query.Daily, Day: day}
	rows, err := runQuery(ctx, s, func(ctx context.Context) ([]types.Millimetres, error) {
		return s.repository.HistogramRain(ctx, opts)
	})
	if err != nil {
		return types.Histogram{}, err
	}

	var (
		h       types.Histogram
		dropped int
	)
	for _, rain := range rows {
		if !h.Add(rain) {
			dropped++
		}
	}
	if dropped > 0 {
		slog.Debug("histogram: negative rain values dropped", "day", day.String(), "count", dropped)
	}
	return h, nil
}

func (s *Service) Outliers(ctx context.Context) (types.Outliers, error) {
	var out types.Outliers
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.DailyMaximums, err = runQuery(gctx, s, func(ctx context.Context) ([]types.DailyRecord, error) {
			return s.repository.DailyMaximums(ctx, OutlierLimit)
		})
		return err
	})
	g.Go(func() (err error) {
		out.HourlyMaximums, err = runQuery(gctx, s, func(ctx context.Context) ([]types.HourlyRecord, error) {
			return s.repository.HourlyMaximums(ctx, OutlierLimit)
		})
		return err
	})
	g.Go(func() (err error) {
		out.TotalMaximums, err = runQuery(gctx, s, func(ctx context.Context) ([]types.TotalRain, error) {
			return s.repository.TotalMaximums(ctx, OutlierLimit)
		})
		return err
	})
	g.Go(func() (err error) {
		out.TotalMinimums, err = runQuery(gctx, s, func(ctx context.Context) ([]types.TotalRain, error) {
			return s.repository.TotalMinimums(ctx, OutlierLimit)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return types.Outliers{}, err
	}
	return out, nil
}

func (s *Service) Station(ctx context.Context, id int64) (types.StationDetail, error) {
	station, err := runQuery(ctx, s, func(ctx context.Context) (types.Station, error) {
		st, err := s.repository.StationByID(ctx, id)
		if errors.Is(err, repository.ErrStationNotFound) {
			return st, apperr.NotFound("Station not found")
		}
		return st, err
	})
	if err != nil {
		return types.StationDetail{}, err
	}

	today := s.Today()
	top := pagination.Pagination{Limit: TopLimit}
	detail := types.StationDetail{Station: station}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		detail.TopDays, err = runQuery(gctx, s, func(ctx context.Context) ([]types.StationDay, error) {
			return s.repository.StationDays(ctx, query.Options{StationID: id, Page: top}, query.ByRainDesc)
		})
		return err
	})
	g.Go(func() (err error) {
		detail.TopHours, err = runQuery(gctx, s, func(ctx context.Context) ([]types.StationHour, error) {
			return s.repository.StationHours(ctx, query.Options{StationID: id, Page: top}, query.ByRainDesc)
		})
		return err
	})
	g.Go(func() (err error) {
		detail.LastWeek, err = runQuery(gctx, s, func(ctx context.Context) ([]types.StationHour, error) {
			opts := query.Options{StationID: id, After: today.AddDays(-lastWeekDays)}
			return s.repository.StationHours(ctx, opts, query.Chronological)
		})
		return err
	})
	g.Go(func() (err error) {
		detail.LastMonth, err = runQuery(gctx, s, func(ctx context.Context) ([]types.StationDay, error) {
			opts := query.Options{StationID: id, After: today.AddDays(-lastMonthDays)}
			return s.repository.StationDays(ctx, opts, query.Chronological)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return types.StationDetail{}, err
	}
	return detail, nil
}

func (s *Service) Stations(ctx context.Context, filterName string, page pagination.Pagination) (types.Page[types.StationListItem], error) {
	opts := query.Options{FilterName: filterName, Page: page}
	var (
		data  []types.StationListItem
		count int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data, err = runQuery(gctx, s, func(ctx context.Context) ([]types.StationListItem, error) {
			return s.repository.Stations(ctx, opts)
		})
		return err
	})
	g.Go(func() (err error) {
		count, err = runQuery(gctx, s, func(ctx context.Context) (int, error) {
			return s.repository.CountStations(ctx, opts)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return types.Page[types.StationListItem]{}, err
	}
	return types.NewPage(data, page.Meta(count)), nil
}
