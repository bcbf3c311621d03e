package controller

import (
	"context"

	"github.com/go-chi/chi/v5"

	"github.com/tkasparek/tkasparek/internal/pagination"
	"github.com/tkasparek/tkasparek/internal/rain/types"
)

// RainService is the part of service.Service the handlers depend on.
type RainService interface {
	Yesterday() types.Day
	Daily(ctx context.Context, day types.Day, page pagination.Pagination) (types.Page[types.DailyTotal], error)
	Hourly(ctx context.Context, day types.Day, page pagination.Pagination) (types.Page[types.HourlyTotal], error)
	Histogram(ctx context.Context, day types.Day) (types.Histogram, error)
	Outliers(ctx context.Context) (types.Outliers, error)
	Station(ctx context.Context, id int64) (types.StationDetail, error)
	Stations(ctx context.Context, filterName string, page pagination.Pagination) (types.Page[types.StationListItem], error)
}

type RainController interface {
	RegisterRoutes(r chi.Router)
}

type rainControllerImpl struct {
	service     RainService
	maxPageSize int
}

// NewRainController builds the handlers. maxPageSize caps page_size; 0
// disables the cap.
func NewRainController(service RainService, maxPageSize int) RainController {
	return &rainControllerImpl{service: service, maxPageSize: maxPageSize}
}

func (c *rainControllerImpl) RegisterRoutes(r chi.Router) {
	r.Get("/histogram", c.handleHistogram)
	r.Get("/histogram/{day}", c.handleHistogram)

	r.Route("/rain", func(r chi.Router) {
		r.Get("/daily", c.handleDaily)
		r.Get("/daily/{day}", c.handleDaily)
		r.Get("/hourly", c.handleHourly)
		r.Get("/hourly/{day}", c.handleHourly)
	})

	r.Get("/outliers", c.handleOutliers)

	r.Get("/stations", c.handleStations)
	r.Get("/stations/{id}", c.handleStation)
}
