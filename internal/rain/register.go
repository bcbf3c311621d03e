package rain

import (
	"database/sql"

	"github.com/go-chi/chi/v5"

	"github.com/tkasparek/tkasparek/internal/config"
	"github.com/tkasparek/tkasparek/internal/db"
	"github.com/tkasparek/tkasparek/internal/rain/controller"
	"github.com/tkasparek/tkasparek/internal/rain/repository"
	"github.com/tkasparek/tkasparek/internal/rain/service"
)

func RegisterFeature(r chi.Router, conn *sql.DB, dialect db.Dialect, cfg config.Config, opts ...service.Option) {
	rainRepository := repository.NewRepository(conn, dialect)
	opts = append([]service.Option{service.WithQueryTimeout(cfg.QueryTimeout)}, opts...)
	rainService := service.NewService(rainRepository, opts...)
	rainController := controller.NewRainController(rainService, cfg.MaxPageSize)
	rainController.RegisterRoutes(r)
}
