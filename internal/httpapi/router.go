package httpapi

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tkasparek/tkasparek/internal/config"
	"github.com/tkasparek/tkasparek/internal/metrics"
	"github.com/tkasparek/tkasparek/internal/utils"
)

// NewRouter returns a router carrying the shared middleware stack plus
// /healthz and /metrics. Features register their routes on it afterwards.
func NewRouter(cfg config.Config, db *sql.DB) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)
	if cfg.RateLimitRPS > 0 {
		r.Use(rateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	registerHealthcheck(r, db)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	return r
}
