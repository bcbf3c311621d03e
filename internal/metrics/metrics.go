package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	metricPrefix = "rain_"

	ResultSuccess = "success"
	ResultError   = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	dbLatency    *prometheus.HistogramVec
)

// Init registers the request and query metrics and, when db is non-nil, the
// connection pool statistics. Calls after the first are no-ops.
func Init(db *sql.DB) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)
		dbLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "db_query_duration_seconds",
				Help:    "Database query latency in seconds by query and result",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"query", "result"},
		)

		prometheus.MustRegister(httpRequests, httpLatency, dbLatency)

		if db != nil {
			prometheus.MustRegister(collectors.NewDBStatsCollector(db, "rain"))
		}
	})
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records one served request. route is the matched route
// pattern, not the raw path, to keep label cardinality bounded.
func ObserveHTTPRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// ObserveDBQuery records the latency of one named query.
func ObserveDBQuery(query string, err error, duration time.Duration) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	if dbLatency != nil {
		dbLatency.WithLabelValues(query, result).Observe(duration.Seconds())
	}
}
