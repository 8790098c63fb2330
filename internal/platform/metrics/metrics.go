// Package metrics exposes Prometheus instrumentation for the HTTP layer and
// the database pool.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ehr/patient-journal/internal/platform/middleware"
)

var (
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "journal_http_requests_total",
		Help: "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "journal_http_request_duration_seconds",
		Help:    "HTTP request latency by route and method.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"route", "method"})

	RequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "journal_http_requests_in_flight",
		Help: "HTTP requests currently being served.",
	})
)

// Middleware records request counts and latency labelled by route pattern.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			RequestsInFlight.Inc()
			defer RequestsInFlight.Dec()

			start := time.Now()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			RequestsTotal.WithLabelValues(route, method, strconv.Itoa(middleware.ResponseStatus(c, err))).Inc()
			return err
		}
	}
}

// NewPoolCollector exports pgxpool statistics as gauges.
func NewPoolCollector(pool *pgxpool.Pool) prometheus.Collector {
	return &poolCollector{pool: pool}
}

type poolCollector struct {
	pool *pgxpool.Pool
}

var (
	poolTotalDesc    = prometheus.NewDesc("journal_db_pool_total_conns", "Open connections in the pool.", nil, nil)
	poolIdleDesc     = prometheus.NewDesc("journal_db_pool_idle_conns", "Idle connections in the pool.", nil, nil)
	poolAcquiredDesc = prometheus.NewDesc("journal_db_pool_acquired_conns", "Connections currently checked out.", nil, nil)
	poolMaxDesc      = prometheus.NewDesc("journal_db_pool_max_conns", "Configured maximum pool size.", nil, nil)
	poolAcquireDesc  = prometheus.NewDesc("journal_db_pool_acquire_total", "Successful connection acquisitions.", nil, nil)
)

func (pc *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- poolTotalDesc
	ch <- poolIdleDesc
	ch <- poolAcquiredDesc
	ch <- poolMaxDesc
	ch <- poolAcquireDesc
}

func (pc *poolCollector) Collect(ch chan<- prometheus.Metric) {
	s := pc.pool.Stat()
	ch <- prometheus.MustNewConstMetric(poolTotalDesc, prometheus.GaugeValue, float64(s.TotalConns()))
	ch <- prometheus.MustNewConstMetric(poolIdleDesc, prometheus.GaugeValue, float64(s.IdleConns()))
	ch <- prometheus.MustNewConstMetric(poolAcquiredDesc, prometheus.GaugeValue, float64(s.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(poolMaxDesc, prometheus.GaugeValue, float64(s.MaxConns()))
	ch <- prometheus.MustNewConstMetric(poolAcquireDesc, prometheus.CounterValue, float64(s.AcquireCount()))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
