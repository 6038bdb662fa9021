// Package metrics exposes Prometheus instrumentation for the HTTP API and
// feed interactions.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	// HTTPRequests counts handled requests by route, method and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kratos_http_requests_total",
		Help: "Total HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	// HTTPLatency records request latency by route and method.
	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kratos_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// Interactions counts feed interactions by action and outcome.
	Interactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kratos_feed_interactions_total",
		Help: "Feed interactions by action (like, unlike, save, unsave, share, delete)",
	}, []string{"action"})

	// LikersCacheLookups counts likers cache lookups by result (hit, miss, error).
	LikersCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kratos_likers_cache_lookups_total",
		Help: "Likers cache lookups by result",
	}, []string{"result"})
)

// Interaction actions
const (
	ActionLike   = "like"
	ActionUnlike = "unlike"
	ActionSave   = "save"
	ActionUnsave = "unsave"
	ActionShare  = "share"
	ActionDelete = "delete"
)

// RecordInteraction increments the interaction counter for action.
func RecordInteraction(action string) {
	Interactions.WithLabelValues(action).Inc()
}

// RecordCacheLookup increments the likers cache counter for result.
func RecordCacheLookup(result string) {
	LikersCacheLookups.WithLabelValues(result).Inc()
}

// Middleware records request count and latency per registered route.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				var he *echo.HTTPError
				if errors.As(err, &he) {
					status = he.Code
				} else {
					status = http.StatusInternalServerError
				}
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
			HTTPLatency.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// Serve exposes /metrics on its own port until ctx is cancelled.
func Serve(ctx context.Context, port string, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.WithField("port", port).Info("Metrics server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("Metrics server stopped")
	}
}
