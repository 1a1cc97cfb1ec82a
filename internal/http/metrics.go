package http

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	metricsMu sync.Mutex

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	authFailuresTotal   prometheus.Counter
)

// RegisterMetrics registers the HTTP collectors on reg and returns the
// handler for /metrics. The collectors are process-wide; registering them
// on several registries (one per test router) is fine, re-registering on
// the same registry is a no-op.
func RegisterMetrics(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	metricsMu.Lock()
	if httpRequestsTotal == nil {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests processed",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		authFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_failures_total",
			Help: "Requests rejected during scope resolution",
		})
	}
	for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, authFailuresTotal} {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if !errors.As(err, &are) {
				metricsMu.Unlock()
				panic(err)
			}
		}
	}
	metricsMu.Unlock()

	if g, ok := reg.(prometheus.Gatherer); ok {
		return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// WithMetrics records request count and latency. Every route in this API
// is a fixed path (resources travel in the query string), so labelling by
// path keeps cardinality bounded.
func WithMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if httpRequestsTotal == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		path := r.URL.Path
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		if rec.status == http.StatusUnauthorized {
			authFailuresTotal.Inc()
		}
	})
}
