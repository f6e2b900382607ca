package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ctxKey string

const routeLabelKey ctxKey = "metrics_route"

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appkit_http_requests_total",
		Help: "Total number of HTTP requests processed.",
	}, []string{"method", "route"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "appkit_http_request_duration_seconds",
		Help:    "Histogram of latencies for HTTP requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	docstoreLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "appkit_docstore_latency_seconds",
		Help:    "Histogram of document store operation latencies.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "route"})

	// PermissionResults counts answered permission prompts by outcome.
	PermissionResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "appkit_permission_results_total",
		Help: "Permission prompt results by outcome.",
	}, []string{"result"})
)

// Middleware records request metrics and stores the route label for downstream instrumentation.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), routeLabelKey, r.URL.Path)))

			// chi fills the pattern in while routing, so read it afterwards.
			route := routePattern(r)
			status := strconv.Itoa(ww.Status())
			httpRequestsTotal.WithLabelValues(r.Method, route).Inc()
			httpRequestDuration.WithLabelValues(r.Method, route, status).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDocstoreLatency records the latency of a document store operation.
func ObserveDocstoreLatency(ctx context.Context, operation string, start time.Time) {
	docstoreLatency.WithLabelValues(operation, routeFromContext(ctx)).Observe(time.Since(start).Seconds())
}

// ObservePermissionResult counts one answered permission prompt.
func ObservePermissionResult(granted bool) {
	result := "denied"
	if granted {
		result = "granted"
	}
	PermissionResults.WithLabelValues(result).Inc()
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "none"
	}
	if route, ok := ctx.Value(routeLabelKey).(string); ok && route != "" {
		return route
	}
	return "none"
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := strings.TrimSpace(rctx.RoutePattern()); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
