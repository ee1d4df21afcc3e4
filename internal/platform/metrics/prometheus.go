package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Abdurahmanit/GroupProject/estate-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus metrics. A nil manager is
// valid and records nothing.
type MetricsManager struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ListingsCreatedTotal prometheus.Counter
	ListingsDeletedTotal prometheus.Counter
	ReviewsCreatedTotal  prometheus.Counter
	ReviewsDeletedTotal  prometheus.Counter
	MediaCleanupTotal    *prometheus.CounterVec
}

// NewMetricsManager registers the metrics on a private registry.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()
	namespace := strings.ReplaceAll(serviceName, "-", "_")

	m := &MetricsManager{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latency of HTTP requests by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ListingsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_created_total",
			Help:      "Total number of listings created.",
		}),
		ListingsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_deleted_total",
			Help:      "Total number of listings deleted.",
		}),
		ReviewsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_created_total",
			Help:      "Total number of reviews created.",
		}),
		ReviewsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reviews_deleted_total",
			Help:      "Total number of reviews deleted.",
		}),
		MediaCleanupTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "media_cleanup_total",
			Help:      "Remote image deletions by outcome (queued, retried_ok, retried_failed, abandoned).",
		}, []string{"result"}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ListingsCreatedTotal,
		m.ListingsDeletedTotal,
		m.ReviewsCreatedTotal,
		m.ReviewsDeletedTotal,
		m.MediaCleanupTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *MetricsManager) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *MetricsManager) ListingCreated() {
	if m != nil {
		m.ListingsCreatedTotal.Inc()
	}
}

func (m *MetricsManager) ListingDeleted() {
	if m != nil {
		m.ListingsDeletedTotal.Inc()
	}
}

func (m *MetricsManager) ReviewCreated() {
	if m != nil {
		m.ReviewsCreatedTotal.Inc()
	}
}

func (m *MetricsManager) ReviewDeleted() {
	if m != nil {
		m.ReviewsDeletedTotal.Inc()
	}
}

func (m *MetricsManager) MediaCleanup(result string, n int) {
	if m != nil && n > 0 {
		m.MediaCleanupTotal.WithLabelValues(result).Add(float64(n))
	}
}

// StartMetricsServer serves /metrics on port until ctx is cancelled.
func StartMetricsServer(ctx context.Context, port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
