package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/ikbal-mondal/krishi-setu-BackEnd/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds the service's Prometheus collectors.
type MetricsManager struct {
	Registry               *prometheus.Registry
	CropsCreatedTotal      prometheus.Counter
	CropsDeletedTotal      prometheus.Counter
	InterestsCreatedTotal  prometheus.Counter
	InterestDecisionsTotal *prometheus.CounterVec   // label: status
	APIErrorsTotal         *prometheus.CounterVec   // labels: route, error_type
	APILatency             *prometheus.HistogramVec // labels: route, method, code
}

// NewMetricsManager creates and registers the collectors on a private registry.
func NewMetricsManager(namespace string) *MetricsManager {
	registry := prometheus.NewRegistry()

	cropsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crops_created_total",
		Help:      "Total number of crop listings created.",
	})
	cropsDeleted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "crops_deleted_total",
		Help:      "Total number of crop listings deleted.",
	})
	interestsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interests_created_total",
		Help:      "Total number of buyer interests created.",
	})
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "interest_decisions_total",
		Help:      "Total number of interest adjudications by resulting status.",
	}, []string{"status"})
	apiErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_errors_total",
		Help:      "Total number of API errors by route and error type.",
	}, []string{"route", "error_type"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_latency_seconds",
		Help:      "Latency of HTTP requests by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})

	registry.MustRegister(
		cropsCreated,
		cropsDeleted,
		interestsCreated,
		decisions,
		apiErrors,
		latency,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:               registry,
		CropsCreatedTotal:      cropsCreated,
		CropsDeletedTotal:      cropsDeleted,
		InterestsCreatedTotal:  interestsCreated,
		InterestDecisionsTotal: decisions,
		APIErrorsTotal:         apiErrors,
		APILatency:             latency,
	}
}

// NewMetricsServer builds the /metrics server for the given registry.
func NewMetricsServer(port string, registry *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// StartMetricsServer serves /metrics in the background and returns the server so the caller
// can shut it down. It returns nil when no port is configured.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) *http.Server {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	server := NewMetricsServer(port, registry)
	go func() {
		appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Prometheus metrics server failed", zap.Error(err))
		}
	}()
	return server
}
