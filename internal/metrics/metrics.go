package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	namespace = "upscoverflow"
)

// Metrics holds all application metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Listing metrics
	ListingItemsTotal *prometheus.CounterVec

	// External profile lookups
	ProfileLookupsTotal *prometheus.CounterVec

	// Mutations
	LikeTogglesTotal    *prometheus.CounterVec
	CascadeDeletesTotal *prometheus.CounterVec
	CleanupRowsRemoved  *prometheus.CounterVec
	CleanupRunsTotal    *prometheus.CounterVec

	logger *zap.Logger
}

// New creates and registers all metrics with the default registry
func New(logger *zap.Logger) *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer, logger)
}

// NewWithRegistry creates and registers all metrics with a custom registry
func NewWithRegistry(registerer prometheus.Registerer, logger *zap.Logger) *Metrics {
	factory := promauto.With(registerer)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "endpoint"},
		),
		ListingItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "listing_items_total",
				Help:      "Total number of items returned by listing endpoints",
			},
			[]string{"listing"},
		),
		ProfileLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "profile_lookups_total",
				Help:      "Total number of external profile lookups by result",
			},
			[]string{"result"},
		),
		LikeTogglesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "like_toggles_total",
				Help:      "Total number of like toggles by target and direction",
			},
			[]string{"target", "direction"},
		),
		CascadeDeletesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cascade_deletes_total",
				Help:      "Total number of cascading deletes by entity",
			},
			[]string{"entity"},
		),
		CleanupRowsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_rows_removed_total",
				Help:      "Total number of orphaned rows removed by the hygiene job",
			},
			[]string{"table"},
		),
		CleanupRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cleanup_runs_total",
				Help:      "Total number of hygiene job runs by result",
			},
			[]string{"result"},
		),
		logger: logger,
	}
}

// safeExecute wraps metric operations with panic recovery
func (m *Metrics) safeExecute(operation string, fn func()) {
	if m == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Panic in metrics operation",
				zap.String("operation", operation),
				zap.Any("panic", r),
			)
		}
	}()
	fn()
}
