package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/blogshell/pkg/router"
)

// MetricsConfig configures the Prometheus metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "blogshell").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "blogshell",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors of the shell.
type Metrics struct {
	activationsTotal   *prometheus.CounterVec
	activationDuration *prometheus.HistogramVec
	routeFailures      *prometheus.CounterVec
	moduleLoads        *prometheus.CounterVec
	moduleLoadDuration *prometheus.HistogramVec
	navSessions        prometheus.Gauge
	staleFrames        prometheus.Counter
}

// NewMetrics registers the collectors with the configured registry.
// It panics if they are already registered there.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		activationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "activations_total",
			Help:        "Total number of route activations",
			ConstLabels: config.ConstLabels,
		}, []string{"pattern", "status"}),

		activationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "activation_duration_seconds",
			Help:        "Time from match to joined activation result in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"pattern"}),

		routeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_failures_total",
			Help:        "Failures caught by error boundaries",
			ConstLabels: config.ConstLabels,
		}, []string{"route", "kind"}),

		moduleLoads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "module_loads_total",
			Help:        "View module fetches",
			ConstLabels: config.ConstLabels,
		}, []string{"module", "result"}),

		moduleLoadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "module_load_duration_seconds",
			Help:        "View module fetch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"module"}),

		navSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nav_sessions",
			Help:        "Open live navigation sessions",
			ConstLabels: config.ConstLabels,
		}),

		staleFrames: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stale_frames_total",
			Help:        "Activation results discarded because a newer navigation started",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Middleware returns activation middleware recording counts, durations and
// boundary-caught failures.
func (m *Metrics) Middleware() router.Middleware {
	return router.MiddlewareFunc(func(a *router.Activation, next func() error) error {
		pattern := a.Pattern()
		if pattern == "" {
			pattern = "unmatched"
		}

		err := next()

		m.activationDuration.WithLabelValues(pattern).Observe(time.Since(a.Started()).Seconds())
		m.activationsTotal.WithLabelValues(pattern, strconv.Itoa(router.StatusOf(err))).Inc()

		var rerr *router.RouteError
		if errors.As(err, &rerr) {
			m.routeFailures.WithLabelValues(rerr.RouteID, rerr.Kind.String()).Inc()
		}
		return err
	})
}

// ObserveModuleLoad records a view module fetch. It implements lazy.Observer.
func (m *Metrics) ObserveModuleLoad(module string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.moduleLoads.WithLabelValues(module, result).Inc()
	m.moduleLoadDuration.WithLabelValues(module).Observe(d.Seconds())
}

// SessionOpened records a new live navigation session.
func (m *Metrics) SessionOpened() { m.navSessions.Inc() }

// SessionClosed records the end of a live navigation session.
func (m *Metrics) SessionClosed() { m.navSessions.Dec() }

// FrameDropped records a result discarded because it was superseded.
func (m *Metrics) FrameDropped() { m.staleFrames.Inc() }
