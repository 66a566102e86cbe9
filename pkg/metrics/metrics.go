package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker"
)

// Metrics holds every collector a frontdesk service exports.
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	KafkaMessagesPublished *prometheus.CounterVec
	KafkaMessagesConsumed  *prometheus.CounterVec
	KafkaHandleDuration    *prometheus.HistogramVec

	AvailabilityDuration *prometheus.HistogramVec
	AvailabilityCache    *prometheus.CounterVec
	MoveOutcomes         *prometheus.CounterVec
	OTAImports           *prometheus.CounterVec
	HousekeepingRuns     *prometheus.CounterVec

	CircuitBreakerState *prometheus.GaugeVec
}

type Config struct {
	ServiceName string
	Namespace   string
}

func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "frontdesk",
	}
}

func New(cfg *Config) *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: cfg.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": cfg.ServiceName},
		},
	)

	m.KafkaMessagesPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "kafka_messages_published_total",
			Help:      "Total number of Kafka messages published",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaMessagesConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "kafka_messages_consumed_total",
			Help:      "Total number of Kafka messages consumed",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaHandleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "kafka_handle_duration_seconds",
			Help:      "Kafka message handling duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"service", "topic"},
	)

	m.AvailabilityDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Name:      "availability_calculation_seconds",
			Help:      "Time spent aggregating room availability",
			Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
		},
		[]string{"service"},
	)

	m.AvailabilityCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "availability_cache_total",
			Help:      "Availability cache lookups by result",
		},
		[]string{"service", "result"},
	)

	m.MoveOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "room_moves_total",
			Help:      "Room move and swap attempts by action and final state",
		},
		[]string{"service", "action", "state", "reason"},
	)

	m.OTAImports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "ota_imports_total",
			Help:      "OTA reservation imports by channel and result",
		},
		[]string{"service", "channel", "result"},
	)

	m.HousekeepingRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Name:      "housekeeping_runs_total",
			Help:      "Scheduled housekeeping job runs by job and status",
		},
		[]string{"service", "job", "status"},
	)

	m.CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"service", "name"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaMessagesPublished,
		m.KafkaMessagesConsumed,
		m.KafkaHandleDuration,
		m.AvailabilityDuration,
		m.AvailabilityCache,
		m.MoveOutcomes,
		m.OTAImports,
		m.HousekeepingRuns,
		m.CircuitBreakerState,
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

func (m *Metrics) RecordKafkaPublish(topic, eventType string, err error) {
	m.KafkaMessagesPublished.WithLabelValues(m.serviceName, topic, eventType, status(err)).Inc()
}

func (m *Metrics) RecordKafkaConsume(topic, eventType string, duration time.Duration, err error) {
	m.KafkaMessagesConsumed.WithLabelValues(m.serviceName, topic, eventType, status(err)).Inc()
	m.KafkaHandleDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

func (m *Metrics) ObserveAvailability(duration time.Duration) {
	m.AvailabilityDuration.WithLabelValues(m.serviceName).Observe(duration.Seconds())
}

func (m *Metrics) RecordCacheHit() {
	m.AvailabilityCache.WithLabelValues(m.serviceName, "hit").Inc()
}

func (m *Metrics) RecordCacheMiss() {
	m.AvailabilityCache.WithLabelValues(m.serviceName, "miss").Inc()
}

func (m *Metrics) RecordCacheError() {
	m.AvailabilityCache.WithLabelValues(m.serviceName, "error").Inc()
}

func (m *Metrics) RecordMove(action, state, reason string) {
	m.MoveOutcomes.WithLabelValues(m.serviceName, action, state, reason).Inc()
}

func (m *Metrics) RecordOTAImport(channel, result string) {
	m.OTAImports.WithLabelValues(m.serviceName, channel, result).Inc()
}

func (m *Metrics) RecordHousekeeping(job string, err error) {
	m.HousekeepingRuns.WithLabelValues(m.serviceName, job, status(err)).Inc()
}

// BreakerStateListener exports breaker transitions; pass it to resilience.NewCircuitBreaker.
func (m *Metrics) BreakerStateListener(name string, _, to gobreaker.State) {
	m.CircuitBreakerState.WithLabelValues(m.serviceName, name).Set(float64(to))
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// Middleware records request count, latency and in-flight gauge.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		m.RecordHTTPRequest(r.Method, RoutePattern(r.URL.Path), sw.status, time.Since(start))
	})
}

// RoutePattern replaces the segment after every "id" segment with ":id" so
// per-resource paths share one label.
func RoutePattern(path string) string {
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if parts[i-1] == "id" && parts[i] != "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
