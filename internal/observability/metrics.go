package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "repair_sla"

// Metrics records HTTP and alert scheduler measurements in Prometheus.
type Metrics struct {
	registry *prometheus.Registry

	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec

	runCount         *prometheus.CounterVec
	runDuration      prometheus.Histogram
	shopsChecked     prometheus.Counter
	shopFailures     *prometheus.CounterVec
	caseFailures     *prometheus.CounterVec
	alertsCreated    *prometheus.CounterVec
	alertsDuplicated prometheus.Counter
}

// NewMetrics registers collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"path", "method", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "errors_total",
			Help: "HTTP errors by route, method and error code.",
		}, []string{"path", "method", "code"}),
		runCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "runs_total",
			Help: "Alert scheduler runs by outcome.",
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "run_duration_seconds",
			Help:    "Alert scheduler run duration.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
		}),
		shopsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "shops_checked_total",
			Help: "Shops swept by the alert scheduler.",
		}),
		shopFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "shop_failures_total",
			Help: "Shops skipped because a store call failed.",
		}, []string{"stage"}),
		caseFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "case_failures_total",
			Help: "Cases skipped because a store call failed.",
		}, []string{"stage"}),
		alertsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "alerts_created_total",
			Help: "SLA alerts created by severity.",
		}, []string{"severity"}),
		alertsDuplicated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler", Name: "alerts_deduplicated_total",
			Help: "SLA alerts skipped because one already exists today.",
		}),
	}
	m.registry.MustRegister(
		m.requestCount, m.requestDuration, m.errorCount,
		m.runCount, m.runDuration, m.shopsChecked, m.shopFailures,
		m.caseFailures, m.alertsCreated, m.alertsDuplicated,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(path, method, code).Inc()
}

// RecordRun records the outcome of one scheduler run.
func (m *Metrics) RecordRun(outcome string, shopsChecked int, duration time.Duration) {
	if m == nil {
		return
	}
	m.runCount.WithLabelValues(outcome).Inc()
	m.runDuration.Observe(duration.Seconds())
	m.shopsChecked.Add(float64(shopsChecked))
}

// RecordShopFailure counts a shop skipped at the given stage.
func (m *Metrics) RecordShopFailure(stage string) {
	if m == nil {
		return
	}
	m.shopFailures.WithLabelValues(stage).Inc()
}

// RecordCaseFailure counts a case skipped at the given stage.
func (m *Metrics) RecordCaseFailure(stage string) {
	if m == nil {
		return
	}
	m.caseFailures.WithLabelValues(stage).Inc()
}

// RecordAlertCreated counts an inserted alert.
func (m *Metrics) RecordAlertCreated(severity string) {
	if m == nil {
		return
	}
	m.alertsCreated.WithLabelValues(severity).Inc()
}

// RecordAlertDeduplicated counts an alert skipped by the daily dedup check.
func (m *Metrics) RecordAlertDeduplicated() {
	if m == nil {
		return
	}
	m.alertsDuplicated.Inc()
}
