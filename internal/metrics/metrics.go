// Package metrics exposes prometheus metrics for reconciliation runs and
// the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/reconcile"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "devrights"

// Run sources.
const (
	SourceUpload   = "upload"
	SourceDatabase = "database"
	SourceCLI      = "cli"
)

// Collector owns a private registry with all application metrics.
type Collector struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	transactions     *prometheus.CounterVec
	joinStatus       *prometheus.CounterVec
	lastRunRows      *prometheus.GaugeVec
	lastRunTimestamp *prometheus.GaugeVec
	duplicateHistory *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpPanics   *prometheus.CounterVec
}

// NewCollector creates and registers all metrics under namespace.
func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	c := &Collector{registry: prometheus.NewRegistry()}
	c.initRunMetrics(namespace)
	c.initHTTPMetrics(namespace)

	c.registry.MustRegister(
		c.runsTotal,
		c.runDuration,
		c.transactions,
		c.joinStatus,
		c.lastRunRows,
		c.lastRunTimestamp,
		c.duplicateHistory,
		c.httpRequests,
		c.httpDuration,
		c.httpPanics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return c
}

func (c *Collector) initRunMetrics(namespace string) {
	c.runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Total number of reconciliation runs",
		},
		[]string{"source", "status"},
	)

	c.runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Duration of reconciliation runs in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"source"},
	)

	c.transactions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_total",
			Help:      "Transactions seen by reconciliation, by filter outcome",
		},
		[]string{"source", "outcome"},
	)

	c.joinStatus = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enriched_rows_total",
			Help:      "Enriched rows produced, by parcel join status",
		},
		[]string{"source", "status"},
	)

	c.lastRunRows = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_rows",
			Help:      "Enriched rows of the most recent run, by parcel join status",
		},
		[]string{"source", "status"},
	)

	c.lastRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the most recent successful run",
		},
		[]string{"source"},
	)

	c.duplicateHistory = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "duplicate_history_rows",
			Help:      "Parcel history rows shadowed by a newer row for the same APN in the most recent run",
		},
		[]string{"source"},
	)
}

func (c *Collector) initHTTPMetrics(namespace string) {
	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	c.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	c.httpPanics = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_panics_total",
			Help:      "Handler panics recovered by the server",
		},
		[]string{"route"},
	)
}

// RecordRun records a successful run from its summary.
func (c *Collector) RecordRun(source string, summary reconcile.Summary, duration time.Duration) {
	c.runsTotal.WithLabelValues(source, "success").Inc()
	c.runDuration.WithLabelValues(source).Observe(duration.Seconds())

	c.transactions.WithLabelValues(source, "retained").Add(float64(summary.Retained))
	c.transactions.WithLabelValues(source, "excluded_record_type").Add(float64(summary.ExcludedRecordType))
	c.transactions.WithLabelValues(source, "excluded_unapproved").Add(float64(summary.ExcludedUnapproved))

	byStatus := map[models.JoinStatus]int{
		models.JoinStatusJoined:    summary.Joined,
		models.JoinStatusResolved:  summary.Resolved,
		models.JoinStatusAmbiguous: summary.Ambiguous,
		models.JoinStatusMissing:   summary.Missing,
	}
	for status, n := range byStatus {
		c.joinStatus.WithLabelValues(source, string(status)).Add(float64(n))
		c.lastRunRows.WithLabelValues(source, string(status)).Set(float64(n))
	}

	c.duplicateHistory.WithLabelValues(source).Set(float64(summary.DuplicateHistory))
	c.lastRunTimestamp.WithLabelValues(source).SetToCurrentTime()
}

// RecordFailure records a run that did not complete.
func (c *Collector) RecordFailure(source string, duration time.Duration) {
	c.runsTotal.WithLabelValues(source, "error").Inc()
	c.runDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordPanic counts a recovered handler panic.
func (c *Collector) RecordPanic(route string) {
	c.httpPanics.WithLabelValues(route).Inc()
}

// PoolStats reports database connection pool occupancy.
type PoolStats struct {
	Acquired int32
	Idle     int32
	Total    int32
}

// TrackPool exports connection pool gauges read from stats at scrape time.
func (c *Collector) TrackPool(namespace string, stats func() PoolStats) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	gauge := func(name, help string, pick func(PoolStats) int32) prometheus.Collector {
		return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db_pool",
			Name:      name,
			Help:      help,
		}, func() float64 { return float64(pick(stats())) })
	}
	c.registry.MustRegister(
		gauge("acquired_connections", "Connections currently checked out", func(s PoolStats) int32 { return s.Acquired }),
		gauge("idle_connections", "Idle connections in the pool", func(s PoolStats) int32 { return s.Idle }),
		gauge("total_connections", "All connections owned by the pool", func(s PoolStats) int32 { return s.Total }),
	)
}

// Registry returns the prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an HTTP handler serving the registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}
