package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yungbote/gdelt-dashboard/internal/platform/logger"
)

const namespace = "gdelt_dashboard"

// Metrics holds the process collectors on a private registry. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	warehouseQueries *prometheus.CounterVec
	warehouseLatency prometheus.Histogram
	warehouseRows    prometheus.Histogram
	cacheLookups     *prometheus.CounterVec
	snapshots        *prometheus.CounterVec
}

var (
	metricsOnce sync.Once
	current     *Metrics
)

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_inflight_requests",
			Help:      "HTTP requests currently being served",
		}),
		warehouseQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "warehouse_queries_total",
			Help:      "Outbound warehouse queries by outcome",
		}, []string{"status"}),
		warehouseLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "warehouse_query_duration_seconds",
			Help:      "Warehouse query latency",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		}),
		warehouseRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "warehouse_query_rows",
			Help:      "Rows returned per warehouse query",
			Buckets:   []float64{0, 1, 10, 100, 250, 500, 1000, 5000},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by result",
		}, []string{"result"}),
		snapshots: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshots_total",
			Help:      "Snapshot uploads by outcome",
		}, []string{"status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.warehouseQueries,
		m.warehouseLatency,
		m.warehouseRows,
		m.cacheLookups,
		m.snapshots,
	)
	return m
}

// Init builds the process-wide metrics once. It returns nil when disabled.
func Init(log *logger.Logger, enabled bool) *Metrics {
	if !enabled {
		return nil
	}
	metricsOnce.Do(func() {
		current = NewMetrics()
		if log != nil {
			log.Info("prometheus metrics enabled")
		}
	})
	return current
}

func Current() *Metrics { return current }

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveWarehouse(status string, rows int, dur time.Duration) {
	if m == nil {
		return
	}
	m.warehouseQueries.WithLabelValues(status).Inc()
	if dur > 0 {
		m.warehouseLatency.Observe(dur.Seconds())
	}
	m.warehouseRows.Observe(float64(rows))
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSnapshot(status string) {
	if m == nil {
		return
	}
	m.snapshots.WithLabelValues(status).Inc()
}
