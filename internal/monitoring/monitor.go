package monitoring

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"thallipoli/internal/kitchen"
)

// Monitor collects restaurant metrics. It exports prometheus collectors on
// its own registry and keeps a snapshot of the latest gauge values for the
// stats endpoint.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time

	registry        *prometheus.Registry
	sales           *prometheus.CounterVec
	revenue         prometheus.Counter
	restocks        *prometheus.CounterVec
	restockCost     prometheus.Counter
	waste           *prometheus.CounterVec
	ratings         *prometheus.HistogramVec
	failures        *prometheus.CounterVec
	logFailures     prometheus.Counter
	funds           prometheus.Gauge
	lowStock        prometheus.Gauge
	requestDuration *prometheus.HistogramVec
	chatRequests    *prometheus.CounterVec
}

// NewMonitor creates a new monitoring instance with its collectors registered
func NewMonitor() *Monitor {
	m := &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
		registry:  prometheus.NewRegistry(),

		sales: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thallipoli_sales_total",
				Help: "Units sold per menu item",
			},
			[]string{"menu_item"},
		),
		revenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thallipoli_revenue_dollars_total",
			Help: "Revenue credited by sales",
		}),
		restocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thallipoli_restocks_total",
				Help: "Restocks per inventory item",
			},
			[]string{"item"},
		),
		restockCost: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thallipoli_restock_cost_dollars_total",
			Help: "Operating funds spent on restocks",
		}),
		waste: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thallipoli_waste_events_total",
				Help: "Waste events by menu item and outcome",
			},
			[]string{"menu_item", "outcome"},
		),
		ratings: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thallipoli_rating_stars",
				Help:    "Submitted ratings",
				Buckets: prometheus.LinearBuckets(1, 1, 5),
			},
			[]string{"menu_item"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thallipoli_operation_failures_total",
				Help: "Rejected or failed kitchen operations",
			},
			[]string{"operation", "kind"},
		),
		logFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "thallipoli_log_append_failures_total",
			Help: "Activity log entries that could not be written",
		}),
		funds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thallipoli_operating_funds_dollars",
			Help: "Current operating funds",
		}),
		lowStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "thallipoli_low_stock_items",
			Help: "Inventory items at or below threshold",
		}),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "thallipoli_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		chatRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "thallipoli_assistant_requests_total",
				Help: "Assistant chat requests by outcome",
			},
			[]string{"outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sales, m.revenue, m.restocks, m.restockCost, m.waste, m.ratings,
		m.failures, m.logFailures, m.funds, m.lowStock, m.requestDuration, m.chatRequests,
	)
	return m
}

// Registry returns the registry holding the monitor's collectors
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the prometheus exposition format
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	// Add system metrics
	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears the snapshot; prometheus collectors keep counting
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

func (m *Monitor) RecordSale(menuItem string, quantity int, total float64) {
	m.sales.WithLabelValues(menuItem).Add(float64(quantity))
	m.revenue.Add(total)
	m.increment("sales_count", 1)
}

func (m *Monitor) RecordRestock(itemID string, cost float64) {
	m.restocks.WithLabelValues(itemID).Inc()
	m.restockCost.Add(cost)
	m.increment("restock_count", 1)
}

func (m *Monitor) RecordWaste(menuItem string, outcome kitchen.WasteOutcome) {
	m.waste.WithLabelValues(menuItem, string(outcome)).Inc()
	m.increment("waste_count", 1)
}

func (m *Monitor) RecordRating(menuItem string, rating int) {
	m.ratings.WithLabelValues(menuItem).Observe(float64(rating))
}

func (m *Monitor) RecordFailure(operation string, kind kitchen.ErrorKind) {
	if kind == "" {
		kind = "internal"
	}
	m.failures.WithLabelValues(operation, string(kind)).Inc()
}

func (m *Monitor) RecordLogFailure() {
	m.logFailures.Inc()
	m.increment("log_failures", 1)
}

func (m *Monitor) SetFunds(funds float64) {
	m.funds.Set(funds)
	m.RecordMetric("operating_funds", funds)
}

func (m *Monitor) SetLowStock(count int) {
	m.lowStock.Set(float64(count))
	m.RecordMetric("low_stock_items", count)
}

// RecordChat counts an assistant request by outcome
func (m *Monitor) RecordChat(outcome string) {
	m.chatRequests.WithLabelValues(outcome).Inc()
}

func (m *Monitor) increment(name string, delta int) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	n, _ := m.metrics[name].(int)
	m.metrics[name] = n + delta
}

// Middleware times every request by its route template
func (m *Monitor) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}
