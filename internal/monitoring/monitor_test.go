package monitoring

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"thallipoli/internal/kitchen"
)

var _ kitchen.Recorder = (*Monitor)(nil)

func TestMonitor_GetMetrics(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	metrics := m.GetMetrics()

	// Check if our metric is present
	value, exists := metrics["test_metric"]
	if !exists {
		t.Fatalf("Expected 'test_metric' to be present in metrics, but it was not")
	}

	// Check value
	if value != 42 {
		t.Errorf("Expected 'test_metric' to be 42, but got %v", value)
	}

	// Check uptime presence
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_RecordSale(t *testing.T) {
	m := NewMonitor()

	m.RecordSale("menu-1", 2, 29.98)
	m.RecordSale("menu-1", 1, 14.99)

	if got := testutil.ToFloat64(m.sales.WithLabelValues("menu-1")); got != 3 {
		t.Errorf("Expected 3 units sold, got %v", got)
	}
	if got := testutil.ToFloat64(m.revenue); got < 44.96 || got > 44.98 {
		t.Errorf("Expected revenue 44.97, got %v", got)
	}
	if got, _ := m.GetMetric("sales_count"); got != 2 {
		t.Errorf("Expected sales_count 2, got %v", got)
	}
}

func TestMonitor_Gauges(t *testing.T) {
	m := NewMonitor()

	m.SetFunds(4875)
	m.SetLowStock(3)
	m.RecordWaste("menu-2", kitchen.WasteBlocked)
	m.RecordFailure("restock", kitchen.KindInsufficientFunds)
	m.RecordFailure("sell", "")

	if got := testutil.ToFloat64(m.funds); got != 4875 {
		t.Errorf("Expected funds gauge 4875, got %v", got)
	}
	if got, _ := m.GetMetric("low_stock_items"); got != 3 {
		t.Errorf("Expected low_stock_items 3, got %v", got)
	}
	if got := testutil.ToFloat64(m.waste.WithLabelValues("menu-2", "blocked")); got != 1 {
		t.Errorf("Expected one blocked waste event, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("sell", "internal")); got != 1 {
		t.Errorf("Expected one internal failure, got %v", got)
	}
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()
	m.RecordMetric("test_metric", 42)

	m.Reset()

	metrics := m.GetMetrics()

	_, exists := metrics["test_metric"]
	if exists {
		t.Errorf("Expected 'test_metric' to be removed after Reset(), but it was present")
	}

	// Uptime is added on every GetMetrics call
	_, exists = metrics["uptime_seconds"]
	if !exists {
		t.Errorf("Expected 'uptime_seconds' to be present in metrics, but it was not")
	}
}

func TestMonitor_HandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMonitor()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 from /ping, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	if !strings.Contains(body, `thallipoli_http_request_duration_seconds_count{method="GET",route="/ping",status="200"} 1`) {
		t.Errorf("Expected request histogram for /ping in metrics output")
	}
}
