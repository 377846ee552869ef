package handler

import (
	"strconv"
	"time"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/ledger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	agroRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agro_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	agroRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agro_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	agroSettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agro_settlements_total",
		Help: "Settled transactions by terminal status and order type.",
	}, []string{"status", "order_type"})

	agroSettledValue = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_settled_value_total",
		Help: "Sum of total cost over completed transactions.",
	})

	agroLedgerAppendsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_ledger_appends_total",
		Help: "Total audit ledger blocks appended.",
	})

	agroLedgerHeight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agro_ledger_height",
		Help: "Index of the most recently appended ledger block.",
	})

	agroLedgerFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_ledger_append_failures_total",
		Help: "Ledger appends that failed after a settlement was recorded.",
	})

	agroRouteOptimizationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "agro_route_optimizations_total",
		Help: "Total delivery routes planned.",
	})

	agroInventoryOptimizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agro_inventory_optimizations_total",
		Help: "Total inventory allocation plans by whether they were confirmed.",
	}, []string{"confirmed"})

	agroHealthProbesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agro_health_probes_total",
		Help: "Readiness probe runs by probe name and result.",
	}, []string{"probe", "result"})
)

// PrometheusMiddleware returns a Gin middleware that records per-request metrics.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		method := c.Request.Method
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		agroRequestsTotal.WithLabelValues(method, path, status).Inc()
		agroRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// MetricsHandler returns a Gin handler that serves Prometheus metrics.
func MetricsHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// RecordSettlement records a settlement outcome. It is registered as the
// settlement engine's outcome hook.
func RecordSettlement(tx *model.Transaction) {
	agroSettlementsTotal.WithLabelValues(string(tx.Status), string(tx.OrderType)).Inc()
	if tx.Status == model.StatusCompleted {
		agroSettledValue.Add(tx.TotalCost)
	}
}

// RecordLedgerAppend records an appended block. It is registered as a
// ledger observer.
func RecordLedgerAppend(b ledger.Block) {
	agroLedgerAppendsTotal.Inc()
	agroLedgerHeight.Set(float64(b.Index))
}

// RecordLedgerFailure records a ledger append that failed after settlement.
func RecordLedgerFailure(error) {
	agroLedgerFailuresTotal.Inc()
}

// RecordRouteOptimization records a planned route.
func RecordRouteOptimization() {
	agroRouteOptimizationsTotal.Inc()
}

// RecordInventoryOptimization records an inventory plan.
func RecordInventoryOptimization(confirmed bool) {
	agroInventoryOptimizationsTotal.WithLabelValues(strconv.FormatBool(confirmed)).Inc()
}

// RecordHealthProbe records one readiness probe run.
func RecordHealthProbe(probe string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	agroHealthProbesTotal.WithLabelValues(probe, result).Inc()
}
