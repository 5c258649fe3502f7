// Package metrics provides Prometheus metrics for the Secret Lair tracker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sld_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sld_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Refresh Metrics
	RefreshRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sld_refresh_runs_total",
			Help: "Total number of drop list refreshes",
		},
		[]string{"status"}, // "succeeded", "partial", "failed"
	)

	RefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sld_refresh_duration_seconds",
			Help:    "Time taken by a full refresh (download, scrape, match, store)",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
		},
	)

	// Drop Metrics
	DropsStored = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sld_drops_stored",
			Help: "Number of drops in the current drop list",
		},
	)

	DropsUnparsed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sld_drops_unparsed",
			Help: "Drops in the current list whose card numbers could not be parsed",
		},
	)

	MatchedCards = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sld_matched_cards",
			Help: "Catalog cards attached to drops in the current list",
		},
	)

	// Catalog Metrics
	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sld_catalog_size",
			Help: "Number of cards in the loaded Scryfall catalog",
		},
	)

	CatalogSets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sld_catalog_sets",
			Help: "Number of distinct sets in the loaded Scryfall catalog",
		},
	)

	ScryfallRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sld_scryfall_requests_total",
			Help: "Total number of Scryfall API requests made",
		},
		[]string{"endpoint", "result"}, // result: "ok", "not_found", "error"
	)

	// Cache Metrics
	DropCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sld_drop_cache_hits_total",
			Help: "Drop lookup cache hit count",
		},
	)

	DropCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sld_drop_cache_misses_total",
			Help: "Drop lookup cache miss count",
		},
	)
)

// GinMiddleware records request counts and latency. The route template is
// used as the path label so drop numbers do not explode cardinality.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request.Method
		HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
