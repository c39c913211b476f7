// Package metrics provides Prometheus metrics for the treemap server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumipallolabs/treemapview/internal/core"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treemapview_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treemapview_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Layout metrics
	layoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "treemapview_layout_duration_seconds",
			Help:    "Time to lay out the tile tree",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
	)

	layoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "treemapview_layouts_total",
			Help: "Total tile tree rebuilds",
		},
		[]string{"suppressed"},
	)

	tiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "treemapview_tiles",
			Help: "Number of tiles in the current layout",
		},
	)

	selectionChangesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "treemapview_selection_changes_total",
			Help: "Total selection changes",
		},
	)

	// Tree mutation metrics
	deletionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "treemapview_deletions_total",
			Help: "Total nodes removed from the tree",
		},
	)

	freedBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "treemapview_freed_bytes_total",
			Help: "Total bytes removed from the tree",
		},
	)

	// Scan metrics
	scanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "treemapview_scan_duration_seconds",
			Help:    "Time to rescan the tree root",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		},
		[]string{"status"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// Observe records a controller event. It is meant to be registered with
// core.Controller.Subscribe.
func Observe(e core.Event) {
	switch e := e.(type) {
	case core.TreemapChangedEvent:
		layoutsTotal.WithLabelValues(strconv.FormatBool(e.Suppressed)).Inc()
		tiles.Set(float64(e.Tiles))
		if !e.Suppressed {
			layoutDuration.Observe(e.Elapsed.Seconds())
		}
	case core.SelectionChangedEvent:
		selectionChangesTotal.Inc()
	case core.DeletionDetectedEvent:
		deletionsTotal.Inc()
		freedBytesTotal.Add(float64(e.Size))
	case core.ScanCompletedEvent:
		status := "success"
		if e.Err != nil {
			status = "error"
		}
		scanDuration.WithLabelValues(status).Observe(e.Elapsed.Seconds())
	}
}
