// Package metrics provides Prometheus metrics for the file manager server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemanager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "filemanager_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Content transfer metrics
	contentBytesDownloaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filemanager_content_bytes_downloaded_total",
			Help: "Total bytes served from the static file route",
		},
	)

	contentBytesUploaded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filemanager_content_bytes_uploaded_total",
			Help: "Total bytes stored through the upload endpoint",
		},
	)

	contentUploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemanager_content_uploads_total",
			Help: "Total number of uploaded files",
		},
		[]string{"status"},
	)

	// Storage operation metrics
	folderCreationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemanager_folder_creations_total",
			Help: "Folder creation attempts by result",
		},
		[]string{"result"},
	)

	trashMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemanager_trash_moves_total",
			Help: "Move-to-trash attempts by result",
		},
		[]string{"result"},
	)

	trashRenamesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filemanager_trash_collision_renames_total",
			Help: "Trashed items that needed a numeric disambiguator",
		},
	)

	recentScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filemanager_recent_scan_duration_seconds",
			Help:    "Time to walk the storage tree for recent files",
			Buckets: prometheus.DefBuckets,
		},
	)

	recentScanFiles = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filemanager_recent_scan_files",
			Help: "Number of files seen by the last recent-files scan",
		},
	)

	// SSE metrics
	sseConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filemanager_sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	sseEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filemanager_sse_events_total",
			Help: "Total SSE events published",
		},
		[]string{"type"},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordContentDownload records bytes served by the static route.
func RecordContentDownload(bytes int64) {
	contentBytesDownloaded.Add(float64(bytes))
}

// RecordContentUpload records a single uploaded file.
func RecordContentUpload(bytes int64, success bool) {
	contentBytesUploaded.Add(float64(bytes))
	contentUploadsTotal.WithLabelValues(status(success)).Inc()
}

// RecordFolderCreation records a folder creation attempt.
func RecordFolderCreation(result string) {
	folderCreationsTotal.WithLabelValues(result).Inc()
}

// RecordTrashMove records a move-to-trash attempt.
func RecordTrashMove(result string, renamed bool) {
	trashMovesTotal.WithLabelValues(result).Inc()
	if renamed {
		trashRenamesTotal.Inc()
	}
}

// RecordRecentScan records a recent-files walk.
func RecordRecentScan(duration time.Duration, files int) {
	recentScanDuration.Observe(duration.Seconds())
	recentScanFiles.Set(float64(files))
}

// SetSSEConnectionsActive sets the number of active SSE connections.
func SetSSEConnectionsActive(count int64) {
	sseConnectionsActive.Set(float64(count))
}

// RecordSSEEvent records an SSE event publication.
func RecordSSEEvent(eventType string) {
	sseEventsTotal.WithLabelValues(eventType).Inc()
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware returns HTTP middleware that records request metrics.
// Requests are labelled by the matched mux pattern so static paths
// do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		RecordHTTPRequest(r.Method, route, rw.statusCode, time.Since(start))
	})
}
