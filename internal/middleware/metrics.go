package middleware

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// Metrics stores application counters
type Metrics struct {
	RequestsTotal      uint64
	RequestsInProgress uint64
	RequestsSuccess    uint64
	RequestsFailed     uint64
	AnalysesTotal      uint64
	AnalysesRejected   uint64
	AnalysesUpstreamErr uint64
	StartTime          time.Time
}

var globalMetrics = &Metrics{
	StartTime: time.Now(),
}

// IncrementAnalyses counts a started analysis
func IncrementAnalyses() {
	atomic.AddUint64(&globalMetrics.AnalysesTotal, 1)
}

// IncrementAnalysesRejected counts a guardrail rejection
func IncrementAnalysesRejected() {
	atomic.AddUint64(&globalMetrics.AnalysesRejected, 1)
}

// IncrementAnalysesUpstreamErr counts a completion-provider failure
func IncrementAnalysesUpstreamErr() {
	atomic.AddUint64(&globalMetrics.AnalysesUpstreamErr, 1)
}

// GetMetrics returns current metrics
func GetMetrics() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"requests_total":        atomic.LoadUint64(&globalMetrics.RequestsTotal),
		"requests_in_progress":  atomic.LoadUint64(&globalMetrics.RequestsInProgress),
		"requests_success":      atomic.LoadUint64(&globalMetrics.RequestsSuccess),
		"requests_failed":       atomic.LoadUint64(&globalMetrics.RequestsFailed),
		"analyses_total":        atomic.LoadUint64(&globalMetrics.AnalysesTotal),
		"analyses_rejected":     atomic.LoadUint64(&globalMetrics.AnalysesRejected),
		"analyses_upstream_err": atomic.LoadUint64(&globalMetrics.AnalysesUpstreamErr),
		"uptime_seconds":        time.Since(globalMetrics.StartTime).Seconds(),
		"memory": map[string]interface{}{
			"alloc_bytes":       m.Alloc,
			"total_alloc_bytes": m.TotalAlloc,
			"sys_bytes":         m.Sys,
			"num_gc":            m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddUint64(&globalMetrics.RequestsTotal, 1)
		atomic.AddUint64(&globalMetrics.RequestsInProgress, 1)
		defer atomic.AddUint64(&globalMetrics.RequestsInProgress, ^uint64(0))

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		if wrapped.statusCode >= 200 && wrapped.statusCode < 400 {
			atomic.AddUint64(&globalMetrics.RequestsSuccess, 1)
		} else {
			atomic.AddUint64(&globalMetrics.RequestsFailed, 1)
		}
	})
}

// MetricsHandler returns metrics as JSON
func MetricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(GetMetrics())
}
