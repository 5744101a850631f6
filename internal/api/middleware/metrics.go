package middleware

import (
	"net/http"
	"sync/atomic"
)

// MetricsCollector counts requests by outcome.
type MetricsCollector struct {
	requestCount *atomic.Int64
	errorCount   *atomic.Int64
	serverErrors atomic.Int64
}

func NewMetricsCollector(requestCount, errorCount *atomic.Int64) *MetricsCollector {
	return &MetricsCollector{
		requestCount: requestCount,
		errorCount:   errorCount,
	}
}

// ServerErrors is the number of 5xx responses seen so far.
func (mc *MetricsCollector) ServerErrors() int64 {
	return mc.serverErrors.Load()
}

// Middleware counts every request; responses >= 400 also count as errors.
func (mc *MetricsCollector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mc.requestCount.Add(1)

		rw := newResponseWriter(w)
		next.ServeHTTP(rw, r)

		if rw.statusCode >= 400 {
			mc.errorCount.Add(1)
		}
		if rw.statusCode >= 500 {
			mc.serverErrors.Add(1)
		}
	})
}
