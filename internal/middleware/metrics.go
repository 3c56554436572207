package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/templui/postline/internal/metrics"
)

// Metrics records request counts and latency, labelled by the matched route pattern.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := wrap(w)

		next.ServeHTTP(rw, r)

		// ServeMux fills in Pattern on match; unmatched paths share one label.
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}

		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(rw.statusCode)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
