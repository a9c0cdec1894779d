// Package middleware provides HTTP middleware shared by the API handlers.
package middleware

import (
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	log "github.com/sirupsen/logrus"
)

// LoggingHandler logs one structured line per request once the
// response is written.
func LoggingHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(h, rw, r)

		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.RequestURI,
			"remote":     r.RemoteAddr,
			"user-agent": r.UserAgent(),
			"status":     m.Code,
			"size":       m.Written,
			"durationMs": float64(m.Duration) / float64(time.Millisecond),
		}).Info("Handled request")
	})
}
