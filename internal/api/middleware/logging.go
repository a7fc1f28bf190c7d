package middleware

import (
	"net/http"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// Logging creates request logging middleware.
// Static assets and health checks are logged at debug level.
func Logging(log *logrus.Entry) func(http.Handler) http.Handler {
	log = log.WithField("component", "http")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			entry := log.WithFields(logrus.Fields{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration":    time.Since(start),
				"remote_addr": r.RemoteAddr,
			})
			if id := chimw.GetReqID(r.Context()); id != "" {
				entry = entry.WithField("request_id", id)
			}

			switch {
			case status >= 500:
				entry.Error("Request failed")
			case r.URL.Path == "/health" || strings.HasPrefix(r.URL.Path, "/static/"):
				entry.Debug("Request")
			default:
				entry.Info("Request")
			}
		})
	}
}
