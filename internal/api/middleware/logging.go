// SPDX-License-Identifier: MIT

package middleware

import (
	"net/http"
	"time"

	"github.com/contactbook/contactd/internal/log"
)

// Logging emits one structured access-log entry per request, correlated
// with the request ID.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r)

			logger := log.WithComponentFromContext(r.Context(), "http")
			logger.Info().
				Str(log.FieldEvent, "http.request").
				Str(log.FieldMethod, r.Method).
				Str(log.FieldPath, r.URL.Path).
				Int(log.FieldStatus, sw.statusCode).
				Str(log.FieldRemoteAddr, r.RemoteAddr).
				Int64(log.FieldDurationMS, time.Since(start).Milliseconds()).
				Msg("request handled")
		})
	}
}
