package ui

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"abtest/internal"
)

// requestLogger logs one line per request through the application logger
func requestLogger(logger *internal.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("%s %s %d %dB %s [%s]", r.Method, r.URL.Path, ww.Status(), ww.BytesWritten(),
				time.Since(start).Round(time.Microsecond), middleware.GetReqID(r.Context()))
		})
	}
}
