package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// captureWriter wraps the original ResponseWriter and records the status.
type captureWriter struct {
	http.ResponseWriter
	status int
}

func (cw *captureWriter) WriteHeader(code int) {
	cw.status = code
	cw.ResponseWriter.WriteHeader(code)
}

// accessLog logs method, path, status, and elapsed time for every request,
// tagged with a generated request id.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		reqID := uuid.NewString()

		logger := log.With().Str("request_id", reqID).Logger()
		next.ServeHTTP(cw, r.WithContext(logger.WithContext(r.Context())))

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", cw.status).
			Dur("elapsed", time.Since(start)).
			Msg("request done")
	})
}
