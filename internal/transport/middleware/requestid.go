package middleware

import (
	"net/http"

	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/attendance-tracker/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestLogger tags the request-scoped logger with the id chi's RequestID assigned and
// echoes it to the client. Mount it after chiMiddleware.RequestID.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := chiMiddleware.GetReqID(r.Context())
		if reqID == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set(RequestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(logger.With(r.Context(), "request_id", reqID)))
	})
}
