package middleware

import (
	"context"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

// CorrelationHeader is the request/response header carrying the correlation ID.
const CorrelationHeader = "X-Correlation-ID"

// Correlation returns middleware that propagates a correlation ID through the
// request context and response headers. Inbound IDs are honored; otherwise
// the chi request ID is reused.
func Correlation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(CorrelationHeader)
			if id == "" {
				id = chimiddleware.GetReqID(r.Context())
			}

			ctx := context.WithValue(r.Context(), correlationIDKey, id)
			if id != "" {
				w.Header().Set(CorrelationHeader, id)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetCorrelationID returns the correlation ID from the context, or "".
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}
