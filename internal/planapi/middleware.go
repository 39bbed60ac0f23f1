package planapi

import (
	"net/http"

	"github.com/spacegps/transfer-planner/internal/logging"
)

const requestIDHeader = "X-Request-Id"

// RequestIDMiddleware ensures a request_id is present on the context,
// sourcing it from the inbound header if provided, and attaches a
// per-request logger annotated with request_id and route.
func RequestIDMiddleware(base logging.Logger, route string, next http.Handler) http.Handler {
	if base == nil {
		base = logging.Noop()
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if incoming := r.Header.Get(requestIDHeader); incoming != "" {
			ctx = logging.ContextWithRequestID(ctx, incoming)
		}

		ctx, _ = logging.WithRequestLogger(ctx, base.With(logging.String("route", route)))
		w.Header().Set(requestIDHeader, logging.RequestIDFromContext(ctx))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
