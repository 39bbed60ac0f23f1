package planapi

import (
	"context"
	"net/http"

	"github.com/spacegps/transfer-planner/internal/logging"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/spacegps/transfer-planner/internal/planapi"

// TracingMiddleware wraps a route in otelhttp server spans and annotates
// them with the route pattern and the request_id when present.
func TracingMiddleware(route string, next http.Handler) http.Handler {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span := trace.SpanFromContext(r.Context())
		attrs := []attribute.KeyValue{attribute.String("http.route", route)}
		if reqID := logging.RequestIDFromContext(r.Context()); reqID != "" {
			attrs = append(attrs, attribute.String("request_id", reqID))
		}
		span.SetAttributes(attrs...)

		next.ServeHTTP(w, r)
	})

	return otelhttp.NewHandler(annotated, route,
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			return r.Method + " " + operation
		}))
}

// StartChildSpan starts a child span for internal operations within
// handlers. entityType and entityID are optional attributes to aid trace
// navigation.
func StartChildSpan(ctx context.Context, name, entityType, entityID string, extra ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	attrs := make([]attribute.KeyValue, 0, len(extra)+2)
	if entityType != "" {
		attrs = append(attrs, attribute.String("entity_type", entityType))
	}
	if entityID != "" {
		attrs = append(attrs, attribute.String("entity_id", entityID))
	}
	attrs = append(attrs, extra...)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
