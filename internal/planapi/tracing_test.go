package planapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spacegps/transfer-planner/internal/logging"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return rec
}

func TestTracingMiddlewareEmitsServerSpan(t *testing.T) {
	rec := recordSpans(t)

	handler := TracingMiddleware("/v1/bodies", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/bodies", nil)
	req = req.WithContext(logging.ContextWithRequestID(req.Context(), "req-test-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	spans := rec.Ended()
	if len(spans) == 0 {
		t.Fatalf("no spans recorded")
	}
	span := spans[len(spans)-1]
	if got, want := span.Name(), "GET /v1/bodies"; got != want {
		t.Fatalf("span name = %q, want %q", got, want)
	}

	attrs := map[string]string{}
	for _, kv := range span.Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["http.route"] != "/v1/bodies" {
		t.Errorf("http.route attribute = %q, want %q", attrs["http.route"], "/v1/bodies")
	}
	if attrs["request_id"] != "req-test-1" {
		t.Errorf("request_id attribute = %q, want %q", attrs["request_id"], "req-test-1")
	}
}

func TestStartChildSpanAttributes(t *testing.T) {
	rec := recordSpans(t)

	_, span := StartChildSpan(t.Context(), "planner.Plan", "spacecraft", "gps-1")
	span.End()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(spans))
	}
	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	if attrs["entity_type"] != "spacecraft" || attrs["entity_id"] != "gps-1" {
		t.Fatalf("child span attrs = %v, want entity_type=spacecraft entity_id=gps-1", attrs)
	}
}
