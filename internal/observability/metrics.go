package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APICollector bundles Prometheus metrics for the planning API surface and
// provides helpers to wire them into HTTP handlers.
type APICollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	EphemerisBodies prometheus.Gauge
	EphemerisCraft  prometheus.Gauge
	StoredPlans     prometheus.Gauge

	PlansComputed    *prometheus.CounterVec
	PlanFailures     *prometheus.CounterVec
	VerificationRuns prometheus.Counter
	PlanDeltaV       prometheus.Histogram
}

// NewAPICollector registers planning API Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewAPICollector(reg prometheus.Registerer) (*APICollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planapi_requests_total",
		Help: "Total number of handled planning API requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "planapi_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planapi_request_duration_seconds",
		Help:    "Planning API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "planapi_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	bodies, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ephemeris_bodies",
		Help: "Current number of celestial bodies in the ephemeris store.",
	}), "ephemeris_bodies")
	if err != nil {
		return nil, err
	}
	craft, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ephemeris_spacecraft",
		Help: "Current number of spacecraft in the ephemeris store.",
	}), "ephemeris_spacecraft")
	if err != nil {
		return nil, err
	}
	stored, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stored_plans",
		Help: "Current number of transfer plans held by the in-memory plan store.",
	}), "stored_plans")
	if err != nil {
		return nil, err
	}

	computed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plans_computed_total",
		Help: "Cumulative transfer plans computed, labeled by origin and destination body.",
	}, []string{"origin", "destination"})
	computed, err = registerCounterVec(reg, computed, "plans_computed_total")
	if err != nil {
		return nil, err
	}

	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_failures_total",
		Help: "Cumulative planning failures, labeled by reason.",
	}, []string{"reason"})
	failures, err = registerCounterVec(reg, failures, "plan_failures_total")
	if err != nil {
		return nil, err
	}

	verifications, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "plan_verifications_total",
		Help: "Cumulative numerical plan verification runs.",
	}), "plan_verifications_total")
	if err != nil {
		return nil, err
	}

	deltaV := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "plan_total_delta_v_mps",
		Help:    "Distribution of total delta-v across computed plans, in m/s.",
		Buckets: prometheus.ExponentialBuckets(100, 2, 10),
	})
	deltaV, err = registerHistogram(reg, deltaV, "plan_total_delta_v_mps")
	if err != nil {
		return nil, err
	}

	return &APICollector{
		gatherer:         gatherer,
		HTTPRequests:     requests,
		HTTPDurations:    durations,
		EphemerisBodies:  bodies,
		EphemerisCraft:   craft,
		StoredPlans:      stored,
		PlansComputed:    computed,
		PlanFailures:     failures,
		VerificationRuns: verifications,
		PlanDeltaV:       deltaV,
	}, nil
}

// Middleware records request counts and durations for HTTP handlers.
// route should be the registered pattern, not the raw URL, to keep
// cardinality bounded.
func (c *APICollector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)

		if c.HTTPRequests != nil {
			c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(rec.code)).Inc()
		}
		if c.HTTPDurations != nil {
			c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
		}
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *APICollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetEphemerisCounts satisfies the EphemerisMetricsRecorder interface so
// the plan service can drive gauge values directly from its mutators.
func (c *APICollector) SetEphemerisCounts(bodies, craft, plans int) {
	if c == nil {
		return
	}
	if c.EphemerisBodies != nil {
		c.EphemerisBodies.Set(float64(bodies))
	}
	if c.EphemerisCraft != nil {
		c.EphemerisCraft.Set(float64(craft))
	}
	if c.StoredPlans != nil {
		c.StoredPlans.Set(float64(plans))
	}
}

// ObservePlan records one successfully computed plan.
func (c *APICollector) ObservePlan(origin, destination string, totalDeltaV float64) {
	if c == nil {
		return
	}
	if c.PlansComputed != nil {
		c.PlansComputed.WithLabelValues(origin, destination).Inc()
	}
	if c.PlanDeltaV != nil {
		c.PlanDeltaV.Observe(totalDeltaV)
	}
}

// ObserveVerification records one plan verification run.
func (c *APICollector) ObserveVerification() {
	if c == nil || c.VerificationRuns == nil {
		return
	}
	c.VerificationRuns.Inc()
}

// ObservePlanFailure records a planning failure with a bounded reason label.
func (c *APICollector) ObservePlanFailure(reason string) {
	if c == nil || c.PlanFailures == nil {
		return
	}
	c.PlanFailures.WithLabelValues(reason).Inc()
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}

func registerCounter(reg prometheus.Registerer, c prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return c, nil
}
