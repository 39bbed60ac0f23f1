package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SimCollector exposes simulation-specific Prometheus metrics for the
// tick-driven transfer execution.
type SimCollector struct {
	TicksTotal        prometheus.Counter
	BurnsExecuted     prometheus.Counter
	PropagationSteps  prometheus.Counter
	CraftRadiusMetres prometheus.Gauge
}

// NewSimCollector registers simulation metrics against the provided registerer.
func NewSimCollector(reg prometheus.Registerer) (*SimCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	ticks, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Cumulative simulation ticks processed by the engine.",
	}), "sim_ticks_total")
	if err != nil {
		return nil, err
	}

	burns, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_burns_executed_total",
		Help: "Cumulative thrust tuples executed during simulation.",
	}), "sim_burns_executed_total")
	if err != nil {
		return nil, err
	}

	steps, err := registerCounter(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_propagation_steps_total",
		Help: "Cumulative RK4 integration steps taken by the propagator.",
	}), "sim_propagation_steps_total")
	if err != nil {
		return nil, err
	}

	radius, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_craft_radius_metres",
		Help: "Current distance of the simulated craft from its primary, in metres.",
	}), "sim_craft_radius_metres")
	if err != nil {
		return nil, err
	}

	return &SimCollector{
		TicksTotal:        ticks,
		BurnsExecuted:     burns,
		PropagationSteps:  steps,
		CraftRadiusMetres: radius,
	}, nil
}
