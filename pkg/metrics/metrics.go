// Package metrics exports step counters and physical invariants to
// Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"gravity-cluster/pkg/simulation"
)

type Collector struct {
	registry     *prometheus.Registry
	stepsTotal   *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	nonFinite    *prometheus.CounterVec
	bodies       *prometheus.GaugeVec
	energy       *prometheus.GaugeVec
	simTime      *prometheus.GaugeVec
}

// NewCollector registers every metric on a private registry.
func NewCollector() *Collector {
	m := &Collector{
		registry: prometheus.NewRegistry(),
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gravity_steps_total",
				Help: "Total number of integration steps",
			},
			[]string{"configuration"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gravity_step_duration_seconds",
				Help:    "Wall-clock time spent in one integration step",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"configuration"},
		),
		nonFinite: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gravity_nonfinite_steps_total",
				Help: "Steps that committed a NaN or infinite position or velocity",
			},
			[]string{"configuration"},
		),
		bodies: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gravity_bodies",
				Help: "Number of bodies in the cluster",
			},
			[]string{"configuration"},
		),
		energy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gravity_total_energy",
				Help: "Kinetic plus potential energy after the last step",
			},
			[]string{"configuration"},
		),
		simTime: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gravity_simulated_time",
				Help: "Simulated time elapsed since initialization",
			},
			[]string{"configuration"},
		),
	}

	m.registry.MustRegister(m.stepsTotal, m.stepDuration, m.nonFinite, m.bodies, m.energy, m.simTime)
	return m
}

// For returns an observer that labels every sample with configuration.
func (m *Collector) For(configuration string) simulation.Observer {
	return &observer{m: m, name: configuration}
}

func (m *Collector) RecordStep(configuration string, s simulation.StepStats) {
	m.stepsTotal.WithLabelValues(configuration).Inc()
	m.stepDuration.WithLabelValues(configuration).Observe(s.Duration.Seconds())
	m.bodies.WithLabelValues(configuration).Set(float64(s.Bodies))
	m.simTime.WithLabelValues(configuration).Set(s.Time)
	if !s.Finite {
		m.nonFinite.WithLabelValues(configuration).Inc()
		return
	}
	m.energy.WithLabelValues(configuration).Set(s.Energy)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Collector) Registry() *prometheus.Registry {
	return m.registry
}

type observer struct {
	m    *Collector
	name string
}

func (o *observer) ObserveStep(s simulation.StepStats) {
	o.m.RecordStep(o.name, s)
}
