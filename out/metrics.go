// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package out

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the nucleation engine. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Accepted   prometheus.Counter     // accepted nucleation events
	Rejected   prometheus.Counter     // candidates rejected by exclusion zones
	Injections *prometheus.CounterVec // injection attempts by outcome: applied or deferred
	Retries    prometheus.Counter     // solve retries with reduced time step
	Failures   *prometheus.CounterVec // steps ending in the Failure state by reason: divergence or error
	Steps      prometheus.Counter     // converged steps
	StepTime   prometheus.Histogram   // wall time of complete steps
	Events     prometheus.Gauge       // number of events in history
	MaxProb    prometheus.Gauge       // largest probability of last evaluation
	Expected   prometheus.Gauge       // expected number of events of last evaluation
}

// NewMetrics allocates and registers the collectors in reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Accepted: f.NewCounter(prometheus.CounterOpts{
			Name: "hyrax_events_accepted_total",
			Help: "Number of accepted nucleation events",
		}),
		Rejected: f.NewCounter(prometheus.CounterOpts{
			Name: "hyrax_exclusion_rejections_total",
			Help: "Number of successful trials rejected by exclusion zones",
		}),
		Injections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hyrax_injections_total",
			Help: "Number of injection attempts by outcome",
		}, []string{"outcome"}),
		Retries: f.NewCounter(prometheus.CounterOpts{
			Name: "hyrax_solve_retries_total",
			Help: "Number of solves repeated with a reduced time step",
		}),
		Failures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hyrax_failures_total",
			Help: "Number of steps ending in failure by reason: divergence of the solver or error of evaluation and injection",
		}, []string{"reason"}),
		Steps: f.NewCounter(prometheus.CounterOpts{
			Name: "hyrax_steps_total",
			Help: "Number of converged time steps",
		}),
		StepTime: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "hyrax_step_duration_seconds",
			Help:    "Wall time of complete time steps",
			Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
		Events: f.NewGauge(prometheus.GaugeOpts{
			Name: "hyrax_history_events",
			Help: "Number of events in history",
		}),
		MaxProb: f.NewGauge(prometheus.GaugeOpts{
			Name: "hyrax_max_probability",
			Help: "Largest nucleation probability of the last evaluation",
		}),
		Expected: f.NewGauge(prometheus.GaugeOpts{
			Name: "hyrax_expected_events",
			Help: "Expected number of events of the last evaluation",
		}),
	}
}

// Sampled records the outcome of one evaluation and sampling
func (o *Metrics) Sampled(accepted, rejected, nevents int, pmax, expected float64) {
	if o == nil {
		return
	}
	o.Accepted.Add(float64(accepted))
	o.Rejected.Add(float64(rejected))
	o.Events.Set(float64(nevents))
	o.MaxProb.Set(pmax)
	o.Expected.Set(expected)
}

// Injected records an injection attempt
func (o *Metrics) Injected(deferred bool) {
	if o == nil {
		return
	}
	if deferred {
		o.Injections.WithLabelValues("deferred").Inc()
		return
	}
	o.Injections.WithLabelValues("applied").Inc()
}

// Retried records a solve retry
func (o *Metrics) Retried() {
	if o == nil {
		return
	}
	o.Retries.Inc()
}

// Failed records a step ending in failure
func (o *Metrics) Failed(divergence bool) {
	if o == nil {
		return
	}
	if divergence {
		o.Failures.WithLabelValues("divergence").Inc()
		return
	}
	o.Failures.WithLabelValues("error").Inc()
}

// Stepped records a complete step started at t0
func (o *Metrics) Stepped(t0 time.Time) {
	if o == nil {
		return
	}
	o.Steps.Inc()
	o.StepTime.Observe(time.Since(t0).Seconds())
}
