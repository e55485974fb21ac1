// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// latency summaries keep these quantiles over a sliding window
var timerObjectives = map[float64]float64{
	0.5:  0.05,
	0.9:  0.01,
	0.99: 0.001,
}

// PrometheusSystem - System implementation registering every metric
// with a prometheus registerer
type PrometheusSystem struct {
	registerer prometheus.Registerer
}

// NewPrometheus - create a monitoring backend over a prometheus
// registerer; nil selects the process-wide default registerer
func NewPrometheus(registerer prometheus.Registerer) *PrometheusSystem {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &PrometheusSystem{
		registerer: registerer,
	}
}

type promCounter struct {
	counter prometheus.Counter
}

func (p promCounter) Inc() {
	p.counter.Inc()
}

func (p promCounter) Add(n uint64) {
	p.counter.Add(float64(n))
}

type promLabelledCounter struct {
	vec *prometheus.CounterVec
}

func (p promLabelledCounter) Labels(values ...string) Counter {
	return promCounter{counter: p.vec.WithLabelValues(values...)}
}

type promTimer struct {
	observer prometheus.Observer
}

func (p promTimer) Start() func() {
	begin := time.Now()
	return func() {
		p.observer.Observe(time.Since(begin).Seconds())
	}
}

type promLabelledTimer struct {
	vec *prometheus.SummaryVec
}

func (p promLabelledTimer) Labels(values ...string) Timer {
	return promTimer{observer: p.vec.WithLabelValues(values...)}
}

func (s *PrometheusSystem) NewCounter(category Category, name string, help string) Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: fullName(category, name),
		Help: help,
	})
	s.registerer.MustRegister(c)
	return promCounter{counter: c}
}

func (s *PrometheusSystem) NewLabelledCounter(category Category, name string, help string, labelNames ...string) LabelledCounter {
	vec := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: fullName(category, name),
			Help: help,
		},
		labelNames,
	)
	s.registerer.MustRegister(vec)
	return promLabelledCounter{vec: vec}
}

func (s *PrometheusSystem) NewLabelledTimer(category Category, name string, help string, labelNames ...string) LabelledTimer {
	vec := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       fullName(category, name),
			Help:       help,
			Objectives: timerObjectives,
		},
		labelNames,
	)
	s.registerer.MustRegister(vec)
	return promLabelledTimer{vec: vec}
}

func (s *PrometheusSystem) NewLongGauge(category Category, name string, help string, supplier func() int64) {
	s.registerer.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: fullName(category, name),
			Help: help,
		},
		func() float64 {
			return float64(supplier())
		},
	))
}

func (s *PrometheusSystem) NewIntGauge(category Category, name string, help string, supplier func() int) {
	s.registerer.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: fullName(category, name),
			Help: help,
		},
		func() float64 {
			return float64(supplier())
		},
	))
}
