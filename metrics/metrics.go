/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package metrics holds the Prometheus collectors of a generator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Cache label values.
const (
	CacheProxy      = "proxy"
	CacheInvocation = "invocation"
	CacheOverride   = "override"
)

// Metrics holds all Prometheus metrics.
type Metrics struct {
	CacheHitsTotal          *prometheus.CounterVec
	CacheMissesTotal        *prometheus.CounterVec
	GenerationsTotal        *prometheus.CounterVec
	GenerationFailuresTotal *prometheus.CounterVec
}

// New creates the metrics and registers them on reg when it is not nil.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of type cache hits",
			},
			[]string{"cache"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of type cache misses",
			},
			[]string{"cache"},
		),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Total number of generated types",
			},
			[]string{"cache"},
		),
		GenerationFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generation_failures_total",
				Help:      "Total number of failed type generations",
			},
			[]string{"cache"},
		),
	}
	if reg != nil {
		reg.MustRegister(
			m.CacheHitsTotal,
			m.CacheMissesTotal,
			m.GenerationsTotal,
			m.GenerationFailuresTotal,
		)
	}
	return m
}

// Hit counts a cache hit.
func (m *Metrics) Hit(cache string) {
	if m != nil {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	}
}

// Miss counts a cache miss.
func (m *Metrics) Miss(cache string) {
	if m != nil {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

// Generated counts a completed generation, or a failed one when err is
// not nil.
func (m *Metrics) Generated(cache string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.GenerationFailuresTotal.WithLabelValues(cache).Inc()
		return
	}
	m.GenerationsTotal.WithLabelValues(cache).Inc()
}
