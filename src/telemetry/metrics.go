//go:build !tinygo

/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package telemetry exposes the duty cycle counters of a simulated node to
// Prometheus.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"loranode/src/dutycycle"
)

const namespace = "loranode"

// Source is satisfied by *dutycycle.Node.
type Source interface {
	Stats() dutycycle.Snapshot
	Gate() *dutycycle.Gate
}

type Metrics struct {
	Registry *prometheus.Registry
}

// New registers one counter per duty cycle statistic plus the gate state.
// Values are read from src at scrape time.
func New(src Source) *Metrics {
	reg := prometheus.NewRegistry()
	counter := func(name, help string, get func(dutycycle.Snapshot) uint32) prometheus.Collector {
		return prometheus.NewCounterFunc(
			prometheus.CounterOpts{Namespace: namespace, Name: name, Help: help},
			func() float64 { return float64(get(src.Stats())) },
		)
	}
	reg.MustRegister(
		counter("wake_pulses_total", "Wake pulses seen.",
			func(s dutycycle.Snapshot) uint32 { return s.Pulses }),
		counter("sends_armed_total", "Transmit jobs armed by a wake pulse.",
			func(s dutycycle.Snapshot) uint32 { return s.Armed }),
		counter("sends_coalesced_total", "Wake pulses that found a transmit job already armed.",
			func(s dutycycle.Snapshot) uint32 { return s.Coalesced }),
		counter("uplinks_submitted_total", "Uplinks handed to the LoRaWAN engine.",
			func(s dutycycle.Snapshot) uint32 { return s.Submitted }),
		counter("cycles_skipped_total", "Transmit jobs dropped because the engine was busy.",
			func(s dutycycle.Snapshot) uint32 { return s.Skipped }),
		counter("gate_clears_total", "Completed transmissions that cleared the send gate.",
			func(s dutycycle.Snapshot) uint32 { return s.Cleared }),
		counter("joins_total", "Successful OTAA joins.",
			func(s dutycycle.Snapshot) uint32 { return s.Joins }),
		counter("sleeps_total", "Times the node went to sleep.",
			func(s dutycycle.Snapshot) uint32 { return s.Sleeps }),
		prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "send_in_progress",
				Help:      "1 while a transmission is outstanding.",
			},
			func() float64 {
				if src.Gate().Busy() {
					return 1
				}
				return 0
			},
		),
	)
	return &Metrics{Registry: reg}
}

// Handler exposes /metrics. Mount it with mux.Handle("/metrics", m.Handler()).
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
