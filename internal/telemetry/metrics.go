// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/erigontech/chunkstore/chunk"
)

// Metrics exposes chunk.Totals as a set of prometheus gauges, partitioned
// by plane ("temporal", "static"). Callers register it once against their
// own registry and call Observe after each mutating store operation.
type Metrics struct {
	chunks *prometheus.GaugeVec
	rows   *prometheus.GaugeVec
	bytes  *prometheus.GaugeVec
}

// NewMetrics constructs the gauge vectors under the given namespace
// (e.g. "chunkstore") without registering them.
func NewMetrics(namespace string) *Metrics {
	labels := []string{"plane"}
	return &Metrics{
		chunks: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "chunks_total",
			Help:      "Number of chunks currently held by the store.",
		}, labels),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Number of rows currently held by the store.",
		}, labels),
		bytes: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bytes_total",
			Help:      "Estimated bytes currently held by the store.",
		}, labels),
	}
}

// MustRegister registers every gauge vector against reg.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.chunks, m.rows, m.bytes)
}

// Observe overwrites the gauges with the current totals.
func (m *Metrics) Observe(t chunk.Totals) {
	m.set("temporal", t.Temporal)
	m.set("static", t.Static)
}

func (m *Metrics) set(plane string, s chunk.Stats) {
	m.chunks.WithLabelValues(plane).Set(float64(s.NumChunks))
	m.rows.WithLabelValues(plane).Set(float64(s.NumRows))
	m.bytes.WithLabelValues(plane).Set(float64(s.TotalSizeBytes))
}
