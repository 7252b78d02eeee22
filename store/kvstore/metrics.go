// Copyright 2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package kvstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	opLabel = "op"

	opGet    = "get"
	opPut    = "put"
	opDelete = "delete"
	opBatch  = "batch"
	opScan   = "scan"
)

// Metrics counts store operations. A nil *Metrics records nothing.
type Metrics struct {
	ops         *prometheus.CounterVec
	errs        *prometheus.CounterVec
	bytesWrit   prometheus.Counter
	bytesRead   prometheus.Counter
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	histOpDur   *prometheus.HistogramVec
}

// NewMetrics creates unregistered store metrics with |labels|.
func NewMetrics(labels prometheus.Labels) *Metrics {
	return &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pcodec_store_ops",
			Help:        "Count of store operations",
			ConstLabels: labels,
		}, []string{opLabel}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "pcodec_store_errors",
			Help:        "Count of failed store operations",
			ConstLabels: labels,
		}, []string{opLabel}),
		bytesWrit: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcodec_store_bytes_written",
			Help:        "Framed bytes written to the store",
			ConstLabels: labels,
		}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcodec_store_bytes_read",
			Help:        "Framed bytes read from the store",
			ConstLabels: labels,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcodec_store_cache_hits",
			Help:        "Reads served by the value cache",
			ConstLabels: labels,
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "pcodec_store_cache_misses",
			Help:        "Reads not served by the value cache",
			ConstLabels: labels,
		}),
		histOpDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "pcodec_store_op_duration",
			Help:        "Histogram of store operation runtimes in seconds",
			ConstLabels: labels,
			Buckets:     []float64{0.0001, 0.001, 0.01, 0.1, 1.0, 10.0},
		}, []string{opLabel}),
	}
}

// Register adds every collector of |m| to |reg|.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.ops, m.errs, m.bytesWrit, m.bytesRead,
		m.cacheHits, m.cacheMisses, m.histOpDur,
	}
}

// observe records one |op| that started at |start|.
func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.ops.WithLabelValues(op).Inc()
	m.histOpDur.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.errs.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) wrote(n int) {
	if m != nil {
		m.bytesWrit.Add(float64(n))
	}
}

func (m *Metrics) read(n int) {
	if m != nil {
		m.bytesRead.Add(float64(n))
	}
}

func (m *Metrics) cacheHit(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
