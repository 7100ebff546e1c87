// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors describing the transaction pools.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	unconfirmedTxs    prometheus.Gauge
	unconfirmedWeight prometheus.Gauge
	reorgTxs          prometheus.Gauge

	acceptedTotal prometheus.Counter
	rejectedTotal *prometheus.CounterVec
	removedTotal  *prometheus.CounterVec
	recheckTotal  prometheus.Counter
}

// NewMetrics creates the pool collectors under namespace and registers them
// with reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		unconfirmedTxs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "unconfirmed_txs",
			Help:      "Number of transactions in the unconfirmed pool",
		}),
		unconfirmedWeight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "unconfirmed_weight",
			Help:      "Total weight of the transactions in the unconfirmed pool",
		}),
		reorgTxs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "reorg_txs",
			Help:      "Number of mined transactions kept in the reorg pool",
		}),
		acceptedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "accepted_total",
			Help:      "Total number of transactions stored in the unconfirmed pool",
		}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "rejected_total",
			Help:      "Total number of transactions not stored by response",
		}, []string{"response"}),
		removedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "removed_total",
			Help:      "Total number of transactions removed by reason",
		}, []string{"reason"}),
		recheckTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "mempool",
			Name:      "recheck_total",
			Help:      "Total number of transactions flagged for revalidation",
		}),
	}

	reg.MustRegister(
		m.unconfirmedTxs,
		m.unconfirmedWeight,
		m.reorgTxs,
		m.acceptedTotal,
		m.rejectedTotal,
		m.removedTotal,
		m.recheckTotal,
	)
	return m
}

func (m *Metrics) accepted() {
	if m == nil {
		return
	}
	m.acceptedTotal.Inc()
}

func (m *Metrics) rejected(resp TxStorageResponse) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(resp.String()).Inc()
}

func (m *Metrics) removed(reason RemovalReason, n int) {
	if m == nil || n == 0 {
		return
	}
	m.removedTotal.WithLabelValues(reason.String()).Add(float64(n))
}

func (m *Metrics) recheck(n int) {
	if m == nil || n == 0 {
		return
	}
	m.recheckTotal.Add(float64(n))
}

// update refreshes the pool size gauges.
func (m *Metrics) update(stats *StatsResponse) {
	if m == nil {
		return
	}
	m.unconfirmedTxs.Set(float64(stats.UnconfirmedTxs))
	m.unconfirmedWeight.Set(float64(stats.UnconfirmedWeight))
	m.reorgTxs.Set(float64(stats.ReorgTxs))
}
