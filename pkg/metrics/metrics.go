// Package metrics exposes Prometheus collectors for executor dispatch.
//
// All methods are safe on a nil *Executor so executors built without
// metrics pay nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Status labels for dispatched work.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusDiscarded = "discarded"
)

// Default histogram buckets for dispatch duration (in seconds)
var defaultBuckets = []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1, 5}

// Executor wraps the prometheus collectors for executor dispatch.
type Executor struct {
	dispatchedTotal  *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	queueDepth       *prometheus.GaugeVec
	dispatchDuration *prometheus.HistogramVec
}

// New creates the collectors under namespace. Call Register to expose them.
func New(namespace string) *Executor {
	return &Executor{
		dispatchedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "dispatched_total",
				Help:      "Total number of work items taken off the executor queue",
			},
			[]string{"executor", "status"},
		),
		rejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "rejected_total",
				Help:      "Total number of submissions refused because the executor was unavailable",
			},
			[]string{"executor"},
		),
		queueDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "queue_depth",
				Help:      "Number of work items waiting on the executor",
			},
			[]string{"executor"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "executor",
				Name:      "dispatch_duration_seconds",
				Help:      "Time spent running a work item on the executor",
				Buckets:   defaultBuckets,
			},
			[]string{"executor"},
		),
	}
}

// Register registers all collectors with reg.
func (m *Executor) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.dispatchedTotal,
		m.rejectedTotal,
		m.queueDepth,
		m.dispatchDuration,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveDispatch records one work item leaving the queue.
func (m *Executor) ObserveDispatch(executor, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.dispatchedTotal.WithLabelValues(executor, status).Inc()
	if status != StatusDiscarded {
		m.dispatchDuration.WithLabelValues(executor).Observe(d.Seconds())
	}
}

// IncRejected records a refused submission.
func (m *Executor) IncRejected(executor string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(executor).Inc()
}

// SetQueueDepth records the current queue length.
func (m *Executor) SetQueueDepth(executor string, n int) {
	if m == nil {
		return
	}
	m.queueDepth.WithLabelValues(executor).Set(float64(n))
}
