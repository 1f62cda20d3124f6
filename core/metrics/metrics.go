package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "cryptogram_sync"

// Metrics holds all reconciliation metrics.
type Metrics struct {
	// Strategy decisions by trigger and action
	DecisionTotal *prometheus.CounterVec

	// Finished cycles by trigger and outcome
	CycleTotal    *prometheus.CounterVec
	CycleDuration *prometheus.HistogramVec

	// Plan items by class and result
	OperationTotal    *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Plan requests by request type and status
	PlanRequestTotal *prometheus.CounterVec

	// Timestamp of the last successful sync
	LastSuccess prometheus.Gauge
}

// New creates the collectors and registers them on reg.
// Collectors already registered on reg are reused.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DecisionTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Total number of strategy decisions",
		}, []string{"trigger", "action"}),

		CycleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of finished reconciliation cycles",
		}, []string{"trigger", "outcome"}),

		CycleDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Reconciliation cycle duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"sync_type"}),

		OperationTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of executed plan items",
		}, []string{"class", "result"}),

		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Plan item duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"class"}),

		PlanRequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_requests_total",
			Help:      "Total number of reconcile plan requests",
		}, []string{"type", "status"}),

		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful sync",
		}),
	}

	if reg != nil {
		m.DecisionTotal = registerOrGet(reg, m.DecisionTotal).(*prometheus.CounterVec)
		m.CycleTotal = registerOrGet(reg, m.CycleTotal).(*prometheus.CounterVec)
		m.CycleDuration = registerOrGet(reg, m.CycleDuration).(*prometheus.HistogramVec)
		m.OperationTotal = registerOrGet(reg, m.OperationTotal).(*prometheus.CounterVec)
		m.OperationDuration = registerOrGet(reg, m.OperationDuration).(*prometheus.HistogramVec)
		m.PlanRequestTotal = registerOrGet(reg, m.PlanRequestTotal).(*prometheus.CounterVec)
		m.LastSuccess = registerOrGet(reg, m.LastSuccess).(prometheus.Gauge)
	}

	return m
}

// registerOrGet registers c, returning the existing collector if one is already registered.
func registerOrGet(reg prometheus.Registerer, c prometheus.Collector) prometheus.Collector {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			return are.ExistingCollector
		}
	}
	return c
}

// ObserveDecision counts a strategy decision.
func (m *Metrics) ObserveDecision(trigger, action string) {
	if m == nil {
		return
	}
	m.DecisionTotal.WithLabelValues(trigger, action).Inc()
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(trigger, syncType, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.CycleTotal.WithLabelValues(trigger, outcome).Inc()
	if syncType != "" {
		m.CycleDuration.WithLabelValues(syncType).Observe(d.Seconds())
	}
}

// ObserveOperation records one executed plan item. Result is "succeeded", "failed" or "skipped".
func (m *Metrics) ObserveOperation(class, result string, d time.Duration) {
	if m == nil {
		return
	}
	m.OperationTotal.WithLabelValues(class, result).Inc()
	m.OperationDuration.WithLabelValues(class).Observe(d.Seconds())
}

// ObservePlanRequest counts a plan request. Status is "ok" or the error kind.
func (m *Metrics) ObservePlanRequest(requestType, status string) {
	if m == nil {
		return
	}
	m.PlanRequestTotal.WithLabelValues(requestType, status).Inc()
}

// SetLastSuccess records the time of the last successful sync.
func (m *Metrics) SetLastSuccess(t time.Time) {
	if m == nil || t.IsZero() {
		return
	}
	m.LastSuccess.Set(float64(t.Unix()))
}
