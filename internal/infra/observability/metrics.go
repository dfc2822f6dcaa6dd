package observability

import (
	"time"

	"github.com/boddenberg/monthly-statement/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"
)

// Metrics holds all Prometheus metrics for statement processing.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	cycleDuration  *prometheus.HistogramVec
	statements     *prometheus.CounterVec
	operations     *prometheus.CounterVec
	rejections     *prometheus.CounterVec
	serviceCharges *prometheus.CounterVec
	interest       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// metrics in it. Using a private registry avoids "duplicate collector"
// panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		cycleDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "statement_cycle_duration_seconds",
				Help:    "Time to build an account, apply its activity and close the cycle.",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"kind"},
		),
		statements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_runs_total",
				Help: "Total monthly statements produced.",
			},
			[]string{"kind"},
		),
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_operations_total",
				Help: "Deposits and withdrawals applied, by outcome.",
			},
			[]string{"kind", "operation", "outcome"},
		),
		rejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_rejected_withdrawals_total",
				Help: "Withdrawals refused, by reason.",
			},
			[]string{"kind", "reason"},
		),
		serviceCharges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_service_charges_total",
				Help: "Service charges deducted at month end, in currency units.",
			},
			[]string{"kind"},
		),
		interest: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "statement_interest_total",
				Help: "Interest credited at month end, in currency units.",
			},
			[]string{"kind"},
		),
	}
}

// RecordCycle records a closed monthly cycle.
func (m *Metrics) RecordCycle(kind domain.Kind, d time.Duration, cycle domain.Cycle) {
	k := string(kind)
	m.cycleDuration.WithLabelValues(k).Observe(d.Seconds())
	m.statements.WithLabelValues(k).Inc()
	m.serviceCharges.WithLabelValues(k).Add(nonNegative(cycle.Statement.ServiceCharges))
	m.interest.WithLabelValues(k).Add(nonNegative(cycle.Interest))
}

// IncrOperation counts one deposit or withdrawal.
func (m *Metrics) IncrOperation(kind domain.Kind, operation, outcome string) {
	m.operations.WithLabelValues(string(kind), operation, outcome).Inc()
}

// IncrRejection counts one refused withdrawal.
func (m *Metrics) IncrRejection(kind domain.Kind, reason string) {
	m.rejections.WithLabelValues(string(kind), reason).Inc()
}

// Summary returns aggregate counters suitable for GET /v1/metrics/summary.
func (m *Metrics) Summary() *domain.MetricsSummary {
	kinds := []domain.Kind{domain.KindSavings, domain.KindChecking}

	var s domain.MetricsSummary
	var rejected float64
	for _, kind := range kinds {
		k := string(kind)
		s.Statements += int64(counterValue(m.statements, k))
		s.Deposits += int64(counterValue(m.operations, k, "deposit", "applied"))
		s.Withdrawals += int64(counterValue(m.operations, k, "withdrawal", "applied"))
		rejected += counterValue(m.operations, k, "withdrawal", "rejected")
		s.ServiceCharges += counterValue(m.serviceCharges, k)
		s.InterestPaid += counterValue(m.interest, k)
	}
	s.RejectedWithdrawals = int64(rejected)
	if attempts := float64(s.Withdrawals) + rejected; attempts > 0 {
		s.RejectionRate = rejected / attempts
	}
	return &s
}

// nonNegative converts an amount for a counter, which cannot go down.
// Negative charges or interest (negative balances, negative rates) are not
// recorded.
func nonNegative(v decimal.Decimal) float64 {
	if v.IsNegative() {
		return 0
	}
	return v.InexactFloat64()
}

// counterValue extracts the current float64 value from a CounterVec for the given labels.
func counterValue(cv *prometheus.CounterVec, labels ...string) float64 {
	counter := cv.WithLabelValues(labels...)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
