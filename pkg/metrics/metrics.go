// Package metrics exposes ledger activity as prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Ledger collects enrollment and payment counters.
//
// All methods are safe to call on a nil *Ledger, which records nothing.
type Ledger struct {
	enrollments *prometheus.CounterVec
	payments    *prometheus.CounterVec
	amount      prometheus.Gauge
}

// NewLedger creates the collectors and registers them with reg.
func NewLedger(reg prometheus.Registerer) *Ledger {
	l := &Ledger{
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartenroll",
			Name:      "enrollments_total",
			Help:      "Number of enrolled students by strand and whether a section was assigned.",
		}, []string{"strand", "assigned"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "smartenroll",
			Name:      "payments_total",
			Help:      "Number of recorded and reversed payments.",
		}, []string{"action"}),
		amount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "smartenroll",
			Name:      "payments_amount",
			Help:      "Sum of payments recorded since start, minus reversed payments.",
		}),
	}

	reg.MustRegister(l.enrollments, l.payments, l.amount)
	return l
}

func (l *Ledger) Enrolled(strand string, assigned bool) {
	if l == nil {
		return
	}

	label := "false"
	if assigned {
		label = "true"
	}
	l.enrollments.WithLabelValues(strand, label).Inc()
}

func (l *Ledger) PaymentRecorded(amount decimal.Decimal) {
	if l == nil {
		return
	}
	l.payments.WithLabelValues("recorded").Inc()
	l.amount.Add(amount.InexactFloat64())
}

func (l *Ledger) PaymentReversed(amount decimal.Decimal) {
	if l == nil {
		return
	}
	l.payments.WithLabelValues("reversed").Inc()
	l.amount.Sub(amount.InexactFloat64())
}
