package observability

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts ledger commands. A nil *Metrics is valid and records nothing.
type Metrics struct {
	contributions  prometheus.Counter
	contributed    prometheus.Counter
	repayments     prometheus.Counter
	repaid         prometheus.Counter
	fundedRequests prometheus.Counter
	rejected       *prometheus.CounterVec
	aborted        *prometheus.CounterVec
	idempotentHits prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		contributions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Name: "contributions_total",
			Help: "Contributions recorded.",
		}),
		contributed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Name: "contributed_minor_units_total",
			Help: "Sum of contributed amounts in minor units.",
		}),
		repayments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Name: "repayments_total",
			Help: "Repayments distributed.",
		}),
		repaid: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Name: "repaid_minor_units_total",
			Help: "Sum of repaid amounts in minor units.",
		}),
		fundedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Name: "loan_requests_funded_total",
			Help: "Loan requests that reached their requested amount.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger", Name: "commands_rejected_total",
			Help: "Commands refused by validation, by command.",
		}, []string{"command"}),
		aborted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ledger", Name: "transactions_aborted_total",
			Help: "Commands rolled back by a storage failure, by command.",
		}, []string{"command"}),
		idempotentHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ledger", Name: "idempotent_replays_total",
			Help: "Repayments answered from a previous identical request.",
		}),
	}
	reg.MustRegister(m.contributions, m.contributed, m.repayments, m.repaid,
		m.fundedRequests, m.rejected, m.aborted, m.idempotentHits)
	return m
}

func (m *Metrics) Contribution(amount int64) {
	if m == nil {
		return
	}
	m.contributions.Inc()
	m.contributed.Add(float64(amount))
}

func (m *Metrics) Repayment(amount int64) {
	if m == nil {
		return
	}
	m.repayments.Inc()
	m.repaid.Add(float64(amount))
}

func (m *Metrics) Funded() {
	if m != nil {
		m.fundedRequests.Inc()
	}
}

func (m *Metrics) Rejected(command string) {
	if m != nil {
		m.rejected.WithLabelValues(command).Inc()
	}
}

func (m *Metrics) Aborted(command string) {
	if m != nil {
		m.aborted.WithLabelValues(command).Inc()
	}
}

func (m *Metrics) Replayed() {
	if m != nil {
		m.idempotentHits.Inc()
	}
}
