package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Recalculation metrics
	RecalculationsTotal      *prometheus.CounterVec
	RecalculationDuration    prometheus.Histogram
	RecalculatedTransactions prometheus.Histogram
	SentinelWarnings         prometheus.Counter

	// Transaction metrics
	TransactionsAppended *prometheus.CounterVec
	TransactionAmount    prometheus.Histogram

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountBalance  *prometheus.GaugeVec

	// Statement metrics
	StatementsServed *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Recalculation metrics
		RecalculationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_recalculations_total",
				Help: "Total number of ledger recalculations by account kind and outcome",
			},
			[]string{"kind", "status"},
		),
		RecalculationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_recalculation_duration_seconds",
			Help:    "Duration of full-history recalculations",
			Buckets: prometheus.DefBuckets,
		}),
		RecalculatedTransactions: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_recalculated_transactions",
			Help:    "Number of transactions resequenced per recalculation",
			Buckets: []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		SentinelWarnings: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_duplicate_sentinel_warnings_total",
			Help: "Recalculations that found more than one starting-balance row",
		}),

		// Transaction metrics
		TransactionsAppended: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_appended_total",
				Help: "Total ledger transactions appended by account kind and type",
			},
			[]string{"kind", "type"},
		),
		TransactionAmount: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledger_transaction_amount",
			Help:    "Appended transaction amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Account metrics
		AccountsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountBalance: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ledger_account_balance",
				Help: "Current account balance after the last write",
			},
			[]string{"account_id", "kind"},
		),

		// Statement metrics
		StatementsServed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_statements_served_total",
				Help: "Statement pages served, split by recalculated vs stored",
			},
			[]string{"mode"},
		),
	}
}
