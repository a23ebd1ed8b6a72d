package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

var dbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_db_errors_total",
		Help: "Database errors by repository operation",
	},
	[]string{"operation"},
)

// observeError counts a database failure for the given operation and
// returns the error unchanged. No-rows results are not failures.
func observeError(operation string, err error) error {
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		dbErrors.WithLabelValues(operation).Inc()
	}

	return err
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}

	d, _ := decimal.NewFromString(n.Int.String())
	if n.Exp != 0 {
		d = d.Shift(n.Exp)
	}

	return d
}
