package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parceldesk/ledger/internal/domain"
)

// PaymentRepository implements usecase.PaymentRepository.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// Create inserts a payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, invoice, account_id, transaction_type, amount, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		payment.ID,
		payment.Invoice,
		payment.AccountID,
		payment.TransactionType,
		decimalToNumeric(payment.Amount),
		payment.Date,
	)

	return err
}

// LatestDates returns the most recent payment date per invoice, for
// payments of the given type toward the given account. Aggregated in
// SQL so a large settlement history costs one round trip.
func (r *PaymentRepository) LatestDates(ctx context.Context, invoiceNumbers []string, accountID, paymentType string) (map[string]time.Time, error) {
	query := `
		SELECT invoice, MAX(date)
		FROM payments
		WHERE invoice = ANY($1) AND account_id = $2 AND transaction_type = $3
		GROUP BY invoice
	`

	rows, err := r.pool.Query(ctx, query, invoiceNumbers, accountID, paymentType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dates := make(map[string]time.Time)
	for rows.Next() {
		var (
			invoice string
			latest  time.Time
		)
		if err := rows.Scan(&invoice, &latest); err != nil {
			return nil, err
		}
		dates[invoice] = latest
	}

	return dates, rows.Err()
}
