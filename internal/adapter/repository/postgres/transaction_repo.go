package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
)

const transactionColumns = `id, account_id, type, amount, description, reference, invoice, kind, previous_balance, new_balance, created_at`

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create inserts a new ledger transaction.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO ledger_transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := pgxTx.Exec(ctx, query,
		txn.ID,
		txn.AccountID,
		string(txn.Type),
		decimalToNumeric(txn.Amount),
		txn.Description,
		txn.Reference,
		txn.Invoice,
		int16(txn.Kind),
		decimalToNumeric(txn.PreviousBalance),
		decimalToNumeric(txn.NewBalance),
		txn.CreatedAt,
	)

	return observeError("transactions.create", err)
}

// ListByAccount returns the account's full history. ULID primary keys
// are monotonic, so id order is insertion order even within one
// timestamp tick.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE account_id = $1
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, observeError("transactions.list", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	return txns, observeError("transactions.list", err)
}

// ListPage returns one page of an account's transactions plus the
// total row count for the filter.
func (r *TransactionRepository) ListPage(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*domain.Transaction, int64, error) {
	countQuery := `
		SELECT COUNT(*)
		FROM ledger_transactions
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
	`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, accountID, from, to).Scan(&total); err != nil {
		return nil, 0, observeError("transactions.list_page", err)
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE account_id = $1
		  AND ($2::timestamptz IS NULL OR created_at >= $2)
		  AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY id ASC
		LIMIT $4 OFFSET $5
	`

	rows, err := r.pool.Query(ctx, query, accountID, from, to, limit, offset)
	if err != nil {
		return nil, 0, observeError("transactions.list_page", err)
	}
	defer rows.Close()

	txns, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, observeError("transactions.list_page", err)
	}

	return txns, total, nil
}

// UpdateBalances writes one recalculated running-balance pair.
func (r *TransactionRepository) UpdateBalances(ctx context.Context, tx usecase.Transaction, id string, previous, current decimal.Decimal) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE ledger_transactions
		SET previous_balance = $2, new_balance = $3
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query, id, decimalToNumeric(previous), decimalToNumeric(current))
	if err != nil {
		return observeError("transactions.update_balances", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

// FindStartingBalance returns the account's starting-balance sentinel.
// When duplicates exist the oldest row wins, matching the sequencer.
func (r *TransactionRepository) FindStartingBalance(ctx context.Context, accountID string) (*domain.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM ledger_transactions
		WHERE account_id = $1 AND kind = $2
		ORDER BY id ASC
		LIMIT 1
	`

	txn, err := scanTransaction(r.pool.QueryRow(ctx, query, accountID, int16(domain.KindStartingBalance)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTransactionNotFound
		}

		return nil, observeError("transactions.find_starting_balance", err)
	}

	return txn, nil
}

// RewriteStartingBalance replaces every mutable field of the sentinel
// row in place, keeping its identity.
func (r *TransactionRepository) RewriteStartingBalance(ctx context.Context, tx usecase.Transaction, txn *domain.Transaction) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE ledger_transactions
		SET type = $2, amount = $3, description = $4, reference = $5,
		    previous_balance = $6, new_balance = $7, created_at = $8
		WHERE id = $1
	`

	tag, err := pgxTx.Exec(ctx, query,
		txn.ID,
		string(txn.Type),
		decimalToNumeric(txn.Amount),
		txn.Description,
		txn.Reference,
		decimalToNumeric(txn.PreviousBalance),
		decimalToNumeric(txn.NewBalance),
		txn.CreatedAt,
	)
	if err != nil {
		return observeError("transactions.rewrite_starting_balance", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}

	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		txn      domain.Transaction
		typ      string
		kind     int16
		amount   pgtype.Numeric
		previous pgtype.Numeric
		current  pgtype.Numeric
	)

	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&typ,
		&amount,
		&txn.Description,
		&txn.Reference,
		&txn.Invoice,
		&kind,
		&previous,
		&current,
		&txn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	txn.Type = domain.TransactionType(typ)
	txn.Kind = domain.TransactionKind(kind)
	txn.Amount = numericToDecimal(amount)
	txn.PreviousBalance = numericToDecimal(previous)
	txn.NewBalance = numericToDecimal(current)

	return &txn, nil
}

func scanTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var txns []*domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}

	return txns, rows.Err()
}
