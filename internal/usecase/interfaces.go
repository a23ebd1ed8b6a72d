package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
)

// AccountRepository defines data access for vendor/customer accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context, kind domain.PartyKind, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for ledger transactions.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	// ListByAccount returns the account's full history in insertion
	// order; the sequencer relies on that order as its final tie-break.
	ListByAccount(ctx context.Context, accountID string) ([]*domain.Transaction, error)
	ListPage(ctx context.Context, accountID string, from, to *time.Time, limit, offset int) ([]*domain.Transaction, int64, error)
	UpdateBalances(ctx context.Context, tx Transaction, id string, previous, current decimal.Decimal) error
	FindStartingBalance(ctx context.Context, accountID string) (*domain.Transaction, error)
	RewriteStartingBalance(ctx context.Context, tx Transaction, txn *domain.Transaction) error
}

// InvoiceRepository defines batched lookup of invoices with shipments.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *domain.Invoice) error
	ListByNumbers(ctx context.Context, numbers []string) ([]*domain.Invoice, error)
}

// PaymentRepository defines batched lookup of settling payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	// LatestDates returns, per invoice number, the most recent payment
	// date among payments of the given type toward the given account.
	LatestDates(ctx context.Context, invoiceNumbers []string, accountID, paymentType string) (map[string]time.Time, error)
}

// NoteRepository defines batched lookup of debit/credit notes.
type NoteRepository interface {
	Create(ctx context.Context, note *domain.Note) error
	ListByNumbers(ctx context.Context, numbers []string) ([]*domain.Note, error)
}

// JournalRepository defines data access for double-entry journal records.
type JournalRepository interface {
	Create(ctx context.Context, tx Transaction, entry *domain.JournalEntry) error
	DeleteByReference(ctx context.Context, tx Transaction, reference string) error
	ListByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// AccountLocker serializes recalculations per account. Acquire returns
// domain.ErrRecalculationInProgress when another recalculation holds
// the lock; the release func must be called with a context that
// survives request cancellation.
type AccountLocker interface {
	Acquire(ctx context.Context, accountID string) (release func(context.Context) error, err error)
}

// Retrier retries an operation on transient persistence failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
