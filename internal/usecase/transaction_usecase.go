package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
)

// startingBalanceEpoch is the default accounting date for a
// starting-balance sentinel when the caller supplies none.
var startingBalanceEpoch = time.Unix(0, 0).UTC()

// TransactionUseCase handles the creation paths for ledger
// transactions: ordinary appends and the starting-balance upsert.
type TransactionUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	journalRepo JournalRepository
	idGen       IDGenerator
	logger      *slog.Logger
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	journalRepo JournalRepository,
	idGen IDGenerator,
	logger *slog.Logger,
) *TransactionUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &TransactionUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		journalRepo: journalRepo,
		idGen:       idGen,
		logger:      logger,
	}
}

// AppendTransactionInput represents input for appending a transaction.
type AppendTransactionInput struct {
	AccountID   string
	Type        domain.TransactionType
	Amount      decimal.Decimal
	Description string
	Reference   string
	Invoice     string
	Date        *time.Time
}

func (in *AppendTransactionInput) validate() error {
	if !in.Type.Valid() {
		return domain.ErrInvalidTransactionType
	}
	if err := domain.ValidateAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Description) == "" {
		return domain.ErrMissingDescription
	}
	return nil
}

// Append inserts one transaction, carrying the account balance forward
// by a single step. A starting-balance reference routes to the
// dedicated upsert path instead. The increment here must stay
// consistent with what the sequencer would produce for the same row.
func (uc *TransactionUseCase) Append(ctx context.Context, input AppendTransactionInput) (*domain.Transaction, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	if domain.ClassifyReference(input.Reference) == domain.KindStartingBalance {
		return uc.upsertStartingBalance(ctx, input)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	createdAt := now
	if input.Date != nil {
		createdAt = input.Date.UTC()
	}

	previous := account.CurrentBalance
	current := account.Kind.Apply(previous, input.Type, input.Amount)

	txn := &domain.Transaction{
		ID:              uc.idGen.Generate(),
		AccountID:       account.ID,
		Type:            input.Type,
		Amount:          input.Amount,
		Description:     input.Description,
		Reference:       input.Reference,
		Invoice:         input.Invoice,
		PreviousBalance: previous,
		NewBalance:      current,
		CreatedAt:       createdAt,
	}
	txn.Classify()

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, current, now); err != nil {
		return nil, err
	}

	entry := domain.JournalForTransaction(account.Kind, txn, createdAt)
	if err := uc.journalRepo.Create(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// upsertStartingBalance updates the account's starting-balance
// sentinel in place, or creates it when absent. The sentinel's
// createdAt is pinned to the provided date (epoch by default) so stray
// insertion timestamps never pull it into the dated sequence, and its
// journal entries are deleted and recreated under the new reference.
// The account balance itself is left for the next recalculation.
func (uc *TransactionUseCase) upsertStartingBalance(ctx context.Context, input AppendTransactionInput) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	// The lookup runs under the account row lock so concurrent upserts
	// serialize and cannot both insert a sentinel.
	existing, err := uc.txnRepo.FindStartingBalance(ctx, input.AccountID)
	if err != nil && !errors.Is(err, domain.ErrTransactionNotFound) {
		return nil, err
	}

	createdAt := startingBalanceEpoch
	if input.Date != nil {
		createdAt = input.Date.UTC()
	}

	opening := account.Kind.Signed(input.Type, input.Amount)

	txn := &domain.Transaction{
		AccountID:       account.ID,
		Type:            input.Type,
		Amount:          input.Amount,
		Description:     input.Description,
		Reference:       input.Reference,
		PreviousBalance: decimal.Zero,
		NewBalance:      opening,
		CreatedAt:       createdAt,
	}
	txn.Classify()

	if existing != nil {
		txn.ID = existing.ID
		if err := uc.journalRepo.DeleteByReference(ctx, tx, existing.Reference); err != nil {
			return nil, err
		}
		if err := uc.txnRepo.RewriteStartingBalance(ctx, tx, txn); err != nil {
			return nil, err
		}
	} else {
		txn.ID = uc.idGen.Generate()
		if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
			return nil, err
		}
	}

	// Opening balances only book a journal entry on the debit side;
	// a credit opening is an advance we hold, not a cost.
	if input.Type == domain.TypeDebit {
		entry := domain.JournalForTransaction(account.Kind, txn, createdAt)
		if err := uc.journalRepo.Create(ctx, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	uc.logger.Info("starting balance set, recalculation pending",
		"account_id", account.ID,
		"opening_balance", opening.String(),
	)

	return txn, nil
}
