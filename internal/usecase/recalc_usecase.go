package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
)

// RecalcStage names the pipeline stage a recalculation failed in.
type RecalcStage string

const (
	StageCollect  RecalcStage = "collect"
	StageResolve  RecalcStage = "resolve"
	StageSequence RecalcStage = "sequence"
	StageWrite    RecalcStage = "write"
)

// RecalcError wraps a failure with the account and stage it happened in.
type RecalcError struct {
	AccountID string
	Stage     RecalcStage
	Err       error
}

func (e *RecalcError) Error() string {
	return fmt.Sprintf("recalculation failed for account %s at stage %s: %v", e.AccountID, e.Stage, e.Err)
}

func (e *RecalcError) Unwrap() error { return e.Err }

// RecalcResult is the outcome of one full-history recalculation.
type RecalcResult struct {
	Account      *domain.Account
	Sequenced    []domain.SequencedTransaction
	Sentinel     *domain.SequencedTransaction
	Updated      int
	FinalBalance decimal.Decimal
	Warnings     int
}

// RecalcUseCase reconstructs the chronological running balance of one
// account from its full transaction history and persists the result.
// The pipeline runs collect, resolve, sequence, write under a
// per-account lock; the writeback is a single database transaction so
// readers never observe a half-recalculated ledger.
type RecalcUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	invoiceRepo InvoiceRepository
	paymentRepo PaymentRepository
	noteRepo    NoteRepository
	locker      AccountLocker
	retrier     Retrier
	logger      *slog.Logger
}

// NewRecalcUseCase creates a new RecalcUseCase.
func NewRecalcUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	invoiceRepo InvoiceRepository,
	paymentRepo PaymentRepository,
	noteRepo NoteRepository,
	locker AccountLocker,
	retrier Retrier,
	logger *slog.Logger,
) *RecalcUseCase {
	if logger == nil {
		logger = slog.Default()
	}

	return &RecalcUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		invoiceRepo: invoiceRepo,
		paymentRepo: paymentRepo,
		noteRepo:    noteRepo,
		locker:      locker,
		retrier:     retrier,
		logger:      logger,
	}
}

// Recalculate runs the full pipeline for one account. The date-range
// filtering some callers apply to the displayed slice never narrows the
// input here: recalculation is always full-history.
func (uc *RecalcUseCase) Recalculate(ctx context.Context, accountID string) (*RecalcResult, error) {
	release, err := uc.locker.Acquire(ctx, accountID)
	if err != nil {
		return nil, err
	}
	// Release must survive client disconnects or the lock leaks until TTL.
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("failed to release recalculation lock",
				"account_id", accountID, "error", err)
		}
	}()

	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, &RecalcError{AccountID: accountID, Stage: StageCollect, Err: err}
	}

	txns, err := uc.txnRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, &RecalcError{AccountID: accountID, Stage: StageCollect, Err: err}
	}

	lookups, err := uc.CollectLookups(ctx, account, txns)
	if err != nil {
		return nil, &RecalcError{AccountID: accountID, Stage: StageCollect, Err: err}
	}

	seq := domain.Sequence(account.Kind, txns, lookups)
	if seq.DuplicateSentinels > 0 {
		uc.logger.Warn("multiple starting-balance transactions found, first wins",
			"account_id", accountID,
			"extras", seq.DuplicateSentinels,
		)
	}

	err = uc.retrier.Retry(ctx, func() error {
		return uc.writeBack(ctx, account, seq)
	})
	if err != nil {
		return nil, &RecalcError{AccountID: accountID, Stage: StageWrite, Err: err}
	}

	account.CurrentBalance = seq.FinalBalance

	uc.logger.Info("ledger recalculated",
		"account_id", accountID,
		"kind", account.Kind,
		"transactions", len(seq.Updates),
		"final_balance", seq.FinalBalance.String(),
	)

	return &RecalcResult{
		Account:      account,
		Sequenced:    seq.Ordered,
		Sentinel:     seq.Sentinel,
		Updated:      len(seq.Updates),
		FinalBalance: seq.FinalBalance,
		Warnings:     seq.DuplicateSentinels,
	}, nil
}

// CollectLookups batch-fetches the reference data the voucher-date
// resolver needs for the given transactions: invoices with shipment
// dates, note dates, and the latest settling payment date per invoice.
// One query per table, keyed by deduplicated number sets.
func (uc *RecalcUseCase) CollectLookups(ctx context.Context, account *domain.Account, txns []*domain.Transaction) (domain.Lookups, error) {
	lookups := domain.Lookups{
		ShipmentDates: make(map[string]time.Time),
		NoteDates:     make(map[string]time.Time),
		PaymentDates:  make(map[string]time.Time),
	}

	invoiceSet := make(map[string]bool)
	creditInvoiceSet := make(map[string]bool)
	noteSet := make(map[string]bool)
	for _, t := range txns {
		if t.Invoice != "" {
			invoiceSet[t.Invoice] = true
			if t.Type == domain.TypeCredit {
				creditInvoiceSet[t.Invoice] = true
			}
		}
		if t.Kind == domain.KindDebitNote || t.Kind == domain.KindCreditNote {
			noteSet[t.Reference] = true
		}
	}

	if len(invoiceSet) > 0 {
		invoices, err := uc.invoiceRepo.ListByNumbers(ctx, keys(invoiceSet))
		if err != nil {
			return domain.Lookups{}, fmt.Errorf("fetch invoices: %w", err)
		}
		for _, inv := range invoices {
			if inv.Shipment != nil && inv.Shipment.ShipmentDate != nil {
				lookups.ShipmentDates[inv.InvoiceNumber] = *inv.Shipment.ShipmentDate
			}
		}
	}

	if len(noteSet) > 0 {
		notes, err := uc.noteRepo.ListByNumbers(ctx, keys(noteSet))
		if err != nil {
			return domain.Lookups{}, fmt.Errorf("fetch notes: %w", err)
		}
		for _, n := range notes {
			lookups.NoteDates[n.Number] = n.Date
		}
	}

	if len(creditInvoiceSet) > 0 {
		dates, err := uc.paymentRepo.LatestDates(ctx, keys(creditInvoiceSet), account.ID, account.Kind.PaymentType())
		if err != nil {
			return domain.Lookups{}, fmt.Errorf("fetch payments: %w", err)
		}
		lookups.PaymentDates = dates
	}

	return lookups, nil
}

// writeBack persists every recalculated pair plus the account balance
// in one transaction.
func (uc *RecalcUseCase) writeBack(ctx context.Context, account *domain.Account, seq domain.SequenceResult) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, u := range seq.Updates {
		if err := uc.txnRepo.UpdateBalances(ctx, tx, u.TransactionID, u.PreviousBalance, u.NewBalance); err != nil {
			return fmt.Errorf("update transaction %s: %w", u.TransactionID, err)
		}
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, seq.FinalBalance, time.Now().UTC()); err != nil {
		return fmt.Errorf("update account balance: %w", err)
	}

	return tx.Commit(ctx)
}

// VerifyResult reports whether a stored ledger matches a replay.
type VerifyResult struct {
	Consistent      bool
	StoredBalance   decimal.Decimal
	ReplayedBalance decimal.Decimal
	Breaks          []string
}

// Verify replays the account's history without writing anything and
// checks the stored pairs against the replay: balance continuity
// between consecutive rows and the account's current balance against
// the replayed final balance.
func (uc *RecalcUseCase) Verify(ctx context.Context, accountID string) (*VerifyResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	txns, err := uc.txnRepo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	stored := make(map[string][2]decimal.Decimal, len(txns))
	for _, t := range txns {
		stored[t.ID] = [2]decimal.Decimal{t.PreviousBalance, t.NewBalance}
	}

	lookups, err := uc.CollectLookups(ctx, account, txns)
	if err != nil {
		return nil, err
	}

	seq := domain.Sequence(account.Kind, txns, lookups)

	res := &VerifyResult{
		StoredBalance:   account.CurrentBalance,
		ReplayedBalance: seq.FinalBalance,
	}

	for _, u := range seq.Updates {
		pair := stored[u.TransactionID]
		if !pair[0].Equal(u.PreviousBalance) || !pair[1].Equal(u.NewBalance) {
			res.Breaks = append(res.Breaks, u.TransactionID)
		}
	}

	res.Consistent = len(res.Breaks) == 0 && account.CurrentBalance.Equal(seq.FinalBalance)

	return res, nil
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
