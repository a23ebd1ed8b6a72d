package usecase

import (
	"context"
	"time"

	"github.com/parceldesk/ledger/internal/domain"
)

// StatementUseCase produces the paginated transaction listing shown on
// an account's statement page.
type StatementUseCase struct {
	recalc      *RecalcUseCase
	accountRepo AccountRepository
	txnRepo     TransactionRepository
}

// NewStatementUseCase creates a new StatementUseCase.
func NewStatementUseCase(recalc *RecalcUseCase, accountRepo AccountRepository, txnRepo TransactionRepository) *StatementUseCase {
	return &StatementUseCase{
		recalc:      recalc,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

// StatementInput represents input for fetching a statement slice.
type StatementInput struct {
	AccountID   string
	From        *time.Time
	To          *time.Time
	Page        int
	Limit       int
	Recalculate bool
}

// StatementLine is one row of a statement: a transaction plus its
// resolved voucher date.
type StatementLine struct {
	Transaction *domain.Transaction
	VoucherDate time.Time
}

// Statement is a paginated, display-ordered slice of an account ledger.
type Statement struct {
	Account    *domain.Account
	Lines      []StatementLine
	Total      int64
	Page       int
	Limit      int
	TotalPages int
	Warnings   int
}

// GetStatement returns one page of an account's ledger, newest voucher
// date first. With Recalculate set, the full-history engine runs first
// and the date-range filter applies only to the display slice, never
// to the recalculation input. Without it, stored balances are listed
// as-is with voucher dates resolved for the page only.
func (uc *StatementUseCase) GetStatement(ctx context.Context, input StatementInput) (*Statement, error) {
	if input.Page <= 0 {
		input.Page = 1
	}
	limit, _ := domain.ValidatePagination(input.Limit, 0)
	input.Limit = limit

	if input.Recalculate {
		return uc.recalculated(ctx, input)
	}
	return uc.stored(ctx, input)
}

func (uc *StatementUseCase) recalculated(ctx context.Context, input StatementInput) (*Statement, error) {
	res, err := uc.recalc.Recalculate(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	// The starting-balance row opens the slice, same as the stored
	// listing, so both modes show the full ledger.
	display := res.Sequenced
	if res.Sentinel != nil {
		display = append([]domain.SequencedTransaction{*res.Sentinel}, display...)
	}

	lines := make([]StatementLine, 0, len(display))
	for _, st := range display {
		if input.From != nil && st.VoucherDate.Before(*input.From) {
			continue
		}
		if input.To != nil && st.VoucherDate.After(*input.To) {
			continue
		}
		lines = append(lines, StatementLine{Transaction: st.Transaction, VoucherDate: st.VoucherDate})
	}

	// Newest first: the final balance for a date belongs at the top.
	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}

	total := int64(len(lines))
	start := (input.Page - 1) * input.Limit
	if start > len(lines) {
		start = len(lines)
	}
	end := start + input.Limit
	if end > len(lines) {
		end = len(lines)
	}

	return &Statement{
		Account:    res.Account,
		Lines:      lines[start:end],
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages(total, input.Limit),
		Warnings:   res.Warnings,
	}, nil
}

// stored lists a page straight from the database on insertion order,
// resolving voucher dates for just that page.
func (uc *StatementUseCase) stored(ctx context.Context, input StatementInput) (*Statement, error) {
	account, err := uc.accountRepo.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	offset := (input.Page - 1) * input.Limit
	txns, total, err := uc.txnRepo.ListPage(ctx, input.AccountID, input.From, input.To, input.Limit, offset)
	if err != nil {
		return nil, err
	}

	lookups, err := uc.recalc.CollectLookups(ctx, account, txns)
	if err != nil {
		return nil, err
	}

	lines := make([]StatementLine, 0, len(txns))
	for _, t := range txns {
		lines = append(lines, StatementLine{
			Transaction: t,
			VoucherDate: domain.ResolveVoucherDate(t, lookups),
		})
	}

	return &Statement{
		Account:    account,
		Lines:      lines,
		Total:      total,
		Page:       input.Page,
		Limit:      input.Limit,
		TotalPages: totalPages(total, input.Limit),
	}, nil
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		pages = 1
	}
	return pages
}
