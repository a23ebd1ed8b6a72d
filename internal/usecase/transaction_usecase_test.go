package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
	"github.com/parceldesk/ledger/internal/usecase/mocks"
)

type txnFixture struct {
	txManager   *mocks.MockTransactionManager
	accountRepo *mocks.MockAccountRepository
	txnRepo     *mocks.MockTransactionRepository
	journalRepo *mocks.MockJournalRepository
	idGen       *mocks.MockIDGenerator
}

func newTxnFixture() *txnFixture {
	return &txnFixture{
		txManager:   mocks.NewMockTransactionManager(),
		accountRepo: mocks.NewMockAccountRepository(),
		txnRepo:     mocks.NewMockTransactionRepository(),
		journalRepo: mocks.NewMockJournalRepository(),
		idGen:       mocks.NewMockIDGenerator(),
	}
}

func (f *txnFixture) useCase() *usecase.TransactionUseCase {
	return usecase.NewTransactionUseCase(f.txManager, f.accountRepo, f.txnRepo, f.journalRepo, f.idGen, nil)
}

func (f *txnFixture) seedAccount(kind domain.PartyKind, balance string) *domain.Account {
	acc := &domain.Account{
		ID:             "acc-1",
		Kind:           kind,
		CompanyName:    "Swift Couriers",
		CurrentBalance: decimal.RequireFromString(balance),
	}
	_ = f.accountRepo.Create(context.Background(), acc)
	return acc
}

func TestTransactionUseCase_Append(t *testing.T) {
	tests := []struct {
		name        string
		kind        domain.PartyKind
		balance     string
		input       usecase.AppendTransactionInput
		wantPrev    string
		wantNew     string
		expectError error
	}{
		{
			name:    "vendor debit grows the balance",
			kind:    domain.PartyVendor,
			balance: "100",
			input: usecase.AppendTransactionInput{
				AccountID:   "acc-1",
				Type:        domain.TypeDebit,
				Amount:      decimal.RequireFromString("25.50"),
				Description: "freight charges",
				Invoice:     "42",
			},
			wantPrev: "100",
			wantNew:  "125.5",
		},
		{
			name:    "vendor credit shrinks the balance",
			kind:    domain.PartyVendor,
			balance: "100",
			input: usecase.AppendTransactionInput{
				AccountID:   "acc-1",
				Type:        domain.TypeCredit,
				Amount:      decimal.RequireFromString("40"),
				Description: "payment against invoice",
				Invoice:     "42",
			},
			wantPrev: "100",
			wantNew:  "60",
		},
		{
			name:    "customer credit can go negative",
			kind:    domain.PartyCustomer,
			balance: "10",
			input: usecase.AppendTransactionInput{
				AccountID:   "acc-1",
				Type:        domain.TypeCredit,
				Amount:      decimal.RequireFromString("30"),
				Description: "advance received",
			},
			wantPrev: "10",
			wantNew:  "-20",
		},
		{
			name: "invalid type rejected",
			kind: domain.PartyVendor,
			input: usecase.AppendTransactionInput{
				AccountID:   "acc-1",
				Type:        "REFUND",
				Amount:      decimal.RequireFromString("10"),
				Description: "x",
			},
			expectError: domain.ErrInvalidTransactionType,
		},
		{
			name: "negative amount rejected",
			kind: domain.PartyVendor,
			input: usecase.AppendTransactionInput{
				AccountID:   "acc-1",
				Type:        domain.TypeDebit,
				Amount:      decimal.RequireFromString("-10"),
				Description: "x",
			},
			expectError: domain.ErrInvalidAmount,
		},
		{
			name: "blank description rejected",
			kind: domain.PartyVendor,
			input: usecase.AppendTransactionInput{
				AccountID:   "acc-1",
				Type:        domain.TypeDebit,
				Amount:      decimal.RequireFromString("10"),
				Description: "   ",
			},
			expectError: domain.ErrMissingDescription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newTxnFixture()
			if tt.balance == "" {
				tt.balance = "0"
			}
			f.seedAccount(tt.kind, tt.balance)

			txn, err := f.useCase().Append(context.Background(), tt.input)

			if tt.expectError != nil {
				if !errors.Is(err, tt.expectError) {
					t.Fatalf("expected %v, got %v", tt.expectError, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if txn.PreviousBalance.String() != tt.wantPrev {
				t.Errorf("previousBalance = %s, want %s", txn.PreviousBalance, tt.wantPrev)
			}
			if txn.NewBalance.String() != tt.wantNew {
				t.Errorf("newBalance = %s, want %s", txn.NewBalance, tt.wantNew)
			}

			acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
			if acc.CurrentBalance.String() != tt.wantNew {
				t.Errorf("account balance = %s, want %s", acc.CurrentBalance, tt.wantNew)
			}

			if f.txManager.LastTx == nil || !f.txManager.LastTx.Committed {
				t.Error("expected transaction to commit")
			}
		})
	}
}

func TestTransactionUseCase_Append_WritesBalancedJournal(t *testing.T) {
	f := newTxnFixture()
	f.seedAccount(domain.PartyVendor, "0")

	txn, err := f.useCase().Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "acc-1",
		Type:        domain.TypeDebit,
		Amount:      decimal.RequireFromString("75"),
		Description: "linehaul",
		Reference:   "LH-9",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, _ := f.journalRepo.ListByReference(context.Background(), txn.Reference)
	if len(entries) != 1 {
		t.Fatalf("expected 1 journal entry, got %d", len(entries))
	}
	if !entries[0].Balanced() {
		t.Error("journal entry does not balance")
	}
	if entries[0].Lines[0].AccountCode != domain.CodeFreightCost {
		t.Errorf("debit line = %s, want %s", entries[0].Lines[0].AccountCode, domain.CodeFreightCost)
	}
}

func TestTransactionUseCase_Append_AccountNotFound(t *testing.T) {
	f := newTxnFixture()

	_, err := f.useCase().Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "missing",
		Type:        domain.TypeDebit,
		Amount:      decimal.RequireFromString("10"),
		Description: "x",
	})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestTransactionUseCase_StartingBalance_Create(t *testing.T) {
	f := newTxnFixture()
	f.seedAccount(domain.PartyVendor, "0")

	txn, err := f.useCase().Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "acc-1",
		Type:        domain.TypeDebit,
		Amount:      decimal.RequireFromString("500"),
		Description: "opening balance",
		Reference:   domain.StartingBalancePrefix,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if txn.Kind != domain.KindStartingBalance {
		t.Error("expected starting-balance kind")
	}
	if !txn.PreviousBalance.IsZero() || txn.NewBalance.String() != "500" {
		t.Errorf("sentinel pair = (%s, %s), want (0, 500)", txn.PreviousBalance, txn.NewBalance)
	}
	// Defaults to the epoch so it always sorts before dated rows.
	if !txn.CreatedAt.Equal(time.Unix(0, 0).UTC()) {
		t.Errorf("createdAt = %s, want epoch", txn.CreatedAt)
	}

	// The account balance waits for the next recalculation.
	acc, _ := f.accountRepo.GetByID(context.Background(), "acc-1")
	if !acc.CurrentBalance.IsZero() {
		t.Errorf("account balance = %s, want 0 until recalculated", acc.CurrentBalance)
	}

	// Debit openings book a journal entry.
	entries, _ := f.journalRepo.ListByReference(context.Background(), domain.StartingBalancePrefix)
	if len(entries) != 1 {
		t.Errorf("expected 1 journal entry, got %d", len(entries))
	}
}

func TestTransactionUseCase_StartingBalance_Update(t *testing.T) {
	f := newTxnFixture()
	f.seedAccount(domain.PartyVendor, "0")
	uc := f.useCase()

	first, err := uc.Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "acc-1",
		Type:        domain.TypeDebit,
		Amount:      decimal.RequireFromString("500"),
		Description: "opening balance",
		Reference:   domain.StartingBalancePrefix,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	second, err := uc.Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "acc-1",
		Type:        domain.TypeCredit,
		Amount:      decimal.RequireFromString("200"),
		Description: "corrected opening balance",
		Reference:   domain.StartingBalancePrefix,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	// Upsert keeps the row identity, one sentinel per account.
	if second.ID != first.ID {
		t.Errorf("expected rewrite of %s, got new id %s", first.ID, second.ID)
	}
	if second.NewBalance.String() != "-200" {
		t.Errorf("opening = %s, want -200", second.NewBalance)
	}

	stored, _ := f.txnRepo.ListByAccount(context.Background(), "acc-1")
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored transaction, got %d", len(stored))
	}

	// Credit openings carry no journal entry; the old one is removed.
	entries, _ := f.journalRepo.ListByReference(context.Background(), domain.StartingBalancePrefix)
	if len(entries) != 0 {
		t.Errorf("expected journal entries removed, got %d", len(entries))
	}
}

func TestTransactionUseCase_StartingBalance_LookupRunsUnderRowLock(t *testing.T) {
	f := newTxnFixture()
	f.seedAccount(domain.PartyVendor, "0")

	var calls []string
	f.accountRepo.GetByIDForUpdateFunc = func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Account, error) {
		calls = append(calls, "lock")
		return f.accountRepo.GetByID(ctx, id)
	}
	f.txnRepo.FindStartingBalanceFunc = func(ctx context.Context, accountID string) (*domain.Transaction, error) {
		calls = append(calls, "find")
		return nil, domain.ErrTransactionNotFound
	}

	_, err := f.useCase().Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "acc-1",
		Type:        domain.TypeDebit,
		Amount:      decimal.RequireFromString("500"),
		Description: "opening balance",
		Reference:   domain.StartingBalancePrefix,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The sentinel lookup must happen after the account row lock, or two
	// concurrent upserts could both see no sentinel and each insert one.
	if len(calls) != 2 || calls[0] != "lock" || calls[1] != "find" {
		t.Errorf("call order = %v, want [lock find]", calls)
	}
}

func TestTransactionUseCase_StartingBalance_ExplicitDate(t *testing.T) {
	f := newTxnFixture()
	f.seedAccount(domain.PartyCustomer, "0")

	stamp := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	txn, err := f.useCase().Append(context.Background(), usecase.AppendTransactionInput{
		AccountID:   "acc-1",
		Type:        domain.TypeDebit,
		Amount:      decimal.RequireFromString("80"),
		Description: "opening balance",
		Reference:   domain.StartingBalancePrefix,
		Date:        &stamp,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !txn.CreatedAt.Equal(stamp) {
		t.Errorf("createdAt = %s, want %s", txn.CreatedAt, stamp)
	}
}
