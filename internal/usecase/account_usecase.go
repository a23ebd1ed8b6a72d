package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	idGen       IDGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountRepo AccountRepository, idGen IDGenerator) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		idGen:       idGen,
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Kind        domain.PartyKind
	CompanyName string
	PersonName  string
	CreditLimit decimal.Decimal
}

// CreateAccount creates a new vendor or customer account with a zero
// balance. Opening balances arrive later as a starting-balance
// transaction, not here.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if !input.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	if err := domain.ValidateName(input.CompanyName); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	account := &domain.Account{
		ID:             uc.idGen.Generate(),
		Kind:           input.Kind,
		CompanyName:    input.CompanyName,
		PersonName:     input.PersonName,
		CurrentBalance: decimal.Zero,
		CreditLimit:    input.CreditLimit,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Kind   domain.PartyKind
	Limit  int
	Offset int
}

// ListAccounts lists accounts, optionally filtered by kind.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, input.Kind, limit, offset)
}
