package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Kind        string          `json:"kind"`
	CompanyName string          `json:"company_name"`
	PersonName  string          `json:"person_name,omitempty"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Kind:        domain.PartyKind(r.Kind),
		CompanyName: r.CompanyName,
		PersonName:  r.PersonName,
		CreditLimit: r.CreditLimit,
	}
}

// AppendTransactionRequest represents a request to append a ledger
// transaction to an account.
type AppendTransactionRequest struct {
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Reference   string          `json:"reference,omitempty"`
	Invoice     string          `json:"invoice,omitempty"`
	Date        *time.Time      `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input for the given account.
func (r *AppendTransactionRequest) ToUseCaseInput(accountID string) usecase.AppendTransactionInput {
	return usecase.AppendTransactionInput{
		AccountID:   accountID,
		Type:        domain.TransactionType(r.Type),
		Amount:      r.Amount,
		Description: r.Description,
		Reference:   r.Reference,
		Invoice:     r.Invoice,
		Date:        r.Date,
	}
}
