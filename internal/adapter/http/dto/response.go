package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
)

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID             string          `json:"id"`
	Kind           string          `json:"kind"`
	CompanyName    string          `json:"company_name"`
	PersonName     string          `json:"person_name,omitempty"`
	CurrentBalance decimal.Decimal `json:"current_balance"`
	CreditLimit    decimal.Decimal `json:"credit_limit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:             a.ID,
		Kind:           string(a.Kind),
		CompanyName:    a.CompanyName,
		PersonName:     a.PersonName,
		CurrentBalance: a.CurrentBalance,
		CreditLimit:    a.CreditLimit,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse represents a list of accounts.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// TransactionResponse represents a ledger transaction in API responses.
type TransactionResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Reference       string          `json:"reference,omitempty"`
	Invoice         string          `json:"invoice,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TransactionFromDomain converts domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:              t.ID,
		AccountID:       t.AccountID,
		Type:            string(t.Type),
		Amount:          t.Amount,
		Description:     t.Description,
		Reference:       t.Reference,
		Invoice:         t.Invoice,
		PreviousBalance: t.PreviousBalance,
		NewBalance:      t.NewBalance,
		CreatedAt:       t.CreatedAt,
	}
}

// StatementLineResponse is one statement row: a transaction plus its
// resolved voucher date.
type StatementLineResponse struct {
	*TransactionResponse

	VoucherDate time.Time `json:"voucher_date"`
}

// StatementResponse represents one page of an account statement.
type StatementResponse struct {
	Account    *AccountResponse         `json:"account"`
	Lines      []*StatementLineResponse `json:"transactions"`
	Total      int64                    `json:"total"`
	Page       int                      `json:"page"`
	Limit      int                      `json:"limit"`
	TotalPages int                      `json:"total_pages"`
	Warnings   int                      `json:"warnings,omitempty"`
}

// StatementFromUseCase converts a statement to a response.
func StatementFromUseCase(s *usecase.Statement) *StatementResponse {
	lines := make([]*StatementLineResponse, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = &StatementLineResponse{
			TransactionResponse: TransactionFromDomain(l.Transaction),
			VoucherDate:         l.VoucherDate,
		}
	}

	return &StatementResponse{
		Account:    AccountFromDomain(s.Account),
		Lines:      lines,
		Total:      s.Total,
		Page:       s.Page,
		Limit:      s.Limit,
		TotalPages: s.TotalPages,
		Warnings:   s.Warnings,
	}
}

// RecalculationResponse represents the outcome of a recalculation.
type RecalculationResponse struct {
	Account      *AccountResponse `json:"account"`
	Updated      int              `json:"updated"`
	FinalBalance decimal.Decimal  `json:"final_balance"`
	Warnings     int              `json:"warnings,omitempty"`
}

// RecalculationFromUseCase converts a recalculation result to a response.
func RecalculationFromUseCase(r *usecase.RecalcResult) *RecalculationResponse {
	return &RecalculationResponse{
		Account:      AccountFromDomain(r.Account),
		Updated:      r.Updated,
		FinalBalance: r.FinalBalance,
		Warnings:     r.Warnings,
	}
}

// VerificationResponse reports whether stored balances match a replay.
type VerificationResponse struct {
	Consistent      bool            `json:"consistent"`
	StoredBalance   decimal.Decimal `json:"stored_balance"`
	ReplayedBalance decimal.Decimal `json:"replayed_balance"`
	Breaks          []string        `json:"breaks,omitempty"`
}

// VerificationFromUseCase converts a verification result to a response.
func VerificationFromUseCase(v *usecase.VerifyResult) *VerificationResponse {
	return &VerificationResponse{
		Consistent:      v.Consistent,
		StoredBalance:   v.StoredBalance,
		ReplayedBalance: v.ReplayedBalance,
		Breaks:          v.Breaks,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
