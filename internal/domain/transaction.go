package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType carries the sign of a ledger transaction. Amounts are
// always non-negative; direction comes entirely from the type.
type TransactionType string

const (
	TypeDebit  TransactionType = "DEBIT"
	TypeCredit TransactionType = "CREDIT"
)

// Valid reports whether the type is DEBIT or CREDIT.
func (t TransactionType) Valid() bool {
	return t == TypeDebit || t == TypeCredit
}

// Reference prefixes that mark special transactions.
const (
	StartingBalancePrefix = "STARTING-BALANCE"
	DebitNotePrefix       = "#DEBIT"
	CreditNotePrefix      = "#CREDIT"
)

// TransactionKind classifies a transaction by its reference, resolved
// once at ingestion instead of re-parsing prefixes at every stage.
type TransactionKind int

const (
	KindManual TransactionKind = iota
	KindStartingBalance
	KindDebitNote
	KindCreditNote
)

// ClassifyReference maps a reference string to its transaction kind.
func ClassifyReference(ref string) TransactionKind {
	switch {
	case strings.HasPrefix(ref, StartingBalancePrefix):
		return KindStartingBalance
	case strings.HasPrefix(ref, DebitNotePrefix):
		return KindDebitNote
	case strings.HasPrefix(ref, CreditNotePrefix):
		return KindCreditNote
	default:
		return KindManual
	}
}

// Transaction is the atomic unit of an account ledger. PreviousBalance
// and NewBalance are written only by the balance sequencer (or by the
// single-row append path); CreatedAt is the insertion timestamp, not
// the accounting date.
type Transaction struct {
	ID              string
	AccountID       string
	Type            TransactionType
	Amount          decimal.Decimal
	Description     string
	Reference       string
	Invoice         string
	Kind            TransactionKind
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
	CreatedAt       time.Time
}

// Classify resolves and stores the transaction kind from its reference.
func (t *Transaction) Classify() {
	t.Kind = ClassifyReference(t.Reference)
}

// Validate checks the fields the engine depends on.
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}
	if t.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	return nil
}
