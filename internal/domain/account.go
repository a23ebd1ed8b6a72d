package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyKind identifies which side of the business an account sits on.
// Vendors carry what we owe them, customers carry what they owe us.
type PartyKind string

const (
	PartyVendor   PartyKind = "VENDOR"
	PartyCustomer PartyKind = "CUSTOMER"
)

// Valid reports whether the kind is a known party kind.
func (k PartyKind) Valid() bool {
	return k == PartyVendor || k == PartyCustomer
}

// PaymentType returns the payment transaction type that settles this
// kind of account: vendor payments are booked as expenses, customer
// payments as income.
func (k PartyKind) PaymentType() string {
	if k == PartyCustomer {
		return "INCOME"
	}
	return "EXPENSE"
}

// Signed returns the contribution of a transaction to the running
// balance under this kind's sign convention. Both kinds are currently
// debit-positive (a vendor DEBIT grows what we owe, a customer DEBIT
// grows what they owe us); the convention lives on the kind so an
// inverse framing does not ripple through the engine.
func (k PartyKind) Signed(t TransactionType, amount decimal.Decimal) decimal.Decimal {
	if t == TypeDebit {
		return amount
	}
	return amount.Neg()
}

// Apply advances a balance by one transaction.
func (k PartyKind) Apply(balance decimal.Decimal, t TransactionType, amount decimal.Decimal) decimal.Decimal {
	return balance.Add(k.Signed(t, amount))
}

// Account is a vendor or customer ledger account. The recalculation
// engine rewrites CurrentBalance; it never creates or destroys accounts.
type Account struct {
	ID             string
	Kind           PartyKind
	CompanyName    string
	PersonName     string
	CurrentBalance decimal.Decimal
	CreditLimit    decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
