package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shipment is the physical-movement record behind an invoice. Only the
// shipment date matters to the ledger; the rest is statement garnish.
type Shipment struct {
	TrackingID    string
	Destination   string
	RecipientName string
	Weight        decimal.Decimal
	ShipmentDate  *time.Time
}

// Invoice links a ledger transaction to a shipment.
type Invoice struct {
	InvoiceNumber string
	Shipment      *Shipment
}

// Payment settles an invoice against an account. Only payments whose
// TransactionType matches the account kind's PaymentType count toward
// voucher dates.
type Payment struct {
	ID              string
	Invoice         string
	AccountID       string
	TransactionType string
	Amount          decimal.Decimal
	Date            time.Time
}

// NoteKind distinguishes debit from credit notes.
type NoteKind string

const (
	NoteDebit  NoteKind = "DEBIT"
	NoteCredit NoteKind = "CREDIT"
)

// Note is a debit or credit note. Number holds the full reference
// string including the "#DEBIT"/"#CREDIT" prefix, matching how ledger
// transactions reference notes.
type Note struct {
	Number string
	Kind   NoteKind
	Date   time.Time
}
