package domain

import "time"

// Lookups carries the batched reference data the voucher-date resolver
// consults: shipment dates keyed by invoice number, note dates keyed by
// the full note reference, and the latest settling payment date keyed
// by invoice number.
type Lookups struct {
	ShipmentDates map[string]time.Time
	NoteDates     map[string]time.Time
	PaymentDates  map[string]time.Time
}

// ResolveVoucherDate assigns a transaction its accounting date. The
// ledger must reflect economic timing (when goods shipped, when cash
// moved), not when a clerk entered the row. Precedence, first match
// wins:
//
//  1. note date, when the reference is a debit/credit note with a match
//  2. shipment date, for invoiced DEBIT transactions
//  3. latest payment date, for invoiced CREDIT transactions
//  4. the insertion timestamp
func ResolveVoucherDate(t *Transaction, l Lookups) time.Time {
	if t.Kind == KindDebitNote || t.Kind == KindCreditNote {
		if d, ok := l.NoteDates[t.Reference]; ok {
			return d
		}
	}

	if t.Invoice != "" {
		switch t.Type {
		case TypeDebit:
			if d, ok := l.ShipmentDates[t.Invoice]; ok {
				return d
			}
		case TypeCredit:
			if d, ok := l.PaymentDates[t.Invoice]; ok {
				return d
			}
		}
	}

	return t.CreatedAt
}
