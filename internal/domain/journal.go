package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger account codes used by generated journal entries.
const (
	CodeCash               = "1000-CASH"
	CodeAccountsReceivable = "1100-ACCOUNTS-RECEIVABLE"
	CodeAccountsPayable    = "2000-ACCOUNTS-PAYABLE"
	CodeFreightRevenue     = "4000-FREIGHT-REVENUE"
	CodeFreightCost        = "6000-FREIGHT-COST"
)

// JournalLine is one leg of a double-entry journal record.
type JournalLine struct {
	AccountCode string
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// JournalEntry is the double-entry record filed for a ledger
// transaction, keyed by the transaction's reference so starting-balance
// rewrites can delete and recreate it.
type JournalEntry struct {
	ID        string
	Reference string
	Memo      string
	Date      time.Time
	Lines     []JournalLine
	CreatedAt time.Time
}

// Balanced reports whether debits equal credits across all lines.
func (e *JournalEntry) Balanced() bool {
	debits, credits := decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}
	return debits.Equal(credits)
}

// JournalForTransaction builds the journal entry for a ledger
// transaction. Vendor debits book freight cost against payables and
// vendor credits settle payables from cash; the customer side mirrors
// with receivables and revenue.
func JournalForTransaction(kind PartyKind, t *Transaction, date time.Time) *JournalEntry {
	entry := &JournalEntry{
		Reference: t.Reference,
		Memo:      t.Description,
		Date:      date,
	}

	switch {
	case kind == PartyVendor && t.Type == TypeDebit:
		entry.Lines = []JournalLine{
			{AccountCode: CodeFreightCost, Debit: t.Amount},
			{AccountCode: CodeAccountsPayable, Credit: t.Amount},
		}
	case kind == PartyVendor && t.Type == TypeCredit:
		entry.Lines = []JournalLine{
			{AccountCode: CodeAccountsPayable, Debit: t.Amount},
			{AccountCode: CodeCash, Credit: t.Amount},
		}
	case kind == PartyCustomer && t.Type == TypeDebit:
		entry.Lines = []JournalLine{
			{AccountCode: CodeAccountsReceivable, Debit: t.Amount},
			{AccountCode: CodeFreightRevenue, Credit: t.Amount},
		}
	default:
		entry.Lines = []JournalLine{
			{AccountCode: CodeCash, Debit: t.Amount},
			{AccountCode: CodeAccountsReceivable, Credit: t.Amount},
		}
	}

	return entry
}
