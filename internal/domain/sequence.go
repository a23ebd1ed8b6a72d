package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SequencedTransaction is a transaction annotated with its resolved
// voucher date, in the order the sequencer walks it.
type SequencedTransaction struct {
	*Transaction

	VoucherDate time.Time
}

// BalanceUpdate is one writeback row produced by the sequencer.
type BalanceUpdate struct {
	TransactionID   string
	PreviousBalance decimal.Decimal
	NewBalance      decimal.Decimal
}

// SequenceResult is the full output of one balance recalculation:
// every writeback pair, the account's final balance, and the sequenced
// list (sentinel excluded) in voucher-date order. Sentinel carries the
// starting-balance row itself so display callers can still show it.
type SequenceResult struct {
	Updates            []BalanceUpdate
	Ordered            []SequencedTransaction
	Sentinel           *SequencedTransaction
	OpeningBalance     decimal.Decimal
	FinalBalance       decimal.Decimal
	StartingBalanceID  string
	DuplicateSentinels int
}

// Sequence reconstructs the running balance of one account. It extracts
// the starting-balance sentinel, orders the remaining transactions by
// voucher date with deterministic tie-breaks, and accumulates under the
// kind's sign convention. The input slice must be in insertion order;
// that order is the final tie-break.
func Sequence(kind PartyKind, txns []*Transaction, lookups Lookups) SequenceResult {
	var res SequenceResult

	var sentinel *Transaction
	rest := make([]SequencedTransaction, 0, len(txns))
	for _, t := range txns {
		if t.Kind == KindStartingBalance {
			if sentinel == nil {
				sentinel = t
			} else {
				res.DuplicateSentinels++
			}
			continue
		}
		rest = append(rest, SequencedTransaction{
			Transaction: t,
			VoucherDate: ResolveVoucherDate(t, lookups),
		})
	}

	opening := decimal.Zero
	if sentinel != nil {
		opening = kind.Signed(sentinel.Type, sentinel.Amount)
		res.StartingBalanceID = sentinel.ID
	}
	res.OpeningBalance = opening

	slices.SortStableFunc(rest, compareSequenced)

	running := opening
	for _, st := range rest {
		previous := running
		running = kind.Apply(running, st.Type, st.Amount)
		st.PreviousBalance = previous
		st.NewBalance = running
		res.Updates = append(res.Updates, BalanceUpdate{
			TransactionID:   st.ID,
			PreviousBalance: previous,
			NewBalance:      running,
		})
	}
	res.FinalBalance = running
	res.Ordered = rest

	if sentinel != nil {
		sentinel.PreviousBalance = decimal.Zero
		sentinel.NewBalance = opening
		res.Updates = append(res.Updates, BalanceUpdate{
			TransactionID:   sentinel.ID,
			PreviousBalance: decimal.Zero,
			NewBalance:      opening,
		})
		// The sentinel's voucher date is its pinned createdAt; it never
		// competes with dated rows in the ordered walk.
		res.Sentinel = &SequencedTransaction{
			Transaction: sentinel,
			VoucherDate: sentinel.CreatedAt,
		}
	}

	return res
}

// compareSequenced orders transactions for accumulation: voucher date
// ascending, then CREDIT before DEBIT, then invoice number ascending
// (numeric when both sides parse, lexicographic otherwise). Equal keys
// keep insertion order via the stable sort.
func compareSequenced(a, b SequencedTransaction) int {
	if c := a.VoucherDate.Compare(b.VoucherDate); c != 0 {
		return c
	}

	if a.Type != b.Type {
		if a.Type == TypeCredit {
			return -1
		}
		return 1
	}

	if a.Invoice != "" && b.Invoice != "" {
		na, errA := strconv.Atoi(a.Invoice)
		nb, errB := strconv.Atoi(b.Invoice)
		if errA == nil && errB == nil {
			return na - nb
		}
		return strings.Compare(a.Invoice, b.Invoice)
	}

	return 0
}
