package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parceldesk/ledger/internal/domain"
	"github.com/parceldesk/ledger/internal/usecase"
)

// JournalRepository implements double-entry journal persistence.
type JournalRepository struct {
	pool *pgxpool.Pool
}

// NewJournalRepository creates a new journal repository.
func NewJournalRepository(pool *pgxpool.Pool) *JournalRepository {
	return &JournalRepository{pool: pool}
}

// Create inserts a journal entry with its lines inside the caller's
// transaction, so the entry appears atomically with the ledger row it
// describes.
func (r *JournalRepository) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	entryQuery := `
		INSERT INTO journal_entries (id, reference, memo, date, created_at)
		VALUES ($1, $2, $3, $4, now())
	`

	if _, err := pgxTx.Exec(ctx, entryQuery, entry.ID, entry.Reference, entry.Memo, entry.Date); err != nil {
		return err
	}

	lineQuery := `
		INSERT INTO journal_lines (entry_id, line_no, account_code, debit, credit)
		VALUES ($1, $2, $3, $4, $5)
	`

	for i, line := range entry.Lines {
		_, err := pgxTx.Exec(ctx, lineQuery,
			entry.ID,
			i+1,
			line.AccountCode,
			decimalToNumeric(line.Debit),
			decimalToNumeric(line.Credit),
		)
		if err != nil {
			return err
		}
	}

	return nil
}

// DeleteByReference removes every journal entry filed under a
// reference. Lines go with their entries via ON DELETE CASCADE.
func (r *JournalRepository) DeleteByReference(ctx context.Context, tx usecase.Transaction, reference string) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `DELETE FROM journal_entries WHERE reference = $1`

	_, err := pgxTx.Exec(ctx, query, reference)

	return err
}

// ListByReference retrieves journal entries filed under a reference.
func (r *JournalRepository) ListByReference(ctx context.Context, reference string) ([]*domain.JournalEntry, error) {
	query := `
		SELECT e.id, e.reference, e.memo, e.date, e.created_at,
		       l.account_code, l.debit, l.credit
		FROM journal_entries e
		JOIN journal_lines l ON l.entry_id = e.id
		WHERE e.reference = $1
		ORDER BY e.created_at ASC, l.line_no ASC
	`

	rows, err := r.pool.Query(ctx, query, reference)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectJournalEntries(rows)
}

func collectJournalEntries(rows pgx.Rows) ([]*domain.JournalEntry, error) {
	var (
		entries []*domain.JournalEntry
		byID    = make(map[string]*domain.JournalEntry)
	)

	for rows.Next() {
		var (
			id, reference, memo string
			date, createdAt     pgtype.Timestamptz
			accountCode         string
			debit, credit       pgtype.Numeric
		)

		err := rows.Scan(&id, &reference, &memo, &date, &createdAt, &accountCode, &debit, &credit)
		if err != nil {
			return nil, err
		}

		entry, ok := byID[id]
		if !ok {
			entry = &domain.JournalEntry{
				ID:        id,
				Reference: reference,
				Memo:      memo,
				Date:      date.Time,
				CreatedAt: createdAt.Time,
			}
			byID[id] = entry
			entries = append(entries, entry)
		}

		entry.Lines = append(entry.Lines, domain.JournalLine{
			AccountCode: accountCode,
			Debit:       numericToDecimal(debit),
			Credit:      numericToDecimal(credit),
		})
	}

	return entries, rows.Err()
}
