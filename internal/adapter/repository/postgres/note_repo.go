package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parceldesk/ledger/internal/domain"
)

// NoteRepository implements usecase.NoteRepository.
type NoteRepository struct {
	pool *pgxpool.Pool
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(pool *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{pool: pool}
}

// Create inserts a debit or credit note.
func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) error {
	query := `INSERT INTO notes (number, kind, date) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, note.Number, string(note.Kind), note.Date)

	return err
}

// ListByNumbers batch-fetches notes by their full reference strings.
func (r *NoteRepository) ListByNumbers(ctx context.Context, numbers []string) ([]*domain.Note, error) {
	query := `SELECT number, kind, date FROM notes WHERE number = ANY($1)`

	rows, err := r.pool.Query(ctx, query, numbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*domain.Note
	for rows.Next() {
		var (
			note domain.Note
			kind string
		)
		if err := rows.Scan(&note.Number, &kind, &note.Date); err != nil {
			return nil, err
		}
		note.Kind = domain.NoteKind(kind)
		notes = append(notes, &note)
	}

	return notes, rows.Err()
}
