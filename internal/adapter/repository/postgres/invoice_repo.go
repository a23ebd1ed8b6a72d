package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/parceldesk/ledger/internal/domain"
)

// InvoiceRepository implements usecase.InvoiceRepository.
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository.
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

// Create inserts an invoice together with its shipment.
func (r *InvoiceRepository) Create(ctx context.Context, invoice *domain.Invoice) error {
	query := `INSERT INTO invoices (invoice_number) VALUES ($1)`

	if _, err := r.pool.Exec(ctx, query, invoice.InvoiceNumber); err != nil {
		return err
	}

	if invoice.Shipment == nil {
		return nil
	}

	shipmentQuery := `
		INSERT INTO shipments (tracking_id, invoice_number, destination, recipient_name, weight, shipment_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	s := invoice.Shipment
	_, err := r.pool.Exec(ctx, shipmentQuery,
		s.TrackingID,
		invoice.InvoiceNumber,
		s.Destination,
		s.RecipientName,
		decimalToNumeric(s.Weight),
		s.ShipmentDate,
	)

	return err
}

// ListByNumbers batch-fetches invoices with shipments. One round trip
// for the whole recalculation, never a query per row.
func (r *InvoiceRepository) ListByNumbers(ctx context.Context, numbers []string) ([]*domain.Invoice, error) {
	query := `
		SELECT i.invoice_number,
		       s.tracking_id, s.destination, s.recipient_name, s.weight, s.shipment_date
		FROM invoices i
		LEFT JOIN shipments s ON s.invoice_number = i.invoice_number
		WHERE i.invoice_number = ANY($1)
	`

	rows, err := r.pool.Query(ctx, query, numbers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		var (
			invoice     domain.Invoice
			trackingID  pgtype.Text
			destination pgtype.Text
			recipient   pgtype.Text
			weight      pgtype.Numeric
			shipped     pgtype.Timestamptz
		)

		err := rows.Scan(
			&invoice.InvoiceNumber,
			&trackingID,
			&destination,
			&recipient,
			&weight,
			&shipped,
		)
		if err != nil {
			return nil, err
		}

		if trackingID.Valid {
			shipment := &domain.Shipment{
				TrackingID:    trackingID.String,
				Destination:   destination.String,
				RecipientName: recipient.String,
				Weight:        numericToDecimal(weight),
			}
			if shipped.Valid {
				t := shipped.Time
				shipment.ShipmentDate = &t
			}
			invoice.Shipment = shipment
		}

		invoices = append(invoices, &invoice)
	}

	return invoices, rows.Err()
}
