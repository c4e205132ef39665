// README: Quote audit log backed by PostgreSQL.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nursecare/internal/types"
)

var ErrQuoteNotFound = errors.New("quote not found")

// Quote is one computed breakdown as recorded for audit.
type Quote struct {
	ID        types.ID       `json:"id"`
	PatientID types.ID       `json:"patientId,omitempty"`
	BookingID *types.ID      `json:"bookingId,omitempty"`
	Pricing   PriceBreakdown `json:"pricing"`
	CreatedAt time.Time      `json:"createdAt"`
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, q *Quote) error {
	payload, err := json.Marshal(q.Pricing)
	if err != nil {
		return fmt.Errorf("encoding breakdown: %w", err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO pricing_quotes (
            id, patient_id, booking_id, pricing_version,
            service_type, client_estimate, breakdown, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		string(q.ID),
		nullableID(&q.PatientID),
		nullableID(q.BookingID),
		q.Pricing.PricingVersion,
		q.Pricing.Inputs.ServiceType,
		q.Pricing.ClientEstimate,
		payload,
		q.CreatedAt,
	)
	return err
}

// AttachBooking links a recorded quote to the booking it priced.
func (s *Store) AttachBooking(ctx context.Context, quoteID, bookingID types.ID) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE pricing_quotes SET booking_id = $1 WHERE id = $2`,
		string(bookingID), string(quoteID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrQuoteNotFound
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Quote, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, patient_id, booking_id, breakdown, created_at
        FROM pricing_quotes
        WHERE id = $1`, string(id),
	)
	q, err := scanQuote(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrQuoteNotFound
	}
	return q, err
}

// ListByVersion returns the newest quotes priced under version.
func (s *Store) ListByVersion(ctx context.Context, version string, limit int) ([]Quote, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.db.Query(ctx, `
        SELECT id, patient_id, booking_id, breakdown, created_at
        FROM pricing_quotes
        WHERE pricing_version = $1
        ORDER BY created_at DESC
        LIMIT $2`, version, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *q)
	}
	return out, rows.Err()
}

func scanQuote(row pgx.Row) (*Quote, error) {
	var (
		q         Quote
		patientID *string
		bookingID *string
		payload   []byte
	)
	if err := row.Scan(&q.ID, &patientID, &bookingID, &payload, &q.CreatedAt); err != nil {
		return nil, err
	}
	if patientID != nil {
		q.PatientID = types.ID(*patientID)
	}
	if bookingID != nil {
		b := types.ID(*bookingID)
		q.BookingID = &b
	}
	if err := json.Unmarshal(payload, &q.Pricing); err != nil {
		return nil, fmt.Errorf("decoding breakdown for quote %s: %w", q.ID, err)
	}
	return &q, nil
}

func nullableID(v *types.ID) *string {
	if v == nil || *v == "" {
		return nil
	}
	s := string(*v)
	return &s
}
