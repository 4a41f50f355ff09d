package postgres

import (
	"context"
	"database/sql"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type payoutRepository struct {
	db *sql.DB
}

func NewPayoutRepository(db *sql.DB) repository.PayoutRepository {
	return &payoutRepository{db: db}
}

func (r *payoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	query := `INSERT INTO payouts (booking_id, payment_id, recipient_id, type, amount_cents, reference, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		p.BookingID, p.PaymentID, p.RecipientID, p.Type, p.AmountCents, p.Reference, now,
	).Scan(&p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = now
	return nil
}

func (r *payoutRepository) ListByBookingID(ctx context.Context, bookingID int64) ([]domain.Payout, error) {
	query := `SELECT id, booking_id, payment_id, recipient_id, type, amount_cents, reference, created_at
	          FROM payouts WHERE booking_id = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []domain.Payout
	for rows.Next() {
		var p domain.Payout
		if err := rows.Scan(&p.ID, &p.BookingID, &p.PaymentID, &p.RecipientID, &p.Type, &p.AmountCents, &p.Reference, &p.CreatedAt); err != nil {
			return nil, err
		}
		payouts = append(payouts, p)
	}
	return payouts, rows.Err()
}
