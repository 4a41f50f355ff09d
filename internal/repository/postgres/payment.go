package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, booking_id, processor_ref, total_cents, escrow_cents, service_fee_cents, deposit_cents,
	escrow_status, owner_payout_cents, renter_refund_cents, deposit_withheld_cents, deposit_refund_cents,
	version, created_at, payout_processed_at`

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	query := `INSERT INTO payments (booking_id, processor_ref, total_cents, escrow_cents, service_fee_cents, deposit_cents, escrow_status, version, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		p.BookingID, p.ProcessorRef, p.TotalCents, p.EscrowCents, p.ServiceFeeCents, p.DepositCents,
		p.EscrowStatus, p.Version, now,
	).Scan(&p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = now
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.get(ctx, query, id)
}

func (r *paymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE booking_id = $1`
	return r.get(ctx, query, bookingID)
}

func (r *paymentRepository) get(ctx context.Context, query string, arg int64) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&p.ID, &p.BookingID, &p.ProcessorRef, &p.TotalCents, &p.EscrowCents, &p.ServiceFeeCents, &p.DepositCents,
		&p.EscrowStatus, &p.OwnerPayoutCents, &p.RenterRefundCents, &p.DepositWithheldCents, &p.DepositRefundCents,
		&p.Version, &p.CreatedAt, &p.PayoutProcessedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Transition persists the new escrow status and settlement amounts carried on
// p, guarded by the expected current status and p's version. The guard is
// what serializes a claim filing against a release sweep: whichever commits
// first wins, the loser matches no row.
func (r *paymentRepository) Transition(ctx context.Context, p *domain.Payment, from domain.EscrowStatus) error {
	query := `UPDATE payments
	          SET escrow_status=$1, owner_payout_cents=$2, renter_refund_cents=$3,
	              deposit_withheld_cents=$4, deposit_refund_cents=$5, payout_processed_at=$6,
	              version=version+1
	          WHERE id=$7 AND escrow_status=$8 AND version=$9`
	res, err := r.db.ExecContext(ctx, query,
		p.EscrowStatus, p.OwnerPayoutCents, p.RenterRefundCents,
		p.DepositWithheldCents, p.DepositRefundCents, p.PayoutProcessedAt,
		p.ID, from, p.Version,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrEscrowConflict
	}
	p.Version++
	return nil
}
