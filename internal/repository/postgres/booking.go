package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"

	"github.com/lib/pq"
)

type bookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) repository.BookingRepository {
	return &bookingRepository{db: db}
}

const bookingColumns = `id, resource_id, renter_id, owner_id, start_date, end_date, status, insurance_tier,
	daily_rate_cents, subtotal_cents, service_fee_cents, insurance_cents, deposit_cents, total_cents,
	decline_reason, cancel_reason, created_at, updated_at, activated_at`

func (r *bookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (resource_id, renter_id, owner_id, start_date, end_date, status, insurance_tier,
	          daily_rate_cents, subtotal_cents, service_fee_cents, insurance_cents, deposit_cents, total_cents, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	now := time.Now().UTC()
	err := r.db.QueryRowContext(ctx, query,
		b.ResourceID, b.RenterID, b.OwnerID, b.StartDate, b.EndDate, b.Status, b.InsuranceTier,
		b.DailyRateCents, b.SubtotalCents, b.ServiceFeeCents, b.InsuranceCents, b.DepositCents, b.TotalCents,
		now, now,
	).Scan(&b.ID)
	if err != nil {
		if isOverlapViolation(err) {
			return domain.ErrBookingOverlap
		}
		return err
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

func (r *bookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b := &domain.Booking{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.ResourceID, &b.RenterID, &b.OwnerID, &b.StartDate, &b.EndDate, &b.Status, &b.InsuranceTier,
		&b.DailyRateCents, &b.SubtotalCents, &b.ServiceFeeCents, &b.InsuranceCents, &b.DepositCents, &b.TotalCents,
		&b.DeclineReason, &b.CancelReason, &b.CreatedAt, &b.UpdatedAt, &b.ActivatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (r *bookingRepository) ListBlocking(ctx context.Context, resourceID int64) ([]domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
	          WHERE resource_id = $1 AND status IN ('PENDING', 'APPROVED', 'ACTIVE')
	          ORDER BY start_date`
	rows, err := r.db.QueryContext(ctx, query, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) error {
	// The status guard makes the update a compare-and-swap: a concurrent
	// writer that moved the booking first leaves nothing to match.
	var query string
	args := []interface{}{to, time.Now().UTC(), id, from}
	switch to {
	case domain.BookingStatusDeclined:
		query = `UPDATE bookings SET status=$1, decline_reason=$5, updated_at=$2 WHERE id=$3 AND status=$4`
		args = append(args, reason)
	case domain.BookingStatusCancelled:
		query = `UPDATE bookings SET status=$1, cancel_reason=$5, updated_at=$2 WHERE id=$3 AND status=$4`
		args = append(args, reason)
	default:
		query = `UPDATE bookings SET status=$1, updated_at=$2 WHERE id=$3 AND status=$4`
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *bookingRepository) Activate(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE bookings SET status=$1, activated_at=$2, updated_at=$2 WHERE id=$3 AND status=$4`
	res, err := r.db.ExecContext(ctx, query, domain.BookingStatusActive, at, id, domain.BookingStatusApproved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrInvalidTransition
	}
	return nil
}

func (r *bookingRepository) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "renter_id", renterID, status, page, pageSize)
}

func (r *bookingRepository) ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return r.list(ctx, "owner_id", ownerID, status, page, pageSize)
}

func (r *bookingRepository) list(ctx context.Context, partyColumn string, partyID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	offset := (page - 1) * pageSize
	query := fmt.Sprintf(`SELECT `+bookingColumns+` FROM bookings WHERE %s = $1`, partyColumn)

	args := []interface{}{partyID}
	argIdx := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, status)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") AS sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []domain.Booking
	for rows.Next() {
		var b domain.Booking
		if err := scanBooking(rows, &b); err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, b)
	}
	return bookings, count, rows.Err()
}

func scanBooking(rows *sql.Rows, b *domain.Booking) error {
	return rows.Scan(
		&b.ID, &b.ResourceID, &b.RenterID, &b.OwnerID, &b.StartDate, &b.EndDate, &b.Status, &b.InsuranceTier,
		&b.DailyRateCents, &b.SubtotalCents, &b.ServiceFeeCents, &b.InsuranceCents, &b.DepositCents, &b.TotalCents,
		&b.DeclineReason, &b.CancelReason, &b.CreatedAt, &b.UpdatedAt, &b.ActivatedAt,
	)
}

// isOverlapViolation detects the race where the conflict check passed but the
// insert lost to a concurrent booking: the bookings_no_overlap exclusion
// constraint (23P01) or a unique constraint (23505) on the committed row.
func isOverlapViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23P01" || pqErr.Code == "23505"
	}
	return false
}
