package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"

	"github.com/lib/pq"
)

type claimRepository struct {
	db *sql.DB
}

func NewClaimRepository(db *sql.DB) repository.ClaimRepository {
	return &claimRepository{db: db}
}

func (r *claimRepository) Create(ctx context.Context, c *domain.DamageClaim) error {
	query := `INSERT INTO damage_claims (booking_id, estimated_cost_cents, evidence_photos, description, status, filed_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	err := r.db.QueryRowContext(ctx, query,
		c.BookingID, c.EstimatedCostCents, pq.Array(c.EvidencePhotos), c.Description, c.Status, c.FiledAt,
	).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrClaimExists
		}
		return err
	}
	return nil
}

func (r *claimRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.DamageClaim, error) {
	query := `SELECT id, booking_id, estimated_cost_cents, evidence_photos, description, status, filed_at,
	                 renter_action, counter_offer_cents, renter_notes, responded_at,
	                 awarded_cents, resolution_notes, resolved_at
	          FROM damage_claims WHERE booking_id = $1`

	c := &domain.DamageClaim{}
	var (
		action      sql.NullString
		counter     sql.NullInt64
		renterNotes sql.NullString
		respondedAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&c.ID, &c.BookingID, &c.EstimatedCostCents, pq.Array(&c.EvidencePhotos), &c.Description, &c.Status, &c.FiledAt,
		&action, &counter, &renterNotes, &respondedAt,
		&c.AwardedCents, &c.ResolutionNotes, &c.ResolvedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if action.Valid {
		resp := &domain.RenterResponse{
			Action: domain.ClaimAction(action.String),
			Notes:  renterNotes.String,
		}
		if counter.Valid {
			v := counter.Int64
			resp.CounterOfferCents = &v
		}
		if respondedAt.Valid {
			resp.RespondedAt = respondedAt.Time.UTC()
		}
		c.RenterResponse = resp
	}
	return c, nil
}

func (r *claimRepository) Update(ctx context.Context, c *domain.DamageClaim) error {
	var (
		action      *string
		counter     *int64
		renterNotes *string
		respondedAt *time.Time
	)
	if c.RenterResponse != nil {
		a := string(c.RenterResponse.Action)
		action = &a
		counter = c.RenterResponse.CounterOfferCents
		renterNotes = &c.RenterResponse.Notes
		t := c.RenterResponse.RespondedAt
		respondedAt = &t
	}

	query := `UPDATE damage_claims
	          SET status=$1, renter_action=$2, counter_offer_cents=$3, renter_notes=$4, responded_at=$5,
	              awarded_cents=$6, resolution_notes=$7, resolved_at=$8
	          WHERE id=$9`
	_, err := r.db.ExecContext(ctx, query,
		c.Status, action, counter, renterNotes, respondedAt,
		c.AwardedCents, c.ResolutionNotes, c.ResolvedAt, c.ID,
	)
	return err
}
