package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"

	"github.com/lib/pq"
)

type inspectionRepository struct {
	db *sql.DB
}

func NewInspectionRepository(db *sql.DB) repository.InspectionRepository {
	return &inspectionRepository{db: db}
}

func (r *inspectionRepository) Create(ctx context.Context, i *domain.Inspection) error {
	checklist, err := json.Marshal(i.Checklist)
	if err != nil {
		return err
	}

	query := `INSERT INTO inspections (booking_id, type, recorded_at, verified_by_owner, verified_by_renter, auto_accepted, photos, checklist, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	now := time.Now().UTC()
	err = r.db.QueryRowContext(ctx, query,
		i.BookingID, i.Type, i.RecordedAt, i.VerifiedByOwner, i.VerifiedByRenter, i.AutoAccepted,
		pq.Array(i.Photos), checklist, now,
	).Scan(&i.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			// One inspection per (booking, type).
			return domain.ErrInvalidTransition
		}
		return err
	}
	i.CreatedAt = now
	return nil
}

func (r *inspectionRepository) GetByBookingAndType(ctx context.Context, bookingID int64, typ domain.InspectionType) (*domain.Inspection, error) {
	query := `SELECT id, booking_id, type, recorded_at, verified_by_owner, verified_by_renter, auto_accepted, photos, checklist, created_at
	          FROM inspections WHERE booking_id = $1 AND type = $2`

	i := &domain.Inspection{}
	var checklist []byte
	err := r.db.QueryRowContext(ctx, query, bookingID, typ).Scan(
		&i.ID, &i.BookingID, &i.Type, &i.RecordedAt, &i.VerifiedByOwner, &i.VerifiedByRenter, &i.AutoAccepted,
		pq.Array(&i.Photos), &checklist, &i.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if len(checklist) > 0 {
		if err := json.Unmarshal(checklist, &i.Checklist); err != nil {
			return nil, err
		}
	}
	return i, nil
}

func (r *inspectionRepository) Update(ctx context.Context, i *domain.Inspection) error {
	checklist, err := json.Marshal(i.Checklist)
	if err != nil {
		return err
	}

	query := `UPDATE inspections SET verified_by_owner=$1, verified_by_renter=$2, auto_accepted=$3, photos=$4, checklist=$5, recorded_at=$6 WHERE id=$7`
	_, err = r.db.ExecContext(ctx, query,
		i.VerifiedByOwner, i.VerifiedByRenter, i.AutoAccepted, pq.Array(i.Photos), checklist, i.RecordedAt, i.ID,
	)
	return err
}
