package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type resourceRepository struct {
	db *sql.DB
}

func NewResourceRepository(db *sql.DB) repository.ResourceRepository {
	return &resourceRepository{db: db}
}

func (r *resourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	query := `SELECT id, owner_id, name, description, daily_rate_cents, deposit_cents, claim_window_hours, status, created_at, updated_at
	          FROM resources WHERE id = $1`
	res := &domain.Resource{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.OwnerID, &res.Name, &res.Description, &res.DailyRateCents, &res.DepositCents,
		&res.ClaimWindowHours, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *resourceRepository) ListRateOverrides(ctx context.Context, resourceID int64, from, to time.Time) ([]domain.RateOverride, error) {
	query := `SELECT resource_id, date, is_available, custom_rate_cents
	          FROM rate_overrides WHERE resource_id = $1 AND date >= $2 AND date < $3
	          ORDER BY date`
	rows, err := r.db.QueryContext(ctx, query, resourceID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var overrides []domain.RateOverride
	for rows.Next() {
		var o domain.RateOverride
		if err := rows.Scan(&o.ResourceID, &o.Date, &o.IsAvailable, &o.CustomRateCents); err != nil {
			return nil, err
		}
		overrides = append(overrides, o)
	}
	return overrides, rows.Err()
}
