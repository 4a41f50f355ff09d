package domain

import "time"

type ResourceStatus string

const (
	ResourceStatusActive   ResourceStatus = "ACTIVE"
	ResourceStatusUnlisted ResourceStatus = "UNLISTED"
)

type Resource struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"owner_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	DailyRateCents int64  `json:"daily_rate_cents"`
	DepositCents   int64  `json:"deposit_cents"`
	// ClaimWindowHours overrides the platform default claim window for this
	// resource. Zero means the default applies.
	ClaimWindowHours int            `json:"claim_window_hours,omitempty"`
	Status           ResourceStatus `json:"status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
