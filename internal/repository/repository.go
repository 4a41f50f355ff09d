package repository

import (
	"context"
	"time"

	"gearshare-backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type ResourceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	// ListRateOverrides returns the overrides touching [from, to).
	ListRateOverrides(ctx context.Context, resourceID int64, from, to time.Time) ([]domain.RateOverride, error)
}

type BookingRepository interface {
	// Create inserts the booking and fills in its id. A concurrent insert
	// that collides on the resource's date range surfaces as
	// domain.ErrBookingOverlap via the overlap exclusion constraint.
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	// ListBlocking returns the bookings that still occupy the resource's
	// calendar (PENDING, APPROVED, ACTIVE), the snapshot conflict checks
	// run against.
	ListBlocking(ctx context.Context, resourceID int64) ([]domain.Booking, error)
	// UpdateStatus moves the booking between statuses with a guard on the
	// expected current status. domain.ErrInvalidTransition is returned when
	// no row matched, meaning another writer got there first.
	UpdateStatus(ctx context.Context, id int64, from, to domain.BookingStatus, reason string) error
	// Activate is the APPROVED to ACTIVE move; it also stamps activated_at.
	Activate(ctx context.Context, id int64, at time.Time) error
	ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListByOwner(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *domain.Payment) error
	GetByID(ctx context.Context, id int64) (*domain.Payment, error)
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	// Transition persists the payment's new escrow status and settlement
	// amounts, guarded by the expected current status and version. When no
	// row matches, another transition committed first and
	// domain.ErrEscrowConflict is returned; the caller must re-read and
	// re-decide, never blind-retry.
	Transition(ctx context.Context, p *domain.Payment, from domain.EscrowStatus) error
}

type InspectionRepository interface {
	// Create inserts the inspection; a second inspection of the same type
	// for the booking surfaces as domain.ErrInvalidTransition.
	Create(ctx context.Context, i *domain.Inspection) error
	GetByBookingAndType(ctx context.Context, bookingID int64, typ domain.InspectionType) (*domain.Inspection, error)
	// Update persists the verification and auto-accept flags.
	Update(ctx context.Context, i *domain.Inspection) error
}

type ClaimRepository interface {
	// Create inserts the claim. The unique booking constraint surfaces a
	// duplicate as domain.ErrClaimExists.
	Create(ctx context.Context, c *domain.DamageClaim) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.DamageClaim, error)
	Update(ctx context.Context, c *domain.DamageClaim) error
}

type PayoutRepository interface {
	Create(ctx context.Context, p *domain.Payout) error
	ListByBookingID(ctx context.Context, bookingID int64) ([]domain.Payout, error)
}
