package domain

import "time"

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusApproved  BookingStatus = "APPROVED"
	BookingStatusActive    BookingStatus = "ACTIVE"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusDeclined  BookingStatus = "DECLINED"
)

// bookingTransitions lists the permitted status moves. Everything else is
// rejected with ErrInvalidTransition, leaving the booking unchanged.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:  {BookingStatusApproved, BookingStatusDeclined, BookingStatusCancelled},
	BookingStatusApproved: {BookingStatusActive, BookingStatusCancelled},
	BookingStatusActive:   {BookingStatusCompleted},
}

// CanTransitionBooking reports whether a booking may move from one status to
// another. Cancellation is reachable from PENDING and APPROVED only.
func CanTransitionBooking(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BlocksBooking reports whether a booking in this status still occupies its
// date range for availability purposes.
func (s BookingStatus) BlocksBooking() bool {
	switch s {
	case BookingStatusPending, BookingStatusApproved, BookingStatusActive:
		return true
	}
	return false
}

type InsuranceTier string

const (
	InsuranceTierNone    InsuranceTier = "NONE"
	InsuranceTierBasic   InsuranceTier = "BASIC"
	InsuranceTierPremium InsuranceTier = "PREMIUM"
)

type Booking struct {
	ID         int64 `json:"id"`
	ResourceID int64 `json:"resource_id"`
	RenterID   int64 `json:"renter_id"`
	OwnerID    int64 `json:"owner_id"`
	// StartDate is inclusive, EndDate exclusive: a one-night rental has
	// end = start + 1 day. Both are calendar dates at midnight UTC.
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
	// Price snapshot fields, captured at request time. Settlement uses these
	// snapshots, never live resource prices.
	InsuranceTier   InsuranceTier `json:"insurance_tier"`
	DailyRateCents  int64         `json:"daily_rate_cents"`
	SubtotalCents   int64         `json:"subtotal_cents"`
	ServiceFeeCents int64         `json:"service_fee_cents"`
	InsuranceCents  int64         `json:"insurance_cents"`
	DepositCents    int64         `json:"deposit_cents"`
	TotalCents      int64         `json:"total_cents"`
	DeclineReason   string        `json:"decline_reason,omitempty"`
	CancelReason    string        `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	ActivatedAt     *time.Time    `json:"activated_at,omitempty"`
}

// Nights returns the rental length in whole days over the half-open range.
func (b *Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// IsParty reports whether the user is the renter or the owner of the booking.
func (b *Booking) IsParty(userID int64) bool {
	return b.RenterID == userID || b.OwnerID == userID
}
