package domain

import "time"

type EscrowStatus string

const (
	EscrowStatusHeld     EscrowStatus = "HELD"
	EscrowStatusReleased EscrowStatus = "RELEASED"
	EscrowStatusRefunded EscrowStatus = "REFUNDED"
	EscrowStatusDisputed EscrowStatus = "DISPUTED"
)

// Payment is the escrow record for a booking, created once the payment
// processor authorizes the charge. There is exactly one per booking.
type Payment struct {
	ID           int64  `json:"id"`
	BookingID    int64  `json:"booking_id"`
	ProcessorRef string `json:"processor_ref"`
	// TotalCents is the full amount authorized: rental cost plus deposit.
	TotalCents int64 `json:"total_cents"`
	// EscrowCents is the portion held in escrow: subtotal + insurance.
	// The service fee is platform revenue and is never escrowed; the
	// deposit is tracked separately in DepositCents.
	EscrowCents     int64        `json:"escrow_cents"`
	ServiceFeeCents int64        `json:"service_fee_cents"`
	DepositCents    int64        `json:"deposit_cents"`
	EscrowStatus    EscrowStatus `json:"escrow_status"`
	// Settlement amounts, written when the escrow reaches a terminal state.
	// OwnerPayoutCents + RenterRefundCents always equals EscrowCents, and
	// DepositWithheldCents + DepositRefundCents always equals DepositCents.
	OwnerPayoutCents     int64      `json:"owner_payout_cents"`
	RenterRefundCents    int64      `json:"renter_refund_cents"`
	DepositWithheldCents int64      `json:"deposit_withheld_cents"`
	DepositRefundCents   int64      `json:"deposit_refund_cents"`
	Version              int64      `json:"version"`
	CreatedAt            time.Time  `json:"created_at"`
	PayoutProcessedAt    *time.Time `json:"payout_processed_at,omitempty"`
}

// Terminal reports whether the escrow has reached a final state.
func (s EscrowStatus) Terminal() bool {
	return s == EscrowStatusReleased || s == EscrowStatusRefunded
}
