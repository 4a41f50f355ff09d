package domain

import "time"

type PayoutType string

const (
	PayoutTypeOwnerPayout     PayoutType = "OWNER_PAYOUT"
	PayoutTypeRenterRefund    PayoutType = "RENTER_REFUND"
	PayoutTypeDepositWithheld PayoutType = "DEPOSIT_WITHHELD"
	PayoutTypeDepositRefund   PayoutType = "DEPOSIT_REFUND"
)

// Payout is one leg of a settlement: money leaving escrow toward a party.
// Rows are append-only; a settled payment never produces a second set.
type Payout struct {
	ID          int64      `json:"id"`
	BookingID   int64      `json:"booking_id"`
	PaymentID   int64      `json:"payment_id"`
	RecipientID int64      `json:"recipient_id"`
	Type        PayoutType `json:"type"`
	AmountCents int64      `json:"amount_cents"`
	Reference   string     `json:"reference"`
	CreatedAt   time.Time  `json:"created_at"`
}
