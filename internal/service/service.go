package service

import (
	"context"
	"time"

	"gearshare-backend/internal/claims"
	"gearshare-backend/internal/domain"
)

type QuoteService interface {
	// Quote prices the range and returns every conflict that would block
	// booking it. Conflicts are data, not errors; a non-empty list with a
	// valid breakdown is a normal outcome.
	Quote(ctx context.Context, resourceID int64, startDate, endDate time.Time, tier domain.InsuranceTier) (*domain.PricingBreakdown, []domain.Conflict, error)
	CheckAvailability(ctx context.Context, resourceID int64, startDate, endDate time.Time) ([]domain.Conflict, error)
}

type BookingService interface {
	RequestBooking(ctx context.Context, renterID, resourceID int64, startDate, endDate time.Time, tier domain.InsuranceTier) (*domain.Booking, []domain.Conflict, error)
	// ApproveBooking re-checks conflicts against the live calendar before
	// moving PENDING to APPROVED; a non-empty conflict list means the
	// booking stayed pending.
	ApproveBooking(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, []domain.Conflict, error)
	DeclineBooking(ctx context.Context, ownerID, bookingID int64, reason string) (*domain.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID int64, reason string, refundEligible bool) (*domain.Booking, error)
	// ActivateBooking authorizes the payment, opens the escrow and moves
	// APPROVED to ACTIVE.
	ActivateBooking(ctx context.Context, renterID, bookingID int64, now time.Time) (*domain.Booking, *domain.Payment, error)
	CompleteBooking(ctx context.Context, ownerID, bookingID int64, now time.Time) (*domain.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error)
	ListRentals(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
	ListLendings(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error)
}

type EscrowService interface {
	// Hold authorizes the full charge (total plus deposit) through the
	// payment processor and opens the escrow record in HELD.
	Hold(ctx context.Context, b *domain.Booking) (*domain.Payment, error)
	// RequestRelease is the owner-initiated release path.
	RequestRelease(ctx context.Context, ownerID, bookingID int64, now time.Time) (*domain.Payment, error)
	// Release pays the held escrow out to the owner and refunds the deposit.
	// It is rejected while the release buffer has not elapsed or an open
	// damage claim exists.
	Release(ctx context.Context, bookingID int64, now time.Time) (*domain.Payment, error)
	// Dispute flips held escrow to DISPUTED. Claim filing calls this before
	// inserting the claim so that a filing always beats a racing release.
	Dispute(ctx context.Context, bookingID int64) (*domain.Payment, error)
	// Resolve settles disputed escrow per an awarded damage amount: the
	// award draws from escrow first, then from the deposit; the remainder
	// returns to the renter.
	Resolve(ctx context.Context, bookingID int64, awardCents int64, now time.Time) (*domain.Payment, error)
	// RefundOnCancellation settles held escrow for a cancelled booking. The
	// refund-eligibility decision is made outside this system and passed in.
	RefundOnCancellation(ctx context.Context, bookingID int64, refundEligible bool) (*domain.Payment, error)
	GetSettlement(ctx context.Context, userID, bookingID int64) (*domain.Payment, []domain.Payout, error)
}

type InspectionService interface {
	// RecordInspection creates the pickup or return inspection on first
	// call and records the calling party's verification on either call.
	RecordInspection(ctx context.Context, actorID, bookingID int64, typ domain.InspectionType, checklist []domain.ChecklistItem, photos []string, now time.Time) (*domain.Inspection, error)
}

type ClaimService interface {
	FileClaim(ctx context.Context, ownerID, bookingID int64, estimatedCostCents int64, description string, photos []string, now time.Time) (*domain.DamageClaim, error)
	RespondToClaim(ctx context.Context, renterID, bookingID int64, action domain.ClaimAction, counterOfferCents *int64, notes string, now time.Time) (*domain.DamageClaim, error)
	ResolveClaim(ctx context.Context, actorID, bookingID int64, awardCents int64, notes string, now time.Time) (*domain.DamageClaim, *domain.Payment, error)
	EvaluateWindow(ctx context.Context, userID, bookingID int64, now time.Time) (*claims.Window, error)
}

// PaymentProcessor is the external charge-authorization collaborator. It
// returns an opaque processor reference for the authorized amount.
type PaymentProcessor interface {
	Authorize(ctx context.Context, bookingID int64, amountCents int64) (string, error)
}

// EmailService notifies the counterparty about lifecycle and settlement
// events. Sends are best-effort; failures are logged and never fail the
// transaction that triggered them.
type EmailService interface {
	SendBookingRequestNotification(ctx context.Context, ownerEmail, renterName, resourceName, startDate, endDate string) error
	SendBookingApprovalNotification(ctx context.Context, renterEmail, resourceName string) error
	SendBookingDeclineNotification(ctx context.Context, renterEmail, resourceName, reason string) error
	SendBookingCancellationNotification(ctx context.Context, recipientEmail, cancellerName, resourceName, reason string) error
	SendBookingActivationNotification(ctx context.Context, ownerEmail, renterName, resourceName string) error
	SendReturnRecordedNotification(ctx context.Context, ownerEmail, resourceName string, deadline time.Time) error
	SendReturnReminderNotification(ctx context.Context, renterEmail, resourceName string) error
	SendClaimFiledNotification(ctx context.Context, renterEmail, resourceName string, estimatedCostCents int64) error
	SendClaimCounterNotification(ctx context.Context, ownerEmail, resourceName string, counterOfferCents int64) error
	SendClaimResolvedNotification(ctx context.Context, recipientEmail, resourceName string, awardCents int64) error
	SendPayoutNotification(ctx context.Context, ownerEmail, resourceName string, amountCents int64) error
	SendRefundNotification(ctx context.Context, renterEmail, resourceName string, amountCents int64) error
}
