package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gearshare-backend/internal/availability"
	"gearshare-backend/internal/claims"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"
)

type bookingService struct {
	bookingRepo    repository.BookingRepository
	resourceRepo   repository.ResourceRepository
	userRepo       repository.UserRepository
	paymentRepo    repository.PaymentRepository
	inspectionRepo repository.InspectionRepository
	resolver       *availability.Resolver
	guard          *claims.Guard
	quoteSvc       QuoteService
	escrowSvc      EscrowService
	emailSvc       EmailService
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
	inspectionRepo repository.InspectionRepository,
	resolver *availability.Resolver,
	guard *claims.Guard,
	quoteSvc QuoteService,
	escrowSvc EscrowService,
	emailSvc EmailService,
) BookingService {
	return &bookingService{
		bookingRepo:    bookingRepo,
		resourceRepo:   resourceRepo,
		userRepo:       userRepo,
		paymentRepo:    paymentRepo,
		inspectionRepo: inspectionRepo,
		resolver:       resolver,
		guard:          guard,
		quoteSvc:       quoteSvc,
		escrowSvc:      escrowSvc,
		emailSvc:       emailSvc,
	}
}

func (s *bookingService) RequestBooking(ctx context.Context, renterID, resourceID int64, startDate, endDate time.Time, tier domain.InsuranceTier) (*domain.Booking, []domain.Conflict, error) {
	res, err := s.resourceRepo.GetByID(ctx, resourceID)
	if err != nil {
		return nil, nil, err
	}
	if res.OwnerID == renterID {
		return nil, nil, fmt.Errorf("cannot book your own resource: %w", domain.ErrUnauthorized)
	}

	breakdown, conflicts, err := s.quoteSvc.Quote(ctx, resourceID, startDate, endDate, tier)
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return nil, conflicts, nil
	}

	b := &domain.Booking{
		ResourceID:      resourceID,
		RenterID:        renterID,
		OwnerID:         res.OwnerID,
		StartDate:       startDate,
		EndDate:         endDate,
		Status:          domain.BookingStatusPending,
		InsuranceTier:   tier,
		DailyRateCents:  breakdown.DailyRateCents,
		SubtotalCents:   breakdown.SubtotalCents,
		ServiceFeeCents: breakdown.ServiceFeeCents,
		InsuranceCents:  breakdown.InsuranceCents,
		DepositCents:    breakdown.DepositCents,
		TotalCents:      breakdown.TotalCents,
	}

	if err := s.bookingRepo.Create(ctx, b); err != nil {
		if !errors.Is(err, domain.ErrBookingOverlap) {
			return nil, nil, err
		}
		// Lost an insert race: another booking for these dates committed
		// between the conflict check and our insert. Re-check once against
		// the fresh snapshot and report whatever it finds as data.
		logger.WarnContext(ctx, "Booking insert lost an overlap race, re-checking", "resource_id", resourceID)
		conflicts, err := s.quoteConflictsRetry(ctx, b)
		if err != nil {
			return nil, nil, err
		}
		if len(conflicts) > 0 {
			return nil, conflicts, nil
		}
	}

	s.notifyRequested(ctx, b, res)
	return b, nil, nil
}

// quoteConflictsRetry re-runs the conflict check after a lost insert race and
// retries the insert once when the calendar looks clear again. A second
// constraint rejection is surfaced as a plain overlap conflict.
func (s *bookingService) quoteConflictsRetry(ctx context.Context, b *domain.Booking) ([]domain.Conflict, error) {
	lateOverlap := []domain.Conflict{{
		Type:    domain.ConflictTypeOverlap,
		Message: "dates were booked by another request",
	}}

	conflicts, err := s.quoteSvc.CheckAvailability(ctx, b.ResourceID, b.StartDate, b.EndDate)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return conflicts, nil
	}

	err = s.bookingRepo.Create(ctx, b)
	if errors.Is(err, domain.ErrBookingOverlap) {
		return lateOverlap, nil
	}
	return nil, err
}

func (s *bookingService) ApproveBooking(ctx context.Context, ownerID, bookingID int64) (*domain.Booking, []domain.Conflict, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if b.OwnerID != ownerID {
		return nil, nil, domain.ErrUnauthorized
	}
	if b.Status != domain.BookingStatusPending {
		return nil, nil, fmt.Errorf("booking is %s: %w", b.Status, domain.ErrInvalidTransition)
	}

	// Another booking may have slipped in since the request was made;
	// re-check the calendar with this booking excluded from the snapshot.
	conflicts, err := s.recheckConflicts(ctx, b)
	if err != nil {
		return nil, nil, err
	}
	if len(conflicts) > 0 {
		return b, conflicts, nil
	}

	if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.BookingStatusPending, domain.BookingStatusApproved, ""); err != nil {
		return nil, nil, err
	}
	b.Status = domain.BookingStatusApproved

	s.notifyParty(ctx, b.RenterID, b.ResourceID, func(email, name string) error {
		return s.emailSvc.SendBookingApprovalNotification(ctx, email, name)
	})
	return b, nil, nil
}

func (s *bookingService) recheckConflicts(ctx context.Context, b *domain.Booking) ([]domain.Conflict, error) {
	blocking, err := s.bookingRepo.ListBlocking(ctx, b.ResourceID)
	if err != nil {
		return nil, err
	}
	others := blocking[:0]
	for _, existing := range blocking {
		if existing.ID != b.ID {
			others = append(others, existing)
		}
	}

	conflicts := s.resolver.CheckConflicts(b.ResourceID, b.StartDate, b.EndDate, others)

	overrides, err := s.resourceRepo.ListRateOverrides(ctx, b.ResourceID, b.StartDate, b.EndDate)
	if err != nil {
		return nil, err
	}
	return append(conflicts, s.resolver.CheckCalendar(b.StartDate, b.EndDate, overrides)...), nil
}

func (s *bookingService) DeclineBooking(ctx context.Context, ownerID, bookingID int64, reason string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}

	if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.BookingStatusPending, domain.BookingStatusDeclined, reason); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusDeclined
	b.DeclineReason = reason

	s.notifyParty(ctx, b.RenterID, b.ResourceID, func(email, name string) error {
		return s.emailSvc.SendBookingDeclineNotification(ctx, email, name, reason)
	})
	return b, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID, bookingID int64, reason string, refundEligible bool) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(userID) {
		return nil, domain.ErrUnauthorized
	}

	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if p != nil && p.EscrowStatus != domain.EscrowStatusHeld {
		// Money already moved or is under dispute; the booking is frozen.
		return nil, domain.ErrImmutableState
	}
	if !domain.CanTransitionBooking(b.Status, domain.BookingStatusCancelled) {
		return nil, fmt.Errorf("booking is %s: %w", b.Status, domain.ErrInvalidTransition)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, b.ID, b.Status, domain.BookingStatusCancelled, reason); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusCancelled
	b.CancelReason = reason

	if p != nil {
		if _, err := s.escrowSvc.RefundOnCancellation(ctx, bookingID, refundEligible); err != nil {
			logger.ErrorContext(ctx, "Escrow settlement failed for cancelled booking",
				"booking_id", bookingID, "refund_eligible", refundEligible, "error", err)
			return nil, err
		}
	}

	// The counterparty gets the cancellation notice.
	recipientID := b.OwnerID
	if userID == b.OwnerID {
		recipientID = b.RenterID
	}
	canceller, _ := s.userRepo.GetByID(ctx, userID)
	if canceller != nil {
		s.notifyParty(ctx, recipientID, b.ResourceID, func(email, name string) error {
			return s.emailSvc.SendBookingCancellationNotification(ctx, email, canceller.Name, name, reason)
		})
	}
	return b, nil
}

func (s *bookingService) ActivateBooking(ctx context.Context, renterID, bookingID int64, now time.Time) (*domain.Booking, *domain.Payment, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if b.RenterID != renterID {
		return nil, nil, domain.ErrUnauthorized
	}
	if b.Status != domain.BookingStatusApproved {
		return nil, nil, fmt.Errorf("booking is %s: %w", b.Status, domain.ErrInvalidTransition)
	}

	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	switch {
	case err == nil:
		// A previous activation attempt authorized the charge but did not
		// finish; reuse its escrow record rather than charging twice.
		if p.EscrowStatus != domain.EscrowStatusHeld {
			return nil, nil, domain.ErrImmutableState
		}
	case errors.Is(err, domain.ErrNotFound):
		p, err = s.escrowSvc.Hold(ctx, b)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, err
	}

	if err := s.bookingRepo.Activate(ctx, b.ID, now); err != nil {
		return nil, nil, err
	}
	b.Status = domain.BookingStatusActive
	b.ActivatedAt = &now

	renter, _ := s.userRepo.GetByID(ctx, renterID)
	if renter != nil {
		s.notifyParty(ctx, b.OwnerID, b.ResourceID, func(email, name string) error {
			return s.emailSvc.SendBookingActivationNotification(ctx, email, renter.Name, name)
		})
	}
	return b, p, nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, ownerID, bookingID int64, now time.Time) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	if b.Status != domain.BookingStatusActive {
		return nil, fmt.Errorf("booking is %s: %w", b.Status, domain.ErrInvalidTransition)
	}

	ret, err := s.inspectionRepo.GetByBookingAndType(ctx, bookingID, domain.InspectionTypeReturn)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrReturnNotConfirmed
		}
		return nil, err
	}
	if !ret.ReturnConfirmed() && !s.windowLapsed(ctx, b, ret, now) {
		return nil, domain.ErrReturnNotConfirmed
	}

	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !p.EscrowStatus.Terminal() {
		return nil, domain.ErrEscrowNotSettled
	}

	if err := s.bookingRepo.UpdateStatus(ctx, b.ID, domain.BookingStatusActive, domain.BookingStatusCompleted, ""); err != nil {
		return nil, err
	}
	b.Status = domain.BookingStatusCompleted
	return b, nil
}

// windowLapsed reports whether the claim window has lapsed for a return the
// sweep has not stamped yet. Lapse counts as acceptance even before the sweep
// records it.
func (s *bookingService) windowLapsed(ctx context.Context, b *domain.Booking, ret *domain.Inspection, now time.Time) bool {
	res, err := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if err != nil {
		return false
	}
	return s.guard.Evaluate(ret, res.ClaimWindowHours, now).AutoAccepted
}

func (s *bookingService) GetBooking(ctx context.Context, userID, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(userID) {
		return nil, domain.ErrUnauthorized
	}
	return b, nil
}

func (s *bookingService) ListRentals(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *bookingService) ListLendings(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	return s.bookingRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}

func (s *bookingService) notifyRequested(ctx context.Context, b *domain.Booking, res *domain.Resource) {
	owner, _ := s.userRepo.GetByID(ctx, b.OwnerID)
	renter, _ := s.userRepo.GetByID(ctx, b.RenterID)
	if owner == nil || renter == nil {
		return
	}
	err := s.emailSvc.SendBookingRequestNotification(ctx, owner.Email, renter.Name, res.Name,
		b.StartDate.Format("2006-01-02"), b.EndDate.Format("2006-01-02"))
	if err != nil {
		logger.WarnContext(ctx, "Booking request notification failed", "booking_id", b.ID, "error", err)
	}
}

// notifyParty looks up the recipient and the resource name, then runs the
// send. Lookup and send failures are logged, never surfaced.
func (s *bookingService) notifyParty(ctx context.Context, userID, resourceID int64, send func(email, resourceName string) error) {
	user, _ := s.userRepo.GetByID(ctx, userID)
	res, _ := s.resourceRepo.GetByID(ctx, resourceID)
	if user == nil || res == nil {
		return
	}
	if err := send(user.Email, res.Name); err != nil {
		logger.WarnContext(ctx, "Booking notification failed", "user_id", userID, "error", err)
	}
}
