package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/escrow"
	"gearshare-backend/internal/events"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"

	"github.com/google/uuid"
)

type escrowService struct {
	paymentRepo  repository.PaymentRepository
	payoutRepo   repository.PayoutRepository
	bookingRepo  repository.BookingRepository
	claimRepo    repository.ClaimRepository
	resourceRepo repository.ResourceRepository
	userRepo     repository.UserRepository
	processor    PaymentProcessor
	publisher    events.Publisher
	emailSvc     EmailService
	bufferHours  int
}

func NewEscrowService(
	paymentRepo repository.PaymentRepository,
	payoutRepo repository.PayoutRepository,
	bookingRepo repository.BookingRepository,
	claimRepo repository.ClaimRepository,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	processor PaymentProcessor,
	publisher events.Publisher,
	emailSvc EmailService,
	bufferHours int,
) EscrowService {
	return &escrowService{
		paymentRepo:  paymentRepo,
		payoutRepo:   payoutRepo,
		bookingRepo:  bookingRepo,
		claimRepo:    claimRepo,
		resourceRepo: resourceRepo,
		userRepo:     userRepo,
		processor:    processor,
		publisher:    publisher,
		emailSvc:     emailSvc,
		bufferHours:  bufferHours,
	}
}

func (s *escrowService) Hold(ctx context.Context, b *domain.Booking) (*domain.Payment, error) {
	amount := b.TotalCents + b.DepositCents
	ref, err := s.processor.Authorize(ctx, b.ID, amount)
	if err != nil {
		return nil, fmt.Errorf("payment authorization failed: %w", err)
	}

	p := &domain.Payment{
		BookingID:    b.ID,
		ProcessorRef: ref,
		TotalCents:   amount,
		// The service fee is platform revenue, never escrowed; the deposit
		// is held but conserved on its own ledger line.
		EscrowCents:     b.SubtotalCents + b.InsuranceCents,
		ServiceFeeCents: b.ServiceFeeCents,
		DepositCents:    b.DepositCents,
		EscrowStatus:    domain.EscrowStatusHeld,
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Escrow opened", "booking_id", b.ID, "payment_id", p.ID,
		"escrow_cents", p.EscrowCents, "deposit_cents", p.DepositCents)
	return p, nil
}

func (s *escrowService) RequestRelease(ctx context.Context, ownerID, bookingID int64, now time.Time) (*domain.Payment, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	return s.Release(ctx, bookingID, now)
}

func (s *escrowService) Release(ctx context.Context, bookingID int64, now time.Time) (*domain.Payment, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch p.EscrowStatus {
	case domain.EscrowStatusDisputed:
		return nil, domain.ErrDisputeOpen
	case domain.EscrowStatusReleased, domain.EscrowStatusRefunded:
		return nil, fmt.Errorf("escrow already settled as %s: %w", p.EscrowStatus, domain.ErrInvalidTransition)
	}

	claim, err := s.claimRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if claim != nil && claim.Open() {
		return nil, domain.ErrDisputeOpen
	}

	if !escrow.ReleaseEligible(b.EndDate, s.bufferHours, now) {
		return nil, fmt.Errorf("release eligible at %s: %w",
			escrow.ReleaseEligibleAt(b.EndDate, s.bufferHours).Format(time.RFC3339), domain.ErrReleaseNotYetEligible)
	}

	p.EscrowStatus = domain.EscrowStatusReleased
	p.OwnerPayoutCents = p.EscrowCents
	p.RenterRefundCents = 0
	p.DepositWithheldCents = 0
	p.DepositRefundCents = p.DepositCents
	p.PayoutProcessedAt = &now

	if err := s.paymentRepo.Transition(ctx, p, domain.EscrowStatusHeld); err != nil {
		logger.WarnContext(ctx, "Escrow release lost to a concurrent transition", "booking_id", bookingID, "error", err)
		return nil, err
	}
	logger.InfoContext(ctx, "Escrow released", "booking_id", bookingID,
		"owner_payout_cents", p.OwnerPayoutCents, "deposit_refund_cents", p.DepositRefundCents)

	if err := s.settle(ctx, b, p, events.TypeEscrowReleased); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *escrowService) Dispute(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	from := p.EscrowStatus
	next, err := escrow.Transition(from, domain.EscrowStatusDisputed)
	if err != nil {
		return p, fmt.Errorf("escrow is %s: %w", from, err)
	}
	p.EscrowStatus = next

	if err := s.paymentRepo.Transition(ctx, p, from); err != nil {
		logger.WarnContext(ctx, "Escrow dispute lost to a concurrent transition", "booking_id", bookingID, "error", err)
		return nil, err
	}
	logger.InfoContext(ctx, "Escrow disputed", "booking_id", bookingID, "payment_id", p.ID)

	s.publish(ctx, p, events.TypeEscrowDisputed)
	return p, nil
}

func (s *escrowService) Resolve(ctx context.Context, bookingID int64, awardCents int64, now time.Time) (*domain.Payment, error) {
	if awardCents < 0 {
		return nil, domain.ErrInvalidAmount
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if p.EscrowStatus != domain.EscrowStatusDisputed {
		return nil, fmt.Errorf("escrow is %s: %w", p.EscrowStatus, domain.ErrInvalidTransition)
	}

	split, depositDraw := escrow.ResolveAward(p.EscrowCents, p.DepositCents, awardCents)
	if err := escrow.ValidateSplit(p.EscrowCents, split); err != nil {
		return nil, err
	}

	eventType := events.TypeEscrowReleased
	p.EscrowStatus = domain.EscrowStatusReleased
	if split.OwnerCents == 0 {
		// Nothing awarded to the owner; the whole escrow flows back.
		p.EscrowStatus = domain.EscrowStatusRefunded
		eventType = events.TypeEscrowRefunded
	}
	p.OwnerPayoutCents = split.OwnerCents
	p.RenterRefundCents = split.RenterCents
	p.DepositWithheldCents = depositDraw
	p.DepositRefundCents = p.DepositCents - depositDraw
	p.PayoutProcessedAt = &now

	if err := s.paymentRepo.Transition(ctx, p, domain.EscrowStatusDisputed); err != nil {
		logger.WarnContext(ctx, "Escrow resolution lost to a concurrent transition", "booking_id", bookingID, "error", err)
		return nil, err
	}
	logger.InfoContext(ctx, "Escrow resolved", "booking_id", bookingID,
		"owner_payout_cents", p.OwnerPayoutCents, "renter_refund_cents", p.RenterRefundCents,
		"deposit_withheld_cents", p.DepositWithheldCents)

	if err := s.settle(ctx, b, p, eventType); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *escrowService) RefundOnCancellation(ctx context.Context, bookingID int64, refundEligible bool) (*domain.Payment, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if p.EscrowStatus != domain.EscrowStatusHeld {
		return nil, domain.ErrImmutableState
	}

	now := time.Now().UTC()
	eventType := events.TypeEscrowRefunded
	if refundEligible {
		p.EscrowStatus = domain.EscrowStatusRefunded
		p.OwnerPayoutCents = 0
		p.RenterRefundCents = p.EscrowCents
	} else {
		// Outside the refund policy the rental charge stays with the owner.
		p.EscrowStatus = domain.EscrowStatusReleased
		p.OwnerPayoutCents = p.EscrowCents
		p.RenterRefundCents = 0
		eventType = events.TypeEscrowReleased
	}
	// The deposit secures the equipment, not the reservation; it always
	// returns on cancellation.
	p.DepositWithheldCents = 0
	p.DepositRefundCents = p.DepositCents
	p.PayoutProcessedAt = &now

	if err := s.paymentRepo.Transition(ctx, p, domain.EscrowStatusHeld); err != nil {
		logger.WarnContext(ctx, "Cancellation settlement lost to a concurrent transition", "booking_id", bookingID, "error", err)
		return nil, err
	}
	logger.InfoContext(ctx, "Escrow settled on cancellation", "booking_id", bookingID,
		"refund_eligible", refundEligible, "renter_refund_cents", p.RenterRefundCents)

	if err := s.settle(ctx, b, p, eventType); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *escrowService) GetSettlement(ctx context.Context, userID, bookingID int64) (*domain.Payment, []domain.Payout, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if !b.IsParty(userID) {
		return nil, nil, domain.ErrUnauthorized
	}

	p, err := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	payouts, err := s.payoutRepo.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return p, payouts, nil
}

// settle records the payout legs for a settled payment, publishes the
// settlement event and notifies the parties. The escrow transition has
// already committed when this runs; a failed payout insert is surfaced so the
// caller never reports a settlement whose legs were not recorded.
func (s *escrowService) settle(ctx context.Context, b *domain.Booking, p *domain.Payment, eventType string) error {
	legs := []struct {
		typ         domain.PayoutType
		recipientID int64
		amount      int64
	}{
		{domain.PayoutTypeOwnerPayout, b.OwnerID, p.OwnerPayoutCents},
		{domain.PayoutTypeRenterRefund, b.RenterID, p.RenterRefundCents},
		{domain.PayoutTypeDepositWithheld, b.OwnerID, p.DepositWithheldCents},
		{domain.PayoutTypeDepositRefund, b.RenterID, p.DepositRefundCents},
	}
	for _, leg := range legs {
		if leg.amount == 0 {
			continue
		}
		payout := &domain.Payout{
			BookingID:   b.ID,
			PaymentID:   p.ID,
			RecipientID: leg.recipientID,
			Type:        leg.typ,
			AmountCents: leg.amount,
			Reference:   uuid.New().String(),
		}
		if err := s.payoutRepo.Create(ctx, payout); err != nil {
			logger.ErrorContext(ctx, "Payout record failed", "booking_id", b.ID,
				"type", leg.typ, "amount_cents", leg.amount, "error", err)
			return err
		}
	}

	s.publish(ctx, p, eventType)
	s.notifySettlement(ctx, b, p)
	return nil
}

func (s *escrowService) publish(ctx context.Context, p *domain.Payment, eventType string) {
	event := &events.SettlementEvent{
		Type:                 eventType,
		BookingID:            p.BookingID,
		PaymentID:            p.ID,
		EscrowCents:          p.EscrowCents,
		OwnerPayoutCents:     p.OwnerPayoutCents,
		RenterRefundCents:    p.RenterRefundCents,
		DepositWithheldCents: p.DepositWithheldCents,
		DepositRefundCents:   p.DepositRefundCents,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		logger.ErrorContext(ctx, "Settlement event publish failed", "booking_id", p.BookingID,
			"type", eventType, "error", err)
	}
}

func (s *escrowService) notifySettlement(ctx context.Context, b *domain.Booking, p *domain.Payment) {
	res, _ := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if res == nil {
		return
	}
	if p.OwnerPayoutCents > 0 {
		if owner, _ := s.userRepo.GetByID(ctx, b.OwnerID); owner != nil {
			_ = s.emailSvc.SendPayoutNotification(ctx, owner.Email, res.Name, p.OwnerPayoutCents+p.DepositWithheldCents)
		}
	}
	if refund := p.RenterRefundCents + p.DepositRefundCents; refund > 0 {
		if renter, _ := s.userRepo.GetByID(ctx, b.RenterID); renter != nil {
			_ = s.emailSvc.SendRefundNotification(ctx, renter.Email, res.Name, refund)
		}
	}
}
