package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gearshare-backend/internal/claims"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"
)

type claimService struct {
	claimRepo      repository.ClaimRepository
	bookingRepo    repository.BookingRepository
	resourceRepo   repository.ResourceRepository
	inspectionRepo repository.InspectionRepository
	paymentRepo    repository.PaymentRepository
	userRepo       repository.UserRepository
	guard          *claims.Guard
	escrowSvc      EscrowService
	emailSvc       EmailService
}

func NewClaimService(
	claimRepo repository.ClaimRepository,
	bookingRepo repository.BookingRepository,
	resourceRepo repository.ResourceRepository,
	inspectionRepo repository.InspectionRepository,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	guard *claims.Guard,
	escrowSvc EscrowService,
	emailSvc EmailService,
) ClaimService {
	return &claimService{
		claimRepo:      claimRepo,
		bookingRepo:    bookingRepo,
		resourceRepo:   resourceRepo,
		inspectionRepo: inspectionRepo,
		paymentRepo:    paymentRepo,
		userRepo:       userRepo,
		guard:          guard,
		escrowSvc:      escrowSvc,
		emailSvc:       emailSvc,
	}
}

func (s *claimService) EvaluateWindow(ctx context.Context, userID, bookingID int64, now time.Time) (*claims.Window, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(userID) {
		return nil, domain.ErrUnauthorized
	}
	res, err := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if err != nil {
		return nil, err
	}

	ret, err := s.inspectionRepo.GetByBookingAndType(ctx, bookingID, domain.InspectionTypeReturn)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	w := s.guard.Evaluate(ret, res.ClaimWindowHours, now)

	// A filed claim supersedes whatever the guard derived: the window is
	// consumed and the lapse can no longer auto-accept anything.
	claim, err := s.claimRepo.GetByBookingID(ctx, bookingID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if claim != nil {
		w.CanFileClaim = false
		w.AutoAccepted = false
		w.Reason = claims.ReasonClaimFiled
	}
	return &w, nil
}

func (s *claimService) FileClaim(ctx context.Context, ownerID, bookingID int64, estimatedCostCents int64, description string, photos []string, now time.Time) (*domain.DamageClaim, error) {
	if estimatedCostCents <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.OwnerID != ownerID {
		return nil, domain.ErrUnauthorized
	}
	res, err := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if err != nil {
		return nil, err
	}

	ret, err := s.inspectionRepo.GetByBookingAndType(ctx, bookingID, domain.InspectionTypeReturn)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	switch w := s.guard.Evaluate(ret, res.ClaimWindowHours, now); w.Reason {
	case claims.ReasonReturnNotConfirmed:
		return nil, domain.ErrReturnNotConfirmed
	case claims.ReasonOwnerConfirmed:
		return nil, domain.ErrWindowClosed
	case claims.ReasonWindowLapsed:
		// Lapse is advisory until the release sweep runs. Filing stays
		// possible while the funds are still held; the escrow check below
		// rejects it once they are not.
	}

	if existing, err := s.claimRepo.GetByBookingID(ctx, bookingID); err == nil && existing != nil {
		return nil, domain.ErrClaimExists
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	// Flip the escrow before inserting the claim: once the record reads
	// DISPUTED no release sweep can observe HELD, so a filing that commits
	// first always beats the sweep.
	if _, err := s.escrowSvc.Dispute(ctx, bookingID); err != nil {
		return nil, s.mapDisputeError(ctx, bookingID, err)
	}

	c := &domain.DamageClaim{
		BookingID:          bookingID,
		EstimatedCostCents: estimatedCostCents,
		EvidencePhotos:     photos,
		Description:        description,
		Status:             domain.ClaimStatusPending,
		FiledAt:            now,
	}
	if err := s.claimRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Damage claim filed", "booking_id", bookingID,
		"claim_id", c.ID, "estimated_cost_cents", estimatedCostCents)

	if renter, _ := s.userRepo.GetByID(ctx, b.RenterID); renter != nil {
		_ = s.emailSvc.SendClaimFiledNotification(ctx, renter.Email, res.Name, estimatedCostCents)
	}
	return c, nil
}

// mapDisputeError translates a failed held-to-disputed flip into the claim
// filing outcome it implies: funds already settled mean the window is gone,
// an existing dispute means a claim beat this one.
func (s *claimService) mapDisputeError(ctx context.Context, bookingID int64, err error) error {
	if !errors.Is(err, domain.ErrEscrowConflict) && !errors.Is(err, domain.ErrInvalidTransition) {
		return err
	}
	p, pErr := s.paymentRepo.GetByBookingID(ctx, bookingID)
	if pErr != nil {
		return err
	}
	switch p.EscrowStatus {
	case domain.EscrowStatusDisputed:
		return domain.ErrClaimExists
	case domain.EscrowStatusReleased, domain.EscrowStatusRefunded:
		return fmt.Errorf("funds have settled: %w", domain.ErrWindowClosed)
	}
	return err
}

func (s *claimService) RespondToClaim(ctx context.Context, renterID, bookingID int64, action domain.ClaimAction, counterOfferCents *int64, notes string, now time.Time) (*domain.DamageClaim, error) {
	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.RenterID != renterID {
		return nil, domain.ErrUnauthorized
	}

	c, err := s.claimRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if c.Status != domain.ClaimStatusPending {
		return nil, fmt.Errorf("claim is %s: %w", c.Status, domain.ErrInvalidTransition)
	}

	c.RenterResponse = &domain.RenterResponse{
		Action:      action,
		Notes:       notes,
		RespondedAt: now,
	}

	switch action {
	case domain.ClaimActionAccept:
		c.Status = domain.ClaimStatusAccepted
		if err := s.claimRepo.Update(ctx, c); err != nil {
			return nil, err
		}
		// Acceptance settles immediately at the owner's estimate.
		if _, err := s.resolve(ctx, b, c, c.EstimatedCostCents, "renter accepted the damage claim", now); err != nil {
			return nil, err
		}
	case domain.ClaimActionCounter:
		if counterOfferCents == nil || *counterOfferCents < 0 {
			return nil, domain.ErrInvalidAmount
		}
		c.RenterResponse.CounterOfferCents = counterOfferCents
		c.Status = domain.ClaimStatusDisputed
		if err := s.claimRepo.Update(ctx, c); err != nil {
			return nil, err
		}
		s.notifyOwner(ctx, b, func(email, resName string) error {
			return s.emailSvc.SendClaimCounterNotification(ctx, email, resName, *counterOfferCents)
		})
	case domain.ClaimActionEscalate:
		c.Status = domain.ClaimStatusEscalated
		if err := s.claimRepo.Update(ctx, c); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown claim action %q", action)
	}

	logger.InfoContext(ctx, "Claim response recorded", "booking_id", bookingID, "action", action, "status", c.Status)
	return c, nil
}

func (s *claimService) ResolveClaim(ctx context.Context, actorID, bookingID int64, awardCents int64, notes string, now time.Time) (*domain.DamageClaim, *domain.Payment, error) {
	if awardCents < 0 {
		return nil, nil, domain.ErrInvalidAmount
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if !b.IsParty(actorID) {
		return nil, nil, domain.ErrUnauthorized
	}

	c, err := s.claimRepo.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if !c.Open() {
		return nil, nil, fmt.Errorf("claim already resolved: %w", domain.ErrInvalidTransition)
	}

	p, err := s.resolve(ctx, b, c, awardCents, notes, now)
	if err != nil {
		return nil, nil, err
	}
	return c, p, nil
}

// resolve settles the escrow for the awarded amount and closes the claim. The
// recorded award is the amount actually drawn, which caps at escrow plus
// deposit.
func (s *claimService) resolve(ctx context.Context, b *domain.Booking, c *domain.DamageClaim, awardCents int64, notes string, now time.Time) (*domain.Payment, error) {
	p, err := s.escrowSvc.Resolve(ctx, b.ID, awardCents, now)
	if err != nil {
		return nil, err
	}

	awarded := p.OwnerPayoutCents + p.DepositWithheldCents
	c.Status = domain.ClaimStatusResolved
	c.AwardedCents = &awarded
	c.ResolutionNotes = notes
	c.ResolvedAt = &now
	if err := s.claimRepo.Update(ctx, c); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Damage claim resolved", "booking_id", b.ID,
		"claim_id", c.ID, "awarded_cents", awarded)

	res, _ := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if res != nil {
		for _, partyID := range []int64{b.OwnerID, b.RenterID} {
			if user, _ := s.userRepo.GetByID(ctx, partyID); user != nil {
				_ = s.emailSvc.SendClaimResolvedNotification(ctx, user.Email, res.Name, awarded)
			}
		}
	}
	return p, nil
}

func (s *claimService) notifyOwner(ctx context.Context, b *domain.Booking, send func(email, resourceName string) error) {
	owner, _ := s.userRepo.GetByID(ctx, b.OwnerID)
	res, _ := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if owner == nil || res == nil {
		return
	}
	if err := send(owner.Email, res.Name); err != nil {
		logger.WarnContext(ctx, "Claim notification failed", "booking_id", b.ID, "error", err)
	}
}
