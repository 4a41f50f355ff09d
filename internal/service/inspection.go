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

type inspectionService struct {
	inspectionRepo repository.InspectionRepository
	bookingRepo    repository.BookingRepository
	resourceRepo   repository.ResourceRepository
	userRepo       repository.UserRepository
	guard          *claims.Guard
	emailSvc       EmailService
}

func NewInspectionService(
	inspectionRepo repository.InspectionRepository,
	bookingRepo repository.BookingRepository,
	resourceRepo repository.ResourceRepository,
	userRepo repository.UserRepository,
	guard *claims.Guard,
	emailSvc EmailService,
) InspectionService {
	return &inspectionService{
		inspectionRepo: inspectionRepo,
		bookingRepo:    bookingRepo,
		resourceRepo:   resourceRepo,
		userRepo:       userRepo,
		guard:          guard,
		emailSvc:       emailSvc,
	}
}

func (s *inspectionService) RecordInspection(ctx context.Context, actorID, bookingID int64, typ domain.InspectionType, checklist []domain.ChecklistItem, photos []string, now time.Time) (*domain.Inspection, error) {
	if typ != domain.InspectionTypePickup && typ != domain.InspectionTypeReturn {
		return nil, fmt.Errorf("unknown inspection type %q", typ)
	}

	b, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.IsParty(actorID) {
		return nil, domain.ErrUnauthorized
	}
	if b.Status != domain.BookingStatusActive {
		return nil, fmt.Errorf("booking is %s, inspections require an active rental: %w", b.Status, domain.ErrInvalidTransition)
	}
	if typ == domain.InspectionTypeReturn {
		if _, err := s.inspectionRepo.GetByBookingAndType(ctx, bookingID, domain.InspectionTypePickup); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("pickup inspection must be recorded first: %w", domain.ErrInvalidTransition)
			}
			return nil, err
		}
	}

	i, err := s.inspectionRepo.GetByBookingAndType(ctx, bookingID, typ)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		i = &domain.Inspection{
			BookingID:        bookingID,
			Type:             typ,
			RecordedAt:       now,
			VerifiedByOwner:  actorID == b.OwnerID,
			VerifiedByRenter: actorID == b.RenterID,
			Photos:           photos,
			Checklist:        checklist,
		}
		if err := s.inspectionRepo.Create(ctx, i); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !s.verify(b, i, actorID, now) {
			// The actor already verified; nothing to change.
			return i, nil
		}
		i.Photos = append(i.Photos, photos...)
		i.Checklist = append(i.Checklist, checklist...)
		if err := s.inspectionRepo.Update(ctx, i); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "Inspection recorded", "booking_id", bookingID, "type", typ,
		"verified_by_owner", i.VerifiedByOwner, "verified_by_renter", i.VerifiedByRenter)

	if typ == domain.InspectionTypeReturn && actorID == b.RenterID {
		s.notifyReturnRecorded(ctx, b, i)
	}
	return i, nil
}

// verify flips the actor's verification flag and reports whether anything
// changed. The renter's verification of the return is what starts the claim
// window, so that event refreshes the inspection timestamp.
func (s *inspectionService) verify(b *domain.Booking, i *domain.Inspection, actorID int64, now time.Time) bool {
	switch actorID {
	case b.OwnerID:
		if i.VerifiedByOwner {
			return false
		}
		i.VerifiedByOwner = true
	case b.RenterID:
		if i.VerifiedByRenter {
			return false
		}
		i.VerifiedByRenter = true
		if i.Type == domain.InspectionTypeReturn {
			i.RecordedAt = now
		}
	}
	return true
}

func (s *inspectionService) notifyReturnRecorded(ctx context.Context, b *domain.Booking, i *domain.Inspection) {
	owner, _ := s.userRepo.GetByID(ctx, b.OwnerID)
	res, _ := s.resourceRepo.GetByID(ctx, b.ResourceID)
	if owner == nil || res == nil {
		return
	}
	deadline := s.guard.Deadline(i.RecordedAt, res.ClaimWindowHours)
	if err := s.emailSvc.SendReturnRecordedNotification(ctx, owner.Email, res.Name, deadline); err != nil {
		logger.WarnContext(ctx, "Return notification failed", "booking_id", b.ID, "error", err)
	}
}
