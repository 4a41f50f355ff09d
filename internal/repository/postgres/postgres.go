package postgres

import (
	"database/sql"

	"gearshare-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.ResourceRepository
	repository.BookingRepository
	repository.PaymentRepository
	repository.InspectionRepository
	repository.ClaimRepository
	repository.PayoutRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                   db,
		UserRepository:       NewUserRepository(db),
		ResourceRepository:   NewResourceRepository(db),
		BookingRepository:    NewBookingRepository(db),
		PaymentRepository:    NewPaymentRepository(db),
		InspectionRepository: NewInspectionRepository(db),
		ClaimRepository:      NewClaimRepository(db),
		PayoutRepository:     NewPayoutRepository(db),
	}
}
