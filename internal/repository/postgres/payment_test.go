package postgres_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestPaymentRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		p := &domain.Payment{
			BookingID:       7,
			ProcessorRef:    "sandbox-abc123",
			TotalCents:      37250,
			EscrowCents:     15750,
			ServiceFeeCents: 1500,
			DepositCents:    20000,
			EscrowStatus:    domain.EscrowStatusHeld,
		}

		mock.ExpectQuery("INSERT INTO payments").
			WithArgs(p.BookingID, p.ProcessorRef, p.TotalCents, p.EscrowCents, p.ServiceFeeCents, p.DepositCents,
				p.EscrowStatus, p.Version, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

		err := repo.Create(ctx, p)
		assert.NoError(t, err)
		assert.Equal(t, int64(11), p.ID)
	})
}

func TestPaymentRepository_GetByBookingID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		now := time.Now().UTC()
		rows := sqlmock.NewRows([]string{"id", "booking_id", "processor_ref", "total_cents", "escrow_cents", "service_fee_cents", "deposit_cents",
			"escrow_status", "owner_payout_cents", "renter_refund_cents", "deposit_withheld_cents", "deposit_refund_cents",
			"version", "created_at", "payout_processed_at"}).
			AddRow(11, 7, "sandbox-abc123", 37250, 15750, 1500, 20000,
				"HELD", 0, 0, 0, 0,
				0, now, nil)

		mock.ExpectQuery("SELECT (.+) FROM payments WHERE booking_id = \\$1").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		p, err := repo.GetByBookingID(ctx, 7)
		assert.NoError(t, err)
		assert.NotNil(t, p)
		assert.Equal(t, domain.EscrowStatusHeld, p.EscrowStatus)
		assert.Equal(t, int64(15750), p.EscrowCents)
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM payments WHERE booking_id = \\$1").
			WithArgs(int64(999)).
			WillReturnError(sql.ErrNoRows)

		p, err := repo.GetByBookingID(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Nil(t, p)
	})
}

func TestPaymentRepository_Transition(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := postgres.NewPaymentRepository(db)
	ctx := context.Background()

	t.Run("Release Bumps The Version", func(t *testing.T) {
		at := time.Date(2024, 6, 6, 12, 0, 0, 0, time.UTC)
		p := &domain.Payment{
			ID:                 11,
			BookingID:          7,
			EscrowCents:        15750,
			DepositCents:       20000,
			EscrowStatus:       domain.EscrowStatusReleased,
			OwnerPayoutCents:   15750,
			DepositRefundCents: 20000,
			Version:            0,
			PayoutProcessedAt:  &at,
		}

		mock.ExpectExec("UPDATE payments").
			WithArgs(domain.EscrowStatusReleased, int64(15750), int64(0), int64(0), int64(20000), &at,
				int64(11), domain.EscrowStatusHeld, int64(0)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Transition(ctx, p, domain.EscrowStatusHeld)
		assert.NoError(t, err)
		assert.Equal(t, int64(1), p.Version)
	})

	t.Run("Lost Race Returns Conflict", func(t *testing.T) {
		// Someone else settled this escrow first. The status and version guard
		// match no row, and the payment keeps its in-memory version.
		p := &domain.Payment{
			ID:           11,
			EscrowStatus: domain.EscrowStatusReleased,
			Version:      0,
		}

		mock.ExpectExec("UPDATE payments").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Transition(ctx, p, domain.EscrowStatusHeld)
		assert.ErrorIs(t, err, domain.ErrEscrowConflict)
		assert.Equal(t, int64(0), p.Version)
	})
}
