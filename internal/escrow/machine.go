// Package escrow holds the fund-custody state machine rules for payments.
// The rules here are pure; the escrow service applies them through guarded
// database updates so concurrent transitions serialize.
package escrow

import (
	"time"

	"gearshare-backend/internal/domain"
)

// transitions lists the permitted escrow moves. RELEASED and REFUNDED are
// terminal: money that has left custody never comes back.
var transitions = map[domain.EscrowStatus][]domain.EscrowStatus{
	domain.EscrowStatusHeld: {
		domain.EscrowStatusReleased,
		domain.EscrowStatusRefunded,
		domain.EscrowStatusDisputed,
	},
	domain.EscrowStatusDisputed: {
		domain.EscrowStatusReleased,
		domain.EscrowStatusRefunded,
	},
}

// CanTransition reports whether the escrow may move between the two states.
func CanTransition(from, to domain.EscrowStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Transition validates a move and returns the target state unchanged, or
// ErrInvalidTransition when the move is not permitted.
func Transition(from, to domain.EscrowStatus) (domain.EscrowStatus, error) {
	if !CanTransition(from, to) {
		return from, domain.ErrInvalidTransition
	}
	return to, nil
}

// ReleaseEligibleAt returns the earliest instant at which held funds may be
// released: the booking's end date plus the release buffer.
func ReleaseEligibleAt(bookingEnd time.Time, bufferHours int) time.Time {
	return bookingEnd.Add(time.Duration(bufferHours) * time.Hour)
}

// ReleaseEligible reports whether the time gate for release has passed.
func ReleaseEligible(bookingEnd time.Time, bufferHours int, now time.Time) bool {
	return !now.Before(ReleaseEligibleAt(bookingEnd, bufferHours))
}

// Split is a settlement of escrowed funds between the two parties. A split
// says nothing about the deposit, which is conserved separately.
type Split struct {
	OwnerCents  int64
	RenterCents int64
}

// ValidateSplit enforces conservation: shares must be non-negative and sum to
// exactly the escrowed amount. No money is created or destroyed.
func ValidateSplit(escrowCents int64, s Split) error {
	if s.OwnerCents < 0 || s.RenterCents < 0 {
		return domain.ErrSplitMismatch
	}
	if s.OwnerCents+s.RenterCents != escrowCents {
		return domain.ErrSplitMismatch
	}
	return nil
}

// ResolveAward converts an awarded damage amount into an escrow split plus a
// deposit draw. The award is satisfied from escrow first; anything beyond the
// escrowed amount comes out of the deposit, capped at the deposit itself.
func ResolveAward(escrowCents, depositCents, awardCents int64) (Split, int64) {
	if awardCents < 0 {
		awardCents = 0
	}
	fromEscrow := awardCents
	if fromEscrow > escrowCents {
		fromEscrow = escrowCents
	}
	fromDeposit := awardCents - fromEscrow
	if fromDeposit > depositCents {
		fromDeposit = depositCents
	}
	return Split{OwnerCents: fromEscrow, RenterCents: escrowCents - fromEscrow}, fromDeposit
}
