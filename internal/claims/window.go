// Package claims derives the state of the damage-claim window from the return
// inspection. The guard is pure and time-parameterized; all state lives in the
// inspection, booking and claim records.
package claims

import (
	"time"

	"gearshare-backend/internal/domain"
)

type WindowReason string

const (
	ReasonWindowOpen         WindowReason = "window_open"
	ReasonReturnNotConfirmed WindowReason = "return_not_confirmed"
	ReasonOwnerConfirmed     WindowReason = "owner_confirmed"
	ReasonWindowLapsed       WindowReason = "window_lapsed"
	ReasonClaimFiled         WindowReason = "claim_filed"
)

// Window is the evaluated claim-window state at a particular instant.
type Window struct {
	CanFileClaim bool `json:"can_file_claim"`
	// AutoAccepted signals that silence has become acceptance: the window
	// lapsed with no claim and no owner confirmation. It is advisory until
	// the release sweep acts on it.
	AutoAccepted bool         `json:"auto_accepted"`
	Deadline     time.Time    `json:"deadline,omitempty"`
	Reason       WindowReason `json:"reason"`
}

// Guard evaluates claim windows against the platform default duration.
type Guard struct {
	defaultWindowHours int
}

func NewGuard(defaultWindowHours int) *Guard {
	return &Guard{defaultWindowHours: defaultWindowHours}
}

// Deadline returns the instant the claim window closes for a return recorded
// at the given time. windowHours overrides the default when positive.
func (g *Guard) Deadline(recordedAt time.Time, windowHours int) time.Time {
	hours := windowHours
	if hours <= 0 {
		hours = g.defaultWindowHours
	}
	return recordedAt.Add(time.Duration(hours) * time.Hour)
}

// Evaluate derives the window state from the return inspection at the given
// instant. windowHours overrides the default when positive (resources may
// carry their own window length).
//
// The window only starts once the renter has verified the return. Owner
// verification closes it immediately, explicit acceptance. Past the deadline
// with neither, the return counts as auto-accepted.
func (g *Guard) Evaluate(returnInspection *domain.Inspection, windowHours int, now time.Time) Window {
	if returnInspection == nil || !returnInspection.VerifiedByRenter {
		return Window{Reason: ReasonReturnNotConfirmed}
	}

	deadline := g.Deadline(returnInspection.RecordedAt, windowHours)

	if returnInspection.VerifiedByOwner {
		return Window{Deadline: deadline, Reason: ReasonOwnerConfirmed}
	}

	if now.After(deadline) {
		return Window{AutoAccepted: true, Deadline: deadline, Reason: ReasonWindowLapsed}
	}

	return Window{CanFileClaim: true, Deadline: deadline, Reason: ReasonWindowOpen}
}
