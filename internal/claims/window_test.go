package claims

import (
	"testing"
	"time"

	"gearshare-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	guard := NewGuard(48)
	returnedAt := time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC)

	returnInspection := func(byRenter, byOwner bool) *domain.Inspection {
		return &domain.Inspection{
			BookingID:        1,
			Type:             domain.InspectionTypeReturn,
			RecordedAt:       returnedAt,
			VerifiedByRenter: byRenter,
			VerifiedByOwner:  byOwner,
		}
	}

	t.Run("No return inspection", func(t *testing.T) {
		w := guard.Evaluate(nil, 0, returnedAt)
		assert.False(t, w.CanFileClaim)
		assert.False(t, w.AutoAccepted)
		assert.Equal(t, ReasonReturnNotConfirmed, w.Reason)
	})

	t.Run("Return not verified by renter", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(false, false), 0, returnedAt.Add(time.Hour))
		assert.False(t, w.CanFileClaim)
		assert.Equal(t, ReasonReturnNotConfirmed, w.Reason)
	})

	t.Run("Window open inside 48 hours", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(true, false), 0, returnedAt.Add(10*time.Hour))
		assert.True(t, w.CanFileClaim)
		assert.False(t, w.AutoAccepted)
		assert.Equal(t, returnedAt.Add(48*time.Hour), w.Deadline)
		assert.Equal(t, ReasonWindowOpen, w.Reason)
	})

	t.Run("Owner confirmation closes the window early", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(true, true), 0, returnedAt.Add(time.Hour))
		assert.False(t, w.CanFileClaim)
		assert.False(t, w.AutoAccepted)
		assert.Equal(t, ReasonOwnerConfirmed, w.Reason)
	})

	t.Run("Auto-accept at 49 hours", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(true, false), 0, returnedAt.Add(49*time.Hour))
		assert.False(t, w.CanFileClaim)
		assert.True(t, w.AutoAccepted)
		assert.Equal(t, ReasonWindowLapsed, w.Reason)
	})

	t.Run("Deadline instant is still inside the window", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(true, false), 0, returnedAt.Add(48*time.Hour))
		assert.True(t, w.CanFileClaim)
		assert.False(t, w.AutoAccepted)
	})

	t.Run("No auto-accept after owner confirmation", func(t *testing.T) {
		// Owner confirmed before the lapse; silence never became acceptance.
		w := guard.Evaluate(returnInspection(true, true), 0, returnedAt.Add(72*time.Hour))
		assert.False(t, w.AutoAccepted)
		assert.Equal(t, ReasonOwnerConfirmed, w.Reason)
	})

	t.Run("Resource window override", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(true, false), 24, returnedAt.Add(30*time.Hour))
		assert.False(t, w.CanFileClaim)
		assert.True(t, w.AutoAccepted)
		assert.Equal(t, returnedAt.Add(24*time.Hour), w.Deadline)
	})

	t.Run("Zero override falls back to the default", func(t *testing.T) {
		w := guard.Evaluate(returnInspection(true, false), 0, returnedAt.Add(47*time.Hour))
		assert.True(t, w.CanFileClaim)
		assert.Equal(t, returnedAt.Add(48*time.Hour), w.Deadline)
	})
}
