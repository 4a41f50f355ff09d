package http

import (
	"net/http"
	"time"

	"gearshare-backend/internal/service"
)

type SettlementHandler struct {
	escrowSvc service.EscrowService
}

func NewSettlementHandler(escrowSvc service.EscrowService) *SettlementHandler {
	return &SettlementHandler{escrowSvc: escrowSvc}
}

// Release is the owner-initiated escrow release. The service enforces the
// release buffer and the absence of an open claim.
func (h *SettlementHandler) Release(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	payment, err := h.escrowSvc.RequestRelease(r.Context(), userID, bookingID, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *SettlementHandler) GetSettlement(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	payment, payouts, err := h.escrowSvc.GetSettlement(r.Context(), userID, bookingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{Payment: payment, Payouts: payouts})
}
