package http

import (
	"encoding/json"
	"net/http"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"
)

type ClaimHandler struct {
	claimSvc service.ClaimService
}

func NewClaimHandler(claimSvc service.ClaimService) *ClaimHandler {
	return &ClaimHandler{claimSvc: claimSvc}
}

// File opens the booking's damage claim. Filing disputes the escrow, so a
// racing release loses to it.
func (h *ClaimHandler) File(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req fileClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	claim, err := h.claimSvc.FileClaim(r.Context(), userID, bookingID, req.EstimatedCostCents, req.Description, req.Photos, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, claim)
}

func (h *ClaimHandler) Respond(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req respondClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	claim, err := h.claimSvc.RespondToClaim(r.Context(), userID, bookingID, domain.ClaimAction(req.Action), req.CounterOfferCents, req.Notes, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claim)
}

func (h *ClaimHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req resolveClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	claim, payment, err := h.claimSvc.ResolveClaim(r.Context(), userID, bookingID, req.AwardCents, req.Notes, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, claimResolutionResponse{Claim: claim, Payment: payment})
}

// Window reports whether a claim can still be filed for the booking right
// now, and the deadline that governs it.
func (h *ClaimHandler) Window(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	window, err := h.claimSvc.EvaluateWindow(r.Context(), userID, bookingID, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, window)
}
