package http

import (
	"encoding/json"
	"net/http"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"
)

type InspectionHandler struct {
	inspectionSvc service.InspectionService
}

func NewInspectionHandler(inspectionSvc service.InspectionService) *InspectionHandler {
	return &InspectionHandler{inspectionSvc: inspectionSvc}
}

// Record creates or verifies the pickup/return inspection for the booking.
// First call from either party creates it; the counterparty's call adds
// their verification.
func (h *InspectionHandler) Record(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req recordInspectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	inspection, err := h.inspectionSvc.RecordInspection(r.Context(), userID, bookingID, domain.InspectionType(req.Type), req.Checklist, req.Photos, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inspection)
}
