package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
)

// errorResponse is the uniform error envelope. Conflicts ride along when a
// request was well-formed but the calendar blocks it.
type errorResponse struct {
	Error     string            `json:"error"`
	Conflicts []domain.Conflict `json:"conflicts,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeConflicts reports calendar conflicts as data. The request itself was
// valid, so this is 422 rather than a 4xx input error.
func writeConflicts(w http.ResponseWriter, conflicts []domain.Conflict) {
	writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
		Error:     "booking dates are not available",
		Conflicts: conflicts,
	})
}

// writeDomainError maps the typed service errors onto HTTP statuses. Input
// violations are 400, missing records 404, authorization 403 and every
// state-machine rejection 409. Anything unrecognized is a 500 with a generic
// message so internals never leak.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrInvalidRate),
		errors.Is(err, domain.ErrInvalidAmount):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrImmutableState),
		errors.Is(err, domain.ErrReleaseNotYetEligible),
		errors.Is(err, domain.ErrDisputeOpen),
		errors.Is(err, domain.ErrEscrowNotSettled),
		errors.Is(err, domain.ErrWindowClosed),
		errors.Is(err, domain.ErrReturnNotConfirmed),
		errors.Is(err, domain.ErrClaimExists),
		errors.Is(err, domain.ErrResourceUnavailable),
		errors.Is(err, domain.ErrSplitMismatch),
		errors.Is(err, domain.ErrBookingOverlap),
		errors.Is(err, domain.ErrEscrowConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		logger.Error("unhandled service error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
