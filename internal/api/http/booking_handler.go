package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type BookingHandler struct {
	bookingSvc service.BookingService
}

func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// actorID returns the authenticated user set by the auth middleware.
func actorID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	booking, conflicts, err := h.bookingSvc.RequestBooking(r.Context(), userID, req.ResourceID, startDate, endDate, parseTier(req.InsuranceTier))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(conflicts) > 0 {
		writeConflicts(w, conflicts)
		return
	}
	writeJSON(w, http.StatusCreated, bookingWithConflicts{Booking: booking})
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.GetBooking(r.Context(), userID, bookingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	status := q.Get("status")
	page := parsePositiveInt32(q.Get("page"), 1)
	pageSize := parsePositiveInt32(q.Get("page_size"), 20)
	if pageSize > 100 {
		pageSize = 100
	}

	var (
		bookings []domain.Booking
		total    int32
		err      error
	)
	switch q.Get("role") {
	case "owner":
		bookings, total, err = h.bookingSvc.ListLendings(r.Context(), userID, status, page, pageSize)
	default:
		bookings, total, err = h.bookingSvc.ListRentals(r.Context(), userID, status, page, pageSize)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookingListResponse{
		Bookings:   bookings,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	})
}

func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, conflicts, err := h.bookingSvc.ApproveBooking(r.Context(), userID, bookingID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if len(conflicts) > 0 {
		writeConflicts(w, conflicts)
		return
	}
	writeJSON(w, http.StatusOK, bookingWithConflicts{Booking: booking})
}

func (h *BookingHandler) Decline(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req declineBookingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
	}

	booking, err := h.bookingSvc.DeclineBooking(r.Context(), userID, bookingID, req.Reason)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	var req cancelBookingRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request payload")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}
	}

	booking, err := h.bookingSvc.CancelBooking(r.Context(), userID, bookingID, req.Reason, req.RefundEligible)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func (h *BookingHandler) Activate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, payment, err := h.bookingSvc.ActivateBooking(r.Context(), userID, bookingID, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, activateBookingResponse{Booking: booking, Payment: payment})
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actorID(w, r)
	if !ok {
		return
	}
	bookingID, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.CompleteBooking(r.Context(), userID, bookingID, time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, booking)
}

func parsePositiveInt32(raw string, fallback int32) int32 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
