package http

import (
	"net/http"
	"strconv"

	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/service"

	"github.com/gorilla/mux"
)

type QuoteHandler struct {
	quoteSvc service.QuoteService
}

func NewQuoteHandler(quoteSvc service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteSvc: quoteSvc}
}

// Quote prices a date range for a resource. Conflicts come back alongside
// the breakdown so a blocked range still shows what it would have cost.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := resourcePathID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	startDate, err := parseDate(q.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := parseDate(q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	breakdown, conflicts, err := h.quoteSvc.Quote(r.Context(), resourceID, startDate, endDate, parseTier(q.Get("tier")))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		Breakdown: breakdown,
		Conflicts: conflicts,
		Available: len(conflicts) == 0,
	})
}

func (h *QuoteHandler) Availability(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := resourcePathID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	startDate, err := parseDate(q.Get("start_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	endDate, err := parseDate(q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conflicts, err := h.quoteSvc.CheckAvailability(r.Context(), resourceID, startDate, endDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if conflicts == nil {
		conflicts = []domain.Conflict{}
	}
	writeJSON(w, http.StatusOK, availabilityResponse{
		Conflicts: conflicts,
		Available: len(conflicts) == 0,
	})
}

func resourcePathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid resource id")
		return 0, false
	}
	return id, true
}
