package http

import (
	"net/http"

	"gearshare-backend/internal/security"
	"gearshare-backend/internal/service"

	"github.com/gorilla/mux"
)

// NewRouter builds the /v1 API. Everything except the health check sits
// behind the Bearer-token middleware.
func NewRouter(
	tokenManager security.TokenManager,
	bookingSvc service.BookingService,
	quoteSvc service.QuoteService,
	escrowSvc service.EscrowService,
	inspectionSvc service.InspectionService,
	claimSvc service.ClaimService,
) *mux.Router {
	bookings := NewBookingHandler(bookingSvc)
	quotes := NewQuoteHandler(quoteSvc)
	settlements := NewSettlementHandler(escrowSvc)
	inspections := NewInspectionHandler(inspectionSvc)
	claims := NewClaimHandler(claimSvc)

	root := mux.NewRouter()
	root.Use(LoggingMiddleware)
	root.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)

	api := root.PathPrefix("/v1").Subrouter()
	api.Use(NewAuthMiddleware(tokenManager).Handler)

	api.HandleFunc("/bookings", bookings.Create).Methods(http.MethodPost)
	api.HandleFunc("/bookings", bookings.List).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}", bookings.Get).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}/approve", bookings.Approve).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/decline", bookings.Decline).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/cancel", bookings.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/activate", bookings.Activate).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/complete", bookings.Complete).Methods(http.MethodPost)

	api.HandleFunc("/bookings/{id:[0-9]+}/inspections", inspections.Record).Methods(http.MethodPost)

	api.HandleFunc("/bookings/{id:[0-9]+}/claim-window", claims.Window).Methods(http.MethodGet)
	api.HandleFunc("/bookings/{id:[0-9]+}/claims", claims.File).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/claims/response", claims.Respond).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/claims/resolve", claims.Resolve).Methods(http.MethodPost)

	api.HandleFunc("/bookings/{id:[0-9]+}/release", settlements.Release).Methods(http.MethodPost)
	api.HandleFunc("/bookings/{id:[0-9]+}/settlement", settlements.GetSettlement).Methods(http.MethodGet)

	api.HandleFunc("/resources/{id:[0-9]+}/quote", quotes.Quote).Methods(http.MethodGet)
	api.HandleFunc("/resources/{id:[0-9]+}/availability", quotes.Availability).Methods(http.MethodGet)

	return root
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
