package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
)

// PricingHandler handles HTTP requests for dynamic pricing endpoints.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new PricingHandler with the provided service dependency.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{
		pricingService: pricingService,
	}
}

// pricingQuery extracts the shared tenantId/routeId/serviceDate query
// parameters. When ok is false the error response has already been written.
func pricingQuery(w http.ResponseWriter, r *http.Request) (tenantID, routeID string, serviceDate time.Time, ok bool) {
	tenantID = r.URL.Query().Get("tenantId")
	routeID = r.URL.Query().Get("routeId")
	date := r.URL.Query().Get("serviceDate")

	if tenantID == "" || routeID == "" || date == "" {
		response.RespondError(w, http.StatusBadRequest, "tenantId, routeId and serviceDate are required", "")
		return "", "", time.Time{}, false
	}

	serviceDate, err := time.Parse("2006-01-02", date)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid serviceDate", err.Error())
		return "", "", time.Time{}, false
	}

	return tenantID, routeID, serviceDate, true
}

// CurrentPrice handles GET requests for the current per-passenger fare of a
// service instance. The fare falls as bookings rise and never drops below
// the configured floor.
//
// Endpoint: GET /api/pricing/current?tenantId=...&routeId=...&serviceDate=...
// Response: 200 OK with PriceQuote
// Error: 400 Bad Request if query parameters are missing or malformed
// Error: 404 Not Found if no cost record exists for the service
// Error: 500 Internal Server Error if calculation fails
func (h *PricingHandler) CurrentPrice(w http.ResponseWriter, r *http.Request) {
	tenantID, routeID, serviceDate, ok := pricingQuery(w, r)
	if !ok {
		return
	}

	quote, err := h.pricingService.CalculateCurrentPrice(r.Context(), tenantID, routeID, serviceDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrCostRecordNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCostRecordNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculatePrice.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, quote)
}

// BookingPrice handles GET requests for the fare one prospective passenger
// would pay right now. An unknown or absent customerId prices as non-member.
//
// Endpoint: GET /api/pricing/booking?tenantId=...&routeId=...&serviceDate=...&customerId=...
// Response: 200 OK with BookingPrice
// Error: 400 Bad Request if query parameters are missing or malformed
// Error: 404 Not Found if no cost record exists for the service
// Error: 500 Internal Server Error if calculation fails
func (h *PricingHandler) BookingPrice(w http.ResponseWriter, r *http.Request) {
	tenantID, routeID, serviceDate, ok := pricingQuery(w, r)
	if !ok {
		return
	}
	customerID := r.URL.Query().Get("customerId")

	price, err := h.pricingService.GetPriceForBooking(r.Context(), tenantID, routeID, serviceDate, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrCostRecordNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCostRecordNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculatePrice.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, price)
}
