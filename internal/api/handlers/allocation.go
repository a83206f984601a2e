package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/validation"
)

// AllocationHandler handles HTTP requests for surplus allocation.
type AllocationHandler struct {
	allocationService *service.AllocationService
	defaults          config.AllocationParameters
}

// NewAllocationHandler creates a new AllocationHandler with the provided
// service dependency and default split percentages.
func NewAllocationHandler(allocationService *service.AllocationService, defaults config.AllocationParameters) *AllocationHandler {
	return &AllocationHandler{
		allocationService: allocationService,
		defaults:          defaults,
	}
}

// AllocateSurplus handles POST requests to split one profitable service's
// gross surplus into reserves, business costs, dividends and the route pool.
//
// Endpoint: POST /api/surplus/allocate
// Request Body: AllocateSurplusRequest
// Response: 200 OK with AllocationResult
// Error: 400 Bad Request if validation fails or percentages do not sum to 100
// Error: 500 Internal Server Error if allocation fails
func (h *AllocationHandler) AllocateSurplus(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.AllocateSurplusRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateAllocateSurplus(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	reserves := h.defaults.ReservesPercent
	business := h.defaults.BusinessPercent
	dividend := h.defaults.DividendPercent
	if req.ReservesPercent != nil {
		reserves = *req.ReservesPercent
		business = *req.BusinessPercent
		dividend = *req.DividendPercent
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)

	result, err := h.allocationService.AllocateSurplus(r.Context(), service.AllocateSurplusRequest{
		TenantID:        req.TenantID,
		RouteID:         req.RouteID,
		TimetableID:     req.TimetableID,
		ServiceDate:     serviceDate,
		GrossSurplus:    decimal.NewFromFloat(req.GrossSurplus),
		Revenue:         decimal.NewFromFloat(req.Revenue),
		TotalCost:       decimal.NewFromFloat(req.TotalCost),
		ReservesPercent: reserves,
		BusinessPercent: business,
		DividendPercent: dividend,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidSurplusAmount),
			errors.Is(err, apperrors.ErrInvalidAllocationPercentages):
			response.RespondError(w, http.StatusBadRequest, err.Error(), "")
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToAllocateSurplus.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}
