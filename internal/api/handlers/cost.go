package handlers

import (
	"net/http"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/validation"
)

// CostHandler handles HTTP requests for service cost estimation.
type CostHandler struct {
	costService *service.CostService
}

// NewCostHandler creates a new CostHandler with the provided service dependency.
func NewCostHandler(costService *service.CostService) *CostHandler {
	return &CostHandler{
		costService: costService,
	}
}

// EstimateCost handles POST requests to estimate the operating cost of one
// service instance. The breakdown is persisted as the service's cost record;
// re-estimating the same service replaces the estimate but keeps any subsidy
// already applied.
//
// Endpoint: POST /api/cost/estimate
// Request Body: EstimateCostRequest
// Response: 200 OK with CostBreakdown
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if estimation fails
func (h *CostHandler) EstimateCost(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.EstimateCostRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateEstimateCost(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)

	breakdown, err := h.costService.EstimateCost(r.Context(), service.EstimateCostRequest{
		TenantID:      req.TenantID,
		RouteID:       req.RouteID,
		TimetableID:   req.TimetableID,
		Origin:        req.Origin,
		Destination:   req.Destination,
		ServiceDate:   serviceDate,
		DepartureTime: req.DepartureTime,
		VehicleType:   req.VehicleType,
	})
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToEstimateCost.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, breakdown)
}
