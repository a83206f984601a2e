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

// SubsidyHandler handles HTTP requests for subsidy preview and draw endpoints.
type SubsidyHandler struct {
	subsidyService *service.SubsidyService
	defaults       config.SubsidyParameters
}

// NewSubsidyHandler creates a new SubsidyHandler with the provided service
// dependency and default percentage caps.
func NewSubsidyHandler(subsidyService *service.SubsidyService, defaults config.SubsidyParameters) *SubsidyHandler {
	return &SubsidyHandler{
		subsidyService: subsidyService,
		defaults:       defaults,
	}
}

// CalculateSubsidy handles POST requests to preview the subsidy a service
// could draw from its route's pool. The preview is read-only; a route
// without a pool yields a zero subsidy.
//
// Endpoint: POST /api/subsidy/calculate
// Request Body: CalculateSubsidyRequest
// Response: 200 OK with SubsidyCalculation
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if calculation fails
func (h *SubsidyHandler) CalculateSubsidy(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CalculateSubsidyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCalculateSubsidy(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	maxSurplus := h.defaults.MaxSurplusPercent
	if req.MaxSurplusPercent != nil {
		maxSurplus = *req.MaxSurplusPercent
	}
	maxService := h.defaults.MaxServicePercent
	if req.MaxServicePercent != nil {
		maxService = *req.MaxServicePercent
	}

	calc, err := h.subsidyService.CalculateAvailableSubsidy(
		r.Context(), req.RouteID, decimal.NewFromFloat(req.ServiceCost), maxSurplus, maxService)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToApplySubsidy.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, calc)
}

// ApplySubsidy handles POST requests to draw a subsidy from a route's pool
// against one service instance. The draw decrements the pool, appends a
// ledger entry and updates the service's cost record atomically.
//
// Endpoint: POST /api/subsidy/apply
// Request Body: ApplySubsidyRequest
// Response: 200 OK with SurplusTransaction
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if no pool exists for the route
// Error: 409 Conflict if the draw exceeds the pool's available balance
// Error: 500 Internal Server Error if the draw fails
func (h *SubsidyHandler) ApplySubsidy(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ApplySubsidyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateApplySubsidy(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)

	txn, err := h.subsidyService.ApplySubsidy(r.Context(), service.ApplySubsidyRequest{
		TenantID:       req.TenantID,
		RouteID:        req.RouteID,
		TimetableID:    req.TimetableID,
		ServiceDate:    serviceDate,
		SubsidyAmount:  decimal.NewFromFloat(req.SubsidyAmount),
		ServiceCost:    decimal.NewFromFloat(req.ServiceCost),
		PassengerCount: req.PassengerCount,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrPoolNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPoolNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrInsufficientSurplus):
			response.RespondError(w, http.StatusConflict, apperrors.ErrInsufficientSurplus.Error(), err.Error())
		case errors.Is(err, apperrors.ErrNegativeAmount):
			response.RespondError(w, http.StatusBadRequest, apperrors.ErrNegativeAmount.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToApplySubsidy.Error(), err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusOK, txn)
}
