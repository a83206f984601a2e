package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/validation"
)

// DividendHandler handles HTTP requests for dividend distribution endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the dividendService.
type DividendHandler struct {
	dividendService *service.DividendService
	defaults        config.AllocationParameters
}

// NewDividendHandler creates a new DividendHandler with the provided service
// dependency and default split percentages.
func NewDividendHandler(dividendService *service.DividendService, defaults config.AllocationParameters) *DividendHandler {
	return &DividendHandler{
		dividendService: dividendService,
		defaults:        defaults,
	}
}

// buildCalculationRequest maps the HTTP request onto the service request,
// filling in configured percentage defaults.
func (h *DividendHandler) buildCalculationRequest(req request.CalculateDividendRequest) service.CalculateDividendsRequest {
	start, _ := time.Parse("2006-01-02", req.PeriodStart)
	end, _ := time.Parse("2006-01-02", req.PeriodEnd)

	out := service.CalculateDividendsRequest{
		TenantID:         req.TenantID,
		PeriodStart:      start,
		PeriodEnd:        end,
		CooperativeModel: req.CooperativeModel,
		ReservesPercent:  h.defaults.ReservesPercent,
		BusinessPercent:  h.defaults.BusinessPercent,
		DividendPercent:  h.defaults.DividendPercent,
	}
	if req.ReservesPercent != nil {
		out.ReservesPercent = *req.ReservesPercent
		out.BusinessPercent = *req.BusinessPercent
		out.DividendPercent = *req.DividendPercent
	}

	return out
}

// respondCalculationError maps dividend calculation errors to HTTP statuses.
func respondCalculationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidDateRange),
		errors.Is(err, apperrors.ErrInvalidAllocationPercentages),
		errors.Is(err, apperrors.ErrUnknownCooperativeModel):
		response.RespondError(w, http.StatusBadRequest, err.Error(), "")
	case errors.Is(err, apperrors.ErrDistributionExists):
		response.RespondError(w, http.StatusConflict, apperrors.ErrDistributionExists.Error(), err.Error())
	default:
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToCalculateDividends.Error(), err.Error())
	}
}

// CalculateDividends handles POST requests to preview a dividend run for a
// period without persisting it.
//
// Endpoint: POST /api/dividend/calculate
// Request Body: CalculateDividendRequest
// Response: 200 OK with DividendCalculationResult
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the period already has a distribution
// Error: 500 Internal Server Error if calculation fails
func (h *DividendHandler) CalculateDividends(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CalculateDividendRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCalculateDividend(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	calc, err := h.dividendService.CalculateDividends(r.Context(), h.buildCalculationRequest(req))
	if err != nil {
		respondCalculationError(w, err)
		return
	}

	response.RespondJSON(w, http.StatusOK, calc)
}

// CreateDistribution handles POST requests to calculate and persist a
// dividend run for a period in one step.
//
// Endpoint: POST /api/dividend
// Request Body: CalculateDividendRequest
// Response: 201 Created with DividendCalculationResult (distribution ID set)
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 409 Conflict if the period already has a distribution
// Error: 500 Internal Server Error if calculation or persistence fails
func (h *DividendHandler) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.CalculateDividendRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateCalculateDividend(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	calc, err := h.dividendService.CalculateDividends(r.Context(), h.buildCalculationRequest(req))
	if err != nil {
		respondCalculationError(w, err)
		return
	}

	id, err := h.dividendService.SaveDividendDistribution(r.Context(), &calc)
	if err != nil {
		if errors.Is(err, apperrors.ErrDistributionExists) {
			response.RespondError(w, http.StatusConflict, apperrors.ErrDistributionExists.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to save distribution", err.Error())
		return
	}
	calc.Distribution.ID = id

	response.RespondJSON(w, http.StatusCreated, calc)
}

// ListDistributions handles GET requests to retrieve a tenant's dividend
// distributions, newest first.
//
// Endpoint: GET /api/dividend?tenantId=...
// Response: 200 OK with array of DividendDistribution
// Error: 400 Bad Request if tenantId is missing
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) ListDistributions(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenantId")
	if tenantID == "" {
		response.RespondError(w, http.StatusBadRequest, "tenantId is required", "")
		return
	}

	distributions, err := h.dividendService.ListDistributions(r.Context(), tenantID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDistributions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, distributions)
}

// DistributionResponse bundles a distribution header with its member rows.
type DistributionResponse struct {
	Distribution model.DividendDistribution `json:"distribution"`
	Dividends    []model.MemberDividend     `json:"dividends"`
}

// GetDistribution handles GET requests to retrieve one distribution with its
// member dividend rows.
//
// Endpoint: GET /api/dividend/{uuid}
// Response: 200 OK with DistributionResponse
// Error: 400 Bad Request if distribution ID is invalid (validated by middleware)
// Error: 404 Not Found if distribution not found
// Error: 500 Internal Server Error if retrieval fails
func (h *DividendHandler) GetDistribution(w http.ResponseWriter, r *http.Request) {
	distributionID := chi.URLParam(r, "uuid")

	dist, dividends, err := h.dividendService.GetDistribution(r.Context(), distributionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDistributionNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDistributionNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveDistributions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, DistributionResponse{Distribution: dist, Dividends: dividends})
}

// PayDistribution handles POST requests to mark a distribution as paid out.
// Every pending member dividend transitions to paid with today's date.
//
// Endpoint: POST /api/dividend/{uuid}/pay
// Request Body: PayDistributionRequest (paymentMethod)
// Response: 204 No Content
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if distribution not found
// Error: 409 Conflict if the distribution was already paid out
// Error: 500 Internal Server Error if the transition fails
func (h *DividendHandler) PayDistribution(w http.ResponseWriter, r *http.Request) {
	distributionID := chi.URLParam(r, "uuid")

	req, err := parseJSON[request.PayDistributionRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePayDistribution(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.dividendService.MarkDistributionPaid(r.Context(), distributionID, req.PaymentMethod); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDistributionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDistributionNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDistributionAlreadyPaid):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDistributionAlreadyPaid.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to mark distribution paid", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// CancelDistribution handles POST requests to void a distribution that has
// not been paid out.
//
// Endpoint: POST /api/dividend/{uuid}/cancel
// Response: 204 No Content
// Error: 400 Bad Request if distribution ID is invalid (validated by middleware)
// Error: 404 Not Found if distribution not found
// Error: 409 Conflict if the distribution was already paid out
// Error: 500 Internal Server Error if the transition fails
func (h *DividendHandler) CancelDistribution(w http.ResponseWriter, r *http.Request) {
	distributionID := chi.URLParam(r, "uuid")

	if err := h.dividendService.CancelDistribution(r.Context(), distributionID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDistributionNotFound):
			response.RespondError(w, http.StatusNotFound, apperrors.ErrDistributionNotFound.Error(), err.Error())
		case errors.Is(err, apperrors.ErrDistributionAlreadyPaid):
			response.RespondError(w, http.StatusConflict, apperrors.ErrDistributionAlreadyPaid.Error(), err.Error())
		default:
			response.RespondError(w, http.StatusInternalServerError, "failed to cancel distribution", err.Error())
		}
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}
