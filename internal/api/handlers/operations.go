package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/validation"
)

// OperationsHandler handles HTTP requests for operational records: bookings,
// driver duties and revenue reconciliation.
type OperationsHandler struct {
	operationsService *service.OperationsService
}

// NewOperationsHandler creates a new OperationsHandler with the provided service dependency.
func NewOperationsHandler(operationsService *service.OperationsService) *OperationsHandler {
	return &OperationsHandler{
		operationsService: operationsService,
	}
}

// RecordBooking handles POST requests to record one passenger booking.
//
// Endpoint: POST /api/operations/booking
// Request Body: RecordBookingRequest
// Response: 201 Created with ServiceBooking
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the insert fails
func (h *OperationsHandler) RecordBooking(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RecordBookingRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRecordBooking(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)

	booking := model.ServiceBooking{
		TenantID:     req.TenantID,
		RouteID:      req.RouteID,
		TimetableID:  req.TimetableID,
		ServiceDate:  serviceDate,
		CustomerID:   req.CustomerID,
		FarePaid:     decimal.NewFromFloat(req.FarePaid),
		IsMemberFare: req.IsMemberFare,
	}

	if err := h.operationsService.RecordBooking(r.Context(), &booking); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to record booking", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, booking)
}

// RecordDuty handles POST requests to record one driver duty.
//
// Endpoint: POST /api/operations/duty
// Request Body: RecordDutyRequest
// Response: 201 Created with DriverDuty
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 500 Internal Server Error if the insert fails
func (h *OperationsHandler) RecordDuty(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RecordDutyRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRecordDuty(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)

	duty := model.DriverDuty{
		TenantID:    req.TenantID,
		RouteID:     req.RouteID,
		ServiceDate: serviceDate,
		DriverID:    req.DriverID,
		Hours:       req.Hours,
	}

	if err := h.operationsService.RecordDuty(r.Context(), &duty); err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to record duty", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, duty)
}

// ReconcileRevenue handles POST requests to write realized revenue onto a
// service's cost record after the service has run.
//
// Endpoint: POST /api/operations/revenue
// Request Body: ReconcileRevenueRequest
// Response: 200 OK with the updated ServiceCostRecord
// Error: 400 Bad Request if validation fails or request body is invalid
// Error: 404 Not Found if no cost record exists for the service
// Error: 500 Internal Server Error if the update fails
func (h *OperationsHandler) ReconcileRevenue(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.ReconcileRevenueRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateReconcileRevenue(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	serviceDate, _ := time.Parse("2006-01-02", req.ServiceDate)

	record, err := h.operationsService.ReconcileRevenue(r.Context(), req.RouteID, serviceDate, decimal.NewFromFloat(req.Revenue))
	if err != nil {
		if errors.Is(err, apperrors.ErrCostRecordNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrCostRecordNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, "failed to reconcile revenue", err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, record)
}
