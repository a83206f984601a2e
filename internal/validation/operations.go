package validation

import (
	"strings"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
)

// ValidateRecordBooking validates a booking record request.
//
// Required fields:
//   - tenantId, routeId, customerId: must be present
//   - serviceDate: must be in YYYY-MM-DD format
//   - farePaid: must be non-negative
func ValidateRecordBooking(req request.RecordBookingRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.TenantID) == "" {
		errors["tenantId"] = "tenantId is required"
	}
	if strings.TrimSpace(req.RouteID) == "" {
		errors["routeId"] = "routeId is required"
	}
	if strings.TrimSpace(req.CustomerID) == "" {
		errors["customerId"] = "customerId is required"
	}

	if strings.TrimSpace(req.ServiceDate) == "" {
		errors["serviceDate"] = "serviceDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ServiceDate); err != nil {
		errors["serviceDate"] = err.Error()
	}

	if req.FarePaid < 0.0 {
		errors["farePaid"] = "farePaid must be non-negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateRecordDuty validates a duty record request.
//
// Required fields:
//   - tenantId, routeId, driverId: must be present
//   - serviceDate: must be in YYYY-MM-DD format
//   - hours: must be non-negative
func ValidateRecordDuty(req request.RecordDutyRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.TenantID) == "" {
		errors["tenantId"] = "tenantId is required"
	}
	if strings.TrimSpace(req.RouteID) == "" {
		errors["routeId"] = "routeId is required"
	}
	if strings.TrimSpace(req.DriverID) == "" {
		errors["driverId"] = "driverId is required"
	}

	if strings.TrimSpace(req.ServiceDate) == "" {
		errors["serviceDate"] = "serviceDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ServiceDate); err != nil {
		errors["serviceDate"] = err.Error()
	}

	if req.Hours < 0.0 {
		errors["hours"] = "hours must be non-negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateReconcileRevenue validates a revenue reconciliation request.
//
// Required fields:
//   - routeId: must be present
//   - serviceDate: must be in YYYY-MM-DD format
//   - revenue: must be non-negative
func ValidateReconcileRevenue(req request.ReconcileRevenueRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.RouteID) == "" {
		errors["routeId"] = "routeId is required"
	}

	if strings.TrimSpace(req.ServiceDate) == "" {
		errors["serviceDate"] = "serviceDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ServiceDate); err != nil {
		errors["serviceDate"] = err.Error()
	}

	if req.Revenue < 0.0 {
		errors["revenue"] = "revenue must be non-negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
