package validation

import (
	"strings"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
)

// ValidateEstimateCost validates a cost estimate request.
// Checks all required fields and validates their formats and constraints.
//
// Required fields:
//   - tenantId, routeId: must be present
//   - origin, destination: must be present
//   - serviceDate: must be in YYYY-MM-DD format
//   - departureTime: must be in HH:MM format
//
// Returns a validation Error with field-specific error messages if validation fails.
func ValidateEstimateCost(req request.EstimateCostRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.TenantID) == "" {
		errors["tenantId"] = "tenantId is required"
	}
	if strings.TrimSpace(req.RouteID) == "" {
		errors["routeId"] = "routeId is required"
	}
	if strings.TrimSpace(req.Origin) == "" {
		errors["origin"] = "origin is required"
	}
	if strings.TrimSpace(req.Destination) == "" {
		errors["destination"] = "destination is required"
	}

	if strings.TrimSpace(req.ServiceDate) == "" {
		errors["serviceDate"] = "serviceDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ServiceDate); err != nil {
		errors["serviceDate"] = err.Error()
	}

	if strings.TrimSpace(req.DepartureTime) == "" {
		errors["departureTime"] = "departureTime is required"
	} else if _, err := time.Parse("15:04", req.DepartureTime); err != nil {
		errors["departureTime"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
