package validation

import (
	"strings"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
)

// ValidateCalculateSubsidy validates a subsidy preview request.
//
// Required fields:
//   - routeId: must be present
//   - serviceCost: must be positive
//
// Optional percentage caps must lie in (0, 100] if provided.
func ValidateCalculateSubsidy(req request.CalculateSubsidyRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.RouteID) == "" {
		errors["routeId"] = "routeId is required"
	}
	if req.ServiceCost <= 0.0 {
		errors["serviceCost"] = "serviceCost must be positive"
	}
	if req.MaxSurplusPercent != nil && (*req.MaxSurplusPercent <= 0.0 || *req.MaxSurplusPercent > 100.0) {
		errors["maxSurplusPercent"] = "maxSurplusPercent must be between 0 and 100"
	}
	if req.MaxServicePercent != nil && (*req.MaxServicePercent <= 0.0 || *req.MaxServicePercent > 100.0) {
		errors["maxServicePercent"] = "maxServicePercent must be between 0 and 100"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

// ValidateApplySubsidy validates a subsidy draw request.
//
// Required fields:
//   - tenantId, routeId: must be present
//   - serviceDate: must be in YYYY-MM-DD format
//   - subsidyAmount: must be positive
//   - serviceCost: must be non-negative
func ValidateApplySubsidy(req request.ApplySubsidyRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.TenantID) == "" {
		errors["tenantId"] = "tenantId is required"
	}
	if strings.TrimSpace(req.RouteID) == "" {
		errors["routeId"] = "routeId is required"
	}

	if strings.TrimSpace(req.ServiceDate) == "" {
		errors["serviceDate"] = "serviceDate is required"
	} else if _, err := time.Parse("2006-01-02", req.ServiceDate); err != nil {
		errors["serviceDate"] = err.Error()
	}

	if req.SubsidyAmount <= 0.0 {
		errors["subsidyAmount"] = "subsidyAmount must be positive"
	}
	if req.ServiceCost < 0.0 {
		errors["serviceCost"] = "serviceCost must be non-negative"
	}
	if req.PassengerCount < 0 {
		errors["passengerCount"] = "passengerCount must be non-negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
