package validation

import (
	"strings"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
)

// ValidateAllocateSurplus validates a surplus allocation request.
//
// Required fields:
//   - tenantId, routeId: must be present
//   - serviceDate: must be in YYYY-MM-DD format
//   - grossSurplus: must be positive
//
// The three percentages must be given all together or not at all; the
// sum-to-100 check belongs to the allocation engine, not this layer.
func ValidateAllocateSurplus(req request.AllocateSurplusRequest) error {
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

	if req.GrossSurplus <= 0.0 {
		errors["grossSurplus"] = "grossSurplus must be positive"
	}
	if req.Revenue < 0.0 {
		errors["revenue"] = "revenue must be non-negative"
	}
	if req.TotalCost < 0.0 {
		errors["totalCost"] = "totalCost must be non-negative"
	}

	given := 0
	for _, p := range []*float64{req.ReservesPercent, req.BusinessPercent, req.DividendPercent} {
		if p != nil {
			given++
		}
	}
	if given != 0 && given != 3 {
		errors["percentages"] = "reservesPercent, businessPercent and dividendPercent must be given together"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
