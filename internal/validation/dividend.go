package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
)

// ValidCooperativeModel contains the allowed cooperative model values.
var ValidCooperativeModel = map[string]bool{
	"passenger": true, "worker": true, "hybrid": true,
}

// ValidateCalculateDividend validates a dividend calculation request.
//
// Required fields:
//   - tenantId: must be present
//   - periodStart, periodEnd: must be in YYYY-MM-DD format, start before end
//
// Optional fields (validated if provided):
//   - cooperativeModel: must be one of: passenger, worker, hybrid
//   - percentages: must be given all together
func ValidateCalculateDividend(req request.CalculateDividendRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.TenantID) == "" {
		errors["tenantId"] = "tenantId is required"
	}

	var start, end time.Time
	var startErr, endErr error

	if strings.TrimSpace(req.PeriodStart) == "" {
		errors["periodStart"] = "periodStart is required"
	} else if start, startErr = time.Parse("2006-01-02", req.PeriodStart); startErr != nil {
		errors["periodStart"] = startErr.Error()
	}
	if strings.TrimSpace(req.PeriodEnd) == "" {
		errors["periodEnd"] = "periodEnd is required"
	} else if end, endErr = time.Parse("2006-01-02", req.PeriodEnd); endErr != nil {
		errors["periodEnd"] = endErr.Error()
	}
	if startErr == nil && endErr == nil && !start.IsZero() && !end.IsZero() && !start.Before(end) {
		errors["periodEnd"] = "periodEnd must be after periodStart"
	}

	if req.CooperativeModel != "" && !ValidCooperativeModel[req.CooperativeModel] {
		errors["cooperativeModel"] = fmt.Sprintf("invalid cooperative model: %s", req.CooperativeModel)
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

// ValidatePayDistribution validates a distribution payout request.
func ValidatePayDistribution(req request.PayDistributionRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.PaymentMethod) == "" {
		errors["paymentMethod"] = "paymentMethod is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
