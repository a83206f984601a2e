package validation

import (
	"fmt"
	"strings"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
)

// ValidMembershipType contains the allowed membership type values.
var ValidMembershipType = map[string]bool{
	"founding": true, "standard": true, "associate": true,
}

// ValidateCreateMember validates a membership registration request.
//
// Required fields:
//   - tenantId: must be present
//   - at least one of customerId and driverId
//
// Optional fields (validated if provided):
//   - membershipType: must be one of: founding, standard, associate
//   - shareCapitalInvested: must be non-negative
func ValidateCreateMember(req request.CreateMemberRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.TenantID) == "" {
		errors["tenantId"] = "tenantId is required"
	}
	if strings.TrimSpace(req.CustomerID) == "" && strings.TrimSpace(req.DriverID) == "" {
		errors["customerId"] = "at least one of customerId and driverId is required"
	}
	if req.MembershipType != "" && !ValidMembershipType[req.MembershipType] {
		errors["membershipType"] = fmt.Sprintf("invalid membership type: %s", req.MembershipType)
	}
	if req.ShareCapitalInvested < 0.0 {
		errors["shareCapitalInvested"] = "shareCapitalInvested must be non-negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
