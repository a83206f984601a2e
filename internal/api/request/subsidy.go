package request

// CalculateSubsidyRequest previews the subsidy a service could draw from its
// route's pool. The percentage caps are optional; when nil the configured
// defaults apply.
type CalculateSubsidyRequest struct {
	RouteID           string   `json:"routeId"`
	ServiceCost       float64  `json:"serviceCost"`
	MaxSurplusPercent *float64 `json:"maxSurplusPercent,omitempty"`
	MaxServicePercent *float64 `json:"maxServicePercent,omitempty"`
}

// ApplySubsidyRequest draws a subsidy against one service instance.
type ApplySubsidyRequest struct {
	TenantID       string  `json:"tenantId"`
	RouteID        string  `json:"routeId"`
	TimetableID    string  `json:"timetableId,omitempty"`
	ServiceDate    string  `json:"serviceDate"`
	SubsidyAmount  float64 `json:"subsidyAmount"`
	ServiceCost    float64 `json:"serviceCost"`
	PassengerCount int     `json:"passengerCount,omitempty"`
}
