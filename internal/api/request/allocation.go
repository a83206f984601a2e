package request

// AllocateSurplusRequest splits one profitable service's surplus. The three
// percentages are optional as a group; when all nil the configured defaults
// apply, otherwise all three must be present and sum to 100.
type AllocateSurplusRequest struct {
	TenantID        string   `json:"tenantId"`
	RouteID         string   `json:"routeId"`
	TimetableID     string   `json:"timetableId,omitempty"`
	ServiceDate     string   `json:"serviceDate"`
	GrossSurplus    float64  `json:"grossSurplus"`
	Revenue         float64  `json:"revenue,omitempty"`
	TotalCost       float64  `json:"totalCost,omitempty"`
	ReservesPercent *float64 `json:"reservesPercent,omitempty"`
	BusinessPercent *float64 `json:"businessPercent,omitempty"`
	DividendPercent *float64 `json:"dividendPercent,omitempty"`
}
