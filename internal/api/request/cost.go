package request

// EstimateCostRequest is the body for a service cost estimate. DepartureTime
// is HH:MM and drives peak-hour detection; Origin and Destination are free
// text addresses handed to the distance provider.
type EstimateCostRequest struct {
	TenantID      string `json:"tenantId"`
	RouteID       string `json:"routeId"`
	TimetableID   string `json:"timetableId,omitempty"`
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	ServiceDate   string `json:"serviceDate"`
	DepartureTime string `json:"departureTime"`
	VehicleType   string `json:"vehicleType,omitempty"`
}
