package request

// RecordBookingRequest records one passenger booking on a service instance.
type RecordBookingRequest struct {
	TenantID     string  `json:"tenantId"`
	RouteID      string  `json:"routeId"`
	TimetableID  string  `json:"timetableId,omitempty"`
	ServiceDate  string  `json:"serviceDate"`
	CustomerID   string  `json:"customerId"`
	FarePaid     float64 `json:"farePaid"`
	IsMemberFare bool    `json:"isMemberFare"`
}

// RecordDutyRequest records one driver duty on a service instance.
type RecordDutyRequest struct {
	TenantID    string  `json:"tenantId"`
	RouteID     string  `json:"routeId"`
	ServiceDate string  `json:"serviceDate"`
	DriverID    string  `json:"driverId"`
	Hours       float64 `json:"hours,omitempty"`
}

// ReconcileRevenueRequest writes realized revenue onto a service's cost
// record after the service has run.
type ReconcileRevenueRequest struct {
	RouteID     string  `json:"routeId"`
	ServiceDate string  `json:"serviceDate"`
	Revenue     float64 `json:"revenue"`
}
