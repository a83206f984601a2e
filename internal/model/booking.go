package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceBooking is a passenger booking on one service instance, recorded by
// the operations layer. Booking counts drive the dynamic price; per-customer
// counts are the passenger patronage measure for dividends.
type ServiceBooking struct {
	ID           string          `json:"id"`
	TenantID     string          `json:"tenantId"`
	RouteID      string          `json:"routeId"`
	TimetableID  string          `json:"timetableId,omitempty"`
	ServiceDate  time.Time       `json:"serviceDate"`
	CustomerID   string          `json:"customerId"`
	FarePaid     decimal.Decimal `json:"farePaid"`
	IsMemberFare bool            `json:"isMemberFare"`
	BookedAt     time.Time       `json:"bookedAt"`
}

// DriverDuty is one driver's assignment to a service instance. Duty counts
// are the worker patronage measure for dividends; hours are kept for
// reporting.
type DriverDuty struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	RouteID     string    `json:"routeId"`
	ServiceDate time.Time `json:"serviceDate"`
	DriverID    string    `json:"driverId"`
	Hours       float64   `json:"hours"`
	CreatedAt   time.Time `json:"createdAt"`
}
