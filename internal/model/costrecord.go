package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ServiceCostRecord is the per-service financial snapshot for one
// (route, service date) instance. It is created when the cost estimator runs,
// updated when subsidy is applied, and reconciled once final revenue is known.
type ServiceCostRecord struct {
	ID             string           `json:"id"`
	TenantID       string           `json:"tenantId"`
	RouteID        string           `json:"routeId"`
	TimetableID    string           `json:"timetableId,omitempty"`
	ServiceDate    time.Time        `json:"serviceDate"`
	TotalCost      decimal.Decimal  `json:"totalCost"`
	SubsidyApplied decimal.Decimal  `json:"subsidyApplied"`
	EffectiveCost  decimal.Decimal  `json:"effectiveCost"`
	Revenue        *decimal.Decimal `json:"revenue,omitempty"`
	NetSurplus     *decimal.Decimal `json:"netSurplus,omitempty"`
	Breakdown      *CostBreakdown   `json:"breakdown,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// CostBreakdown itemizes an estimated service operating cost. Amounts are
// kept at full precision; rounding happens only when rendered.
type CostBreakdown struct {
	DriverWages           decimal.Decimal `json:"driverWages"`
	Fuel                  decimal.Decimal `json:"fuel"`
	Depreciation          decimal.Decimal `json:"depreciation"`
	MaintenanceAllocation decimal.Decimal `json:"maintenanceAllocation"`
	InsuranceAllocation   decimal.Decimal `json:"insuranceAllocation"`
	Overhead              decimal.Decimal `json:"overhead"`
	Total                 decimal.Decimal `json:"total"`

	DistanceMiles float64 `json:"distanceMiles"`
	DurationHours float64 `json:"durationHours"`
	PeakService   bool    `json:"peakService"`
	BufferPercent float64 `json:"bufferPercent"`
	FallbackUsed  bool    `json:"fallbackUsed"`
}
