package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SurplusPool is the lifetime balance sheet for a single route. Profitable
// services feed it through the allocator; under-loaded services draw subsidy
// from it. Pools are created lazily and never deleted.
//
// At rest, AccumulatedSurplus equals the sum of AvailableForSubsidy,
// ReservedForReserves, ReservedForBusiness and TotalDistributedDividends.
type SurplusPool struct {
	ID                        string          `json:"id"`
	TenantID                  string          `json:"tenantId"`
	RouteID                   string          `json:"routeId"`
	AccumulatedSurplus        decimal.Decimal `json:"accumulatedSurplus"`
	AvailableForSubsidy       decimal.Decimal `json:"availableForSubsidy"`
	ReservedForReserves       decimal.Decimal `json:"reservedForReserves"`
	ReservedForBusiness       decimal.Decimal `json:"reservedForBusiness"`
	TotalDistributedDividends decimal.Decimal `json:"totalDistributedDividends"`
	LifetimeRevenue           decimal.Decimal `json:"lifetimeRevenue"`
	LifetimeCost              decimal.Decimal `json:"lifetimeCost"`
	LifetimeSurplus           decimal.Decimal `json:"lifetimeSurplus"`
	ServicesOperated          int             `json:"servicesOperated"`
	ProfitableServices        int             `json:"profitableServices"`
	SubsidizedServices        int             `json:"subsidizedServices"`
	CreatedAt                 time.Time       `json:"createdAt"`
	UpdatedAt                 time.Time       `json:"updatedAt"`
}

// EmptyPool returns the zero-balance view of an uninitialized route pool.
// Read-only queries for a route without a pool return this rather than an error.
func EmptyPool(routeID string) SurplusPool {
	return SurplusPool{
		RouteID:                   routeID,
		AccumulatedSurplus:        decimal.Zero,
		AvailableForSubsidy:       decimal.Zero,
		ReservedForReserves:       decimal.Zero,
		ReservedForBusiness:       decimal.Zero,
		TotalDistributedDividends: decimal.Zero,
		LifetimeRevenue:           decimal.Zero,
		LifetimeCost:              decimal.Zero,
		LifetimeSurplus:           decimal.Zero,
	}
}
