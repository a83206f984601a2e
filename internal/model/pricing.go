package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubsidyCalculation is the result of a read-only subsidy preview: how much
// of a service's cost the route pool can absorb and what that does to the
// break-even point.
type SubsidyCalculation struct {
	RouteID                 string          `json:"routeId"`
	RawCost                 decimal.Decimal `json:"rawCost"`
	SubsidyApplied          decimal.Decimal `json:"subsidyApplied"`
	EffectiveCost           decimal.Decimal `json:"effectiveCost"`
	MinimumPassengersNeeded int             `json:"minimumPassengersNeeded"`
	BreakEvenFare           decimal.Decimal `json:"breakEvenFare"`
	PoolAvailable           decimal.Decimal `json:"poolAvailable"`
}

// PriceQuote is the current per-passenger fare for a service instance. The
// base price is the effective cost divided by current bookings, clamped to
// the fare floor; non-members pay a surcharge on top.
type PriceQuote struct {
	RouteID                 string          `json:"routeId"`
	ServiceDate             time.Time       `json:"serviceDate"`
	CurrentBookings         int             `json:"currentBookings"`
	EffectiveCost           decimal.Decimal `json:"effectiveCost"`
	MemberPrice             decimal.Decimal `json:"memberPrice"`
	NonMemberPrice          decimal.Decimal `json:"nonMemberPrice"`
	FloorReached            bool            `json:"floorReached"`
	IsViable                bool            `json:"isViable"`
	MinimumPassengersNeeded int             `json:"minimumPassengersNeeded"`
}

// BookingPrice resolves a quote for one prospective passenger.
type BookingPrice struct {
	Price    decimal.Decimal `json:"price"`
	IsMember bool            `json:"isMember"`
}

// AllocationResult records how one profitable service's gross surplus was
// split. ToPool is the remainder after the three percentage cuts and absorbs
// all rounding, so the four parts always sum to the gross surplus exactly.
type AllocationResult struct {
	RouteID      string             `json:"routeId"`
	GrossSurplus decimal.Decimal    `json:"grossSurplus"`
	ToReserves   decimal.Decimal    `json:"toReserves"`
	ToBusiness   decimal.Decimal    `json:"toBusiness"`
	ToDividends  decimal.Decimal    `json:"toDividends"`
	ToPool       decimal.Decimal    `json:"toPool"`
	Transaction  SurplusTransaction `json:"transaction"`
}
