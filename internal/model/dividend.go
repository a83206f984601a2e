package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Distribution statuses. A computed run starts as pending, becomes calculated
// once persisted, and distributed once paid out. Cancelled runs release their
// period for recalculation.
const (
	DistributionPending     = "pending"
	DistributionCalculated  = "calculated"
	DistributionDistributed = "distributed"
	DistributionCancelled   = "cancelled"
)

// Member dividend statuses.
const (
	DividendPending = "pending"
	DividendPaid    = "paid"
)

// DividendDistribution is the header of one dividend run over a tenant's
// period. It is immutable once distributed, except for payment bookkeeping.
type DividendDistribution struct {
	ID                  string          `json:"id"`
	TenantID            string          `json:"tenantId"`
	PeriodStart         time.Time       `json:"periodStart"`
	PeriodEnd           time.Time       `json:"periodEnd"`
	CooperativeModel    string          `json:"cooperativeModel"`
	TotalRevenue        decimal.Decimal `json:"totalRevenue"`
	TotalCosts          decimal.Decimal `json:"totalCosts"`
	GrossSurplus        decimal.Decimal `json:"grossSurplus"`
	ReservesPercent     float64         `json:"reservesPercent"`
	BusinessPercent     float64         `json:"businessPercent"`
	DividendPercent     float64         `json:"dividendPercent"`
	ReservesAmount      decimal.Decimal `json:"reservesAmount"`
	BusinessCostsAmount decimal.Decimal `json:"businessCostsAmount"`
	DividendPool        decimal.Decimal `json:"dividendPool"`
	EligibleMembers     int             `json:"eligibleMembers"`
	TotalPatronage      float64         `json:"totalPatronage"`
	Status              string          `json:"status"`
	PaymentMethod       string          `json:"paymentMethod,omitempty"`
	PaidAt              *time.Time      `json:"paidAt,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

// MemberDividend is one member's payout line within a distribution. The sum
// of dividend amounts across a distribution reproduces the dividend pool
// within rounding tolerance.
type MemberDividend struct {
	ID               string          `json:"id"`
	DistributionID   string          `json:"distributionId"`
	MemberID         string          `json:"memberId"`
	PatronageValue   float64         `json:"patronageValue"`
	PatronagePercent float64         `json:"patronagePercent"`
	DividendAmount   decimal.Decimal `json:"dividendAmount"`
	Status           string          `json:"status"`
	PaidDate         *time.Time      `json:"paidDate,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// DividendCalculationResult is an unsaved dividend run: the distribution
// header plus one row per eligible member with patronage in the period.
type DividendCalculationResult struct {
	Distribution DividendDistribution `json:"distribution"`
	Dividends    []MemberDividend     `json:"dividends"`
}
