package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Membership types.
const (
	MembershipFounding  = "founding"
	MembershipStandard  = "standard"
	MembershipAssociate = "associate"
)

// Cooperative models determine how the dividend pool is apportioned.
const (
	ModelPassenger = "passenger" // consumer co-op: patronage = trips ridden
	ModelWorker    = "worker"    // worker co-op: patronage = duties driven
	ModelHybrid    = "hybrid"    // 50/50 split between the two groups
)

// CooperativeMember is a tenant-scoped cooperative membership referencing a
// customer, a driver, or both. Members are soft-deactivated with an end date
// and never hard-deleted while dividend history references them.
type CooperativeMember struct {
	ID                   string          `json:"id"`
	TenantID             string          `json:"tenantId"`
	CustomerID           string          `json:"customerId,omitempty"`
	DriverID             string          `json:"driverId,omitempty"`
	MembershipType       string          `json:"membershipType"`
	VotingRights         bool            `json:"votingRights"`
	ShareCapitalInvested decimal.Decimal `json:"shareCapitalInvested"`
	DividendEligible     bool            `json:"dividendEligible"`
	IsActive             bool            `json:"isActive"`
	PayoutReference      string          `json:"payoutReference,omitempty"`
	JoinedAt             time.Time       `json:"joinedAt"`
	LeftAt               *time.Time      `json:"leftAt,omitempty"`
}
