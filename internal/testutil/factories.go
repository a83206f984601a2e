package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
)

// MemberBuilder provides a fluent interface for creating test cooperative members.
//
// Example usage:
//
//	// Simple creation with defaults (an eligible passenger member)
//	member := testutil.NewMember(tenantID).Build(t, db)
//
//	// Customized member
//	member := testutil.NewMember(tenantID).
//	    AsDriver("driver-1").
//	    Founding().
//	    Build(t, db)
type MemberBuilder struct {
	ID               string
	TenantID         string
	CustomerID       string
	DriverID         string
	MembershipType   string
	DividendEligible bool
	IsActive         bool
	ShareCapital     decimal.Decimal
	PayoutReference  string
}

// NewMember creates a MemberBuilder with sensible defaults: an active,
// dividend-eligible standard passenger member.
func NewMember(tenantID string) *MemberBuilder {
	return &MemberBuilder{
		ID:               MakeID(),
		TenantID:         tenantID,
		CustomerID:       MakeID(),
		MembershipType:   model.MembershipStandard,
		DividendEligible: true,
		IsActive:         true,
		ShareCapital:     decimal.NewFromInt(100),
	}
}

// AsPassenger sets the customer reference and clears any driver reference.
func (b *MemberBuilder) AsPassenger(customerID string) *MemberBuilder {
	b.CustomerID = customerID
	b.DriverID = ""
	return b
}

// AsDriver sets the driver reference and clears any customer reference.
func (b *MemberBuilder) AsDriver(driverID string) *MemberBuilder {
	b.DriverID = driverID
	b.CustomerID = ""
	return b
}

// AsHybridMember sets both references for a member who rides and drives.
func (b *MemberBuilder) AsHybridMember(customerID, driverID string) *MemberBuilder {
	b.CustomerID = customerID
	b.DriverID = driverID
	return b
}

// Founding marks the member as a founding member.
func (b *MemberBuilder) Founding() *MemberBuilder {
	b.MembershipType = model.MembershipFounding
	return b
}

// NotEligible excludes the member from dividend runs.
func (b *MemberBuilder) NotEligible() *MemberBuilder {
	b.DividendEligible = false
	return b
}

// Inactive marks the membership as ended.
func (b *MemberBuilder) Inactive() *MemberBuilder {
	b.IsActive = false
	return b
}

// WithPayoutReference sets the stored payout reference.
func (b *MemberBuilder) WithPayoutReference(ref string) *MemberBuilder {
	b.PayoutReference = ref
	return b
}

// Build inserts the member and returns the created model.
func (b *MemberBuilder) Build(t *testing.T, db *sql.DB) model.CooperativeMember {
	t.Helper()

	query := `
		INSERT INTO cooperative_member
			(id, tenant_id, customer_id, driver_id, membership_type, voting_rights,
			 share_capital_invested, dividend_eligible, is_active, payout_reference, joined_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.TenantID, nullable(b.CustomerID), nullable(b.DriverID), b.MembershipType,
		true, b.ShareCapital.String(), b.DividendEligible, b.IsActive,
		nullable(b.PayoutReference), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to create test member: %v", err)
	}

	return model.CooperativeMember{
		ID:                   b.ID,
		TenantID:             b.TenantID,
		CustomerID:           b.CustomerID,
		DriverID:             b.DriverID,
		MembershipType:       b.MembershipType,
		VotingRights:         true,
		ShareCapitalInvested: b.ShareCapital,
		DividendEligible:     b.DividendEligible,
		IsActive:             b.IsActive,
		PayoutReference:      b.PayoutReference,
	}
}

// PoolBuilder provides a fluent interface for creating test surplus pools.
type PoolBuilder struct {
	ID        string
	TenantID  string
	RouteID   string
	Available decimal.Decimal
}

// NewPool creates a PoolBuilder with a zero balance.
func NewPool(tenantID, routeID string) *PoolBuilder {
	return &PoolBuilder{
		ID:       MakeID(),
		TenantID: tenantID,
		RouteID:  routeID,
	}
}

// WithAvailable seeds the pool's balances. Accumulated surplus is set to the
// same amount so the pool is internally consistent.
func (b *PoolBuilder) WithAvailable(amount float64) *PoolBuilder {
	b.Available = decimal.NewFromFloat(amount)
	return b
}

// Build inserts the pool and returns the created model.
func (b *PoolBuilder) Build(t *testing.T, db *sql.DB) model.SurplusPool {
	t.Helper()

	query := `
		INSERT INTO surplus_pool
			(id, tenant_id, route_id, accumulated_surplus, available_for_subsidy)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.TenantID, b.RouteID, b.Available.String(), b.Available.String())
	if err != nil {
		t.Fatalf("Failed to create test pool: %v", err)
	}

	pool := model.EmptyPool(b.RouteID)
	pool.ID = b.ID
	pool.TenantID = b.TenantID
	pool.AccumulatedSurplus = b.Available
	pool.AvailableForSubsidy = b.Available
	return pool
}

// CostRecordBuilder provides a fluent interface for creating test cost records.
type CostRecordBuilder struct {
	ID          string
	TenantID    string
	RouteID     string
	ServiceDate time.Time
	TotalCost   decimal.Decimal
	Subsidy     decimal.Decimal
	Revenue     *decimal.Decimal
}

// NewCostRecord creates a CostRecordBuilder for one service instance.
func NewCostRecord(tenantID, routeID string, serviceDate time.Time) *CostRecordBuilder {
	return &CostRecordBuilder{
		ID:          MakeID(),
		TenantID:    tenantID,
		RouteID:     routeID,
		ServiceDate: serviceDate,
		TotalCost:   decimal.NewFromInt(100),
	}
}

// WithTotalCost sets the estimated total cost.
func (b *CostRecordBuilder) WithTotalCost(cost float64) *CostRecordBuilder {
	b.TotalCost = decimal.NewFromFloat(cost)
	return b
}

// WithSubsidy sets the subsidy already applied.
func (b *CostRecordBuilder) WithSubsidy(subsidy float64) *CostRecordBuilder {
	b.Subsidy = decimal.NewFromFloat(subsidy)
	return b
}

// WithRevenue sets the reconciled revenue.
func (b *CostRecordBuilder) WithRevenue(revenue float64) *CostRecordBuilder {
	d := decimal.NewFromFloat(revenue)
	b.Revenue = &d
	return b
}

// Build inserts the cost record and returns the created model. Effective
// cost and net surplus are derived the way the repository derives them.
func (b *CostRecordBuilder) Build(t *testing.T, db *sql.DB) model.ServiceCostRecord {
	t.Helper()

	effective := b.TotalCost.Sub(b.Subsidy)

	var revenue, netSurplus interface{}
	rec := model.ServiceCostRecord{
		ID:             b.ID,
		TenantID:       b.TenantID,
		RouteID:        b.RouteID,
		ServiceDate:    b.ServiceDate,
		TotalCost:      b.TotalCost,
		SubsidyApplied: b.Subsidy,
		EffectiveCost:  effective,
	}
	if b.Revenue != nil {
		net := b.Revenue.Sub(effective)
		revenue = b.Revenue.String()
		netSurplus = net.String()
		rec.Revenue = b.Revenue
		rec.NetSurplus = &net
	}

	query := `
		INSERT INTO service_cost_record
			(id, tenant_id, route_id, service_date, total_cost, subsidy_applied,
			 effective_cost, revenue, net_surplus)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		b.ID, b.TenantID, b.RouteID, b.ServiceDate.Format("2006-01-02"),
		b.TotalCost.String(), b.Subsidy.String(), effective.String(), revenue, netSurplus)
	if err != nil {
		t.Fatalf("Failed to create test cost record: %v", err)
	}

	return rec
}

// CreateBooking inserts one booking row for a service instance.
func CreateBooking(t *testing.T, db *sql.DB, tenantID, routeID, customerID string, serviceDate time.Time) {
	t.Helper()

	query := `
		INSERT INTO service_booking
			(id, tenant_id, route_id, service_date, customer_id, fare_paid, is_member_fare, booked_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		MakeID(), tenantID, routeID, serviceDate.Format("2006-01-02"),
		customerID, "3.50", true, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		t.Fatalf("Failed to create test booking: %v", err)
	}
}

// CreateBookings inserts count bookings for one customer on consecutive days
// starting at serviceDate.
func CreateBookings(t *testing.T, db *sql.DB, tenantID, routeID, customerID string, serviceDate time.Time, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		CreateBooking(t, db, tenantID, routeID, customerID, serviceDate.AddDate(0, 0, i))
	}
}

// CreateDuty inserts one driver duty row for a service instance.
func CreateDuty(t *testing.T, db *sql.DB, tenantID, routeID, driverID string, serviceDate time.Time) {
	t.Helper()

	query := `
		INSERT INTO driver_duty (id, tenant_id, route_id, service_date, driver_id, hours)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query,
		MakeID(), tenantID, routeID, serviceDate.Format("2006-01-02"), driverID, 6.5)
	if err != nil {
		t.Fatalf("Failed to create test duty: %v", err)
	}
}

// CreateDuties inserts count duties for one driver on consecutive days
// starting at serviceDate.
func CreateDuties(t *testing.T, db *sql.DB, tenantID, routeID, driverID string, serviceDate time.Time, count int) {
	t.Helper()

	for i := 0; i < count; i++ {
		CreateDuty(t, db, tenantID, routeID, driverID, serviceDate.AddDate(0, 0, i))
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
