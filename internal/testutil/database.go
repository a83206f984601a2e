package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pooled connection would get its own :memory: database,
	// so pin the pool to a single connection.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migration.
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Surplus pool table: one lifetime ledger per route. Monetary
		-- columns hold decimal strings so values round-trip exactly.
		CREATE TABLE surplus_pool (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			route_id VARCHAR(36) NOT NULL UNIQUE,
			accumulated_surplus TEXT NOT NULL DEFAULT '0',
			available_for_subsidy TEXT NOT NULL DEFAULT '0',
			reserved_for_reserves TEXT NOT NULL DEFAULT '0',
			reserved_for_business TEXT NOT NULL DEFAULT '0',
			total_distributed_dividends TEXT NOT NULL DEFAULT '0',
			lifetime_revenue TEXT NOT NULL DEFAULT '0',
			lifetime_cost TEXT NOT NULL DEFAULT '0',
			lifetime_surplus TEXT NOT NULL DEFAULT '0',
			services_operated INTEGER NOT NULL DEFAULT 0,
			profitable_services INTEGER NOT NULL DEFAULT 0,
			subsidized_services INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Append-only surplus transaction ledger
		CREATE TABLE surplus_transaction (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			pool_id VARCHAR(36) NOT NULL,
			tenant_id VARCHAR(36) NOT NULL,
			route_id VARCHAR(36) NOT NULL,
			timetable_id VARCHAR(36),
			service_date DATE NOT NULL,
			type VARCHAR(16) NOT NULL,
			amount TEXT NOT NULL,
			pool_balance_before TEXT NOT NULL,
			pool_balance_after TEXT NOT NULL,
			description TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(pool_id) REFERENCES surplus_pool(id)
		);

		-- Per-service cost snapshot
		CREATE TABLE service_cost_record (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			route_id VARCHAR(36) NOT NULL,
			timetable_id VARCHAR(36),
			service_date DATE NOT NULL,
			total_cost TEXT NOT NULL DEFAULT '0',
			subsidy_applied TEXT NOT NULL DEFAULT '0',
			effective_cost TEXT NOT NULL DEFAULT '0',
			revenue TEXT,
			net_surplus TEXT,
			breakdown TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT unique_service_cost UNIQUE (route_id, service_date)
		);

		-- Cooperative member table
		CREATE TABLE cooperative_member (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			customer_id VARCHAR(36),
			driver_id VARCHAR(36),
			membership_type VARCHAR(10) NOT NULL,
			voting_rights BOOLEAN NOT NULL DEFAULT TRUE,
			share_capital_invested TEXT NOT NULL DEFAULT '0',
			dividend_eligible BOOLEAN NOT NULL DEFAULT TRUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			payout_reference TEXT,
			joined_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			left_at DATETIME
		);

		-- Dividend distribution header, one per tenant and period
		CREATE TABLE dividend_distribution (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			period_start DATE NOT NULL,
			period_end DATE NOT NULL,
			cooperative_model VARCHAR(10) NOT NULL,
			total_revenue TEXT NOT NULL DEFAULT '0',
			total_costs TEXT NOT NULL DEFAULT '0',
			gross_surplus TEXT NOT NULL DEFAULT '0',
			reserves_percent FLOAT NOT NULL,
			business_percent FLOAT NOT NULL,
			dividend_percent FLOAT NOT NULL,
			reserves_amount TEXT NOT NULL DEFAULT '0',
			business_costs_amount TEXT NOT NULL DEFAULT '0',
			dividend_pool TEXT NOT NULL DEFAULT '0',
			eligible_members INTEGER NOT NULL DEFAULT 0,
			total_patronage FLOAT NOT NULL DEFAULT 0,
			status VARCHAR(12) NOT NULL DEFAULT 'pending',
			payment_method VARCHAR(20),
			paid_at DATETIME,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- One live distribution per period; cancelled runs free the period
		CREATE UNIQUE INDEX ux_dividend_distribution_period
			ON dividend_distribution(tenant_id, period_start, period_end)
			WHERE status != 'cancelled';

		-- Per-member dividend rows within a distribution
		CREATE TABLE member_dividend (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			distribution_id VARCHAR(36) NOT NULL,
			member_id VARCHAR(36) NOT NULL,
			patronage_value FLOAT NOT NULL,
			patronage_percent FLOAT NOT NULL,
			dividend_amount TEXT NOT NULL,
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			paid_date DATE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(distribution_id) REFERENCES dividend_distribution(id) ON DELETE CASCADE,
			FOREIGN KEY(member_id) REFERENCES cooperative_member(id)
		);

		-- Passenger bookings
		CREATE TABLE service_booking (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			route_id VARCHAR(36) NOT NULL,
			timetable_id VARCHAR(36),
			service_date DATE NOT NULL,
			customer_id VARCHAR(36) NOT NULL,
			fare_paid TEXT NOT NULL DEFAULT '0',
			is_member_fare BOOLEAN NOT NULL DEFAULT FALSE,
			booked_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Driver duties
		CREATE TABLE driver_duty (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			tenant_id VARCHAR(36) NOT NULL,
			route_id VARCHAR(36) NOT NULL,
			service_date DATE NOT NULL,
			driver_id VARCHAR(36) NOT NULL,
			hours FLOAT NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Indexes for performance
		CREATE INDEX ix_surplus_transaction_pool_id ON surplus_transaction(pool_id);
		CREATE INDEX ix_surplus_transaction_route_id ON surplus_transaction(route_id);
		CREATE INDEX ix_surplus_transaction_created_at ON surplus_transaction(created_at);
		CREATE INDEX ix_service_cost_record_tenant_date ON service_cost_record(tenant_id, service_date);
		CREATE INDEX ix_cooperative_member_tenant ON cooperative_member(tenant_id);
		CREATE INDEX ix_service_booking_service ON service_booking(route_id, service_date);
		CREATE INDEX ix_service_booking_customer ON service_booking(tenant_id, customer_id, service_date);
		CREATE INDEX ix_driver_duty_driver ON driver_duty(tenant_id, driver_id, service_date);
	`

	_, err := db.Exec(schema)
	return err
}
