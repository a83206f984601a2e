package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/routing"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
)

// TestCostParameters returns the cost model used across tests. Values match
// the configuration defaults.
func TestCostParameters() config.CostParameters {
	return config.CostParameters{
		DriverHourlyRate:      15.50,
		FuelPricePerLitre:     1.45,
		VehicleMPG:            12.0,
		DepreciationPerMile:   0.35,
		MaintenancePerMile:    0.22,
		AnnualInsurance:       3200,
		ServicesPerYear:       500,
		OverheadPercent:       15,
		PeakBufferPercent:     20,
		OffPeakBufferPercent:  10,
		WinterFuelMultiplier:  1.15,
		SummerFuelMultiplier:  0.95,
		FallbackDurationHours: 1.5,
		FallbackDistanceMiles: 10,
	}
}

// TestPricingParameters returns the pricing bounds used across tests.
func TestPricingParameters() config.PricingParameters {
	return config.PricingParameters{
		MinimumFareFloor:        2.00,
		MaximumAcceptableFare:   5.00,
		NonMemberSurchargePct:   20,
		DefaultCooperativeModel: "passenger",
	}
}

// NewTestMemberRepository creates a member repository without payout
// reference encryption.
func NewTestMemberRepository(t *testing.T, db *sql.DB) *repository.MemberRepository {
	t.Helper()

	memberRepo, err := repository.NewMemberRepository(db, "")
	if err != nil {
		t.Fatalf("Failed to create member repository: %v", err)
	}
	return memberRepo
}

func NewTestPoolService(t *testing.T, db *sql.DB) *service.PoolService {
	t.Helper()

	return service.NewPoolService(repository.NewPoolRepository(db))
}

// NewTestCostService creates a CostService backed by the given distance
// provider; pass nil to always exercise the static fallback.
func NewTestCostService(t *testing.T, db *sql.DB, provider routing.Provider) *service.CostService {
	t.Helper()

	costRecordRepo := repository.NewCostRecordRepository(db)

	return service.NewCostService(
		TestCostParameters(),
		provider,
		costRecordRepo,
	)
}

func NewTestSubsidyService(t *testing.T, db *sql.DB) *service.SubsidyService {
	t.Helper()

	poolRepo := repository.NewPoolRepository(db)
	costRecordRepo := repository.NewCostRecordRepository(db)

	return service.NewSubsidyService(
		poolRepo,
		costRecordRepo,
		TestPricingParameters(),
	)
}

func NewTestAllocationService(t *testing.T, db *sql.DB) *service.AllocationService {
	t.Helper()

	return service.NewAllocationService(repository.NewPoolRepository(db))
}

func NewTestPricingService(t *testing.T, db *sql.DB) *service.PricingService {
	t.Helper()

	costRecordRepo := repository.NewCostRecordRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	memberRepo := NewTestMemberRepository(t, db)

	return service.NewPricingService(
		costRecordRepo,
		bookingRepo,
		memberRepo,
		TestPricingParameters(),
	)
}

func NewTestDividendService(t *testing.T, db *sql.DB) *service.DividendService {
	t.Helper()

	costRecordRepo := repository.NewCostRecordRepository(db)
	memberRepo := NewTestMemberRepository(t, db)
	bookingRepo := repository.NewBookingRepository(db)
	dutyRepo := repository.NewDutyRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)

	return service.NewDividendService(
		costRecordRepo,
		memberRepo,
		bookingRepo,
		dutyRepo,
		distributionRepo,
		"passenger",
	)
}

func NewTestOperationsService(t *testing.T, db *sql.DB) *service.OperationsService {
	t.Helper()

	bookingRepo := repository.NewBookingRepository(db)
	dutyRepo := repository.NewDutyRepository(db)
	costRecordRepo := repository.NewCostRecordRepository(db)

	return service.NewOperationsService(bookingRepo, dutyRepo, costRecordRepo)
}

func NewTestMemberService(t *testing.T, db *sql.DB) *service.MemberService {
	t.Helper()

	return service.NewMemberService(NewTestMemberRepository(t, db))
}

// NewTestSystemService creates a SystemService. The migration dialect is set
// so the schema version lookup can lazily create its version table.
func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	if err := goose.SetDialect("sqlite3"); err != nil {
		t.Fatalf("Failed to set migration dialect: %v", err)
	}
	return service.NewSystemService(db)
}

// MakeID generates a random UUID string.
func MakeID() string {
	return uuid.New().String()
}
