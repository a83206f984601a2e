package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/testutil"
)

// TestSubsidyService_CalculateAvailableSubsidy tests the subsidy preview.
//
// WHY: The subsidy caps are the mechanism that stops a single loss-making
// service from draining a route's reserve. Both bounds and the no-pool case
// must behave exactly as documented.
func TestSubsidyService_CalculateAvailableSubsidy(t *testing.T) {
	ctx := context.Background()

	t.Run("service cap binds when tighter than pool cap", func(t *testing.T) {
		// Setup: pool 100.00 available, service costs 80.00.
		// 50% of pool = 50.00, 30% of service = 24.00 -> subsidy 24.00.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)

		calc, err := svc.CalculateAvailableSubsidy(ctx, "route-1", decimal.NewFromInt(80), 50, 30)
		if err != nil {
			t.Fatalf("CalculateAvailableSubsidy() returned unexpected error: %v", err)
		}

		if got := calc.SubsidyApplied.StringFixed(2); got != "24.00" {
			t.Errorf("Expected subsidy 24.00, got %s", got)
		}
		if got := calc.EffectiveCost.StringFixed(2); got != "56.00" {
			t.Errorf("Expected effective cost 56.00, got %s", got)
		}
	})

	t.Run("pool cap binds when pool is small", func(t *testing.T) {
		// Pool 20.00 available: 50% of pool = 10.00 < 30% of 80.00 = 24.00.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(20).Build(t, db)

		calc, err := svc.CalculateAvailableSubsidy(ctx, "route-1", decimal.NewFromInt(80), 50, 30)
		if err != nil {
			t.Fatalf("CalculateAvailableSubsidy() returned unexpected error: %v", err)
		}

		if got := calc.SubsidyApplied.StringFixed(2); got != "10.00" {
			t.Errorf("Expected subsidy 10.00, got %s", got)
		}
	})

	t.Run("route without a pool yields zero subsidy", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)

		calc, err := svc.CalculateAvailableSubsidy(ctx, "route-none", decimal.NewFromInt(80), 50, 30)
		if err != nil {
			t.Fatalf("CalculateAvailableSubsidy() returned unexpected error: %v", err)
		}

		if !calc.SubsidyApplied.IsZero() {
			t.Errorf("Expected zero subsidy, got %s", calc.SubsidyApplied)
		}
		if got := calc.EffectiveCost.StringFixed(2); got != "80.00" {
			t.Errorf("Expected effective cost 80.00, got %s", got)
		}
	})

	t.Run("computes break-even point at the maximum fare", func(t *testing.T) {
		// Effective cost 56.00 at max fare 5.00 -> 12 passengers minimum.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)

		calc, err := svc.CalculateAvailableSubsidy(ctx, "route-1", decimal.NewFromInt(80), 50, 30)
		if err != nil {
			t.Fatalf("CalculateAvailableSubsidy() returned unexpected error: %v", err)
		}

		if calc.MinimumPassengersNeeded != 12 {
			t.Errorf("Expected 12 minimum passengers, got %d", calc.MinimumPassengersNeeded)
		}
	})
}

// TestSubsidyService_ApplySubsidy tests the atomic subsidy draw.
//
// WHY: Applying a subsidy mutates the pool, the ledger and the cost record in
// one transaction. A partial application would corrupt the ledger invariant,
// so both the success and failure paths need coverage.
func TestSubsidyService_ApplySubsidy(t *testing.T) {
	ctx := context.Background()
	serviceDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("draws subsidy and records ledger entry", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		poolRepo := repository.NewPoolRepository(db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)

		txn, err := svc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
			TenantID:      "tenant-1",
			RouteID:       "route-1",
			ServiceDate:   serviceDate,
			SubsidyAmount: decimal.NewFromInt(24),
			ServiceCost:   decimal.NewFromInt(80),
		})
		if err != nil {
			t.Fatalf("ApplySubsidy() returned unexpected error: %v", err)
		}

		if got := txn.PoolBalanceBefore.StringFixed(2); got != "100.00" {
			t.Errorf("Expected balance before 100.00, got %s", got)
		}
		if got := txn.PoolBalanceAfter.StringFixed(2); got != "76.00" {
			t.Errorf("Expected balance after 76.00, got %s", got)
		}

		pool, err := poolRepo.GetPool(ctx, "route-1")
		if err != nil {
			t.Fatalf("GetPool() returned unexpected error: %v", err)
		}
		if got := pool.AvailableForSubsidy.StringFixed(2); got != "76.00" {
			t.Errorf("Expected available 76.00, got %s", got)
		}
		if pool.SubsidizedServices != 1 {
			t.Errorf("Expected 1 subsidized service, got %d", pool.SubsidizedServices)
		}
	})

	t.Run("rejects draw beyond available balance and leaves pool unchanged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		poolRepo := repository.NewPoolRepository(db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)

		_, err := svc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
			TenantID:      "tenant-1",
			RouteID:       "route-1",
			ServiceDate:   serviceDate,
			SubsidyAmount: decimal.NewFromInt(150),
			ServiceCost:   decimal.NewFromInt(200),
		})
		if !errors.Is(err, apperrors.ErrInsufficientSurplus) {
			t.Fatalf("Expected ErrInsufficientSurplus, got %v", err)
		}

		pool, err := poolRepo.GetPool(ctx, "route-1")
		if err != nil {
			t.Fatalf("GetPool() returned unexpected error: %v", err)
		}
		if got := pool.AvailableForSubsidy.StringFixed(2); got != "100.00" {
			t.Errorf("Expected pool unchanged at 100.00, got %s", got)
		}

		txns, err := poolRepo.ListTransactions(ctx, "route-1")
		if err != nil {
			t.Fatalf("ListTransactions() returned unexpected error: %v", err)
		}
		if len(txns) != 0 {
			t.Errorf("Expected empty ledger after failed draw, got %d entries", len(txns))
		}
	})

	t.Run("rejects non-positive subsidy amount", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)

		_, err := svc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
			TenantID:      "tenant-1",
			RouteID:       "route-1",
			ServiceDate:   serviceDate,
			SubsidyAmount: decimal.Zero,
			ServiceCost:   decimal.NewFromInt(80),
		})
		if !errors.Is(err, apperrors.ErrNegativeAmount) {
			t.Fatalf("Expected ErrNegativeAmount, got %v", err)
		}
	})

	t.Run("fails when the route has no pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)

		_, err := svc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
			TenantID:      "tenant-1",
			RouteID:       "route-none",
			ServiceDate:   serviceDate,
			SubsidyAmount: decimal.NewFromInt(10),
			ServiceCost:   decimal.NewFromInt(80),
		})
		if !errors.Is(err, apperrors.ErrPoolNotFound) {
			t.Fatalf("Expected ErrPoolNotFound, got %v", err)
		}
	})

	t.Run("updates the service's cost record within the same draw", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSubsidyService(t, db)
		costRecordRepo := repository.NewCostRecordRepository(db)
		testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(80).Build(t, db)

		_, err := svc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
			TenantID:      "tenant-1",
			RouteID:       "route-1",
			ServiceDate:   serviceDate,
			SubsidyAmount: decimal.NewFromInt(24),
			ServiceCost:   decimal.NewFromInt(80),
		})
		if err != nil {
			t.Fatalf("ApplySubsidy() returned unexpected error: %v", err)
		}

		rec, err := costRecordRepo.GetByService(ctx, "route-1", serviceDate)
		if err != nil {
			t.Fatalf("GetByService() returned unexpected error: %v", err)
		}
		if got := rec.SubsidyApplied.StringFixed(2); got != "24.00" {
			t.Errorf("Expected subsidy applied 24.00, got %s", got)
		}
		if got := rec.EffectiveCost.StringFixed(2); got != "56.00" {
			t.Errorf("Expected effective cost 56.00, got %s", got)
		}
	})
}

// TestSubsidyService_ApplySubsidy_Concurrent tests concurrent draws.
//
// WHY: Pool mutations are serialized through a per-route lock. Concurrent
// draws must never push the pool negative or lose updates; the sum of
// successful draws has to equal the pool's total decrease.
func TestSubsidyService_ApplySubsidy_Concurrent(t *testing.T) {
	ctx := context.Background()
	serviceDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSubsidyService(t, db)
	poolRepo := repository.NewPoolRepository(db)
	testutil.NewPool("tenant-1", "route-1").WithAvailable(100).Build(t, db)

	const workers = 10
	var wg sync.WaitGroup
	results := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(day int) {
			defer wg.Done()
			_, err := svc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
				TenantID:      "tenant-1",
				RouteID:       "route-1",
				ServiceDate:   serviceDate.AddDate(0, 0, day),
				SubsidyAmount: decimal.NewFromInt(15),
				ServiceCost:   decimal.NewFromInt(80),
			})
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, apperrors.ErrInsufficientSurplus) {
			t.Fatalf("Unexpected error from concurrent draw: %v", err)
		}
	}

	// 100.00 / 15.00 per draw: only 6 draws fit.
	if succeeded != 6 {
		t.Errorf("Expected 6 successful draws, got %d", succeeded)
	}

	pool, err := poolRepo.GetPool(ctx, "route-1")
	if err != nil {
		t.Fatalf("GetPool() returned unexpected error: %v", err)
	}
	if got := pool.AvailableForSubsidy.StringFixed(2); got != "10.00" {
		t.Errorf("Expected available 10.00 after 6 draws, got %s", got)
	}
	if pool.AvailableForSubsidy.IsNegative() {
		t.Error("Pool balance went negative under concurrency")
	}
}
