package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/testutil"
)

// TestAllocationService_AllocateSurplus tests the surplus split.
//
// WHY: Every profitable service feeds the cooperative through this split. The
// four parts must always sum to the gross surplus exactly, or money leaks out
// of (or into) the ledger over thousands of services.
func TestAllocationService_AllocateSurplus(t *testing.T) {
	ctx := context.Background()
	serviceDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	t.Run("splits surplus per the configured percentages", func(t *testing.T) {
		// Setup: 200.00 at 20/30/50 -> 40.00 / 60.00 / 100.00, 0.00 retained.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAllocationService(t, db)

		// Execute
		result, err := svc.AllocateSurplus(ctx, service.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     serviceDate,
			GrossSurplus:    decimal.NewFromInt(200),
			ReservesPercent: 20,
			BusinessPercent: 30,
			DividendPercent: 50,
		})
		if err != nil {
			t.Fatalf("AllocateSurplus() returned unexpected error: %v", err)
		}

		// Assert
		if got := result.ToReserves.StringFixed(2); got != "40.00" {
			t.Errorf("Expected reserves 40.00, got %s", got)
		}
		if got := result.ToBusiness.StringFixed(2); got != "60.00" {
			t.Errorf("Expected business 60.00, got %s", got)
		}
		if got := result.ToDividends.StringFixed(2); got != "100.00" {
			t.Errorf("Expected dividends 100.00, got %s", got)
		}
		if !result.ToPool.IsZero() {
			t.Errorf("Expected zero retained in pool, got %s", result.ToPool)
		}
	})

	t.Run("conserves every penny on awkward amounts", func(t *testing.T) {
		// 33.33 at 20/30/50 rounds each cut; the remainder stays in the pool.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAllocationService(t, db)
		gross := decimal.RequireFromString("33.33")

		result, err := svc.AllocateSurplus(ctx, service.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     serviceDate,
			GrossSurplus:    gross,
			ReservesPercent: 20,
			BusinessPercent: 30,
			DividendPercent: 50,
		})
		if err != nil {
			t.Fatalf("AllocateSurplus() returned unexpected error: %v", err)
		}

		total := result.ToReserves.Add(result.ToBusiness).Add(result.ToDividends).Add(result.ToPool)
		if !total.Equal(gross) {
			t.Errorf("Split parts sum to %s, want %s", total, gross)
		}
	})

	t.Run("creates the route's pool on first allocation", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAllocationService(t, db)
		poolRepo := repository.NewPoolRepository(db)

		_, err := svc.AllocateSurplus(ctx, service.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-new",
			ServiceDate:     serviceDate,
			GrossSurplus:    decimal.NewFromInt(50),
			Revenue:         decimal.NewFromInt(130),
			TotalCost:       decimal.NewFromInt(80),
			ReservesPercent: 20,
			BusinessPercent: 30,
			DividendPercent: 50,
		})
		if err != nil {
			t.Fatalf("AllocateSurplus() returned unexpected error: %v", err)
		}

		pool, err := poolRepo.GetPool(ctx, "route-new")
		if err != nil {
			t.Fatalf("GetPool() returned unexpected error: %v", err)
		}
		if got := pool.AccumulatedSurplus.StringFixed(2); got != "50.00" {
			t.Errorf("Expected accumulated surplus 50.00, got %s", got)
		}
		if got := pool.LifetimeRevenue.StringFixed(2); got != "130.00" {
			t.Errorf("Expected lifetime revenue 130.00, got %s", got)
		}
		if pool.ProfitableServices != 1 {
			t.Errorf("Expected 1 profitable service, got %d", pool.ProfitableServices)
		}
	})

	t.Run("rejects non-positive surplus", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAllocationService(t, db)

		_, err := svc.AllocateSurplus(ctx, service.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     serviceDate,
			GrossSurplus:    decimal.Zero,
			ReservesPercent: 20,
			BusinessPercent: 30,
			DividendPercent: 50,
		})
		if !errors.Is(err, apperrors.ErrInvalidSurplusAmount) {
			t.Fatalf("Expected ErrInvalidSurplusAmount, got %v", err)
		}
	})

	t.Run("rejects percentages that do not sum to 100", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAllocationService(t, db)

		_, err := svc.AllocateSurplus(ctx, service.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     serviceDate,
			GrossSurplus:    decimal.NewFromInt(100),
			ReservesPercent: 20,
			BusinessPercent: 30,
			DividendPercent: 40,
		})
		if !errors.Is(err, apperrors.ErrInvalidAllocationPercentages) {
			t.Fatalf("Expected ErrInvalidAllocationPercentages, got %v", err)
		}
	})
}

// TestAllocationService_LedgerReplay tests the ledger invariant.
//
// WHY: The transaction ledger is the audit trail: replaying the signed
// amounts from an empty pool must reconstruct the accumulated surplus, and
// each entry's recorded balances must chain exactly.
func TestAllocationService_LedgerReplay(t *testing.T) {
	ctx := context.Background()
	serviceDate := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	// Setup: two allocations followed by a subsidy draw on one route.
	db := testutil.SetupTestDB(t)
	allocSvc := testutil.NewTestAllocationService(t, db)
	subsidySvc := testutil.NewTestSubsidyService(t, db)
	poolRepo := repository.NewPoolRepository(db)

	for i, gross := range []string{"120.50", "79.50"} {
		_, err := allocSvc.AllocateSurplus(ctx, service.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     serviceDate.AddDate(0, 0, i),
			GrossSurplus:    decimal.RequireFromString(gross),
			ReservesPercent: 20,
			BusinessPercent: 30,
			DividendPercent: 50,
		})
		if err != nil {
			t.Fatalf("AllocateSurplus() returned unexpected error: %v", err)
		}
	}

	_, err := subsidySvc.ApplySubsidy(ctx, service.ApplySubsidyRequest{
		TenantID:      "tenant-1",
		RouteID:       "route-1",
		ServiceDate:   serviceDate.AddDate(0, 0, 2),
		SubsidyAmount: decimal.RequireFromString("15.25"),
		ServiceCost:   decimal.NewFromInt(80),
	})
	if err != nil {
		t.Fatalf("ApplySubsidy() returned unexpected error: %v", err)
	}

	// Execute: replay the ledger from zero.
	txns, err := poolRepo.ListTransactions(ctx, "route-1")
	if err != nil {
		t.Fatalf("ListTransactions() returned unexpected error: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("Expected 3 ledger entries, got %d", len(txns))
	}

	replayed := decimal.Zero
	for _, txn := range txns {
		if !txn.PoolBalanceBefore.Equal(replayed) {
			t.Errorf("Entry %s balance before is %s, replay says %s",
				txn.Type, txn.PoolBalanceBefore, replayed)
		}
		replayed = replayed.Add(txn.SignedAmount())
		if !txn.PoolBalanceAfter.Equal(replayed) {
			t.Errorf("Entry %s balance after is %s, replay says %s",
				txn.Type, txn.PoolBalanceAfter, replayed)
		}
	}

	// Assert: replay matches the stored pool balance (120.50+79.50-15.25).
	pool, err := poolRepo.GetPool(ctx, "route-1")
	if err != nil {
		t.Fatalf("GetPool() returned unexpected error: %v", err)
	}
	if !replayed.Equal(pool.AccumulatedSurplus) {
		t.Errorf("Replayed balance %s does not match pool balance %s",
			replayed, pool.AccumulatedSurplus)
	}
	if got := pool.AccumulatedSurplus.StringFixed(2); got != "184.75" {
		t.Errorf("Expected accumulated surplus 184.75, got %s", got)
	}
}
