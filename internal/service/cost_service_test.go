package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/money"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/routing"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/testutil"
)

func estimateRequest(serviceDate time.Time, departure string) service.EstimateCostRequest {
	return service.EstimateCostRequest{
		TenantID:      "tenant-1",
		RouteID:       "route-1",
		Origin:        "Millbrook Village Hall",
		Destination:   "Ashford Interchange",
		ServiceDate:   serviceDate,
		DepartureTime: departure,
		VehicleType:   "minibus",
	}
}

// TestCostService_EstimateCost tests the cost estimator.
//
// WHY: The estimate is the denominator of every fare and the baseline of
// every subsidy, so the provider fallback, the peak buffer and the seasonal
// fuel adjustment each need to demonstrably move the number.
func TestCostService_EstimateCost(t *testing.T) {
	ctx := context.Background()
	spring := time.Date(2026, 4, 14, 0, 0, 0, 0, time.UTC)

	t.Run("uses provider distance and duration when available", func(t *testing.T) {
		// 32187m over 2700s: roughly 20 miles in 45 minutes.
		db := testutil.SetupTestDB(t)
		provider := testutil.NewStaticProvider(32187, 2700)
		svc := testutil.NewTestCostService(t, db, provider)

		breakdown, err := svc.EstimateCost(ctx, estimateRequest(spring, "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		if breakdown.FallbackUsed {
			t.Error("Expected provider estimate, not fallback")
		}
		if breakdown.DistanceMiles < 19.9 || breakdown.DistanceMiles > 20.1 {
			t.Errorf("Expected roughly 20 miles, got %f", breakdown.DistanceMiles)
		}
	})

	t.Run("falls back to static values when the provider errors", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		provider := &testutil.StaticProvider{Err: routing.ErrUnavailable}
		svc := testutil.NewTestCostService(t, db, provider)

		breakdown, err := svc.EstimateCost(ctx, estimateRequest(spring, "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		if !breakdown.FallbackUsed {
			t.Error("Expected fallback flag when provider errors")
		}
		if breakdown.DistanceMiles != 10 {
			t.Errorf("Expected fallback distance 10 miles, got %f", breakdown.DistanceMiles)
		}
	})

	t.Run("falls back to static values without a provider", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCostService(t, db, nil)

		breakdown, err := svc.EstimateCost(ctx, estimateRequest(spring, "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		if !breakdown.FallbackUsed {
			t.Error("Expected fallback flag with nil provider")
		}
	})

	t.Run("applies the peak buffer to morning and evening departures", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCostService(t, db, nil)

		peak, err := svc.EstimateCost(ctx, estimateRequest(spring, "08:00"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}
		offPeak, err := svc.EstimateCost(ctx, estimateRequest(spring, "11:00"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		if !peak.PeakService {
			t.Error("Expected 08:00 departure to be peak")
		}
		if offPeak.PeakService {
			t.Error("Expected 11:00 departure to be off-peak")
		}
		if peak.BufferPercent != 20 || offPeak.BufferPercent != 10 {
			t.Errorf("Expected buffers 20/10, got %f/%f", peak.BufferPercent, offPeak.BufferPercent)
		}
		if !peak.DriverWages.GreaterThan(offPeak.DriverWages) {
			t.Errorf("Expected peak wages %s above off-peak %s", peak.DriverWages, offPeak.DriverWages)
		}
	})

	t.Run("adjusts fuel cost by season", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCostService(t, db, nil)

		winter, err := svc.EstimateCost(ctx, estimateRequest(time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}
		summer, err := svc.EstimateCost(ctx, estimateRequest(time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC), "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}
		neutral, err := svc.EstimateCost(ctx, estimateRequest(spring, "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		if !winter.Fuel.GreaterThan(neutral.Fuel) {
			t.Errorf("Expected winter fuel %s above neutral %s", winter.Fuel, neutral.Fuel)
		}
		if !summer.Fuel.LessThan(neutral.Fuel) {
			t.Errorf("Expected summer fuel %s below neutral %s", summer.Fuel, neutral.Fuel)
		}

		// Winter pricing starts in November, not at the calendar year end.
		november, err := svc.EstimateCost(ctx, estimateRequest(time.Date(2026, 11, 14, 0, 0, 0, 0, time.UTC), "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}
		if !november.Fuel.Equal(winter.Fuel) {
			t.Errorf("Expected November fuel %s to match winter %s", november.Fuel, winter.Fuel)
		}
	})

	t.Run("overhead is a flat percentage of direct costs", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCostService(t, db, nil)

		breakdown, err := svc.EstimateCost(ctx, estimateRequest(spring, "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		direct := breakdown.Total.Sub(breakdown.Overhead)
		expected := money.PercentFloat(direct, 15)
		if !breakdown.Overhead.Equal(expected) {
			t.Errorf("Expected overhead %s, got %s", expected, breakdown.Overhead)
		}
	})

	t.Run("persists the estimate as the service's cost record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCostService(t, db, nil)
		costRecordRepo := repository.NewCostRecordRepository(db)

		breakdown, err := svc.EstimateCost(ctx, estimateRequest(spring, "10:30"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}

		rec, err := costRecordRepo.GetByService(ctx, "route-1", spring)
		if err != nil {
			t.Fatalf("GetByService() returned unexpected error: %v", err)
		}
		if !rec.TotalCost.Equal(breakdown.Total) {
			t.Errorf("Stored total %s does not match estimate %s", rec.TotalCost, breakdown.Total)
		}
		if rec.Breakdown == nil {
			t.Fatal("Expected stored breakdown")
		}
	})

	t.Run("re-estimating a service replaces its record", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestCostService(t, db, nil)
		costRecordRepo := repository.NewCostRecordRepository(db)

		first, err := svc.EstimateCost(ctx, estimateRequest(spring, "11:00"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}
		second, err := svc.EstimateCost(ctx, estimateRequest(spring, "08:00"))
		if err != nil {
			t.Fatalf("EstimateCost() returned unexpected error: %v", err)
		}
		if !second.Total.GreaterThan(first.Total) {
			t.Fatalf("Expected peak re-estimate %s above off-peak %s", second.Total, first.Total)
		}

		rec, err := costRecordRepo.GetByService(ctx, "route-1", spring)
		if err != nil {
			t.Fatalf("GetByService() returned unexpected error: %v", err)
		}
		if !rec.TotalCost.Equal(second.Total) {
			t.Errorf("Expected record to hold the latest estimate %s, got %s", second.Total, rec.TotalCost)
		}
	})
}
