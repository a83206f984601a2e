package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/testutil"
)

// TestPricingService_CalculateCurrentPrice tests the dynamic fare quote.
//
// WHY: The fare is the rider-facing output of the whole cost pipeline.
// Cost-sharing must fall with ridership but never breach the floor or the
// maximum acceptable fare, or the pricing promise to passengers breaks.
func TestPricingService_CalculateCurrentPrice(t *testing.T) {
	ctx := context.Background()
	serviceDate := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)

	t.Run("quotes the maximum fare with no bookings", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)

		quote, err := svc.CalculateCurrentPrice(ctx, "tenant-1", "route-1", serviceDate)
		if err != nil {
			t.Fatalf("CalculateCurrentPrice() returned unexpected error: %v", err)
		}

		if got := quote.MemberPrice.StringFixed(2); got != "5.00" {
			t.Errorf("Expected member price 5.00, got %s", got)
		}
		if quote.CurrentBookings != 0 {
			t.Errorf("Expected 0 bookings, got %d", quote.CurrentBookings)
		}
		if quote.IsViable {
			t.Error("Expected service not viable with no bookings")
		}
	})

	t.Run("shares the effective cost across bookings", func(t *testing.T) {
		// 60.00 effective cost over 20 bookings -> 3.00 member fare.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)
		for i := 0; i < 20; i++ {
			testutil.CreateBooking(t, db, "tenant-1", "route-1", testutil.MakeID(), serviceDate)
		}

		quote, err := svc.CalculateCurrentPrice(ctx, "tenant-1", "route-1", serviceDate)
		if err != nil {
			t.Fatalf("CalculateCurrentPrice() returned unexpected error: %v", err)
		}

		if got := quote.MemberPrice.StringFixed(2); got != "3.00" {
			t.Errorf("Expected member price 3.00, got %s", got)
		}
		if got := quote.NonMemberPrice.StringFixed(2); got != "3.60" {
			t.Errorf("Expected non-member price 3.60, got %s", got)
		}
		if quote.FloorReached {
			t.Error("Expected floor not reached at 3.00")
		}
		if !quote.IsViable {
			t.Error("Expected service viable at 20 bookings")
		}
	})

	t.Run("clamps the fare at the floor", func(t *testing.T) {
		// 60.00 over 40 bookings is 1.50, below the 2.00 floor.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)
		for i := 0; i < 40; i++ {
			testutil.CreateBooking(t, db, "tenant-1", "route-1", testutil.MakeID(), serviceDate)
		}

		quote, err := svc.CalculateCurrentPrice(ctx, "tenant-1", "route-1", serviceDate)
		if err != nil {
			t.Fatalf("CalculateCurrentPrice() returned unexpected error: %v", err)
		}

		if got := quote.MemberPrice.StringFixed(2); got != "2.00" {
			t.Errorf("Expected floor price 2.00, got %s", got)
		}
		if !quote.FloorReached {
			t.Error("Expected floor reached flag")
		}
	})

	t.Run("prices against the subsidized effective cost", func(t *testing.T) {
		// 80.00 total with a 20.00 subsidy over 20 bookings -> 3.00.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).
			WithTotalCost(80).WithSubsidy(20).Build(t, db)
		for i := 0; i < 20; i++ {
			testutil.CreateBooking(t, db, "tenant-1", "route-1", testutil.MakeID(), serviceDate)
		}

		quote, err := svc.CalculateCurrentPrice(ctx, "tenant-1", "route-1", serviceDate)
		if err != nil {
			t.Fatalf("CalculateCurrentPrice() returned unexpected error: %v", err)
		}

		if got := quote.MemberPrice.StringFixed(2); got != "3.00" {
			t.Errorf("Expected member price 3.00, got %s", got)
		}
	})

	t.Run("fails when the cost estimator has not run", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)

		_, err := svc.CalculateCurrentPrice(ctx, "tenant-1", "route-1", serviceDate)
		if !errors.Is(err, apperrors.ErrCostRecordNotFound) {
			t.Fatalf("Expected ErrCostRecordNotFound, got %v", err)
		}
	})
}

// TestPricingService_GetPriceForBooking tests the per-passenger fare lookup.
//
// WHY: Member pricing is a membership benefit; charging a member the
// surcharged fare (or vice versa) is a direct fairness bug.
func TestPricingService_GetPriceForBooking(t *testing.T) {
	ctx := context.Background()
	serviceDate := time.Date(2026, 5, 12, 0, 0, 0, 0, time.UTC)

	t.Run("active member pays the member fare", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		member := testutil.NewMember("tenant-1").AsPassenger("customer-1").Build(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)
		for i := 0; i < 20; i++ {
			testutil.CreateBooking(t, db, "tenant-1", "route-1", testutil.MakeID(), serviceDate)
		}

		price, err := svc.GetPriceForBooking(ctx, "tenant-1", "route-1", serviceDate, member.CustomerID)
		if err != nil {
			t.Fatalf("GetPriceForBooking() returned unexpected error: %v", err)
		}

		if !price.IsMember {
			t.Error("Expected member recognition")
		}
		if got := price.Price.StringFixed(2); got != "3.00" {
			t.Errorf("Expected member fare 3.00, got %s", got)
		}
	})

	t.Run("non-member pays the surcharged fare", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)
		for i := 0; i < 20; i++ {
			testutil.CreateBooking(t, db, "tenant-1", "route-1", testutil.MakeID(), serviceDate)
		}

		price, err := svc.GetPriceForBooking(ctx, "tenant-1", "route-1", serviceDate, "stranger-1")
		if err != nil {
			t.Fatalf("GetPriceForBooking() returned unexpected error: %v", err)
		}

		if price.IsMember {
			t.Error("Expected non-member")
		}
		if got := price.Price.StringFixed(2); got != "3.60" {
			t.Errorf("Expected surcharged fare 3.60, got %s", got)
		}
	})

	t.Run("lapsed member pays the surcharged fare", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		member := testutil.NewMember("tenant-1").AsPassenger("customer-2").Inactive().Build(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)
		for i := 0; i < 20; i++ {
			testutil.CreateBooking(t, db, "tenant-1", "route-1", testutil.MakeID(), serviceDate)
		}

		price, err := svc.GetPriceForBooking(ctx, "tenant-1", "route-1", serviceDate, member.CustomerID)
		if err != nil {
			t.Fatalf("GetPriceForBooking() returned unexpected error: %v", err)
		}

		if price.IsMember {
			t.Error("Expected inactive member to lose member pricing")
		}
	})

	t.Run("anonymous booking pays the surcharged fare", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestPricingService(t, db)
		testutil.NewCostRecord("tenant-1", "route-1", serviceDate).WithTotalCost(60).Build(t, db)

		price, err := svc.GetPriceForBooking(ctx, "tenant-1", "route-1", serviceDate, "")
		if err != nil {
			t.Fatalf("GetPriceForBooking() returned unexpected error: %v", err)
		}

		if price.IsMember {
			t.Error("Expected anonymous booking to be non-member")
		}
		if got := price.Price.StringFixed(2); got != "6.00" {
			t.Errorf("Expected surcharged maximum fare 6.00, got %s", got)
		}
	})
}
