package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/request"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/testutil"
)

func TestAllocationHandler_AllocateSurplus(t *testing.T) {
	setupHandler := func(t *testing.T) (*AllocationHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		as := testutil.NewTestAllocationService(t, db)
		return NewAllocationHandler(as, defaultSplit()), db
	}

	t.Run("splits surplus with the default percentages", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := request.AllocateSurplusRequest{
			TenantID:     "tenant-1",
			RouteID:      "route-1",
			ServiceDate:  "2026-06-05",
			GrossSurplus: 200,
			Revenue:      500,
			TotalCost:    300,
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/surplus/allocate", body, nil)
		w := httptest.NewRecorder()

		handler.AllocateSurplus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.AllocationResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if got := response.ToReserves.StringFixed(2); got != "40.00" {
			t.Errorf("Expected reserves 40.00, got %s", got)
		}
		if got := response.ToBusiness.StringFixed(2); got != "60.00" {
			t.Errorf("Expected business 60.00, got %s", got)
		}
		if got := response.ToDividends.StringFixed(2); got != "100.00" {
			t.Errorf("Expected dividends 100.00, got %s", got)
		}
		if got := response.ToPool.StringFixed(2); got != "0.00" {
			t.Errorf("Expected pool share 0.00, got %s", got)
		}
	})

	t.Run("honors percentages from the request body", func(t *testing.T) {
		handler, db := setupHandler(t)

		reserves, business, dividend := 10.0, 10.0, 80.0
		body := request.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     "2026-06-05",
			GrossSurplus:    100,
			ReservesPercent: &reserves,
			BusinessPercent: &business,
			DividendPercent: &dividend,
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/surplus/allocate", body, nil)
		w := httptest.NewRecorder()

		handler.AllocateSurplus(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.AllocationResult
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if got := response.ToDividends.StringFixed(2); got != "80.00" {
			t.Errorf("Expected dividends 80.00, got %s", got)
		}

		// The transaction lands in the route pool created on demand.
		ps := testutil.NewTestPoolService(t, db)
		pool, err := ps.GetPool(req.Context(), "route-1")
		if err != nil {
			t.Fatalf("Failed to load pool: %v", err)
		}
		if pool.ProfitableServices != 1 {
			t.Errorf("Expected 1 profitable service, got %d", pool.ProfitableServices)
		}
	})

	t.Run("returns 400 when percentages do not sum to 100", func(t *testing.T) {
		handler, _ := setupHandler(t)

		reserves, business, dividend := 20.0, 30.0, 40.0
		body := request.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     "2026-06-05",
			GrossSurplus:    100,
			ReservesPercent: &reserves,
			BusinessPercent: &business,
			DividendPercent: &dividend,
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/surplus/allocate", body, nil)
		w := httptest.NewRecorder()

		handler.AllocateSurplus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a non-positive surplus", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := request.AllocateSurplusRequest{
			TenantID:     "tenant-1",
			RouteID:      "route-1",
			ServiceDate:  "2026-06-05",
			GrossSurplus: 0,
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/surplus/allocate", body, nil)
		w := httptest.NewRecorder()

		handler.AllocateSurplus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for an incomplete percentage trio", func(t *testing.T) {
		handler, _ := setupHandler(t)

		reserves := 20.0
		body := request.AllocateSurplusRequest{
			TenantID:        "tenant-1",
			RouteID:         "route-1",
			ServiceDate:     "2026-06-05",
			GrossSurplus:    100,
			ReservesPercent: &reserves,
		}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/surplus/allocate", body, nil)
		w := httptest.NewRecorder()

		handler.AllocateSurplus(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
