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

func TestCostHandler_EstimateCost(t *testing.T) {
	setupHandler := func(t *testing.T) (*CostHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		cs := testutil.NewTestCostService(t, db, testutil.NewStaticProvider(16093, 1800))
		return NewCostHandler(cs), db
	}

	estimateBody := func() request.EstimateCostRequest {
		return request.EstimateCostRequest{
			TenantID:      "tenant-1",
			RouteID:       "route-1",
			Origin:        "Millbrook Village Hall",
			Destination:   "Ashford Interchange",
			ServiceDate:   "2026-04-14",
			DepartureTime: "08:00",
		}
	}

	t.Run("returns the cost breakdown", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/cost/estimate", estimateBody(), nil)
		w := httptest.NewRecorder()

		handler.EstimateCost(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response model.CostBreakdown
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if !response.Total.IsPositive() {
			t.Errorf("Expected positive total, got %s", response.Total)
		}
		if !response.PeakService {
			t.Error("Expected 08:00 departure to be flagged peak")
		}
		if response.FallbackUsed {
			t.Error("Expected provider estimate, not fallback")
		}
	})

	t.Run("returns 400 for missing fields", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := estimateBody()
		body.Origin = ""
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/cost/estimate", body, nil)
		w := httptest.NewRecorder()

		handler.EstimateCost(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for a malformed departure time", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := estimateBody()
		body.DepartureTime = "8am"
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/cost/estimate", body, nil)
		w := httptest.NewRecorder()

		handler.EstimateCost(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("returns 400 for unknown body fields", func(t *testing.T) {
		handler, _ := setupHandler(t)

		body := map[string]interface{}{"tenantId": "tenant-1", "surprise": true}
		req := testutil.NewJSONRequest(t, http.MethodPost, "/api/cost/estimate", body, nil)
		w := httptest.NewRecorder()

		handler.EstimateCost(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
		}
	})
}
