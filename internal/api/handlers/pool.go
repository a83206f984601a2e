package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/response"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
)

// PoolHandler handles HTTP requests for surplus pool endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the poolService.
type PoolHandler struct {
	poolService *service.PoolService
}

// NewPoolHandler creates a new PoolHandler with the provided service dependency.
func NewPoolHandler(poolService *service.PoolService) *PoolHandler {
	return &PoolHandler{
		poolService: poolService,
	}
}

// GetPool handles GET requests to retrieve a route's surplus pool.
// Returns balances, lifetime totals and service counters.
//
// Endpoint: GET /api/pool/{routeId}
// Response: 200 OK with SurplusPool
// Error: 404 Not Found if no pool exists for the route
// Error: 500 Internal Server Error if retrieval fails
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")

	pool, err := h.poolService.GetPool(r.Context(), routeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrPoolNotFound) {
			response.RespondError(w, http.StatusNotFound, apperrors.ErrPoolNotFound.Error(), err.Error())
			return
		}
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePool.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, pool)
}

// GetTransactions handles GET requests to retrieve a route pool's ledger.
// Transactions are returned oldest first; replaying them reconstructs the
// pool's accumulated balance.
//
// Endpoint: GET /api/pool/{routeId}/transactions
// Response: 200 OK with array of SurplusTransaction
// Error: 500 Internal Server Error if retrieval fails
func (h *PoolHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")

	transactions, err := h.poolService.GetTransactions(r.Context(), routeID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveTransactions.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, transactions)
}

// InitializePool handles POST requests to create an empty pool for a route.
// The call is idempotent: an existing pool is returned unchanged.
//
// Endpoint: POST /api/pool/{routeId}?tenantId=...
// Response: 201 Created with SurplusPool
// Error: 400 Bad Request if tenantId is missing
// Error: 500 Internal Server Error if creation fails
func (h *PoolHandler) InitializePool(w http.ResponseWriter, r *http.Request) {
	routeID := chi.URLParam(r, "routeId")
	tenantID := r.URL.Query().Get("tenantId")

	if tenantID == "" {
		response.RespondError(w, http.StatusBadRequest, "tenantId is required", "")
		return
	}

	pool, err := h.poolService.InitializePool(r.Context(), routeID, tenantID)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrievePool.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusCreated, pool)
}
