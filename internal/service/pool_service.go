package service

import (
	"context"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// PoolService exposes read access to route surplus pools and their ledgers.
type PoolService struct {
	poolRepo *repository.PoolRepository
}

func NewPoolService(poolRepo *repository.PoolRepository) *PoolService {
	return &PoolService{poolRepo: poolRepo}
}

// GetPool retrieves a route's surplus pool.
func (s *PoolService) GetPool(ctx context.Context, routeID string) (model.SurplusPool, error) {
	return s.poolRepo.GetPool(ctx, routeID)
}

// GetTransactions retrieves a route pool's full ledger in insertion order.
func (s *PoolService) GetTransactions(ctx context.Context, routeID string) ([]model.SurplusTransaction, error) {
	return s.poolRepo.ListTransactions(ctx, routeID)
}

// InitializePool creates an empty pool for a route if none exists yet. The
// call is idempotent; an existing pool is returned untouched.
func (s *PoolService) InitializePool(ctx context.Context, routeID, tenantID string) (model.SurplusPool, error) {
	return s.poolRepo.InitializePool(ctx, routeID, tenantID)
}
