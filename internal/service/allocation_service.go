package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/money"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// AllocationService splits the gross surplus of a completed profitable
// service into reserves, business costs, the dividend pool and the route's
// retained subsidy capacity, and records the split on the ledger.
type AllocationService struct {
	poolRepo *repository.PoolRepository
}

// NewAllocationService creates a new AllocationService with the provided
// repository dependencies.
func NewAllocationService(poolRepo *repository.PoolRepository) *AllocationService {
	return &AllocationService{poolRepo: poolRepo}
}

// AllocateSurplusRequest identifies one profitable service's surplus split.
// Revenue and TotalCost feed the pool's lifetime counters and may be zero
// when the caller only knows the surplus.
type AllocateSurplusRequest struct {
	TenantID        string
	RouteID         string
	TimetableID     string
	ServiceDate     time.Time
	GrossSurplus    decimal.Decimal
	Revenue         decimal.Decimal
	TotalCost       decimal.Decimal
	ReservesPercent float64
	BusinessPercent float64
	DividendPercent float64
}

// AllocateSurplus validates and applies one surplus split. The three
// percentage cuts are rounded to whole pence; the pool share is the exact
// remainder, so the four parts always sum to the gross surplus. The route's
// pool is created lazily on its first profitable service.
//
// Fails with apperrors.ErrInvalidSurplusAmount for a non-positive surplus and
// apperrors.ErrInvalidAllocationPercentages when the percentages do not sum
// to 100.
func (s *AllocationService) AllocateSurplus(ctx context.Context, req AllocateSurplusRequest) (model.AllocationResult, error) {
	if !req.GrossSurplus.IsPositive() {
		return model.AllocationResult{}, apperrors.ErrInvalidSurplusAmount
	}
	if err := ValidateAllocationPercentages(req.ReservesPercent, req.BusinessPercent, req.DividendPercent); err != nil {
		return model.AllocationResult{}, err
	}

	toReserves := money.Round2(money.PercentFloat(req.GrossSurplus, req.ReservesPercent))
	toBusiness := money.Round2(money.PercentFloat(req.GrossSurplus, req.BusinessPercent))
	toDividends := money.Round2(money.PercentFloat(req.GrossSurplus, req.DividendPercent))
	toPool := req.GrossSurplus.Sub(toReserves).Sub(toBusiness).Sub(toDividends)

	if _, err := s.poolRepo.InitializePool(ctx, req.RouteID, req.TenantID); err != nil {
		return model.AllocationResult{}, err
	}

	var txn model.SurplusTransaction

	err := s.poolRepo.WithLockedPool(ctx, req.RouteID, func(tx *sql.Tx, pool *model.SurplusPool) error {
		balanceBefore := pool.AccumulatedSurplus

		pool.AccumulatedSurplus = pool.AccumulatedSurplus.Add(req.GrossSurplus)
		pool.AvailableForSubsidy = pool.AvailableForSubsidy.Add(toPool)
		pool.ReservedForReserves = pool.ReservedForReserves.Add(toReserves)
		pool.ReservedForBusiness = pool.ReservedForBusiness.Add(toBusiness)
		pool.TotalDistributedDividends = pool.TotalDistributedDividends.Add(toDividends)
		pool.ProfitableServices++
		pool.ServicesOperated++
		pool.LifetimeSurplus = pool.LifetimeSurplus.Add(req.GrossSurplus)
		pool.LifetimeRevenue = pool.LifetimeRevenue.Add(req.Revenue)
		pool.LifetimeCost = pool.LifetimeCost.Add(req.TotalCost)

		txn = model.SurplusTransaction{
			PoolID:            pool.ID,
			TenantID:          req.TenantID,
			RouteID:           req.RouteID,
			TimetableID:       req.TimetableID,
			ServiceDate:       req.ServiceDate,
			Type:              model.TransactionSurplusAdded,
			Amount:            req.GrossSurplus,
			PoolBalanceBefore: balanceBefore,
			PoolBalanceAfter:  pool.AccumulatedSurplus,
		}
		return s.poolRepo.RecordTransaction(ctx, tx, &txn)
	})
	if err != nil {
		return model.AllocationResult{}, err
	}

	return model.AllocationResult{
		RouteID:      req.RouteID,
		GrossSurplus: req.GrossSurplus,
		ToReserves:   toReserves,
		ToBusiness:   toBusiness,
		ToDividends:  toDividends,
		ToPool:       toPool,
		Transaction:  txn,
	}, nil
}

// ValidateAllocationPercentages checks that the three allocation percentages
// are non-negative and sum to exactly 100.
func ValidateAllocationPercentages(reserves, business, dividend float64) error {
	if reserves < 0 || business < 0 || dividend < 0 {
		return apperrors.ErrInvalidAllocationPercentages
	}

	sum := decimal.NewFromFloat(reserves).
		Add(decimal.NewFromFloat(business)).
		Add(decimal.NewFromFloat(dividend))
	if !sum.Equal(decimal.NewFromInt(100)) {
		return apperrors.ErrInvalidAllocationPercentages
	}

	return nil
}
