package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/money"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// SubsidyService determines how much surplus a route's pool can lend to an
// under-loaded service and applies the draw against the ledger.
type SubsidyService struct {
	poolRepo       *repository.PoolRepository
	costRecordRepo *repository.CostRecordRepository
	pricing        config.PricingParameters
}

// NewSubsidyService creates a new SubsidyService with the provided repository
// dependencies.
func NewSubsidyService(
	poolRepo *repository.PoolRepository,
	costRecordRepo *repository.CostRecordRepository,
	pricing config.PricingParameters,
) *SubsidyService {
	return &SubsidyService{
		poolRepo:       poolRepo,
		costRecordRepo: costRecordRepo,
		pricing:        pricing,
	}
}

// CalculateAvailableSubsidy previews the subsidy a service could draw. The
// draw is bounded both by the pool (at most maxSurplusPercent of its
// available balance) and by the service (at most maxServicePercent of its
// cost), so no single service drains a route's entire reserve.
//
// A route without a pool yields a zero subsidy, not an error.
func (s *SubsidyService) CalculateAvailableSubsidy(ctx context.Context, routeID string, serviceCost decimal.Decimal, maxSurplusPercent, maxServicePercent float64) (model.SubsidyCalculation, error) {
	available := decimal.Zero

	pool, err := s.poolRepo.GetPool(ctx, routeID)
	if err == nil {
		available = pool.AvailableForSubsidy
	} else if !errors.Is(err, apperrors.ErrPoolNotFound) {
		return model.SubsidyCalculation{}, err
	}

	fromPool := money.PercentFloat(available, maxSurplusPercent)
	fromService := money.PercentFloat(serviceCost, maxServicePercent)

	subsidy := decimal.Min(fromPool, fromService)
	if subsidy.IsNegative() {
		subsidy = decimal.Zero
	}
	subsidy = money.Round2(subsidy)

	effective := serviceCost.Sub(subsidy)
	minPassengers, breakEven := breakEvenPoint(effective, s.pricing.MaximumAcceptableFare)

	return model.SubsidyCalculation{
		RouteID:                 routeID,
		RawCost:                 serviceCost,
		SubsidyApplied:          subsidy,
		EffectiveCost:           effective,
		MinimumPassengersNeeded: minPassengers,
		BreakEvenFare:           breakEven,
		PoolAvailable:           available,
	}, nil
}

// ApplySubsidyRequest identifies a subsidy draw against one service instance.
type ApplySubsidyRequest struct {
	TenantID       string
	RouteID        string
	TimetableID    string
	ServiceDate    time.Time
	SubsidyAmount  decimal.Decimal
	ServiceCost    decimal.Decimal
	PassengerCount int
}

// ApplySubsidy draws subsidy from the route's pool. Under one locked pool
// transaction it verifies the balance, decrements the pool, appends the
// subsidy_applied ledger entry and updates the service's cost record; any
// failure rolls all five steps back and leaves the ledger untouched.
//
// The route's pool must exist: apperrors.ErrPoolNotFound is fatal here, and
// a draw beyond the available balance fails with
// apperrors.ErrInsufficientSurplus.
func (s *SubsidyService) ApplySubsidy(ctx context.Context, req ApplySubsidyRequest) (model.SurplusTransaction, error) {
	if !req.SubsidyAmount.IsPositive() {
		return model.SurplusTransaction{}, apperrors.ErrNegativeAmount
	}

	var txn model.SurplusTransaction

	err := s.poolRepo.WithLockedPool(ctx, req.RouteID, func(tx *sql.Tx, pool *model.SurplusPool) error {
		if pool.AvailableForSubsidy.LessThan(req.SubsidyAmount) {
			return apperrors.ErrInsufficientSurplus
		}

		balanceBefore := pool.AccumulatedSurplus

		pool.AvailableForSubsidy = pool.AvailableForSubsidy.Sub(req.SubsidyAmount)
		pool.AccumulatedSurplus = pool.AccumulatedSurplus.Sub(req.SubsidyAmount)
		pool.SubsidizedServices++
		pool.ServicesOperated++
		pool.LifetimeCost = pool.LifetimeCost.Add(req.ServiceCost)

		txn = model.SurplusTransaction{
			PoolID:            pool.ID,
			TenantID:          req.TenantID,
			RouteID:           req.RouteID,
			TimetableID:       req.TimetableID,
			ServiceDate:       req.ServiceDate,
			Type:              model.TransactionSubsidyApplied,
			Amount:            req.SubsidyAmount,
			PoolBalanceBefore: balanceBefore,
			PoolBalanceAfter:  pool.AccumulatedSurplus,
		}
		if err := s.poolRepo.RecordTransaction(ctx, tx, &txn); err != nil {
			return err
		}

		return s.costRecordRepo.ApplySubsidyTx(ctx, tx,
			req.TenantID, req.RouteID, req.TimetableID, req.ServiceDate,
			req.SubsidyAmount, req.ServiceCost)
	})
	if err != nil {
		return model.SurplusTransaction{}, err
	}

	return txn, nil
}

// breakEvenPoint returns the minimum passenger count to recover the
// effective cost at the maximum acceptable fare, and the resulting
// break-even fare.
func breakEvenPoint(effectiveCost decimal.Decimal, maxAcceptableFare float64) (int, decimal.Decimal) {
	if !effectiveCost.IsPositive() {
		return 0, decimal.Zero
	}

	maxFare := decimal.NewFromFloat(maxAcceptableFare)
	minPassengers := int(effectiveCost.Div(maxFare).Ceil().IntPart())
	if minPassengers == 0 {
		return 0, decimal.Zero
	}

	breakEven := money.Round2(effectiveCost.Div(decimal.NewFromInt(int64(minPassengers))))
	return minPassengers, breakEven
}
