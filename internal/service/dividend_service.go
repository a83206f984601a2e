package service

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/money"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// DividendService computes and manages patronage dividend distributions.
// Patronage is trips ridden for passenger co-ops, duties driven for worker
// co-ops; hybrid co-ops split the dividend pool 50/50 between the two groups.
type DividendService struct {
	costRecordRepo   *repository.CostRecordRepository
	memberRepo       *repository.MemberRepository
	bookingRepo      *repository.BookingRepository
	dutyRepo         *repository.DutyRepository
	distributionRepo *repository.DistributionRepository
	defaultModel     string
}

// NewDividendService creates a new DividendService with the provided
// repository dependencies. defaultModel is used when a calculation request
// does not name a cooperative model.
func NewDividendService(
	costRecordRepo *repository.CostRecordRepository,
	memberRepo *repository.MemberRepository,
	bookingRepo *repository.BookingRepository,
	dutyRepo *repository.DutyRepository,
	distributionRepo *repository.DistributionRepository,
	defaultModel string,
) *DividendService {
	if defaultModel == "" {
		defaultModel = model.ModelPassenger
	}
	return &DividendService{
		costRecordRepo:   costRecordRepo,
		memberRepo:       memberRepo,
		bookingRepo:      bookingRepo,
		dutyRepo:         dutyRepo,
		distributionRepo: distributionRepo,
		defaultModel:     defaultModel,
	}
}

// CalculateDividendsRequest parameterizes one dividend run.
type CalculateDividendsRequest struct {
	TenantID         string
	PeriodStart      time.Time
	PeriodEnd        time.Time
	CooperativeModel string // empty means the configured default
	ReservesPercent  float64
	BusinessPercent  float64
	DividendPercent  float64
}

// CalculateDividends computes an unsaved dividend run for a tenant's period.
// The period surplus is the sum of net surpluses across the period's cost
// records - the raw period P&L, independent of any route pool balance. The
// surplus is split by the three percentages and the dividend pool apportioned
// by patronage; members with zero patronage are excluded entirely.
//
// A period that already has a non-cancelled distribution is rejected with
// apperrors.ErrDistributionExists, so a double run cannot pay twice.
func (s *DividendService) CalculateDividends(ctx context.Context, req CalculateDividendsRequest) (model.DividendCalculationResult, error) {
	if !req.PeriodStart.Before(req.PeriodEnd) {
		return model.DividendCalculationResult{}, apperrors.ErrInvalidDateRange
	}
	if err := ValidateAllocationPercentages(req.ReservesPercent, req.BusinessPercent, req.DividendPercent); err != nil {
		return model.DividendCalculationResult{}, err
	}

	coopModel := req.CooperativeModel
	if coopModel == "" {
		coopModel = s.defaultModel
	}
	switch coopModel {
	case model.ModelPassenger, model.ModelWorker, model.ModelHybrid:
	default:
		return model.DividendCalculationResult{}, apperrors.ErrUnknownCooperativeModel
	}

	exists, err := s.distributionRepo.ExistsForPeriod(ctx, req.TenantID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return model.DividendCalculationResult{}, err
	}
	if exists {
		return model.DividendCalculationResult{}, apperrors.ErrDistributionExists
	}

	revenue, costs, surplus, err := s.costRecordRepo.PeriodTotals(ctx, req.TenantID, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return model.DividendCalculationResult{}, err
	}

	dist := model.DividendDistribution{
		TenantID:            req.TenantID,
		PeriodStart:         req.PeriodStart,
		PeriodEnd:           req.PeriodEnd,
		CooperativeModel:    coopModel,
		TotalRevenue:        revenue,
		TotalCosts:          costs,
		GrossSurplus:        surplus,
		ReservesPercent:     req.ReservesPercent,
		BusinessPercent:     req.BusinessPercent,
		DividendPercent:     req.DividendPercent,
		ReservesAmount:      decimal.Zero,
		BusinessCostsAmount: decimal.Zero,
		DividendPool:        decimal.Zero,
		Status:              model.DistributionPending,
	}

	// An unprofitable period produces an empty distribution: the run is
	// still recorded so the period is accounted for, but nothing is owed.
	if !surplus.IsPositive() {
		return model.DividendCalculationResult{Distribution: dist, Dividends: []model.MemberDividend{}}, nil
	}

	dist.ReservesAmount = money.Round2(money.PercentFloat(surplus, req.ReservesPercent))
	dist.BusinessCostsAmount = money.Round2(money.PercentFloat(surplus, req.BusinessPercent))
	dist.DividendPool = money.Round2(money.PercentFloat(surplus, req.DividendPercent))

	dividends, err := s.apportionPool(ctx, req.TenantID, coopModel, dist.DividendPool, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return model.DividendCalculationResult{}, err
	}

	dist.EligibleMembers = len(dividends)
	for _, d := range dividends {
		dist.TotalPatronage += d.PatronageValue
	}

	return model.DividendCalculationResult{Distribution: dist, Dividends: dividends}, nil
}

// apportionPool computes the member payout rows for the chosen cooperative
// model. In the hybrid model the pool is halved into a passenger sub-pool and
// a worker sub-pool, computed concurrently, and the results concatenated.
func (s *DividendService) apportionPool(ctx context.Context, tenantID, coopModel string, pool decimal.Decimal, start, end time.Time) ([]model.MemberDividend, error) {
	switch coopModel {
	case model.ModelPassenger:
		return s.passengerDividends(ctx, tenantID, pool, start, end)
	case model.ModelWorker:
		return s.workerDividends(ctx, tenantID, pool, start, end)
	case model.ModelHybrid:
		half := pool.Div(decimal.NewFromInt(2))

		var passenger, worker []model.MemberDividend
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			passenger, err = s.passengerDividends(gctx, tenantID, half, start, end)
			return err
		})
		g.Go(func() error {
			var err error
			worker, err = s.workerDividends(gctx, tenantID, half, start, end)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		return append(passenger, worker...), nil
	default:
		return nil, apperrors.ErrUnknownCooperativeModel
	}
}

// passengerDividends apportions a pool over customer-members by trips ridden
// in the period.
func (s *DividendService) passengerDividends(ctx context.Context, tenantID string, pool decimal.Decimal, start, end time.Time) ([]model.MemberDividend, error) {
	members, err := s.memberRepo.ListEligiblePassengers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	trips, err := s.bookingRepo.TripsPerCustomer(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	patronage := make(map[string]float64, len(members))
	for _, m := range members {
		if count := trips[m.CustomerID]; count > 0 {
			patronage[m.ID] = float64(count)
		}
	}

	return apportion(pool, patronage), nil
}

// workerDividends apportions a pool over driver-members by duties driven in
// the period.
func (s *DividendService) workerDividends(ctx context.Context, tenantID string, pool decimal.Decimal, start, end time.Time) ([]model.MemberDividend, error) {
	members, err := s.memberRepo.ListEligibleDrivers(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	duties, err := s.dutyRepo.DutiesPerDriver(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	patronage := make(map[string]float64, len(members))
	for _, m := range members {
		if count := duties[m.DriverID]; count > 0 {
			patronage[m.ID] = float64(count)
		}
	}

	return apportion(pool, patronage), nil
}

// apportion splits a pool proportionally to each member's share of the total
// patronage. Per-member amounts are rounded to pence only at the end, so the
// payout total matches the pool within a penny per member.
func apportion(pool decimal.Decimal, patronage map[string]float64) []model.MemberDividend {
	dividends := []model.MemberDividend{}
	if len(patronage) == 0 || !pool.IsPositive() {
		return dividends
	}

	var total float64
	memberIDs := make([]string, 0, len(patronage))
	for id, value := range patronage {
		total += value
		memberIDs = append(memberIDs, id)
	}
	sort.Strings(memberIDs)

	totalDec := decimal.NewFromFloat(total)
	for _, id := range memberIDs {
		value := patronage[id]
		share := decimal.NewFromFloat(value).Div(totalDec)

		dividends = append(dividends, model.MemberDividend{
			MemberID:         id,
			PatronageValue:   value,
			PatronagePercent: value / total * 100,
			DividendAmount:   money.Round2(pool.Mul(share)),
			Status:           model.DividendPending,
		})
	}

	return dividends
}

// SaveDividendDistribution persists a computed run in one transaction: the
// header moves to calculated and each member dividend row starts pending.
func (s *DividendService) SaveDividendDistribution(ctx context.Context, calc *model.DividendCalculationResult) (string, error) {
	return s.distributionRepo.Save(ctx, calc)
}

// MarkDistributionPaid transitions the distribution to distributed and every
// pending member dividend to paid with today's date. Partial payment is not
// a supported state.
func (s *DividendService) MarkDistributionPaid(ctx context.Context, distributionID, paymentMethod string) error {
	return s.distributionRepo.MarkPaid(ctx, distributionID, paymentMethod)
}

// CancelDistribution voids a distribution that has not been paid out.
func (s *DividendService) CancelDistribution(ctx context.Context, distributionID string) error {
	return s.distributionRepo.Cancel(ctx, distributionID)
}

// GetDistribution retrieves a distribution with its member dividend rows.
func (s *DividendService) GetDistribution(ctx context.Context, distributionID string) (model.DividendDistribution, []model.MemberDividend, error) {
	return s.distributionRepo.Get(ctx, distributionID)
}

// ListDistributions retrieves all of a tenant's distributions.
func (s *DividendService) ListDistributions(ctx context.Context, tenantID string) ([]model.DividendDistribution, error) {
	return s.distributionRepo.List(ctx, tenantID)
}
