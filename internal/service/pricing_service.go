package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/money"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// PricingService converts a service's effective cost and current bookings
// into a floor-clamped per-passenger fare: fares fall as ridership rises
// until the floor is reached, after which extra bookings generate surplus.
type PricingService struct {
	costRecordRepo *repository.CostRecordRepository
	bookingRepo    *repository.BookingRepository
	memberRepo     *repository.MemberRepository
	params         config.PricingParameters
}

// NewPricingService creates a new PricingService with the provided repository
// dependencies.
func NewPricingService(
	costRecordRepo *repository.CostRecordRepository,
	bookingRepo *repository.BookingRepository,
	memberRepo *repository.MemberRepository,
	params config.PricingParameters,
) *PricingService {
	return &PricingService{
		costRecordRepo: costRecordRepo,
		bookingRepo:    bookingRepo,
		memberRepo:     memberRepo,
		params:         params,
	}
}

// CalculateCurrentPrice quotes the per-passenger fare for a service instance
// at its current booking level. With no bookings there is nothing to divide
// the cost by, so the quote is the maximum acceptable fare. Intermediate math
// stays unrounded; only the two output prices are rounded to pence.
//
// The cost estimator must have run for the service:
// apperrors.ErrCostRecordNotFound otherwise.
func (s *PricingService) CalculateCurrentPrice(ctx context.Context, tenantID, routeID string, serviceDate time.Time) (model.PriceQuote, error) {
	rec, err := s.costRecordRepo.GetByService(ctx, routeID, serviceDate)
	if err != nil {
		return model.PriceQuote{}, err
	}

	bookings, err := s.bookingRepo.CountForService(ctx, tenantID, routeID, serviceDate)
	if err != nil {
		return model.PriceQuote{}, err
	}

	minPassengers, _ := breakEvenPoint(rec.EffectiveCost, s.params.MaximumAcceptableFare)

	base := decimal.NewFromFloat(s.params.MaximumAcceptableFare)
	floorReached := false

	if bookings > 0 {
		floor := decimal.NewFromFloat(s.params.MinimumFareFloor)
		base = rec.EffectiveCost.Div(decimal.NewFromInt(int64(bookings)))
		if base.LessThan(floor) {
			base = floor
			floorReached = true
		}
	}

	surcharge := decimal.NewFromFloat(1 + s.params.NonMemberSurchargePct/100)

	return model.PriceQuote{
		RouteID:                 routeID,
		ServiceDate:             serviceDate,
		CurrentBookings:         bookings,
		EffectiveCost:           rec.EffectiveCost,
		MemberPrice:             money.Round2(base),
		NonMemberPrice:          money.Round2(base.Mul(surcharge)),
		FloorReached:            floorReached,
		IsViable:                bookings >= minPassengers,
		MinimumPassengersNeeded: minPassengers,
	}, nil
}

// GetPriceForBooking resolves the fare for one prospective passenger. Active
// cooperative members pay the member price; everyone else, including
// anonymous bookings with no customer ID, pays the surcharged price.
func (s *PricingService) GetPriceForBooking(ctx context.Context, tenantID, routeID string, serviceDate time.Time, customerID string) (model.BookingPrice, error) {
	quote, err := s.CalculateCurrentPrice(ctx, tenantID, routeID, serviceDate)
	if err != nil {
		return model.BookingPrice{}, err
	}

	isMember := false
	if customerID != "" {
		isMember, err = s.memberRepo.IsActiveMember(ctx, tenantID, customerID)
		if err != nil {
			return model.BookingPrice{}, err
		}
	}

	price := quote.NonMemberPrice
	if isMember {
		price = quote.MemberPrice
	}

	return model.BookingPrice{Price: price, IsMember: isMember}, nil
}
