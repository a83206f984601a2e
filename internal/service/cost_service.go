package service

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/money"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/routing"
)

// CostService estimates the full operating cost of one service instance:
// driver wages, fuel, vehicle depreciation and maintenance, amortized
// insurance and a flat overhead percentage.
//
// The external distance/duration provider is consulted first; any provider
// failure degrades to static fallback values, so an estimate is always
// produced. The provider is never called while a pool transaction is open.
type CostService struct {
	params         config.CostParameters
	provider       routing.Provider
	costRecordRepo *repository.CostRecordRepository
}

// NewCostService creates a CostService. provider may be nil, in which case
// every estimate uses the static fallback values.
func NewCostService(
	params config.CostParameters,
	provider routing.Provider,
	costRecordRepo *repository.CostRecordRepository,
) *CostService {
	return &CostService{
		params:         params,
		provider:       provider,
		costRecordRepo: costRecordRepo,
	}
}

// EstimateCostRequest identifies the service instance and journey to cost.
type EstimateCostRequest struct {
	TenantID      string
	RouteID       string
	TimetableID   string
	Origin        string
	Destination   string
	ServiceDate   time.Time
	DepartureTime string // "HH:MM", used for peak-hour detection
	VehicleType   string
}

// EstimateCost produces the cost breakdown for a service instance and
// persists it as the service's cost record. Provider failures never surface:
// the estimate falls back to fixed distance/duration values and is flagged.
// The returned error covers persistence only.
func (s *CostService) EstimateCost(ctx context.Context, req EstimateCostRequest) (model.CostBreakdown, error) {
	breakdown := s.estimate(ctx, req)

	rec := &model.ServiceCostRecord{
		TenantID:    req.TenantID,
		RouteID:     req.RouteID,
		TimetableID: req.TimetableID,
		ServiceDate: req.ServiceDate,
		TotalCost:   breakdown.Total,
		Breakdown:   &breakdown,
	}
	if err := s.costRecordRepo.UpsertEstimate(ctx, rec); err != nil {
		return model.CostBreakdown{}, err
	}

	return breakdown, nil
}

func (s *CostService) estimate(ctx context.Context, req EstimateCostRequest) model.CostBreakdown {
	miles := s.params.FallbackDistanceMiles
	hours := s.params.FallbackDurationHours
	fallbackUsed := true

	if s.provider != nil {
		leg, err := s.provider.Lookup(ctx, req.Origin, req.Destination)
		if err != nil {
			log.Printf("WARN: distance provider unavailable for route %s, using fallback estimate: %v", req.RouteID, err)
		} else {
			miles = leg.Miles()
			hours = leg.Hours()
			fallbackUsed = false
		}
	}

	// Delay-risk buffer on driving time: peak services get the larger buffer.
	peak := isPeakDeparture(req.DepartureTime)
	bufferPercent := s.params.OffPeakBufferPercent
	if peak {
		bufferPercent = s.params.PeakBufferPercent
	}
	bufferedHours := hours * (1 + bufferPercent/100)

	wages := decimal.NewFromFloat(bufferedHours).Mul(decimal.NewFromFloat(s.params.DriverHourlyRate))

	fuel := decimal.NewFromFloat(miles).
		Mul(decimal.NewFromFloat(s.params.FuelPricePerLitre)).
		Div(decimal.NewFromFloat(s.params.VehicleMPG)).
		Mul(decimal.NewFromFloat(seasonalFuelMultiplier(req.ServiceDate, s.params)))

	depreciation := decimal.NewFromFloat(miles).Mul(decimal.NewFromFloat(s.params.DepreciationPerMile))
	maintenance := decimal.NewFromFloat(miles).Mul(decimal.NewFromFloat(s.params.MaintenancePerMile))

	insurance := decimal.NewFromFloat(s.params.AnnualInsurance).
		Div(decimal.NewFromInt(int64(s.params.ServicesPerYear)))

	direct := wages.Add(fuel).Add(depreciation).Add(maintenance).Add(insurance)
	overhead := money.PercentFloat(direct, s.params.OverheadPercent)

	return model.CostBreakdown{
		DriverWages:           wages,
		Fuel:                  fuel,
		Depreciation:          depreciation,
		MaintenanceAllocation: maintenance,
		InsuranceAllocation:   insurance,
		Overhead:              overhead,
		Total:                 direct.Add(overhead),
		DistanceMiles:         miles,
		DurationHours:         bufferedHours,
		PeakService:           peak,
		BufferPercent:         bufferPercent,
		FallbackUsed:          fallbackUsed,
	}
}

// isPeakDeparture reports whether an "HH:MM" departure falls in the morning
// (07:00-09:00) or evening (16:00-18:00) peak. Unparseable departures are
// treated as off-peak.
func isPeakDeparture(departure string) bool {
	t, err := time.Parse("15:04", departure)
	if err != nil {
		return false
	}
	minutes := t.Hour()*60 + t.Minute()
	return (minutes >= 7*60 && minutes < 9*60) || (minutes >= 16*60 && minutes < 18*60)
}

// seasonalFuelMultiplier models winter consumption and summer efficiency.
func seasonalFuelMultiplier(serviceDate time.Time, params config.CostParameters) float64 {
	switch serviceDate.Month() {
	case time.November, time.December, time.January, time.February:
		return params.WinterFuelMultiplier
	case time.June, time.July, time.August:
		return params.SummerFuelMultiplier
	default:
		return 1.0
	}
}
