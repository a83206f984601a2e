package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/model"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
)

// OperationsService records the day-to-day operating facts other engines
// consume: passenger bookings, driver duties, and realized service revenue.
type OperationsService struct {
	bookingRepo    *repository.BookingRepository
	dutyRepo       *repository.DutyRepository
	costRecordRepo *repository.CostRecordRepository
}

func NewOperationsService(
	bookingRepo *repository.BookingRepository,
	dutyRepo *repository.DutyRepository,
	costRecordRepo *repository.CostRecordRepository,
) *OperationsService {
	return &OperationsService{
		bookingRepo:    bookingRepo,
		dutyRepo:       dutyRepo,
		costRecordRepo: costRecordRepo,
	}
}

// RecordBooking stores one passenger booking against a service instance.
func (s *OperationsService) RecordBooking(ctx context.Context, b *model.ServiceBooking) error {
	if b.FarePaid.IsNegative() {
		return apperrors.ErrNegativeAmount
	}
	return s.bookingRepo.Insert(ctx, b)
}

// RecordDuty stores one driver duty against a service instance.
func (s *OperationsService) RecordDuty(ctx context.Context, d *model.DriverDuty) error {
	return s.dutyRepo.Insert(ctx, d)
}

// ReconcileRevenue writes the realized revenue onto a service's cost record
// after the service has run, fixing its net surplus. The updated record is
// what the surplus allocator reads.
func (s *OperationsService) ReconcileRevenue(ctx context.Context, routeID string, serviceDate time.Time, revenue decimal.Decimal) (model.ServiceCostRecord, error) {
	if revenue.IsNegative() {
		return model.ServiceCostRecord{}, apperrors.ErrNegativeAmount
	}
	return s.costRecordRepo.ReconcileRevenue(ctx, routeID, serviceDate, revenue)
}
