package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/apperrors"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
)

// DividendScheduler runs the monthly dividend calculation automatically. On
// each tick it computes and saves a distribution for the previous calendar
// month for every tenant with cost records in that month, skipping tenants
// whose period already has a distribution. Runs never overlap.
type DividendScheduler struct {
	cron            *cron.Cron
	dividendService *service.DividendService
	costRecordRepo  *repository.CostRecordRepository

	schedule        string
	reservesPercent float64
	businessPercent float64
	dividendPercent float64

	running sync.Mutex
}

// NewDividendScheduler creates a scheduler that fires on the given cron
// expression with the configured surplus split percentages.
func NewDividendScheduler(
	dividendService *service.DividendService,
	costRecordRepo *repository.CostRecordRepository,
	schedule string,
	reservesPercent, businessPercent, dividendPercent float64,
) *DividendScheduler {
	return &DividendScheduler{
		cron:            cron.New(),
		dividendService: dividendService,
		costRecordRepo:  costRecordRepo,
		schedule:        schedule,
		reservesPercent: reservesPercent,
		businessPercent: businessPercent,
		dividendPercent: dividendPercent,
	}
}

// Start registers the cron entry and starts the scheduler.
func (s *DividendScheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.runOnce)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("Dividend scheduler started with schedule %q", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for an in-flight run to finish.
func (s *DividendScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	// Block until any run started before Stop has completed.
	s.running.Lock()
	defer s.running.Unlock()

	log.Printf("Dividend scheduler stopped")
}

// runOnce is the cron entrypoint; it skips the tick if a run is in flight.
func (s *DividendScheduler) runOnce() {
	if !s.running.TryLock() {
		log.Printf("WARN: dividend run still in progress, skipping tick")
		return
	}
	defer s.running.Unlock()

	start, end := previousMonth(time.Now().UTC())
	s.RunForPeriod(context.Background(), start, end)
}

// RunForPeriod calculates and saves a distribution for every tenant with
// cost records in [start, end]. Per-tenant failures are logged and do not
// stop the sweep.
func (s *DividendScheduler) RunForPeriod(ctx context.Context, start, end time.Time) {
	tenants, err := s.costRecordRepo.TenantsWithRecords(ctx, start, end)
	if err != nil {
		log.Printf("ERROR: dividend run could not list tenants: %v", err)
		return
	}

	log.Printf("Dividend run for %s to %s: %d tenant(s)",
		start.Format("2006-01-02"), end.Format("2006-01-02"), len(tenants))

	for _, tenantID := range tenants {
		calc, err := s.dividendService.CalculateDividends(ctx, service.CalculateDividendsRequest{
			TenantID:        tenantID,
			PeriodStart:     start,
			PeriodEnd:       end,
			ReservesPercent: s.reservesPercent,
			BusinessPercent: s.businessPercent,
			DividendPercent: s.dividendPercent,
		})
		if errors.Is(err, apperrors.ErrDistributionExists) {
			log.Printf("Dividend run: tenant %s already has a distribution for the period, skipping", tenantID)
			continue
		}
		if err != nil {
			log.Printf("ERROR: dividend calculation failed for tenant %s: %v", tenantID, err)
			continue
		}

		id, err := s.dividendService.SaveDividendDistribution(ctx, &calc)
		if err != nil {
			log.Printf("ERROR: failed to save distribution for tenant %s: %v", tenantID, err)
			continue
		}

		log.Printf("Dividend run: tenant %s distribution %s saved (%d member(s), pool %s)",
			tenantID, id, len(calc.Dividends), calc.Distribution.DividendPool.StringFixed(2))
	}
}

// previousMonth returns the first and last day of the calendar month before
// the one containing now.
func previousMonth(now time.Time) (time.Time, time.Time) {
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := firstOfThisMonth.AddDate(0, 0, -1)
	start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, end
}
