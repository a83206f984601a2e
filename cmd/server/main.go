package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/database"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/repository"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/routing"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/scheduler"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database: %s", cfg.Database.Path)

	// Apply schema migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	// Create repositories
	poolRepo := repository.NewPoolRepository(db)
	costRecordRepo := repository.NewCostRecordRepository(db)
	memberRepo, err := repository.NewMemberRepository(db, cfg.Secrets.FernetKey)
	if err != nil {
		log.Fatalf("Failed to create member repository: %v", err)
	}
	distributionRepo := repository.NewDistributionRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	dutyRepo := repository.NewDutyRepository(db)

	// Distance provider; without an API key the cost estimator uses static fallbacks
	var provider routing.Provider
	if cfg.Maps.APIKey != "" {
		provider, err = routing.NewGoogleProvider(cfg.Maps.APIKey)
		if err != nil {
			log.Fatalf("Failed to create maps provider: %v", err)
		}
	} else {
		log.Printf("No maps API key configured, cost estimates use fallback distances")
	}

	// Create services
	systemService := service.NewSystemService(db)
	poolService := service.NewPoolService(poolRepo)
	costService := service.NewCostService(cfg.Cost, provider, costRecordRepo)
	pricingService := service.NewPricingService(costRecordRepo, bookingRepo, memberRepo, cfg.Pricing)
	subsidyService := service.NewSubsidyService(poolRepo, costRecordRepo, cfg.Pricing)
	allocationService := service.NewAllocationService(poolRepo)
	memberService := service.NewMemberService(memberRepo)
	operationsService := service.NewOperationsService(bookingRepo, dutyRepo, costRecordRepo)
	dividendService := service.NewDividendService(
		costRecordRepo,
		memberRepo,
		bookingRepo,
		dutyRepo,
		distributionRepo,
		cfg.Pricing.DefaultCooperativeModel,
	)

	// Start the monthly dividend scheduler
	var dividendScheduler *scheduler.DividendScheduler
	if cfg.Dividend.SchedulerEnabled {
		dividendScheduler = scheduler.NewDividendScheduler(
			dividendService,
			costRecordRepo,
			cfg.Dividend.CronSchedule,
			cfg.Allocation.ReservesPercent,
			cfg.Allocation.BusinessPercent,
			cfg.Allocation.DividendPercent,
		)
		if err := dividendScheduler.Start(); err != nil {
			log.Fatalf("Failed to start dividend scheduler: %v", err)
		}
	}

	// Create router
	router := api.NewRouter(api.Services{
		System:     systemService,
		Pool:       poolService,
		Cost:       costService,
		Pricing:    pricingService,
		Subsidy:    subsidyService,
		Allocation: allocationService,
		Dividend:   dividendService,
		Member:     memberService,
		Operations: operationsService,
	}, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	if dividendScheduler != nil {
		dividendScheduler.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
