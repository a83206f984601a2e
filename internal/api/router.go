package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/communitytransit/Cooperative-Bus-Backend/internal/api/handlers"
	custommiddleware "github.com/communitytransit/Cooperative-Bus-Backend/internal/api/middleware"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/config"
	"github.com/communitytransit/Cooperative-Bus-Backend/internal/service"
)

// Services bundles the service dependencies the router wires into handlers.
type Services struct {
	System     *service.SystemService
	Pool       *service.PoolService
	Cost       *service.CostService
	Pricing    *service.PricingService
	Subsidy    *service.SubsidyService
	Allocation *service.AllocationService
	Dividend   *service.DividendService
	Member     *service.MemberService
	Operations *service.OperationsService
}

// NewRouter creates and configures the HTTP router
func NewRouter(svc Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// System namespace
		r.Route("/system", func(r chi.Router) {
			systemHandler := handlers.NewSystemHandler(svc.System)
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/pool", func(r chi.Router) {
			poolHandler := handlers.NewPoolHandler(svc.Pool)
			r.Route("/{routeId}", func(r chi.Router) {
				r.Get("/", poolHandler.GetPool)
				r.Post("/", poolHandler.InitializePool)
				r.Get("/transactions", poolHandler.GetTransactions)
			})
		})

		r.Route("/cost", func(r chi.Router) {
			costHandler := handlers.NewCostHandler(svc.Cost)
			r.Post("/estimate", costHandler.EstimateCost)
		})

		r.Route("/pricing", func(r chi.Router) {
			pricingHandler := handlers.NewPricingHandler(svc.Pricing)
			r.Get("/current", pricingHandler.CurrentPrice)
			r.Get("/booking", pricingHandler.BookingPrice)
		})

		r.Route("/subsidy", func(r chi.Router) {
			subsidyHandler := handlers.NewSubsidyHandler(svc.Subsidy, cfg.Subsidy)
			r.Post("/calculate", subsidyHandler.CalculateSubsidy)
			r.Post("/apply", subsidyHandler.ApplySubsidy)
		})

		r.Route("/surplus", func(r chi.Router) {
			allocationHandler := handlers.NewAllocationHandler(svc.Allocation, cfg.Allocation)
			r.Post("/allocate", allocationHandler.AllocateSurplus)
		})

		r.Route("/dividend", func(r chi.Router) {
			dividendHandler := handlers.NewDividendHandler(svc.Dividend, cfg.Allocation)
			r.Get("/", dividendHandler.ListDistributions)
			r.Post("/", dividendHandler.CreateDistribution)
			r.Post("/calculate", dividendHandler.CalculateDividends)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", dividendHandler.GetDistribution)
				r.Post("/pay", dividendHandler.PayDistribution)
				r.Post("/cancel", dividendHandler.CancelDistribution)
			})
		})

		r.Route("/member", func(r chi.Router) {
			memberHandler := handlers.NewMemberHandler(svc.Member)
			r.Get("/", memberHandler.ListMembers)
			r.Post("/", memberHandler.CreateMember)
			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", memberHandler.GetMember)
				r.Delete("/", memberHandler.DeactivateMember)
			})
		})

		r.Route("/operations", func(r chi.Router) {
			operationsHandler := handlers.NewOperationsHandler(svc.Operations)
			r.Post("/booking", operationsHandler.RecordBooking)
			r.Post("/duty", operationsHandler.RecordDuty)
			r.Post("/revenue", operationsHandler.ReconcileRevenue)
		})
	})

	return r
}
