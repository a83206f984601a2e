package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	CORS       CORSConfig
	Maps       MapsConfig
	Cost       CostParameters
	Pricing    PricingParameters
	Subsidy    SubsidyParameters
	Allocation AllocationParameters
	Dividend   DividendParameters
	Secrets    SecretsConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// MapsConfig holds configuration for the distance/duration provider.
// An empty APIKey disables the provider; the cost estimator then always
// uses its static fallback values.
type MapsConfig struct {
	APIKey string
}

// CostParameters holds the operating-cost model used by the cost estimator.
type CostParameters struct {
	DriverHourlyRate      float64 // GBP per hour
	FuelPricePerLitre     float64 // GBP per litre
	VehicleMPG            float64 // miles per gallon
	DepreciationPerMile   float64
	MaintenancePerMile    float64
	AnnualInsurance       float64 // amortized over ServicesPerYear
	ServicesPerYear       int
	OverheadPercent       float64 // flat percentage on direct costs
	PeakBufferPercent     float64 // duration buffer 07:00-09:00, 16:00-18:00
	OffPeakBufferPercent  float64
	WinterFuelMultiplier  float64 // Nov-Feb
	SummerFuelMultiplier  float64 // Jun-Aug
	FallbackDurationHours float64 // used when the provider is unavailable
	FallbackDistanceMiles float64
}

// PricingParameters holds the dynamic-pricing bounds.
type PricingParameters struct {
	MinimumFareFloor        float64
	MaximumAcceptableFare   float64
	NonMemberSurchargePct   float64
	DefaultCooperativeModel string // passenger, worker or hybrid
}

// SubsidyParameters holds the default subsidy caps.
type SubsidyParameters struct {
	MaxSurplusPercent float64 // share of a pool's available balance one service may draw
	MaxServicePercent float64 // share of a service's cost that may be subsidized
}

// AllocationParameters holds the default surplus split percentages.
type AllocationParameters struct {
	ReservesPercent float64
	BusinessPercent float64
	DividendPercent float64
}

// DividendParameters holds the dividend scheduler configuration.
type DividendParameters struct {
	// CronSchedule is a robfig/cron expression; default runs monthly on the
	// first day at 03:00 against the previous calendar month.
	CronSchedule     string
	SchedulerEnabled bool
}

// SecretsConfig holds encryption material.
type SecretsConfig struct {
	// FernetKey encrypts member payout references at rest. Empty disables
	// encryption (payout references are stored as given).
	FernetKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/coop_backend.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Maps: MapsConfig{
			APIKey: getEnv("MAPS_API_KEY", ""),
		},
		Cost: CostParameters{
			DriverHourlyRate:      getEnvFloat("COST_DRIVER_HOURLY_RATE", 15.50),
			FuelPricePerLitre:     getEnvFloat("COST_FUEL_PRICE_PER_LITRE", 1.45),
			VehicleMPG:            getEnvFloat("COST_VEHICLE_MPG", 12.0),
			DepreciationPerMile:   getEnvFloat("COST_DEPRECIATION_PER_MILE", 0.35),
			MaintenancePerMile:    getEnvFloat("COST_MAINTENANCE_PER_MILE", 0.22),
			AnnualInsurance:       getEnvFloat("COST_ANNUAL_INSURANCE", 3200),
			ServicesPerYear:       getEnvInt("COST_SERVICES_PER_YEAR", 500),
			OverheadPercent:       getEnvFloat("COST_OVERHEAD_PERCENT", 15),
			PeakBufferPercent:     getEnvFloat("COST_PEAK_BUFFER_PERCENT", 20),
			OffPeakBufferPercent:  getEnvFloat("COST_OFFPEAK_BUFFER_PERCENT", 10),
			WinterFuelMultiplier:  getEnvFloat("COST_WINTER_FUEL_MULTIPLIER", 1.15),
			SummerFuelMultiplier:  getEnvFloat("COST_SUMMER_FUEL_MULTIPLIER", 0.95),
			FallbackDurationHours: getEnvFloat("COST_FALLBACK_DURATION_HOURS", 1.5),
			FallbackDistanceMiles: getEnvFloat("COST_FALLBACK_DISTANCE_MILES", 10),
		},
		Pricing: PricingParameters{
			MinimumFareFloor:        getEnvFloat("PRICING_MINIMUM_FARE_FLOOR", 2.00),
			MaximumAcceptableFare:   getEnvFloat("PRICING_MAXIMUM_ACCEPTABLE_FARE", 5.00),
			NonMemberSurchargePct:   getEnvFloat("PRICING_NON_MEMBER_SURCHARGE_PERCENT", 20),
			DefaultCooperativeModel: getEnv("COOPERATIVE_MODEL", "passenger"),
		},
		Subsidy: SubsidyParameters{
			MaxSurplusPercent: getEnvFloat("SUBSIDY_MAX_SURPLUS_PERCENT", 50),
			MaxServicePercent: getEnvFloat("SUBSIDY_MAX_SERVICE_PERCENT", 30),
		},
		Allocation: AllocationParameters{
			ReservesPercent: getEnvFloat("ALLOCATION_RESERVES_PERCENT", 20),
			BusinessPercent: getEnvFloat("ALLOCATION_BUSINESS_PERCENT", 30),
			DividendPercent: getEnvFloat("ALLOCATION_DIVIDEND_PERCENT", 50),
		},
		Dividend: DividendParameters{
			CronSchedule:     getEnv("DIVIDEND_CRON_SCHEDULE", "0 3 1 * *"),
			SchedulerEnabled: getEnvBool("DIVIDEND_SCHEDULER_ENABLED", true),
		},
		Secrets: SecretsConfig{
			FernetKey: getEnv("FERNET_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvFloat gets a float environment variable or returns a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return f
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return i
}

// getEnvBool gets a boolean environment variable or returns a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}
