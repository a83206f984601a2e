package apperrors

import "errors"

// Domain entity errors represent missing or invalid entities in the system.
// These errors indicate that a requested resource does not exist.
var (
	// ErrPoolNotFound indicates that no surplus pool has been initialized for the route.
	// Read-only queries treat this as an empty pool; subsidy application treats it as fatal.
	ErrPoolNotFound = errors.New("surplus pool not found")

	// ErrCostRecordNotFound indicates that no cost record exists for the route and service date.
	ErrCostRecordNotFound = errors.New("service cost record not found")

	// ErrMemberNotFound indicates that a cooperative member with the given ID does not exist.
	ErrMemberNotFound = errors.New("cooperative member not found")

	// ErrDistributionNotFound indicates that a dividend distribution with the given ID does not exist.
	ErrDistributionNotFound = errors.New("dividend distribution not found")

	// ErrTransactionNotFound indicates that a surplus transaction with the given ID does not exist.
	ErrTransactionNotFound = errors.New("surplus transaction not found")
)

// Business logic errors represent validation failures or constraint violations.
// These errors indicate that an operation cannot be completed due to business rules.
var (
	// ErrInsufficientSurplus indicates that a subsidy draw exceeds the pool's
	// available balance. The operation is rolled back in full.
	ErrInsufficientSurplus = errors.New("insufficient surplus available for subsidy")

	// ErrInvalidAllocationPercentages indicates that the reserves, business and
	// dividend percentages do not sum to 100.
	ErrInvalidAllocationPercentages = errors.New("allocation percentages must sum to 100")

	// ErrDistributionExists indicates that a dividend distribution already exists
	// for the exact tenant and period.
	ErrDistributionExists = errors.New("dividend distribution already exists for period")

	// ErrDistributionAlreadyPaid indicates an attempt to pay or cancel a
	// distribution that has already been marked distributed.
	ErrDistributionAlreadyPaid = errors.New("dividend distribution already distributed")

	// ErrInvalidSurplusAmount indicates that a surplus allocation was requested
	// with a non-positive gross surplus.
	ErrInvalidSurplusAmount = errors.New("gross surplus must be positive")

	// ErrInvalidDateRange indicates that the provided date range is invalid
	// (e.g., start date is after end date).
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidUUID indicates that a provided ID is not a valid UUID format.
	ErrInvalidUUID = errors.New("invalid UUID format")

	// ErrEmptyID indicates that a required ID parameter is empty or missing.
	ErrEmptyID = errors.New("ID cannot be empty")

	// ErrNegativeAmount indicates that an amount field has an invalid negative value.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrMemberInactive indicates an operation that requires an active membership.
	ErrMemberInactive = errors.New("cooperative member is not active")

	// ErrUnknownCooperativeModel indicates a cooperative model other than
	// passenger, worker or hybrid.
	ErrUnknownCooperativeModel = errors.New("unknown cooperative model")
)

// Operation failure errors represent system-level failures when retrieving or
// processing data. These indicate that an operation failed, but not due to
// missing entities or validation issues.
var (
	ErrFailedToRetrievePool          = errors.New("failed to retrieve surplus pool")
	ErrFailedToRetrieveTransactions  = errors.New("failed to retrieve surplus transactions")
	ErrFailedToRetrieveMembers       = errors.New("failed to retrieve cooperative members")
	ErrFailedToRetrieveDistributions = errors.New("failed to retrieve dividend distributions")
	ErrFailedToEstimateCost          = errors.New("failed to estimate service cost")
	ErrFailedToCalculatePrice        = errors.New("failed to calculate service price")
	ErrFailedToApplySubsidy          = errors.New("failed to apply subsidy")
	ErrFailedToAllocateSurplus       = errors.New("failed to allocate surplus")
	ErrFailedToCalculateDividends    = errors.New("failed to calculate dividends")
)

// Data integrity errors represent inconsistencies or corruption in the data.
var (
	// ErrDataInconsistency indicates that the data is in an inconsistent state
	// (e.g., a dividend row references a member that no longer exists).
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrMissingRequiredField indicates that a required field is missing or empty.
	ErrMissingRequiredField = errors.New("missing required field")
)
