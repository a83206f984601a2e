package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Surplus transaction types.
const (
	TransactionSurplusAdded   = "surplus_added"
	TransactionSubsidyApplied = "subsidy_applied"
)

// SurplusTransaction is an append-only ledger entry recording one balance
// mutation on a route's surplus pool. Rows are write-once: for every entry
// PoolBalanceAfter equals PoolBalanceBefore plus the signed amount, and
// replaying a pool's entries in creation order reconstructs its balance.
type SurplusTransaction struct {
	ID                string          `json:"id"`
	PoolID            string          `json:"poolId"`
	TenantID          string          `json:"tenantId"`
	RouteID           string          `json:"routeId"`
	TimetableID       string          `json:"timetableId,omitempty"`
	ServiceDate       time.Time       `json:"serviceDate"`
	Type              string          `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	PoolBalanceBefore decimal.Decimal `json:"poolBalanceBefore"`
	PoolBalanceAfter  decimal.Decimal `json:"poolBalanceAfter"`
	Description       string          `json:"description,omitempty"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// SignedAmount returns the amount with the sign implied by the transaction
// type: surplus additions are positive, subsidy draws negative.
func (t SurplusTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionSubsidyApplied {
		return t.Amount.Neg()
	}
	return t.Amount
}
