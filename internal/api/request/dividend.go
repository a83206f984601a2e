package request

// CalculateDividendRequest runs a dividend calculation over a period. An
// empty cooperative model uses the configured default; nil percentages use
// the configured surplus split.
type CalculateDividendRequest struct {
	TenantID         string   `json:"tenantId"`
	PeriodStart      string   `json:"periodStart"`
	PeriodEnd        string   `json:"periodEnd"`
	CooperativeModel string   `json:"cooperativeModel,omitempty"`
	ReservesPercent  *float64 `json:"reservesPercent,omitempty"`
	BusinessPercent  *float64 `json:"businessPercent,omitempty"`
	DividendPercent  *float64 `json:"dividendPercent,omitempty"`
}

// PayDistributionRequest marks a distribution as paid out.
type PayDistributionRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}
