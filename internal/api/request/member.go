package request

// CreateMemberRequest registers a cooperative membership. At least one of
// customerId and driverId must be set.
type CreateMemberRequest struct {
	TenantID             string  `json:"tenantId"`
	CustomerID           string  `json:"customerId,omitempty"`
	DriverID             string  `json:"driverId,omitempty"`
	MembershipType       string  `json:"membershipType,omitempty"`
	VotingRights         bool    `json:"votingRights"`
	ShareCapitalInvested float64 `json:"shareCapitalInvested,omitempty"`
	DividendEligible     bool    `json:"dividendEligible"`
	PayoutReference      string  `json:"payoutReference,omitempty"`
}
