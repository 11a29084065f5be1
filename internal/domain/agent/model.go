package agent

import "github.com/shopspring/decimal"

// Agent represents a sales agent.
type Agent struct {
	ID        int64
	FirstName string
	LastName  string
}

// Earning is one row from the agent earnings routine: the commission an
// agent earns on a single contract.
type Earning struct {
	ContractID       int64
	ClientName       string
	CommissionAmount decimal.Decimal
	Percentage       decimal.Decimal
}
