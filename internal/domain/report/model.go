package report

import "github.com/shopspring/decimal"

// Stats is the dashboard aggregate: row counts plus the sum of all
// payment amounts. TotalPaid is zero when no payments exist.
type Stats struct {
	Clients   int64
	Contracts int64
	Agents    int64
	TotalPaid decimal.Decimal
}
