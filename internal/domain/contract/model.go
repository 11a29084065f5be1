package contract

import (
	"time"

	"github.com/shopspring/decimal"
)

// Contract is a signed agreement between the agency and a client.
// Date validity (end after start) is enforced by the database when the
// contract is created through the add_new_contract routine.
type Contract struct {
	ID        int64
	ClientID  int64
	StartDate time.Time
	EndDate   time.Time
	Amount    decimal.Decimal
}

// Summary is a contract row joined with the owning client's name, as
// served by the contract listing.
type Summary struct {
	ID         int64
	Amount     decimal.Decimal
	ClientName string
}

// Payment is a single payment received against a contract.
type Payment struct {
	No         int64
	ContractID int64
	Date       time.Time
	Amount     decimal.Decimal
}

// Commission is maintained by a database trigger: inserting a payment
// recomputes the linked commission's amount. The service only reads it.
type Commission struct {
	ID         int64
	Amount     decimal.Decimal
	Percentage decimal.Decimal
}

// CommissionReport captures the commission state before and after a
// payment insert, demonstrating the trigger-driven recomputation.
type CommissionReport struct {
	CommissionID int64
	PreAmount    decimal.Decimal
	PostAmount   decimal.Decimal
	Percentage   decimal.Decimal
}
