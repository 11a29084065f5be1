package client

import (
	"time"

	"github.com/shopspring/decimal"
)

// Client represents a customer of the agency. Address fields mirror the
// client table columns.
type Client struct {
	ID            int64
	FirstName     string
	LastName      string
	HireDate      time.Time
	AddressStreet string
	City          string
	State         string
	ZIPCode       string
}

// Phone is a single entry from the client_phone table.
type Phone struct {
	ClientID int64
	Number   string
}

// HighValue is one row returned by the high-value client report routine:
// a client together with the amount of the contract that qualified them.
type HighValue struct {
	ID             int64
	FirstName      string
	LastName       string
	ContractAmount decimal.Decimal
}
