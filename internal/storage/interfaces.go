// Package storage defines the persistence interfaces for the realty
// domain. Implementations: storage/postgres (production) and
// storage/memory (tests, local development).
package storage

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/agent"
	"github.com/realtydesk/realtydesk/internal/domain/client"
	"github.com/realtydesk/realtydesk/internal/domain/contract"
	"github.com/realtydesk/realtydesk/internal/domain/report"
	"github.com/realtydesk/realtydesk/internal/domain/user"
)

// UserStore persists API credentials. CreateUser fails with a conflict
// error when the username is already taken; GetUserByUsername returns
// sql.ErrNoRows for unknown usernames.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

// ClientStore persists clients and their dependent records.
type ClientStore interface {
	CreateClient(ctx context.Context, c client.Client) (client.Client, error)
	// ListClients returns all clients ordered by last name, first name.
	ListClients(ctx context.Context) ([]client.Client, error)
	// DeleteClientCascade removes the client plus every dependent
	// contract (with its payments, property links, and earning links)
	// and phone record, in foreign-key-safe order, atomically.
	DeleteClientCascade(ctx context.Context, id int64) error
	// ListHighValueClients delegates to the high-value report routine.
	ListHighValueClients(ctx context.Context) ([]client.HighValue, error)
}

// AgentStore persists agents and serves their earnings report.
type AgentStore interface {
	// ListAgents returns all agents ordered by last name, first name.
	ListAgents(ctx context.Context) ([]agent.Agent, error)
	// ListAgentEarnings delegates to the agent earnings routine.
	ListAgentEarnings(ctx context.Context, agentID int64) ([]agent.Earning, error)
}

// ContractStore persists contracts.
type ContractStore interface {
	// AddContract delegates to the contract creation routine, which
	// also runs the server-side date validation trigger.
	AddContract(ctx context.Context, c contract.Contract) error
	// ListContracts returns all contracts joined with the client name,
	// ordered by contract id descending.
	ListContracts(ctx context.Context) ([]contract.Summary, error)
	// DeleteContractCascade removes the contract's payments, property
	// links, and earning links, then the contract row, atomically.
	DeleteContractCascade(ctx context.Context, id int64) error
	// TotalPayment delegates to the payment total routine; zero when
	// the contract has no payments.
	TotalPayment(ctx context.Context, contractID int64) (decimal.Decimal, error)
}

// PaymentStore persists payments and reports the commission impact.
type PaymentStore interface {
	// ListPayments returns a contract's payments ordered by date
	// descending, then payment number descending.
	ListPayments(ctx context.Context, contractID int64) ([]contract.Payment, error)
	// AddPayment inserts a payment in a single transaction, failing
	// with a validation error when the contract has no linked
	// commission. The report carries the commission amount before and
	// after the trigger-driven recomputation.
	AddPayment(ctx context.Context, contractID int64, amount decimal.Decimal) (contract.CommissionReport, error)
}

// ReportStore serves the dashboard aggregates.
type ReportStore interface {
	Stats(ctx context.Context) (report.Stats, error)
}
