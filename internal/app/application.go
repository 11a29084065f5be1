// Package app wires the domain services to their stores.
package app

import (
	"github.com/realtydesk/realtydesk/internal/config"
	"github.com/realtydesk/realtydesk/internal/services/agents"
	"github.com/realtydesk/realtydesk/internal/services/auth"
	"github.com/realtydesk/realtydesk/internal/services/clients"
	"github.com/realtydesk/realtydesk/internal/services/contracts"
	"github.com/realtydesk/realtydesk/internal/services/payments"
	"github.com/realtydesk/realtydesk/internal/services/reports"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/internal/storage/memory"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to a
// shared in-memory implementation.
type Stores struct {
	Users     storage.UserStore
	Clients   storage.ClientStore
	Agents    storage.AgentStore
	Contracts storage.ContractStore
	Payments  storage.PaymentStore
	Reports   storage.ReportStore
}

// Application ties the domain services together.
type Application struct {
	log *logger.Logger

	Auth      *auth.Service
	Clients   *clients.Service
	Agents    *agents.Service
	Contracts *contracts.Service
	Payments  *payments.Service
	Reports   *reports.Service
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, authCfg config.AuthConfig, log *logger.Logger) *Application {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Clients == nil {
		stores.Clients = mem
	}
	if stores.Agents == nil {
		stores.Agents = mem
	}
	if stores.Contracts == nil {
		stores.Contracts = mem
	}
	if stores.Payments == nil {
		stores.Payments = mem
	}
	if stores.Reports == nil {
		stores.Reports = mem
	}

	return &Application{
		log:       log,
		Auth:      auth.New(stores.Users, authCfg, log),
		Clients:   clients.New(stores.Clients, log),
		Agents:    agents.New(stores.Agents, log),
		Contracts: contracts.New(stores.Contracts, log),
		Payments:  payments.New(stores.Payments, log),
		Reports:   reports.New(stores.Reports, log),
	}
}
