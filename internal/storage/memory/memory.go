// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is intended for tests and
// local development; the database-resident behavior the production store
// delegates to (date validation, commission recomputation) is emulated
// here so callers observe the same semantics.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/agent"
	"github.com/realtydesk/realtydesk/internal/domain/client"
	"github.com/realtydesk/realtydesk/internal/domain/contract"
	"github.com/realtydesk/realtydesk/internal/domain/report"
	"github.com/realtydesk/realtydesk/internal/domain/user"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
)

type earnLink struct {
	AgentID      int64
	ContractID   int64
	CommissionID int64
}

// Store is the in-memory implementation of every storage interface.
type Store struct {
	mu            sync.RWMutex
	nextID        int64
	users         map[string]user.User
	clients       map[int64]client.Client
	phones        map[int64][]string
	agents        map[int64]agent.Agent
	contracts     map[int64]contract.Contract
	payments      map[int64][]contract.Payment
	commissions   map[int64]contract.Commission
	earns         []earnLink
	propertyLinks map[int64][]int64
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ClientStore = (*Store)(nil)
var _ storage.AgentStore = (*Store)(nil)
var _ storage.ContractStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)
var _ storage.ReportStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:        1,
		users:         make(map[string]user.User),
		clients:       make(map[int64]client.Client),
		phones:        make(map[int64][]string),
		agents:        make(map[int64]agent.Agent),
		contracts:     make(map[int64]contract.Contract),
		payments:      make(map[int64][]contract.Payment),
		commissions:   make(map[int64]contract.Commission),
		propertyLinks: make(map[int64][]int64),
	}
}

func (s *Store) nextIDLocked() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// UserStore --------------------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[u.Username]; exists {
		return user.User{}, apperrors.Conflict("username already exists")
	}
	u.ID = s.nextIDLocked()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.Username] = u
	return u, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[username]
	if !ok {
		return user.User{}, sql.ErrNoRows
	}
	return u, nil
}

// ClientStore ------------------------------------------------------------

func (s *Store) CreateClient(_ context.Context, c client.Client) (client.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.ID = s.nextIDLocked()
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) ListClients(_ context.Context) ([]client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]client.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *Store) DeleteClientCascade(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for contractID, c := range s.contracts {
		if c.ClientID == id {
			s.deleteContractLocked(contractID)
		}
	}
	delete(s.phones, id)
	delete(s.clients, id)
	return nil
}

func (s *Store) ListHighValueClients(_ context.Context) ([]client.HighValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.contracts) == 0 {
		return []client.HighValue{}, nil
	}

	total := decimal.Zero
	for _, c := range s.contracts {
		total = total.Add(c.Amount)
	}
	avg := total.Div(decimal.NewFromInt(int64(len(s.contracts))))

	best := make(map[int64]decimal.Decimal)
	for _, c := range s.contracts {
		if c.Amount.GreaterThan(avg) {
			if cur, ok := best[c.ClientID]; !ok || c.Amount.GreaterThan(cur) {
				best[c.ClientID] = c.Amount
			}
		}
	}

	out := make([]client.HighValue, 0, len(best))
	for clientID, amount := range best {
		cl, ok := s.clients[clientID]
		if !ok {
			continue
		}
		out = append(out, client.HighValue{
			ID:             cl.ID,
			FirstName:      cl.FirstName,
			LastName:       cl.LastName,
			ContractAmount: amount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ContractAmount.GreaterThan(out[j].ContractAmount)
	})
	return out, nil
}

// AgentStore -------------------------------------------------------------

func (s *Store) ListAgents(_ context.Context) ([]agent.Agent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]agent.Agent, 0, len(s.agents))
	for _, a := range s.agents {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName != out[j].LastName {
			return out[i].LastName < out[j].LastName
		}
		return out[i].FirstName < out[j].FirstName
	})
	return out, nil
}

func (s *Store) ListAgentEarnings(_ context.Context, agentID int64) ([]agent.Earning, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []agent.Earning{}
	for _, link := range s.earns {
		if link.AgentID != agentID {
			continue
		}
		co, ok := s.commissions[link.CommissionID]
		if !ok {
			continue
		}
		name := ""
		if c, ok := s.contracts[link.ContractID]; ok {
			if cl, ok := s.clients[c.ClientID]; ok {
				name = cl.FirstName + " " + cl.LastName
			}
		}
		out = append(out, agent.Earning{
			ContractID:       link.ContractID,
			ClientName:       name,
			CommissionAmount: co.Amount,
			Percentage:       co.Percentage,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ContractID > out[j].ContractID })
	return out, nil
}

// ContractStore ----------------------------------------------------------

func (s *Store) AddContract(_ context.Context, c contract.Contract) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[c.ClientID]; !ok {
		return apperrors.BadRequestf("client %d does not exist", c.ClientID)
	}
	// The production path runs this check in the database trigger.
	if !c.EndDate.After(c.StartDate) {
		return apperrors.BadRequest("contract end date must follow start date")
	}

	c.ID = s.nextIDLocked()
	s.contracts[c.ID] = c
	return nil
}

func (s *Store) ListContracts(_ context.Context) ([]contract.Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contract.Summary, 0, len(s.contracts))
	for _, c := range s.contracts {
		name := ""
		if cl, ok := s.clients[c.ClientID]; ok {
			name = cl.FirstName + " " + cl.LastName
		}
		out = append(out, contract.Summary{ID: c.ID, Amount: c.Amount, ClientName: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) DeleteContractCascade(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteContractLocked(id)
	return nil
}

// deleteContractLocked removes dependents in foreign-key-safe order:
// payments, property links, earning links, then the contract row.
func (s *Store) deleteContractLocked(id int64) {
	delete(s.payments, id)
	delete(s.propertyLinks, id)
	kept := s.earns[:0]
	for _, link := range s.earns {
		if link.ContractID != id {
			kept = append(kept, link)
		}
	}
	s.earns = kept
	delete(s.contracts, id)
}

func (s *Store) TotalPayment(_ context.Context, contractID int64) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, p := range s.payments[contractID] {
		total = total.Add(p.Amount)
	}
	return total, nil
}

// PaymentStore -----------------------------------------------------------

func (s *Store) ListPayments(_ context.Context, contractID int64) ([]contract.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]contract.Payment, len(s.payments[contractID]))
	copy(out, s.payments[contractID])
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].No > out[j].No
	})
	return out, nil
}

func (s *Store) AddPayment(_ context.Context, contractID int64, amount decimal.Decimal) (contract.CommissionReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var commissionID int64
	found := false
	for _, link := range s.earns {
		if link.ContractID == contractID {
			commissionID = link.CommissionID
			found = true
			break
		}
	}
	if !found {
		return contract.CommissionReport{}, apperrors.BadRequestf(
			"no commission record linked to contract %d; cannot add payment", contractID)
	}

	co := s.commissions[commissionID]
	pre := co.Amount

	s.payments[contractID] = append(s.payments[contractID], contract.Payment{
		No:         s.nextIDLocked(),
		ContractID: contractID,
		Date:       time.Now().UTC().Truncate(24 * time.Hour),
		Amount:     amount,
	})

	// Emulates the commission trigger: amount := percentage of the
	// contract's payment total.
	total := decimal.Zero
	for _, p := range s.payments[contractID] {
		total = total.Add(p.Amount)
	}
	co.Amount = co.Percentage.Mul(total).Div(decimal.NewFromInt(100))
	s.commissions[commissionID] = co

	return contract.CommissionReport{
		CommissionID: commissionID,
		PreAmount:    pre,
		PostAmount:   co.Amount,
		Percentage:   co.Percentage,
	}, nil
}

// ReportStore ------------------------------------------------------------

func (s *Store) Stats(_ context.Context) (report.Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, list := range s.payments {
		for _, p := range list {
			total = total.Add(p.Amount)
		}
	}
	return report.Stats{
		Clients:   int64(len(s.clients)),
		Contracts: int64(len(s.contracts)),
		Agents:    int64(len(s.agents)),
		TotalPaid: total,
	}, nil
}

// Seed helpers -----------------------------------------------------------
// Agents, commissions, properties, and their links have no write routes in
// the API surface; tests and local development create them directly.

// SeedAgent inserts an agent and returns it with its assigned id.
func (s *Store) SeedAgent(a agent.Agent) agent.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.nextIDLocked()
	s.agents[a.ID] = a
	return a
}

// SeedCommission inserts a commission record.
func (s *Store) SeedCommission(co contract.Commission) contract.Commission {
	s.mu.Lock()
	defer s.mu.Unlock()
	co.ID = s.nextIDLocked()
	s.commissions[co.ID] = co
	return co
}

// LinkEarns records that an agent earns a commission on a contract.
func (s *Store) LinkEarns(agentID, contractID, commissionID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.earns = append(s.earns, earnLink{AgentID: agentID, ContractID: contractID, CommissionID: commissionID})
}

// LinkProperty attaches a property to a contract.
func (s *Store) LinkProperty(contractID, propertyID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.propertyLinks[contractID] = append(s.propertyLinks[contractID], propertyID)
}

// AddPhone records a phone number for a client.
func (s *Store) AddPhone(clientID int64, number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.phones[clientID] = append(s.phones[clientID], number)
}

// PhoneCount reports how many phone records a client has.
func (s *Store) PhoneCount(clientID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.phones[clientID])
}

// ContractIDs returns the ids of all stored contracts, newest first.
func (s *Store) ContractIDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.contracts))
	for id := range s.contracts {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}
