// Package postgres implements the storage interfaces backed by PostgreSQL.
// Reporting queries and contract creation delegate to stored routines so
// the database remains the single owner of the commission and date rules.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/agent"
	"github.com/realtydesk/realtydesk/internal/domain/client"
	"github.com/realtydesk/realtydesk/internal/domain/contract"
	"github.com/realtydesk/realtydesk/internal/domain/report"
	"github.com/realtydesk/realtydesk/internal/domain/user"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
)

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db *sql.DB
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ClientStore = (*Store)(nil)
var _ storage.AgentStore = (*Store)(nil)
var _ storage.ContractStore = (*Store)(nil)
var _ storage.PaymentStore = (*Store)(nil)
var _ storage.ReportStore = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// translate maps driver errors onto service error kinds. Unique violations
// become conflicts; other integrity and data errors (bad dates raised by
// the contract trigger, missing foreign keys, malformed values) become bad
// requests. Everything else passes through for the caller to wrap.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "23505":
			return apperrors.Conflict(pqErr.Message)
		case pqErr.Code.Class() == "23", pqErr.Code.Class() == "22", pqErr.Code.Class() == "P0":
			return apperrors.BadRequest(pqErr.Message)
		}
	}
	return err
}

// --- UserStore --------------------------------------------------------------

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash)
		VALUES ($1, $2)
		RETURNING user_id, created_at
	`, u.Username, u.PasswordHash).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return user.User{}, translate(err)
	}
	return u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (user.User, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, password_hash, created_at
		FROM users
		WHERE username = $1
	`, username)

	var u user.User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.CreatedAt); err != nil {
		return user.User{}, err
	}
	return u, nil
}

// --- ClientStore ------------------------------------------------------------

func (s *Store) CreateClient(ctx context.Context, c client.Client) (client.Client, error) {
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO client (fname, lname, hiredate, address_street, address_city, address_state, address_zipcode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING client_id
	`, c.FirstName, c.LastName, c.HireDate, c.AddressStreet, c.City, c.State, c.ZIPCode).Scan(&c.ID)
	if err != nil {
		return client.Client{}, translate(err)
	}
	return c, nil
}

func (s *Store) ListClients(ctx context.Context) ([]client.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, fname, lname, hiredate, address_street, address_city, address_state, address_zipcode
		FROM client
		ORDER BY lname, fname
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []client.Client{}
	for rows.Next() {
		var c client.Client
		if err := rows.Scan(&c.ID, &c.FirstName, &c.LastName, &c.HireDate, &c.AddressStreet, &c.City, &c.State, &c.ZIPCode); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (s *Store) DeleteClientCascade(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT contract_id FROM contract WHERE client_id = $1
	`, id)
	if err != nil {
		tx.Rollback()
		return err
	}
	var contractIDs []int64
	for rows.Next() {
		var cid int64
		if err := rows.Scan(&cid); err != nil {
			rows.Close()
			tx.Rollback()
			return err
		}
		contractIDs = append(contractIDs, cid)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		tx.Rollback()
		return err
	}
	rows.Close()

	for _, cid := range contractIDs {
		if err := deleteContractRecords(ctx, tx, cid); err != nil {
			tx.Rollback()
			return translate(err)
		}
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM client_phone WHERE client_id = $1`, id); err != nil {
		tx.Rollback()
		return translate(err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM client WHERE client_id = $1`, id); err != nil {
		tx.Rollback()
		return translate(err)
	}
	return tx.Commit()
}

func (s *Store) ListHighValueClients(ctx context.Context) ([]client.HighValue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT client_id, fname, lname, contract_amount
		FROM get_clients_with_high_value_contracts()
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []client.HighValue{}
	for rows.Next() {
		var h client.HighValue
		if err := rows.Scan(&h.ID, &h.FirstName, &h.LastName, &h.ContractAmount); err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// --- AgentStore -------------------------------------------------------------

func (s *Store) ListAgents(ctx context.Context) ([]agent.Agent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT agent_id, fname, lname
		FROM agent
		ORDER BY lname, fname
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []agent.Agent{}
	for rows.Next() {
		var a agent.Agent
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (s *Store) ListAgentEarnings(ctx context.Context, agentID int64) ([]agent.Earning, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT contract_id, client_name, commission_amount, percentage
		FROM get_agent_earnings($1)
	`, agentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []agent.Earning{}
	for rows.Next() {
		var e agent.Earning
		if err := rows.Scan(&e.ContractID, &e.ClientName, &e.CommissionAmount, &e.Percentage); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// --- ContractStore ----------------------------------------------------------

func (s *Store) AddContract(ctx context.Context, c contract.Contract) error {
	// The routine inserts the row; its date check surfaces as a P0001
	// raise, which translate turns into a bad request.
	_, err := s.db.ExecContext(ctx, `
		CALL add_new_contract($1, $2, $3, $4)
	`, c.ClientID, c.StartDate, c.EndDate, c.Amount)
	return translate(err)
}

func (s *Store) ListContracts(ctx context.Context) ([]contract.Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.contract_id, c.amount, cl.fname || ' ' || cl.lname AS client_name
		FROM contract c
		JOIN client cl ON cl.client_id = c.client_id
		ORDER BY c.contract_id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []contract.Summary{}
	for rows.Next() {
		var sum contract.Summary
		if err := rows.Scan(&sum.ID, &sum.Amount, &sum.ClientName); err != nil {
			return nil, err
		}
		result = append(result, sum)
	}
	return result, rows.Err()
}

func (s *Store) DeleteContractCascade(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := deleteContractRecords(ctx, tx, id); err != nil {
		tx.Rollback()
		return translate(err)
	}
	return tx.Commit()
}

// deleteContractRecords removes a contract and its dependents inside tx, in
// foreign-key-safe order: payments, property links, earning links, then the
// contract row itself.
func deleteContractRecords(ctx context.Context, tx *sql.Tx, contractID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM payment WHERE contract_id = $1`, contractID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM property_contract WHERE contract_id = $1`, contractID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM earns WHERE contract_id = $1`, contractID); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM contract WHERE contract_id = $1`, contractID)
	return err
}

func (s *Store) TotalPayment(ctx context.Context, contractID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(get_total_payment($1), 0)
	`, contractID).Scan(&total)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return total, nil
}

// --- PaymentStore -----------------------------------------------------------

func (s *Store) ListPayments(ctx context.Context, contractID int64) ([]contract.Payment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payment_no, contract_id, payment_date, amount
		FROM payment
		WHERE contract_id = $1
		ORDER BY payment_date DESC, payment_no DESC
	`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []contract.Payment{}
	for rows.Next() {
		var p contract.Payment
		if err := rows.Scan(&p.No, &p.ContractID, &p.Date, &p.Amount); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (s *Store) AddPayment(ctx context.Context, contractID int64, amount decimal.Decimal) (contract.CommissionReport, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return contract.CommissionReport{}, err
	}

	var rep contract.CommissionReport
	err = tx.QueryRowContext(ctx, `
		SELECT co.commission_id, co.amount, co.percentage
		FROM earns e
		JOIN commission co ON co.commission_id = e.commission_id
		WHERE e.contract_id = $1
	`, contractID).Scan(&rep.CommissionID, &rep.PreAmount, &rep.Percentage)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, sql.ErrNoRows) {
			return contract.CommissionReport{}, apperrors.BadRequestf(
				"no commission record linked to contract %d; cannot add payment", contractID)
		}
		return contract.CommissionReport{}, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payment (contract_id, payment_date, amount)
		VALUES ($1, CURRENT_DATE, $2)
	`, contractID, amount); err != nil {
		tx.Rollback()
		return contract.CommissionReport{}, translate(err)
	}

	if err := tx.Commit(); err != nil {
		return contract.CommissionReport{}, err
	}

	// The commission trigger fires on the insert; read the amount it
	// produced after the commit.
	err = s.db.QueryRowContext(ctx, `
		SELECT amount FROM commission WHERE commission_id = $1
	`, rep.CommissionID).Scan(&rep.PostAmount)
	if err != nil {
		return contract.CommissionReport{}, err
	}
	return rep, nil
}

// --- ReportStore ------------------------------------------------------------

func (s *Store) Stats(ctx context.Context) (report.Stats, error) {
	var stats report.Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM client),
			(SELECT COUNT(*) FROM contract),
			(SELECT COUNT(*) FROM agent),
			(SELECT COALESCE(SUM(amount), 0) FROM payment)
	`).Scan(&stats.Clients, &stats.Contracts, &stats.Agents, &stats.TotalPaid)
	if err != nil {
		return report.Stats{}, err
	}
	return stats, nil
}
