// Package migrations creates the realty schema: tables, the stored routines
// the API delegates to, and the commission trigger. Statements are idempotent
// so Apply can run on every start.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS client (
		client_id       BIGSERIAL PRIMARY KEY,
		fname           TEXT NOT NULL,
		lname           TEXT NOT NULL,
		hiredate        DATE NOT NULL,
		address_street  TEXT NOT NULL,
		address_city    TEXT NOT NULL,
		address_state   TEXT NOT NULL,
		address_zipcode TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS client_phone (
		client_id BIGINT NOT NULL REFERENCES client (client_id),
		phone     TEXT NOT NULL,
		PRIMARY KEY (client_id, phone)
	)`,

	`CREATE TABLE IF NOT EXISTS agent (
		agent_id BIGSERIAL PRIMARY KEY,
		fname    TEXT NOT NULL,
		lname    TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS property (
		property_id     BIGSERIAL PRIMARY KEY,
		address_street  TEXT NOT NULL,
		address_city    TEXT NOT NULL,
		address_state   TEXT NOT NULL,
		address_zipcode TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS contract (
		contract_id BIGSERIAL PRIMARY KEY,
		client_id   BIGINT NOT NULL REFERENCES client (client_id),
		start_date  DATE NOT NULL,
		end_date    DATE NOT NULL,
		amount      NUMERIC(12, 2) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS property_contract (
		property_id BIGINT NOT NULL REFERENCES property (property_id),
		contract_id BIGINT NOT NULL REFERENCES contract (contract_id),
		PRIMARY KEY (property_id, contract_id)
	)`,

	`CREATE TABLE IF NOT EXISTS payment (
		payment_no   BIGSERIAL PRIMARY KEY,
		contract_id  BIGINT NOT NULL REFERENCES contract (contract_id),
		payment_date DATE NOT NULL DEFAULT CURRENT_DATE,
		amount       NUMERIC(12, 2) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS commission (
		commission_id BIGSERIAL PRIMARY KEY,
		amount        NUMERIC(12, 2) NOT NULL DEFAULT 0,
		percentage    NUMERIC(5, 2) NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS earns (
		agent_id      BIGINT NOT NULL REFERENCES agent (agent_id),
		contract_id   BIGINT NOT NULL REFERENCES contract (contract_id),
		commission_id BIGINT NOT NULL REFERENCES commission (commission_id),
		PRIMARY KEY (agent_id, contract_id, commission_id)
	)`,

	`CREATE TABLE IF NOT EXISTS audit_log (
		log_id      BIGSERIAL PRIMARY KEY,
		occurred_at TIMESTAMPTZ NOT NULL,
		username    TEXT NOT NULL,
		method      TEXT NOT NULL,
		path        TEXT NOT NULL,
		status      INT NOT NULL,
		remote_addr TEXT NOT NULL
	)`,

	`CREATE OR REPLACE FUNCTION get_total_payment(p_contract_id BIGINT)
	RETURNS NUMERIC
	LANGUAGE sql
	AS $$
		SELECT SUM(amount) FROM payment WHERE contract_id = p_contract_id
	$$`,

	`CREATE OR REPLACE FUNCTION get_agent_earnings(p_agent_id BIGINT)
	RETURNS TABLE (contract_id BIGINT, client_name TEXT, commission_amount NUMERIC, percentage NUMERIC)
	LANGUAGE sql
	AS $$
		SELECT e.contract_id,
		       cl.fname || ' ' || cl.lname,
		       co.amount,
		       co.percentage
		FROM earns e
		JOIN commission co ON co.commission_id = e.commission_id
		JOIN contract c ON c.contract_id = e.contract_id
		JOIN client cl ON cl.client_id = c.client_id
		WHERE e.agent_id = p_agent_id
		ORDER BY e.contract_id DESC
	$$`,

	`CREATE OR REPLACE FUNCTION get_clients_with_high_value_contracts()
	RETURNS TABLE (client_id BIGINT, fname TEXT, lname TEXT, contract_amount NUMERIC)
	LANGUAGE sql
	AS $$
		SELECT cl.client_id, cl.fname, cl.lname, MAX(c.amount)
		FROM client cl
		JOIN contract c ON c.client_id = cl.client_id
		WHERE c.amount > (SELECT AVG(amount) FROM contract)
		GROUP BY cl.client_id, cl.fname, cl.lname
		ORDER BY MAX(c.amount) DESC
	$$`,

	`CREATE OR REPLACE PROCEDURE add_new_contract(p_client_id BIGINT, p_start DATE, p_end DATE, p_amount NUMERIC)
	LANGUAGE plpgsql
	AS $$
	BEGIN
		IF p_end <= p_start THEN
			RAISE EXCEPTION 'contract end date must follow start date';
		END IF;
		INSERT INTO contract (client_id, start_date, end_date, amount)
		VALUES (p_client_id, p_start, p_end, p_amount);
	END
	$$`,

	`CREATE OR REPLACE FUNCTION recompute_commission()
	RETURNS TRIGGER
	LANGUAGE plpgsql
	AS $$
	BEGIN
		UPDATE commission co
		SET amount = co.percentage * (
			SELECT COALESCE(SUM(p.amount), 0) FROM payment p WHERE p.contract_id = NEW.contract_id
		) / 100
		FROM earns e
		WHERE e.commission_id = co.commission_id
		  AND e.contract_id = NEW.contract_id;
		RETURN NEW;
	END
	$$`,

	`CREATE OR REPLACE TRIGGER payment_commission
	AFTER INSERT ON payment
	FOR EACH ROW
	EXECUTE FUNCTION recompute_commission()`,
}

// Apply runs every schema statement in order against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
