// Package contracts manages contract records and their payment totals.
package contracts

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/contract"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

const dateLayout = "2006-01-02"

// Service manages contract records.
type Service struct {
	store storage.ContractStore
	log   *logger.Logger
}

// New constructs a contract service.
func New(store storage.ContractStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("contracts")
	}
	return &Service{store: store, log: log}
}

// Add validates the request and stores a new contract. The date ordering
// rule lives in the store, alongside the rest of the contract constraints.
func (s *Service) Add(ctx context.Context, clientID int64, startDate, endDate string, amount decimal.Decimal) error {
	if clientID <= 0 {
		return apperrors.BadRequest("client id must be positive")
	}
	if !amount.IsPositive() {
		return apperrors.BadRequest("contract amount must be positive")
	}
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return apperrors.BadRequest("start date must be formatted YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return apperrors.BadRequest("end date must be formatted YYYY-MM-DD")
	}

	if err := s.store.AddContract(ctx, contract.Contract{
		ClientID:  clientID,
		StartDate: start,
		EndDate:   end,
		Amount:    amount,
	}); err != nil {
		return err
	}
	s.log.WithField("client_id", clientID).Info("contract added")
	return nil
}

// List returns all contracts, newest first, with the owning client's name.
func (s *Service) List(ctx context.Context) ([]contract.Summary, error) {
	return s.store.ListContracts(ctx)
}

// Delete removes a contract and its dependent records. Deleting an absent
// contract is a no-op.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.BadRequest("contract id must be positive")
	}
	if err := s.store.DeleteContractCascade(ctx, id); err != nil {
		return err
	}
	s.log.WithField("contract_id", id).Info("contract deleted")
	return nil
}

// TotalPayment returns the sum paid against a contract, zero when nothing
// has been paid.
func (s *Service) TotalPayment(ctx context.Context, contractID int64) (decimal.Decimal, error) {
	if contractID <= 0 {
		return decimal.Decimal{}, apperrors.BadRequest("contract id must be positive")
	}
	return s.store.TotalPayment(ctx, contractID)
}
