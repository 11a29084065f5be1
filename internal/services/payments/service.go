// Package payments records contract payments and reports the commission
// change each payment causes.
package payments

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/contract"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

// Service records contract payments.
type Service struct {
	store storage.PaymentStore
	log   *logger.Logger
}

// New constructs a payment service.
func New(store storage.PaymentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("payments")
	}
	return &Service{store: store, log: log}
}

// Add records a payment against a contract and returns the commission
// amounts before and after the linked commission was recomputed.
func (s *Service) Add(ctx context.Context, contractID int64, amount decimal.Decimal) (contract.CommissionReport, error) {
	if contractID <= 0 {
		return contract.CommissionReport{}, apperrors.BadRequest("contract id must be positive")
	}
	if !amount.IsPositive() {
		return contract.CommissionReport{}, apperrors.BadRequest("payment amount must be positive")
	}

	rep, err := s.store.AddPayment(ctx, contractID, amount)
	if err != nil {
		return contract.CommissionReport{}, err
	}
	s.log.WithField("contract_id", contractID).
		WithField("commission_id", rep.CommissionID).
		Info("payment recorded")
	return rep, nil
}

// List returns the payments made against a contract, most recent first.
func (s *Service) List(ctx context.Context, contractID int64) ([]contract.Payment, error) {
	if contractID <= 0 {
		return nil, apperrors.BadRequest("contract id must be positive")
	}
	return s.store.ListPayments(ctx, contractID)
}
