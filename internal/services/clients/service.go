// Package clients manages client records.
package clients

import (
	"context"
	"strings"

	"github.com/realtydesk/realtydesk/internal/domain/client"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

// Service manages client records.
type Service struct {
	store storage.ClientStore
	log   *logger.Logger
}

// New constructs a client service.
func New(store storage.ClientStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("clients")
	}
	return &Service{store: store, log: log}
}

// Add validates and stores a new client.
func (s *Service) Add(ctx context.Context, c client.Client) (client.Client, error) {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	if c.FirstName == "" || c.LastName == "" {
		return client.Client{}, apperrors.BadRequest("first and last name are required")
	}
	if c.HireDate.IsZero() {
		return client.Client{}, apperrors.BadRequest("hire date is required")
	}
	if c.AddressStreet == "" || c.City == "" || c.State == "" || c.ZIPCode == "" {
		return client.Client{}, apperrors.BadRequest("full address is required")
	}

	created, err := s.store.CreateClient(ctx, c)
	if err != nil {
		return client.Client{}, err
	}
	s.log.WithField("client_id", created.ID).Info("client added")
	return created, nil
}

// List returns all clients ordered by name.
func (s *Service) List(ctx context.Context) ([]client.Client, error) {
	return s.store.ListClients(ctx)
}

// Delete removes a client together with its phones, contracts, and the
// contracts' dependent records. Deleting an absent client is a no-op.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return apperrors.BadRequest("client id must be positive")
	}
	if err := s.store.DeleteClientCascade(ctx, id); err != nil {
		return err
	}
	s.log.WithField("client_id", id).Info("client deleted")
	return nil
}

// HighValue returns clients holding a contract above the average contract
// amount.
func (s *Service) HighValue(ctx context.Context) ([]client.HighValue, error) {
	return s.store.ListHighValueClients(ctx)
}
