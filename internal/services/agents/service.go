// Package agents exposes agent listings and per-agent earnings.
package agents

import (
	"context"

	"github.com/realtydesk/realtydesk/internal/domain/agent"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

// Service exposes agent listings and earnings.
type Service struct {
	store storage.AgentStore
	log   *logger.Logger
}

// New constructs an agent service.
func New(store storage.AgentStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("agents")
	}
	return &Service{store: store, log: log}
}

// List returns all agents ordered by name.
func (s *Service) List(ctx context.Context) ([]agent.Agent, error) {
	return s.store.ListAgents(ctx)
}

// Earnings returns the commission rows for one agent. An unknown agent
// yields an empty list, not an error.
func (s *Service) Earnings(ctx context.Context, agentID int64) ([]agent.Earning, error) {
	if agentID <= 0 {
		return nil, apperrors.BadRequest("agent id must be positive")
	}
	return s.store.ListAgentEarnings(ctx, agentID)
}
