// Package reports aggregates dashboard figures across the schema.
package reports

import (
	"context"

	"github.com/realtydesk/realtydesk/internal/domain/report"
	"github.com/realtydesk/realtydesk/internal/storage"
	"github.com/realtydesk/realtydesk/pkg/logger"
)

// Service aggregates dashboard figures.
type Service struct {
	store storage.ReportStore
	log   *logger.Logger
}

// New constructs a report service.
func New(store storage.ReportStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("reports")
	}
	return &Service{store: store, log: log}
}

// Stats returns entity counts and the grand payment total.
func (s *Service) Stats(ctx context.Context) (report.Stats, error) {
	return s.store.Stats(ctx)
}
