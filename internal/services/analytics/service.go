// Package analytics derives reporting views from the transaction event log.
// It only reads events and never influences authorization.
package analytics

import (
	"context"
	"time"

	"cardguard/internal/errors"
	"cardguard/internal/logging"
	"cardguard/internal/models"
	"cardguard/internal/repositories"

	"go.uber.org/zap"
)

type Service interface {
	GetStats(ctx context.Context, merchantKey, window string) (*models.MerchantStats, error)
}

type service struct {
	events   repositories.EventRepository
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewService builds the aggregator. loc sets the day boundaries of the
// timeline.
func NewService(events repositories.EventRepository, loc *time.Location, logger *zap.Logger) Service {
	return &service{
		events:   events,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}

func (s *service) GetStats(ctx context.Context, merchantKey, window string) (*models.MerchantStats, error) {
	w, err := ParseWindow(window)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	events, err := s.events.ListByMerchant(ctx, merchantKey, w.Since(now))
	if err != nil {
		s.logger.Error("failed to load events", logging.MaskedKey("merchant_key", merchantKey), zap.Error(err))
		return nil, errors.NewStoreError("list events", err)
	}

	stats := Aggregate(events, w, now, s.location)
	return &stats, nil
}
