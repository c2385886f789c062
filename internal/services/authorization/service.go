// Package authorization decides each payment transaction and records exactly
// one event for it.
package authorization

import (
	"context"
	stderrors "errors"
	"time"

	"cardguard/internal/errors"
	"cardguard/internal/logging"
	"cardguard/internal/metrics"
	"cardguard/internal/models"
	"cardguard/internal/repositories"
	"cardguard/internal/services/events"
	"cardguard/internal/services/rules"
	"cardguard/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request is one transaction submitted by a merchant.
type Request struct {
	CardholderHash string  `json:"cchash" validate:"required,max=128"`
	Amount         float64 `json:"amount" validate:"gt=0"`
	Location       string  `json:"location" validate:"required,max=255"`
	MerchantKey    string  `json:"merchant_api_key" validate:"required,max=128"`
	Email          string  `json:"email" validate:"max=255"`
}

type Service interface {
	// ProcessTransaction returns a Decision once its event is durably
	// recorded. Any returned error means no event was written.
	ProcessTransaction(ctx context.Context, req Request) (Decision, error)
}

type Config struct {
	// Location is the zone in which rule time windows are read.
	Location *time.Location
	// Now overrides the clock in tests.
	Now func() time.Time
}

type service struct {
	merchants   repositories.MerchantRepository
	cardholders repositories.CardholderRepository
	events      repositories.EventRepository
	rules       rules.Service
	publisher   events.Publisher
	config      Config
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewService(
	merchants repositories.MerchantRepository,
	cardholders repositories.CardholderRepository,
	eventRepo repositories.EventRepository,
	ruleService rules.Service,
	publisher events.Publisher,
	config Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &service{
		merchants:   merchants,
		cardholders: cardholders,
		events:      eventRepo,
		rules:       ruleService,
		publisher:   publisher,
		config:      config,
		metrics:     m,
		logger:      logger,
	}
}

func (s *service) ProcessTransaction(ctx context.Context, req Request) (Decision, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	start := time.Now()
	defer func() { s.metrics.ObserveDecisionLatency(time.Since(start)) }()

	now := s.config.Now().UTC()
	event := &models.TransactionEvent{
		Reference: uuid.NewString(),
		Amount:    req.Amount,
		Location:  req.Location,
		Timestamp: now,
	}

	merchant, err := s.merchants.GetByAPIKey(ctx, req.MerchantKey)
	if stderrors.Is(err, repositories.ErrNotFound) {
		event.Status = models.StatusDenied
		if err := s.record(ctx, event); err != nil {
			return nil, err
		}
		return Denied{Reference: event.Reference, Reason: errors.ErrInvalidMerchant.Message}, nil
	}
	if err != nil {
		return nil, s.storeError("get merchant", err)
	}
	event.MerchantAPIKey = &merchant.APIKey
	event.CardholderHash = &req.CardholderHash

	cardholder, err := s.cardholders.GetByHash(ctx, req.CardholderHash)
	if stderrors.Is(err, repositories.ErrNotFound) {
		event.Status = models.StatusSignupRequired
		if err := s.record(ctx, event); err != nil {
			return nil, err
		}
		return SignupRequired{Reference: event.Reference, Email: req.Email}, nil
	}
	if err != nil {
		return nil, s.storeError("get cardholder", err)
	}

	ruleSet, err := s.rules.ListRules(ctx, merchant.APIKey)
	if err != nil {
		s.logger.Error("failed to load rules", zap.Error(err))
		return nil, err
	}
	event.Status = rules.Evaluate(ruleSet, rules.Transaction{
		Amount:       req.Amount,
		Location:     req.Location,
		Timestamp:    now.In(s.config.Location),
		HomeLocation: cardholder.HomeLocation,
	})

	if err := s.record(ctx, event); err != nil {
		return nil, err
	}

	switch event.Status {
	case models.StatusApproved:
		return Approved{Reference: event.Reference}, nil
	case models.StatusDenied:
		return Denied{Reference: event.Reference}, nil
	default:
		return ChallengeRequired{Reference: event.Reference, Factors: cardholder.EnabledFactors()}, nil
	}
}

// record is the single durable write of a call. The event is published only
// after it is stored.
func (s *service) record(ctx context.Context, event *models.TransactionEvent) error {
	if err := s.events.Create(ctx, event); err != nil {
		return s.storeError("create event", err)
	}
	s.metrics.IncrementDecision(event.Status.String())
	s.logger.Info("transaction decided",
		zap.String("transaction_id", event.Reference),
		logging.MaskedKey("merchant_key", deref(event.MerchantAPIKey)),
		logging.MaskedKey("cchash", deref(event.CardholderHash)),
		zap.Stringer("status", event.Status),
	)
	s.publisher.Publish(ctx, event)
	return nil
}

func (s *service) storeError(op string, err error) error {
	s.logger.Error("store failure", zap.String("op", op), zap.Error(err))
	return errors.NewStoreError(op, err)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
