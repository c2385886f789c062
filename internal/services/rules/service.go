// Package rules evaluates merchant rules against transactions and manages
// the rules themselves.
package rules

import (
	"context"
	stderrors "errors"

	"cardguard/internal/errors"
	"cardguard/internal/logging"
	"cardguard/internal/metrics"
	"cardguard/internal/models"
	"cardguard/internal/repositories"
	"cardguard/internal/utils/cache"
	"cardguard/internal/validation"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

type Service interface {
	// ListRules returns the merchant's rules in evaluation order.
	ListRules(ctx context.Context, merchantKey string) ([]models.Rule, error)
	CreateRule(ctx context.Context, merchantKey string, rule *models.Rule) error
	UpdateRule(ctx context.Context, merchantKey string, id uint, rule *models.Rule) error
	DeleteRule(ctx context.Context, merchantKey string, id uint) error
}

// Cache is the subset of the redis cache service used for rule lists.
// Lists are stored under a per-merchant generation that every rule change
// bumps, so a load racing a change can only fill an entry nobody reads.
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	Counter(ctx context.Context, key string) (int64, error)
	Incr(ctx context.Context, key string) (int64, error)
}

type service struct {
	repo    repositories.RuleRepository
	cache   Cache
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService builds the rule service. cache may be nil, in which case every
// read goes to the store.
func NewService(repo repositories.RuleRepository, cache Cache, m *metrics.Metrics, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

func (s *service) ListRules(ctx context.Context, merchantKey string) ([]models.Rule, error) {
	generation, cached := s.generation(ctx, merchantKey)
	key := cache.RulesKey(merchantKey, generation)

	if cached {
		var list []models.Rule
		found, err := s.cache.Get(ctx, key, &list)
		switch {
		case err != nil:
			s.metrics.IncrementRuleCache("error")
			s.logger.Warn("rule cache read failed", logging.MaskedKey("merchant_key", merchantKey), zap.Error(err))
		case found:
			s.metrics.IncrementRuleCache("hit")
			return list, nil
		default:
			s.metrics.IncrementRuleCache("miss")
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		rules, err := s.repo.ListByMerchant(ctx, merchantKey)
		if err != nil {
			return nil, errors.NewStoreError("list rules", err)
		}
		if cached {
			if err := s.cache.Set(ctx, key, rules); err != nil {
				s.logger.Warn("rule cache write failed", logging.MaskedKey("merchant_key", merchantKey), zap.Error(err))
			}
		}
		return rules, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Rule), nil
}

// generation returns the merchant's current rule generation and whether the
// cache may be used for this read.
func (s *service) generation(ctx context.Context, merchantKey string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	n, err := s.cache.Counter(ctx, cache.RulesGenerationKey(merchantKey))
	if err != nil {
		s.metrics.IncrementRuleCache("error")
		s.logger.Warn("rule cache generation read failed", logging.MaskedKey("merchant_key", merchantKey), zap.Error(err))
		return 0, false
	}
	return n, true
}

func (s *service) CreateRule(ctx context.Context, merchantKey string, rule *models.Rule) error {
	if err := validate(rule); err != nil {
		return err
	}
	rule.ID = 0
	rule.MerchantAPIKey = merchantKey
	if err := s.repo.Create(ctx, rule); err != nil {
		return errors.NewStoreError("create rule", err)
	}
	s.invalidate(ctx, merchantKey)
	return nil
}

func (s *service) UpdateRule(ctx context.Context, merchantKey string, id uint, rule *models.Rule) error {
	if err := validate(rule); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, merchantKey, id)
	if err != nil {
		return ruleError("get rule", err)
	}

	rule.ID = id
	rule.MerchantAPIKey = merchantKey
	rule.CreatedAt = existing.CreatedAt
	if err := s.repo.Update(ctx, rule); err != nil {
		return ruleError("update rule", err)
	}
	s.invalidate(ctx, merchantKey)
	return nil
}

func (s *service) DeleteRule(ctx context.Context, merchantKey string, id uint) error {
	if err := s.repo.Delete(ctx, merchantKey, id); err != nil {
		return ruleError("delete rule", err)
	}
	s.invalidate(ctx, merchantKey)
	return nil
}

// invalidate moves the merchant to a new rule generation. A failure only
// delays visibility until the entry expires, so it is logged rather than
// returned.
func (s *service) invalidate(ctx context.Context, merchantKey string) {
	s.group.Forget(cache.RulesKey(merchantKey, 0))
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Incr(ctx, cache.RulesGenerationKey(merchantKey)); err != nil {
		s.logger.Warn("rule cache invalidation failed", logging.MaskedKey("merchant_key", merchantKey), zap.Error(err))
	}
}

func validate(rule *models.Rule) error {
	v := validation.New()
	v.Rule(rule)
	return v.Err()
}

func ruleError(op string, err error) error {
	if stderrors.Is(err, repositories.ErrNotFound) {
		return errors.ErrRuleNotFound
	}
	return errors.NewStoreError(op, err)
}
