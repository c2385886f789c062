// Package challenge issues and verifies one-time codes for step-up
// authentication. A cardholder has at most one active code; issuing a new one
// replaces it and a successful verification clears it.
package challenge

import (
	"context"
	stderrors "errors"
	"time"

	"cardguard/internal/errors"
	"cardguard/internal/logging"
	"cardguard/internal/metrics"
	"cardguard/internal/models"
	"cardguard/internal/repositories"
	"cardguard/internal/repositories/lock"
	"cardguard/internal/services/notification"
	"cardguard/internal/utils"
	"cardguard/internal/utils/cache"
	"cardguard/internal/validation"

	"go.uber.org/zap"
)

const defaultLockTimeout = 5 * time.Second

type RequestCodeInput struct {
	CardholderHash string `json:"cchash" validate:"required,max=128"`
	Factor         string `json:"factor" validate:"omitempty,factor"`
}

type VerifyCodeInput struct {
	CardholderHash string `json:"cchash" validate:"required,max=128"`
	Code           string `json:"code" validate:"required"`
}

// Issued describes a stored code. Code is only set when issued codes are
// exposed for debugging.
type Issued struct {
	Factor string
	Code   string
}

type Service interface {
	RequestCode(ctx context.Context, in RequestCodeInput) (*Issued, error)
	VerifyCode(ctx context.Context, in VerifyCodeInput) error
}

type Config struct {
	ExposeIssuedCodes bool
	LockTimeout       time.Duration
	// Generate overrides the code source in tests.
	Generate func() (string, error)
}

type service struct {
	cardholders repositories.CardholderRepository
	locker      lock.Locker
	notifier    notification.Sender
	config      Config
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewService(
	cardholders repositories.CardholderRepository,
	locker lock.Locker,
	notifier notification.Sender,
	config Config,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	if config.LockTimeout <= 0 {
		config.LockTimeout = defaultLockTimeout
	}
	if config.Generate == nil {
		config.Generate = utils.GenerateAuthCode
	}
	return &service{
		cardholders: cardholders,
		locker:      locker,
		notifier:    notifier,
		config:      config,
		metrics:     m,
		logger:      logger,
	}
}

func (s *service) RequestCode(ctx context.Context, in RequestCodeInput) (*Issued, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}

	unlock, err := s.lock(ctx, in.CardholderHash)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cardholder, err := s.cardholder(ctx, in.CardholderHash)
	if err != nil {
		s.metrics.IncrementChallenge("request", "rejected")
		return nil, err
	}

	factor := in.Factor
	if factor == "" {
		if enabled := cardholder.EnabledFactors(); len(enabled) > 0 {
			factor = enabled[0]
		}
	}
	if factor == "" || !cardholder.HasFactor(factor) {
		s.metrics.IncrementChallenge("request", "rejected")
		return nil, errors.ErrFactorNotEnrolled
	}

	code, err := s.config.Generate()
	if err != nil {
		return nil, errors.NewStoreError("generate code", err)
	}
	if err := s.cardholders.SetAuthCode(ctx, cardholder.CCHash, code); err != nil {
		if stderrors.Is(err, repositories.ErrNotFound) {
			return nil, errors.ErrCardholderNotFound
		}
		return nil, s.storeError("set auth code", err)
	}

	// A failed delivery leaves the new code stored; the next request
	// replaces it.
	if err := s.notifier.Send(ctx, cardholder, factor, code); err != nil {
		s.metrics.IncrementChallenge("request", "delivery_failed")
		return nil, s.storeError("deliver code", err)
	}

	s.metrics.IncrementChallenge("request", "issued")
	s.logger.Info("challenge code issued", logging.MaskedKey("cchash", cardholder.CCHash), zap.String("factor", factor))

	issued := &Issued{Factor: factor}
	if s.config.ExposeIssuedCodes {
		issued.Code = code
	}
	return issued, nil
}

func (s *service) VerifyCode(ctx context.Context, in VerifyCodeInput) error {
	if err := validation.Struct(&in); err != nil {
		return err
	}

	unlock, err := s.lock(ctx, in.CardholderHash)
	if err != nil {
		return err
	}
	defer unlock()

	if _, err := s.cardholder(ctx, in.CardholderHash); err != nil {
		s.metrics.IncrementChallenge("verify", "rejected")
		return err
	}

	if !utils.IsAuthCode(in.Code) {
		s.metrics.IncrementChallenge("verify", "invalid")
		return errors.ErrInvalidCode
	}

	cleared, err := s.cardholders.ClearAuthCodeIfMatch(ctx, in.CardholderHash, in.Code)
	if err != nil {
		return s.storeError("clear auth code", err)
	}
	if !cleared {
		s.metrics.IncrementChallenge("verify", "invalid")
		return errors.ErrInvalidCode
	}

	s.metrics.IncrementChallenge("verify", "verified")
	s.logger.Info("challenge code verified", logging.MaskedKey("cchash", in.CardholderHash))
	return nil
}

func (s *service) lock(ctx context.Context, cchash string) (lock.Unlock, error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.config.LockTimeout)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, cache.ChallengeLockKey(cchash))
	if err != nil {
		return nil, s.storeError("acquire challenge lock", err)
	}
	return unlock, nil
}

func (s *service) cardholder(ctx context.Context, cchash string) (*models.Cardholder, error) {
	cardholder, err := s.cardholders.GetByHash(ctx, cchash)
	if stderrors.Is(err, repositories.ErrNotFound) {
		return nil, errors.ErrCardholderNotFound
	}
	if err != nil {
		return nil, s.storeError("get cardholder", err)
	}
	return cardholder, nil
}

func (s *service) storeError(op string, err error) error {
	s.logger.Error("challenge store failure", zap.String("op", op), zap.Error(err))
	return errors.NewStoreError(op, err)
}
