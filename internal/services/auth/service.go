// Package auth exchanges merchant API keys for session tokens and
// authenticates those tokens.
package auth

import (
	"context"
	"crypto/subtle"
	stderrors "errors"
	"time"

	"cardguard/internal/config"
	"cardguard/internal/errors"
	"cardguard/internal/logging"
	"cardguard/internal/models"
	"cardguard/internal/repositories"
	"cardguard/internal/utils"

	"go.uber.org/zap"
)

type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Service interface {
	IssueToken(ctx context.Context, apiKey string) (*Token, error)
	// Authenticate validates the token and confirms its merchant still exists.
	Authenticate(ctx context.Context, token string) (*models.MerchantClaims, error)
}

type service struct {
	merchants repositories.MerchantRepository
	config    config.JWTConfig
	logger    *zap.Logger
}

func NewService(merchants repositories.MerchantRepository, cfg config.JWTConfig, logger *zap.Logger) Service {
	return &service{
		merchants: merchants,
		config:    cfg,
		logger:    logger,
	}
}

func (s *service) IssueToken(ctx context.Context, apiKey string) (*Token, error) {
	if apiKey == "" {
		return nil, errors.NewValidationError("invalid request: api_key", map[string]string{"api_key": "is required"})
	}
	merchant, err := s.lookup(ctx, apiKey)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := utils.GenerateMerchantToken(s.config, merchant.APIKey, time.Now())
	if err != nil {
		s.logger.Error("error generating token", zap.Error(err))
		return nil, errors.NewStoreError("issue token", err)
	}
	s.logger.Info("merchant token issued", logging.MaskedKey("merchant_key", apiKey))
	return &Token{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *service) Authenticate(ctx context.Context, token string) (*models.MerchantClaims, error) {
	claims, err := utils.ParseMerchantToken(s.config, token)
	if err != nil {
		s.logger.Debug("token rejected", zap.Error(err))
		return nil, errors.ErrInvalidCredentials
	}
	if _, err := s.lookup(ctx, claims.MerchantKey); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *service) lookup(ctx context.Context, apiKey string) (*models.Merchant, error) {
	merchant, err := s.merchants.GetByAPIKey(ctx, apiKey)
	if stderrors.Is(err, repositories.ErrNotFound) {
		s.logger.Info("unknown merchant key", logging.MaskedKey("merchant_key", apiKey))
		return nil, errors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, errors.NewStoreError("get merchant", err)
	}
	// The store lookup may be case-insensitive on some collations.
	if subtle.ConstantTimeCompare([]byte(merchant.APIKey), []byte(apiKey)) != 1 {
		return nil, errors.ErrInvalidCredentials
	}
	return merchant, nil
}
