package utils

import (
	"errors"
	"time"

	"cardguard/internal/config"
	"cardguard/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateMerchantToken signs a session token for the merchant and returns it
// with its expiry.
func GenerateMerchantToken(cfg config.JWTConfig, merchantKey string, now time.Time) (string, time.Time, error) {
	if cfg.Secret == "" {
		return "", time.Time{}, errors.New("JWT secret not configured")
	}

	expiresAt := now.Add(cfg.TTL)
	claims := models.MerchantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    cfg.Issuer,
		},
		MerchantKey: merchantKey,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// ParseMerchantToken validates signature, expiry and issuer.
func ParseMerchantToken(cfg config.JWTConfig, tokenStr string) (*models.MerchantClaims, error) {
	if cfg.Secret == "" {
		return nil, errors.New("JWT secret not configured")
	}

	token, err := jwt.ParseWithClaims(tokenStr, &models.MerchantClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*models.MerchantClaims)
	if !ok || !token.Valid || claims.MerchantKey == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
