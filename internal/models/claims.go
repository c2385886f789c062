package models

import "github.com/golang-jwt/jwt/v5"

// MerchantClaims identifies the merchant behind a management session token.
type MerchantClaims struct {
	jwt.RegisteredClaims
	MerchantKey string `json:"merchant_key"`
}
