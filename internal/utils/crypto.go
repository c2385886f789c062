package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"

	"golang.org/x/crypto/sha3"
)

const codeDigits = 6

var (
	codeMin   = big.NewInt(100000)
	codeRange = big.NewInt(900000)
)

// GenerateAuthCode returns a uniformly random 6-digit decimal code without a
// leading zero.
func GenerateAuthCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeRange)
	if err != nil {
		return "", fmt.Errorf("failed to generate auth code: %w", err)
	}
	return n.Add(n, codeMin).String(), nil
}

// IsAuthCode reports whether s has the shape of an issued code.
func IsAuthCode(s string) bool {
	if len(s) != codeDigits {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// HashCard derives the cardholder key from the card details. Spaces and
// dashes in the PAN are ignored.
func HashCard(pan, expiry, cvv string) string {
	pan = normalizePAN(pan)
	sum := sha3.Sum256([]byte(pan + "|" + expiry + "|" + cvv))
	return hex.EncodeToString(sum[:])
}
