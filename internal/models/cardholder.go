package models

import "time"

// Factor identifiers, in the order they are reported to clients.
const (
	FactorEmail         = "email"
	FactorPhone         = "phone"
	FactorOTP           = "otp"
	FactorBiometric     = "biometric"
	FactorHardwareToken = "hardwareToken"
)

// KnownFactors lists every factor identifier in reporting order.
var KnownFactors = []string{FactorEmail, FactorPhone, FactorOTP, FactorBiometric, FactorHardwareToken}

// Cardholder is keyed by a one-way hash of the payment card details. A factor
// is enabled when its column is non-nil; the stored value is never inspected.
type Cardholder struct {
	CCHash        string    `gorm:"column:cchash;primaryKey" json:"cchash"`
	Email         *string   `json:"email,omitempty"`
	Phone         *string   `json:"phone,omitempty"`
	OTP           *string   `gorm:"column:otp" json:"-"`
	Biometric     *string   `json:"-"`
	HardwareToken *string   `gorm:"column:hardware_token" json:"-"`
	HomeLocation  *string   `gorm:"column:home_location" json:"home_location,omitempty"`
	AuthCode      *string   `gorm:"column:auth_code" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// EnabledFactors returns the enrolled factors. An empty slice is legal.
func (c *Cardholder) EnabledFactors() []string {
	factors := make([]string, 0, len(KnownFactors))
	for _, f := range KnownFactors {
		if c.HasFactor(f) {
			factors = append(factors, f)
		}
	}
	return factors
}

// HasFactor reports whether the given factor is enrolled.
func (c *Cardholder) HasFactor(factor string) bool {
	switch factor {
	case FactorEmail:
		return c.Email != nil
	case FactorPhone:
		return c.Phone != nil
	case FactorOTP:
		return c.OTP != nil
	case FactorBiometric:
		return c.Biometric != nil
	case FactorHardwareToken:
		return c.HardwareToken != nil
	}
	return false
}

// IsKnownFactor reports whether factor names a supported factor.
func IsKnownFactor(factor string) bool {
	for _, f := range KnownFactors {
		if f == factor {
			return true
		}
	}
	return false
}
