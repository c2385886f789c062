package models

import (
	"time"
)

// TransactionEvent is the append-only audit record written once per
// processed transaction. Merchant and cardholder references are nil when the
// merchant key was invalid; the cardholder hash is kept for signup attempts.
type TransactionEvent struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	Reference      string    `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	CardholderHash *string   `gorm:"column:cchash;index" json:"cchash,omitempty"`
	Amount         float64   `gorm:"not null" json:"amount"`
	Location       string    `json:"location"`
	MerchantAPIKey *string   `gorm:"column:merchant_api_key;index" json:"-"`
	Merchant       *Merchant `gorm:"foreignKey:MerchantAPIKey;references:APIKey" json:"-"`
	Status         Status    `gorm:"not null" json:"status"`
	Timestamp      time.Time `gorm:"index;not null" json:"timestamp"`
}
