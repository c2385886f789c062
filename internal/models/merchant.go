package models

import (
	"time"
)

// Merchant is a registered merchant, identified by its API key.
type Merchant struct {
	APIKey    string    `gorm:"column:api_key;primaryKey" json:"api_key"`
	Rules     []Rule    `gorm:"foreignKey:MerchantAPIKey;references:APIKey;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
