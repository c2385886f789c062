package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"cardguard/internal/models"

	"gorm.io/gorm"
)

type MerchantRepository interface {
	GetByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error)
	Create(ctx context.Context, merchant *models.Merchant) error
}

type merchantRepository struct {
	db *gorm.DB
}

func NewMerchantRepository(db *gorm.DB) MerchantRepository {
	return &merchantRepository{db: db}
}

func (r *merchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error) {
	var merchant models.Merchant
	if err := r.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&merchant).Error; err != nil {
		return nil, translate(err)
	}
	return &merchant, nil
}

func (r *merchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return r.db.WithContext(ctx).Create(merchant).Error
}

// GenerateMerchantAPIKey returns a random 64-character hex API key.
func GenerateMerchantAPIKey() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
