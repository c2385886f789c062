package repositories

import (
	"context"

	"cardguard/internal/models"

	"gorm.io/gorm"
)

type CardholderRepository interface {
	GetByHash(ctx context.Context, cchash string) (*models.Cardholder, error)
	Create(ctx context.Context, cardholder *models.Cardholder) error
	// SetAuthCode overwrites any stored code. Returns ErrNotFound for an
	// unknown hash.
	SetAuthCode(ctx context.Context, cchash, code string) error
	// ClearAuthCodeIfMatch clears the stored code only when it equals code,
	// reporting whether a row was cleared.
	ClearAuthCodeIfMatch(ctx context.Context, cchash, code string) (bool, error)
}

type cardholderRepository struct {
	db *gorm.DB
}

func NewCardholderRepository(db *gorm.DB) CardholderRepository {
	return &cardholderRepository{db: db}
}

func (r *cardholderRepository) GetByHash(ctx context.Context, cchash string) (*models.Cardholder, error) {
	var cardholder models.Cardholder
	if err := r.db.WithContext(ctx).Where("cchash = ?", cchash).First(&cardholder).Error; err != nil {
		return nil, translate(err)
	}
	return &cardholder, nil
}

func (r *cardholderRepository) Create(ctx context.Context, cardholder *models.Cardholder) error {
	return r.db.WithContext(ctx).Create(cardholder).Error
}

func (r *cardholderRepository) SetAuthCode(ctx context.Context, cchash, code string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Cardholder{}).
		Where("cchash = ?", cchash).
		Update("auth_code", code)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *cardholderRepository) ClearAuthCodeIfMatch(ctx context.Context, cchash, code string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Cardholder{}).
		Where("cchash = ? AND auth_code = ?", cchash, code).
		Update("auth_code", gorm.Expr("NULL"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
