package repositories

import (
	"context"
	"time"

	"cardguard/internal/models"

	"gorm.io/gorm"
)

type RuleRepository interface {
	// ListByMerchant returns rules by priority descending, then creation order.
	ListByMerchant(ctx context.Context, merchantKey string) ([]models.Rule, error)
	GetByID(ctx context.Context, merchantKey string, id uint) (*models.Rule, error)
	Create(ctx context.Context, rule *models.Rule) error
	Update(ctx context.Context, rule *models.Rule) error
	Delete(ctx context.Context, merchantKey string, id uint) error
}

type ruleRepository struct {
	db *gorm.DB
}

func NewRuleRepository(db *gorm.DB) RuleRepository {
	return &ruleRepository{db: db}
}

func (r *ruleRepository) ListByMerchant(ctx context.Context, merchantKey string) ([]models.Rule, error) {
	var rules []models.Rule
	err := r.db.WithContext(ctx).
		Where("merchant_api_key = ?", merchantKey).
		Order("priority DESC").
		Order("id ASC").
		Find(&rules).Error
	return rules, err
}

func (r *ruleRepository) GetByID(ctx context.Context, merchantKey string, id uint) (*models.Rule, error) {
	var rule models.Rule
	err := r.db.WithContext(ctx).
		Where("id = ? AND merchant_api_key = ?", id, merchantKey).
		First(&rule).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rule, nil
}

func (r *ruleRepository) Create(ctx context.Context, rule *models.Rule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

// Update replaces every mutable column, including clearing optional fields.
func (r *ruleRepository) Update(ctx context.Context, rule *models.Rule) error {
	rule.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.Rule{}).
		Where("id = ? AND merchant_api_key = ?", rule.ID, rule.MerchantAPIKey).
		Select("priority", "amount", "location", "time_start", "time_end", "condition", "success_status", "updated_at").
		Updates(rule)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ruleRepository) Delete(ctx context.Context, merchantKey string, id uint) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND merchant_api_key = ?", id, merchantKey).
		Delete(&models.Rule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
