package repositories

import (
	"context"
	"time"

	"cardguard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EventRepository is the append-only TransactionEvent log.
type EventRepository interface {
	Create(ctx context.Context, event *models.TransactionEvent) error
	// ListByMerchant returns the merchant's events at or after since (all
	// events when since is zero), ordered by timestamp then id.
	ListByMerchant(ctx context.Context, merchantKey string, since time.Time) ([]models.TransactionEvent, error)
}

type eventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{db: db}
}

// Create inserts the event in a single statement; a failed insert leaves no row.
func (r *eventRepository) Create(ctx context.Context, event *models.TransactionEvent) error {
	return r.db.WithContext(ctx).Omit("Merchant").Create(event).Error
}

func (r *eventRepository) ListByMerchant(ctx context.Context, merchantKey string, since time.Time) ([]models.TransactionEvent, error) {
	query := r.db.WithContext(ctx).Where("merchant_api_key = ?", merchantKey)
	if !since.IsZero() {
		query = query.Where(clause.Gte{Column: clause.Column{Name: "timestamp"}, Value: since})
	}

	var events []models.TransactionEvent
	err := query.
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}}).
		Order("id ASC").
		Find(&events).Error
	return events, err
}
