package authorization

import (
	"context"
	"sync"
	"time"

	"cardguard/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockMerchantRepository struct {
	mock.Mock
}

func (m *MockMerchantRepository) GetByAPIKey(ctx context.Context, apiKey string) (*models.Merchant, error) {
	args := m.Called(ctx, apiKey)
	merchant, _ := args.Get(0).(*models.Merchant)
	return merchant, args.Error(1)
}

func (m *MockMerchantRepository) Create(ctx context.Context, merchant *models.Merchant) error {
	return m.Called(ctx, merchant).Error(0)
}

type MockCardholderRepository struct {
	mock.Mock
}

func (m *MockCardholderRepository) GetByHash(ctx context.Context, cchash string) (*models.Cardholder, error) {
	args := m.Called(ctx, cchash)
	cardholder, _ := args.Get(0).(*models.Cardholder)
	return cardholder, args.Error(1)
}

func (m *MockCardholderRepository) Create(ctx context.Context, cardholder *models.Cardholder) error {
	return m.Called(ctx, cardholder).Error(0)
}

func (m *MockCardholderRepository) SetAuthCode(ctx context.Context, cchash, code string) error {
	return m.Called(ctx, cchash, code).Error(0)
}

func (m *MockCardholderRepository) ClearAuthCodeIfMatch(ctx context.Context, cchash, code string) (bool, error) {
	args := m.Called(ctx, cchash, code)
	return args.Bool(0), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) Create(ctx context.Context, event *models.TransactionEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventRepository) ListByMerchant(ctx context.Context, merchantKey string, since time.Time) ([]models.TransactionEvent, error) {
	args := m.Called(ctx, merchantKey, since)
	events, _ := args.Get(0).([]models.TransactionEvent)
	return events, args.Error(1)
}

type MockRuleService struct {
	mock.Mock
}

func (m *MockRuleService) ListRules(ctx context.Context, merchantKey string) ([]models.Rule, error) {
	args := m.Called(ctx, merchantKey)
	rules, _ := args.Get(0).([]models.Rule)
	return rules, args.Error(1)
}

func (m *MockRuleService) CreateRule(ctx context.Context, merchantKey string, rule *models.Rule) error {
	return m.Called(ctx, merchantKey, rule).Error(0)
}

func (m *MockRuleService) UpdateRule(ctx context.Context, merchantKey string, id uint, rule *models.Rule) error {
	return m.Called(ctx, merchantKey, id, rule).Error(0)
}

func (m *MockRuleService) DeleteRule(ctx context.Context, merchantKey string, id uint) error {
	return m.Called(ctx, merchantKey, id).Error(0)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []*models.TransactionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event *models.TransactionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Close() {}
