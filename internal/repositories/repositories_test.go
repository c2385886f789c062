package repositories

import (
	"context"
	"sync"
	"testing"
	"time"

	"cardguard/internal/config"
	"cardguard/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type RepositorySuite struct {
	suite.Suite
	db          *gorm.DB
	merchants   MerchantRepository
	cardholders CardholderRepository
	rules       RuleRepository
	events      EventRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	db, err := Open(config.DBConfig{
		Driver:       "sqlite",
		SQLitePath:   "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		MaxIdleConns: 1,
		MaxOpenConns: 1,
	})
	s.Require().NoError(err)
	s.db = db
	s.merchants = NewMerchantRepository(db)
	s.cardholders = NewCardholderRepository(db)
	s.rules = NewRuleRepository(db)
	s.events = NewEventRepository(db)

	s.Require().NoError(s.merchants.Create(context.Background(), &models.Merchant{APIKey: "m1"}))
	s.Require().NoError(s.merchants.Create(context.Background(), &models.Merchant{APIKey: "m2"}))
}

func (s *RepositorySuite) TearDownTest() {
	s.NoError(Close(s.db))
}

func (s *RepositorySuite) TestMerchantLookup() {
	ctx := context.Background()

	m, err := s.merchants.GetByAPIKey(ctx, "m1")
	s.Require().NoError(err)
	s.Equal("m1", m.APIKey)

	_, err = s.merchants.GetByAPIKey(ctx, "missing")
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestGenerateMerchantAPIKey() {
	a, err := GenerateMerchantAPIKey()
	s.Require().NoError(err)
	b, err := GenerateMerchantAPIKey()
	s.Require().NoError(err)

	s.Len(a, 64)
	s.NotEqual(a, b)
}

func (s *RepositorySuite) TestRulesOrderedByPriorityThenID() {
	ctx := context.Background()
	amount := 100.0

	low := &models.Rule{MerchantAPIKey: "m1", Priority: 1, Amount: &amount, Condition: models.ConditionGreater, SuccessStatus: models.StatusDenied}
	highA := &models.Rule{MerchantAPIKey: "m1", Priority: 5, Amount: &amount, Condition: models.ConditionLessThan, SuccessStatus: models.StatusApproved}
	highB := &models.Rule{MerchantAPIKey: "m1", Priority: 5, Amount: &amount, Condition: models.ConditionEqual, SuccessStatus: models.StatusDenied}
	other := &models.Rule{MerchantAPIKey: "m2", Priority: 9, Amount: &amount, Condition: models.ConditionEqual, SuccessStatus: models.StatusDenied}
	for _, r := range []*models.Rule{low, highA, highB, other} {
		s.Require().NoError(s.rules.Create(ctx, r))
	}

	rules, err := s.rules.ListByMerchant(ctx, "m1")
	s.Require().NoError(err)
	s.Require().Len(rules, 3)
	s.Equal(highA.ID, rules[0].ID)
	s.Equal(highB.ID, rules[1].ID)
	s.Equal(low.ID, rules[2].ID)
}

func (s *RepositorySuite) TestRuleUpdateAndDeleteScopedToMerchant() {
	ctx := context.Background()
	amount := 50.0
	location := "Paris"

	rule := &models.Rule{MerchantAPIKey: "m1", Priority: 1, Amount: &amount, Location: &location, Condition: models.ConditionIs, SuccessStatus: models.StatusApproved}
	s.Require().NoError(s.rules.Create(ctx, rule))

	foreign := *rule
	foreign.MerchantAPIKey = "m2"
	s.ErrorIs(s.rules.Update(ctx, &foreign), ErrNotFound)
	s.ErrorIs(s.rules.Delete(ctx, "m2", rule.ID), ErrNotFound)

	rule.Location = nil
	rule.Priority = 7
	s.Require().NoError(s.rules.Update(ctx, rule))

	got, err := s.rules.GetByID(ctx, "m1", rule.ID)
	s.Require().NoError(err)
	s.Equal(7, got.Priority)
	s.Nil(got.Location)

	s.Require().NoError(s.rules.Delete(ctx, "m1", rule.ID))
	_, err = s.rules.GetByID(ctx, "m1", rule.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *RepositorySuite) TestAuthCodeLifecycle() {
	ctx := context.Background()
	email := "a@example.com"
	s.Require().NoError(s.cardholders.Create(ctx, &models.Cardholder{CCHash: "h1", Email: &email}))

	s.ErrorIs(s.cardholders.SetAuthCode(ctx, "missing", "123456"), ErrNotFound)

	s.Require().NoError(s.cardholders.SetAuthCode(ctx, "h1", "123456"))
	s.Require().NoError(s.cardholders.SetAuthCode(ctx, "h1", "654321"))

	cleared, err := s.cardholders.ClearAuthCodeIfMatch(ctx, "h1", "123456")
	s.Require().NoError(err)
	s.False(cleared, "superseded code must not verify")

	cleared, err = s.cardholders.ClearAuthCodeIfMatch(ctx, "h1", "654321")
	s.Require().NoError(err)
	s.True(cleared)

	cleared, err = s.cardholders.ClearAuthCodeIfMatch(ctx, "h1", "654321")
	s.Require().NoError(err)
	s.False(cleared, "code is single use")

	ch, err := s.cardholders.GetByHash(ctx, "h1")
	s.Require().NoError(err)
	s.Nil(ch.AuthCode)
}

func (s *RepositorySuite) TestConcurrentClearSucceedsOnce() {
	ctx := context.Background()
	s.Require().NoError(s.cardholders.Create(ctx, &models.Cardholder{CCHash: "h2"}))
	s.Require().NoError(s.cardholders.SetAuthCode(ctx, "h2", "111111"))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		cleared int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.cardholders.ClearAuthCodeIfMatch(ctx, "h2", "111111")
			s.NoError(err)
			if ok {
				mu.Lock()
				cleared++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(1, cleared)
}

func (s *RepositorySuite) TestEventsFilteredAndOrdered() {
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	hash := "h1"
	merchant := "m1"
	other := "m2"

	mk := func(ts time.Time, key *string, status models.Status) *models.TransactionEvent {
		return &models.TransactionEvent{
			Reference:      uuid.NewString(),
			CardholderHash: &hash,
			Amount:         10,
			Location:       "Paris",
			MerchantAPIKey: key,
			Status:         status,
			Timestamp:      ts,
		}
	}
	events := []*models.TransactionEvent{
		mk(now.Add(-48*time.Hour), &merchant, models.StatusApproved),
		mk(now.Add(-time.Hour), &merchant, models.StatusDenied),
		mk(now.Add(-2*time.Hour), &merchant, models.StatusChallengeRequired),
		mk(now.Add(-time.Hour), &other, models.StatusApproved),
		{Reference: uuid.NewString(), Amount: 5, Location: "Nowhere", Status: models.StatusDenied, Timestamp: now},
	}
	for _, e := range events {
		s.Require().NoError(s.events.Create(ctx, e))
	}

	all, err := s.events.ListByMerchant(ctx, "m1", time.Time{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(models.StatusApproved, all[0].Status)
	s.Equal(models.StatusChallengeRequired, all[1].Status)
	s.Equal(models.StatusDenied, all[2].Status)

	recent, err := s.events.ListByMerchant(ctx, "m1", now.Add(-24*time.Hour))
	s.Require().NoError(err)
	s.Len(recent, 2)
}

func (s *RepositorySuite) TestEventWithoutReferencesIsStored() {
	ctx := context.Background()
	event := &models.TransactionEvent{
		Reference: uuid.NewString(),
		Amount:    1,
		Location:  "Lyon",
		Status:    models.StatusDenied,
		Timestamp: time.Now().UTC(),
	}
	s.Require().NoError(s.events.Create(ctx, event))
	s.NotZero(event.ID)

	var count int64
	s.Require().NoError(s.db.Model(&models.TransactionEvent{}).Where("merchant_api_key IS NULL").Count(&count).Error)
	s.Equal(int64(1), count)
}
