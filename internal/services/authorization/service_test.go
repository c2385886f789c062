package authorization

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"cardguard/internal/errors"
	"cardguard/internal/models"
	"cardguard/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 6, 1, 12, 30, 0, 0, time.UTC)

func str(s string) *string   { return &s }
func f64(v float64) *float64 { return &v }

type deps struct {
	merchants   *MockMerchantRepository
	cardholders *MockCardholderRepository
	events      *MockEventRepository
	rules       *MockRuleService
	publisher   *recordingPublisher
}

func newDeps() *deps {
	return &deps{
		merchants:   new(MockMerchantRepository),
		cardholders: new(MockCardholderRepository),
		events:      new(MockEventRepository),
		rules:       new(MockRuleService),
		publisher:   &recordingPublisher{},
	}
}

func (d *deps) service() Service {
	return NewService(d.merchants, d.cardholders, d.events, d.rules, d.publisher,
		Config{Location: time.UTC, Now: func() time.Time { return fixedNow }},
		nil, zap.NewNop())
}

func (d *deps) assertExpectations(t *testing.T) {
	d.merchants.AssertExpectations(t)
	d.cardholders.AssertExpectations(t)
	d.events.AssertExpectations(t)
	d.rules.AssertExpectations(t)
}

func request() Request {
	return Request{CardholderHash: "h1", Amount: 600, Location: "Lagos", MerchantKey: "m1", Email: "a@example.com"}
}

func eventWith(status models.Status, check func(*models.TransactionEvent) bool) interface{} {
	return mock.MatchedBy(func(e *models.TransactionEvent) bool {
		return e.Status == status && e.Reference != "" && e.Timestamp.Equal(fixedNow) && (check == nil || check(e))
	})
}

func TestProcessTransaction_InvalidMerchant(t *testing.T) {
	d := newDeps()
	d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(nil, repositories.ErrNotFound)
	d.events.On("Create", mock.Anything, eventWith(models.StatusDenied, func(e *models.TransactionEvent) bool {
		return e.MerchantAPIKey == nil && e.CardholderHash == nil
	})).Return(nil).Once()

	decision, err := d.service().ProcessTransaction(context.Background(), request())
	require.NoError(t, err)

	denied, ok := decision.(Denied)
	require.True(t, ok)
	assert.Equal(t, models.StatusDenied, decision.Status())
	assert.Equal(t, "invalid merchant.", denied.Message())
	assert.NotEmpty(t, decision.TransactionID())
	assert.Len(t, d.publisher.events, 1)

	d.cardholders.AssertNotCalled(t, "GetByHash", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestProcessTransaction_SignupRequired(t *testing.T) {
	d := newDeps()
	d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
	d.cardholders.On("GetByHash", mock.Anything, "h1").Return(nil, repositories.ErrNotFound)
	d.events.On("Create", mock.Anything, eventWith(models.StatusSignupRequired, func(e *models.TransactionEvent) bool {
		return *e.MerchantAPIKey == "m1" && *e.CardholderHash == "h1"
	})).Return(nil).Once()

	decision, err := d.service().ProcessTransaction(context.Background(), request())
	require.NoError(t, err)

	signup, ok := decision.(SignupRequired)
	require.True(t, ok)
	assert.Equal(t, models.StatusSignupRequired, signup.Status())
	assert.Equal(t, "a@example.com", signup.Email)

	d.rules.AssertNotCalled(t, "ListRules", mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestProcessTransaction_RuleOutcomes(t *testing.T) {
	home := "Paris"
	cardholder := &models.Cardholder{CCHash: "h1", Email: str("a@example.com"), OTP: str("seed"), HomeLocation: &home}

	tests := []struct {
		name   string
		rules  []models.Rule
		want   models.Status
		assert func(t *testing.T, d Decision)
	}{
		{
			name:  "no rules challenges with enrolled factors",
			rules: []models.Rule{},
			want:  models.StatusChallengeRequired,
			assert: func(t *testing.T, d Decision) {
				c, ok := d.(ChallengeRequired)
				require.True(t, ok)
				assert.Equal(t, []string{models.FactorEmail, models.FactorOTP}, c.Factors)
			},
		},
		{
			name:  "away from home is denied",
			rules: []models.Rule{{Location: str(models.HomeLocation), Condition: models.ConditionNot, SuccessStatus: models.StatusDenied}},
			want:  models.StatusDenied,
			assert: func(t *testing.T, d Decision) {
				_, ok := d.(Denied)
				assert.True(t, ok)
				assert.Equal(t, "transaction denied", d.Message())
			},
		},
		{
			name:  "approved",
			rules: []models.Rule{{Amount: f64(1000), Condition: models.ConditionLessThan, SuccessStatus: models.StatusApproved}},
			want:  models.StatusApproved,
			assert: func(t *testing.T, d Decision) {
				_, ok := d.(Approved)
				assert.True(t, ok)
			},
		},
		{
			name: "window uses configured clock",
			rules: []models.Rule{
				{TimeStart: str("12:00"), TimeEnd: str("13:00"), Condition: models.ConditionIs, SuccessStatus: models.StatusApproved},
			},
			want: models.StatusApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps()
			d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
			d.cardholders.On("GetByHash", mock.Anything, "h1").Return(cardholder, nil)
			d.rules.On("ListRules", mock.Anything, "m1").Return(tt.rules, nil)
			d.events.On("Create", mock.Anything, eventWith(tt.want, nil)).Return(nil).Once()

			decision, err := d.service().ProcessTransaction(context.Background(), request())
			require.NoError(t, err)
			assert.Equal(t, tt.want, decision.Status())
			if tt.assert != nil {
				tt.assert(t, decision)
			}
			require.Len(t, d.publisher.events, 1)
			assert.Equal(t, decision.TransactionID(), d.publisher.events[0].Reference)
			d.assertExpectations(t)
		})
	}
}

func TestProcessTransaction_NoFactorsIsLegal(t *testing.T) {
	d := newDeps()
	d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
	d.cardholders.On("GetByHash", mock.Anything, "h1").Return(&models.Cardholder{CCHash: "h1"}, nil)
	d.rules.On("ListRules", mock.Anything, "m1").Return(nil, nil)
	d.events.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	decision, err := d.service().ProcessTransaction(context.Background(), request())
	require.NoError(t, err)

	c, ok := decision.(ChallengeRequired)
	require.True(t, ok)
	assert.NotNil(t, c.Factors)
	assert.Empty(t, c.Factors)
}

func TestProcessTransaction_ValidationBeforeStore(t *testing.T) {
	d := newDeps()
	req := request()
	req.MerchantKey = ""
	req.Amount = 0

	_, err := d.service().ProcessTransaction(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))

	d.merchants.AssertNotCalled(t, "GetByAPIKey", mock.Anything, mock.Anything)
	d.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProcessTransaction_StoreFailures(t *testing.T) {
	boom := stderrors.New("connection reset")

	tests := []struct {
		name  string
		setup func(d *deps)
	}{
		{
			name: "merchant lookup",
			setup: func(d *deps) {
				d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(nil, boom)
			},
		},
		{
			name: "cardholder lookup",
			setup: func(d *deps) {
				d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
				d.cardholders.On("GetByHash", mock.Anything, "h1").Return(nil, boom)
			},
		},
		{
			name: "rule load",
			setup: func(d *deps) {
				d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
				d.cardholders.On("GetByHash", mock.Anything, "h1").Return(&models.Cardholder{CCHash: "h1"}, nil)
				d.rules.On("ListRules", mock.Anything, "m1").Return(nil, errors.NewStoreError("list rules", boom))
			},
		},
		{
			name: "event write",
			setup: func(d *deps) {
				d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
				d.cardholders.On("GetByHash", mock.Anything, "h1").Return(&models.Cardholder{CCHash: "h1"}, nil)
				d.rules.On("ListRules", mock.Anything, "m1").Return([]models.Rule{}, nil)
				d.events.On("Create", mock.Anything, mock.Anything).Return(boom).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps()
			tt.setup(d)

			decision, err := d.service().ProcessTransaction(context.Background(), request())
			require.Error(t, err)
			assert.Nil(t, decision)
			assert.Equal(t, errors.KindStore, errors.KindOf(err))
			assert.Empty(t, d.publisher.events)
			d.assertExpectations(t)
		})
	}
}

func TestProcessTransaction_EmailIsNotFormatChecked(t *testing.T) {
	d := newDeps()
	d.merchants.On("GetByAPIKey", mock.Anything, "m1").Return(&models.Merchant{APIKey: "m1"}, nil)
	d.cardholders.On("GetByHash", mock.Anything, "h1").Return(nil, repositories.ErrNotFound)
	d.events.On("Create", mock.Anything, eventWith(models.StatusSignupRequired, nil)).Return(nil).Once()

	req := request()
	req.Email = "not an address"

	decision, err := d.service().ProcessTransaction(context.Background(), req)
	require.NoError(t, err)

	signup, ok := decision.(SignupRequired)
	require.True(t, ok)
	assert.Equal(t, "not an address", signup.Email)
	d.assertExpectations(t)
}

func TestProcessTransaction_FieldBounds(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Request)
		field  string
	}{
		{"zero amount", func(r *Request) { r.Amount = 0 }, "amount"},
		{"negative amount", func(r *Request) { r.Amount = -5 }, "amount"},
		{"email too long", func(r *Request) { r.Email = strings.Repeat("a", 256) }, "email"},
		{"missing location", func(r *Request) { r.Location = "" }, "location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps()
			req := request()
			tt.modify(&req)

			_, err := d.service().ProcessTransaction(context.Background(), req)
			require.Error(t, err)

			de, ok := errors.As(err)
			require.True(t, ok)
			assert.Equal(t, errors.KindValidation, de.Kind)
			assert.Contains(t, de.Fields, tt.field)
			d.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}
