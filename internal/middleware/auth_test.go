package middleware

import (
	"context"
	stderrors "errors"
	"io"
	"net/http/httptest"
	"testing"

	"cardguard/internal/errors"
	"cardguard/internal/models"
	"cardguard/internal/services/auth"
	"cardguard/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) IssueToken(ctx context.Context, apiKey string) (*auth.Token, error) {
	args := m.Called(ctx, apiKey)
	tok, _ := args.Get(0).(*auth.Token)
	return tok, args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.MerchantClaims, error) {
	args := m.Called(ctx, token)
	claims, _ := args.Get(0).(*models.MerchantClaims)
	return claims, args.Error(1)
}

func newApp(svc auth.Service) *fiber.App {
	app := fiber.New()
	mw := NewAuthMiddleware(svc, zap.NewNop())
	app.Get("/protected", mw.Handler, func(c *fiber.Ctx) error {
		claims, err := utils.GetMerchantClaims(c)
		if err != nil {
			return err
		}
		return c.SendString(claims.MerchantKey)
	})
	return app
}

func TestAuthMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		setup    func(*MockAuthService)
		wantCode int
		wantBody string
	}{
		{name: "missing header", wantCode: 401},
		{name: "not bearer", header: "Basic abc", wantCode: 401},
		{
			name:   "invalid token",
			header: "Bearer bad",
			setup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "bad").Return(nil, errors.ErrInvalidCredentials)
			},
			wantCode: 401,
		},
		{
			name:   "store failure",
			header: "Bearer tok",
			setup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "tok").Return(nil, errors.NewStoreError("get merchant", stderrors.New("down")))
			},
			wantCode: 500,
		},
		{
			name:   "valid",
			header: "Bearer good",
			setup: func(m *MockAuthService) {
				m.On("Authenticate", mock.Anything, "good").Return(&models.MerchantClaims{MerchantKey: "m1"}, nil)
			},
			wantCode: 200,
			wantBody: "m1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.setup != nil {
				tt.setup(svc)
			}

			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newApp(svc).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			if tt.wantBody != "" {
				body, _ := io.ReadAll(resp.Body)
				assert.Equal(t, tt.wantBody, string(body))
			}
			svc.AssertExpectations(t)
		})
	}
}
