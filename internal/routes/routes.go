// Package routes defines the API routing configuration.
// It sets up all HTTP routes and their corresponding handlers,
// including middleware and authentication requirements.
package routes

import (
	"time"

	"cardguard/internal/handlers"
	"cardguard/internal/metrics"
	"cardguard/internal/middleware"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Transaction *handlers.TransactionHandler
	Challenge   *handlers.ChallengeHandler
	Rules       *handlers.RulesHandler
	Analytics   *handlers.AnalyticsHandler
	Auth        *handlers.AuthHandler
	Health      *handlers.HealthHandler

	AuthMiddleware *middleware.AuthMiddleware
	Metrics        *metrics.Metrics
}

// RateLimit bounds requests per client IP on the public decision endpoints.
// A zero Max disables the limiter.
type RateLimit struct {
	Max        int
	Expiration time.Duration
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, h Handlers, rl RateLimit) {
	app.Get("/health", h.Health.HealthCheck)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")

	// Public routes. Registered ahead of the merchant group so the token
	// route is reached without a bearer token.
	limit := newLimiter(rl)
	api.Post("/transactions", limit, h.Transaction.ProcessTransaction)
	api.Post("/challenges/request", limit, h.Challenge.RequestCode)
	api.Post("/challenges/verify", limit, h.Challenge.VerifyCode)
	api.Post("/merchant/token", limit, h.Auth.IssueToken)

	// Merchant routes
	merchant := api.Group("/merchant", h.AuthMiddleware.Handler)
	merchant.Get("/rules", h.Rules.ListRules)
	merchant.Post("/rules", h.Rules.CreateRule)
	merchant.Put("/rules/:id", h.Rules.UpdateRule)
	merchant.Delete("/rules/:id", h.Rules.DeleteRule)
	merchant.Get("/stats", h.Analytics.GetStats)
}

func newLimiter(rl RateLimit) fiber.Handler {
	if rl.Max <= 0 {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return limiter.New(limiter.Config{
		Max:        rl.Max,
		Expiration: rl.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, fiber.StatusTooManyRequests, "Too many requests. Please try again later.")
		},
	})
}
