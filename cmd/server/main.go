// Package main is the entry point for the authorization service.
// It initializes all dependencies, sets up the HTTP server,
// and starts the application.
package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cardguard/internal/config"
	"cardguard/internal/handlers"
	"cardguard/internal/logging"
	"cardguard/internal/metrics"
	"cardguard/internal/middleware"
	"cardguard/internal/repositories"
	"cardguard/internal/repositories/cache"
	"cardguard/internal/repositories/lock"
	"cardguard/internal/routes"
	"cardguard/internal/services/analytics"
	"cardguard/internal/services/auth"
	"cardguard/internal/services/authorization"
	"cardguard/internal/services/challenge"
	"cardguard/internal/services/events"
	"cardguard/internal/services/notification"
	"cardguard/internal/services/rules"
	"cardguard/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second
	lockTTL         = 10 * time.Second
)

func main() {
	// Load environment variables
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLogger, err := logging.New(cfg.LogLevel, cfg.IsProduction())
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zapLogger.Sync() //nolint:errcheck

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, zapLogger *zap.Logger) error {
	db, err := repositories.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer func() {
		if err := repositories.Close(db); err != nil {
			zapLogger.Warn("failed to close database connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected to database", zap.String("driver", cfg.DB.Driver))

	// Redis is optional: without it rule lists are read straight from the
	// store and challenge locks are process-local.
	var (
		redisClient  *redis.Client
		cacheService *cache.CacheService
		ruleCache    rules.Cache
		pinger       handlers.Pinger
		locker       lock.Locker = lock.NewLocalLocker()
	)
	if cfg.Redis.Enabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis.URL)
		cancel()
		if err != nil {
			return err
		}
		cacheService = cache.NewCacheService(redisClient, cfg.RuleCacheTTL)
		defer func() {
			if err := cacheService.Close(); err != nil {
				zapLogger.Warn("failed to close redis connection", zap.Error(err))
			}
		}()
		ruleCache = cacheService
		pinger = cacheService
		locker = lock.NewRedisLocker(redisClient, lockTTL, lock.WithLogger(zapLogger))
		zapLogger.Info("connected to redis")
	}

	m := metrics.New()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic,
			events.WithLogger(zapLogger),
			events.WithMetrics(m),
		)
		if err != nil {
			return err
		}
		publisher = kp
		zapLogger.Info("publishing transaction events", zap.String("topic", cfg.Kafka.Topic))
	}
	defer publisher.Close()

	// Repositories
	merchantRepo := repositories.NewMerchantRepository(db)
	cardholderRepo := repositories.NewCardholderRepository(db)
	ruleRepo := repositories.NewRuleRepository(db)
	eventRepo := repositories.NewEventRepository(db)

	// Services
	ruleService := rules.NewService(ruleRepo, ruleCache, m, zapLogger)
	authorizationService := authorization.NewService(
		merchantRepo,
		cardholderRepo,
		eventRepo,
		ruleService,
		publisher,
		authorization.Config{Location: cfg.Location},
		m,
		zapLogger,
	)
	notifier := notification.NewRouter(notification.NewLogSender(zapLogger))
	challengeService := challenge.NewService(
		cardholderRepo,
		locker,
		notifier,
		challenge.Config{ExposeIssuedCodes: cfg.ExposeIssuedCodes},
		m,
		zapLogger,
	)
	analyticsService := analytics.NewService(eventRepo, cfg.Location, zapLogger)
	authService := auth.NewService(merchantRepo, cfg.JWT, zapLogger)

	app := fiber.New(fiber.Config{
		AppName:      "cardguard",
		ErrorHandler: errorHandler(zapLogger),
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE",
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))

	routes.SetupRoutes(app, routes.Handlers{
		Transaction:    handlers.NewTransactionHandler(authorizationService),
		Challenge:      handlers.NewChallengeHandler(challengeService),
		Rules:          handlers.NewRulesHandler(ruleService),
		Analytics:      handlers.NewAnalyticsHandler(analyticsService),
		Auth:           handlers.NewAuthHandler(authService),
		Health:         handlers.NewHealthHandler(db, pinger, zapLogger),
		AuthMiddleware: middleware.NewAuthMiddleware(authService, zapLogger),
		Metrics:        m,
	}, routes.RateLimit{
		Max:        cfg.RateLimitMax,
		Expiration: cfg.RateLimitWindow,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(":" + cfg.Port)
	}()
	zapLogger.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Environment))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		zapLogger.Info("shutting down", zap.String("signal", sig.String()))
	}

	return app.ShutdownWithTimeout(shutdownTimeout)
}

// errorHandler renders errors that escape the handlers, such as unknown
// routes, in the service's response envelope.
func errorHandler(zapLogger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return response.Error(c, fe.Code, fe.Message)
		}
		zapLogger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return response.ServerError(c)
	}
}
