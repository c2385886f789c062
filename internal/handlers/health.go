package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// Pinger is satisfied by the redis cache service.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db     *gorm.DB
	cache  Pinger
	logger *zap.Logger
}

// NewHealthHandler builds the health check. cache may be nil when redis is
// not configured.
func NewHealthHandler(db *gorm.DB, cache Pinger, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, logger: logger}
}

func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	services := fiber.Map{"database": "connected", "redis": "disabled"}
	healthy := true

	if err := h.pingDB(ctx); err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		services["database"] = "unavailable"
		healthy = false
	}
	if h.cache != nil {
		if err := h.cache.HealthCheck(ctx); err != nil {
			h.logger.Error("redis health check failed", zap.Error(err))
			services["redis"] = "unavailable"
			healthy = false
		} else {
			services["redis"] = "connected"
		}
	}

	status, code := "ok", fiber.StatusOK
	if !healthy {
		status, code = "degraded", fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"status":   status,
		"services": services,
	})
}

func (h *HealthHandler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
