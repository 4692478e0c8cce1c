package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopapi/internal/database"
	"shopapi/internal/http/middleware"
)

const healthTimeout = 2 * time.Second

// Pinger is a backing service reachable for health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependency names a Pinger in the health report.
type Dependency struct {
	Name string
	Pinger
}

// HealthCheck pings the database and every dependency. Any failure answers
// 503 SERVICE_UNAVAILABLE without naming the failing backend.
//
// @Summary  Readiness
// @Tags     ops
// @Produce  json
// @Success  200 {object} map[string]any
// @Failure  503 {object} errorPayload
// @Router   /health [get]
func HealthCheck(db *sql.DB, deps ...Dependency) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()

		log := middleware.GetLogger(c, nil)
		checks := map[string]string{}

		healthy := true
		if err := database.Ping(ctx, db); err != nil {
			log.Warn("health_check_failed", zap.String("dependency", "database"), zap.Error(err))
			healthy = false
		} else {
			checks["database"] = "ok"
		}
		for _, d := range deps {
			if err := d.Ping(ctx); err != nil {
				log.Warn("health_check_failed", zap.String("dependency", d.Name), zap.Error(err))
				healthy = false
				continue
			}
			checks[d.Name] = "ok"
		}

		if !healthy {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy", "checks": checks})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}
