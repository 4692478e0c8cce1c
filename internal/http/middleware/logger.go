package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"shopapi/internal/logger"
)

// LoggerLocalKey holds the request scoped *zap.Logger in Fiber locals.
const LoggerLocalKey = "logger"

// Logger logs one line per request with request_id, method, path, status,
// latency_ms and ip. A child logger carrying the request id is stored in
// locals and in the user context, so services log with the same id.
//
// Errors returned by the chain are passed to the app ErrorHandler here so the
// logged status is the one the client receives.
func Logger(base *zap.Logger) fiber.Handler {
	if base == nil {
		base = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()

		reqLog := base.With(zap.String("request_id", GetRequestID(c)))
		c.Locals(LoggerLocalKey, reqLog)
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))

		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().Config().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000),
			zap.String("ip", c.IP()),
		}

		level := zapcore.InfoLevel
		switch {
		case status >= fiber.StatusInternalServerError:
			level = zapcore.ErrorLevel
		case status >= fiber.StatusBadRequest:
			level = zapcore.WarnLevel
		}
		if ce := GetLogger(c, base).Check(level, "http_request"); ce != nil {
			ce.Write(fields...)
		}
		return nil
	}
}

// GetLogger returns the request logger, or fallback when Logger is not installed.
func GetLogger(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if l, ok := c.Locals(LoggerLocalKey).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
