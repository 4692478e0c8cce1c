package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopapi/internal/auth"
	"shopapi/internal/logger"
	"shopapi/internal/service"
)

// ClaimsLocalKey holds the verified *auth.Claims in Fiber locals.
const ClaimsLocalKey = "claims"

// Authenticator verifies an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// AuthObserver is notified about rejected tokens. May be nil.
type AuthObserver interface {
	AuthFailed()
}

// ErrUnauthorized is returned for a missing, malformed, expired or revoked token.
// The global ErrorHandler renders it as 401 UNAUTHORIZED.
var ErrUnauthorized = fiber.NewError(fiber.StatusUnauthorized, "authentication required")

// Auth requires an "Authorization: Bearer <token>" header carrying a valid,
// not revoked access token. On success the claims are stored in locals and
// the request logger is enriched with user_id.
func Auth(authn Authenticator, obs AuthObserver) fiber.Handler {
	reject := func(c *fiber.Ctx, reason string) error {
		if obs != nil {
			obs.AuthFailed()
		}
		GetLogger(c, nil).Warn("auth_rejected", zap.String("reason", reason))
		return ErrUnauthorized
	}

	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return reject(c, "missing_token")
		}
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			return reject(c, "malformed_header")
		}

		claims, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, service.ErrInvalidToken) {
				return reject(c, "invalid_token")
			}
			return err
		}

		c.Locals(ClaimsLocalKey, claims)
		reqLog := GetLogger(c, nil).With(zap.String("user_id", claims.UserID))
		c.Locals(LoggerLocalKey, reqLog)
		c.SetUserContext(logger.WithContext(c.UserContext(), reqLog))

		return c.Next()
	}
}

// GetClaims returns the claims stored by Auth, or nil on public routes.
func GetClaims(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims
}

// UserID returns the authenticated user id, or "".
func UserID(c *fiber.Ctx) string {
	if claims := GetClaims(c); claims != nil {
		return claims.UserID
	}
	return ""
}
