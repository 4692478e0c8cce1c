package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and returns it with a fresh token pair.
//
// @Summary  Register a new user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body service.RegisterInput true "Account"
// @Success  201 {object} service.AuthResult
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /api/v1/auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		res, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// Login exchanges credentials for a token pair.
//
// @Summary  Log in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "Credentials"
// @Success  200 {object} auth.TokenPair
// @Failure  401 {object} errorPayload
// @Router   /api/v1/auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in loginRequest
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		pair, err := svc.Login(c.UserContext(), in.Email, in.Password)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pair)
	}
}

// Refresh rotates a refresh token.
//
// @Summary  Refresh tokens
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body refreshRequest true "Refresh token"
// @Success  200 {object} auth.TokenPair
// @Failure  401 {object} errorPayload
// @Router   /api/v1/auth/refresh [post]
func Refresh(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in refreshRequest
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		if in.RefreshToken == "" {
			return respondError(c, service.ErrInvalidToken)
		}
		pair, err := svc.Refresh(c.UserContext(), in.RefreshToken)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(pair)
	}
}

// Logout revokes the presented access token and, if sent, the refresh token.
//
// @Summary  Log out
// @Tags     auth
// @Security BearerAuth
// @Param    body body refreshRequest false "Refresh token to revoke"
// @Success  204
// @Router   /api/v1/auth/logout [post]
func Logout(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in refreshRequest
		if len(c.Body()) > 0 {
			if err := bindJSON(c, &in); err != nil {
				return respondError(c, err)
			}
		}
		if err := svc.Logout(c.UserContext(), middleware.GetClaims(c), in.RefreshToken); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// revokeSession is used after account deactivation. A failure only leaves the
// token valid until it expires, so it is logged and not reported.
func revokeSession(c *fiber.Ctx, svc service.AuthService) {
	if err := svc.Logout(c.UserContext(), middleware.GetClaims(c), ""); err != nil {
		middleware.GetLogger(c, nil).Warn("session_revoke_failed", zap.Error(err))
	}
}
