package handler

import (
	"github.com/gofiber/fiber/v2"

	"shopapi/internal/http/middleware"
	"shopapi/internal/model"
	"shopapi/internal/service"
)

// GetProfile returns the caller's profile.
//
// @Summary  Current user
// @Tags     users
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} model.User
// @Router   /api/v1/users/me [get]
func GetProfile(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, err := svc.GetProfile(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

// UpdateProfile applies a partial profile change.
//
// @Summary  Update current user
// @Tags     users
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body service.ProfilePatch true "Changed fields"
// @Success  200 {object} model.User
// @Failure  422 {object} errorPayload
// @Router   /api/v1/users/me [patch]
func UpdateProfile(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var patch service.ProfilePatch
		if err := bindJSON(c, &patch); err != nil {
			return respondError(c, err)
		}
		u, err := svc.UpdateProfile(c.UserContext(), middleware.UserID(c), patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(u)
	}
}

// ChangePassword replaces the caller's password.
//
// @Summary  Change password
// @Tags     users
// @Security BearerAuth
// @Accept   json
// @Param    body body service.ChangePasswordInput true "Passwords"
// @Success  204
// @Failure  422 {object} errorPayload
// @Router   /api/v1/users/me/password [put]
func ChangePassword(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ChangePasswordInput
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		if err := svc.ChangePassword(c.UserContext(), middleware.UserID(c), in); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// DeactivateAccount soft-deletes the caller with its shops and products and
// revokes the access token used for the request.
//
// @Summary  Deactivate current user
// @Tags     users
// @Security BearerAuth
// @Success  204
// @Router   /api/v1/users/me [delete]
func DeactivateAccount(users service.UserService, authSvc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := users.Deactivate(c.UserContext(), middleware.UserID(c)); err != nil {
			return respondError(c, err)
		}
		revokeSession(c, authSvc)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetDelivery returns the caller's delivery profile.
//
// @Summary  Delivery info
// @Tags     users
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} model.DeliveryInfo
// @Failure  404 {object} errorPayload
// @Router   /api/v1/users/me/delivery [get]
func GetDelivery(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.GetDelivery(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(d)
	}
}

// UpsertDelivery creates or replaces the caller's delivery profile.
//
// @Summary  Save delivery info
// @Tags     users
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body service.DeliveryInput true "Delivery info"
// @Success  200 {object} model.DeliveryInfo
// @Failure  422 {object} errorPayload
// @Router   /api/v1/users/me/delivery [put]
func UpsertDelivery(svc service.UserService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.DeliveryInput
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		d, err := svc.UpsertDelivery(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(d)
	}
}

// ListMyShops returns the active shops of the caller.
//
// @Summary  My shops
// @Tags     users
// @Security BearerAuth
// @Produce  json
// @Success  200 {object} service.ListResult[model.Shop]
// @Router   /api/v1/users/me/shops [get]
func ListMyShops(svc service.ShopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shops, err := svc.ListMine(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return respondError(c, err)
		}
		if shops == nil {
			shops = []model.Shop{}
		}
		return c.JSON(service.ListResult[model.Shop]{Items: shops, Total: len(shops)})
	}
}
