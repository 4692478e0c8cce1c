package handler

import (
	"github.com/gofiber/fiber/v2"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
)

// CreateShop opens a shop owned by the caller.
//
// @Summary  Create shop
// @Tags     shops
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    body body service.ShopInput true "Shop"
// @Success  201 {object} model.Shop
// @Failure  409 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /api/v1/shops [post]
func CreateShop(svc service.ShopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.ShopInput
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		sh, err := svc.Create(c.UserContext(), middleware.UserID(c), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sh)
	}
}

// ListShops pages through active shops, newest first.
//
// @Summary  List shops
// @Tags     shops
// @Produce  json
// @Param    limit  query int false "Page size (default 20, max 100)"
// @Param    offset query int false "Offset"
// @Success  200 {object} service.ListResult[model.Shop]
// @Router   /api/v1/shops [get]
func ListShops(svc service.ShopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, offset, err := page(c)
		if err != nil {
			return respondError(c, err)
		}
		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(res)
	}
}

// GetShop returns an active shop.
//
// @Summary  Get shop
// @Tags     shops
// @Produce  json
// @Param    id path string true "Shop id"
// @Success  200 {object} model.Shop
// @Failure  404 {object} errorPayload
// @Router   /api/v1/shops/{id} [get]
func GetShop(svc service.ShopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		sh, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sh)
	}
}

// UpdateShop applies a partial change to a shop of the caller.
//
// @Summary  Update shop
// @Tags     shops
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string          true "Shop id"
// @Param    body body service.ShopPatch true "Changed fields"
// @Success  200 {object} model.Shop
// @Failure  403 {object} errorPayload
// @Router   /api/v1/shops/{id} [patch]
func UpdateShop(svc service.ShopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var patch service.ShopPatch
		if err := bindJSON(c, &patch); err != nil {
			return respondError(c, err)
		}
		sh, err := svc.Update(c.UserContext(), middleware.UserID(c), id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sh)
	}
}

// DeactivateShop soft-deletes a shop of the caller together with its products.
//
// @Summary  Deactivate shop
// @Tags     shops
// @Security BearerAuth
// @Param    id path string true "Shop id"
// @Success  204
// @Router   /api/v1/shops/{id} [delete]
func DeactivateShop(svc service.ShopService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.Deactivate(c.UserContext(), middleware.UserID(c), id); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
