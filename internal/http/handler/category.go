package handler

import (
	"github.com/gofiber/fiber/v2"

	"shopapi/internal/service"
)

// ListCategories returns the catalog taxonomy.
//
// @Summary  List categories
// @Tags     categories
// @Produce  json
// @Success  200 {array} model.Category
// @Router   /api/v1/categories [get]
func ListCategories(svc service.CategoryService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cats, err := svc.List(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cats)
	}
}
