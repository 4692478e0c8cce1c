package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
)

// productFilter reads the listing filters from the query string.
func productFilter(c *fiber.Ctx) (service.ProductFilter, error) {
	invalid := func(name string) error {
		return badRequest("INVALID_QUERY", "invalid "+name)
	}

	var (
		f   service.ProductFilter
		err error
	)
	if raw := c.Query("shop_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return f, invalid("shop_id")
		}
		f.ShopID = id.String()
	}
	if f.CategoryID, err = queryInt(c, "category_id"); err != nil {
		return f, invalid("category_id")
	}
	if f.SubcategoryID, err = queryInt(c, "subcategory_id"); err != nil {
		return f, invalid("subcategory_id")
	}
	f.Status = c.Query("status")
	if f.MinPrice, err = queryDecimal(c, "min_price"); err != nil {
		return f, invalid("min_price")
	}
	if f.MaxPrice, err = queryDecimal(c, "max_price"); err != nil {
		return f, invalid("max_price")
	}
	return f, nil
}

func listProducts(c *fiber.Ctx, svc service.ProductService, shopID string) error {
	f, err := productFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	if shopID != "" {
		f.ShopID = shopID
	}
	limit, offset, err := page(c)
	if err != nil {
		return respondError(c, err)
	}
	res, err := svc.List(c.UserContext(), f, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// ListProducts pages through active products, newest first.
//
// @Summary  List products
// @Tags     products
// @Produce  json
// @Param    shop_id        query string false "Shop id"
// @Param    category_id    query int    false "Category id"
// @Param    subcategory_id query int    false "Subcategory id"
// @Param    status         query string false "available, out_of_stock or pre_order"
// @Param    min_price      query string false "Lowest price"
// @Param    max_price      query string false "Highest price"
// @Param    limit          query int    false "Page size (default 20, max 100)"
// @Param    offset         query int    false "Offset"
// @Success  200 {object} service.ListResult[model.ProductView]
// @Failure  422 {object} errorPayload
// @Router   /api/v1/products [get]
func ListProducts(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return listProducts(c, svc, "")
	}
}

// ListShopProducts lists the active products of one active shop.
//
// @Summary  List shop products
// @Tags     shops
// @Produce  json
// @Param    id path string true "Shop id"
// @Success  200 {object} service.ListResult[model.ProductView]
// @Failure  404 {object} errorPayload
// @Router   /api/v1/shops/{id}/products [get]
func ListShopProducts(shops service.ShopService, products service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		if _, err := shops.Get(c.UserContext(), id); err != nil {
			return respondError(c, err)
		}
		return listProducts(c, products, id)
	}
}

// CreateProduct adds a product to a shop of the caller.
//
// @Summary  Create product
// @Tags     shops
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string               true "Shop id"
// @Param    body body service.ProductInput true "Product"
// @Success  201 {object} model.ProductView
// @Failure  403 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /api/v1/shops/{id}/products [post]
func CreateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		shopID, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var in service.ProductInput
		if err := bindJSON(c, &in); err != nil {
			return respondError(c, err)
		}
		p, err := svc.Create(c.UserContext(), middleware.UserID(c), shopID, in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(p)
	}
}

// GetProduct returns a product with its detail and photos.
//
// @Summary  Get product
// @Tags     products
// @Produce  json
// @Param    id path string true "Product id"
// @Success  200 {object} model.ProductView
// @Failure  404 {object} errorPayload
// @Router   /api/v1/products/{id} [get]
func GetProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		p, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// UpdateProduct applies a partial change to a product of the caller.
//
// @Summary  Update product
// @Tags     products
// @Security BearerAuth
// @Accept   json
// @Produce  json
// @Param    id   path string               true "Product id"
// @Param    body body service.ProductPatch true "Changed fields"
// @Success  200 {object} model.ProductView
// @Failure  403 {object} errorPayload
// @Failure  422 {object} errorPayload
// @Router   /api/v1/products/{id} [patch]
func UpdateProduct(svc service.ProductService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		var patch service.ProductPatch
		if err := bindJSON(c, &patch); err != nil {
			return respondError(c, err)
		}
		p, err := svc.Update(c.UserContext(), middleware.UserID(c), id, patch)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(p)
	}
}

// DeactivateProduct soft-deletes a product of the caller.
//
// @Summary  Deactivate product
// @Tags     products
// @Security BearerAuth
// @Param    id path string true "Product id"
// @Success  204
// @Router   /api/v1/products/{id} [delete]
func DeactivateProduct(svc service.ProductService) fiber.Handler {
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
