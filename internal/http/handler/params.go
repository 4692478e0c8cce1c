package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// requestError is a client mistake detected before any service is called.
type requestError struct {
	status  int
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &requestError{status: fiber.StatusBadRequest, code: code, message: message}
}

// pathUUID reads a UUID path parameter and returns it in canonical form.
func pathUUID(c *fiber.Ctx, name string) (string, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return "", badRequest("INVALID_ID", "invalid id format")
	}
	return id.String(), nil
}

// page reads limit and offset. Missing values become 0 and the service
// applies its defaults.
func page(c *fiber.Ctx) (limit, offset int, err error) {
	if limit, err = queryInt(c, "limit"); err != nil {
		return 0, 0, badRequest("INVALID_LIMIT", "invalid limit")
	}
	if offset, err = queryInt(c, "offset"); err != nil {
		return 0, 0, badRequest("INVALID_OFFSET", "invalid offset")
	}
	return limit, offset, nil
}

func queryInt(c *fiber.Ctx, key string) (int, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func queryDecimal(c *fiber.Ctx, key string) (*decimal.Decimal, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// bindJSON decodes a JSON body into dst.
func bindJSON(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return badRequest("INVALID_BODY", "malformed request body")
	}
	return nil
}
