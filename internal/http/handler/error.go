package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
	"shopapi/internal/validation"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return writeFieldErrors(c, status, code, message, nil)
}

func writeFieldErrors(c *fiber.Ctx, status int, code, message string, fields map[string]string) error {
	res := errorPayload{
		RequestID: middleware.GetRequestID(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
			Fields:  fields,
		},
	}
	return c.Status(status).JSON(res)
}

// respondError translates a request or service error into the HTTP envelope.
// Unknown errors are logged with the request logger and reported as 500.
func respondError(c *fiber.Ctx, err error) error {
	var rerr *requestError
	if errors.As(err, &rerr) {
		return writeError(c, rerr.status, rerr.code, rerr.message)
	}

	var verr *validation.Errors
	if errors.As(err, &verr) {
		return writeFieldErrors(c, fiber.StatusUnprocessableEntity, "VALIDATION_FAILED", "validation failed", verr.Fields)
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrForbidden):
		return writeError(c, fiber.StatusForbidden, "FORBIDDEN", err.Error())
	case errors.Is(err, service.ErrTooManyPhotos):
		return writeError(c, fiber.StatusConflict, "PHOTO_LIMIT", err.Error())
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
	case errors.Is(err, service.ErrInvalidToken):
		return writeError(c, fiber.StatusUnauthorized, "INVALID_TOKEN", err.Error())
	case errors.Is(err, service.ErrUnsupportedMedia):
		return writeError(c, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", err.Error())
	case errors.Is(err, service.ErrFileTooLarge):
		return writeError(c, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, service.ErrIDRequired), errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "BAD_REQUEST", err.Error())
	}

	middleware.GetLogger(c, nil).Error("request_failed", zap.Error(err))
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "authentication required")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body is too large")
		default:
			if fe != nil && status < fiber.StatusInternalServerError {
				return writeError(c, status, "REQUEST_ERROR", fe.Message)
			}
			middleware.GetLogger(c, nil).Error("unhandled_error", zap.Error(err))
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
