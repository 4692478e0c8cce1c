package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"shopapi/internal/http/middleware"
	"shopapi/internal/service"
)

// UploadPhoto stores an image for a product of the caller
// (multipart/form-data, field "file", optional "is_main").
//
// @Summary  Upload product photo
// @Tags     products
// @Security BearerAuth
// @Accept   mpfd
// @Produce  json
// @Param    id      path     string true  "Product id"
// @Param    file    formData file   true  "JPEG, PNG or WebP image"
// @Param    is_main formData bool   false "Make this the main photo"
// @Success  201 {object} model.ProductPhoto
// @Failure  413 {object} errorPayload
// @Failure  415 {object} errorPayload
// @Router   /api/v1/products/{id}/photos [post]
func UploadPhoto(svc service.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}

		var isMain bool
		if v := c.FormValue("is_main"); v != "" {
			if isMain, err = strconv.ParseBool(v); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_FORM", "is_main must be a boolean")
			}
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		photo, err := svc.Upload(c.UserContext(), middleware.UserID(c), productID, service.PhotoUpload{
			Reader:      f,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			IsMain:      isMain,
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(photo)
	}
}

// DeletePhoto removes a photo of a product of the caller.
//
// @Summary  Delete product photo
// @Tags     products
// @Security BearerAuth
// @Param    id      path string true "Product id"
// @Param    photoId path string true "Photo id"
// @Success  204
// @Failure  404 {object} errorPayload
// @Router   /api/v1/products/{id}/photos/{photoId} [delete]
func DeletePhoto(svc service.PhotoService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := pathUUID(c, "id")
		if err != nil {
			return respondError(c, err)
		}
		photoID, err := pathUUID(c, "photoId")
		if err != nil {
			return respondError(c, err)
		}
		if err := svc.Delete(c.UserContext(), middleware.UserID(c), productID, photoID); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
