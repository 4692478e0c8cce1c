package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopapi/internal/model"
	"shopapi/internal/service"
	serviceMocks "shopapi/internal/service/mocks"
)

const testPhotoID = "9a8b7c6d-5e4f-4a3b-9c2d-1e0f9a8b7c6d"

func photoRequest(t *testing.T, target string, fields map[string]string, withFile bool) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if withFile {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="cup.png"`)
		h.Set("Content-Type", "image/png")
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG\r\n\x1a\nfake"))
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())
	return req
}

func TestUploadPhoto(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhotoService)
	app := newTestApp()
	app.Post("/products/:id/photos", withUser(testUserID), UploadPhoto(mockSvc))
	target := "/products/" + testProductID + "/photos"

	t.Run("success as main photo", func(t *testing.T) {
		match := mock.MatchedBy(func(in service.PhotoUpload) bool {
			if in.Filename != "cup.png" || in.ContentType != "image/png" || !in.IsMain || in.Size != 12 {
				return false
			}
			data, err := io.ReadAll(in.Reader)
			return err == nil && bytes.HasPrefix(data, []byte("\x89PNG"))
		})
		photo := &model.ProductPhoto{ID: testPhotoID, IsMain: true, Position: 1, URL: "https://minio/signed"}
		mockSvc.On("Upload", mock.Anything, testUserID, testProductID, match).Return(photo, nil).Once()

		resp, err := app.Test(photoRequest(t, target, map[string]string{"is_main": "true"}, true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var got model.ProductPhoto
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, testPhotoID, got.ID)
		assert.True(t, got.IsMain)
	})

	t.Run("no file", func(t *testing.T) {
		resp, err := app.Test(photoRequest(t, target, map[string]string{"is_main": "true"}, false))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "FILE_REQUIRED", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("bad is_main", func(t *testing.T) {
		resp, err := app.Test(photoRequest(t, target, map[string]string{"is_main": "maybe"}, true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_FORM", decodeError(t, resp.Body).Error.Code)
	})

	t.Run("unsupported type", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, testUserID, testProductID, mock.Anything).Return(nil, service.ErrUnsupportedMedia).Once()

		resp, err := app.Test(photoRequest(t, target, nil, true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("too large", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, testUserID, testProductID, mock.Anything).Return(nil, service.ErrFileTooLarge).Once()

		resp, err := app.Test(photoRequest(t, target, nil, true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
	})

	t.Run("limit reached", func(t *testing.T) {
		mockSvc.On("Upload", mock.Anything, testUserID, testProductID, mock.Anything).Return(nil, service.ErrTooManyPhotos).Once()

		resp, err := app.Test(photoRequest(t, target, nil, true))
		require.NoError(t, err)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "PHOTO_LIMIT", decodeError(t, resp.Body).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestDeletePhoto(t *testing.T) {
	mockSvc := new(serviceMocks.MockPhotoService)
	app := newTestApp()
	app.Delete("/products/:id/photos/:photoId", withUser(testUserID), DeletePhoto(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, testUserID, testProductID, testPhotoID).Return(nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodDelete, "/products/"+testProductID+"/photos/"+testPhotoID, ""))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	})

	t.Run("photo of another product", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, testUserID, testProductID, testPhotoID).Return(service.ErrPhotoNotFound).Once()

		resp, err := app.Test(jsonRequest(http.MethodDelete, "/products/"+testProductID+"/photos/"+testPhotoID, ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("invalid photo id", func(t *testing.T) {
		resp, err := app.Test(jsonRequest(http.MethodDelete, "/products/"+testProductID+"/photos/zzz", ""))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_ID", decodeError(t, resp.Body).Error.Code)
	})

	mockSvc.AssertExpectations(t)
}

func TestListCategories(t *testing.T) {
	mockSvc := new(serviceMocks.MockCategoryService)
	app := newTestApp()
	app.Get("/categories", ListCategories(mockSvc))

	cats := []model.Category{{ID: 1, Slug: "clothes", Name: "Одяг", Subcategories: []model.Subcategory{}}}
	mockSvc.On("List", mock.Anything).Return(cats, nil).Once()

	resp, err := app.Test(jsonRequest(http.MethodGet, "/categories", ""))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got []model.Category
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, cats, got)
	mockSvc.AssertExpectations(t)
}
