package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"shopapi/internal/config"
	"shopapi/internal/logger"
	"shopapi/internal/model"
	"shopapi/internal/repository"
	"shopapi/internal/storage"
	"shopapi/internal/validation"
)

// sniffLen is how many leading bytes are inspected to detect the image format.
const sniffLen = 512

// photoTypes maps accepted content types to their allowed file extensions.
var photoTypes = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/webp": {".webp"},
}

// PhotoUpload is a single photo file received from a client.
type PhotoUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
	Size        int64
	IsMain      bool
}

// PhotoService manages product photos in object storage.
type PhotoService interface {
	// Upload stores the object first and the row second. If the row cannot be
	// written the object is removed again.
	Upload(ctx context.Context, ownerID, productID string, in PhotoUpload) (*model.ProductPhoto, error)

	// Delete removes the object, then the row.
	Delete(ctx context.Context, ownerID, productID, photoID string) error
}

type photoService struct {
	products repository.ProductRepository
	shops    repository.ShopRepository
	photos   repository.PhotoRepository
	store    storage.Storage
	limits   config.UploadConfig
	log      *zap.Logger
}

// NewPhotoService constructs a new PhotoService.
func NewPhotoService(
	products repository.ProductRepository,
	shops repository.ShopRepository,
	photos repository.PhotoRepository,
	store storage.Storage,
	limits config.UploadConfig,
	log *zap.Logger,
) PhotoService {
	return &photoService{
		products: products,
		shops:    shops,
		photos:   photos,
		store:    store,
		limits:   limits,
		log:      log,
	}
}

// checkPhotoType resolves the stored content type and extension. The declared
// type, the file extension and the sniffed bytes must all agree.
func checkPhotoType(declared, filename string, head []byte) (contentType, ext string, err error) {
	mt, _, perr := mime.ParseMediaType(declared)
	if perr != nil {
		return "", "", ErrUnsupportedMedia
	}
	exts, ok := photoTypes[mt]
	if !ok {
		return "", "", ErrUnsupportedMedia
	}
	ext = strings.ToLower(filepath.Ext(filename))
	valid := false
	for _, e := range exts {
		if e == ext {
			valid = true
			break
		}
	}
	if !valid {
		return "", "", ErrUnsupportedMedia
	}
	if !mimetype.Detect(head).Is(mt) {
		return "", "", ErrUnsupportedMedia
	}
	return mt, ext, nil
}

func (s *photoService) Upload(ctx context.Context, ownerID, productID string, in PhotoUpload) (*model.ProductPhoto, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if in.Size <= 0 {
		verr := validation.NewErrors()
		verr.Add("file", "is empty")
		return nil, verr
	}
	if in.Size > s.limits.MaxBytes {
		return nil, ErrFileTooLarge
	}

	view, err := ownedProduct(ctx, s.products, s.shops, ownerID, productID)
	if err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Reader, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read photo: %w", err)
	}
	head = head[:n]
	contentType, ext, err := checkPhotoType(in.ContentType, in.Filename, head)
	if err != nil {
		return nil, err
	}

	count, err := s.photos.CountByDetail(ctx, view.Detail.ID)
	if err != nil {
		return nil, err
	}
	if count >= s.limits.MaxPhotos {
		return nil, ErrTooManyPhotos
	}

	photoID := uuid.NewString()
	key := storage.PhotoKey(productID, photoID, ext)
	objInfo, err := s.store.Put(ctx, key, io.MultiReader(bytes.NewReader(head), in.Reader), storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": filepath.Base(in.Filename),
			"product-id":        productID,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	stored, err := s.photos.Create(ctx, &model.ProductPhoto{
		ID:              photoID,
		ProductDetailID: view.Detail.ID,
		StoragePath:     objInfo.Key,
		ContentType:     contentType,
		Size:            objInfo.Size,
		IsMain:          in.IsMain || count == 0,
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.FromContext(ctx, s.log).Error("photo_rollback_failed",
				zap.String("storage_path", key),
				zap.Error(delErr),
			)
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	signed := []model.ProductPhoto{*stored}
	presignPhotos(ctx, s.store, s.limits.PhotoURLLifetime, s.log, signed)
	stored = &signed[0]
	logger.FromContext(ctx, s.log).Info("photo_uploaded",
		zap.String("photo_id", stored.ID),
		zap.String("product_id", productID),
		zap.Int64("size", stored.Size),
	)
	return stored, nil
}

func (s *photoService) Delete(ctx context.Context, ownerID, productID, photoID string) error {
	if photoID == "" {
		return ErrIDRequired
	}
	view, err := ownedProduct(ctx, s.products, s.shops, ownerID, productID)
	if err != nil {
		return err
	}
	photo, err := s.photos.FindByID(ctx, photoID)
	if err != nil {
		return notFound(err, ErrPhotoNotFound)
	}
	if photo.ProductDetailID != view.Detail.ID {
		return ErrPhotoNotFound
	}
	// Storage first: a failed object delete keeps the row pointing at it.
	if err := s.store.Delete(ctx, photo.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	if err := s.photos.Delete(ctx, photoID); err != nil {
		return err
	}
	logger.FromContext(ctx, s.log).Info("photo_deleted",
		zap.String("photo_id", photoID),
		zap.String("product_id", productID),
	)
	return nil
}
